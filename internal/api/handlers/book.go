package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/zenjaura/marketplace/internal/api/middleware"
	"github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/models"
	service "github.com/zenjaura/marketplace/internal/services"
	"github.com/zenjaura/marketplace/internal/utils"
	"github.com/zenjaura/marketplace/internal/utils/response"
)

type BookHandler struct {
	bookService service.BookService
	validator   *validator.Validate
}

func NewBookHandler(bookService service.BookService) *BookHandler {
	return &BookHandler{bookService: bookService, validator: validator.New()}
}

// CreateBook godoc
//
//	@Summary		Submit a book
//	@Description	Submits a manuscript for review. The book starts as pending.
//	@Tags			Books
//	@Accept			json
//	@Produce		json
//	@Param			book	body		models.CreateBookRequest	true	"Book details"
//	@Success		201		{object}	models.Book
//	@Failure		400		{object}	response.ErrorResponse	"Validation error"
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Failure		403		{object}	response.ErrorResponse	"Authors only"
//	@Security		BearerAuth
//	@Router			/books [post]
func (h *BookHandler) CreateBook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.CreateBookRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid book submission")
			return
		}

		book, err := h.bookService.CreateBook(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Error("Failed to submit book", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Book submitted", slog.String("bookId", book.ID.String()))
		response.Success(w, http.StatusCreated, book)
	}
}

// ListBooks godoc
//
//	@Summary		Browse published books
//	@Tags			Books
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			pageSize	query		int		false	"Page size"		default(10)
//	@Param			genre		query		string	false	"Genre"
//	@Param			search		query		string	false	"Matches title or description"
//	@Success		200			{object}	models.PaginatedResponse{data=[]models.Book}
//	@Failure		500			{object}	response.ErrorResponse	"Internal server error"
//	@Router			/books [get]
func (h *BookHandler) ListBooks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		page, pageSize := utils.ParsePagination(r)
		query := r.URL.Query()

		books, total, err := h.bookService.ListPublishedBooks(r.Context(), models.BookFilter{
			Page:     page,
			PageSize: pageSize,
			Genre:    query.Get("genre"),
			Search:   query.Get("search"),
		})
		if err != nil {
			logger.Error("Failed to list books", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, paginated(books, total, page, pageSize))
	}
}

// GetBook godoc
//
//	@Summary		Get a book
//	@Description	Published books are public. Pending, approved or rejected books are visible to their author and admins.
//	@Tags			Books
//	@Produce		json
//	@Param			id	path		string	true	"Book ID"	Format(uuid)
//	@Success		200	{object}	models.Book
//	@Failure		400	{object}	response.ErrorResponse	"Invalid book ID format"
//	@Failure		404	{object}	response.ErrorResponse	"Book not found"
//	@Router			/books/{id} [get]
func (h *BookHandler) GetBook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid book id", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		// anonymous readers only see published books
		claims, _ := middleware.ClaimsFromContext(r.Context())

		book, err := h.bookService.GetBook(r.Context(), id, claims)
		if err != nil {
			logger.Warn("Failed to get book", slog.String("bookId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, book)
	}
}

// MyBooks godoc
//
//	@Summary		List the caller's books
//	@Tags			Books
//	@Produce		json
//	@Param			page		query		int	false	"Page number"	default(1)
//	@Param			pageSize	query		int	false	"Page size"		default(10)
//	@Success		200			{object}	models.PaginatedResponse{data=[]models.Book}
//	@Failure		401			{object}	response.ErrorResponse	"Authentication required"
//	@Security		BearerAuth
//	@Router			/books/mine [get]
func (h *BookHandler) MyBooks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		page, pageSize := utils.ParsePagination(r)

		books, total, err := h.bookService.ListAuthorBooks(r.Context(), claims.UserID, page, pageSize)
		if err != nil {
			logger.Error("Failed to list author books", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, paginated(books, total, page, pageSize))
	}
}

// UpdateBook godoc
//
//	@Summary		Edit a submitted book
//	@Description	Only pending or rejected books can be edited. Every edit sends the book back to review.
//	@Tags			Books
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Book ID"	Format(uuid)
//	@Param			book	body		models.UpdateBookRequest	true	"Book details"
//	@Success		200		{object}	models.Book
//	@Failure		400		{object}	response.ErrorResponse	"Validation error or book no longer editable"
//	@Failure		403		{object}	response.ErrorResponse	"Not the author"
//	@Failure		404		{object}	response.ErrorResponse	"Book not found"
//	@Failure		409		{object}	response.ErrorResponse	"Book changed concurrently"
//	@Security		BearerAuth
//	@Router			/books/{id} [put]
func (h *BookHandler) UpdateBook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateBookRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid book update")
			return
		}

		book, err := h.bookService.UpdateBook(r.Context(), id, claims.UserID, &req)
		if err != nil {
			logger.Warn("Failed to update book", slog.String("bookId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Book resubmitted", slog.String("bookId", book.ID.String()))
		response.Success(w, http.StatusOK, book)
	}
}

// DeleteBook godoc
//
//	@Summary		Delete a book
//	@Tags			Books
//	@Param			id	path	string	true	"Book ID"	Format(uuid)
//	@Success		204
//	@Failure		403	{object}	response.ErrorResponse	"Not the author or an admin"
//	@Failure		404	{object}	response.ErrorResponse	"Book not found"
//	@Security		BearerAuth
//	@Router			/books/{id} [delete]
func (h *BookHandler) DeleteBook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.bookService.DeleteBook(r.Context(), id, claims); err != nil {
			logger.Warn("Failed to delete book", slog.String("bookId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Book deleted", slog.String("bookId", id.String()))
		w.WriteHeader(http.StatusNoContent)
	}
}

// AddReview godoc
//
//	@Summary		Review a published book
//	@Tags			Books
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Book ID"	Format(uuid)
//	@Param			review	body		models.CreateReviewRequest	true	"Rating and comment"
//	@Success		201		{object}	models.Review
//	@Failure		404		{object}	response.ErrorResponse	"Book not found or not published"
//	@Failure		409		{object}	response.ErrorResponse	"Already reviewed"
//	@Security		BearerAuth
//	@Router			/books/{id}/reviews [post]
func (h *BookHandler) AddReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.CreateReviewRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		review, err := h.bookService.AddReview(r.Context(), id, claims.UserID, &req)
		if err != nil {
			logger.Warn("Failed to add review", slog.String("bookId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusCreated, review)
	}
}

// ListBooksForReview godoc
//
//	@Summary		List books by status
//	@Tags			Admin
//	@Produce		json
//	@Param			status		query		string	false	"Book status"	Enums(pending, approved, rejected, published)	default(pending)
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			pageSize	query		int		false	"Page size"		default(10)
//	@Success		200			{object}	models.PaginatedResponse{data=[]models.Book}
//	@Failure		400			{object}	response.ErrorResponse	"Unknown status"
//	@Failure		403			{object}	response.ErrorResponse	"Admins only"
//	@Security		BearerAuth
//	@Router			/admin/books [get]
func (h *BookHandler) ListBooksForReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		status := models.BookStatus(r.URL.Query().Get("status"))
		switch status {
		case "":
			status = models.BookStatusPending
		case models.BookStatusPending, models.BookStatusApproved, models.BookStatusRejected, models.BookStatusPublished:
		default:
			response.Error(w, errors.AddValidationError("status", "must be one of pending, approved, rejected, published"))
			return
		}

		page, pageSize := utils.ParsePagination(r)

		books, total, err := h.bookService.ListBooksByStatus(r.Context(), status, page, pageSize)
		if err != nil {
			logger.Error("Failed to list books for review", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, paginated(books, total, page, pageSize))
	}
}

// ReviewBook godoc
//
//	@Summary		Approve or reject a book
//	@Description	Approval sets the selling price, which must be greater than zero. The author is notified either way.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Book ID"	Format(uuid)
//	@Param			review	body		models.ReviewBookRequest	true	"Decision"
//	@Success		200		{object}	models.Book
//	@Failure		400		{object}	response.ErrorResponse	"Validation error or illegal transition"
//	@Failure		404		{object}	response.ErrorResponse	"Book not found"
//	@Failure		409		{object}	response.ErrorResponse	"Book changed concurrently"
//	@Security		BearerAuth
//	@Router			/admin/books/{id}/review [patch]
func (h *BookHandler) ReviewBook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.ReviewBookRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		book, err := h.bookService.ReviewBook(r.Context(), id, &req)
		if err != nil {
			logger.Warn("Failed to review book", slog.String("bookId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Book reviewed", slog.String("bookId", id.String()), slog.String("status", string(book.Status)))
		response.Success(w, http.StatusOK, book)
	}
}

// PublishBook godoc
//
//	@Summary		Publish an approved book
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string	true	"Book ID"	Format(uuid)
//	@Success		200	{object}	models.Book
//	@Failure		400	{object}	response.ErrorResponse	"Book is not approved"
//	@Failure		404	{object}	response.ErrorResponse	"Book not found"
//	@Security		BearerAuth
//	@Router			/admin/books/{id}/publish [patch]
func (h *BookHandler) PublishBook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		book, err := h.bookService.PublishBook(r.Context(), id)
		if err != nil {
			logger.Warn("Failed to publish book", slog.String("bookId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Book published", slog.String("bookId", id.String()))
		response.Success(w, http.StatusOK, book)
	}
}
