package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/zenjaura/marketplace/internal/api/middleware"
	"github.com/zenjaura/marketplace/internal/cache"
	"github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/models"
	repository "github.com/zenjaura/marketplace/internal/repositories"
)

type BookService interface {
	CreateBook(ctx context.Context, authorID uuid.UUID, req *models.CreateBookRequest) (*models.Book, error)
	GetBook(ctx context.Context, id uuid.UUID, viewer *models.Claims) (*models.Book, error)
	ListPublishedBooks(ctx context.Context, filter models.BookFilter) ([]*models.Book, int, error)
	ListAuthorBooks(ctx context.Context, authorID uuid.UUID, page, size int) ([]*models.Book, int, error)
	ListBooksByStatus(ctx context.Context, status models.BookStatus, page, size int) ([]*models.Book, int, error)
	UpdateBook(ctx context.Context, id uuid.UUID, authorID uuid.UUID, req *models.UpdateBookRequest) (*models.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID, caller *models.Claims) error
	ReviewBook(ctx context.Context, id uuid.UUID, req *models.ReviewBookRequest) (*models.Book, error)
	PublishBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
	AddReview(ctx context.Context, bookID, userID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error)
}

type bookService struct {
	repo          repository.BookRepository
	cache         cache.Cache
	notifications NotificationService
	cacheTTL      time.Duration
	richText      *bluemonday.Policy
	plainText     *bluemonday.Policy
}

func NewBookService(repo repository.BookRepository, c cache.Cache, notifications NotificationService, cacheTTL time.Duration) BookService {
	return &bookService{
		repo:          repo,
		cache:         c,
		notifications: notifications,
		cacheTTL:      cacheTTL,
		richText:      bluemonday.UGCPolicy(),
		plainText:     bluemonday.StrictPolicy(),
	}
}

func (s *bookService) CreateBook(ctx context.Context, authorID uuid.UUID, req *models.CreateBookRequest) (*models.Book, error) {

	book := &models.Book{
		ID:       uuid.New(),
		AuthorID: authorID,
		Status:   models.BookStatusPending,
	}
	s.applyContent(book, req)

	if err := s.repo.CreateBook(ctx, book); err != nil {
		return nil, errors.DatabaseError("Failed to submit book").WithError(err)
	}

	return book, nil
}

func (s *bookService) applyContent(book *models.Book, req *models.CreateBookRequest) {
	book.Title = s.plainText.Sanitize(strings.TrimSpace(req.Title))
	book.Description = s.richText.Sanitize(req.Description)
	book.Genre = s.plainText.Sanitize(strings.TrimSpace(req.Genre))
	book.ManuscriptURL = req.ManuscriptURL
	book.CoverURL = req.CoverURL
}

func (s *bookService) load(ctx context.Context, id uuid.UUID) (*models.Book, error) {

	book, err := s.repo.GetBookByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("Book not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to fetch book").WithError(err)
	}

	return book, nil
}

// GetBook serves published books from the cache. Unpublished books are only
// visible to their author and to admins.
func (s *bookService) GetBook(ctx context.Context, id uuid.UUID, viewer *models.Claims) (*models.Book, error) {

	logger := middleware.LoggerFromContext(ctx)
	key := cache.Key(cache.BookKeyPrefix, id.String())

	var cached models.Book

	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("Cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	if found {
		return &cached, nil
	}

	book, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if book.Status == models.BookStatusPublished {
		if err := s.cache.Set(ctx, key, book, s.cacheTTL); err != nil {
			logger.Warn("Cache write failed", slog.String("key", key), slog.Any("error", err))
		}

		return book, nil
	}

	if !canAccess(viewer, book.AuthorID) {
		return nil, errors.NotFoundError("Book not found")
	}

	return book, nil
}

func (s *bookService) ListPublishedBooks(ctx context.Context, filter models.BookFilter) ([]*models.Book, int, error) {

	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)
	filter.Status = models.BookStatusPublished
	filter.AuthorID = uuid.Nil

	return s.list(ctx, filter)
}

func (s *bookService) ListAuthorBooks(ctx context.Context, authorID uuid.UUID, page, size int) ([]*models.Book, int, error) {

	page, size = normalizePage(page, size)

	return s.list(ctx, models.BookFilter{Page: page, PageSize: size, AuthorID: authorID})
}

func (s *bookService) ListBooksByStatus(ctx context.Context, status models.BookStatus, page, size int) ([]*models.Book, int, error) {

	page, size = normalizePage(page, size)

	return s.list(ctx, models.BookFilter{Page: page, PageSize: size, Status: status})
}

func (s *bookService) list(ctx context.Context, filter models.BookFilter) ([]*models.Book, int, error) {

	books, total, err := s.repo.ListBooks(ctx, filter)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch books").WithError(err)
	}

	return books, total, nil
}

func (s *bookService) UpdateBook(ctx context.Context, id uuid.UUID, authorID uuid.UUID, req *models.UpdateBookRequest) (*models.Book, error) {

	book, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if book.AuthorID != authorID {
		return nil, errors.ForbiddenError("Only the author can edit this book")
	}

	if !book.Status.Editable() {
		return nil, errors.BadRequestError(fmt.Sprintf("A %s book can no longer be edited", book.Status))
	}

	s.applyContent(book, req)

	if err := s.repo.UpdateBookContent(ctx, book); err != nil {
		if stdErrors.Is(err, repository.ErrVersionConflict) {
			return nil, errors.ConflictError("Book changed while it was being edited").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to update book").WithError(err)
	}

	return book, nil
}

func (s *bookService) DeleteBook(ctx context.Context, id uuid.UUID, caller *models.Claims) error {

	book, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if !canAccess(caller, book.AuthorID) {
		return errors.ForbiddenError("You do not have permission to delete this book")
	}

	if err := s.repo.DeleteBook(ctx, id); err != nil {
		if stdErrors.Is(err, repository.ErrNotFound) {
			return errors.NotFoundError("Book not found").WithError(err)
		}

		return errors.DatabaseError("Failed to delete book").WithError(err)
	}

	cache.Invalidate(ctx, s.cache, cache.Key(cache.BookKeyPrefix, id.String()))

	return nil
}

func (s *bookService) ReviewBook(ctx context.Context, id uuid.UUID, req *models.ReviewBookRequest) (*models.Book, error) {

	if req.Status == models.BookStatusApproved && req.Price <= 0 {
		return nil, errors.AddValidationError("price", "must be greater than 0 to approve a book")
	}

	book, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	from := book.Status
	if !from.CanTransitionTo(req.Status) {
		return nil, errors.BadRequestError(fmt.Sprintf("Cannot move a book from %s to %s", from, req.Status))
	}

	book.Status = req.Status
	book.AdminFeedback = s.plainText.Sanitize(req.Feedback)
	if req.Status == models.BookStatusApproved {
		book.Price = req.Price
	}

	if err := s.updateStatus(ctx, book, from); err != nil {
		return nil, err
	}

	title := "Your book was approved"
	kind := models.NotificationTypeSuccess
	if req.Status == models.BookStatusRejected {
		title = "Your book needs changes"
		kind = models.NotificationTypeWarning
	}

	s.notifyAuthor(ctx, book, kind, title)

	return book, nil
}

func (s *bookService) PublishBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {

	book, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	from := book.Status
	if !from.CanTransitionTo(models.BookStatusPublished) {
		return nil, errors.BadRequestError(fmt.Sprintf("Only approved books can be published, this one is %s", from))
	}

	book.Status = models.BookStatusPublished

	if err := s.updateStatus(ctx, book, from); err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, s.cache, cache.Key(cache.BookKeyPrefix, id.String()))
	s.notifyAuthor(ctx, book, models.NotificationTypeSuccess, "Your book is now published")

	return book, nil
}

func (s *bookService) updateStatus(ctx context.Context, book *models.Book, from models.BookStatus) error {

	if err := s.repo.UpdateBookStatus(ctx, book, from); err != nil {
		if stdErrors.Is(err, repository.ErrVersionConflict) {
			return errors.ConflictError("Book status changed concurrently").WithError(err)
		}

		return errors.DatabaseError("Failed to update book status").WithError(err)
	}

	return nil
}

func (s *bookService) notifyAuthor(ctx context.Context, book *models.Book, kind models.NotificationType, title string) {

	message := fmt.Sprintf("%q is now %s.", book.Title, book.Status)
	if book.AdminFeedback != "" {
		message += " Feedback: " + book.AdminFeedback
	}

	if err := s.notifications.Notify(ctx, book.AuthorID, kind, title, message); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to notify author",
			slog.String("bookId", book.ID.String()), slog.Any("error", err))
	}
}

func (s *bookService) AddReview(ctx context.Context, bookID, userID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error) {

	review := &models.Review{
		ID:      uuid.New(),
		BookID:  bookID,
		UserID:  userID,
		Rating:  req.Rating,
		Comment: s.plainText.Sanitize(req.Comment),
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		switch {
		case stdErrors.Is(err, repository.ErrNotFound):
			return nil, errors.NotFoundError("Book not found").WithError(err)
		case stdErrors.Is(err, repository.ErrDuplicate):
			return nil, errors.DuplicateEntryError("You have already reviewed this book").WithError(err)
		default:
			return nil, errors.DatabaseError("Failed to save review").WithError(err)
		}
	}

	// the cached copy carries a stale rating
	cache.Invalidate(ctx, s.cache, cache.Key(cache.BookKeyPrefix, bookID.String()))

	return review, nil
}
