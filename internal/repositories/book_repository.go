package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/internal/utils"
)

type BookRepository interface {
	CreateBook(ctx context.Context, book *models.Book) error
	GetBookByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	ListBooks(ctx context.Context, filter models.BookFilter) ([]*models.Book, int, error)
	UpdateBookContent(ctx context.Context, book *models.Book) error
	UpdateBookStatus(ctx context.Context, book *models.Book, from models.BookStatus) error
	DeleteBook(ctx context.Context, id uuid.UUID) error
	CreateReview(ctx context.Context, review *models.Review) error
}

type bookRepository struct {
	DB *sql.DB
}

func NewBookRepo(db *sql.DB) BookRepository {
	return &bookRepository{DB: db}
}

const bookColumns = `id, author_id, title, description, genre, manuscript_url, cover_url, price, status,
	admin_feedback, rating_average, rating_count, created_at, updated_at`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*models.Book, error) {
	book := &models.Book{}

	err := scanner.Scan(&book.ID, &book.AuthorID, &book.Title, &book.Description, &book.Genre, &book.ManuscriptURL,
		&book.CoverURL, &book.Price, &book.Status, &book.AdminFeedback, &book.RatingAverage, &book.RatingCount,
		&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return book, nil
}

func (r *bookRepository) CreateBook(ctx context.Context, book *models.Book) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO books (id, author_id, title, description, genre, manuscript_url, cover_url, price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.DB.QueryRowContext(dbCtx, query, book.ID, book.AuthorID, book.Title, book.Description, book.Genre,
		book.ManuscriptURL, book.CoverURL, book.Price, book.Status).Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

func (r *bookRepository) GetBookByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := scanBook(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("book %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

func (r *bookRepository) ListBooks(ctx context.Context, filter models.BookFilter) ([]*models.Book, int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var conditions []string
	var args []any

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	if filter.Genre != "" {
		args = append(args, filter.Genre)
		conditions = append(conditions, fmt.Sprintf("genre = $%d", len(args)))
	}

	if filter.AuthorID != uuid.Nil {
		args = append(args, filter.AuthorID)
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", len(args)))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM books`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	args = append(args, filter.PageSize, pageOffset(filter.Page, filter.PageSize))
	query := fmt.Sprintf(`SELECT %s FROM books%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		bookColumns, where, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := []*models.Book{}

	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}

		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, total, nil
}

// UpdateBookContent stores an author edit and puts the book back into review.
func (r *bookRepository) UpdateBookContent(ctx context.Context, book *models.Book) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE books
		SET title = $1, description = $2, genre = $3, manuscript_url = $4, cover_url = $5, status = $6, updated_at = NOW()
		WHERE id = $7 AND status IN ('pending', 'rejected')
		RETURNING updated_at`

	err := r.DB.QueryRowContext(dbCtx, query, book.Title, book.Description, book.Genre, book.ManuscriptURL,
		book.CoverURL, models.BookStatusPending, book.ID).Scan(&book.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("book %s: %w", book.ID, ErrVersionConflict)
		}

		return fmt.Errorf("failed to update book: %w", err)
	}

	book.Status = models.BookStatusPending

	return nil
}

// UpdateBookStatus writes status, price and feedback only if the stored status is still from.
func (r *bookRepository) UpdateBookStatus(ctx context.Context, book *models.Book, from models.BookStatus) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE books
		SET status = $1, price = $2, admin_feedback = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
		RETURNING updated_at`

	err := r.DB.QueryRowContext(dbCtx, query, book.Status, book.Price, book.AdminFeedback, book.ID, from).Scan(&book.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("book %s: %w", book.ID, ErrVersionConflict)
		}

		return fmt.Errorf("failed to update book status: %w", err)
	}

	return nil
}

func (r *bookRepository) DeleteBook(ctx context.Context, id uuid.UUID) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("book %s: %w", id, ErrNotFound)
	}

	return nil
}

// CreateReview inserts the review and refreshes the book's rating in one transaction.
func (r *bookRepository) CreateReview(ctx context.Context, review *models.Review) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	return withTx(dbCtx, r.DB, func(tx *sql.Tx) error {

		var status models.BookStatus
		err := tx.QueryRowContext(dbCtx, `SELECT status FROM books WHERE id = $1 FOR UPDATE`, review.BookID).Scan(&status)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("book %s: %w", review.BookID, ErrNotFound)
			}

			return fmt.Errorf("failed to lock book: %w", err)
		}

		if status != models.BookStatusPublished {
			return fmt.Errorf("book %s is %s: %w", review.BookID, status, ErrNotFound)
		}

		insert := `
			INSERT INTO reviews (id, book_id, user_id, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			RETURNING created_at`

		err = tx.QueryRowContext(dbCtx, insert, review.ID, review.BookID, review.UserID, review.Rating, review.Comment).Scan(&review.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("review for book %s: %w", review.BookID, ErrDuplicate)
			}

			return fmt.Errorf("failed to insert review: %w", err)
		}

		refresh := `
			UPDATE books
			SET rating_average = (SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE book_id = $1),
				rating_count = (SELECT COUNT(*) FROM reviews WHERE book_id = $1),
				updated_at = NOW()
			WHERE id = $1`

		if _, err := tx.ExecContext(dbCtx, refresh, review.BookID); err != nil {
			return fmt.Errorf("failed to refresh book rating: %w", err)
		}

		return nil
	})
}
