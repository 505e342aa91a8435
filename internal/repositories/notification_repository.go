package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/internal/utils"
)

type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	ListNotifications(ctx context.Context, filter models.NotificationFilter) ([]*models.Notification, int, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteNotification(ctx context.Context, id, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepo(db *sql.DB) NotificationRepository {
	return &notificationRepository{DB: db}
}

func (r *notificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO notifications (id, user_id, title, message, type, is_read, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), $6)
		RETURNING created_at`

	err := r.DB.QueryRowContext(dbCtx, query, notification.ID, notification.UserID, notification.Title, notification.Message,
		notification.Type, notification.ExpiresAt).Scan(&notification.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListNotifications never returns expired rows, even before the purge runs.
func (r *notificationRepository) ListNotifications(ctx context.Context, filter models.NotificationFilter) ([]*models.Notification, int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	where := ` WHERE user_id = $1 AND expires_at > NOW()`
	if filter.UnreadOnly {
		where += ` AND is_read = FALSE`
	}

	var total int
	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM notifications`+where, filter.UserID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := `
		SELECT id, user_id, title, message, type, is_read, created_at, expires_at
		FROM notifications` + where + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(dbCtx, query, filter.UserID, filter.PageSize, pageOffset(filter.Page, filter.PageSize))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*models.Notification{}

	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt, &n.ExpiresAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}

		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, total, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2 AND expires_at > NOW()`

	result, err := r.DB.ExecContext(dbCtx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	return expectOneRow(result, fmt.Sprintf("notification %s", id))
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE AND expires_at > NOW()`

	result, err := r.DB.ExecContext(dbCtx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to update notifications: %w", err)
	}

	return result.RowsAffected()
}

func (r *notificationRepository) DeleteNotification(ctx context.Context, id, userID uuid.UUID) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	return expectOneRow(result, fmt.Sprintf("notification %s", id))
}

func (r *notificationRepository) DeleteExpired(ctx context.Context) (int64, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM notifications WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}

	return result.RowsAffected()
}

func expectOneRow(result sql.Result, what string) error {

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}

	return nil
}
