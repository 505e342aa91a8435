package service

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zenjaura/marketplace/internal/api/middleware"
	"github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/metrics"
	"github.com/zenjaura/marketplace/internal/models"
	repository "github.com/zenjaura/marketplace/internal/repositories"
)

type NotificationService interface {
	Notify(ctx context.Context, userID uuid.UUID, kind models.NotificationType, title, message string) error
	ListNotifications(ctx context.Context, filter models.NotificationFilter) ([]*models.Notification, int, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteNotification(ctx context.Context, id, userID uuid.UUID) error
	PurgeExpired(ctx context.Context) (int64, error)
	StartPurger(ctx context.Context, interval time.Duration)
}

type notificationService struct {
	repo repository.NotificationRepository
	ttl  time.Duration
	now  func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, ttl time.Duration) NotificationService {
	return &notificationService{repo: repo, ttl: ttl, now: time.Now}
}

func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, kind models.NotificationType, title, message string) error {

	now := s.now()
	notification := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.repo.CreateNotification(ctx, notification); err != nil {
		return errors.DatabaseError("Failed to create notification").WithError(err)
	}

	return nil
}

func (s *notificationService) ListNotifications(ctx context.Context, filter models.NotificationFilter) ([]*models.Notification, int, error) {

	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)

	notifications, total, err := s.repo.ListNotifications(ctx, filter)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch notifications").WithError(err)
	}

	return notifications, total, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {

	if err := s.repo.MarkAsRead(ctx, id, userID); err != nil {
		if stdErrors.Is(err, repository.ErrNotFound) {
			return errors.NotFoundError("Notification not found").WithError(err)
		}

		return errors.DatabaseError("Failed to update notification").WithError(err)
	}

	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {

	updated, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, errors.DatabaseError("Failed to update notifications").WithError(err)
	}

	return updated, nil
}

func (s *notificationService) DeleteNotification(ctx context.Context, id, userID uuid.UUID) error {

	if err := s.repo.DeleteNotification(ctx, id, userID); err != nil {
		if stdErrors.Is(err, repository.ErrNotFound) {
			return errors.NotFoundError("Notification not found").WithError(err)
		}

		return errors.DatabaseError("Failed to delete notification").WithError(err)
	}

	return nil
}

func (s *notificationService) PurgeExpired(ctx context.Context) (int64, error) {

	purged, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		return 0, errors.DatabaseError("Failed to purge notifications").WithError(err)
	}

	metrics.NotificationsPurged(purged)

	return purged, nil
}

// StartPurger deletes expired notifications every interval until ctx is done.
func (s *notificationService) StartPurger(ctx context.Context, interval time.Duration) {

	logger := middleware.LoggerFromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := s.PurgeExpired(ctx)
			if err != nil {
				logger.Error("Notification purge failed", slog.Any("error", err))
				continue
			}

			if purged > 0 {
				logger.Info("Purged expired notifications", slog.Int64("count", purged))
			}
		}
	}
}
