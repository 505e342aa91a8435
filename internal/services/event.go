package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/zenjaura/marketplace/internal/api/middleware"
	"github.com/zenjaura/marketplace/internal/documents"
	"github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/models"
	repository "github.com/zenjaura/marketplace/internal/repositories"
)

type EventService interface {
	ListEvents(ctx context.Context, page, size int) ([]*models.Event, int, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	CreateEvent(ctx context.Context, req *models.CreateEventRequest) (*models.Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req *models.UpdateEventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	Register(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error)
	Ticket(ctx context.Context, eventID, userID uuid.UUID) ([]byte, error)
}

type eventService struct {
	repo          repository.EventRepository
	notifications NotificationService
	tickets       *documents.TicketSigner
}

func NewEventService(repo repository.EventRepository, notifications NotificationService, tickets *documents.TicketSigner) EventService {
	return &eventService{repo: repo, notifications: notifications, tickets: tickets}
}

func (s *eventService) ListEvents(ctx context.Context, page, size int) ([]*models.Event, int, error) {

	page, size = normalizePage(page, size)

	events, total, err := s.repo.ListEvents(ctx, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch events").WithError(err)
	}

	return events, total, nil
}

func (s *eventService) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {

	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("Event not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to fetch event").WithError(err)
	}

	return event, nil
}

func applyEventRequest(event *models.Event, req *models.CreateEventRequest) {
	event.Title = strings.TrimSpace(req.Title)
	event.Description = req.Description
	event.Location = strings.TrimSpace(req.Location)
	event.StartsAt = req.StartsAt
	event.Price = req.Price
	event.MaxAttendees = req.MaxAttendees
}

func (s *eventService) CreateEvent(ctx context.Context, req *models.CreateEventRequest) (*models.Event, error) {

	event := &models.Event{ID: uuid.New()}
	applyEventRequest(event, req)

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, errors.DatabaseError("Failed to create event").WithError(err)
	}

	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id uuid.UUID, req *models.UpdateEventRequest) (*models.Event, error) {

	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.MaxAttendees > 0 && req.MaxAttendees < event.RegisteredCount {
		return nil, errors.AddValidationError("max_attendees",
			fmt.Sprintf("cannot be lower than the %d existing registrations", event.RegisteredCount))
	}

	applyEventRequest(event, req)

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		if stdErrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("Event not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to update event").WithError(err)
	}

	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {

	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		if stdErrors.Is(err, repository.ErrNotFound) {
			return errors.NotFoundError("Event not found").WithError(err)
		}

		return errors.DatabaseError("Failed to delete event").WithError(err)
	}

	return nil
}

// Register signs the user up for a free event. Paid events go through the cart.
func (s *eventService) Register(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {

	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !event.IsFree() {
		return nil, errors.BadRequestError("Paid events must be purchased through the cart")
	}

	registration, err := s.repo.Register(ctx, eventID, userID)
	if err != nil {
		switch {
		case stdErrors.Is(err, repository.ErrAlreadyRegistered):
			return nil, errors.BadRequestError("Already registered").WithError(err)
		case stdErrors.Is(err, repository.ErrEventFull):
			return nil, errors.BadRequestError("Event is full").WithError(err)
		case stdErrors.Is(err, repository.ErrNotFound):
			return nil, errors.NotFoundError("Event not found").WithError(err)
		default:
			return nil, errors.DatabaseError("Failed to register for event").WithError(err)
		}
	}

	message := fmt.Sprintf("You are registered for %q on %s.", event.Title, event.StartsAt.Format("Jan 2, 2006 15:04"))
	if err := s.notifications.Notify(ctx, userID, models.NotificationTypeSuccess, "Event registration confirmed", message); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to notify registrant",
			slog.String("eventId", eventID.String()), slog.Any("error", err))
	}

	return registration, nil
}

func (s *eventService) Ticket(ctx context.Context, eventID, userID uuid.UUID) ([]byte, error) {

	registration, err := s.repo.GetRegistration(ctx, eventID, userID)
	if err != nil {
		if stdErrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("You are not registered for this event").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to fetch registration").WithError(err)
	}

	png, err := s.tickets.TicketQR(registration)
	if err != nil {
		return nil, errors.InternalError("Failed to render ticket").WithError(err)
	}

	return png, nil
}
