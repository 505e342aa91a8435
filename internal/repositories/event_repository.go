package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/internal/utils"
)

type EventRepository interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEvents(ctx context.Context, page, size int) ([]*models.Event, int, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	Register(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error)
	GetRegistration(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error)
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepo(db *sql.DB) EventRepository {
	return &eventRepository{DB: db}
}

const eventColumns = `id, title, description, location, starts_at, price, max_attendees, registered_count, created_at, updated_at`

func scanEvent(scanner interface{ Scan(dest ...any) error }) (*models.Event, error) {
	event := &models.Event{}

	err := scanner.Scan(&event.ID, &event.Title, &event.Description, &event.Location, &event.StartsAt, &event.Price,
		&event.MaxAttendees, &event.RegisteredCount, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return event, nil
}

func (r *eventRepository) CreateEvent(ctx context.Context, event *models.Event) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO events (id, title, description, location, starts_at, price, max_attendees, registered_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.DB.QueryRowContext(dbCtx, query, event.ID, event.Title, event.Description, event.Location, event.StartsAt,
		event.Price, event.MaxAttendees).Scan(&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (r *eventRepository) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	event, err := scanEvent(r.DB.QueryRowContext(dbCtx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

func (r *eventRepository) ListEvents(ctx context.Context, page, size int) ([]*models.Event, int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int
	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query := `SELECT ` + eventColumns + ` FROM events ORDER BY starts_at ASC LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(dbCtx, query, size, pageOffset(page, size))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []*models.Event{}

	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, total, nil
}

func (r *eventRepository) UpdateEvent(ctx context.Context, event *models.Event) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3, starts_at = $4, price = $5, max_attendees = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING registered_count, updated_at`

	err := r.DB.QueryRowContext(dbCtx, query, event.Title, event.Description, event.Location, event.StartsAt,
		event.Price, event.MaxAttendees, event.ID).Scan(&event.RegisteredCount, &event.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("event %s: %w", event.ID, ErrNotFound)
		}

		return fmt.Errorf("failed to update event: %w", err)
	}

	return nil
}

func (r *eventRepository) DeleteEvent(ctx context.Context, id uuid.UUID) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}

	return nil
}

// Register adds a registration for a free event.
func (r *eventRepository) Register(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var registration *models.Registration

	err := withTx(dbCtx, r.DB, func(tx *sql.Tx) error {
		var err error
		registration, err = registerTx(dbCtx, tx, eventID, userID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return registration, nil
}

func (r *eventRepository) GetRegistration(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT event_id, user_id, order_id, registered_at
		FROM event_registrations
		WHERE event_id = $1 AND user_id = $2`

	registration := &models.Registration{}

	var orderID uuid.NullUUID

	err := r.DB.QueryRowContext(dbCtx, query, eventID, userID).Scan(&registration.EventID, &registration.UserID, &orderID, &registration.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("registration for event %s: %w", eventID, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	if orderID.Valid {
		registration.OrderID = &orderID.UUID
	}

	return registration, nil
}

// registerTx locks the event row, then enforces idempotency and capacity before inserting.
func registerTx(ctx context.Context, tx *sql.Tx, eventID, userID uuid.UUID, orderID *uuid.UUID) (*models.Registration, error) {

	var maxAttendees, registered int

	err := tx.QueryRowContext(ctx, `SELECT max_attendees, registered_count FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&maxAttendees, &registered)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", eventID, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to lock event: %w", err)
	}

	var exists bool

	err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM event_registrations WHERE event_id = $1 AND user_id = $2)`, eventID, userID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}

	if exists {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrAlreadyRegistered)
	}

	if maxAttendees > 0 && registered >= maxAttendees {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrEventFull)
	}

	registration := &models.Registration{EventID: eventID, UserID: userID, OrderID: orderID}

	insert := `
		INSERT INTO event_registrations (event_id, user_id, order_id, registered_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING registered_at`

	var nullableOrder uuid.NullUUID
	if orderID != nil {
		nullableOrder = uuid.NullUUID{UUID: *orderID, Valid: true}
	}

	if err := tx.QueryRowContext(ctx, insert, eventID, userID, nullableOrder).Scan(&registration.RegisteredAt); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("event %s: %w", eventID, ErrAlreadyRegistered)
		}

		return nil, fmt.Errorf("failed to insert registration: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE events SET registered_count = registered_count + 1, updated_at = NOW() WHERE id = $1`, eventID); err != nil {
		return nil, fmt.Errorf("failed to update registered count: %w", err)
	}

	return registration, nil
}
