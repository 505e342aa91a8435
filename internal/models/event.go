package models

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	StartsAt        time.Time `json:"starts_at"`
	Price           float64   `json:"price"`
	MaxAttendees    int       `json:"max_attendees"`
	RegisteredCount int       `json:"registered_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (e *Event) IsFree() bool {
	return e.Price <= 0
}

// IsFull is never true for events without a capacity.
func (e *Event) IsFull() bool {
	return e.MaxAttendees > 0 && e.RegisteredCount >= e.MaxAttendees
}

type Registration struct {
	EventID      uuid.UUID  `json:"event_id"`
	UserID       uuid.UUID  `json:"user_id"`
	OrderID      *uuid.UUID `json:"order_id,omitempty"`
	RegisteredAt time.Time  `json:"registered_at"`
}

type CreateEventRequest struct {
	Title        string    `json:"title" validate:"required,max=200"`
	Description  string    `json:"description" validate:"max=5000"`
	Location     string    `json:"location" validate:"required,max=200"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
	Price        float64   `json:"price" validate:"gte=0"`
	MaxAttendees int       `json:"max_attendees" validate:"gte=0"`
}

type UpdateEventRequest = CreateEventRequest
