package models

import (
	"time"

	"github.com/google/uuid"
)

type BookStatus string

const (
	BookStatusPending   BookStatus = "pending"
	BookStatusApproved  BookStatus = "approved"
	BookStatusRejected  BookStatus = "rejected"
	BookStatusPublished BookStatus = "published"
)

var bookTransitions = map[BookStatus][]BookStatus{
	BookStatusPending:  {BookStatusApproved, BookStatusRejected},
	BookStatusRejected: {BookStatusPending},
	BookStatusApproved: {BookStatusPublished},
}

func (s BookStatus) CanTransitionTo(next BookStatus) bool {
	for _, allowed := range bookTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Editable reports whether the author may still change the manuscript.
func (s BookStatus) Editable() bool {
	return s == BookStatusPending || s == BookStatusRejected
}

type Book struct {
	ID            uuid.UUID  `json:"id"`
	AuthorID      uuid.UUID  `json:"author_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Genre         string     `json:"genre"`
	ManuscriptURL string     `json:"manuscript_url"`
	CoverURL      string     `json:"cover_url,omitempty"`
	Price         float64    `json:"price"`
	Status        BookStatus `json:"status"`
	AdminFeedback string     `json:"admin_feedback,omitempty"`
	RatingAverage float64    `json:"rating_average"`
	RatingCount   int        `json:"rating_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type CreateBookRequest struct {
	Title         string `json:"title" validate:"required,max=200"`
	Description   string `json:"description" validate:"required,max=5000"`
	Genre         string `json:"genre" validate:"required,max=50"`
	ManuscriptURL string `json:"manuscript_url" validate:"required,url"`
	CoverURL      string `json:"cover_url,omitempty" validate:"omitempty,url"`
}

type UpdateBookRequest = CreateBookRequest

type ReviewBookRequest struct {
	Status   BookStatus `json:"status" validate:"required,oneof=approved rejected"`
	Price    float64    `json:"price" validate:"gte=0"`
	Feedback string     `json:"feedback,omitempty" validate:"max=2000"`
}

type BookFilter struct {
	Page     int
	PageSize int
	Genre    string
	Search   string
	Status   BookStatus
	AuthorID uuid.UUID
}

type Review struct {
	ID        uuid.UUID `json:"id"`
	BookID    uuid.UUID `json:"book_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=2000"`
}
