package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zenjaura/marketplace/internal/models"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from models.OrderStatus
		to   models.OrderStatus
		want bool
	}{
		{models.OrderStatusPending, models.OrderStatusProcessing, true},
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusPending, models.OrderStatusCompleted, false},
		{models.OrderStatusProcessing, models.OrderStatusCompleted, true},
		{models.OrderStatusProcessing, models.OrderStatusCancelled, true},
		{models.OrderStatusProcessing, models.OrderStatusPending, false},
		{models.OrderStatusCompleted, models.OrderStatusCancelled, false},
		{models.OrderStatusCancelled, models.OrderStatusPending, false},
	}

	for _, tc := range tests {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to))
		})
	}

	assert.True(t, models.OrderStatusCompleted.IsTerminal())
	assert.True(t, models.OrderStatusCancelled.IsTerminal())
	assert.False(t, models.OrderStatusPending.IsTerminal())
}

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, models.PaymentStatusPending.CanTransitionTo(models.PaymentStatusPaid))
	assert.True(t, models.PaymentStatusPending.CanTransitionTo(models.PaymentStatusFailed))
	assert.True(t, models.PaymentStatusFailed.CanTransitionTo(models.PaymentStatusPaid))
	assert.True(t, models.PaymentStatusPaid.CanTransitionTo(models.PaymentStatusRefunded))
	assert.False(t, models.PaymentStatusPaid.CanTransitionTo(models.PaymentStatusPaid))
	assert.False(t, models.PaymentStatusRefunded.CanTransitionTo(models.PaymentStatusPaid))
	assert.False(t, models.PaymentStatusPending.CanTransitionTo(models.PaymentStatusRefunded))
}

func TestBookStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, models.BookStatusPending.CanTransitionTo(models.BookStatusApproved))
	assert.True(t, models.BookStatusRejected.CanTransitionTo(models.BookStatusPending))
	assert.True(t, models.BookStatusApproved.CanTransitionTo(models.BookStatusPublished))
	assert.False(t, models.BookStatusPending.CanTransitionTo(models.BookStatusPublished))
	assert.False(t, models.BookStatusPublished.CanTransitionTo(models.BookStatusPending))
}
