package messaging_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zenjaura/marketplace/internal/config"
	"github.com/zenjaura/marketplace/internal/messaging"
	"github.com/zenjaura/marketplace/internal/models"
)

func TestNewOrderMessage(t *testing.T) {
	// Arrange
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-1700000000000-0042",
		UserID:        uuid.New(),
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		TotalAmount:   424.98,
	}

	// Act
	msg, err := messaging.NewOrderMessage(messaging.NewOrderEvent(messaging.EventOrderCreated, order))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, order.ID.String(), string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, messaging.EventOrderCreated, string(msg.Headers[0].Value))

	var decoded messaging.OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, order.OrderNumber, decoded.OrderNumber)
	assert.Equal(t, models.OrderStatusPending, decoded.Status)
	assert.InDelta(t, 424.98, decoded.TotalAmount, 0.001)
}

func TestNewPublisher_WithoutBrokers(t *testing.T) {
	// Arrange
	publisher := messaging.NewPublisher(&config.Kafka{Topic: "orders"})

	// Act
	err := publisher.PublishOrderEvent(t.Context(), messaging.OrderEvent{Type: messaging.EventOrderStatusChanged, OrderID: uuid.New()})

	// Assert
	require.NoError(t, err)
	assert.NoError(t, publisher.Close())
}
