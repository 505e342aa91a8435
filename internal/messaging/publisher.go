package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/zenjaura/marketplace/internal/config"
	"github.com/zenjaura/marketplace/internal/models"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

type OrderEvent struct {
	Type          string               `json:"type"`
	OrderID       uuid.UUID            `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	UserID        uuid.UUID            `json:"user_id"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	TotalAmount   float64              `json:"total_amount"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

func NewOrderEvent(eventType string, order *models.Order) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalAmount:   order.TotalAmount,
		OccurredAt:    time.Now().UTC(),
	}
}

// Publisher emits order lifecycle events. Publishing is best-effort for callers.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
	Close() error
}

// NewOrderMessage keys the message by order id so one order's events stay in one partition.
func NewOrderMessage(event OrderEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal order event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, nil
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewPublisher returns a Kafka publisher, or a logging no-op when no brokers are configured.
func NewPublisher(cfg *config.Kafka) Publisher {
	if len(cfg.Brokers) == 0 {
		slog.Info("Kafka brokers not configured, order events will only be logged")
		return noopPublisher{}
	}

	return &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *kafkaPublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	msg, err := NewOrderMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s for order %s: %w", event.Type, event.OrderID, err)
	}

	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type noopPublisher struct{}

func (noopPublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	slog.Debug("Order event", slog.String("type", event.Type), slog.String("orderId", event.OrderID.String()))
	return nil
}

func (noopPublisher) Close() error { return nil }
