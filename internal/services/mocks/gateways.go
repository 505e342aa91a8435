package mocks

import (
	"context"
	"time"

	sg "github.com/sendgrid/sendgrid-go"
	"github.com/stretchr/testify/mock"
	"github.com/zenjaura/marketplace/internal/cache"
	"github.com/zenjaura/marketplace/internal/messaging"
	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/pkg/sendgrid"
	"github.com/zenjaura/marketplace/pkg/stripe"
)

var (
	_ cache.Cache           = (*Cache)(nil)
	_ stripe.Client         = (*StripeClient)(nil)
	_ sendgrid.EmailService = (*EmailService)(nil)
	_ messaging.Publisher   = (*Publisher)(nil)
)

type Cache struct{ mock.Mock }

func (m *Cache) Get(ctx context.Context, key string, value interface{}) (bool, error) {
	args := m.Called(ctx, key, value)
	return args.Bool(0), args.Error(1)
}

func (m *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *Cache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *Cache) Close() error {
	return m.Called().Error(0)
}

type StripeClient struct{ mock.Mock }

func (m *StripeClient) CreatePaymentIntent(ctx context.Context, input stripe.PaymentIntentInput) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, input)
	return ptr[*stripe.PaymentIntent](args, 0), args.Error(1)
}

func (m *StripeClient) RefundPayment(ctx context.Context, paymentIntentID string, idempotencyKey string) (*stripe.Refund, error) {
	args := m.Called(ctx, paymentIntentID, idempotencyKey)
	return ptr[*stripe.Refund](args, 0), args.Error(1)
}

func (m *StripeClient) VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error) {
	args := m.Called(payload, signature)
	return args.Get(0).(stripe.Event), args.Error(1)
}

type EmailService struct{ mock.Mock }

func (m *EmailService) Send(ctx context.Context, req *models.EmailNotificationRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *EmailService) GetSendGridClient() *sg.Client {
	return ptr[*sg.Client](m.Called(), 0)
}

type Publisher struct{ mock.Mock }

func (m *Publisher) PublishOrderEvent(ctx context.Context, event messaging.OrderEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *Publisher) Close() error {
	return m.Called().Error(0)
}
