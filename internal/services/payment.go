package service

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zenjaura/marketplace/internal/api/middleware"
	"github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/messaging"
	"github.com/zenjaura/marketplace/internal/metrics"
	"github.com/zenjaura/marketplace/internal/models"
	repository "github.com/zenjaura/marketplace/internal/repositories"
	"github.com/zenjaura/marketplace/pkg/stripe"
)

type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, orderID, userID uuid.UUID) (*models.PaymentIntentResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	orderRepo     repository.OrderRepository
	stripeClient  stripe.Client
	notifications NotificationService
	publisher     messaging.Publisher
	currency      string
}

func NewPaymentService(orderRepo repository.OrderRepository, stripeClient stripe.Client, notifications NotificationService, publisher messaging.Publisher, currency string) PaymentService {
	return &paymentService{
		orderRepo:     orderRepo,
		stripeClient:  stripeClient,
		notifications: notifications,
		publisher:     publisher,
		currency:      currency,
	}
}

func toCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}

// CreatePaymentIntent is safe to retry: the idempotency key makes Stripe
// return the intent created by the first call.
func (s *paymentService) CreatePaymentIntent(ctx context.Context, orderID, userID uuid.UUID) (*models.PaymentIntentResponse, error) {

	order, err := loadOrder(ctx, s.orderRepo, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, errors.NotFoundError("Order not found")
	}

	if order.Status != models.OrderStatusPending || !order.PaymentStatus.CanTransitionTo(models.PaymentStatusPaid) {
		return nil, errors.BadRequestError("Order is not awaiting payment")
	}

	amount := toCents(order.TotalAmount)
	if amount <= 0 {
		return nil, errors.BadRequestError("Order total must be positive to be paid")
	}

	intent, err := s.stripeClient.CreatePaymentIntent(ctx, stripe.PaymentIntentInput{
		Amount:         amount,
		Currency:       s.currency,
		Description:    "Zenjaura order " + order.OrderNumber,
		IdempotencyKey: "order-" + order.ID.String(),
		Metadata: map[string]string{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
		},
	})
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to create payment intent").WithError(err)
	}

	if err := s.orderRepo.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		return nil, errors.DatabaseError("Failed to store payment intent").WithError(err)
	}

	return &models.PaymentIntentResponse{
		OrderID:         order.ID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          amount,
		Currency:        s.currency,
	}, nil
}

// HandleWebhook applies Stripe payment events to orders. Replayed events for
// an order already in the target state are ignored.
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {

	logger := middleware.LoggerFromContext(ctx)

	event, err := s.stripeClient.VerifyWebhookSignature(payload, signature)
	if err != nil {
		return errors.BadRequestError("Webhook signature verification failed").WithError(err)
	}

	logger = logger.With(slog.String("stripeEvent", string(event.Type)), slog.String("stripeEventId", event.ID))

	var (
		paymentIntentID string
		next            models.PaymentStatus
	)

	switch event.Type {
	case stripe.EventPaymentSucceeded, stripe.EventPaymentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return errors.BadRequestError("Malformed payment intent in webhook").WithError(err)
		}

		paymentIntentID = intent.ID
		next = models.PaymentStatusPaid
		if event.Type == stripe.EventPaymentFailed {
			next = models.PaymentStatusFailed
		}

	case stripe.EventChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return errors.BadRequestError("Malformed charge in webhook").WithError(err)
		}

		if charge.PaymentIntent != nil {
			paymentIntentID = charge.PaymentIntent.ID
		}
		next = models.PaymentStatusRefunded

	default:
		logger.Debug("Ignoring webhook event")
		return nil
	}

	if paymentIntentID == "" {
		return errors.BadRequestError("Missing payment intent ID in webhook")
	}

	order, err := s.orderRepo.GetOrderByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		if stdErrors.Is(err, repository.ErrNotFound) {
			logger.Warn("Webhook for unknown payment intent", slog.String("paymentIntentId", paymentIntentID))
			return nil
		}

		return errors.DatabaseError("Failed to fetch order").WithError(err)
	}

	if order.PaymentStatus == next {
		return nil
	}

	if !order.PaymentStatus.CanTransitionTo(next) {
		logger.Warn("Ignoring out of order payment update",
			slog.String("orderId", order.ID.String()),
			slog.String("from", string(order.PaymentStatus)),
			slog.String("to", string(next)))
		return nil
	}

	// A payment that lands after the buyer cancelled is refunded straight away;
	// charge.refunded later moves it to refunded.
	lateRefund := next == models.PaymentStatusPaid && order.Status == models.OrderStatusCancelled
	if lateRefund {
		if _, err := s.stripeClient.RefundPayment(ctx, paymentIntentID, "refund-"+order.ID.String()); err != nil {
			return errors.ThirdPartyError("Failed to refund payment for cancelled order").WithError(err)
		}

		logger.Info("Refunded payment received for cancelled order", slog.String("orderId", order.ID.String()))
	}

	status := order.Status
	switch {
	case next == models.PaymentStatusPaid && status.CanTransitionTo(models.OrderStatusProcessing):
		status = models.OrderStatusProcessing
	case next == models.PaymentStatusRefunded && status.CanTransitionTo(models.OrderStatusCancelled):
		status = models.OrderStatusCancelled
	}

	if err := transitionOrder(ctx, s.orderRepo, order, status, next); err != nil {
		return err
	}

	if next == models.PaymentStatusPaid && !lateRefund {
		metrics.OrderPaid(order.TotalAmount)
	}

	s.notifyPayment(ctx, order)
	publishOrderEvent(ctx, s.publisher, messaging.EventOrderStatusChanged, order)

	return nil
}

func (s *paymentService) notifyPayment(ctx context.Context, order *models.Order) {

	kind, title := models.NotificationTypeInfo, "Payment update"
	message := fmt.Sprintf("Order %s payment is %s.", order.OrderNumber, order.PaymentStatus)

	switch {
	case order.PaymentStatus == models.PaymentStatusPaid && order.Status == models.OrderStatusCancelled:
		title = "Payment refunded"
		message = fmt.Sprintf("Order %s was cancelled before your payment arrived. It is being refunded.", order.OrderNumber)
	case order.PaymentStatus == models.PaymentStatusPaid:
		kind, title = models.NotificationTypeSuccess, "Payment received"
	case order.PaymentStatus == models.PaymentStatusFailed:
		kind, title = models.NotificationTypeError, "Payment failed"
	case order.PaymentStatus == models.PaymentStatusRefunded:
		title = "Payment refunded"
	}

	if err := s.notifications.Notify(ctx, order.UserID, kind, title, message); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to notify buyer", slog.Any("error", err))
	}
}
