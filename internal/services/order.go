package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zenjaura/marketplace/internal/api/middleware"
	"github.com/zenjaura/marketplace/internal/documents"
	"github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/messaging"
	"github.com/zenjaura/marketplace/internal/metrics"
	"github.com/zenjaura/marketplace/internal/models"
	repository "github.com/zenjaura/marketplace/internal/repositories"
	"github.com/zenjaura/marketplace/internal/tracing"
	"github.com/zenjaura/marketplace/internal/utils"
	"github.com/zenjaura/marketplace/pkg/sendgrid"
	"github.com/zenjaura/marketplace/pkg/stripe"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxOrderNumberAttempts = 3

type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID, caller *models.Claims) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error)
	CancelOrder(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	Invoice(ctx context.Context, id uuid.UUID, caller *models.Claims) ([]byte, *models.Order, error)
}

// OrderDeps groups the collaborators notified after an order changes.
type OrderDeps struct {
	Notifications NotificationService
	Email         sendgrid.EmailService
	Publisher     messaging.Publisher
	Payments      stripe.Client
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	userRepo  repository.UserRepository
	deps      OrderDeps
	now       func() time.Time
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, userRepo repository.UserRepository, deps OrderDeps) OrderService {
	return &orderService{orderRepo: orderRepo, cartRepo: cartRepo, userRepo: userRepo, deps: deps, now: time.Now}
}

// CreateOrder snapshots the caller's cart into a pending order. The order,
// its items, event registrations and the cart clear commit together.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error) {

	ctx, span := tracing.Tracer().Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil && !stdErrors.Is(err, repository.ErrNotFound) {
		return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	if cart == nil || len(cart.Items) == 0 {
		return nil, errors.BadRequestError("Cannot create order with empty cart")
	}

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		TotalAmount:   cart.TotalAmount,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}

	order.Items = make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		order.Items = append(order.Items, models.NewOrderItem(order.ID, line))
	}

	span.SetAttributes(
		attribute.String("order.id", order.ID.String()),
		attribute.Int("order.items", len(order.Items)),
	)

	for attempt := 1; ; attempt++ {
		if order.OrderNumber, err = utils.GenerateOrderNumber(s.now()); err != nil {
			return nil, errors.InternalError("Failed to generate order number").WithError(err)
		}

		err = s.orderRepo.Checkout(ctx, order, cart)
		if err == nil || !stdErrors.Is(err, repository.ErrDuplicate) || attempt == maxOrderNumberAttempts {
			break
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "checkout failed")

		switch {
		case stdErrors.Is(err, repository.ErrEventFull):
			return nil, errors.BadRequestError("Event is full").WithError(err)
		case stdErrors.Is(err, repository.ErrAlreadyRegistered):
			return nil, errors.BadRequestError("Already registered for an event in your cart, remove it and retry").WithError(err)
		case stdErrors.Is(err, repository.ErrNotFound):
			return nil, errors.NotFoundError("Event not found").WithError(err)
		case stdErrors.Is(err, repository.ErrVersionConflict):
			return nil, errors.ConflictError("Cart changed during checkout, please retry").WithError(err)
		default:
			return nil, errors.DatabaseError("Failed to create order").WithError(err)
		}
	}

	metrics.OrderCreated()
	s.afterCreate(ctx, order)

	return order, nil
}

// afterCreate runs the best-effort side effects of a committed order.
func (s *orderService) afterCreate(ctx context.Context, order *models.Order) {

	logger := middleware.LoggerFromContext(ctx).With(slog.String("orderId", order.ID.String()))

	message := fmt.Sprintf("Order %s was placed for %.2f.", order.OrderNumber, order.TotalAmount)
	if err := s.deps.Notifications.Notify(ctx, order.UserID, models.NotificationTypeSuccess, "Order placed", message); err != nil {
		logger.Warn("Failed to create order notification", slog.Any("error", err))
	}

	if user, err := s.userRepo.GetUserByID(ctx, order.UserID); err != nil {
		logger.Warn("Failed to load buyer for confirmation email", slog.Any("error", err))
	} else if err := s.deps.Email.Send(ctx, confirmationEmail(user, order)); err != nil {
		logger.Warn("Failed to send confirmation email", slog.Any("error", err))
	}

	s.publish(ctx, messaging.EventOrderCreated, order)
}

func confirmationEmail(user *models.User, order *models.Order) *models.EmailNotificationRequest {

	var lines strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&lines, "- %s x%d: %s\n", item.Title, item.Quantity, item.Subtotal().StringFixed(2))
	}

	return &models.EmailNotificationRequest{
		To:      user.Email,
		Subject: "Your Zenjaura order " + order.OrderNumber,
		Content: fmt.Sprintf("Hi %s,\n\nThanks for your order %s.\n\n%s\nTotal: %.2f\n",
			user.Name, order.OrderNumber, lines.String(), order.TotalAmount),
	}
}

func (s *orderService) publish(ctx context.Context, eventType string, order *models.Order) {
	publishOrderEvent(ctx, s.deps.Publisher, eventType, order)
}

func publishOrderEvent(ctx context.Context, publisher messaging.Publisher, eventType string, order *models.Order) {
	if err := publisher.PublishOrderEvent(ctx, messaging.NewOrderEvent(eventType, order)); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to publish order event",
			slog.String("type", eventType), slog.String("orderId", order.ID.String()), slog.Any("error", err))
	}
}

func (s *orderService) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return loadOrder(ctx, s.orderRepo, id)
}

func loadOrder(ctx context.Context, repo repository.OrderRepository, id uuid.UUID) (*models.Order, error) {

	order, err := repo.GetOrderByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("Order not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to fetch order").WithError(err)
	}

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID, caller *models.Claims) (*models.Order, error) {

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// other users' orders are reported as missing
	if !canAccess(caller, order.UserID) {
		return nil, errors.NotFoundError("Order not found")
	}

	return order, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error) {

	page, size = normalizePage(page, size)

	orders, total, err := s.orderRepo.ListOrdersByUser(ctx, userID, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, total, nil
}

func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Order, error) {

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, errors.NotFoundError("Order not found")
	}

	if order.Status != models.OrderStatusPending {
		return nil, errors.BadRequestError(fmt.Sprintf("Only pending orders can be cancelled, this one is %s", order.Status))
	}

	if err := transitionOrder(ctx, s.orderRepo, order, models.OrderStatusCancelled, order.PaymentStatus); err != nil {
		return nil, err
	}

	s.publish(ctx, messaging.EventOrderStatusChanged, order)

	return order, nil
}

// UpdateOrderStatus is the admin transition. Cancelling a paid order refunds
// it through Stripe; the refund webhook then marks the payment refunded.
func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, errors.BadRequestError(fmt.Sprintf("Invalid status transition from %s to %s", order.Status, status))
	}

	if status == models.OrderStatusCancelled && order.PaymentStatus == models.PaymentStatusPaid && order.PaymentIntentID != "" {
		if _, err := s.deps.Payments.RefundPayment(ctx, order.PaymentIntentID, "refund-"+order.ID.String()); err != nil {
			return nil, errors.ThirdPartyError("Failed to refund payment").WithError(err)
		}
	}

	if err := transitionOrder(ctx, s.orderRepo, order, status, order.PaymentStatus); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Order %s is now %s.", order.OrderNumber, order.Status)
	if err := s.deps.Notifications.Notify(ctx, order.UserID, models.NotificationTypeInfo, "Order updated", message); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to notify buyer", slog.Any("error", err))
	}

	s.publish(ctx, messaging.EventOrderStatusChanged, order)

	return order, nil
}

// transitionOrder stores the new statuses with a compare-and-swap on the old ones.
func transitionOrder(ctx context.Context, repo repository.OrderRepository, order *models.Order, status models.OrderStatus, payment models.PaymentStatus) error {

	prevStatus, prevPayment := order.Status, order.PaymentStatus
	order.Status, order.PaymentStatus = status, payment

	if err := repo.UpdateStatus(ctx, order, prevStatus, prevPayment); err != nil {
		order.Status, order.PaymentStatus = prevStatus, prevPayment

		if stdErrors.Is(err, repository.ErrVersionConflict) {
			return errors.ConflictError("Order was updated concurrently, please retry").WithError(err)
		}

		return errors.DatabaseError("Failed to update order status").WithError(err)
	}

	return nil
}

func (s *orderService) Invoice(ctx context.Context, id uuid.UUID, caller *models.Claims) ([]byte, *models.Order, error) {

	order, err := s.GetOrder(ctx, id, caller)
	if err != nil {
		return nil, nil, err
	}

	buyer, err := s.userRepo.GetUserByID(ctx, order.UserID)
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("Rendering invoice without buyer details", slog.Any("error", err))
		buyer = nil
	}

	pdf, err := documents.InvoicePDF(order, buyer)
	if err != nil {
		return nil, nil, errors.InternalError("Failed to render invoice").WithError(err)
	}

	return pdf, order, nil
}
