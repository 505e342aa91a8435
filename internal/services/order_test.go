package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appErrors "github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/messaging"
	"github.com/zenjaura/marketplace/internal/models"
	repository "github.com/zenjaura/marketplace/internal/repositories"
	"github.com/zenjaura/marketplace/internal/repositories/mocks"
	service "github.com/zenjaura/marketplace/internal/services"
	svcmocks "github.com/zenjaura/marketplace/internal/services/mocks"
)

type orderFixture struct {
	service       service.OrderService
	orderRepo     *mocks.OrderRepository
	cartRepo      *mocks.CartRepository
	userRepo      *mocks.UserRepository
	notifications *svcmocks.NotificationService
	email         *svcmocks.EmailService
	publisher     *svcmocks.Publisher
	payments      *svcmocks.StripeClient
}

func setupOrderServiceTest() *orderFixture {
	f := &orderFixture{
		orderRepo:     new(mocks.OrderRepository),
		cartRepo:      new(mocks.CartRepository),
		userRepo:      new(mocks.UserRepository),
		notifications: new(svcmocks.NotificationService),
		email:         new(svcmocks.EmailService),
		publisher:     new(svcmocks.Publisher),
		payments:      new(svcmocks.StripeClient),
	}

	f.service = service.NewOrderService(f.orderRepo, f.cartRepo, f.userRepo, service.OrderDeps{
		Notifications: f.notifications,
		Email:         f.email,
		Publisher:     f.publisher,
		Payments:      f.payments,
	})

	return f
}

func publishedEvent(eventType string) any {
	return mock.MatchedBy(func(e messaging.OrderEvent) bool { return e.Type == eventType })
}

func checkoutCart(userID uuid.UUID) *models.Cart {
	cart := storedCart(userID, 5)
	cart.AddLine(models.BookLine{BookID: uuid.New()}, 2, 12.5, "Dune")
	cart.AddLine(models.EventLine{EventID: uuid.New()}, 1, 30, "Launch")

	return cart
}

// clearOnCheckout mimics the repository emptying the cart inside the transaction.
func clearOnCheckout(args mock.Arguments) {
	cart := args.Get(2).(*models.Cart)
	cart.Clear()
	cart.Version++
}

func TestOrderService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := setupOrderServiceTest()
		userID := uuid.New()
		cart := checkoutCart(userID)
		buyer := &models.User{ID: userID, Name: "Ada", Email: "ada@example.com"}

		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(cart, nil).Once()
		f.orderRepo.On("Checkout", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
			return o.UserID == userID &&
				o.Status == models.OrderStatusPending &&
				o.PaymentStatus == models.PaymentStatusPending &&
				o.TotalAmount == 55 &&
				len(o.Items) == 2 &&
				o.Items[0].OrderID == o.ID
		}), cart).Run(clearOnCheckout).Return(nil).Once()
		f.notifications.On("Notify", mock.Anything, userID, models.NotificationTypeSuccess, "Order placed", mock.Anything).Return(nil).Once()
		f.userRepo.On("GetUserByID", mock.Anything, userID).Return(buyer, nil).Once()
		f.email.On("Send", mock.Anything, mock.MatchedBy(func(req *models.EmailNotificationRequest) bool {
			return req.To == buyer.Email
		})).Return(nil).Once()
		f.publisher.On("PublishOrderEvent", mock.Anything, publishedEvent(messaging.EventOrderCreated)).Return(nil).Once()

		// Act
		order, err := f.service.CreateOrder(ctx, userID)

		// Assert
		require.NoError(t, err)
		assert.Regexp(t, `^ORD-\d+-\d{4}$`, order.OrderNumber)
		assert.Equal(t, 55.0, order.TotalAmount)
		assert.Len(t, order.EventIDs(), 1)
		assert.Empty(t, cart.Items)
		assert.Zero(t, cart.TotalAmount)

		f.cartRepo.AssertExpectations(t)
		f.orderRepo.AssertExpectations(t)
		f.notifications.AssertExpectations(t)
		f.email.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("Side effect failures do not fail the order", func(t *testing.T) {
		// Arrange
		f := setupOrderServiceTest()
		userID := uuid.New()
		cart := checkoutCart(userID)

		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(cart, nil).Once()
		f.orderRepo.On("Checkout", mock.Anything, mock.Anything, cart).Return(nil).Once()
		f.notifications.On("Notify", mock.Anything, userID, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
		f.userRepo.On("GetUserByID", mock.Anything, userID).Return(&models.User{ID: userID, Email: "a@b.co"}, nil).Once()
		f.email.On("Send", mock.Anything, mock.Anything).Return(errors.New("sendgrid down")).Once()
		f.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(errors.New("kafka down")).Once()

		// Act
		order, err := f.service.CreateOrder(ctx, userID)

		// Assert
		require.NoError(t, err)
		assert.NotNil(t, order)
	})

	t.Run("Empty cart", func(t *testing.T) {
		f := setupOrderServiceTest()
		userID := uuid.New()
		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(storedCart(userID, 1), nil).Once()

		order, err := f.service.CreateOrder(ctx, userID)

		assert.Nil(t, order)
		assertAppError(t, err, appErrors.ErrCodeBadRequest, http.StatusBadRequest)
		f.orderRepo.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("No cart yet", func(t *testing.T) {
		f := setupOrderServiceTest()
		userID := uuid.New()
		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(nil, repository.ErrNotFound).Once()

		_, err := f.service.CreateOrder(ctx, userID)

		assertAppError(t, err, appErrors.ErrCodeBadRequest, http.StatusBadRequest)
	})

	t.Run("Event full rolls back", func(t *testing.T) {
		// Arrange
		f := setupOrderServiceTest()
		userID := uuid.New()
		cart := checkoutCart(userID)

		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(cart, nil).Once()
		f.orderRepo.On("Checkout", mock.Anything, mock.Anything, cart).
			Return(fmt.Errorf("event x: %w", repository.ErrEventFull)).Once()

		// Act
		order, err := f.service.CreateOrder(ctx, userID)

		// Assert
		assert.Nil(t, order)
		assertAppError(t, err, appErrors.ErrCodeBadRequest, http.StatusBadRequest)
		assert.Contains(t, err.Error(), "Event is full")
		assert.Len(t, cart.Items, 2)
		f.publisher.AssertNotCalled(t, "PublishOrderEvent", mock.Anything, mock.Anything)
	})

	t.Run("Event already attended is rejected", func(t *testing.T) {
		// Arrange
		f := setupOrderServiceTest()
		userID := uuid.New()
		cart := checkoutCart(userID)

		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(cart, nil).Once()
		f.orderRepo.On("Checkout", mock.Anything, mock.Anything, cart).
			Return(fmt.Errorf("event x: %w", repository.ErrAlreadyRegistered)).Once()

		// Act
		order, err := f.service.CreateOrder(ctx, userID)

		// Assert
		assert.Nil(t, order)
		assertAppError(t, err, appErrors.ErrCodeBadRequest, http.StatusBadRequest)
		assert.Contains(t, err.Error(), "Already registered")
		f.orderRepo.AssertNumberOfCalls(t, "Checkout", 1)
	})

	t.Run("Order number collision is retried", func(t *testing.T) {
		// Arrange
		f := setupOrderServiceTest()
		userID := uuid.New()
		cart := checkoutCart(userID)

		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(cart, nil).Once()
		f.orderRepo.On("Checkout", mock.Anything, mock.Anything, cart).Return(repository.ErrDuplicate).Once()
		f.orderRepo.On("Checkout", mock.Anything, mock.Anything, cart).Return(nil).Once()
		f.notifications.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.userRepo.On("GetUserByID", mock.Anything, userID).Return(nil, repository.ErrNotFound)
		f.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(nil)

		// Act
		order, err := f.service.CreateOrder(ctx, userID)

		// Assert
		require.NoError(t, err)
		assert.NotNil(t, order)
		f.orderRepo.AssertNumberOfCalls(t, "Checkout", 2)
		f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Stale cart", func(t *testing.T) {
		f := setupOrderServiceTest()
		userID := uuid.New()
		cart := checkoutCart(userID)
		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(cart, nil).Once()
		f.orderRepo.On("Checkout", mock.Anything, mock.Anything, cart).Return(repository.ErrVersionConflict).Once()

		_, err := f.service.CreateOrder(ctx, userID)

		assertAppError(t, err, appErrors.ErrCodeConflict, http.StatusConflict)
	})
}

func TestOrderService_GetOrder(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	order := &models.Order{ID: uuid.New(), UserID: owner, Status: models.OrderStatusPending}

	tests := []struct {
		name    string
		caller  *models.Claims
		wantErr bool
	}{
		{"Owner", &models.Claims{UserID: owner, Role: models.RoleUser}, false},
		{"Admin", &models.Claims{UserID: uuid.New(), Role: models.RoleAdmin}, false},
		{"Someone else", &models.Claims{UserID: uuid.New(), Role: models.RoleUser}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := setupOrderServiceTest()
			f.orderRepo.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()

			got, err := f.service.GetOrder(ctx, order.ID, tc.caller)

			if tc.wantErr {
				assert.Nil(t, got)
				assertAppError(t, err, appErrors.ErrCodeNotFound, http.StatusNotFound)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, order.ID, got.ID)
		})
	}
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Legal transition", func(t *testing.T) {
		// Arrange
		f := setupOrderServiceTest()
		order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: models.OrderStatusProcessing, PaymentStatus: models.PaymentStatusPaid}

		f.orderRepo.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()
		f.orderRepo.On("UpdateStatus", mock.Anything, order, models.OrderStatusProcessing, models.PaymentStatusPaid).Return(nil).Once()
		f.notifications.On("Notify", mock.Anything, order.UserID, models.NotificationTypeInfo, "Order updated", mock.Anything).Return(nil).Once()
		f.publisher.On("PublishOrderEvent", mock.Anything, publishedEvent(messaging.EventOrderStatusChanged)).Return(nil).Once()

		// Act
		updated, err := f.service.UpdateOrderStatus(ctx, order.ID, models.OrderStatusCompleted)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCompleted, updated.Status)
		f.orderRepo.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
		f.payments.AssertNotCalled(t, "RefundPayment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Illegal transition", func(t *testing.T) {
		f := setupOrderServiceTest()
		order := &models.Order{ID: uuid.New(), Status: models.OrderStatusCompleted}
		f.orderRepo.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()

		_, err := f.service.UpdateOrderStatus(ctx, order.ID, models.OrderStatusPending)

		assertAppError(t, err, appErrors.ErrCodeBadRequest, http.StatusBadRequest)
		f.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Cancelling a paid order refunds it", func(t *testing.T) {
		// Arrange
		f := setupOrderServiceTest()
		order := &models.Order{
			ID: uuid.New(), UserID: uuid.New(), PaymentIntentID: "pi_123",
			Status: models.OrderStatusProcessing, PaymentStatus: models.PaymentStatusPaid,
		}

		f.orderRepo.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()
		f.payments.On("RefundPayment", mock.Anything, "pi_123", "refund-"+order.ID.String()).Return(nil, nil).Once()
		f.orderRepo.On("UpdateStatus", mock.Anything, order, models.OrderStatusProcessing, models.PaymentStatusPaid).Return(nil).Once()
		f.notifications.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(nil)

		// Act
		updated, err := f.service.UpdateOrderStatus(ctx, order.ID, models.OrderStatusCancelled)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, updated.Status)
		assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
		f.payments.AssertExpectations(t)
	})

	t.Run("Refund failure leaves the order untouched", func(t *testing.T) {
		f := setupOrderServiceTest()
		order := &models.Order{ID: uuid.New(), PaymentIntentID: "pi_1", Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPaid}
		f.orderRepo.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()
		f.payments.On("RefundPayment", mock.Anything, "pi_1", mock.Anything).Return(nil, errors.New("stripe down")).Once()

		_, err := f.service.UpdateOrderStatus(ctx, order.ID, models.OrderStatusCancelled)

		assertAppError(t, err, appErrors.ErrCodeThirdPartyError, http.StatusBadGateway)
		f.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Concurrent update", func(t *testing.T) {
		f := setupOrderServiceTest()
		order := &models.Order{ID: uuid.New(), Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPending}
		f.orderRepo.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()
		f.orderRepo.On("UpdateStatus", mock.Anything, order, models.OrderStatusPending, models.PaymentStatusPending).
			Return(repository.ErrVersionConflict).Once()

		_, err := f.service.UpdateOrderStatus(ctx, order.ID, models.OrderStatusProcessing)

		assertAppError(t, err, appErrors.ErrCodeConflict, http.StatusConflict)
		assert.Equal(t, models.OrderStatusPending, order.Status)
	})
}

func TestOrderService_CancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner cancels a pending order", func(t *testing.T) {
		f := setupOrderServiceTest()
		order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPending}
		f.orderRepo.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()
		f.orderRepo.On("UpdateStatus", mock.Anything, order, models.OrderStatusPending, models.PaymentStatusPending).Return(nil).Once()
		f.publisher.On("PublishOrderEvent", mock.Anything, publishedEvent(messaging.EventOrderStatusChanged)).Return(nil).Once()

		cancelled, err := f.service.CancelOrder(ctx, order.ID, order.UserID)

		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	})

	t.Run("Seat release failure keeps the order pending", func(t *testing.T) {
		// Arrange
		f := setupOrderServiceTest()
		order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPending}
		cancelling := mock.MatchedBy(func(o *models.Order) bool { return o.Status == models.OrderStatusCancelled })

		f.orderRepo.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()
		f.orderRepo.On("UpdateStatus", mock.Anything, cancelling, models.OrderStatusPending, models.PaymentStatusPending).
			Return(errors.New("failed to release event seats: deadlock detected")).Once()

		// Act
		_, err := f.service.CancelOrder(ctx, order.ID, order.UserID)

		// Assert
		assertAppError(t, err, appErrors.ErrCodeDatabaseError, http.StatusInternalServerError)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		f.orderRepo.AssertExpectations(t)
		f.publisher.AssertNotCalled(t, "PublishOrderEvent", mock.Anything, mock.Anything)
	})

	t.Run("Processing orders stay", func(t *testing.T) {
		f := setupOrderServiceTest()
		order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: models.OrderStatusProcessing}
		f.orderRepo.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()

		_, err := f.service.CancelOrder(ctx, order.ID, order.UserID)

		assertAppError(t, err, appErrors.ErrCodeBadRequest, http.StatusBadRequest)
	})

	t.Run("Not the owner", func(t *testing.T) {
		f := setupOrderServiceTest()
		order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: models.OrderStatusPending}
		f.orderRepo.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()

		_, err := f.service.CancelOrder(ctx, order.ID, uuid.New())

		assertAppError(t, err, appErrors.ErrCodeNotFound, http.StatusNotFound)
	})
}

func TestOrderService_Invoice(t *testing.T) {
	// Arrange
	f := setupOrderServiceTest()
	userID := uuid.New()
	order := &models.Order{
		ID: uuid.New(), UserID: userID, OrderNumber: "ORD-1-0001", TotalAmount: 25,
		Items: []models.OrderItem{{Kind: models.LineKindBook, Title: "Dune", Quantity: 1, UnitPrice: 25}},
	}

	f.orderRepo.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()
	f.userRepo.On("GetUserByID", mock.Anything, userID).Return(&models.User{ID: userID, Name: "Ada", Email: "ada@example.com"}, nil).Once()

	// Act
	pdf, got, err := f.service.Invoice(context.Background(), order.ID, &models.Claims{UserID: userID})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, order, got)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}
