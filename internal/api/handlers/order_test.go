package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zenjaura/marketplace/internal/api/handlers"
	appErrors "github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/internal/services/mocks"
	"github.com/zenjaura/marketplace/internal/testutils"
)

func TestOrderHandler_CreateOrder(t *testing.T) {
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		orderService := new(mocks.OrderService)
		handler := handlers.NewOrderHandler(orderService)

		order := &models.Order{
			ID:            uuid.New(),
			OrderNumber:   "ORD-1700000000000-ABC123",
			UserID:        userID,
			TotalAmount:   24.99,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusPending,
		}
		orderService.On("CreateOrder", mock.Anything, userID).Return(order, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/orders/create", nil, userID, models.RoleUser, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.CreateOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)

		var got models.Order
		testutils.DecodeData(t, rr.Body.Bytes(), &got)
		assert.Equal(t, order.OrderNumber, got.OrderNumber)
		assert.Equal(t, models.OrderStatusPending, got.Status)
		orderService.AssertExpectations(t)
	})

	t.Run("Empty cart", func(t *testing.T) {
		// Arrange
		orderService := new(mocks.OrderService)
		handler := handlers.NewOrderHandler(orderService)

		orderService.On("CreateOrder", mock.Anything, userID).Return(nil, appErrors.BadRequestError("Cart is empty")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/orders/create", nil, userID, models.RoleUser, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.CreateOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Cart is empty")
	})
}

func TestOrderHandler_GetOrder(t *testing.T) {
	userID, orderID := uuid.New(), uuid.New()

	t.Run("Owner", func(t *testing.T) {
		orderService := new(mocks.OrderService)
		handler := handlers.NewOrderHandler(orderService)

		orderService.On("GetOrder", mock.Anything, orderID, mock.MatchedBy(func(c *models.Claims) bool {
			return c.UserID == userID
		})).Return(&models.Order{ID: orderID, UserID: userID}, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/orders/"+orderID.String(), nil, userID, models.RoleUser,
			map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		handler.GetOrder().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		orderService.AssertExpectations(t)
	})

	t.Run("Someone else's order", func(t *testing.T) {
		orderService := new(mocks.OrderService)
		handler := handlers.NewOrderHandler(orderService)

		orderService.On("GetOrder", mock.Anything, orderID, mock.Anything).Return(nil, appErrors.NotFoundError("Order not found")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/orders/"+orderID.String(), nil, uuid.New(), models.RoleUser,
			map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		handler.GetOrder().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestOrderHandler_ListOrders(t *testing.T) {
	// Arrange
	orderService := new(mocks.OrderService)
	handler := handlers.NewOrderHandler(orderService)
	userID := uuid.New()

	orders := []*models.Order{{ID: uuid.New(), UserID: userID}, {ID: uuid.New(), UserID: userID}}
	orderService.On("ListUserOrders", mock.Anything, userID, 2, 5).Return(orders, 7, nil).Once()

	req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/orders/user?page=2&pageSize=5", nil, userID, models.RoleUser, nil)
	rr := httptest.NewRecorder()

	// Act
	handler.ListOrders().ServeHTTP(rr, req)

	// Assert
	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.PaginatedResponse
	testutils.DecodeData(t, rr.Body.Bytes(), &got)
	assert.Equal(t, 7, got.Total)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 5, got.PageSize)
	assert.Len(t, got.Data, 2)
	orderService.AssertExpectations(t)
}

func TestOrderHandler_CancelOrder(t *testing.T) {
	userID, orderID := uuid.New(), uuid.New()

	t.Run("Pending order", func(t *testing.T) {
		orderService := new(mocks.OrderService)
		handler := handlers.NewOrderHandler(orderService)

		orderService.On("CancelOrder", mock.Anything, orderID, userID).
			Return(&models.Order{ID: orderID, Status: models.OrderStatusCancelled}, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/orders/"+orderID.String()+"/cancel", nil, userID, models.RoleUser,
			map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		handler.CancelOrder().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var got models.Order
		testutils.DecodeData(t, rr.Body.Bytes(), &got)
		assert.Equal(t, models.OrderStatusCancelled, got.Status)
	})

	t.Run("Already completed", func(t *testing.T) {
		orderService := new(mocks.OrderService)
		handler := handlers.NewOrderHandler(orderService)

		orderService.On("CancelOrder", mock.Anything, orderID, userID).
			Return(nil, appErrors.BadRequestError("Order can no longer be cancelled")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/orders/"+orderID.String()+"/cancel", nil, userID, models.RoleUser,
			map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		handler.CancelOrder().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestOrderHandler_Invoice(t *testing.T) {
	// Arrange
	orderService := new(mocks.OrderService)
	handler := handlers.NewOrderHandler(orderService)
	userID, orderID := uuid.New(), uuid.New()
	pdf := []byte("%PDF-1.3 fake")

	orderService.On("Invoice", mock.Anything, orderID, mock.Anything).
		Return(pdf, &models.Order{ID: orderID, OrderNumber: "ORD-1-ABCDEF"}, nil).Once()

	req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/orders/"+orderID.String()+"/invoice", nil, userID, models.RoleUser,
		map[string]string{"id": orderID.String()})
	rr := httptest.NewRecorder()

	// Act
	handler.Invoice().ServeHTTP(rr, req)

	// Assert
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoice-ORD-1-ABCDEF.pdf"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, pdf, rr.Body.Bytes())
}

func TestOrderHandler_UpdateOrderStatus(t *testing.T) {
	adminID, orderID := uuid.New(), uuid.New()

	t.Run("Valid transition", func(t *testing.T) {
		orderService := new(mocks.OrderService)
		handler := handlers.NewOrderHandler(orderService)

		orderService.On("UpdateOrderStatus", mock.Anything, orderID, models.OrderStatusCompleted).
			Return(&models.Order{ID: orderID, Status: models.OrderStatusCompleted}, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPatch, "/api/admin/orders/"+orderID.String()+"/status",
			strings.NewReader(`{"status":"completed"}`), adminID, models.RoleAdmin, map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		handler.UpdateOrderStatus().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		orderService.AssertExpectations(t)
	})

	t.Run("Unknown status", func(t *testing.T) {
		orderService := new(mocks.OrderService)
		handler := handlers.NewOrderHandler(orderService)

		req := testutils.CreateTestRequestWithContext(http.MethodPatch, "/api/admin/orders/"+orderID.String()+"/status",
			strings.NewReader(`{"status":"shipped"}`), adminID, models.RoleAdmin, map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		handler.UpdateOrderStatus().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		orderService.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
