package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zenjaura/marketplace/internal/api"
	"github.com/zenjaura/marketplace/internal/api/handlers"
	"github.com/zenjaura/marketplace/internal/api/middleware"
	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/internal/services/mocks"
)

var jwtKey = []byte("router-test-key-0123456789abcdef")

type serviceMocks struct {
	book    *mocks.BookService
	pkg     *mocks.PackageService
	admin   *mocks.AdminService
	cart    *mocks.CartService
	payment *mocks.PaymentService
}

func newTestRouter(t *testing.T) (http.Handler, serviceMocks) {
	t.Helper()

	m := serviceMocks{
		book:    new(mocks.BookService),
		pkg:     new(mocks.PackageService),
		admin:   new(mocks.AdminService),
		cart:    new(mocks.CartService),
		payment: new(mocks.PaymentService),
	}

	mux := api.NewRouter(api.Handlers{
		User:         handlers.NewUserHandler(new(mocks.UserService)),
		Book:         handlers.NewBookHandler(m.book),
		Package:      handlers.NewPackageHandler(m.pkg),
		Event:        handlers.NewEventHandler(new(mocks.EventService), m.cart),
		Cart:         handlers.NewCartHandler(m.cart),
		Order:        handlers.NewOrderHandler(new(mocks.OrderService)),
		Payment:      handlers.NewPaymentHandler(m.payment),
		Notification: handlers.NewNotificationHandler(new(mocks.NotificationService)),
		Admin:        handlers.NewAdminHandler(m.admin),
	}, middleware.NewAuthMiddleware(jwtKey))

	return api.Wrap(mux, api.Options{CORSOrigins: []string{"http://localhost:5173"}}), m
}

func bearer(t *testing.T, role models.Role, userID uuid.UUID) string {
	t.Helper()

	claims := &models.Claims{
		UserID: userID,
		Email:  "router@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtKey)
	require.NoError(t, err)

	return "Bearer " + token
}

func TestRouter_PublicRoute(t *testing.T) {
	// Arrange
	router, m := newTestRouter(t)
	m.pkg.On("ListActivePackages", mock.Anything).Return([]*models.Package{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/packages", nil)
	rr := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rr, req)

	// Assert
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	m.pkg.AssertExpectations(t)
}

func TestRouter_AdminGate(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     func(t *testing.T) string
		expectedStatus int
	}{
		{name: "Anonymous", authHeader: func(t *testing.T) string { return "" }, expectedStatus: http.StatusUnauthorized},
		{name: "Reader", authHeader: func(t *testing.T) string { return bearer(t, models.RoleUser, uuid.New()) }, expectedStatus: http.StatusForbidden},
		{name: "Admin", authHeader: func(t *testing.T) string { return bearer(t, models.RoleAdmin, uuid.New()) }, expectedStatus: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			router, m := newTestRouter(t)
			m.admin.On("GetDashboardStats", mock.Anything).Return(&models.DashboardStats{}, nil).Maybe()

			req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
			if header := tc.authHeader(t); header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()

			// Act
			router.ServeHTTP(rr, req)

			// Assert
			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}

func TestRouter_AuthorOnlyBookSubmission(t *testing.T) {
	// Arrange
	router, m := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/books", nil)
	req.Header.Set("Authorization", bearer(t, models.RoleUser, uuid.New()))
	rr := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rr, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, rr.Code)
	m.book.AssertNotCalled(t, "CreateBook", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_MineIsNotABookID(t *testing.T) {
	// Arrange
	router, m := newTestRouter(t)
	authorID := uuid.New()

	m.book.On("ListAuthorBooks", mock.Anything, authorID, 1, 10).Return([]*models.Book{}, 0, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/books/mine", nil)
	req.Header.Set("Authorization", bearer(t, models.RoleAuthor, authorID))
	rr := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rr, req)

	// Assert
	assert.Equal(t, http.StatusOK, rr.Code)
	m.book.AssertExpectations(t)
}

func TestRouter_BookDetailAcceptsAnonymous(t *testing.T) {
	// Arrange
	router, m := newTestRouter(t)
	bookID := uuid.New()

	m.book.On("GetBook", mock.Anything, bookID, (*models.Claims)(nil)).
		Return(&models.Book{ID: bookID, Status: models.BookStatusPublished}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/books/"+bookID.String(), nil)
	rr := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rr, req)

	// Assert
	assert.Equal(t, http.StatusOK, rr.Code)
	m.book.AssertExpectations(t)
}

func TestRouter_WebhookIsPublic(t *testing.T) {
	// Arrange
	router, m := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", nil)
	rr := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rr, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, rr.Code, "reaches the handler and fails on the missing signature")
	m.payment.AssertNotCalled(t, "HandleWebhook", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
