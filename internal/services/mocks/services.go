// Package mocks holds testify mocks of the service interfaces and of the
// external gateways the services call.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/zenjaura/marketplace/internal/models"
	service "github.com/zenjaura/marketplace/internal/services"
)

var (
	_ service.UserService         = (*UserService)(nil)
	_ service.BookService         = (*BookService)(nil)
	_ service.PackageService      = (*PackageService)(nil)
	_ service.EventService        = (*EventService)(nil)
	_ service.CartService         = (*CartService)(nil)
	_ service.OrderService        = (*OrderService)(nil)
	_ service.PaymentService      = (*PaymentService)(nil)
	_ service.NotificationService = (*NotificationService)(nil)
	_ service.AdminService        = (*AdminService)(nil)
)

func ptr[T any](args mock.Arguments, i int) T {
	var zero T
	if v := args.Get(i); v != nil {
		return v.(T)
	}

	return zero
}

type UserService struct{ mock.Mock }

func (m *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	return ptr[*models.User](args, 0), args.Error(1)
}

func (m *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	args := m.Called(ctx, req)
	return ptr[*models.LoginResponse](args, 0), args.Error(1)
}

func (m *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	return ptr[*models.User](args, 0), args.Error(1)
}

type BookService struct{ mock.Mock }

func (m *BookService) CreateBook(ctx context.Context, authorID uuid.UUID, req *models.CreateBookRequest) (*models.Book, error) {
	args := m.Called(ctx, authorID, req)
	return ptr[*models.Book](args, 0), args.Error(1)
}

func (m *BookService) GetBook(ctx context.Context, id uuid.UUID, viewer *models.Claims) (*models.Book, error) {
	args := m.Called(ctx, id, viewer)
	return ptr[*models.Book](args, 0), args.Error(1)
}

func (m *BookService) ListPublishedBooks(ctx context.Context, filter models.BookFilter) ([]*models.Book, int, error) {
	args := m.Called(ctx, filter)
	return ptr[[]*models.Book](args, 0), args.Int(1), args.Error(2)
}

func (m *BookService) ListAuthorBooks(ctx context.Context, authorID uuid.UUID, page, size int) ([]*models.Book, int, error) {
	args := m.Called(ctx, authorID, page, size)
	return ptr[[]*models.Book](args, 0), args.Int(1), args.Error(2)
}

func (m *BookService) ListBooksByStatus(ctx context.Context, status models.BookStatus, page, size int) ([]*models.Book, int, error) {
	args := m.Called(ctx, status, page, size)
	return ptr[[]*models.Book](args, 0), args.Int(1), args.Error(2)
}

func (m *BookService) UpdateBook(ctx context.Context, id uuid.UUID, authorID uuid.UUID, req *models.UpdateBookRequest) (*models.Book, error) {
	args := m.Called(ctx, id, authorID, req)
	return ptr[*models.Book](args, 0), args.Error(1)
}

func (m *BookService) DeleteBook(ctx context.Context, id uuid.UUID, caller *models.Claims) error {
	return m.Called(ctx, id, caller).Error(0)
}

func (m *BookService) ReviewBook(ctx context.Context, id uuid.UUID, req *models.ReviewBookRequest) (*models.Book, error) {
	args := m.Called(ctx, id, req)
	return ptr[*models.Book](args, 0), args.Error(1)
}

func (m *BookService) PublishBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	args := m.Called(ctx, id)
	return ptr[*models.Book](args, 0), args.Error(1)
}

func (m *BookService) AddReview(ctx context.Context, bookID, userID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error) {
	args := m.Called(ctx, bookID, userID, req)
	return ptr[*models.Review](args, 0), args.Error(1)
}

type PackageService struct{ mock.Mock }

func (m *PackageService) ListActivePackages(ctx context.Context) ([]*models.Package, error) {
	args := m.Called(ctx)
	return ptr[[]*models.Package](args, 0), args.Error(1)
}

func (m *PackageService) GetPackage(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	args := m.Called(ctx, id)
	return ptr[*models.Package](args, 0), args.Error(1)
}

func (m *PackageService) Quote(ctx context.Context, id uuid.UUID, customization *models.PackageCustomization) (*models.QuoteResponse, error) {
	args := m.Called(ctx, id, customization)
	return ptr[*models.QuoteResponse](args, 0), args.Error(1)
}

func (m *PackageService) CreatePackage(ctx context.Context, req *models.CreatePackageRequest) (*models.Package, error) {
	args := m.Called(ctx, req)
	return ptr[*models.Package](args, 0), args.Error(1)
}

func (m *PackageService) UpdatePackage(ctx context.Context, id uuid.UUID, req *models.UpdatePackageRequest) (*models.Package, error) {
	args := m.Called(ctx, id, req)
	return ptr[*models.Package](args, 0), args.Error(1)
}

func (m *PackageService) DeactivatePackage(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type EventService struct{ mock.Mock }

func (m *EventService) ListEvents(ctx context.Context, page, size int) ([]*models.Event, int, error) {
	args := m.Called(ctx, page, size)
	return ptr[[]*models.Event](args, 0), args.Int(1), args.Error(2)
}

func (m *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	args := m.Called(ctx, id)
	return ptr[*models.Event](args, 0), args.Error(1)
}

func (m *EventService) CreateEvent(ctx context.Context, req *models.CreateEventRequest) (*models.Event, error) {
	args := m.Called(ctx, req)
	return ptr[*models.Event](args, 0), args.Error(1)
}

func (m *EventService) UpdateEvent(ctx context.Context, id uuid.UUID, req *models.UpdateEventRequest) (*models.Event, error) {
	args := m.Called(ctx, id, req)
	return ptr[*models.Event](args, 0), args.Error(1)
}

func (m *EventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *EventService) Register(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	args := m.Called(ctx, eventID, userID)
	return ptr[*models.Registration](args, 0), args.Error(1)
}

func (m *EventService) Ticket(ctx context.Context, eventID, userID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, eventID, userID)
	return ptr[[]byte](args, 0), args.Error(1)
}

type CartService struct{ mock.Mock }

func (m *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	return ptr[*models.Cart](args, 0), args.Error(1)
}

func (m *CartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error) {
	args := m.Called(ctx, userID, req)
	return ptr[*models.Cart](args, 0), args.Error(1)
}

func (m *CartService) AddEvent(ctx context.Context, userID, eventID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID, eventID)
	return ptr[*models.Cart](args, 0), args.Error(1)
}

func (m *CartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.Cart, error) {
	args := m.Called(ctx, userID, itemID, quantity)
	return ptr[*models.Cart](args, 0), args.Error(1)
}

func (m *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID, itemID)
	return ptr[*models.Cart](args, 0), args.Error(1)
}

func (m *CartService) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	return ptr[*models.Cart](args, 0), args.Error(1)
}

type OrderService struct{ mock.Mock }

func (m *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, userID)
	return ptr[*models.Order](args, 0), args.Error(1)
}

func (m *OrderService) GetOrder(ctx context.Context, id uuid.UUID, caller *models.Claims) (*models.Order, error) {
	args := m.Called(ctx, id, caller)
	return ptr[*models.Order](args, 0), args.Error(1)
}

func (m *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error) {
	args := m.Called(ctx, userID, page, size)
	return ptr[[]*models.Order](args, 0), args.Int(1), args.Error(2)
}

func (m *OrderService) CancelOrder(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id, userID)
	return ptr[*models.Order](args, 0), args.Error(1)
}

func (m *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	args := m.Called(ctx, id, status)
	return ptr[*models.Order](args, 0), args.Error(1)
}

func (m *OrderService) Invoice(ctx context.Context, id uuid.UUID, caller *models.Claims) ([]byte, *models.Order, error) {
	args := m.Called(ctx, id, caller)
	return ptr[[]byte](args, 0), ptr[*models.Order](args, 1), args.Error(2)
}

type PaymentService struct{ mock.Mock }

func (m *PaymentService) CreatePaymentIntent(ctx context.Context, orderID, userID uuid.UUID) (*models.PaymentIntentResponse, error) {
	args := m.Called(ctx, orderID, userID)
	return ptr[*models.PaymentIntentResponse](args, 0), args.Error(1)
}

func (m *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}

type NotificationService struct{ mock.Mock }

func (m *NotificationService) Notify(ctx context.Context, userID uuid.UUID, kind models.NotificationType, title, message string) error {
	return m.Called(ctx, userID, kind, title, message).Error(0)
}

func (m *NotificationService) ListNotifications(ctx context.Context, filter models.NotificationFilter) ([]*models.Notification, int, error) {
	args := m.Called(ctx, filter)
	return ptr[[]*models.Notification](args, 0), args.Int(1), args.Error(2)
}

func (m *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) DeleteNotification(ctx context.Context, id, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *NotificationService) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) StartPurger(ctx context.Context, interval time.Duration) {
	m.Called(ctx, interval)
}

type AdminService struct{ mock.Mock }

func (m *AdminService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	args := m.Called(ctx)
	return ptr[*models.DashboardStats](args, 0), args.Error(1)
}
