// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/zenjaura/marketplace/internal/models"
	repository "github.com/zenjaura/marketplace/internal/repositories"
)

var (
	_ repository.UserRepository         = (*UserRepository)(nil)
	_ repository.BookRepository         = (*BookRepository)(nil)
	_ repository.PackageRepository      = (*PackageRepository)(nil)
	_ repository.EventRepository        = (*EventRepository)(nil)
	_ repository.CartRepository         = (*CartRepository)(nil)
	_ repository.OrderRepository        = (*OrderRepository)(nil)
	_ repository.NotificationRepository = (*NotificationRepository)(nil)
	_ repository.StatsRepository        = (*StatsRepository)(nil)
	_ repository.RateLimitRepository    = (*RateLimitRepository)(nil)
)

// ptr returns the value at index i as T, or the zero value when it is nil.
func ptr[T any](args mock.Arguments, i int) T {
	var zero T
	if v := args.Get(i); v != nil {
		return v.(T)
	}

	return zero
}

type UserRepository struct{ mock.Mock }

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	return ptr[*models.User](args, 0), args.Error(1)
}

func (m *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	return ptr[*models.User](args, 0), args.Error(1)
}

type BookRepository struct{ mock.Mock }

func (m *BookRepository) CreateBook(ctx context.Context, book *models.Book) error {
	return m.Called(ctx, book).Error(0)
}

func (m *BookRepository) GetBookByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	args := m.Called(ctx, id)
	return ptr[*models.Book](args, 0), args.Error(1)
}

func (m *BookRepository) ListBooks(ctx context.Context, filter models.BookFilter) ([]*models.Book, int, error) {
	args := m.Called(ctx, filter)
	return ptr[[]*models.Book](args, 0), args.Int(1), args.Error(2)
}

func (m *BookRepository) UpdateBookContent(ctx context.Context, book *models.Book) error {
	return m.Called(ctx, book).Error(0)
}

func (m *BookRepository) UpdateBookStatus(ctx context.Context, book *models.Book, from models.BookStatus) error {
	return m.Called(ctx, book, from).Error(0)
}

func (m *BookRepository) DeleteBook(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *BookRepository) CreateReview(ctx context.Context, review *models.Review) error {
	return m.Called(ctx, review).Error(0)
}

type PackageRepository struct{ mock.Mock }

func (m *PackageRepository) CreatePackage(ctx context.Context, pkg *models.Package) error {
	return m.Called(ctx, pkg).Error(0)
}

func (m *PackageRepository) GetPackageByID(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	args := m.Called(ctx, id)
	return ptr[*models.Package](args, 0), args.Error(1)
}

func (m *PackageRepository) ListPackages(ctx context.Context, activeOnly bool) ([]*models.Package, error) {
	args := m.Called(ctx, activeOnly)
	return ptr[[]*models.Package](args, 0), args.Error(1)
}

func (m *PackageRepository) UpdatePackage(ctx context.Context, pkg *models.Package) error {
	return m.Called(ctx, pkg).Error(0)
}

func (m *PackageRepository) DeactivatePackage(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type EventRepository struct{ mock.Mock }

func (m *EventRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *EventRepository) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	args := m.Called(ctx, id)
	return ptr[*models.Event](args, 0), args.Error(1)
}

func (m *EventRepository) ListEvents(ctx context.Context, page, size int) ([]*models.Event, int, error) {
	args := m.Called(ctx, page, size)
	return ptr[[]*models.Event](args, 0), args.Int(1), args.Error(2)
}

func (m *EventRepository) UpdateEvent(ctx context.Context, event *models.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *EventRepository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *EventRepository) Register(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	args := m.Called(ctx, eventID, userID)
	return ptr[*models.Registration](args, 0), args.Error(1)
}

func (m *EventRepository) GetRegistration(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	args := m.Called(ctx, eventID, userID)
	return ptr[*models.Registration](args, 0), args.Error(1)
}

type CartRepository struct{ mock.Mock }

func (m *CartRepository) CreateCart(ctx context.Context, cart *models.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func (m *CartRepository) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	return ptr[*models.Cart](args, 0), args.Error(1)
}

func (m *CartRepository) UpdateCart(ctx context.Context, cart *models.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

type OrderRepository struct{ mock.Mock }

func (m *OrderRepository) Checkout(ctx context.Context, order *models.Order, cart *models.Cart) error {
	return m.Called(ctx, order, cart).Error(0)
}

func (m *OrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	return ptr[*models.Order](args, 0), args.Error(1)
}

func (m *OrderRepository) GetOrderByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	args := m.Called(ctx, paymentIntentID)
	return ptr[*models.Order](args, 0), args.Error(1)
}

func (m *OrderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error) {
	args := m.Called(ctx, userID, page, size)
	return ptr[[]*models.Order](args, 0), args.Int(1), args.Error(2)
}

func (m *OrderRepository) UpdateStatus(ctx context.Context, order *models.Order, prevStatus models.OrderStatus, prevPayment models.PaymentStatus) error {
	return m.Called(ctx, order, prevStatus, prevPayment).Error(0)
}

func (m *OrderRepository) SetPaymentIntent(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error {
	return m.Called(ctx, orderID, paymentIntentID).Error(0)
}

type NotificationRepository struct{ mock.Mock }

func (m *NotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return m.Called(ctx, notification).Error(0)
}

func (m *NotificationRepository) ListNotifications(ctx context.Context, filter models.NotificationFilter) ([]*models.Notification, int, error) {
	args := m.Called(ctx, filter)
	return ptr[[]*models.Notification](args, 0), args.Int(1), args.Error(2)
}

func (m *NotificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return ptr[int64](args, 0), args.Error(1)
}

func (m *NotificationRepository) DeleteNotification(ctx context.Context, id, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *NotificationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return ptr[int64](args, 0), args.Error(1)
}

type StatsRepository struct{ mock.Mock }

func (m *StatsRepository) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	args := m.Called(ctx)
	return ptr[*models.DashboardStats](args, 0), args.Error(1)
}

type RateLimitRepository struct{ mock.Mock }

func (m *RateLimitRepository) CheckLoginRateLimit(ctx context.Context, email string) (bool, int, int, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Int(1), args.Int(2), args.Error(3)
}

func (m *RateLimitRepository) ResetLoginAttempts(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
