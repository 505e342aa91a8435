package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/zenjaura/marketplace/internal/api/middleware"
	"github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/metrics"
	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/internal/pricing"
	repository "github.com/zenjaura/marketplace/internal/repositories"
)

const maxCartAttempts = 3

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error)
	AddEvent(ctx context.Context, userID, eventID uuid.UUID) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	bookRepo    repository.BookRepository
	packageRepo repository.PackageRepository
	eventRepo   repository.EventRepository
}

func NewCartService(cartRepo repository.CartRepository, bookRepo repository.BookRepository, packageRepo repository.PackageRepository, eventRepo repository.EventRepository) CartService {
	return &cartService{cartRepo: cartRepo, bookRepo: bookRepo, packageRepo: packageRepo, eventRepo: eventRepo}
}

func itemNotInCart() error {
	return errors.NotFoundError("Item not found in cart")
}

// getOrCreate returns the user's cart, creating an empty one on first access.
func (s *cartService) getOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}

	if !stdErrors.Is(err, repository.ErrNotFound) {
		return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	cart = models.NewCart(userID)

	if err := s.cartRepo.CreateCart(ctx, cart); err != nil {
		if !stdErrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.DatabaseError("Failed to create cart").WithError(err)
		}

		// another request created it first
		cart, err = s.cartRepo.GetCartByUserID(ctx, userID)
		if err != nil {
			return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
		}
	}

	return cart, nil
}

// mutate applies fn to a fresh copy of the cart and stores it with a version
// compare-and-swap, re-reading and re-applying on conflict.
func (s *cartService) mutate(ctx context.Context, userID uuid.UUID, fn func(cart *models.Cart) error) (*models.Cart, error) {

	logger := middleware.LoggerFromContext(ctx)

	for attempt := 1; attempt <= maxCartAttempts; attempt++ {

		cart, err := s.getOrCreate(ctx, userID)
		if err != nil {
			return nil, err
		}

		if err := fn(cart); err != nil {
			return nil, err
		}

		err = s.cartRepo.UpdateCart(ctx, cart)
		if err == nil {
			return cart, nil
		}

		if !stdErrors.Is(err, repository.ErrVersionConflict) {
			return nil, errors.DatabaseError("Failed to update cart").WithError(err)
		}

		retrying := attempt < maxCartAttempts
		metrics.CartConflict(retrying)
		logger.Warn("Cart version conflict", slog.String("cartId", cart.ID.String()), slog.Int("attempt", attempt))
	}

	return nil, errors.ConflictError("Cart was modified concurrently, please retry")
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.getOrCreate(ctx, userID)
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error) {

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	var (
		target models.LineTarget
		price  float64
		title  string
	)

	switch req.Type {
	case models.LineKindBook:
		if req.Book == nil {
			return nil, errors.AddValidationError("book", "is required for book items")
		}

		book, err := s.bookRepo.GetBookByID(ctx, *req.Book)
		if err != nil && !stdErrors.Is(err, repository.ErrNotFound) {
			return nil, errors.DatabaseError("Failed to fetch book").WithError(err)
		}

		if book == nil || book.Status != models.BookStatusPublished {
			return nil, errors.NotFoundError("Book not found")
		}

		target, price, title = models.BookLine{BookID: book.ID}, book.Price, book.Title

	case models.LineKindPackage:
		if req.Package == nil {
			return nil, errors.AddValidationError("package", "is required for package items")
		}

		pkg, err := s.packageRepo.GetPackageByID(ctx, *req.Package)
		if err != nil && !stdErrors.Is(err, repository.ErrNotFound) {
			return nil, errors.DatabaseError("Failed to fetch package").WithError(err)
		}

		if pkg == nil || !pkg.IsActive {
			return nil, errors.NotFoundError("Package not found")
		}

		target = models.PackageLine{PackageID: pkg.ID, Customization: req.PackageCustomizations}
		price, title = pricing.Calculate(pkg, req.PackageCustomizations), pkg.Name

	case models.LineKindEvent:
		return nil, errors.BadRequestError("Events are added through /api/events/{id}/purchase")

	default:
		return nil, errors.AddValidationError("type", "must be book or package")
	}

	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		if cart.QuantityOf(target)+quantity > models.MaxLineQuantity {
			return errors.BadRequestError(fmt.Sprintf("A cart line is limited to %d copies", models.MaxLineQuantity))
		}

		cart.AddLine(target, quantity, price, title)
		return nil
	})
}

// AddEvent puts a paid event in the cart at its stored price. An event
// already in the cart is left as is.
func (s *cartService) AddEvent(ctx context.Context, userID, eventID uuid.UUID) (*models.Cart, error) {

	event, err := s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		if stdErrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("Event not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to fetch event").WithError(err)
	}

	if event.IsFree() {
		return nil, errors.BadRequestError("Free events do not need to be purchased, register instead")
	}

	if event.IsFull() {
		return nil, errors.BadRequestError("Event is full")
	}

	_, err = s.eventRepo.GetRegistration(ctx, event.ID, userID)
	switch {
	case err == nil:
		return nil, errors.BadRequestError("Already registered")
	case !stdErrors.Is(err, repository.ErrNotFound):
		return nil, errors.DatabaseError("Failed to check registration").WithError(err)
	}

	target := models.EventLine{EventID: event.ID}

	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		if !cart.Contains(target) {
			cart.AddLine(target, 1, event.Price, event.Title)
		}

		return nil
	})
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.Cart, error) {

	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		idx := cart.FindItem(itemID)
		if idx < 0 {
			return itemNotInCart()
		}

		// one seat per event
		if quantity > 1 && cart.Items[idx].Target.Kind() == models.LineKindEvent {
			return errors.BadRequestError("Event tickets are limited to one per user")
		}

		if quantity > models.MaxLineQuantity {
			return errors.BadRequestError(fmt.Sprintf("A cart line is limited to %d copies", models.MaxLineQuantity))
		}

		cart.SetQuantity(itemID, quantity)

		return nil
	})
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error) {

	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		if !cart.RemoveItem(itemID) {
			return itemNotInCart()
		}

		return nil
	})
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		cart.Clear()
		return nil
	})
}
