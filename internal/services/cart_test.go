package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appErrors "github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/models"
	repository "github.com/zenjaura/marketplace/internal/repositories"
	"github.com/zenjaura/marketplace/internal/repositories/mocks"
	service "github.com/zenjaura/marketplace/internal/services"
)

type cartFixture struct {
	service     service.CartService
	cartRepo    *mocks.CartRepository
	bookRepo    *mocks.BookRepository
	packageRepo *mocks.PackageRepository
	eventRepo   *mocks.EventRepository
}

func setupCartServiceTest() *cartFixture {
	f := &cartFixture{
		cartRepo:    new(mocks.CartRepository),
		bookRepo:    new(mocks.BookRepository),
		packageRepo: new(mocks.PackageRepository),
		eventRepo:   new(mocks.EventRepository),
	}
	f.service = service.NewCartService(f.cartRepo, f.bookRepo, f.packageRepo, f.eventRepo)

	return f
}

func (f *cartFixture) assertExpectations(t *testing.T) {
	f.cartRepo.AssertExpectations(t)
	f.bookRepo.AssertExpectations(t)
	f.packageRepo.AssertExpectations(t)
	f.eventRepo.AssertExpectations(t)
}

func assertAppError(t *testing.T, err error, code string, status int) {
	t.Helper()

	appErr, ok := appErrors.IsAppError(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, status, appErr.StatusCode)
}

func storedCart(userID uuid.UUID, version int64) *models.Cart {
	cart := models.NewCart(userID)
	cart.Version = version

	return cart
}

func standardPackage() *models.Package {
	return &models.Package{
		ID:        uuid.New(),
		Name:      "Standard",
		BasePrice: 299,
		IsActive:  true,
		AddOns: models.PackageAddOns{
			PrintedCopies: models.PrintedCopiesAddOn{BaseQuantity: 25, PricePerUnit: 6},
			ExtraPages:    models.ExtraPagesAddOn{BasePagesIncluded: 200, PricePerPage: 0.20},
		},
	}
}

func TestCartService_GetCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates an empty cart on first access", func(t *testing.T) {
		// Arrange
		f := setupCartServiceTest()
		userID := uuid.New()

		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(nil, repository.ErrNotFound).Once()
		f.cartRepo.On("CreateCart", mock.Anything, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		// Act
		cart, err := f.service.GetCart(ctx, userID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, userID, cart.UserID)
		assert.Empty(t, cart.Items)
		assert.Zero(t, cart.TotalAmount)
		f.assertExpectations(t)
	})

	t.Run("Concurrent creation re-reads the winner", func(t *testing.T) {
		// Arrange
		f := setupCartServiceTest()
		userID := uuid.New()
		winner := storedCart(userID, 1)

		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(nil, repository.ErrNotFound).Once()
		f.cartRepo.On("CreateCart", mock.Anything, mock.AnythingOfType("*models.Cart")).Return(repository.ErrDuplicate).Once()
		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(winner, nil).Once()

		// Act
		cart, err := f.service.GetCart(ctx, userID)

		// Assert
		require.NoError(t, err)
		assert.Same(t, winner, cart)
		f.assertExpectations(t)
	})

	t.Run("Database failure", func(t *testing.T) {
		f := setupCartServiceTest()
		userID := uuid.New()
		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(nil, errors.New("connection refused")).Once()

		cart, err := f.service.GetCart(ctx, userID)

		assert.Nil(t, cart)
		assertAppError(t, err, appErrors.ErrCodeDatabaseError, http.StatusInternalServerError)
	})
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Book at its current price", func(t *testing.T) {
		// Arrange
		f := setupCartServiceTest()
		userID := uuid.New()
		book := &models.Book{ID: uuid.New(), Title: "Dune", Price: 12.99, Status: models.BookStatusPublished}

		f.bookRepo.On("GetBookByID", mock.Anything, book.ID).Return(book, nil).Once()
		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(storedCart(userID, 3), nil).Once()
		f.cartRepo.On("UpdateCart", mock.Anything, mock.MatchedBy(func(c *models.Cart) bool {
			return c.Version == 3 && len(c.Items) == 1
		})).Return(nil).Once()

		// Act
		cart, err := f.service.AddItem(ctx, userID, &models.AddItemRequest{Type: models.LineKindBook, Book: &book.ID, Quantity: 2})

		// Assert
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 2, cart.Items[0].Quantity)
		assert.Equal(t, 12.99, cart.Items[0].Price)
		assert.Equal(t, "Dune", cart.Items[0].Title)
		assert.InDelta(t, 25.98, cart.TotalAmount, 0.001)
		f.assertExpectations(t)
	})

	t.Run("Merge past the line limit", func(t *testing.T) {
		// Arrange
		f := setupCartServiceTest()
		userID := uuid.New()
		book := &models.Book{ID: uuid.New(), Title: "Dune", Price: 12.99, Status: models.BookStatusPublished}
		stored := storedCart(userID, 3)
		stored.AddLine(models.BookLine{BookID: book.ID}, models.MaxLineQuantity-1, 12.99, "Dune")

		f.bookRepo.On("GetBookByID", mock.Anything, book.ID).Return(book, nil).Once()
		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(stored, nil).Once()

		// Act
		cart, err := f.service.AddItem(ctx, userID, &models.AddItemRequest{Type: models.LineKindBook, Book: &book.ID, Quantity: 2})

		// Assert
		assert.Nil(t, cart)
		assertAppError(t, err, appErrors.ErrCodeBadRequest, http.StatusBadRequest)
		assert.Equal(t, models.MaxLineQuantity-1, stored.Items[0].Quantity)
		f.cartRepo.AssertNotCalled(t, "UpdateCart", mock.Anything, mock.Anything)
	})

	t.Run("Package priced by the calculator", func(t *testing.T) {
		// Arrange
		f := setupCartServiceTest()
		userID := uuid.New()
		pkg := standardPackage()

		f.packageRepo.On("GetPackageByID", mock.Anything, pkg.ID).Return(pkg, nil).Once()
		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(storedCart(userID, 0), nil).Once()
		f.cartRepo.On("UpdateCart", mock.Anything, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		// Act
		cart, err := f.service.AddItem(ctx, userID, &models.AddItemRequest{
			Type:                  models.LineKindPackage,
			Package:               &pkg.ID,
			PackageCustomizations: &models.PackageCustomization{PrintedCopies: 40, TotalPages: 250},
		})

		// Assert
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 1, cart.Items[0].Quantity)
		assert.Equal(t, 399.0, cart.Items[0].Price)
		assert.Equal(t, 399.0, cart.TotalAmount)
		f.assertExpectations(t)
	})

	t.Run("Event lines are rejected", func(t *testing.T) {
		f := setupCartServiceTest()

		cart, err := f.service.AddItem(ctx, uuid.New(), &models.AddItemRequest{Type: models.LineKindEvent})

		assert.Nil(t, cart)
		assertAppError(t, err, appErrors.ErrCodeBadRequest, http.StatusBadRequest)
		f.assertExpectations(t)
	})

	t.Run("Unpublished book is not for sale", func(t *testing.T) {
		f := setupCartServiceTest()
		book := &models.Book{ID: uuid.New(), Status: models.BookStatusApproved, Price: 10}
		f.bookRepo.On("GetBookByID", mock.Anything, book.ID).Return(book, nil).Once()

		cart, err := f.service.AddItem(ctx, uuid.New(), &models.AddItemRequest{Type: models.LineKindBook, Book: &book.ID})

		assert.Nil(t, cart)
		assertAppError(t, err, appErrors.ErrCodeNotFound, http.StatusNotFound)
		f.assertExpectations(t)
	})

	t.Run("Missing package", func(t *testing.T) {
		f := setupCartServiceTest()
		pkgID := uuid.New()
		f.packageRepo.On("GetPackageByID", mock.Anything, pkgID).Return(nil, repository.ErrNotFound).Once()

		cart, err := f.service.AddItem(ctx, uuid.New(), &models.AddItemRequest{Type: models.LineKindPackage, Package: &pkgID})

		assert.Nil(t, cart)
		assertAppError(t, err, appErrors.ErrCodeNotFound, http.StatusNotFound)
	})

	t.Run("Version conflict is retried on a fresh read", func(t *testing.T) {
		// Arrange
		f := setupCartServiceTest()
		userID := uuid.New()
		book := &models.Book{ID: uuid.New(), Title: "Dune", Price: 10, Status: models.BookStatusPublished}

		// a concurrent writer added another line and bumped the version
		fresh := storedCart(userID, 2)
		fresh.AddLine(models.BookLine{BookID: uuid.New()}, 1, 5, "Other")

		f.bookRepo.On("GetBookByID", mock.Anything, book.ID).Return(book, nil).Once()
		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(storedCart(userID, 1), nil).Once()
		f.cartRepo.On("UpdateCart", mock.Anything, mock.MatchedBy(func(c *models.Cart) bool { return c.Version == 1 })).
			Return(repository.ErrVersionConflict).Once()
		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(fresh, nil).Once()
		f.cartRepo.On("UpdateCart", mock.Anything, mock.MatchedBy(func(c *models.Cart) bool { return c.Version == 2 })).
			Return(nil).Once()

		// Act
		cart, err := f.service.AddItem(ctx, userID, &models.AddItemRequest{Type: models.LineKindBook, Book: &book.ID})

		// Assert
		require.NoError(t, err)
		assert.Len(t, cart.Items, 2)
		assert.Equal(t, 15.0, cart.TotalAmount)
		f.assertExpectations(t)
	})

	t.Run("Conflict after three attempts", func(t *testing.T) {
		// Arrange
		f := setupCartServiceTest()
		userID := uuid.New()
		book := &models.Book{ID: uuid.New(), Price: 10, Status: models.BookStatusPublished}

		f.bookRepo.On("GetBookByID", mock.Anything, book.ID).Return(book, nil).Once()
		for range 3 {
			f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(storedCart(userID, 1), nil).Once()
		}
		f.cartRepo.On("UpdateCart", mock.Anything, mock.AnythingOfType("*models.Cart")).Return(repository.ErrVersionConflict).Times(3)

		// Act
		cart, err := f.service.AddItem(ctx, userID, &models.AddItemRequest{Type: models.LineKindBook, Book: &book.ID})

		// Assert
		assert.Nil(t, cart)
		assertAppError(t, err, appErrors.ErrCodeConflict, http.StatusConflict)
		f.assertExpectations(t)
	})
}

func TestCartService_AddEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("Priced from the stored event", func(t *testing.T) {
		// Arrange
		f := setupCartServiceTest()
		userID := uuid.New()
		event := &models.Event{ID: uuid.New(), Title: "Launch", Price: 25, MaxAttendees: 100, RegisteredCount: 10}

		f.eventRepo.On("GetEventByID", mock.Anything, event.ID).Return(event, nil).Once()
		f.eventRepo.On("GetRegistration", mock.Anything, event.ID, userID).Return(nil, repository.ErrNotFound).Once()
		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(storedCart(userID, 0), nil).Once()
		f.cartRepo.On("UpdateCart", mock.Anything, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		// Act
		cart, err := f.service.AddEvent(ctx, userID, event.ID)

		// Assert
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, models.LineKindEvent, cart.Items[0].Target.Kind())
		assert.Equal(t, 25.0, cart.TotalAmount)
		f.assertExpectations(t)
	})

	t.Run("Already in the cart", func(t *testing.T) {
		// Arrange
		f := setupCartServiceTest()
		userID := uuid.New()
		event := &models.Event{ID: uuid.New(), Title: "Launch", Price: 25}
		existing := storedCart(userID, 4)
		existing.AddLine(models.EventLine{EventID: event.ID}, 1, 25, "Launch")

		f.eventRepo.On("GetEventByID", mock.Anything, event.ID).Return(event, nil).Once()
		f.eventRepo.On("GetRegistration", mock.Anything, event.ID, userID).Return(nil, repository.ErrNotFound).Once()
		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(existing, nil).Once()
		f.cartRepo.On("UpdateCart", mock.Anything, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		// Act
		cart, err := f.service.AddEvent(ctx, userID, event.ID)

		// Assert
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 1, cart.Items[0].Quantity)
		assert.Equal(t, 25.0, cart.TotalAmount)
	})

	t.Run("Already holding a seat", func(t *testing.T) {
		// Arrange
		f := setupCartServiceTest()
		userID := uuid.New()
		event := &models.Event{ID: uuid.New(), Title: "Launch", Price: 25, MaxAttendees: 100, RegisteredCount: 10}

		f.eventRepo.On("GetEventByID", mock.Anything, event.ID).Return(event, nil).Once()
		f.eventRepo.On("GetRegistration", mock.Anything, event.ID, userID).
			Return(&models.Registration{EventID: event.ID, UserID: userID}, nil).Once()

		// Act
		cart, err := f.service.AddEvent(ctx, userID, event.ID)

		// Assert
		assert.Nil(t, cart)
		assertAppError(t, err, appErrors.ErrCodeBadRequest, http.StatusBadRequest)
		assert.Contains(t, err.Error(), "Already registered")
		f.cartRepo.AssertNotCalled(t, "GetCartByUserID", mock.Anything, mock.Anything)
	})

	t.Run("Free events are registered, not bought", func(t *testing.T) {
		f := setupCartServiceTest()
		event := &models.Event{ID: uuid.New(), Price: 0}
		f.eventRepo.On("GetEventByID", mock.Anything, event.ID).Return(event, nil).Once()

		cart, err := f.service.AddEvent(ctx, uuid.New(), event.ID)

		assert.Nil(t, cart)
		assertAppError(t, err, appErrors.ErrCodeBadRequest, http.StatusBadRequest)
		f.cartRepo.AssertNotCalled(t, "UpdateCart", mock.Anything, mock.Anything)
	})

	t.Run("Full event", func(t *testing.T) {
		f := setupCartServiceTest()
		event := &models.Event{ID: uuid.New(), Price: 10, MaxAttendees: 2, RegisteredCount: 2}
		f.eventRepo.On("GetEventByID", mock.Anything, event.ID).Return(event, nil).Once()

		_, err := f.service.AddEvent(ctx, uuid.New(), event.ID)

		assertAppError(t, err, appErrors.ErrCodeBadRequest, http.StatusBadRequest)
		assert.Contains(t, err.Error(), "Event is full")
	})
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()

	cartWithBook := func(userID uuid.UUID) (*models.Cart, uuid.UUID) {
		cart := storedCart(userID, 1)
		item := cart.AddLine(models.BookLine{BookID: uuid.New()}, 1, 10, "Book")
		return cart, item.ID
	}

	t.Run("Update quantity recomputes the total", func(t *testing.T) {
		f := setupCartServiceTest()
		userID := uuid.New()
		cart, itemID := cartWithBook(userID)

		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(cart, nil).Once()
		f.cartRepo.On("UpdateCart", mock.Anything, cart).Return(nil).Once()

		updated, err := f.service.UpdateQuantity(ctx, userID, itemID, 4)

		require.NoError(t, err)
		assert.Equal(t, 40.0, updated.TotalAmount)
	})

	t.Run("Zero quantity removes the line", func(t *testing.T) {
		f := setupCartServiceTest()
		userID := uuid.New()
		cart, itemID := cartWithBook(userID)

		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(cart, nil).Once()
		f.cartRepo.On("UpdateCart", mock.Anything, cart).Return(nil).Once()

		updated, err := f.service.UpdateQuantity(ctx, userID, itemID, 0)

		require.NoError(t, err)
		assert.Empty(t, updated.Items)
		assert.Zero(t, updated.TotalAmount)
	})

	t.Run("Unknown item", func(t *testing.T) {
		f := setupCartServiceTest()
		userID := uuid.New()
		cart, _ := cartWithBook(userID)
		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(cart, nil).Twice()

		_, err := f.service.UpdateQuantity(ctx, userID, uuid.New(), 2)
		assertAppError(t, err, appErrors.ErrCodeNotFound, http.StatusNotFound)

		_, err = f.service.RemoveItem(ctx, userID, uuid.New())
		assertAppError(t, err, appErrors.ErrCodeNotFound, http.StatusNotFound)

		f.cartRepo.AssertNotCalled(t, "UpdateCart", mock.Anything, mock.Anything)
	})

	t.Run("Clear", func(t *testing.T) {
		f := setupCartServiceTest()
		userID := uuid.New()
		cart, _ := cartWithBook(userID)

		f.cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(cart, nil).Once()
		f.cartRepo.On("UpdateCart", mock.Anything, cart).Return(nil).Once()

		cleared, err := f.service.ClearCart(ctx, userID)

		require.NoError(t, err)
		assert.Empty(t, cleared.Items)
		assert.Zero(t, cleared.TotalAmount)
	})
}
