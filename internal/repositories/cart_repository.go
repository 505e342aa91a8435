package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/internal/utils"
)

type CartRepository interface {
	CreateCart(ctx context.Context, cart *models.Cart) error
	GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	UpdateCart(ctx context.Context, cart *models.Cart) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

func marshalItems(items []models.CartItem) ([]byte, error) {
	if items == nil {
		items = []models.CartItem{}
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cart items: %w", err)
	}

	return itemsJSON, nil
}

func (r *cartRepository) CreateCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := marshalItems(cart.Items)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO carts (id, user_id, items, total_amount, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, NOW(), NOW())
		RETURNING version, created_at, updated_at`

	err = r.DB.QueryRowContext(dbCtx, query, cart.ID, cart.UserID, itemsJSON, cart.TotalAmount).Scan(&cart.Version, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("cart for user %s: %w", cart.UserID, ErrDuplicate)
		}

		return fmt.Errorf("failed to create cart: %w", err)
	}

	return nil
}

func (r *cartRepository) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, items, total_amount, version, created_at, updated_at
		FROM carts
		WHERE user_id = $1`

	cart := &models.Cart{}

	var itemsJSON []byte

	err := r.DB.QueryRowContext(dbCtx, query, userID).Scan(&cart.ID, &cart.UserID, &itemsJSON, &cart.TotalAmount, &cart.Version, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &cart.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart items: %w", err)
	}

	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}

	return cart, nil
}

// UpdateCart is a compare-and-swap on cart.Version. A stale version yields
// ErrVersionConflict and leaves the stored cart untouched.
func (r *cartRepository) UpdateCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := marshalItems(cart.Items)
	if err != nil {
		return err
	}

	query := `
		UPDATE carts
		SET items = $1, total_amount = $2, version = version + 1, updated_at = NOW()
		WHERE id = $3 AND version = $4
		RETURNING version, updated_at`

	err = r.DB.QueryRowContext(dbCtx, query, itemsJSON, cart.TotalAmount, cart.ID, cart.Version).Scan(&cart.Version, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("cart %s at version %d: %w", cart.ID, cart.Version, ErrVersionConflict)
		}

		return fmt.Errorf("failed to update the cart: %w", err)
	}

	return nil
}

// clearCartTx empties the cart inside a checkout transaction.
func clearCartTx(ctx context.Context, tx *sql.Tx, cart *models.Cart) error {

	query := `
		UPDATE carts
		SET items = '[]'::jsonb, total_amount = 0, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`

	err := tx.QueryRowContext(ctx, query, cart.ID, cart.Version).Scan(&cart.Version, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("cart %s at version %d: %w", cart.ID, cart.Version, ErrVersionConflict)
		}

		return fmt.Errorf("failed to clear cart: %w", err)
	}

	cart.Clear()

	return nil
}
