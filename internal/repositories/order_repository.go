package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/internal/utils"
)

type OrderRepository interface {
	Checkout(ctx context.Context, order *models.Order, cart *models.Cart) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error)
	UpdateStatus(ctx context.Context, order *models.Order, prevStatus models.OrderStatus, prevPayment models.PaymentStatus) error
	SetPaymentIntent(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

const orderColumns = `id, order_number, user_id, total_amount, status, payment_status, COALESCE(payment_intent_id, ''), created_at, updated_at`

func scanOrder(scanner interface{ Scan(dest ...any) error }) (*models.Order, error) {
	order := &models.Order{}

	err := scanner.Scan(&order.ID, &order.OrderNumber, &order.UserID, &order.TotalAmount, &order.Status,
		&order.PaymentStatus, &order.PaymentIntentID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	order.Items = []models.OrderItem{}

	return order, nil
}

// Checkout inserts the order and its items, registers the buyer for every
// event line and clears the cart. Nothing is written unless all steps succeed,
// so a line for an event the buyer already attends fails with ErrAlreadyRegistered.
func (r *orderRepository) Checkout(ctx context.Context, order *models.Order, cart *models.Cart) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	return withTx(dbCtx, r.DB, func(tx *sql.Tx) error {

		insertOrder := `
			INSERT INTO orders (id, order_number, user_id, total_amount, status, payment_status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			RETURNING created_at, updated_at`

		err := tx.QueryRowContext(dbCtx, insertOrder, order.ID, order.OrderNumber, order.UserID, order.TotalAmount,
			order.Status, order.PaymentStatus).Scan(&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("order number %s: %w", order.OrderNumber, ErrDuplicate)
			}

			return fmt.Errorf("failed to insert order: %w", err)
		}

		insertItem := `
			INSERT INTO order_items (id, order_id, kind, target_id, customization, title, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

		for _, item := range order.Items {

			var customization []byte
			if item.Customization != nil {
				if customization, err = json.Marshal(item.Customization); err != nil {
					return fmt.Errorf("failed to marshal customization: %w", err)
				}
			}

			_, err := tx.ExecContext(dbCtx, insertItem, item.ID, order.ID, item.Kind, item.TargetID, customization,
				item.Title, item.Quantity, item.UnitPrice)
			if err != nil {
				return fmt.Errorf("failed to insert an order item: %w", err)
			}
		}

		for _, eventID := range order.EventIDs() {
			if _, err := registerTx(dbCtx, tx, eventID, order.UserID, &order.ID); err != nil {
				return err
			}
		}

		return clearCartTx(dbCtx, tx, cart)
	})
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	if err := r.loadItems(dbCtx, []*models.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) GetOrderByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, `SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = $1`, paymentIntentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order for payment intent %s: %w", paymentIntentID, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	return order, nil
}

// List the orders of the user, newest first, with their items
func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int
	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(dbCtx, query, userID, size, pageOffset(page, size))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan the orders: %w", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate orders: %w", err)
	}

	if err := r.loadItems(dbCtx, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// loadItems fetches the items of all orders with one query.
func (r *orderRepository) loadItems(ctx context.Context, orders []*models.Order) error {

	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*models.Order, len(orders))
	ids := make([]string, 0, len(orders))

	for _, order := range orders {
		byID[order.ID] = order
		ids = append(ids, order.ID.String())
	}

	query := `
		SELECT id, order_id, kind, target_id, customization, title, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id`

	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get the order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		var customization []byte

		if err := rows.Scan(&item.ID, &item.OrderID, &item.Kind, &item.TargetID, &customization, &item.Title, &item.Quantity, &item.UnitPrice); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}

		if len(customization) > 0 {
			item.Customization = &models.PackageCustomization{}
			if err := json.Unmarshal(customization, item.Customization); err != nil {
				return fmt.Errorf("failed to unmarshal customization: %w", err)
			}
		}

		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate order items: %w", err)
	}

	return nil
}

// UpdateStatus persists both statuses only if neither changed since the order
// was read. Moving an order into cancelled also drops the event registrations
// it created and gives the seats back, in the same transaction.
func (r *orderRepository) UpdateStatus(ctx context.Context, order *models.Order, prevStatus models.OrderStatus, prevPayment models.PaymentStatus) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	return withTx(dbCtx, r.DB, func(tx *sql.Tx) error {

		query := `
			UPDATE orders
			SET status = $1, payment_status = $2, updated_at = NOW()
			WHERE id = $3 AND status = $4 AND payment_status = $5
			RETURNING updated_at`

		err := tx.QueryRowContext(dbCtx, query, order.Status, order.PaymentStatus, order.ID, prevStatus, prevPayment).Scan(&order.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("order %s: %w", order.ID, ErrVersionConflict)
			}

			return fmt.Errorf("failed to update order status: %w", err)
		}

		if order.Status != models.OrderStatusCancelled || prevStatus == models.OrderStatusCancelled {
			return nil
		}

		return releaseSeatsTx(dbCtx, tx, order.ID)
	})
}

// releaseSeatsTx deletes the registrations bought with the order and
// decrements the registered count of each affected event.
func releaseSeatsTx(ctx context.Context, tx *sql.Tx, orderID uuid.UUID) error {

	query := `
		WITH released AS (
			DELETE FROM event_registrations WHERE order_id = $1 RETURNING event_id
		)
		UPDATE events e
		SET registered_count = GREATEST(e.registered_count - r.seats, 0), updated_at = NOW()
		FROM (SELECT event_id, COUNT(*) AS seats FROM released GROUP BY event_id) r
		WHERE e.id = r.event_id`

	if _, err := tx.ExecContext(ctx, query, orderID); err != nil {
		return fmt.Errorf("failed to release event seats: %w", err)
	}

	return nil
}

func (r *orderRepository) SetPaymentIntent(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `UPDATE orders SET payment_intent_id = $1, updated_at = NOW() WHERE id = $2`, paymentIntentID, orderID)
	if err != nil {
		return fmt.Errorf("failed to store payment intent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}

	return nil
}
