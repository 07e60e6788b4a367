package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tillbook/internal/order"
)

// Querier is satisfied by both *sql.DB and *sql.Tx so reads can join a caller's transaction.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db Querier
}

func New(db Querier) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order matches selectOrderColumns.
func scanOrder(s scanner) (*order.Order, error) {
	var o order.Order

	var typeStr, statusStr, paymentStr string

	if err := s.Scan(
		&o.ID, &o.RestaurantID, &o.OrderNumber, &typeStr, &statusStr, &paymentStr,
		&o.Subtotal, &o.Tax, &o.ServiceCharge, &o.DeliveryFee, &o.Discount, &o.Total,
		&o.AssignedDriverID, &o.RiderShiftID, &o.LastActionBy, &o.CreatedAt, &o.ClosedAt,
	); err != nil {
		return nil, err
	}

	o.Type = order.Type(typeStr)
	o.Status = order.Status(statusStr)
	o.PaymentStatus = order.PaymentStatus(paymentStr)

	return &o, nil
}

const selectOrderColumns = `
	o.id, o.restaurant_id, o.order_number, o.type, o.status, o.payment_status,
	o.subtotal, o.tax, o.service_charge, o.delivery_fee, o.discount, o.total,
	o.assigned_driver_id, o.rider_shift_id, o.last_action_by, o.created_at, o.closed_at
`

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + ` FROM orders o WHERE o.id = $1`

	o, err := scanOrder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrNotFound
		}

		return nil, fmt.Errorf("getting order: %w", err)
	}

	return o, nil
}

// ListClosed returns CLOSED orders whose closed_at falls in [from, to], with items and payments.
func (s *Store) ListClosed(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + `
		FROM orders o
		WHERE o.restaurant_id = $1 AND o.status = $2 AND o.closed_at >= $3 AND o.closed_at <= $4
		ORDER BY o.closed_at ASC`

	orders, err := s.list(ctx, query, restaurantID, order.StatusClosed, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing closed orders: %w", err)
	}

	for _, o := range orders {
		if err := s.loadLines(ctx, o); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

// ListByShift returns every non-cancelled order attributed to a rider shift.
func (s *Store) ListByShift(ctx context.Context, shiftID uuid.UUID) ([]*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + `
		FROM orders o
		WHERE o.rider_shift_id = $1 AND o.status <> $2
		ORDER BY o.created_at ASC`

	orders, err := s.list(ctx, query, shiftID, order.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("listing shift orders: %w", err)
	}

	return orders, nil
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*order.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*order.Order

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, nil
}

func (s *Store) loadLines(ctx context.Context, o *order.Order) error {
	itemRows, err := s.db.QueryContext(ctx, `
		SELECT name, category, quantity, unit_price, total
		FROM order_items
		WHERE order_id = $1
		ORDER BY position ASC`, o.ID)
	if err != nil {
		return fmt.Errorf("listing order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it order.Item
		if err := itemRows.Scan(&it.Name, &it.Category, &it.Quantity, &it.UnitPrice, &it.Total); err != nil {
			return fmt.Errorf("scanning order item: %w", err)
		}

		o.Items = append(o.Items, it)
	}

	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("iterating order items: %w", err)
	}

	payRows, err := s.db.QueryContext(ctx, `
		SELECT method, amount
		FROM order_payments
		WHERE order_id = $1
		ORDER BY created_at ASC`, o.ID)
	if err != nil {
		return fmt.Errorf("listing order payments: %w", err)
	}
	defer payRows.Close()

	for payRows.Next() {
		var p order.Payment
		if err := payRows.Scan(&p.Method, &p.Amount); err != nil {
			return fmt.Errorf("scanning order payment: %w", err)
		}

		o.Payments = append(o.Payments, p)
	}

	if err := payRows.Err(); err != nil {
		return fmt.Errorf("iterating order payments: %w", err)
	}

	return nil
}
