package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tillbook/internal/database"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/tillbook/internal/ledger/store"
	"github.com/MrJamesThe3rd/tillbook/internal/order"
	orderStore "github.com/MrJamesThe3rd/tillbook/internal/order/store"
	"github.com/MrJamesThe3rd/tillbook/internal/ridershift"
)

const oneOpenConstraint = "rider_shifts_one_open"

type Store struct {
	db     *sql.DB
	ledger *ledgerStore.Store
	orders *orderStore.Store
}

func New(db *sql.DB) *Store {
	return &Store{
		db:     db,
		ledger: ledgerStore.New(db),
		orders: orderStore.New(db),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order matches selectShiftColumns.
func scanShift(s scanner) (*ridershift.Shift, error) {
	var rs ridershift.Shift

	var status string

	if err := s.Scan(
		&rs.ID, &rs.RestaurantID, &rs.RiderID, &rs.OpenedBy, &rs.OpeningFloat, &rs.OpenedAt,
		&rs.ClosedAt, &rs.ClosedBy, &rs.ClosingCashReceived, &rs.ExpectedCash, &rs.CashDifference,
		&status, &rs.Notes,
	); err != nil {
		return nil, err
	}

	rs.Status = ridershift.Status(status)

	return &rs, nil
}

const selectShiftColumns = `
	id, restaurant_id, rider_id, opened_by, opening_float, opened_at,
	closed_at, closed_by, closing_cash_received, expected_cash, cash_difference,
	status, notes
`

const selectOpenShift = `SELECT ` + selectShiftColumns + `
	FROM rider_shifts
	WHERE restaurant_id = $1 AND rider_id = $2 AND status = 'OPEN'`

func getOne(ctx context.Context, q orderStore.Querier, query string, args ...any) (*ridershift.Shift, error) {
	s, err := scanShift(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting shift: %w", err)
	}

	return s, nil
}

func (s *Store) GetShift(ctx context.Context, id uuid.UUID) (*ridershift.Shift, error) {
	return getOne(ctx, s.db, `SELECT `+selectShiftColumns+` FROM rider_shifts WHERE id = $1`, id)
}

func (s *Store) GetActiveShift(ctx context.Context, restaurantID, riderID uuid.UUID) (*ridershift.Shift, error) {
	return getOne(ctx, s.db, selectOpenShift, restaurantID, riderID)
}

func (s *Store) ListActiveShifts(ctx context.Context, restaurantID uuid.UUID) ([]*ridershift.Shift, error) {
	query := `SELECT ` + selectShiftColumns + `
		FROM rider_shifts
		WHERE restaurant_id = $1 AND status = 'OPEN'
		ORDER BY opened_at ASC`

	rows, err := s.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("listing active shifts: %w", err)
	}
	defer rows.Close()

	var shifts []*ridershift.Shift

	for rows.Next() {
		rs, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning shift: %w", err)
		}

		shifts = append(shifts, rs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shift rows: %w", err)
	}

	return shifts, nil
}

func (s *Store) ListShiftOrders(ctx context.Context, shiftID uuid.UUID) ([]*order.Order, error) {
	return s.orders.ListByShift(ctx, shiftID)
}

type shiftTx struct {
	*ledgerStore.Tx
	orders *orderStore.Store
}

func (s *Store) Begin(ctx context.Context) (ridershift.Tx, error) {
	tx, err := s.ledger.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	return &shiftTx{Tx: tx, orders: orderStore.New(tx.SQL())}, nil
}

func (t *shiftTx) GetOpenShift(ctx context.Context, restaurantID, riderID uuid.UUID) (*ridershift.Shift, error) {
	return getOne(ctx, t.SQL(), selectOpenShift, restaurantID, riderID)
}

func (t *shiftTx) LockShift(ctx context.Context, id uuid.UUID) (*ridershift.Shift, error) {
	return getOne(ctx, t.SQL(), `SELECT `+selectShiftColumns+` FROM rider_shifts WHERE id = $1 FOR UPDATE`, id)
}

func (t *shiftTx) ListShiftOrders(ctx context.Context, shiftID uuid.UUID) ([]*order.Order, error) {
	return t.orders.ListByShift(ctx, shiftID)
}

func (t *shiftTx) InsertShift(ctx context.Context, rs *ridershift.Shift) error {
	query := `
		INSERT INTO rider_shifts (id, restaurant_id, rider_id, opened_by, opening_float, opened_at, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := t.SQL().ExecContext(ctx, query,
		rs.ID,
		rs.RestaurantID,
		rs.RiderID,
		rs.OpenedBy,
		rs.OpeningFloat,
		rs.OpenedAt,
		string(rs.Status),
		rs.Notes,
	)
	if err != nil {
		if database.IsUniqueViolation(err, oneOpenConstraint) {
			return fmt.Errorf("inserting shift: %w", ledger.ErrConflict)
		}

		return fmt.Errorf("inserting shift: %w", err)
	}

	return nil
}

func (t *shiftTx) CloseShift(ctx context.Context, rs *ridershift.Shift) error {
	query := `
		UPDATE rider_shifts
		SET closed_at = $1, closed_by = $2, closing_cash_received = $3, expected_cash = $4,
			cash_difference = $5, status = $6, notes = $7
		WHERE id = $8 AND status = 'OPEN'
	`

	res, err := t.SQL().ExecContext(ctx, query,
		rs.ClosedAt,
		rs.ClosedBy,
		rs.ClosingCashReceived,
		rs.ExpectedCash,
		rs.CashDifference,
		string(rs.Status),
		rs.Notes,
		rs.ID,
	)
	if err != nil {
		return fmt.Errorf("closing shift: %w", err)
	}

	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("closing shift: %w", err)
	} else if n == 0 {
		return fmt.Errorf("closing shift %s: %w", rs.ID, ledger.ErrConflict)
	}

	return nil
}
