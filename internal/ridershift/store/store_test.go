package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
	"github.com/MrJamesThe3rd/tillbook/internal/ridershift"
	"github.com/MrJamesThe3rd/tillbook/internal/ridershift/store"
)

var shiftColumns = []string{
	"id", "restaurant_id", "rider_id", "opened_by", "opening_float", "opened_at",
	"closed_at", "closed_by", "closing_cash_received", "expected_cash", "cash_difference",
	"status", "notes",
}

var orderColumns = []string{
	"id", "restaurant_id", "order_number", "type", "status", "payment_status",
	"subtotal", "tax", "service_charge", "delivery_fee", "discount", "total",
	"assigned_driver_id", "rider_shift_id", "last_action_by", "created_at", "closed_at",
}

var openedAt = time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

func TestStore_ListActiveShifts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	restaurantID := uuid.New()
	rider := uuid.New()

	mock.ExpectQuery(`FROM rider_shifts\s+WHERE restaurant_id = \$1 AND status = 'OPEN'`).
		WithArgs(restaurantID).
		WillReturnRows(sqlmock.NewRows(shiftColumns).
			AddRow(uuid.NewString(), restaurantID.String(), rider.String(), uuid.NewString(), "2000.00", openedAt,
				nil, nil, nil, nil, nil, "OPEN", ""))

	shifts, err := store.New(db).ListActiveShifts(context.Background(), restaurantID)
	require.NoError(t, err)
	require.Len(t, shifts, 1)

	assert.Equal(t, rider, shifts[0].RiderID)
	assert.True(t, shifts[0].OpeningFloat.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, ridershift.StatusOpen, shifts[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_LockShiftAndListOrders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	restaurantID := uuid.New()
	rider := uuid.New()
	closedAt := openedAt.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM rider_shifts WHERE id = \$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(shiftColumns).
			AddRow(id.String(), restaurantID.String(), rider.String(), uuid.NewString(), "2000", openedAt,
				nil, nil, nil, nil, nil, "OPEN", ""))
	mock.ExpectQuery(`WHERE o.rider_shift_id = \$1 AND o.status <> \$2`).
		WithArgs(id, "CANCELLED").
		WillReturnRows(sqlmock.NewRows(orderColumns).
			AddRow(uuid.NewString(), restaurantID.String(), "17", "DELIVERY", "CLOSED", "PAID",
				"1400", "100", "0", "0", "0", "1500",
				rider.String(), id.String(), uuid.NewString(), openedAt, closedAt))
	mock.ExpectRollback()

	tx, err := store.New(db).Begin(context.Background())
	require.NoError(t, err)

	s, err := tx.LockShift(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, rider, s.RiderID)

	orders, err := tx.ListShiftOrders(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].IsDeliveredAndPaid())
	assert.Equal(t, id, *orders[0].RiderShiftID)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_InsertShift_OneOpenViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO rider_shifts").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "rider_shifts_one_open"})
	mock.ExpectRollback()

	tx, err := store.New(db).Begin(context.Background())
	require.NoError(t, err)

	err = tx.InsertShift(context.Background(), &ridershift.Shift{
		ID:           uuid.New(),
		RestaurantID: uuid.New(),
		RiderID:      uuid.New(),
		OpeningFloat: decimal.Zero,
		OpenedAt:     openedAt,
		Status:       ridershift.StatusOpen,
	})
	assert.ErrorIs(t, err, ledger.ErrConflict)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_CloseShift(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	closedAt := openedAt.Add(5 * time.Hour)
	s := &ridershift.Shift{
		ID:                  uuid.New(),
		ClosedAt:            &closedAt,
		ClosedBy:            new(uuid.New()),
		ClosingCashReceived: new(decimal.NewFromInt(6500)),
		ExpectedCash:        new(decimal.NewFromInt(6500)),
		CashDifference:      new(decimal.Zero),
		Status:              ridershift.StatusClosed,
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rider_shifts").
		WithArgs(closedAt, *s.ClosedBy, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "CLOSED", "", s.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := store.New(db).Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.CloseShift(context.Background(), s))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
