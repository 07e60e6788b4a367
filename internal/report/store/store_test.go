package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
	"github.com/MrJamesThe3rd/tillbook/internal/report/store"
)

var sessionColumns = []string{
	"id", "restaurant_id", "opened_by", "opening_balance", "opened_at",
	"closed_at", "closed_by", "expected_balance", "actual_balance", "variance",
	"status", "notes",
}

var orderColumns = []string{
	"id", "restaurant_id", "order_number", "type", "status", "payment_status",
	"subtotal", "tax", "service_charge", "delivery_fee", "discount", "total",
	"assigned_driver_id", "rider_shift_id", "last_action_by", "created_at", "closed_at",
}

func TestStore_Snapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	restaurantID := uuid.New()
	openedAt := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM cash_sessions WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(sessionColumns).
			AddRow(id.String(), restaurantID.String(), uuid.NewString(), "1000", openedAt,
				nil, nil, nil, nil, nil, "OPEN", ""))
	mock.ExpectQuery(`FROM orders o`).
		WillReturnRows(sqlmock.NewRows(orderColumns))
	mock.ExpectRollback()

	ctx := context.Background()

	snap, err := store.New(db).Snapshot(ctx)
	require.NoError(t, err)

	s, err := snap.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cashsession.StatusOpen, s.Status)

	orders, err := snap.ListClosedOrders(ctx, restaurantID, openedAt, openedAt.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, orders)

	require.NoError(t, snap.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Snapshot_SessionNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM cash_sessions WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	ctx := context.Background()

	snap, err := store.New(db).Snapshot(ctx)
	require.NoError(t, err)

	_, err = snap.GetSession(ctx, id)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	require.NoError(t, snap.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
