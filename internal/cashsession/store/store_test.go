package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	"github.com/MrJamesThe3rd/tillbook/internal/cashsession/store"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
)

var sessionColumns = []string{
	"id", "restaurant_id", "opened_by", "opening_balance", "opened_at",
	"closed_at", "closed_by", "expected_balance", "actual_balance", "variance",
	"status", "notes",
}

var openedAt = time.Date(2025, 3, 14, 17, 0, 0, 0, time.UTC)

func TestStore_GetActiveSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	restaurantID := uuid.New()
	id := uuid.New()

	mock.ExpectQuery(`FROM cash_sessions WHERE restaurant_id = \$1 AND status = 'OPEN'`).
		WithArgs(restaurantID).
		WillReturnRows(sqlmock.NewRows(sessionColumns).
			AddRow(id.String(), restaurantID.String(), uuid.NewString(), "1000.00", openedAt,
				nil, nil, nil, nil, nil, "OPEN", ""))

	s, err := store.New(db).GetActiveSession(context.Background(), restaurantID)
	require.NoError(t, err)

	assert.Equal(t, id, s.ID)
	assert.Equal(t, cashsession.StatusOpen, s.Status)
	assert.True(t, s.OpeningBalance.Equal(decimal.NewFromInt(1000)))
	assert.Nil(t, s.ClosedAt)
	assert.Nil(t, s.Variance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetSession_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM cash_sessions WHERE id = \$1`).
		WillReturnError(sql.ErrNoRows)

	_, err = store.New(db).GetSession(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListSessions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	restaurantID := uuid.New()
	closedAt := openedAt.Add(8 * time.Hour)

	mock.ExpectQuery(`ORDER BY opened_at DESC\s+LIMIT \$2`).
		WithArgs(restaurantID, 5).
		WillReturnRows(sqlmock.NewRows(sessionColumns).
			AddRow(uuid.NewString(), restaurantID.String(), uuid.NewString(), "500", openedAt,
				closedAt, uuid.NewString(), "6500", "6450", "-50", "CLOSED", "short 50"))

	sessions, err := store.New(db).ListSessions(context.Background(), restaurantID, 5)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	s := sessions[0]
	assert.Equal(t, cashsession.StatusClosed, s.Status)
	require.NotNil(t, s.Variance)
	assert.True(t, s.Variance.Equal(decimal.NewFromInt(-50)))
	assert.Equal(t, closedAt, *s.ClosedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_InsertSession(t *testing.T) {
	newSession := func() *cashsession.Session {
		return &cashsession.Session{
			ID:             uuid.New(),
			RestaurantID:   uuid.New(),
			OpenedBy:       uuid.New(),
			OpeningBalance: decimal.NewFromInt(1000),
			OpenedAt:       openedAt,
			Status:         cashsession.StatusOpen,
		}
	}

	t.Run("Inserted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		s := newSession()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO cash_sessions").
			WithArgs(s.ID, s.RestaurantID, s.OpenedBy, sqlmock.AnyArg(), openedAt, "OPEN", "").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := store.New(db).Begin(context.Background())
		require.NoError(t, err)
		require.NoError(t, tx.InsertSession(context.Background(), s))
		require.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("OneOpenViolation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO cash_sessions").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "cash_sessions_one_open"})
		mock.ExpectRollback()

		tx, err := store.New(db).Begin(context.Background())
		require.NoError(t, err)

		err = tx.InsertSession(context.Background(), newSession())
		assert.ErrorIs(t, err, ledger.ErrConflict)
		require.NoError(t, tx.Rollback())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTx_LockAndClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	restaurantID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM cash_sessions WHERE id = \$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(sessionColumns).
			AddRow(id.String(), restaurantID.String(), uuid.NewString(), "1000", openedAt,
				nil, nil, nil, nil, nil, "OPEN", ""))
	mock.ExpectExec("UPDATE cash_sessions").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := store.New(db).Begin(context.Background())
	require.NoError(t, err)

	s, err := tx.LockSession(context.Background(), id)
	require.NoError(t, err)

	closedAt := openedAt.Add(time.Hour)
	s.ClosedAt = &closedAt
	s.Status = cashsession.StatusClosed

	// Zero rows means another transaction closed it first.
	err = tx.CloseSession(context.Background(), s)
	assert.ErrorIs(t, err, ledger.ErrConflict)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
