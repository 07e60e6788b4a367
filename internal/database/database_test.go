package database_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tillbook/internal/database"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "cash_sessions_one_open"}

	assert.True(t, database.IsUniqueViolation(dup, ""))
	assert.True(t, database.IsUniqueViolation(fmt.Errorf("inserting session: %w", dup), "cash_sessions_one_open"))
	assert.False(t, database.IsUniqueViolation(dup, "rider_shifts_one_open"))
	assert.False(t, database.IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, database.IsUniqueViolation(errors.New("23505"), ""))
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))

	// 001 and 002 already applied.
	for _, name := range []string{"migrations/001_ledger.sql", "migrations/002_sessions.sql"} {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(name).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("migrations/003_orders.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS orders").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs("migrations/003_orders.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, database.Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
