package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	"github.com/MrJamesThe3rd/tillbook/internal/database"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/tillbook/internal/ledger/store"
)

const oneOpenConstraint = "cash_sessions_one_open"

type Store struct {
	db     *sql.DB
	ledger *ledgerStore.Store
}

func New(db *sql.DB) *Store {
	return &Store{db: db, ledger: ledgerStore.New(db)}
}

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order matches selectSessionColumns.
func scanSession(s scanner) (*cashsession.Session, error) {
	var cs cashsession.Session

	var status string

	if err := s.Scan(
		&cs.ID, &cs.RestaurantID, &cs.OpenedBy, &cs.OpeningBalance, &cs.OpenedAt,
		&cs.ClosedAt, &cs.ClosedBy, &cs.ExpectedBalance, &cs.ActualBalance, &cs.Variance,
		&status, &cs.Notes,
	); err != nil {
		return nil, err
	}

	cs.Status = cashsession.Status(status)

	return &cs, nil
}

const selectSessionColumns = `
	id, restaurant_id, opened_by, opening_balance, opened_at,
	closed_at, closed_by, expected_balance, actual_balance, variance,
	status, notes
`

type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getOne(ctx context.Context, q QueryRower, query string, args ...any) (*cashsession.Session, error) {
	s, err := scanSession(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting session: %w", err)
	}

	return s, nil
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*cashsession.Session, error) {
	return SessionByID(ctx, s.db, id)
}

// SessionByID reads a session through any querier, such as a report snapshot transaction.
func SessionByID(ctx context.Context, q QueryRower, id uuid.UUID) (*cashsession.Session, error) {
	return getOne(ctx, q, `SELECT `+selectSessionColumns+` FROM cash_sessions WHERE id = $1`, id)
}

func (s *Store) GetActiveSession(ctx context.Context, restaurantID uuid.UUID) (*cashsession.Session, error) {
	return getOne(ctx, s.db,
		`SELECT `+selectSessionColumns+` FROM cash_sessions WHERE restaurant_id = $1 AND status = 'OPEN'`,
		restaurantID)
}

func (s *Store) ListSessions(ctx context.Context, restaurantID uuid.UUID, limit int) ([]*cashsession.Session, error) {
	query := `SELECT ` + selectSessionColumns + `
		FROM cash_sessions
		WHERE restaurant_id = $1
		ORDER BY opened_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, restaurantID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*cashsession.Session

	for rows.Next() {
		cs, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}

		sessions = append(sessions, cs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session rows: %w", err)
	}

	return sessions, nil
}

func (s *Store) ListEntries(ctx context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error) {
	return s.ledger.ListEntries(ctx, filter)
}

type sessionTx struct {
	*ledgerStore.Tx
}

func (s *Store) Begin(ctx context.Context) (cashsession.Tx, error) {
	tx, err := s.ledger.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	return &sessionTx{Tx: tx}, nil
}

func (t *sessionTx) GetOpenSession(ctx context.Context, restaurantID uuid.UUID) (*cashsession.Session, error) {
	return getOne(ctx, t.SQL(),
		`SELECT `+selectSessionColumns+` FROM cash_sessions WHERE restaurant_id = $1 AND status = 'OPEN'`,
		restaurantID)
}

func (t *sessionTx) LockSession(ctx context.Context, id uuid.UUID) (*cashsession.Session, error) {
	return getOne(ctx, t.SQL(), `SELECT `+selectSessionColumns+` FROM cash_sessions WHERE id = $1 FOR UPDATE`, id)
}

func (t *sessionTx) InsertSession(ctx context.Context, cs *cashsession.Session) error {
	query := `
		INSERT INTO cash_sessions (id, restaurant_id, opened_by, opening_balance, opened_at, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := t.SQL().ExecContext(ctx, query,
		cs.ID,
		cs.RestaurantID,
		cs.OpenedBy,
		cs.OpeningBalance,
		cs.OpenedAt,
		string(cs.Status),
		cs.Notes,
	)
	if err != nil {
		if database.IsUniqueViolation(err, oneOpenConstraint) {
			return fmt.Errorf("inserting session: %w", ledger.ErrConflict)
		}

		return fmt.Errorf("inserting session: %w", err)
	}

	return nil
}

func (t *sessionTx) CloseSession(ctx context.Context, cs *cashsession.Session) error {
	query := `
		UPDATE cash_sessions
		SET closed_at = $1, closed_by = $2, expected_balance = $3, actual_balance = $4,
			variance = $5, status = $6, notes = $7
		WHERE id = $8 AND status = 'OPEN'
	`

	res, err := t.SQL().ExecContext(ctx, query,
		cs.ClosedAt,
		cs.ClosedBy,
		cs.ExpectedBalance,
		cs.ActualBalance,
		cs.Variance,
		string(cs.Status),
		cs.Notes,
		cs.ID,
	)
	if err != nil {
		return fmt.Errorf("closing session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("closing session: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("closing session %s: %w", cs.ID, ledger.ErrConflict)
	}

	return nil
}
