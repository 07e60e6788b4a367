package store

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tillbook/internal/database"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
)

const orderCreditConstraint = "ledger_entries_order_credit_uniq"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order matches selectEntryColumns.
func scanEntry(s scanner) (*ledger.Entry, error) {
	var e ledger.Entry

	var typeStr, refStr string

	if err := s.Scan(
		&e.ID, &e.Seq, &e.PostingGroupID, &e.RestaurantID, &e.AccountID, &typeStr, &e.Amount,
		&refStr, &e.ReferenceID, &e.Description, &e.ProcessedBy, &e.CreatedAt,
	); err != nil {
		return nil, err
	}

	e.Type = ledger.TransactionType(typeStr)
	e.ReferenceType = ledger.ReferenceType(refStr)

	return &e, nil
}

const selectEntryColumns = `
	id, seq, posting_group_id, restaurant_id, account_id, transaction_type, amount,
	reference_type, reference_id, description, processed_by, created_at
`

func (s *Store) ListEntries(ctx context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error) {
	return listEntries(ctx, s.db, filter)
}

func listEntries(ctx context.Context, q querier, filter ledger.EntryFilter) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM ledger_entries WHERE seq > $1`

	args := []any{filter.AfterSeq}
	argIdx := 2

	add := func(cond string, v any) {
		query += fmt.Sprintf(" AND "+cond, argIdx)

		args = append(args, v)
		argIdx++
	}

	if filter.RestaurantID != uuid.Nil {
		add("restaurant_id = $%d", filter.RestaurantID)
	}

	switch {
	case filter.HouseCash:
		query += " AND account_id IS NULL"
	case filter.AccountID != nil:
		add("account_id = $%d", *filter.AccountID)
	}

	if filter.Type != nil {
		add("transaction_type = $%d", string(*filter.Type))
	}

	if filter.ReferenceType != nil {
		add("reference_type = $%d", string(*filter.ReferenceType))
	}

	if filter.ReferenceID != nil {
		add("reference_id = $%d", *filter.ReferenceID)
	}

	if filter.Since != nil {
		add("created_at >= $%d", *filter.Since)
	}

	if filter.Until != nil {
		add("created_at <= $%d", *filter.Until)
	}

	query += " ORDER BY seq ASC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entry rows: %w", err)
	}

	return entries, nil
}

func lockKey(key string) int64 {
	h := fnv.New64a()
	h.Write([]byte(key))

	return int64(h.Sum64())
}

// Tx is a ledger unit of work backed by a database transaction.
// Session and shift stores embed it to share the transaction.
type Tx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (ledger.UnitOfWork, error) {
	return s.BeginTx(ctx)
}

func (s *Store) BeginTx(ctx context.Context) (*Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning ledger tx: %w", err)
	}

	return &Tx{tx: dbTx}, nil
}

// BeginSnapshot opens a read-only repeatable-read transaction for consistent multi-query reads.
func (s *Store) BeginSnapshot(ctx context.Context) (*Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("beginning snapshot: %w", err)
	}

	return &Tx{tx: dbTx}, nil
}

// SQL exposes the underlying transaction to stores that join it.
func (t *Tx) SQL() *sql.Tx { return t.tx }

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }

func (t *Tx) Lock(ctx context.Context, key string) error {
	if _, err := t.tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey(key)); err != nil {
		return fmt.Errorf("acquiring lock %q: %w", key, err)
	}

	return nil
}

func (t *Tx) ListEntries(ctx context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error) {
	return listEntries(ctx, t.tx, filter)
}

func (t *Tx) InsertEntries(ctx context.Context, entries []*ledger.Entry) error {
	query := `
		INSERT INTO ledger_entries (
			id, posting_group_id, restaurant_id, account_id, transaction_type, amount,
			reference_type, reference_id, description, processed_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq
	`

	for _, e := range entries {
		err := t.tx.QueryRowContext(ctx, query,
			e.ID,
			e.PostingGroupID,
			e.RestaurantID,
			e.AccountID,
			string(e.Type),
			e.Amount,
			string(e.ReferenceType),
			e.ReferenceID,
			e.Description,
			e.ProcessedBy,
			e.CreatedAt,
		).Scan(&e.Seq)
		if err != nil {
			if database.IsUniqueViolation(err, orderCreditConstraint) {
				return fmt.Errorf("inserting entry: %w", ledger.ErrDuplicatePosting)
			}

			return fmt.Errorf("inserting entry: %w", err)
		}
	}

	return nil
}

func (t *Tx) InsertPayout(ctx context.Context, p *ledger.Payout) error {
	query := `
		INSERT INTO payouts (id, restaurant_id, amount, category, notes, reference_id, processed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := t.tx.ExecContext(ctx, query,
		p.ID,
		p.RestaurantID,
		p.Amount,
		p.Category,
		p.Notes,
		p.ReferenceID,
		p.ProcessedBy,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting payout: %w", err)
	}

	return nil
}
