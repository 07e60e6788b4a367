package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	sessionStore "github.com/MrJamesThe3rd/tillbook/internal/cashsession/store"
	ledgerStore "github.com/MrJamesThe3rd/tillbook/internal/ledger/store"
	"github.com/MrJamesThe3rd/tillbook/internal/order"
	orderStore "github.com/MrJamesThe3rd/tillbook/internal/order/store"
	"github.com/MrJamesThe3rd/tillbook/internal/report"
)

type Store struct {
	ledger *ledgerStore.Store
}

func New(db *sql.DB) *Store {
	return &Store{ledger: ledgerStore.New(db)}
}

// snapshot reads everything through one read-only repeatable-read transaction,
// so concurrent postings never show up halfway through a report.
type snapshot struct {
	*ledgerStore.Tx
	orders *orderStore.Store
}

func (s *Store) Snapshot(ctx context.Context) (report.Snapshot, error) {
	tx, err := s.ledger.BeginSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &snapshot{Tx: tx, orders: orderStore.New(tx.SQL())}, nil
}

func (s *snapshot) GetSession(ctx context.Context, id uuid.UUID) (*cashsession.Session, error) {
	return sessionStore.SessionByID(ctx, s.SQL(), id)
}

func (s *snapshot) ListClosedOrders(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]*order.Order, error) {
	return s.orders.ListClosed(ctx, restaurantID, from, to)
}

func (s *snapshot) Close() error {
	return s.Rollback()
}
