package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
	"github.com/MrJamesThe3rd/tillbook/internal/order"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=report
type Repository interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Snapshot is a consistent read-only view. Close releases it.
type Snapshot interface {
	GetSession(ctx context.Context, id uuid.UUID) (*cashsession.Session, error)
	ListClosedOrders(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]*order.Order, error)
	ListEntries(ctx context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error)
	Close() error
}

type Generator struct {
	repo Repository
	now  func() time.Time
}

func NewGenerator(repo Repository, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}

	return &Generator{repo: repo, now: now}
}

// GetZReport aggregates the session window [OpenedAt, ClosedAt or now]. It never writes.
func (g *Generator) GetZReport(ctx context.Context, sessionID uuid.UUID) (*ZReport, error) {
	snap, err := g.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer snap.Close()

	s, err := snap.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, &ledger.NotFoundError{Resource: "cash session", ID: sessionID}
		}

		return nil, fmt.Errorf("getting session: %w", err)
	}

	generatedAt := g.now()

	to := generatedAt
	if s.ClosedAt != nil {
		to = *s.ClosedAt
	}

	orders, err := snap.ListClosedOrders(ctx, s.RestaurantID, s.OpenedAt, to)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	entries, err := snap.ListEntries(ctx, ledger.EntryFilter{
		RestaurantID: s.RestaurantID,
		Since:        &s.OpenedAt,
		Until:        &to,
	})
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	return Aggregate(s, orders, entries, to, generatedAt), nil
}
