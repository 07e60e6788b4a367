// Package memory is a map-backed store implementing every repository in the module.
// Units of work are serialized; writes are buffered and applied on Commit.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
	"github.com/MrJamesThe3rd/tillbook/internal/order"
	"github.com/MrJamesThe3rd/tillbook/internal/report"
	"github.com/MrJamesThe3rd/tillbook/internal/ridershift"
)

type Store struct {
	// sem admits one unit of work at a time.
	sem chan struct{}

	mu       sync.RWMutex
	seq      int64
	entries  []*ledger.Entry
	payouts  map[uuid.UUID]*ledger.Payout
	sessions map[uuid.UUID]*cashsession.Session
	shifts   map[uuid.UUID]*ridershift.Shift
	orders   map[uuid.UUID]*order.Order
}

func New() *Store {
	return &Store{
		sem:      make(chan struct{}, 1),
		payouts:  make(map[uuid.UUID]*ledger.Payout),
		sessions: make(map[uuid.UUID]*cashsession.Session),
		shifts:   make(map[uuid.UUID]*ridershift.Shift),
		orders:   make(map[uuid.UUID]*order.Order),
	}
}

// AddOrder seeds or replaces an order record.
func (s *Store) AddOrder(o *order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *o
	s.orders[o.ID] = &cp
}

func (s *Store) GetOrder(_ context.Context, id uuid.UUID) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}

	cp := *o

	return &cp, nil
}

func (s *Store) ListEntries(_ context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filterEntries(s.entries, filter), nil
}

// Entries returns every committed entry in seq order.
func (s *Store) Entries() []*ledger.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.entries)
}

func filterEntries(entries []*ledger.Entry, filter ledger.EntryFilter) []*ledger.Entry {
	var out []*ledger.Entry

	for _, e := range entries {
		if filter.Matches(e) {
			cp := *e
			out = append(out, &cp)
		}
	}

	return out
}

func (s *Store) begin(ctx context.Context) (*tx, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &tx{store: s}, nil
}

// Ledger returns the store as a ledger.Repository.
func (s *Store) Ledger() ledger.Repository { return ledgerView{s} }

// Sessions returns the store as a cashsession.Repository.
func (s *Store) Sessions() cashsession.Repository { return sessionView{s} }

// Shifts returns the store as a ridershift.Repository.
func (s *Store) Shifts() ridershift.Repository { return shiftView{s} }

// Reports returns the store as a report.Repository.
func (s *Store) Reports() report.Repository { return reportView{s} }

type ledgerView struct{ *Store }

func (v ledgerView) Begin(ctx context.Context) (ledger.UnitOfWork, error) {
	return v.begin(ctx)
}

type sessionView struct{ *Store }

func (v sessionView) Begin(ctx context.Context) (cashsession.Tx, error) {
	return v.begin(ctx)
}

func (v sessionView) GetSession(_ context.Context, id uuid.UUID) (*cashsession.Session, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	cs, ok := v.sessions[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}

	cp := *cs

	return &cp, nil
}

func (v sessionView) GetActiveSession(_ context.Context, restaurantID uuid.UUID) (*cashsession.Session, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return openSession(v.sessions, restaurantID)
}

func (v sessionView) ListSessions(_ context.Context, restaurantID uuid.UUID, limit int) ([]*cashsession.Session, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var out []*cashsession.Session

	for _, cs := range v.sessions {
		if cs.RestaurantID == restaurantID {
			cp := *cs
			out = append(out, &cp)
		}
	}

	slices.SortFunc(out, func(a, b *cashsession.Session) int {
		return b.OpenedAt.Compare(a.OpenedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func openSession(sessions map[uuid.UUID]*cashsession.Session, restaurantID uuid.UUID) (*cashsession.Session, error) {
	for _, cs := range sessions {
		if cs.RestaurantID == restaurantID && cs.Status == cashsession.StatusOpen {
			cp := *cs
			return &cp, nil
		}
	}

	return nil, ledger.ErrNotFound
}

type shiftView struct{ *Store }

func (v shiftView) Begin(ctx context.Context) (ridershift.Tx, error) {
	return v.begin(ctx)
}

func (v shiftView) GetShift(_ context.Context, id uuid.UUID) (*ridershift.Shift, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	rs, ok := v.shifts[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}

	cp := *rs

	return &cp, nil
}

func (v shiftView) GetActiveShift(_ context.Context, restaurantID, riderID uuid.UUID) (*ridershift.Shift, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return openShift(v.shifts, restaurantID, riderID)
}

func (v shiftView) ListActiveShifts(_ context.Context, restaurantID uuid.UUID) ([]*ridershift.Shift, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var out []*ridershift.Shift

	for _, rs := range v.shifts {
		if rs.RestaurantID == restaurantID && rs.Status == ridershift.StatusOpen {
			cp := *rs
			out = append(out, &cp)
		}
	}

	slices.SortFunc(out, func(a, b *ridershift.Shift) int {
		return a.OpenedAt.Compare(b.OpenedAt)
	})

	return out, nil
}

func (v shiftView) ListShiftOrders(_ context.Context, shiftID uuid.UUID) ([]*order.Order, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return shiftOrders(v.orders, shiftID), nil
}

func openShift(shifts map[uuid.UUID]*ridershift.Shift, restaurantID, riderID uuid.UUID) (*ridershift.Shift, error) {
	for _, rs := range shifts {
		if rs.RestaurantID == restaurantID && rs.RiderID == riderID && rs.Status == ridershift.StatusOpen {
			cp := *rs
			return &cp, nil
		}
	}

	return nil, ledger.ErrNotFound
}

func shiftOrders(orders map[uuid.UUID]*order.Order, shiftID uuid.UUID) []*order.Order {
	var out []*order.Order

	for _, o := range orders {
		if o.RiderShiftID != nil && *o.RiderShiftID == shiftID && o.Status != order.StatusCancelled {
			cp := *o
			out = append(out, &cp)
		}
	}

	slices.SortFunc(out, func(a, b *order.Order) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return out
}

type reportView struct{ *Store }

// Snapshot copies the committed state so the report sees one point in time.
func (v reportView) Snapshot(context.Context) (report.Snapshot, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	snap := &snapshot{
		entries:  slices.Clone(v.entries),
		sessions: make(map[uuid.UUID]cashsession.Session, len(v.sessions)),
	}

	for id, cs := range v.sessions {
		snap.sessions[id] = *cs
	}

	for _, o := range v.orders {
		snap.orders = append(snap.orders, *o)
	}

	return snap, nil
}

type snapshot struct {
	entries  []*ledger.Entry
	sessions map[uuid.UUID]cashsession.Session
	orders   []order.Order
}

func (s *snapshot) GetSession(_ context.Context, id uuid.UUID) (*cashsession.Session, error) {
	cs, ok := s.sessions[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}

	return &cs, nil
}

func (s *snapshot) ListClosedOrders(_ context.Context, restaurantID uuid.UUID, from, to time.Time) ([]*order.Order, error) {
	var out []*order.Order

	for i := range s.orders {
		o := s.orders[i]
		if o.RestaurantID != restaurantID || o.Status != order.StatusClosed || o.ClosedAt == nil {
			continue
		}

		if o.ClosedAt.Before(from) || o.ClosedAt.After(to) {
			continue
		}

		out = append(out, &o)
	}

	slices.SortFunc(out, func(a, b *order.Order) int {
		return a.ClosedAt.Compare(*b.ClosedAt)
	})

	return out, nil
}

func (s *snapshot) ListEntries(_ context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error) {
	return filterEntries(s.entries, filter), nil
}

func (s *snapshot) Close() error { return nil }
