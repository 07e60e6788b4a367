package memory

import (
	"context"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
	"github.com/MrJamesThe3rd/tillbook/internal/order"
	"github.com/MrJamesThe3rd/tillbook/internal/ridershift"
)

// tx implements ledger.UnitOfWork, cashsession.Tx and ridershift.Tx.
// It holds the store's unit-of-work slot from begin until Commit or Rollback.
type tx struct {
	store *Store
	done  bool

	entries  []*ledger.Entry
	payouts  []*ledger.Payout
	sessions map[uuid.UUID]*cashsession.Session
	shifts   map[uuid.UUID]*ridershift.Shift
}

func (t *tx) release() {
	if t.done {
		return
	}

	t.done = true
	<-t.store.sem
}

func (t *tx) Commit() error {
	if t.done {
		return fmt.Errorf("commit: unit of work already finished")
	}

	s := t.store

	s.mu.Lock()
	s.entries = append(s.entries, t.entries...)

	for _, p := range t.payouts {
		s.payouts[p.ID] = p
	}

	maps.Copy(s.sessions, t.sessions)
	maps.Copy(s.shifts, t.shifts)
	s.mu.Unlock()

	t.release()

	return nil
}

func (t *tx) Rollback() error {
	t.release()
	return nil
}

// Lock is satisfied by holding the unit-of-work slot.
func (t *tx) Lock(context.Context, string) error {
	return nil
}

func (t *tx) ListEntries(_ context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error) {
	t.store.mu.RLock()
	out := filterEntries(t.store.entries, filter)
	t.store.mu.RUnlock()

	return append(out, filterEntries(t.entries, filter)...), nil
}

func isOrderCredit(e *ledger.Entry) bool {
	return e.ReferenceType == ledger.RefOrder && e.Type == ledger.Credit && e.ReferenceID != nil
}

func (t *tx) hasOrderCredit(e *ledger.Entry) bool {
	same := func(o *ledger.Entry) bool {
		return isOrderCredit(o) && o.RestaurantID == e.RestaurantID && *o.ReferenceID == *e.ReferenceID
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	for _, o := range t.store.entries {
		if same(o) {
			return true
		}
	}

	for _, o := range t.entries {
		if same(o) {
			return true
		}
	}

	return false
}

func (t *tx) InsertEntries(_ context.Context, entries []*ledger.Entry) error {
	for _, e := range entries {
		if isOrderCredit(e) && t.hasOrderCredit(e) {
			return fmt.Errorf("inserting entry: %w", ledger.ErrDuplicatePosting)
		}
	}

	t.store.mu.Lock()
	for _, e := range entries {
		t.store.seq++
		e.Seq = t.store.seq

		cp := *e
		t.entries = append(t.entries, &cp)
	}
	t.store.mu.Unlock()

	return nil
}

func (t *tx) InsertPayout(_ context.Context, p *ledger.Payout) error {
	cp := *p
	t.payouts = append(t.payouts, &cp)

	return nil
}

// session reads through the buffered writes.
func (t *tx) session(id uuid.UUID) (*cashsession.Session, bool) {
	if cs, ok := t.sessions[id]; ok {
		return cs, true
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	cs, ok := t.store.sessions[id]

	return cs, ok
}

func (t *tx) GetOpenSession(_ context.Context, restaurantID uuid.UUID) (*cashsession.Session, error) {
	t.store.mu.RLock()
	merged := maps.Clone(t.store.sessions)
	t.store.mu.RUnlock()

	maps.Copy(merged, t.sessions)

	return openSession(merged, restaurantID)
}

func (t *tx) LockSession(_ context.Context, id uuid.UUID) (*cashsession.Session, error) {
	cs, ok := t.session(id)
	if !ok {
		return nil, ledger.ErrNotFound
	}

	cp := *cs

	return &cp, nil
}

func (t *tx) InsertSession(ctx context.Context, cs *cashsession.Session) error {
	if _, err := t.GetOpenSession(ctx, cs.RestaurantID); err == nil {
		return fmt.Errorf("inserting session: %w", ledger.ErrConflict)
	}

	if t.sessions == nil {
		t.sessions = make(map[uuid.UUID]*cashsession.Session)
	}

	cp := *cs
	t.sessions[cs.ID] = &cp

	return nil
}

func (t *tx) CloseSession(_ context.Context, cs *cashsession.Session) error {
	current, ok := t.session(cs.ID)
	if !ok || current.Status != cashsession.StatusOpen {
		return fmt.Errorf("closing session %s: %w", cs.ID, ledger.ErrConflict)
	}

	if t.sessions == nil {
		t.sessions = make(map[uuid.UUID]*cashsession.Session)
	}

	cp := *cs
	t.sessions[cs.ID] = &cp

	return nil
}

func (t *tx) shift(id uuid.UUID) (*ridershift.Shift, bool) {
	if rs, ok := t.shifts[id]; ok {
		return rs, true
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	rs, ok := t.store.shifts[id]

	return rs, ok
}

func (t *tx) GetOpenShift(_ context.Context, restaurantID, riderID uuid.UUID) (*ridershift.Shift, error) {
	t.store.mu.RLock()
	merged := maps.Clone(t.store.shifts)
	t.store.mu.RUnlock()

	maps.Copy(merged, t.shifts)

	return openShift(merged, restaurantID, riderID)
}

func (t *tx) LockShift(_ context.Context, id uuid.UUID) (*ridershift.Shift, error) {
	rs, ok := t.shift(id)
	if !ok {
		return nil, ledger.ErrNotFound
	}

	cp := *rs

	return &cp, nil
}

func (t *tx) InsertShift(ctx context.Context, rs *ridershift.Shift) error {
	if _, err := t.GetOpenShift(ctx, rs.RestaurantID, rs.RiderID); err == nil {
		return fmt.Errorf("inserting shift: %w", ledger.ErrConflict)
	}

	if t.shifts == nil {
		t.shifts = make(map[uuid.UUID]*ridershift.Shift)
	}

	cp := *rs
	t.shifts[rs.ID] = &cp

	return nil
}

func (t *tx) CloseShift(_ context.Context, rs *ridershift.Shift) error {
	current, ok := t.shift(rs.ID)
	if !ok || current.Status != ridershift.StatusOpen {
		return fmt.Errorf("closing shift %s: %w", rs.ID, ledger.ErrConflict)
	}

	if t.shifts == nil {
		t.shifts = make(map[uuid.UUID]*ridershift.Shift)
	}

	cp := *rs
	t.shifts[rs.ID] = &cp

	return nil
}

func (t *tx) ListShiftOrders(_ context.Context, shiftID uuid.UUID) ([]*order.Order, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	return shiftOrders(t.store.orders, shiftID), nil
}
