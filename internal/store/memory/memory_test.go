package memory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
	"github.com/MrJamesThe3rd/tillbook/internal/order"
	"github.com/MrJamesThe3rd/tillbook/internal/report"
	"github.com/MrJamesThe3rd/tillbook/internal/ridershift"
	"github.com/MrJamesThe3rd/tillbook/internal/store/memory"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var base = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

// ticker advances one second per reading so every posting has a distinct timestamp.
type ticker struct{ n atomic.Int64 }

func (c *ticker) Now() time.Time {
	return base.Add(time.Duration(c.n.Add(1)) * time.Second)
}

type env struct {
	store    *memory.Store
	clock    *ticker
	ledger   *ledger.Service
	sessions *cashsession.Manager
	shifts   *ridershift.Manager
	reports  *report.Generator

	restaurantID uuid.UUID
	staff        uuid.UUID
}

func newEnv() *env {
	st := memory.New()
	clock := &ticker{}
	svc := ledger.NewService(st.Ledger(), st, ledger.WithClock(clock.Now))

	return &env{
		store:        st,
		clock:        clock,
		ledger:       svc,
		sessions:     cashsession.NewManager(st.Sessions(), svc),
		shifts:       ridershift.NewManager(st.Shifts(), svc),
		reports:      report.NewGenerator(st.Reports(), clock.Now),
		restaurantID: uuid.New(),
		staff:        uuid.New(),
	}
}

func (e *env) addOrder(typ order.Type, total int64, mutate ...func(o *order.Order)) *order.Order {
	closedAt := e.clock.Now()
	o := &order.Order{
		ID:            uuid.New(),
		RestaurantID:  e.restaurantID,
		OrderNumber:   "1",
		Type:          typ,
		Status:        order.StatusClosed,
		PaymentStatus: order.PaymentPaid,
		Total:         dec(total),
		LastActionBy:  e.staff,
		CreatedAt:     closedAt,
		ClosedAt:      &closedAt,
	}

	for _, m := range mutate {
		m(o)
	}

	e.store.AddOrder(o)

	return o
}

func (e *env) sell(t *testing.T, o *order.Order) {
	t.Helper()

	g, err := e.ledger.RecordOrderSale(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, g)
}

func assertGroupsBalanced(t *testing.T, entries []*ledger.Entry) {
	t.Helper()

	groups := make(map[uuid.UUID][]*ledger.Entry)
	for _, e := range entries {
		groups[e.PostingGroupID] = append(groups[e.PostingGroupID], e)
	}

	for id, g := range groups {
		assert.GreaterOrEqual(t, len(g), 2, "group %s", id)
		assert.NoError(t, ledger.CheckBalanced(g), "group %s", id)
	}
}

func TestConservation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	rider := uuid.New()

	_, err := e.sessions.Open(ctx, cashsession.OpenParams{RestaurantID: e.restaurantID, StaffID: e.staff, OpeningBalance: dec(1000)})
	require.NoError(t, err)

	e.sell(t, e.addOrder(order.TypeDineIn, 3200))
	e.sell(t, e.addOrder(order.TypeDelivery, 700, func(o *order.Order) { o.AssignedDriverID = &rider }))

	_, err = e.ledger.RecordFloatIssue(ctx, ledger.FloatParams{RestaurantID: e.restaurantID, RiderID: rider, Amount: dec(200), ProcessedBy: e.staff})
	require.NoError(t, err)

	_, err = e.ledger.RecordRiderSettlement(ctx, ledger.SettlementParams{RestaurantID: e.restaurantID, RiderID: rider, Amount: dec(900), ProcessedBy: e.staff})
	require.NoError(t, err)

	_, err = e.ledger.RecordPayout(ctx, ledger.PayoutParams{RestaurantID: e.restaurantID, Amount: dec(300), Category: "supplies", ProcessedBy: e.staff})
	require.NoError(t, err)

	adj := ledger.NewPostingGroup(e.restaurantID, ledger.RefAdjustment, nil, e.staff, "Till correction").
		Credit(nil, dec(15)).
		Debit(new(ledger.ExpenseAccount), dec(15))
	require.NoError(t, e.ledger.Post(ctx, adj))

	all := e.store.Entries()
	assertGroupsBalanced(t, all)
	assert.True(t, ledger.Balance(all).IsZero(), "global balance %s", ledger.Balance(all))

	rb, err := e.ledger.GetBalance(ctx, e.restaurantID, &rider)
	require.NoError(t, err)
	assert.True(t, rb.IsZero(), "rider balance %s", rb)

	house, err := e.ledger.GetBalance(ctx, e.restaurantID, nil)
	require.NoError(t, err)
	assert.True(t, house.Equal(dec(1000+3200-200+900-300-15)), "house %s", house)

	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i].Seq, all[i-1].Seq)
	}
}

func TestRecordOrderSale_Idempotent(t *testing.T) {
	t.Run("Sequential", func(t *testing.T) {
		e := newEnv()
		o := e.addOrder(order.TypeTakeaway, 500)

		e.sell(t, o)

		g, err := e.ledger.RecordOrderSale(context.Background(), o.ID)
		require.NoError(t, err)
		assert.Nil(t, g)
		assert.Len(t, e.store.Entries(), 2)
	})

	t.Run("Concurrent", func(t *testing.T) {
		e := newEnv()
		o := e.addOrder(order.TypeTakeaway, 500)

		var (
			wg      sync.WaitGroup
			posted  atomic.Int32
			failure atomic.Value
		)

		for range 20 {
			wg.Go(func() {
				g, err := e.ledger.RecordOrderSale(context.Background(), o.ID)
				if err != nil {
					failure.Store(err)
					return
				}

				if g != nil {
					posted.Add(1)
				}
			})
		}

		wg.Wait()

		assert.Nil(t, failure.Load())
		assert.Equal(t, int32(1), posted.Load())
		assert.Len(t, e.store.Entries(), 2)
	})

	t.Run("UnknownOrder", func(t *testing.T) {
		e := newEnv()

		g, err := e.ledger.RecordOrderSale(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Nil(t, g)
		assert.Empty(t, e.store.Entries())
	})
}

func TestOpenSession_Exclusive(t *testing.T) {
	e := newEnv()

	var (
		wg        sync.WaitGroup
		opened    atomic.Int32
		conflicts atomic.Int32
	)

	for range 10 {
		wg.Go(func() {
			_, err := e.sessions.Open(context.Background(), cashsession.OpenParams{
				RestaurantID:   e.restaurantID,
				StaffID:        e.staff,
				OpeningBalance: dec(100),
			})

			switch {
			case err == nil:
				opened.Add(1)
			case assert.ErrorIs(t, err, ledger.ErrConflict):
				conflicts.Add(1)
			}
		})
	}

	wg.Wait()

	assert.Equal(t, int32(1), opened.Load())
	assert.Equal(t, int32(9), conflicts.Load())
	assert.Len(t, e.store.Entries(), 2)
}

func TestCloseSession_Variance(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	rider := uuid.New()

	s, err := e.sessions.Open(ctx, cashsession.OpenParams{RestaurantID: e.restaurantID, StaffID: e.staff, OpeningBalance: dec(1000)})
	require.NoError(t, err)

	e.sell(t, e.addOrder(order.TypeDineIn, 3200))
	e.sell(t, e.addOrder(order.TypeTakeaway, 1800))

	_, err = e.ledger.RecordFloatIssue(ctx, ledger.FloatParams{RestaurantID: e.restaurantID, RiderID: rider, Amount: dec(200), ProcessedBy: e.staff})
	require.NoError(t, err)

	_, err = e.ledger.RecordRiderSettlement(ctx, ledger.SettlementParams{RestaurantID: e.restaurantID, RiderID: rider, Amount: dec(1000), ProcessedBy: e.staff})
	require.NoError(t, err)

	_, err = e.ledger.RecordPayout(ctx, ledger.PayoutParams{RestaurantID: e.restaurantID, Amount: dec(300), Category: "gas", ProcessedBy: e.staff})
	require.NoError(t, err)

	m, err := e.sessions.GetSessionMetrics(ctx, e.restaurantID)
	require.NoError(t, err)
	assert.True(t, m.ExpectedCash.Equal(dec(6500)), "live expected %s", m.ExpectedCash)

	closed, err := e.sessions.Close(ctx, cashsession.CloseParams{SessionID: s.ID, StaffID: e.staff, ActualBalance: dec(6500)})
	require.NoError(t, err)
	assert.True(t, closed.ExpectedBalance.Equal(dec(6500)))
	assert.True(t, closed.Variance.IsZero())

	_, err = e.sessions.Close(ctx, cashsession.CloseParams{SessionID: s.ID, StaffID: e.staff, ActualBalance: dec(6500)})
	assert.ErrorIs(t, err, ledger.ErrConflict)

	_, err = e.sessions.GetActiveSession(ctx, e.restaurantID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestRecordFloatIssue_ZeroIsNoop(t *testing.T) {
	e := newEnv()

	g, err := e.ledger.RecordFloatIssue(context.Background(), ledger.FloatParams{
		RestaurantID: e.restaurantID,
		RiderID:      uuid.New(),
		Amount:       decimal.Zero,
	})
	require.NoError(t, err)
	assert.Nil(t, g)
	assert.Empty(t, e.store.Entries())
}

func TestAtomic_ComposedPostings(t *testing.T) {
	type testCase struct {
		name        string
		failAfter   bool
		wantEntries int
	}

	tests := []testCase{
		{name: "CommitsBothGroups", wantEntries: 4},
		{name: "RollsBackBothGroups", failAfter: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			ctx := context.Background()

			var posted []*ledger.PostingGroup

			err := e.ledger.Atomic(ctx, func(p *ledger.Poster) error {
				if _, err := p.RecordFloatIssue(ctx, ledger.FloatParams{
					RestaurantID: e.restaurantID,
					RiderID:      uuid.New(),
					Amount:       dec(200),
					ProcessedBy:  e.staff,
				}); err != nil {
					return err
				}

				if _, err := p.RecordPayout(ctx, ledger.PayoutParams{
					RestaurantID: e.restaurantID,
					Amount:       dec(35),
					Category:     "supplies",
					ProcessedBy:  e.staff,
				}); err != nil {
					return err
				}

				posted = p.Groups()

				if tt.failAfter {
					return assert.AnError
				}

				return nil
			})

			require.Len(t, posted, 2)
			assert.Equal(t, ledger.RefSettlement, posted[0].ReferenceType)
			assert.Equal(t, ledger.RefPayout, posted[1].ReferenceType)

			if tt.failAfter {
				assert.ErrorIs(t, err, assert.AnError)
			} else {
				require.NoError(t, err)
			}

			entries := e.store.Entries()
			assert.Len(t, entries, tt.wantEntries)
			assert.NoError(t, ledger.CheckBalanced(entries))
		})
	}
}

func TestRiderShift_RoundTrip(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	rider := uuid.New()

	s, err := e.shifts.Open(ctx, ridershift.OpenParams{
		RestaurantID: e.restaurantID,
		RiderID:      rider,
		StaffID:      e.staff,
		OpeningFloat: dec(2000),
	})
	require.NoError(t, err)

	_, err = e.shifts.Open(ctx, ridershift.OpenParams{RestaurantID: e.restaurantID, RiderID: rider, StaffID: e.staff})
	assert.ErrorIs(t, err, ledger.ErrConflict)

	for _, total := range []int64{1500, 2000, 1000} {
		e.sell(t, e.addOrder(order.TypeDelivery, total, func(o *order.Order) {
			o.AssignedDriverID = &rider
			o.RiderShiftID = &s.ID
		}))
	}

	m, err := e.shifts.GetShiftMetrics(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, m.DeliveredCount)
	assert.True(t, m.ExpectedCash.Equal(dec(6500)))
	assert.True(t, m.RiderBalance.Equal(dec(6500)), "rider owes %s", m.RiderBalance)

	closed, err := e.shifts.Close(ctx, ridershift.CloseParams{ShiftID: s.ID, StaffID: e.staff, ClosingCash: dec(6500)})
	require.NoError(t, err)
	assert.True(t, closed.ExpectedCash.Equal(dec(6500)))
	assert.True(t, closed.CashDifference.IsZero())

	balance, err := e.ledger.GetBalance(ctx, e.restaurantID, &rider)
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "rider balance after close %s", balance)

	active, err := e.shifts.ListActiveShifts(ctx, e.restaurantID)
	require.NoError(t, err)
	assert.Empty(t, active)

	assertGroupsBalanced(t, e.store.Entries())
}

func TestZReport_Aggregation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	s, err := e.sessions.Open(ctx, cashsession.OpenParams{RestaurantID: e.restaurantID, StaffID: e.staff, OpeningBalance: dec(500)})
	require.NoError(t, err)

	e.sell(t, e.addOrder(order.TypeDineIn, 500))
	e.sell(t, e.addOrder(order.TypeTakeaway, 750, func(o *order.Order) { o.Tax = dec(50) }))

	// Closed before the session opened, outside the window.
	e.store.AddOrder(&order.Order{
		ID:           uuid.New(),
		RestaurantID: e.restaurantID,
		Status:       order.StatusClosed,
		Total:        dec(999),
		ClosedAt:     new(base.Add(-time.Hour)),
	})

	r, err := e.reports.GetZReport(ctx, s.ID)
	require.NoError(t, err)

	assert.True(t, r.Sales.Gross.Equal(dec(1250)), "gross %s", r.Sales.Gross)
	assert.True(t, r.Sales.Tax.Equal(dec(50)))
	assert.Equal(t, 2, r.Sales.OrderCount)
	assert.True(t, r.CashFlow.CashSales.Equal(dec(1250)))
	assert.True(t, r.CashFlow.Expected.Equal(dec(1750)))
	assert.Nil(t, r.CashFlow.Actual)

	before := len(e.store.Entries())
	_, err = e.reports.GetZReport(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, e.store.Entries(), before)
}
