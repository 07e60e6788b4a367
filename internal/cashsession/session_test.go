package cashsession_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// eveningEntries builds the ledger for a shift with opening 1000, cash sales 5000,
// settlements netting +800 and payouts of 300, plus a 700 delivery still owed by a rider.
func eveningEntries(s *cashsession.Session) []*ledger.Entry {
	restaurantID := s.RestaurantID
	rider := uuid.New()
	staff := uuid.New()

	groups := []*ledger.PostingGroup{
		ledger.NewPostingGroup(restaurantID, ledger.RefOpeningBalance, &s.ID, staff, "").
			Debit(nil, dec(1000)).Credit(new(ledger.SafeAccount), dec(1000)),
		ledger.NewPostingGroup(restaurantID, ledger.RefOrder, new(uuid.New()), staff, "").
			Credit(new(ledger.RevenueAccount), dec(3200)).Debit(nil, dec(3200)),
		ledger.NewPostingGroup(restaurantID, ledger.RefOrder, new(uuid.New()), staff, "").
			Credit(new(ledger.RevenueAccount), dec(1800)).Debit(nil, dec(1800)),
		ledger.NewPostingGroup(restaurantID, ledger.RefOrder, new(uuid.New()), staff, "").
			Credit(new(ledger.RevenueAccount), dec(700)).Debit(&rider, dec(700)),
		ledger.NewPostingGroup(restaurantID, ledger.RefSettlement, nil, staff, "").
			Credit(nil, dec(200)).Debit(&rider, dec(200)),
		ledger.NewPostingGroup(restaurantID, ledger.RefSettlement, nil, staff, "").
			Debit(nil, dec(1000)).Credit(&rider, dec(1000)),
		ledger.NewPostingGroup(restaurantID, ledger.RefPayout, new(uuid.New()), staff, "").
			Credit(nil, dec(300)).Debit(new(ledger.ExpenseAccount), dec(300)),
	}

	var entries []*ledger.Entry
	for _, g := range groups {
		entries = append(entries, g.Entries...)
	}

	return entries
}

func TestSummarize_VarianceScenario(t *testing.T) {
	s := &cashsession.Session{
		ID:             uuid.New(),
		RestaurantID:   uuid.New(),
		OpeningBalance: dec(1000),
		OpenedAt:       time.Now(),
		Status:         cashsession.StatusOpen,
	}

	entries := eveningEntries(s)
	require.NoError(t, ledger.CheckBalanced(entries))

	m := cashsession.Summarize(s, entries)

	assert.True(t, m.Revenue.Equal(dec(5700)), "revenue %s", m.Revenue)
	assert.True(t, m.CashSales.Equal(dec(5000)), "cash sales %s", m.CashSales)
	assert.True(t, m.NetSettlements.Equal(dec(800)), "settlements %s", m.NetSettlements)
	assert.True(t, m.Payouts.Equal(dec(300)), "payouts %s", m.Payouts)
	assert.True(t, m.Adjustments.IsZero())
	assert.True(t, m.ExpectedCash.Equal(dec(6500)), "expected %s", m.ExpectedCash)
	assert.Equal(t, 12, m.EntryCount)

	closing := s.OpeningBalance.Add(cashsession.DrawerMovement(s, entries))
	assert.True(t, closing.Equal(m.ExpectedCash), "close computes %s", closing)
}

func TestSummarize_AdjustmentsAndForeignOpenings(t *testing.T) {
	s := &cashsession.Session{ID: uuid.New(), RestaurantID: uuid.New(), OpeningBalance: dec(50)}
	other := uuid.New()

	entries := []*ledger.Entry{
		{Type: ledger.Debit, Amount: dec(50), ReferenceType: ledger.RefOpeningBalance, ReferenceID: &s.ID},
		{Type: ledger.Credit, Amount: dec(15), ReferenceType: ledger.RefAdjustment},
		{Type: ledger.Debit, Amount: dec(5), ReferenceType: ledger.RefOpeningBalance, ReferenceID: &other},
		{Type: ledger.Credit, Amount: dec(40), ReferenceType: ledger.RefStockIn},
	}

	m := cashsession.Summarize(s, entries)

	assert.True(t, m.Adjustments.Equal(dec(-50)))
	assert.True(t, m.ExpectedCash.IsZero())
	assert.True(t, cashsession.DrawerMovement(s, entries).Equal(dec(-50)))
}
