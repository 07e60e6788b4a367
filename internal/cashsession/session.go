package cashsession

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
)

// Status is the session lifecycle state. CLOSED is terminal.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Session is a bounded window over the house cash drawer.
type Session struct {
	ID              uuid.UUID
	RestaurantID    uuid.UUID
	OpenedBy        uuid.UUID
	OpeningBalance  decimal.Decimal
	OpenedAt        time.Time
	ClosedAt        *time.Time
	ClosedBy        *uuid.UUID
	ExpectedBalance *decimal.Decimal
	ActualBalance   *decimal.Decimal
	Variance        *decimal.Decimal // Actual minus expected
	Status          Status
	Notes           string
}

// Metrics is the live breakdown of drawer movements since a session opened.
type Metrics struct {
	SessionID      uuid.UUID
	OpenedAt       time.Time
	OpeningBalance decimal.Decimal
	Revenue        decimal.Decimal // All order revenue, any tender
	CashSales      decimal.Decimal
	NetSettlements decimal.Decimal // Rider cash received minus floats issued
	Payouts        decimal.Decimal
	Adjustments    decimal.Decimal
	ExpectedCash   decimal.Decimal
	EntryCount     int
}

// isOwnOpening reports whether e is the session's opening float posting,
// which is already represented by OpeningBalance.
func isOwnOpening(s *Session, e *ledger.Entry) bool {
	return e.ReferenceType == ledger.RefOpeningBalance && e.ReferenceID != nil && *e.ReferenceID == s.ID
}

// Summarize partitions the entries posted during a session.
func Summarize(s *Session, entries []*ledger.Entry) Metrics {
	m := Metrics{
		SessionID:      s.ID,
		OpenedAt:       s.OpenedAt,
		OpeningBalance: s.OpeningBalance,
		Revenue:        decimal.Zero,
		CashSales:      decimal.Zero,
		NetSettlements: decimal.Zero,
		Payouts:        decimal.Zero,
		Adjustments:    decimal.Zero,
	}

	for _, e := range entries {
		if isOwnOpening(s, e) {
			continue
		}

		m.EntryCount++

		if e.ReferenceType == ledger.RefOrder && e.Type == ledger.Credit {
			m.Revenue = m.Revenue.Add(e.Amount)
		}

		if !e.IsHouseCash() {
			continue
		}

		switch {
		case e.ReferenceType == ledger.RefOrder && e.Type == ledger.Debit:
			m.CashSales = m.CashSales.Add(e.Amount)
		case e.ReferenceType == ledger.RefSettlement || e.ReferenceType == ledger.RefRiderShift:
			m.NetSettlements = m.NetSettlements.Add(e.Signed())
		case e.ReferenceType == ledger.RefPayout && e.Type == ledger.Credit:
			m.Payouts = m.Payouts.Add(e.Amount)
		default:
			m.Adjustments = m.Adjustments.Add(e.Signed())
		}
	}

	m.ExpectedCash = m.OpeningBalance.
		Add(m.CashSales).
		Add(m.NetSettlements).
		Sub(m.Payouts).
		Add(m.Adjustments)

	return m
}

// DrawerMovement nets every house cash entry of the session: debits add, credits subtract.
func DrawerMovement(s *Session, entries []*ledger.Entry) decimal.Decimal {
	total := decimal.Zero

	for _, e := range entries {
		if !e.IsHouseCash() || isOwnOpening(s, e) {
			continue
		}

		total = total.Add(e.Signed())
	}

	return total
}
