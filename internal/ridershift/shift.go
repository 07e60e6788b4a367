package ridershift

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillbook/internal/order"
)

type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Shift tracks the cash one delivery rider carries between opening and closing.
type Shift struct {
	ID                  uuid.UUID
	RestaurantID        uuid.UUID
	RiderID             uuid.UUID
	OpenedBy            uuid.UUID
	OpeningFloat        decimal.Decimal
	OpenedAt            time.Time
	ClosedAt            *time.Time
	ClosedBy            *uuid.UUID
	ClosingCashReceived *decimal.Decimal
	ExpectedCash        *decimal.Decimal
	CashDifference      *decimal.Decimal // Received minus expected
	Status              Status
	Notes               string
}

type Metrics struct {
	Shift          *Shift
	DeliveredCount int
	ActiveCount    int
	DeliveredTotal decimal.Decimal
	ActiveTotal    decimal.Decimal
	Collected      decimal.Decimal // CLOSED and PAID orders only
	ExpectedCash   decimal.Decimal
	RiderBalance   decimal.Decimal // What the rider currently owes the house, per the ledger
}

// Collected sums the totals of the orders the rider has been paid for.
func Collected(orders []*order.Order) decimal.Decimal {
	total := decimal.Zero

	for _, o := range orders {
		if o.IsDeliveredAndPaid() {
			total = total.Add(o.Total)
		}
	}

	return total
}

// ExpectedCash is the float plus every delivered and paid order.
func ExpectedCash(s *Shift, orders []*order.Order) decimal.Decimal {
	return s.OpeningFloat.Add(Collected(orders))
}

// Summarize partitions the shift's orders into delivered and still active ones.
func Summarize(s *Shift, orders []*order.Order) Metrics {
	m := Metrics{
		Shift:          s,
		DeliveredTotal: decimal.Zero,
		ActiveTotal:    decimal.Zero,
		Collected:      Collected(orders),
		ExpectedCash:   ExpectedCash(s, orders),
		RiderBalance:   decimal.Zero,
	}

	for _, o := range orders {
		switch o.Status {
		case order.StatusClosed:
			m.DeliveredCount++
			m.DeliveredTotal = m.DeliveredTotal.Add(o.Total)
		case order.StatusOpen:
			m.ActiveCount++
			m.ActiveTotal = m.ActiveTotal.Add(o.Total)
		}
	}

	return m
}
