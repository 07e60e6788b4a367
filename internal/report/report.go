package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
	"github.com/MrJamesThe3rd/tillbook/internal/order"
)

// ZReport is the end-of-day reconciliation for one cash session.
type ZReport struct {
	SessionID    uuid.UUID          `json:"session_id"`
	RestaurantID uuid.UUID          `json:"restaurant_id"`
	Status       cashsession.Status `json:"status"`
	From         time.Time          `json:"from"`
	To           time.Time          `json:"to"`
	GeneratedAt  time.Time          `json:"generated_at"`
	Sales        Sales              `json:"sales"`
	OrderTypes   map[order.Type]int `json:"order_types"`
	Categories   []CategoryLine     `json:"categories"`
	Payments     []PaymentLine      `json:"payments"`
	CashFlow     CashFlow           `json:"cash_flow"`
}

type Sales struct {
	Gross         decimal.Decimal `json:"gross"`
	Net           decimal.Decimal `json:"net"` // Gross minus tax
	Tax           decimal.Decimal `json:"tax"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	DeliveryFees  decimal.Decimal `json:"delivery_fees"`
	Discounts     decimal.Decimal `json:"discounts"`
	OrderCount    int             `json:"order_count"`
}

type CategoryLine struct {
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type PaymentLine struct {
	Method string          `json:"method"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// CashFlow covers house cash only. Actual and Variance stay nil while the session is open.
type CashFlow struct {
	OpeningFloat   decimal.Decimal  `json:"opening_float"`
	CashSales      decimal.Decimal  `json:"cash_sales"`
	NetSettlements decimal.Decimal  `json:"net_settlements"`
	Payouts        decimal.Decimal  `json:"payouts"`
	Adjustments    decimal.Decimal  `json:"adjustments"`
	Expected       decimal.Decimal  `json:"expected"`
	Actual         *decimal.Decimal `json:"actual,omitempty"`
	Variance       *decimal.Decimal `json:"variance,omitempty"`
}

const uncategorized = "Uncategorized"

// Aggregate builds a Z-report from the session, its CLOSED orders and its ledger entries.
func Aggregate(s *cashsession.Session, orders []*order.Order, entries []*ledger.Entry, to, generatedAt time.Time) *ZReport {
	r := &ZReport{
		SessionID:    s.ID,
		RestaurantID: s.RestaurantID,
		Status:       s.Status,
		From:         s.OpenedAt,
		To:           to,
		GeneratedAt:  generatedAt,
		Sales: Sales{
			Gross:         decimal.Zero,
			Tax:           decimal.Zero,
			ServiceCharge: decimal.Zero,
			DeliveryFees:  decimal.Zero,
			Discounts:     decimal.Zero,
		},
		OrderTypes: make(map[order.Type]int),
	}

	categories := make(map[string]*CategoryLine)
	payments := make(map[string]*PaymentLine)

	for _, o := range orders {
		if o.Status != order.StatusClosed {
			continue
		}

		r.Sales.OrderCount++
		r.Sales.Gross = r.Sales.Gross.Add(o.Total)
		r.Sales.Tax = r.Sales.Tax.Add(o.Tax)
		r.Sales.ServiceCharge = r.Sales.ServiceCharge.Add(o.ServiceCharge)
		r.Sales.DeliveryFees = r.Sales.DeliveryFees.Add(o.DeliveryFee)
		r.Sales.Discounts = r.Sales.Discounts.Add(o.Discount)
		r.OrderTypes[o.Type]++

		for _, it := range o.Items {
			name := it.Category
			if name == "" {
				name = uncategorized
			}

			line, ok := categories[name]
			if !ok {
				line = &CategoryLine{Category: name, Revenue: decimal.Zero}
				categories[name] = line
			}

			line.Quantity += it.Quantity
			line.Revenue = line.Revenue.Add(it.Total)
		}

		for _, p := range o.Payments {
			line, ok := payments[p.Method]
			if !ok {
				line = &PaymentLine{Method: p.Method, Amount: decimal.Zero}
				payments[p.Method] = line
			}

			line.Count++
			line.Amount = line.Amount.Add(p.Amount)
		}
	}

	r.Sales.Net = r.Sales.Gross.Sub(r.Sales.Tax)

	for _, line := range categories {
		r.Categories = append(r.Categories, *line)
	}

	slices.SortFunc(r.Categories, func(a, b CategoryLine) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}

		return cmp.Compare(a.Category, b.Category)
	})

	for _, line := range payments {
		r.Payments = append(r.Payments, *line)
	}

	slices.SortFunc(r.Payments, func(a, b PaymentLine) int {
		return cmp.Compare(a.Method, b.Method)
	})

	m := cashsession.Summarize(s, entries)

	r.CashFlow = CashFlow{
		OpeningFloat:   s.OpeningBalance,
		CashSales:      m.CashSales,
		NetSettlements: m.NetSettlements,
		Payouts:        m.Payouts,
		Adjustments:    m.Adjustments,
		Expected:       m.ExpectedCash,
	}

	// A closed session reports the figures frozen at close.
	if s.Status == cashsession.StatusClosed {
		if s.ExpectedBalance != nil {
			r.CashFlow.Expected = *s.ExpectedBalance
		}

		r.CashFlow.Actual = s.ActualBalance
		r.CashFlow.Variance = s.Variance
	}

	return r
}
