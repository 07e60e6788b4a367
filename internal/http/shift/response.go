package shift

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillbook/internal/ridershift"
)

type shiftResponse struct {
	ID                  uuid.UUID         `json:"id"`
	RestaurantID        uuid.UUID         `json:"restaurant_id"`
	RiderID             uuid.UUID         `json:"rider_id"`
	Status              ridershift.Status `json:"status"`
	OpenedBy            uuid.UUID         `json:"opened_by"`
	OpeningFloat        decimal.Decimal   `json:"opening_float"`
	OpenedAt            time.Time         `json:"opened_at"`
	ClosedAt            *time.Time        `json:"closed_at,omitempty"`
	ClosedBy            *uuid.UUID        `json:"closed_by,omitempty"`
	ClosingCashReceived *decimal.Decimal  `json:"closing_cash_received,omitempty"`
	ExpectedCash        *decimal.Decimal  `json:"expected_cash,omitempty"`
	CashDifference      *decimal.Decimal  `json:"cash_difference,omitempty"`
	Notes               string            `json:"notes,omitempty"`
}

type metricsResponse struct {
	Shift          shiftResponse   `json:"shift"`
	DeliveredCount int             `json:"delivered_count"`
	ActiveCount    int             `json:"active_count"`
	DeliveredTotal decimal.Decimal `json:"delivered_total"`
	ActiveTotal    decimal.Decimal `json:"active_total"`
	Collected      decimal.Decimal `json:"collected"`
	ExpectedCash   decimal.Decimal `json:"expected_cash"`
	RiderBalance   decimal.Decimal `json:"rider_balance"`
}

func toResponse(s *ridershift.Shift) shiftResponse {
	return shiftResponse{
		ID:                  s.ID,
		RestaurantID:        s.RestaurantID,
		RiderID:             s.RiderID,
		Status:              s.Status,
		OpenedBy:            s.OpenedBy,
		OpeningFloat:        s.OpeningFloat,
		OpenedAt:            s.OpenedAt,
		ClosedAt:            s.ClosedAt,
		ClosedBy:            s.ClosedBy,
		ClosingCashReceived: s.ClosingCashReceived,
		ExpectedCash:        s.ExpectedCash,
		CashDifference:      s.CashDifference,
		Notes:               s.Notes,
	}
}

func toResponseList(shifts []*ridershift.Shift) []shiftResponse {
	out := make([]shiftResponse, len(shifts))
	for i, s := range shifts {
		out[i] = toResponse(s)
	}

	return out
}

func toMetricsResponse(m *ridershift.Metrics) metricsResponse {
	return metricsResponse{
		Shift:          toResponse(m.Shift),
		DeliveredCount: m.DeliveredCount,
		ActiveCount:    m.ActiveCount,
		DeliveredTotal: m.DeliveredTotal,
		ActiveTotal:    m.ActiveTotal,
		Collected:      m.Collected,
		ExpectedCash:   m.ExpectedCash,
		RiderBalance:   m.RiderBalance,
	}
}
