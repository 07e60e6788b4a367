package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
)

type sessionResponse struct {
	ID              uuid.UUID          `json:"id"`
	RestaurantID    uuid.UUID          `json:"restaurant_id"`
	Status          cashsession.Status `json:"status"`
	OpenedBy        uuid.UUID          `json:"opened_by"`
	OpeningBalance  decimal.Decimal    `json:"opening_balance"`
	OpenedAt        time.Time          `json:"opened_at"`
	ClosedAt        *time.Time         `json:"closed_at,omitempty"`
	ClosedBy        *uuid.UUID         `json:"closed_by,omitempty"`
	ExpectedBalance *decimal.Decimal   `json:"expected_balance,omitempty"`
	ActualBalance   *decimal.Decimal   `json:"actual_balance,omitempty"`
	Variance        *decimal.Decimal   `json:"variance,omitempty"`
	Notes           string             `json:"notes,omitempty"`
}

type metricsResponse struct {
	SessionID      uuid.UUID       `json:"session_id"`
	OpenedAt       time.Time       `json:"opened_at"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Revenue        decimal.Decimal `json:"revenue"`
	CashSales      decimal.Decimal `json:"cash_sales"`
	NetSettlements decimal.Decimal `json:"net_settlements"`
	Payouts        decimal.Decimal `json:"payouts"`
	Adjustments    decimal.Decimal `json:"adjustments"`
	ExpectedCash   decimal.Decimal `json:"expected_cash"`
	EntryCount     int             `json:"entry_count"`
}

func toResponse(s *cashsession.Session) sessionResponse {
	return sessionResponse{
		ID:              s.ID,
		RestaurantID:    s.RestaurantID,
		Status:          s.Status,
		OpenedBy:        s.OpenedBy,
		OpeningBalance:  s.OpeningBalance,
		OpenedAt:        s.OpenedAt,
		ClosedAt:        s.ClosedAt,
		ClosedBy:        s.ClosedBy,
		ExpectedBalance: s.ExpectedBalance,
		ActualBalance:   s.ActualBalance,
		Variance:        s.Variance,
		Notes:           s.Notes,
	}
}

func toResponseList(sessions []*cashsession.Session) []sessionResponse {
	out := make([]sessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = toResponse(s)
	}

	return out
}

func toMetricsResponse(m *cashsession.Metrics) metricsResponse {
	return metricsResponse{
		SessionID:      m.SessionID,
		OpenedAt:       m.OpenedAt,
		OpeningBalance: m.OpeningBalance,
		Revenue:        m.Revenue,
		CashSales:      m.CashSales,
		NetSettlements: m.NetSettlements,
		Payouts:        m.Payouts,
		Adjustments:    m.Adjustments,
		ExpectedCash:   m.ExpectedCash,
		EntryCount:     m.EntryCount,
	}
}
