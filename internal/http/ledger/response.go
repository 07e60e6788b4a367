package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
)

type entryResponse struct {
	ID             uuid.UUID              `json:"id"`
	Seq            int64                  `json:"seq"`
	PostingGroupID uuid.UUID              `json:"posting_group_id"`
	AccountID      *uuid.UUID             `json:"account_id,omitempty"`
	Type           ledger.TransactionType `json:"transaction_type"`
	Amount         decimal.Decimal        `json:"amount"`
	ReferenceType  ledger.ReferenceType   `json:"reference_type"`
	ReferenceID    *uuid.UUID             `json:"reference_id,omitempty"`
	Description    string                 `json:"description"`
	ProcessedBy    uuid.UUID              `json:"processed_by"`
	CreatedAt      time.Time              `json:"created_at"`
}

type groupResponse struct {
	ID            uuid.UUID            `json:"id"`
	ReferenceType ledger.ReferenceType `json:"reference_type"`
	ReferenceID   *uuid.UUID           `json:"reference_id,omitempty"`
	Total         decimal.Decimal      `json:"total"`
	Entries       []entryResponse      `json:"entries"`
}

// postResponse reports whether anything was written. Idempotent repeats come back with Posted false.
type postResponse struct {
	Posted bool           `json:"posted"`
	Group  *groupResponse `json:"group,omitempty"`
}

type payoutResponse struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Notes       string          `json:"notes,omitempty"`
	ReferenceID *uuid.UUID      `json:"reference_id,omitempty"`
	ProcessedBy uuid.UUID       `json:"processed_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

type balanceResponse struct {
	RestaurantID uuid.UUID       `json:"restaurant_id"`
	AccountID    *uuid.UUID      `json:"account_id,omitempty"`
	Balance      decimal.Decimal `json:"balance"`
}

func toEntryResponse(e *ledger.Entry) entryResponse {
	return entryResponse{
		ID:             e.ID,
		Seq:            e.Seq,
		PostingGroupID: e.PostingGroupID,
		AccountID:      e.AccountID,
		Type:           e.Type,
		Amount:         e.Amount,
		ReferenceType:  e.ReferenceType,
		ReferenceID:    e.ReferenceID,
		Description:    e.Description,
		ProcessedBy:    e.ProcessedBy,
		CreatedAt:      e.CreatedAt,
	}
}

func toEntryResponseList(entries []*ledger.Entry) []entryResponse {
	out := make([]entryResponse, len(entries))
	for i, e := range entries {
		out[i] = toEntryResponse(e)
	}

	return out
}

func toPostResponse(g *ledger.PostingGroup) postResponse {
	if g == nil {
		return postResponse{}
	}

	return postResponse{
		Posted: true,
		Group: &groupResponse{
			ID:            g.ID,
			ReferenceType: g.ReferenceType,
			ReferenceID:   g.ReferenceID,
			Total:         g.Total(),
			Entries:       toEntryResponseList(g.Entries),
		},
	}
}

func toPayoutResponse(p *ledger.Payout) payoutResponse {
	return payoutResponse{
		ID:          p.ID,
		Amount:      p.Amount,
		Category:    p.Category,
		Notes:       p.Notes,
		ReferenceID: p.ReferenceID,
		ProcessedBy: p.ProcessedBy,
		CreatedAt:   p.CreatedAt,
	}
}
