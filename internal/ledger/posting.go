package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostingGroup is the set of entries produced by one business event.
// Debits and credits within a group must net to zero.
type PostingGroup struct {
	ID            uuid.UUID
	RestaurantID  uuid.UUID
	ReferenceType ReferenceType
	ReferenceID   *uuid.UUID
	Description   string
	ProcessedBy   uuid.UUID
	Entries       []*Entry
}

func NewPostingGroup(restaurantID uuid.UUID, ref ReferenceType, refID *uuid.UUID, processedBy uuid.UUID, description string) *PostingGroup {
	return &PostingGroup{
		ID:            uuid.New(),
		RestaurantID:  restaurantID,
		ReferenceType: ref,
		ReferenceID:   refID,
		Description:   description,
		ProcessedBy:   processedBy,
	}
}

func (g *PostingGroup) Debit(account *uuid.UUID, amount decimal.Decimal) *PostingGroup {
	return g.add(account, Debit, amount)
}

func (g *PostingGroup) Credit(account *uuid.UUID, amount decimal.Decimal) *PostingGroup {
	return g.add(account, Credit, amount)
}

func (g *PostingGroup) add(account *uuid.UUID, typ TransactionType, amount decimal.Decimal) *PostingGroup {
	g.Entries = append(g.Entries, &Entry{
		PostingGroupID: g.ID,
		RestaurantID:   g.RestaurantID,
		AccountID:      account,
		Type:           typ,
		Amount:         amount,
		ReferenceType:  g.ReferenceType,
		ReferenceID:    g.ReferenceID,
		Description:    g.Description,
		ProcessedBy:    g.ProcessedBy,
	})

	return g
}

// Total returns the debit side of the group.
func (g *PostingGroup) Total() decimal.Decimal {
	total := decimal.Zero

	for _, e := range g.Entries {
		if e.Type == Debit {
			total = total.Add(e.Amount)
		}
	}

	return total
}

// AmountPlaces is the precision of every stored amount.
const AmountPlaces = 2

// WholeCents reports whether d fits the stored precision without rounding.
func WholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(AmountPlaces))
}

// Validate checks the group's shape and that it nets to zero.
func (g *PostingGroup) Validate() error {
	if g.RestaurantID == uuid.Nil {
		return invalid("restaurant_id", "is required")
	}

	if !g.ReferenceType.Valid() {
		return invalid("reference_type", "unknown reference type "+string(g.ReferenceType))
	}

	if len(g.Entries) < 2 {
		return invalid("entries", "a posting group needs at least two entries")
	}

	debits, credits := decimal.Zero, decimal.Zero

	for _, e := range g.Entries {
		if !e.Amount.IsPositive() {
			return invalid("amount", "entry amounts must be positive")
		}

		if !WholeCents(e.Amount) {
			return invalid("amount", "at most 2 decimal places")
		}

		if e.RestaurantID != g.RestaurantID || e.PostingGroupID != g.ID {
			return invalid("entries", "entry does not belong to this group")
		}

		switch e.Type {
		case Debit:
			debits = debits.Add(e.Amount)
		case Credit:
			credits = credits.Add(e.Amount)
		default:
			return invalid("transaction_type", "unknown transaction type "+string(e.Type))
		}
	}

	if !debits.Equal(credits) {
		return &ConsistencyError{GroupID: g.ID, Debits: debits, Credits: credits}
	}

	return nil
}

func (g *PostingGroup) stamp(at time.Time) {
	for _, e := range g.Entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}

		e.CreatedAt = at
	}
}

// CheckBalanced verifies that every posting group present in entries nets to zero.
func CheckBalanced(entries []*Entry) error {
	type sums struct{ debits, credits decimal.Decimal }

	groups := make(map[uuid.UUID]*sums)

	var order []uuid.UUID

	for _, e := range entries {
		s, ok := groups[e.PostingGroupID]
		if !ok {
			s = &sums{debits: decimal.Zero, credits: decimal.Zero}
			groups[e.PostingGroupID] = s
			order = append(order, e.PostingGroupID)
		}

		if e.Type == Debit {
			s.debits = s.debits.Add(e.Amount)
		} else {
			s.credits = s.credits.Add(e.Amount)
		}
	}

	for _, id := range order {
		s := groups[id]
		if !s.debits.Equal(s.credits) {
			return &ConsistencyError{GroupID: id, Debits: s.debits, Credits: s.credits}
		}
	}

	return nil
}
