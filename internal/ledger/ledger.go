package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the side of a posting.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// ReferenceType names the business event an entry belongs to.
type ReferenceType string

const (
	RefOrder          ReferenceType = "ORDER"
	RefSettlement     ReferenceType = "SETTLEMENT"
	RefPayout         ReferenceType = "PAYOUT"
	RefStockIn        ReferenceType = "STOCK_IN"
	RefOpeningBalance ReferenceType = "OPENING_BALANCE"
	RefAdjustment     ReferenceType = "ADJUSTMENT"
	RefRiderShift     ReferenceType = "RIDER_SHIFT"
)

func (r ReferenceType) Valid() bool {
	switch r {
	case RefOrder, RefSettlement, RefPayout, RefStockIn, RefOpeningBalance, RefAdjustment, RefRiderShift:
		return true
	}

	return false
}

// Fixed virtual accounts that carry the non-cash side of postings.
// A nil account ID is the house cash drawer.
var (
	RevenueAccount = uuid.MustParse("00000000-0000-0000-0000-00000000a001")
	ExpenseAccount = uuid.MustParse("00000000-0000-0000-0000-00000000a002")
	SafeAccount    = uuid.MustParse("00000000-0000-0000-0000-00000000a003")
)

// Entry is a single immutable ledger posting.
type Entry struct {
	ID             uuid.UUID
	Seq            int64 // Insertion order, assigned by the store
	PostingGroupID uuid.UUID
	RestaurantID   uuid.UUID
	AccountID      *uuid.UUID // nil = house cash drawer
	Type           TransactionType
	Amount         decimal.Decimal
	ReferenceType  ReferenceType
	ReferenceID    *uuid.UUID
	Description    string
	ProcessedBy    uuid.UUID
	CreatedAt      time.Time
}

// IsHouseCash reports whether the entry moves the physical cash drawer.
func (e *Entry) IsHouseCash() bool {
	return e.AccountID == nil
}

// Signed returns the amount with the debit-positive sign convention.
func (e *Entry) Signed() decimal.Decimal {
	if e.Type == Credit {
		return e.Amount.Neg()
	}

	return e.Amount
}

// Payout records cash leaving the drawer for an expense.
type Payout struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Amount       decimal.Decimal
	Category     string
	Notes        string
	ReferenceID  *uuid.UUID
	ProcessedBy  uuid.UUID
	CreatedAt    time.Time
}

// EntryFilter narrows ListEntries. Zero-valued fields are ignored.
type EntryFilter struct {
	RestaurantID  uuid.UUID
	AccountID     *uuid.UUID
	HouseCash     bool // Only entries with a nil account; takes precedence over AccountID
	Type          *TransactionType
	ReferenceType *ReferenceType
	ReferenceID   *uuid.UUID
	Since         *time.Time
	Until         *time.Time
	AfterSeq      int64
}

// Matches applies the filter to a single entry. Stores without a query language use it.
func (f EntryFilter) Matches(e *Entry) bool {
	if f.RestaurantID != uuid.Nil && e.RestaurantID != f.RestaurantID {
		return false
	}

	switch {
	case f.HouseCash:
		if e.AccountID != nil {
			return false
		}
	case f.AccountID != nil:
		if e.AccountID == nil || *e.AccountID != *f.AccountID {
			return false
		}
	}

	if f.Type != nil && e.Type != *f.Type {
		return false
	}

	if f.ReferenceType != nil && e.ReferenceType != *f.ReferenceType {
		return false
	}

	if f.ReferenceID != nil && (e.ReferenceID == nil || *e.ReferenceID != *f.ReferenceID) {
		return false
	}

	if f.Since != nil && e.CreatedAt.Before(*f.Since) {
		return false
	}

	if f.Until != nil && e.CreatedAt.After(*f.Until) {
		return false
	}

	return e.Seq > f.AfterSeq
}
