package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// checkpointSettle keeps checkpoints behind entries that may still belong to an uncommitted unit of work.
const checkpointSettle = 5 * time.Minute

// Checkpoint is a cached running balance valid up to and including Seq.
type Checkpoint struct {
	Balance decimal.Decimal `json:"balance"`
	Seq     int64           `json:"seq"`
}

// Balance folds entries into Σ DEBIT − Σ CREDIT.
func Balance(entries []*Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Signed())
	}

	return total
}

func balanceFilter(restaurantID uuid.UUID, accountID *uuid.UUID, afterSeq int64) EntryFilter {
	return EntryFilter{
		RestaurantID: restaurantID,
		AccountID:    accountID,
		HouseCash:    accountID == nil,
		AfterSeq:     afterSeq,
	}
}

// ReplayBalance always folds the account's full history.
func (s *Service) ReplayBalance(ctx context.Context, restaurantID uuid.UUID, accountID *uuid.UUID) (decimal.Decimal, error) {
	entries, err := s.repo.ListEntries(ctx, balanceFilter(restaurantID, accountID, 0))
	if err != nil {
		return decimal.Zero, fmt.Errorf("listing entries: %w", err)
	}

	return Balance(entries), nil
}

// GetBalance returns the account balance. A nil account is the house cash drawer.
// With a checkpoint cache only entries after the checkpoint are replayed.
func (s *Service) GetBalance(ctx context.Context, restaurantID uuid.UUID, accountID *uuid.UUID) (decimal.Decimal, error) {
	if s.checkpoints == nil {
		return s.ReplayBalance(ctx, restaurantID, accountID)
	}

	start := Checkpoint{Balance: decimal.Zero}

	cp, err := s.checkpoints.Get(ctx, restaurantID, accountID)
	if err != nil {
		slog.Warn("checkpoint lookup failed, replaying", "restaurant_id", restaurantID, "error", err)
		return s.ReplayBalance(ctx, restaurantID, accountID)
	}

	if cp != nil {
		start = *cp
	}

	entries, err := s.repo.ListEntries(ctx, balanceFilter(restaurantID, accountID, start.Seq))
	if err != nil {
		return decimal.Zero, fmt.Errorf("listing entries: %w", err)
	}

	balance, settled := advance(start, entries, s.now().Add(-checkpointSettle))

	if settled.Seq != start.Seq {
		if err := s.checkpoints.Put(ctx, restaurantID, accountID, settled); err != nil {
			slog.Warn("failed to store balance checkpoint", "restaurant_id", restaurantID, "error", err)
		}
	}

	return balance, nil
}

// advance folds entries (ordered by Seq) onto start. The returned checkpoint
// only covers the leading run of entries created at or before cutoff.
func advance(start Checkpoint, entries []*Entry, cutoff time.Time) (decimal.Decimal, Checkpoint) {
	balance := start.Balance
	settled := start
	open := true

	for _, e := range entries {
		balance = balance.Add(e.Signed())

		if open && !e.CreatedAt.After(cutoff) {
			settled = Checkpoint{Balance: balance, Seq: e.Seq}
			continue
		}

		open = false
	}

	return balance, settled
}
