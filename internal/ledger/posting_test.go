package ledger_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
)

func TestPostingGroup_Validate(t *testing.T) {
	restaurantID := uuid.New()
	riderID := uuid.New()

	type testCase struct {
		name    string
		group   func() *ledger.PostingGroup
		wantErr error
	}

	tests := []testCase{
		{
			name: "Balanced",
			group: func() *ledger.PostingGroup {
				return ledger.NewPostingGroup(restaurantID, ledger.RefSettlement, nil, uuid.New(), "").
					Debit(nil, decimal.NewFromInt(300)).
					Credit(&riderID, decimal.NewFromInt(300))
			},
		},
		{
			name: "BalancedAcrossSeveralLegs",
			group: func() *ledger.PostingGroup {
				return ledger.NewPostingGroup(restaurantID, ledger.RefAdjustment, nil, uuid.New(), "").
					Debit(nil, decimal.RequireFromString("10.50")).
					Debit(&riderID, decimal.RequireFromString("4.50")).
					Credit(new(ledger.SafeAccount), decimal.NewFromInt(15))
			},
		},
		{
			name: "Unbalanced",
			group: func() *ledger.PostingGroup {
				return ledger.NewPostingGroup(restaurantID, ledger.RefAdjustment, nil, uuid.New(), "").
					Debit(nil, decimal.NewFromInt(100)).
					Credit(&riderID, decimal.NewFromInt(99))
			},
			wantErr: ledger.ErrInconsistent,
		},
		{
			name: "SingleEntry",
			group: func() *ledger.PostingGroup {
				return ledger.NewPostingGroup(restaurantID, ledger.RefPayout, nil, uuid.New(), "").
					Credit(nil, decimal.NewFromInt(100))
			},
			wantErr: ledger.ErrValidation,
		},
		{
			name: "ZeroAmount",
			group: func() *ledger.PostingGroup {
				return ledger.NewPostingGroup(restaurantID, ledger.RefAdjustment, nil, uuid.New(), "").
					Debit(nil, decimal.Zero).
					Credit(&riderID, decimal.Zero)
			},
			wantErr: ledger.ErrValidation,
		},
		{
			name: "SubCentAmount",
			group: func() *ledger.PostingGroup {
				return ledger.NewPostingGroup(restaurantID, ledger.RefPayout, nil, uuid.New(), "").
					Credit(nil, decimal.RequireFromString("0.004")).
					Debit(new(ledger.ExpenseAccount), decimal.RequireFromString("0.004"))
			},
			wantErr: ledger.ErrValidation,
		},
		{
			name: "ThirdDecimalPlace",
			group: func() *ledger.PostingGroup {
				return ledger.NewPostingGroup(restaurantID, ledger.RefAdjustment, nil, uuid.New(), "").
					Debit(nil, decimal.RequireFromString("10.005")).
					Credit(new(ledger.SafeAccount), decimal.RequireFromString("10.005"))
			},
			wantErr: ledger.ErrValidation,
		},
		{
			name: "TrailingZerosAreFine",
			group: func() *ledger.PostingGroup {
				return ledger.NewPostingGroup(restaurantID, ledger.RefAdjustment, nil, uuid.New(), "").
					Debit(nil, decimal.RequireFromString("10.500")).
					Credit(new(ledger.SafeAccount), decimal.RequireFromString("10.5"))
			},
		},
		{
			name: "MissingRestaurant",
			group: func() *ledger.PostingGroup {
				return ledger.NewPostingGroup(uuid.Nil, ledger.RefAdjustment, nil, uuid.New(), "").
					Debit(nil, decimal.NewFromInt(1)).
					Credit(&riderID, decimal.NewFromInt(1))
			},
			wantErr: ledger.ErrValidation,
		},
		{
			name: "UnknownReferenceType",
			group: func() *ledger.PostingGroup {
				return ledger.NewPostingGroup(restaurantID, ledger.ReferenceType("REFUND"), nil, uuid.New(), "").
					Debit(nil, decimal.NewFromInt(1)).
					Credit(&riderID, decimal.NewFromInt(1))
			},
			wantErr: ledger.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.group().Validate()

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestPostingGroup_EntriesShareGroup(t *testing.T) {
	refID := uuid.New()
	staff := uuid.New()

	g := ledger.NewPostingGroup(uuid.New(), ledger.RefOrder, &refID, staff, "Order #12").
		Credit(new(ledger.RevenueAccount), decimal.NewFromInt(500)).
		Debit(nil, decimal.NewFromInt(500))

	require.Len(t, g.Entries, 2)

	for _, e := range g.Entries {
		assert.Equal(t, g.ID, e.PostingGroupID)
		assert.Equal(t, ledger.RefOrder, e.ReferenceType)
		assert.Equal(t, &refID, e.ReferenceID)
		assert.Equal(t, staff, e.ProcessedBy)
		assert.Equal(t, "Order #12", e.Description)
	}

	assert.True(t, g.Total().Equal(decimal.NewFromInt(500)))
}

func TestCheckBalanced(t *testing.T) {
	rider := uuid.New()
	a := ledger.NewPostingGroup(uuid.New(), ledger.RefSettlement, nil, uuid.Nil, "").
		Debit(nil, decimal.NewFromInt(50)).
		Credit(&rider, decimal.NewFromInt(50))
	b := ledger.NewPostingGroup(uuid.New(), ledger.RefSettlement, nil, uuid.Nil, "").
		Debit(nil, decimal.NewFromInt(70)).
		Credit(&rider, decimal.NewFromInt(70))

	entries := append(append([]*ledger.Entry{}, a.Entries...), b.Entries...)
	require.NoError(t, ledger.CheckBalanced(entries))

	// Dropping one leg of b leaves it unbalanced.
	err := ledger.CheckBalanced(entries[:3])

	var ce *ledger.ConsistencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, b.ID, ce.GroupID)
}

func TestBalance(t *testing.T) {
	rider := uuid.New()
	entries := []*ledger.Entry{
		{AccountID: &rider, Type: ledger.Debit, Amount: decimal.NewFromInt(2000)},
		{AccountID: &rider, Type: ledger.Debit, Amount: decimal.RequireFromString("4500.25")},
		{AccountID: &rider, Type: ledger.Credit, Amount: decimal.RequireFromString("6500.25")},
	}

	assert.True(t, ledger.Balance(entries).Equal(decimal.Zero))
	assert.True(t, ledger.Balance(entries[:2]).Equal(decimal.RequireFromString("6500.25")))
	assert.True(t, ledger.Balance(nil).IsZero())
}

func TestEntryFilter_Matches(t *testing.T) {
	restaurantID := uuid.New()
	rider := uuid.New()
	ref := uuid.New()

	house := &ledger.Entry{RestaurantID: restaurantID, Type: ledger.Debit, ReferenceType: ledger.RefOrder, ReferenceID: &ref, Seq: 4}
	riderEntry := &ledger.Entry{RestaurantID: restaurantID, AccountID: &rider, Type: ledger.Credit, ReferenceType: ledger.RefSettlement, Seq: 5}

	assert.True(t, ledger.EntryFilter{RestaurantID: restaurantID, HouseCash: true}.Matches(house))
	assert.False(t, ledger.EntryFilter{RestaurantID: restaurantID, HouseCash: true}.Matches(riderEntry))
	assert.True(t, ledger.EntryFilter{AccountID: &rider}.Matches(riderEntry))
	assert.False(t, ledger.EntryFilter{AccountID: &rider}.Matches(house))
	assert.True(t, ledger.EntryFilter{ReferenceID: &ref, Type: new(ledger.Debit)}.Matches(house))
	assert.False(t, ledger.EntryFilter{RestaurantID: uuid.New()}.Matches(house))
	assert.False(t, ledger.EntryFilter{AfterSeq: 4}.Matches(house))
	assert.True(t, ledger.EntryFilter{AfterSeq: 4}.Matches(riderEntry))
}
