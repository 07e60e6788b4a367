package ridershift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
	"github.com/MrJamesThe3rd/tillbook/internal/metrics"
	"github.com/MrJamesThe3rd/tillbook/internal/order"
)

const resource = "rider shift"

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ridershift
type Repository interface {
	Begin(ctx context.Context) (Tx, error)
	GetShift(ctx context.Context, id uuid.UUID) (*Shift, error)
	GetActiveShift(ctx context.Context, restaurantID, riderID uuid.UUID) (*Shift, error)
	ListActiveShifts(ctx context.Context, restaurantID uuid.UUID) ([]*Shift, error)
	ListShiftOrders(ctx context.Context, shiftID uuid.UUID) ([]*order.Order, error)
}

// Tx is a ledger unit of work that can also read and write shifts.
type Tx interface {
	ledger.UnitOfWork
	GetOpenShift(ctx context.Context, restaurantID, riderID uuid.UUID) (*Shift, error)
	LockShift(ctx context.Context, id uuid.UUID) (*Shift, error)
	InsertShift(ctx context.Context, s *Shift) error
	CloseShift(ctx context.Context, s *Shift) error
	ListShiftOrders(ctx context.Context, shiftID uuid.UUID) ([]*order.Order, error)
}

type Manager struct {
	repo   Repository
	ledger *ledger.Service
}

func NewManager(repo Repository, ledgerSvc *ledger.Service) *Manager {
	return &Manager{repo: repo, ledger: ledgerSvc}
}

type OpenParams struct {
	RestaurantID uuid.UUID
	RiderID      uuid.UUID
	StaffID      uuid.UUID
	OpeningFloat decimal.Decimal
	Notes        string
}

// lostOpenRace reports the shift that a concurrent open inserted first.
func (m *Manager) lostOpenRace(ctx context.Context, restaurantID, riderID uuid.UUID) error {
	conflict := &ledger.ConflictError{Resource: resource, Message: "rider already has an open shift"}

	winner, err := m.repo.GetActiveShift(ctx, restaurantID, riderID)
	if err != nil {
		slog.Warn("failed to read the open shift after a conflict", "rider_id", riderID, "error", err)
		return conflict
	}

	conflict.ID = winner.ID
	conflict.Since = winner.OpenedAt

	return conflict
}

func (m *Manager) Open(ctx context.Context, params OpenParams) (*Shift, error) {
	switch {
	case params.RestaurantID == uuid.Nil:
		return nil, &ledger.ValidationError{Field: "restaurant_id", Message: "is required"}
	case params.RiderID == uuid.Nil:
		return nil, &ledger.ValidationError{Field: "rider_id", Message: "is required"}
	case params.StaffID == uuid.Nil:
		return nil, &ledger.ValidationError{Field: "staff_id", Message: "is required"}
	case params.OpeningFloat.IsNegative():
		return nil, &ledger.ValidationError{Field: "opening_float", Message: "cannot be negative"}
	case !ledger.WholeCents(params.OpeningFloat):
		return nil, &ledger.ValidationError{Field: "opening_float", Message: "at most 2 decimal places"}
	}

	tx, err := m.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin open shift: %w", err)
	}
	defer tx.Rollback()

	if err := tx.Lock(ctx, fmt.Sprintf("rider-shift:%s:%s", params.RestaurantID, params.RiderID)); err != nil {
		return nil, err
	}

	existing, err := tx.GetOpenShift(ctx, params.RestaurantID, params.RiderID)

	switch {
	case err == nil:
		return nil, &ledger.ConflictError{
			Resource: resource,
			ID:       existing.ID,
			Since:    existing.OpenedAt,
			Message:  "rider already has an open shift",
		}
	case !errors.Is(err, ledger.ErrNotFound):
		return nil, fmt.Errorf("checking open shift: %w", err)
	}

	s := &Shift{
		ID:           uuid.New(),
		RestaurantID: params.RestaurantID,
		RiderID:      params.RiderID,
		OpenedBy:     params.StaffID,
		OpeningFloat: params.OpeningFloat,
		OpenedAt:     m.ledger.Now(),
		Status:       StatusOpen,
		Notes:        params.Notes,
	}

	if err := tx.InsertShift(ctx, s); err != nil {
		if errors.Is(err, ledger.ErrConflict) {
			tx.Rollback()
			return nil, m.lostOpenRace(ctx, params.RestaurantID, params.RiderID)
		}

		return nil, fmt.Errorf("inserting shift: %w", err)
	}

	p := m.ledger.Poster(tx)

	_, err = p.RecordFloatIssue(ctx, ledger.FloatParams{
		RestaurantID:  s.RestaurantID,
		RiderID:       s.RiderID,
		Amount:        s.OpeningFloat,
		ReferenceID:   &s.ID,
		ReferenceType: ledger.RefRiderShift,
		ProcessedBy:   s.OpenedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("issuing float: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit open shift: %w", err)
	}

	m.ledger.Committed(ctx, p)

	slog.Info("rider shift opened",
		"shift_id", s.ID,
		"rider_id", s.RiderID,
		"opening_float", s.OpeningFloat.StringFixed(2),
	)

	return s, nil
}

type CloseParams struct {
	ShiftID     uuid.UUID
	StaffID     uuid.UUID
	ClosingCash decimal.Decimal
	Notes       string
}

// Close settles the cash the rider actually handed in and records the difference from expected.
func (m *Manager) Close(ctx context.Context, params CloseParams) (*Shift, error) {
	if params.ClosingCash.IsNegative() {
		return nil, &ledger.ValidationError{Field: "closing_cash", Message: "cannot be negative"}
	}

	if !ledger.WholeCents(params.ClosingCash) {
		return nil, &ledger.ValidationError{Field: "closing_cash", Message: "at most 2 decimal places"}
	}

	tx, err := m.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin close shift: %w", err)
	}
	defer tx.Rollback()

	s, err := tx.LockShift(ctx, params.ShiftID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, &ledger.NotFoundError{Resource: resource, ID: params.ShiftID}
		}

		return nil, fmt.Errorf("locking shift: %w", err)
	}

	if s.Status != StatusOpen {
		return nil, &ledger.ConflictError{Resource: resource, ID: s.ID, Message: "shift is not open"}
	}

	orders, err := tx.ListShiftOrders(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("listing shift orders: %w", err)
	}

	expected := ExpectedCash(s, orders)
	received := params.ClosingCash
	difference := received.Sub(expected)
	closedAt := m.ledger.Now()

	s.ClosedAt = &closedAt
	s.ClosedBy = &params.StaffID
	s.ClosingCashReceived = &received
	s.ExpectedCash = &expected
	s.CashDifference = &difference
	s.Status = StatusClosed

	if params.Notes != "" {
		s.Notes = params.Notes
	}

	if err := tx.CloseShift(ctx, s); err != nil {
		return nil, fmt.Errorf("closing shift: %w", err)
	}

	p := m.ledger.Poster(tx)

	if received.IsPositive() {
		var delivered []uuid.UUID

		for _, o := range orders {
			if o.IsDeliveredAndPaid() {
				delivered = append(delivered, o.ID)
			}
		}

		_, err := p.RecordRiderSettlement(ctx, ledger.SettlementParams{
			RestaurantID:  s.RestaurantID,
			RiderID:       s.RiderID,
			Amount:        received,
			OrderIDs:      delivered,
			SettlementID:  s.ID,
			ReferenceType: ledger.RefRiderShift,
			ProcessedBy:   params.StaffID,
		})
		if err != nil {
			return nil, fmt.Errorf("settling shift cash: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit close shift: %w", err)
	}

	m.ledger.Committed(ctx, p)

	metrics.CashVariance.WithLabelValues("shift").Observe(difference.InexactFloat64())

	log := slog.Info
	if !difference.IsZero() {
		log = slog.Warn
	}

	log("rider shift closed",
		"shift_id", s.ID,
		"rider_id", s.RiderID,
		"expected", expected.StringFixed(2),
		"received", received.StringFixed(2),
		"difference", difference.StringFixed(2),
	)

	return s, nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Shift, error) {
	s, err := m.repo.GetShift(ctx, id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, &ledger.NotFoundError{Resource: resource, ID: id}
		}

		return nil, err
	}

	return s, nil
}

func (m *Manager) GetActiveShift(ctx context.Context, restaurantID, riderID uuid.UUID) (*Shift, error) {
	s, err := m.repo.GetActiveShift(ctx, restaurantID, riderID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, &ledger.NotFoundError{Resource: "open " + resource}
		}

		return nil, err
	}

	return s, nil
}

func (m *Manager) ListActiveShifts(ctx context.Context, restaurantID uuid.UUID) ([]*Shift, error) {
	return m.repo.ListActiveShifts(ctx, restaurantID)
}

// GetShiftMetrics reports the running totals of a shift without closing it.
func (m *Manager) GetShiftMetrics(ctx context.Context, shiftID uuid.UUID) (*Metrics, error) {
	s, err := m.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	orders, err := m.repo.ListShiftOrders(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("listing shift orders: %w", err)
	}

	sum := Summarize(s, orders)

	balance, err := m.ledger.GetBalance(ctx, s.RestaurantID, &s.RiderID)
	if err != nil {
		return nil, fmt.Errorf("getting rider balance: %w", err)
	}

	sum.RiderBalance = balance

	return &sum, nil
}
