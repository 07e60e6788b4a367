package cashsession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
	"github.com/MrJamesThe3rd/tillbook/internal/metrics"
)

const resource = "cash session"

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=cashsession
type Repository interface {
	Begin(ctx context.Context) (Tx, error)
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	GetActiveSession(ctx context.Context, restaurantID uuid.UUID) (*Session, error)
	ListSessions(ctx context.Context, restaurantID uuid.UUID, limit int) ([]*Session, error)
	ListEntries(ctx context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error)
}

// Tx is a ledger unit of work that can also read and write sessions.
// Stores return ledger.ErrNotFound for missing rows and ledger.ErrConflict when
// the one-open-session constraint rejects an insert.
type Tx interface {
	ledger.UnitOfWork
	GetOpenSession(ctx context.Context, restaurantID uuid.UUID) (*Session, error)
	LockSession(ctx context.Context, id uuid.UUID) (*Session, error)
	InsertSession(ctx context.Context, s *Session) error
	CloseSession(ctx context.Context, s *Session) error
}

type Manager struct {
	repo   Repository
	ledger *ledger.Service
}

func NewManager(repo Repository, ledgerSvc *ledger.Service) *Manager {
	return &Manager{repo: repo, ledger: ledgerSvc}
}

type OpenParams struct {
	RestaurantID   uuid.UUID
	StaffID        uuid.UUID
	OpeningBalance decimal.Decimal
	Notes          string
}

// lostOpenRace describes the session that won a concurrent open. The losing
// transaction is already aborted, so the winner is read outside it.
func (m *Manager) lostOpenRace(ctx context.Context, restaurantID uuid.UUID) error {
	conflict := &ledger.ConflictError{Resource: resource, Message: "a session is already open"}

	winner, err := m.repo.GetActiveSession(ctx, restaurantID)
	if err != nil {
		slog.Warn("failed to read the open session after a conflict", "restaurant_id", restaurantID, "error", err)
		return conflict
	}

	conflict.ID = winner.ID
	conflict.Since = winner.OpenedAt

	return conflict
}

// Open starts a cash session. Only one session per restaurant may be open.
func (m *Manager) Open(ctx context.Context, params OpenParams) (*Session, error) {
	if params.RestaurantID == uuid.Nil {
		return nil, &ledger.ValidationError{Field: "restaurant_id", Message: "is required"}
	}

	if params.StaffID == uuid.Nil {
		return nil, &ledger.ValidationError{Field: "staff_id", Message: "is required"}
	}

	if params.OpeningBalance.IsNegative() {
		return nil, &ledger.ValidationError{Field: "opening_balance", Message: "cannot be negative"}
	}

	if !ledger.WholeCents(params.OpeningBalance) {
		return nil, &ledger.ValidationError{Field: "opening_balance", Message: "at most 2 decimal places"}
	}

	tx, err := m.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin open session: %w", err)
	}
	defer tx.Rollback()

	if err := tx.Lock(ctx, "cash-session:"+params.RestaurantID.String()); err != nil {
		return nil, err
	}

	existing, err := tx.GetOpenSession(ctx, params.RestaurantID)

	switch {
	case err == nil:
		return nil, &ledger.ConflictError{
			Resource: resource,
			ID:       existing.ID,
			Since:    existing.OpenedAt,
			Message:  "a session is already open",
		}
	case !errors.Is(err, ledger.ErrNotFound):
		return nil, fmt.Errorf("checking open session: %w", err)
	}

	s := &Session{
		ID:             uuid.New(),
		RestaurantID:   params.RestaurantID,
		OpenedBy:       params.StaffID,
		OpeningBalance: params.OpeningBalance,
		OpenedAt:       m.ledger.Now(),
		Status:         StatusOpen,
		Notes:          params.Notes,
	}

	if err := tx.InsertSession(ctx, s); err != nil {
		if errors.Is(err, ledger.ErrConflict) {
			tx.Rollback()
			return nil, m.lostOpenRace(ctx, params.RestaurantID)
		}

		return nil, fmt.Errorf("inserting session: %w", err)
	}

	p := m.ledger.Poster(tx)

	if s.OpeningBalance.IsPositive() {
		g := ledger.NewPostingGroup(s.RestaurantID, ledger.RefOpeningBalance, &s.ID, s.OpenedBy, "Opening float").
			Debit(nil, s.OpeningBalance).
			Credit(new(ledger.SafeAccount), s.OpeningBalance)

		if err := p.Post(ctx, g); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit open session: %w", err)
	}

	m.ledger.Committed(ctx, p)

	slog.Info("cash session opened",
		"session_id", s.ID,
		"restaurant_id", s.RestaurantID,
		"opening_balance", s.OpeningBalance.StringFixed(2),
	)

	return s, nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	s, err := m.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, &ledger.NotFoundError{Resource: resource, ID: id}
		}

		return nil, err
	}

	return s, nil
}

// GetActiveSession returns the restaurant's open session or a NotFoundError.
func (m *Manager) GetActiveSession(ctx context.Context, restaurantID uuid.UUID) (*Session, error) {
	s, err := m.repo.GetActiveSession(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, &ledger.NotFoundError{Resource: "open " + resource}
		}

		return nil, err
	}

	return s, nil
}

func (m *Manager) List(ctx context.Context, restaurantID uuid.UUID, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 30
	}

	return m.repo.ListSessions(ctx, restaurantID, limit)
}

// GetSessionMetrics breaks down the active session's drawer movements without closing it.
func (m *Manager) GetSessionMetrics(ctx context.Context, restaurantID uuid.UUID) (*Metrics, error) {
	s, err := m.GetActiveSession(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	entries, err := m.repo.ListEntries(ctx, ledger.EntryFilter{
		RestaurantID: s.RestaurantID,
		Since:        &s.OpenedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("listing session entries: %w", err)
	}

	sum := Summarize(s, entries)

	return &sum, nil
}

type CloseParams struct {
	SessionID     uuid.UUID
	StaffID       uuid.UUID
	ActualBalance decimal.Decimal
	Notes         string
}

// Close freezes the session with its expected balance and variance.
// The variance is reported, never corrected.
func (m *Manager) Close(ctx context.Context, params CloseParams) (*Session, error) {
	if params.ActualBalance.IsNegative() {
		return nil, &ledger.ValidationError{Field: "actual_balance", Message: "cannot be negative"}
	}

	if !ledger.WholeCents(params.ActualBalance) {
		return nil, &ledger.ValidationError{Field: "actual_balance", Message: "at most 2 decimal places"}
	}

	tx, err := m.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin close session: %w", err)
	}
	defer tx.Rollback()

	s, err := tx.LockSession(ctx, params.SessionID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, &ledger.NotFoundError{Resource: resource, ID: params.SessionID}
		}

		return nil, fmt.Errorf("locking session: %w", err)
	}

	if s.Status != StatusOpen {
		ce := &ledger.ConflictError{Resource: resource, ID: s.ID, Message: "session is not open"}
		if s.ClosedAt != nil {
			ce.Since = *s.ClosedAt
		}

		return nil, ce
	}

	entries, err := tx.ListEntries(ctx, ledger.EntryFilter{
		RestaurantID: s.RestaurantID,
		HouseCash:    true,
		Since:        &s.OpenedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("listing session entries: %w", err)
	}

	expected := s.OpeningBalance.Add(DrawerMovement(s, entries))
	actual := params.ActualBalance
	variance := actual.Sub(expected)
	closedAt := m.ledger.Now()

	s.ClosedAt = &closedAt
	s.ClosedBy = &params.StaffID
	s.ExpectedBalance = &expected
	s.ActualBalance = &actual
	s.Variance = &variance
	s.Status = StatusClosed

	if params.Notes != "" {
		s.Notes = params.Notes
	}

	if err := tx.CloseSession(ctx, s); err != nil {
		return nil, fmt.Errorf("closing session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit close session: %w", err)
	}

	metrics.CashVariance.WithLabelValues("session").Observe(variance.InexactFloat64())

	log := slog.Info
	if !variance.IsZero() {
		log = slog.Warn
	}

	log("cash session closed",
		"session_id", s.ID,
		"expected", expected.StringFixed(2),
		"actual", actual.StringFixed(2),
		"variance", variance.StringFixed(2),
	)

	return s, nil
}
