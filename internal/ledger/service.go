package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillbook/internal/metrics"
	"github.com/MrJamesThe3rd/tillbook/internal/order"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	Begin(ctx context.Context) (UnitOfWork, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]*Entry, error)
}

// UnitOfWork is one all-or-nothing write scope. Composed postings must share it.
type UnitOfWork interface {
	// Lock serializes units of work that use the same key until commit or rollback.
	Lock(ctx context.Context, key string) error
	ListEntries(ctx context.Context, filter EntryFilter) ([]*Entry, error)
	InsertEntries(ctx context.Context, entries []*Entry) error
	InsertPayout(ctx context.Context, p *Payout) error
	Commit() error
	Rollback() error
}

type OrderSource interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

type CheckpointCache interface {
	// Get returns nil without error when no checkpoint exists.
	Get(ctx context.Context, restaurantID uuid.UUID, accountID *uuid.UUID) (*Checkpoint, error)
	Put(ctx context.Context, restaurantID uuid.UUID, accountID *uuid.UUID, cp Checkpoint) error
}

type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

const TopicPosted = "ledger.posted"

type Service struct {
	repo        Repository
	orders      OrderSource
	checkpoints CheckpointCache
	publisher   Publisher
	now         func() time.Time
}

type Option func(*Service)

func WithCheckpoints(c CheckpointCache) Option {
	return func(s *Service) { s.checkpoints = c }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, orders OrderSource, opts ...Option) *Service {
	s := &Service{repo: repo, orders: orders, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Now is the clock used to stamp entries. Session and shift managers share it.
func (s *Service) Now() time.Time {
	return s.now()
}

// Poster binds posting operations to a single unit of work.
type Poster struct {
	svc    *Service
	uow    UnitOfWork
	groups []*PostingGroup
}

func (s *Service) Poster(uow UnitOfWork) *Poster {
	return &Poster{svc: s, uow: uow}
}

// Groups returns the posting groups written through this poster so far.
func (p *Poster) Groups() []*PostingGroup {
	return p.groups
}

// Atomic runs fn inside a fresh unit of work and commits it when fn succeeds.
func (s *Service) Atomic(ctx context.Context, fn func(p *Poster) error) error {
	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer uow.Rollback()

	p := s.Poster(uow)
	if err := fn(p); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit unit of work: %w", err)
	}

	s.Committed(ctx, p)

	return nil
}

type PostedEvent struct {
	GroupID       uuid.UUID     `json:"group_id"`
	RestaurantID  uuid.UUID     `json:"restaurant_id"`
	ReferenceType ReferenceType `json:"reference_type"`
	ReferenceID   *uuid.UUID    `json:"reference_id,omitempty"`
	Amount        string        `json:"amount"`
	Entries       int           `json:"entries"`
	ProcessedBy   uuid.UUID     `json:"processed_by"`
}

// Committed records metrics and publishes events for a poster whose unit of work has committed.
func (s *Service) Committed(ctx context.Context, p *Poster) {
	for _, g := range p.groups {
		total := g.Total()

		metrics.PostingsTotal.WithLabelValues(string(g.ReferenceType)).Inc()
		metrics.PostedAmount.WithLabelValues(string(g.ReferenceType)).Add(total.InexactFloat64())

		if s.publisher == nil {
			continue
		}

		err := s.publisher.Publish(ctx, TopicPosted, PostedEvent{
			GroupID:       g.ID,
			RestaurantID:  g.RestaurantID,
			ReferenceType: g.ReferenceType,
			ReferenceID:   g.ReferenceID,
			Amount:        total.StringFixed(2),
			Entries:       len(g.Entries),
			ProcessedBy:   g.ProcessedBy,
		})
		if err != nil {
			slog.Warn("failed to publish posting", "group_id", g.ID, "error", err)
		}
	}
}

// Post validates and writes a caller-built posting group.
func (p *Poster) Post(ctx context.Context, g *PostingGroup) error {
	if err := g.Validate(); err != nil {
		return err
	}

	g.stamp(p.svc.now())

	if err := p.uow.InsertEntries(ctx, g.Entries); err != nil {
		return fmt.Errorf("inserting entries: %w", err)
	}

	p.groups = append(p.groups, g)

	return nil
}

// RecordOrderSale recognises an order's revenue exactly once.
// A missing or zero-total order is not an error; nothing is posted.
func (p *Poster) RecordOrderSale(ctx context.Context, orderID uuid.UUID) (*PostingGroup, error) {
	if err := p.uow.Lock(ctx, "order-sale:"+orderID.String()); err != nil {
		return nil, fmt.Errorf("locking order sale: %w", err)
	}

	o, err := p.svc.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			slog.Info("order not found, nothing to record", "order_id", orderID)
			return nil, nil
		}

		return nil, fmt.Errorf("getting order: %w", err)
	}

	if o.Total.IsNegative() {
		return nil, invalid("total", "order total cannot be negative")
	}

	if o.Total.IsZero() {
		return nil, nil
	}

	existing, err := p.uow.ListEntries(ctx, EntryFilter{
		RestaurantID:  o.RestaurantID,
		Type:          new(Credit),
		ReferenceType: new(RefOrder),
		ReferenceID:   &o.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("checking existing sale: %w", err)
	}

	if len(existing) > 0 {
		metrics.IdempotentSkips.WithLabelValues(string(RefOrder)).Inc()
		return nil, nil
	}

	g := NewPostingGroup(o.RestaurantID, RefOrder, &o.ID, o.LastActionBy, "Order #"+o.OrderNumber).
		Credit(new(RevenueAccount), o.Total).
		Debit(o.RiderID(), o.Total)

	if err := p.Post(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

type SettlementParams struct {
	RestaurantID uuid.UUID
	RiderID      uuid.UUID
	Amount       decimal.Decimal
	OrderIDs     []uuid.UUID
	// SettlementID makes re-delivery of the same settlement a no-op. A new one is generated when empty.
	SettlementID  uuid.UUID
	ReferenceType ReferenceType // Defaults to SETTLEMENT
	ProcessedBy   uuid.UUID
}

// RecordRiderSettlement moves cash handed in by a rider into the drawer and reduces the rider's debt.
func (p *Poster) RecordRiderSettlement(ctx context.Context, params SettlementParams) (*PostingGroup, error) {
	if params.RestaurantID == uuid.Nil {
		return nil, invalid("restaurant_id", "is required")
	}

	if params.RiderID == uuid.Nil {
		return nil, invalid("rider_id", "is required")
	}

	if !params.Amount.IsPositive() {
		return nil, invalid("amount", "settlement amount must be positive")
	}

	if !WholeCents(params.Amount) {
		return nil, invalid("amount", "at most 2 decimal places")
	}

	ref := params.ReferenceType
	if ref == "" {
		ref = RefSettlement
	}

	id := params.SettlementID
	if id == uuid.Nil {
		id = uuid.New()
	} else {
		if err := p.uow.Lock(ctx, "settlement:"+id.String()); err != nil {
			return nil, fmt.Errorf("locking settlement: %w", err)
		}

		existing, err := p.uow.ListEntries(ctx, EntryFilter{
			RestaurantID:  params.RestaurantID,
			AccountID:     &params.RiderID,
			Type:          new(Credit),
			ReferenceType: &ref,
			ReferenceID:   &id,
		})
		if err != nil {
			return nil, fmt.Errorf("checking existing settlement: %w", err)
		}

		if len(existing) > 0 {
			metrics.IdempotentSkips.WithLabelValues(string(ref)).Inc()
			return nil, nil
		}
	}

	desc := "Rider settlement"
	if n := len(params.OrderIDs); n > 0 {
		desc = fmt.Sprintf("Rider settlement for %d orders", n)
	}

	g := NewPostingGroup(params.RestaurantID, ref, &id, params.ProcessedBy, desc).
		Debit(nil, params.Amount).
		Credit(&params.RiderID, params.Amount)

	if err := p.Post(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

type PayoutParams struct {
	RestaurantID uuid.UUID
	Amount       decimal.Decimal
	Category     string
	Notes        string
	ReferenceID  *uuid.UUID
	ProcessedBy  uuid.UUID
}

// RecordPayout takes cash out of the drawer against the expense account.
func (p *Poster) RecordPayout(ctx context.Context, params PayoutParams) (*Payout, error) {
	if params.RestaurantID == uuid.Nil {
		return nil, invalid("restaurant_id", "is required")
	}

	if !params.Amount.IsPositive() {
		return nil, invalid("amount", "payout amount must be positive")
	}

	if !WholeCents(params.Amount) {
		return nil, invalid("amount", "at most 2 decimal places")
	}

	if params.Category == "" {
		return nil, invalid("category", "is required")
	}

	payout := &Payout{
		ID:           uuid.New(),
		RestaurantID: params.RestaurantID,
		Amount:       params.Amount,
		Category:     params.Category,
		Notes:        params.Notes,
		ReferenceID:  params.ReferenceID,
		ProcessedBy:  params.ProcessedBy,
		CreatedAt:    p.svc.now(),
	}

	if err := p.uow.InsertPayout(ctx, payout); err != nil {
		return nil, fmt.Errorf("inserting payout: %w", err)
	}

	g := NewPostingGroup(params.RestaurantID, RefPayout, &payout.ID, params.ProcessedBy, "Payout: "+params.Category).
		Credit(nil, params.Amount).
		Debit(new(ExpenseAccount), params.Amount)

	if err := p.Post(ctx, g); err != nil {
		return nil, err
	}

	return payout, nil
}

type FloatParams struct {
	RestaurantID  uuid.UUID
	RiderID       uuid.UUID
	Amount        decimal.Decimal
	ReferenceID   *uuid.UUID
	ReferenceType ReferenceType // Defaults to SETTLEMENT
	ProcessedBy   uuid.UUID
}

// RecordFloatIssue hands drawer cash to a rider. A zero amount posts nothing.
func (p *Poster) RecordFloatIssue(ctx context.Context, params FloatParams) (*PostingGroup, error) {
	if params.Amount.IsNegative() {
		return nil, invalid("amount", "float amount cannot be negative")
	}

	if !WholeCents(params.Amount) {
		return nil, invalid("amount", "at most 2 decimal places")
	}

	if params.Amount.IsZero() {
		return nil, nil
	}

	if params.RiderID == uuid.Nil {
		return nil, invalid("rider_id", "is required")
	}

	ref := params.ReferenceType
	if ref == "" {
		ref = RefSettlement
	}

	g := NewPostingGroup(params.RestaurantID, ref, params.ReferenceID, params.ProcessedBy, "Float issued to rider").
		Credit(nil, params.Amount).
		Debit(&params.RiderID, params.Amount)

	if err := p.Post(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

// RecordOrderSale is idempotent: repeats, unknown orders and lost races all return (nil, nil).
func (s *Service) RecordOrderSale(ctx context.Context, orderID uuid.UUID) (*PostingGroup, error) {
	var g *PostingGroup

	err := s.Atomic(ctx, func(p *Poster) error {
		var err error
		g, err = p.RecordOrderSale(ctx, orderID)

		return err
	})
	if err != nil {
		if errors.Is(err, ErrDuplicatePosting) {
			metrics.IdempotentSkips.WithLabelValues(string(RefOrder)).Inc()
			return nil, nil
		}

		return nil, err
	}

	return g, nil
}

func (s *Service) RecordRiderSettlement(ctx context.Context, params SettlementParams) (*PostingGroup, error) {
	var g *PostingGroup

	err := s.Atomic(ctx, func(p *Poster) error {
		var err error
		g, err = p.RecordRiderSettlement(ctx, params)

		return err
	})
	if err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) RecordPayout(ctx context.Context, params PayoutParams) (*Payout, error) {
	var payout *Payout

	err := s.Atomic(ctx, func(p *Poster) error {
		var err error
		payout, err = p.RecordPayout(ctx, params)

		return err
	})
	if err != nil {
		return nil, err
	}

	return payout, nil
}

func (s *Service) RecordFloatIssue(ctx context.Context, params FloatParams) (*PostingGroup, error) {
	var g *PostingGroup

	err := s.Atomic(ctx, func(p *Poster) error {
		var err error
		g, err = p.RecordFloatIssue(ctx, params)

		return err
	})
	if err != nil {
		return nil, err
	}

	return g, nil
}

// Post writes a caller-built balanced group, such as an adjustment or stock intake, in its own unit of work.
func (s *Service) Post(ctx context.Context, g *PostingGroup) error {
	return s.Atomic(ctx, func(p *Poster) error {
		return p.Post(ctx, g)
	})
}

func (s *Service) ListEntries(ctx context.Context, filter EntryFilter) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, filter)
}
