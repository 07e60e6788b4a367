package ledger

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillbook/internal/http/render"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/orders/{orderID}/sale", h.recordSale)
	r.Post("/settlements", h.recordSettlement)
	r.Post("/payouts", h.recordPayout)
	r.Post("/floats", h.recordFloat)
	r.Post("/adjustments", h.recordAdjustment)
	r.Get("/entries", h.listEntries)
	r.Get("/balance", h.balance)
}

func (h *Handler) recordSale(w http.ResponseWriter, r *http.Request) {
	orderID, ok := render.UUIDParam(w, r, "orderID")
	if !ok {
		return
	}

	g, err := h.svc.RecordOrderSale(r.Context(), orderID)
	if err != nil {
		render.Error(w, err)
		return
	}

	writePosted(w, g)
}

type settlementRequest struct {
	RestaurantID uuid.UUID       `json:"restaurant_id" validate:"required"`
	RiderID      uuid.UUID       `json:"rider_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	OrderIDs     []uuid.UUID     `json:"order_ids"`
	SettlementID uuid.UUID       `json:"settlement_id"`
	ProcessedBy  uuid.UUID       `json:"processed_by" validate:"required"`
}

func (h *Handler) recordSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if !render.Decode(w, r, &req) {
		return
	}

	g, err := h.svc.RecordRiderSettlement(r.Context(), ledger.SettlementParams{
		RestaurantID: req.RestaurantID,
		RiderID:      req.RiderID,
		Amount:       req.Amount,
		OrderIDs:     req.OrderIDs,
		SettlementID: req.SettlementID,
		ProcessedBy:  req.ProcessedBy,
	})
	if err != nil {
		render.Error(w, err)
		return
	}

	writePosted(w, g)
}

type payoutRequest struct {
	RestaurantID uuid.UUID       `json:"restaurant_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category" validate:"required,max=64"`
	Notes        string          `json:"notes" validate:"max=500"`
	ReferenceID  *uuid.UUID      `json:"reference_id"`
	ProcessedBy  uuid.UUID       `json:"processed_by" validate:"required"`
}

func (h *Handler) recordPayout(w http.ResponseWriter, r *http.Request) {
	var req payoutRequest
	if !render.Decode(w, r, &req) {
		return
	}

	p, err := h.svc.RecordPayout(r.Context(), ledger.PayoutParams{
		RestaurantID: req.RestaurantID,
		Amount:       req.Amount,
		Category:     req.Category,
		Notes:        req.Notes,
		ReferenceID:  req.ReferenceID,
		ProcessedBy:  req.ProcessedBy,
	})
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, toPayoutResponse(p))
}

type floatRequest struct {
	RestaurantID uuid.UUID       `json:"restaurant_id" validate:"required"`
	RiderID      uuid.UUID       `json:"rider_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	ReferenceID  *uuid.UUID      `json:"reference_id"`
	ProcessedBy  uuid.UUID       `json:"processed_by" validate:"required"`
}

func (h *Handler) recordFloat(w http.ResponseWriter, r *http.Request) {
	var req floatRequest
	if !render.Decode(w, r, &req) {
		return
	}

	g, err := h.svc.RecordFloatIssue(r.Context(), ledger.FloatParams{
		RestaurantID: req.RestaurantID,
		RiderID:      req.RiderID,
		Amount:       req.Amount,
		ReferenceID:  req.ReferenceID,
		ProcessedBy:  req.ProcessedBy,
	})
	if err != nil {
		render.Error(w, err)
		return
	}

	writePosted(w, g)
}

// adjustmentRequest moves cash between the drawer and the safe. A positive amount adds to the drawer.
type adjustmentRequest struct {
	RestaurantID uuid.UUID       `json:"restaurant_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description" validate:"required,max=500"`
	ProcessedBy  uuid.UUID       `json:"processed_by" validate:"required"`
}

func (h *Handler) recordAdjustment(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if !render.Decode(w, r, &req) {
		return
	}

	if req.Amount.IsZero() {
		render.Fail(w, http.StatusBadRequest, "amount must not be zero", nil)
		return
	}

	g := ledger.NewPostingGroup(req.RestaurantID, ledger.RefAdjustment, nil, req.ProcessedBy, req.Description)
	amount := req.Amount.Abs()

	if req.Amount.IsPositive() {
		g.Debit(nil, amount).Credit(&ledger.SafeAccount, amount)
	} else {
		g.Credit(nil, amount).Debit(&ledger.SafeAccount, amount)
	}

	if err := h.svc.Post(r.Context(), g); err != nil {
		render.Error(w, err)
		return
	}

	writePosted(w, g)
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := render.UUIDQuery(w, r, "restaurant_id")
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := ledger.EntryFilter{RestaurantID: restaurantID}

	switch s := q.Get("account_id"); s {
	case "":
	case "house":
		filter.HouseCash = true
	default:
		id, err := uuid.Parse(s)
		if err != nil {
			render.Fail(w, http.StatusBadRequest, "invalid account_id", nil)
			return
		}

		filter.AccountID = &id
	}

	if s := q.Get("reference_type"); s != "" {
		ref := ledger.ReferenceType(s)
		if !ref.Valid() {
			render.Fail(w, http.StatusBadRequest, "invalid reference_type", nil)
			return
		}

		filter.ReferenceType = &ref
	}

	if s := q.Get("since"); s != "" {
		t, _, err := parseTime(s)
		if err != nil {
			render.Fail(w, http.StatusBadRequest, "invalid since", nil)
			return
		}

		filter.Since = &t
	}

	if s := q.Get("until"); s != "" {
		t, dateOnly, err := parseTime(s)
		if err != nil {
			render.Fail(w, http.StatusBadRequest, "invalid until", nil)
			return
		}

		// A bare date covers the whole day.
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}

		filter.Until = &t
	}

	entries, err := h.svc.ListEntries(r.Context(), filter)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toEntryResponseList(entries))
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := render.UUIDQuery(w, r, "restaurant_id")
	if !ok {
		return
	}

	var account *uuid.UUID

	if s := r.URL.Query().Get("account_id"); s != "" && s != "house" {
		id, err := uuid.Parse(s)
		if err != nil {
			render.Fail(w, http.StatusBadRequest, "invalid account_id", nil)
			return
		}

		account = &id
	}

	balance, err := h.svc.GetBalance(r.Context(), restaurantID, account)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, balanceResponse{
		RestaurantID: restaurantID,
		AccountID:    account,
		Balance:      balance,
	})
}

func writePosted(w http.ResponseWriter, g *ledger.PostingGroup) {
	status := http.StatusCreated
	if g == nil {
		status = http.StatusOK
	}

	render.JSON(w, status, toPostResponse(g))
}

// parseTime accepts RFC 3339 timestamps or plain dates and reports which one it got.
func parseTime(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}

	t, err := time.Parse(time.DateOnly, s)

	return t, true, err
}
