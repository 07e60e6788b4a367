package session

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	"github.com/MrJamesThe3rd/tillbook/internal/http/render"
)

type Handler struct {
	mgr *cashsession.Manager
}

func NewHandler(mgr *cashsession.Manager) *Handler {
	return &Handler{mgr: mgr}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.open)
	r.Get("/", h.list)
	r.Get("/active", h.active)
	r.Get("/active/metrics", h.metrics)
	r.Get("/{id}", h.get)
	r.Post("/{id}/close", h.close)
}

type openRequest struct {
	RestaurantID   uuid.UUID       `json:"restaurant_id" validate:"required"`
	StaffID        uuid.UUID       `json:"staff_id" validate:"required"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Notes          string          `json:"notes" validate:"max=500"`
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if !render.Decode(w, r, &req) {
		return
	}

	s, err := h.mgr.Open(r.Context(), cashsession.OpenParams{
		RestaurantID:   req.RestaurantID,
		StaffID:        req.StaffID,
		OpeningBalance: req.OpeningBalance,
		Notes:          req.Notes,
	})
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(s))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := render.UUIDQuery(w, r, "restaurant_id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sessions, err := h.mgr.List(r.Context(), restaurantID, limit)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponseList(sessions))
}

func (h *Handler) active(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := render.UUIDQuery(w, r, "restaurant_id")
	if !ok {
		return
	}

	s, err := h.mgr.GetActiveSession(r.Context(), restaurantID)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(s))
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := render.UUIDQuery(w, r, "restaurant_id")
	if !ok {
		return
	}

	m, err := h.mgr.GetSessionMetrics(r.Context(), restaurantID)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toMetricsResponse(m))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := render.UUIDParam(w, r, "id")
	if !ok {
		return
	}

	s, err := h.mgr.Get(r.Context(), id)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(s))
}

type closeRequest struct {
	StaffID       uuid.UUID       `json:"staff_id" validate:"required"`
	ActualBalance decimal.Decimal `json:"actual_balance"`
	Notes         string          `json:"notes" validate:"max=500"`
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	id, ok := render.UUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req closeRequest
	if !render.Decode(w, r, &req) {
		return
	}

	s, err := h.mgr.Close(r.Context(), cashsession.CloseParams{
		SessionID:     id,
		StaffID:       req.StaffID,
		ActualBalance: req.ActualBalance,
		Notes:         req.Notes,
	})
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(s))
}
