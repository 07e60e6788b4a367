package shift

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillbook/internal/http/render"
	"github.com/MrJamesThe3rd/tillbook/internal/ridershift"
)

type Handler struct {
	mgr *ridershift.Manager
}

func NewHandler(mgr *ridershift.Manager) *Handler {
	return &Handler{mgr: mgr}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.open)
	r.Get("/active", h.active)
	r.Get("/{id}", h.get)
	r.Get("/{id}/metrics", h.metrics)
	r.Post("/{id}/close", h.close)
}

type openRequest struct {
	RestaurantID uuid.UUID       `json:"restaurant_id" validate:"required"`
	RiderID      uuid.UUID       `json:"rider_id" validate:"required"`
	StaffID      uuid.UUID       `json:"staff_id" validate:"required"`
	OpeningFloat decimal.Decimal `json:"opening_float"`
	Notes        string          `json:"notes" validate:"max=500"`
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if !render.Decode(w, r, &req) {
		return
	}

	s, err := h.mgr.Open(r.Context(), ridershift.OpenParams{
		RestaurantID: req.RestaurantID,
		RiderID:      req.RiderID,
		StaffID:      req.StaffID,
		OpeningFloat: req.OpeningFloat,
		Notes:        req.Notes,
	})
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(s))
}

// active returns the rider's open shift when rider_id is given, otherwise every open shift.
func (h *Handler) active(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := render.UUIDQuery(w, r, "restaurant_id")
	if !ok {
		return
	}

	if r.URL.Query().Get("rider_id") == "" {
		shifts, err := h.mgr.ListActiveShifts(r.Context(), restaurantID)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, http.StatusOK, toResponseList(shifts))

		return
	}

	riderID, ok := render.UUIDQuery(w, r, "rider_id")
	if !ok {
		return
	}

	s, err := h.mgr.GetActiveShift(r.Context(), restaurantID, riderID)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(s))
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

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	id, ok := render.UUIDParam(w, r, "id")
	if !ok {
		return
	}

	m, err := h.mgr.GetShiftMetrics(r.Context(), id)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toMetricsResponse(m))
}

type closeRequest struct {
	StaffID     uuid.UUID       `json:"staff_id" validate:"required"`
	ClosingCash decimal.Decimal `json:"closing_cash"`
	Notes       string          `json:"notes" validate:"max=500"`
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

	s, err := h.mgr.Close(r.Context(), ridershift.CloseParams{
		ShiftID:     id,
		StaffID:     req.StaffID,
		ClosingCash: req.ClosingCash,
		Notes:       req.Notes,
	})
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(s))
}
