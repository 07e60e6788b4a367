// Package render holds the request decoding and response helpers shared by the HTTP handlers.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
)

var validate = validator.New()

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Fail(w http.ResponseWriter, status int, message string, details map[string]string) {
	JSON(w, status, ErrorResponse{Error: message, Details: details})
}

// Decode reads a JSON body into dst and runs its validate tags. On failure the 400 has
// already been written and false is returned.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		Fail(w, http.StatusBadRequest, "invalid request body", nil)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			Fail(w, http.StatusBadRequest, err.Error(), nil)
			return false
		}

		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fmt.Sprintf("failed on '%s'", fe.Tag())
		}

		Fail(w, http.StatusBadRequest, "validation failed", details)

		return false
	}

	return true
}

// UUIDParam parses a chi URL parameter. On failure the 400 has already been written.
func UUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		Fail(w, http.StatusBadRequest, "invalid "+name, nil)
		return uuid.Nil, false
	}

	return id, true
}

// UUIDQuery parses a required query parameter. On failure the 400 has already been written.
func UUIDQuery(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.URL.Query().Get(name))
	if err != nil {
		Fail(w, http.StatusBadRequest, "invalid or missing "+name, nil)
		return uuid.Nil, false
	}

	return id, true
}

// Error maps domain errors onto status codes. Anything unrecognized is logged and hidden.
func Error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		Fail(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ledger.ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ledger.ErrConflict):
		Fail(w, http.StatusConflict, err.Error(), nil)
	default:
		slog.Error("request failed", "error", err)
		Fail(w, http.StatusInternalServerError, "internal error", nil)
	}
}
