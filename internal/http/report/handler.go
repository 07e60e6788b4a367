package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tillbook/internal/http/render"
	"github.com/MrJamesThe3rd/tillbook/internal/report"
)

type Handler struct {
	gen      *report.Generator
	archiver *report.Archiver
	format   *report.Formatter
}

func NewHandler(gen *report.Generator, archiver *report.Archiver, f *report.Formatter) *Handler {
	return &Handler{gen: gen, archiver: archiver, format: f}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/z/{sessionID}", h.zReport)
	r.Get("/z/{sessionID}/pdf", h.zReportPDF)
	r.Post("/z/{sessionID}/archive", h.archive)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*report.ZReport, bool) {
	sessionID, ok := render.UUIDParam(w, r, "sessionID")
	if !ok {
		return nil, false
	}

	z, err := h.gen.GetZReport(r.Context(), sessionID)
	if err != nil {
		render.Error(w, err)
		return nil, false
	}

	return z, true
}

func (h *Handler) zReport(w http.ResponseWriter, r *http.Request) {
	z, ok := h.load(w, r)
	if !ok {
		return
	}

	render.JSON(w, http.StatusOK, z)
}

func (h *Handler) zReportPDF(w http.ResponseWriter, r *http.Request) {
	z, ok := h.load(w, r)
	if !ok {
		return
	}

	// Headers are only written once the whole document rendered.
	var buf bytes.Buffer
	if err := report.RenderPDF(&buf, z, h.format); err != nil {
		render.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=z-report_%s_%s.pdf", z.From.Format("20060102"), z.SessionID))

	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write pdf", "error", err)
	}
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		render.Fail(w, http.StatusServiceUnavailable, "report archive is not configured", nil)
		return
	}

	z, ok := h.load(w, r)
	if !ok {
		return
	}

	out, err := h.archiver.Archive(r.Context(), z)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, out)
}
