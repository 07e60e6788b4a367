package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/tillbook/internal/http/ledger"
	"github.com/MrJamesThe3rd/tillbook/internal/http/report"
	"github.com/MrJamesThe3rd/tillbook/internal/http/session"
	"github.com/MrJamesThe3rd/tillbook/internal/http/shift"
	"github.com/MrJamesThe3rd/tillbook/internal/metrics"
)

func New(
	timeout time.Duration,
	ledgerV1 *ledger.Handler,
	sessionsV1 *session.Handler,
	shiftsV1 *shift.Handler,
	reportsV1 *report.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if timeout > 0 {
			r.Use(middleware.Timeout(timeout))
		}

		r.Route("/ledger", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			ledgerV1.Routes(r)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			sessionsV1.Routes(r)
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			shiftsV1.Routes(r)
		})

		r.Route("/reports", reportsV1.Routes)
	})

	return router
}
