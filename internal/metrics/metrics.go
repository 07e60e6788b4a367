package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tillbook_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tillbook_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	PostingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tillbook_ledger_postings_total",
		Help: "Committed posting groups by reference type.",
	}, []string{"reference_type"})

	PostedAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tillbook_ledger_posted_amount_total",
		Help: "Sum of committed posting group totals by reference type.",
	}, []string{"reference_type"})

	IdempotentSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tillbook_ledger_idempotent_skips_total",
		Help: "Postings skipped because the event was already recorded.",
	}, []string{"reference_type"})

	CashVariance = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tillbook_cash_variance",
		Help:    "Counted minus expected cash at close.",
		Buckets: []float64{-1000, -100, -10, -1, 0, 1, 10, 100, 1000},
	}, []string{"kind"})
)
