// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lender_match_requests_total",
			Help: "Total number of lender match computations",
		},
		[]string{"loan_type"},
	)

	MatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "lender_match_duration_seconds",
			Help: "Duration of lender match computations in seconds",
		},
		[]string{"loan_type"},
	)

	MatchCatalogSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lender_match_catalog_rows",
			Help:    "Number of catalog rows evaluated per match request",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250},
		},
		[]string{"loan_type"},
	)

	CatalogCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lender_catalog_cache_hits_total",
			Help: "Catalog snapshot cache hits and misses",
		},
		[]string{"result"},
	)

	AIRankingCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_ranking_calls_total",
			Help: "LLM ranking calls by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"route", "method"},
	)
)
