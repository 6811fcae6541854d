package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "salescope_build_info",
			Help: "Build information of salescope",
		},
		[]string{"version", "commit", "date"},
	)

	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salescope_llm_requests_total",
			Help: "LLM completion requests by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salescope_llm_request_duration_seconds",
			Help:    "LLM completion request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	SQLQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salescope_sql_queries_total",
			Help: "SQL executions against the in-memory engine by outcome",
		},
		[]string{"outcome"},
	)
)
