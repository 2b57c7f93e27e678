// Package metrics provides Prometheus instrumentation for the matching
// service: decision throughput, match formation, rate limiting, side-effect
// failures and RPC latency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DecisionsTotal counts committed decisions, labeled by action: "LIKE" or "PASS".
	DecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_decisions_total",
		Help: "Total number of committed decisions",
	}, []string{"action"})

	// MatchesTotal counts newly formed mutual matches.
	MatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matching_matches_total",
		Help: "Total number of newly formed mutual matches",
	})

	// RateLimitedTotal counts decisions rejected by the rate limiter.
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matching_rate_limited_total",
		Help: "Total number of decisions rejected by the rate limiter",
	})

	// RateLimitFailOpenTotal counts limiter checks let through because the
	// backend errored.
	RateLimitFailOpenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matching_rate_limit_fail_open_total",
		Help: "Rate limiter checks allowed because the backend was unavailable",
	})

	// SideEffectsTotal counts dispatched side effects, labeled by kind
	// ("notify_like", "notify_match", "auto_message", ...) and result ("ok", "error").
	SideEffectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_side_effects_total",
		Help: "Dispatched side effects by kind and result",
	}, []string{"kind", "result"})

	// SuggestLatency records end-to-end suggestion latency in seconds.
	SuggestLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "matching_suggest_latency_seconds",
		Help:    "Suggestion latency in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	// RPCDuration records unary RPC latency by method and status code.
	RPCDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matching_rpc_duration_seconds",
		Help:    "Unary RPC latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "code"})
)

func init() {
	prometheus.MustRegister(
		DecisionsTotal,
		MatchesTotal,
		RateLimitedTotal,
		RateLimitFailOpenTotal,
		SideEffectsTotal,
		SuggestLatency,
		RPCDuration,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
