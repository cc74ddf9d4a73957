package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TriageOutcomes counts pipeline runs by terminal state: cached, blocked, analyzed, superseded
	TriageOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inboxpilot_triage_outcomes_total",
			Help: "Triage pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	// LLMCallDuration observes model calls per operation and status
	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inboxpilot_llm_call_duration_seconds",
			Help:    "Language model call latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"operation", "status"},
	)

	// AIFallbacks counts results replaced by a safe default
	AIFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inboxpilot_ai_fallbacks_total",
			Help: "AI results replaced by a safe default",
		},
		[]string{"operation", "reason"},
	)

	// StoreErrors counts failed reads or writes against the record store
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inboxpilot_store_errors_total",
			Help: "Record store failures",
		},
		[]string{"op"},
	)

	// HTTPRequestDuration observes dashboard API latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inboxpilot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
		[]string{"method", "path", "status"},
	)
)

// IncrementTriageOutcome records a finished pipeline run
func IncrementTriageOutcome(outcome string) {
	TriageOutcomes.WithLabelValues(outcome).Inc()
}

// RecordLLMCall records one model call
func RecordLLMCall(operation, status string, duration time.Duration) {
	LLMCallDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// IncrementAIFallback records a safe-default substitution
func IncrementAIFallback(operation, reason string) {
	AIFallbacks.WithLabelValues(operation, reason).Inc()
}

// IncrementStoreError records a store failure
func IncrementStoreError(op string) {
	StoreErrors.WithLabelValues(op).Inc()
}

// RecordHTTPRequestDuration records one API request
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
