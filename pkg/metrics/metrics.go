package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all engine metrics
type Metrics struct {
	// AI orchestration metrics
	AIRequests  *prometheus.CounterVec
	AIFallbacks prometheus.Counter
	AILatency   prometheus.Histogram
	ParseTier   *prometheus.CounterVec

	// Assessment metrics
	RiskLevels      *prometheus.CounterVec
	Classifications prometheus.Counter
	Escalations     prometheus.Counter

	// Patient data metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// NewMetrics creates and registers all engine metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		AIRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ai_requests_total",
			Help:      "Total AI service attempts by outcome (success, error, rate_limited)",
		}, []string{"outcome"}),
		AIFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ai_fallbacks_total",
			Help:      "Total turns answered by the local rule engine instead of the AI service",
		}),
		AILatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ai_request_duration_seconds",
			Help:      "Latency of individual AI service attempts",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		ParseTier: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "parse_tier_total",
			Help:      "Which parse tier produced the structured answer (direct, embedded, heuristic)",
		}, []string{"tier"}),
		RiskLevels: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "risk_levels_total",
			Help:      "Distribution of surfaced risk levels",
		}, []string{"level"}),
		Classifications: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "classifications_total",
			Help:      "Total risk classifications performed",
		}),
		Escalations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "escalations_total",
			Help:      "Total emergency escalations triggered",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "patient_cache_hits_total",
			Help:      "Patient context cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "patient_cache_misses_total",
			Help:      "Patient context cache misses",
		}),
	}
}
