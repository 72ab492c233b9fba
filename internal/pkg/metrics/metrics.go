package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portfolio_reporter"

var (
	// UpstreamAttempts counts outbound HTTP attempts by host and outcome ("success", "error", "status").
	UpstreamAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_attempts_total",
		Help:      "Outbound HTTP attempts made by the retry client.",
	}, []string{"host", "outcome"})

	// UpstreamFailures counts requests that failed after exhausting every retry.
	UpstreamFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_failures_total",
		Help:      "Outbound requests that failed after all retry attempts.",
	}, []string{"host"})

	// CacheLookups counts cache lookups by result ("hit", "miss").
	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "TTL cache lookups.",
	}, []string{"result"})

	// ReportDuration observes how long building a report takes, by outcome.
	ReportDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_duration_seconds",
		Help:      "Time spent producing a formatted wallet report.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})

	// PriceResolution counts reference price lookups by asset and result ("resolved", "missing").
	PriceResolution = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_resolution_total",
		Help:      "Reference asset price lookups.",
	}, []string{"asset", "result"})

	registerOnce sync.Once
)

// MustRegisterMetrics registers all collectors with the default prometheus registry.
// It is safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			UpstreamAttempts,
			UpstreamFailures,
			CacheLookups,
			ReportDuration,
			PriceResolution,
		)
	})
}
