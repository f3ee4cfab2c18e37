// Package metrics exposes Prometheus collectors for scrape runs and the daily cache.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "campus_events"

// Run outcomes.
const (
	OutcomeScraped  = "scraped"
	OutcomeFallback = "fallback"
)

var (
	pipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Scrape pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	pipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of scrape pipeline runs including the page fetch",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	fetchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Page fetches that failed or landed on the wrong host",
		},
	)

	strategyCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_candidates_total",
			Help:      "Candidates produced per extraction strategy",
		},
		[]string{"strategy"},
	)

	strategyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_failures_total",
			Help:      "Strategy runs that reported item errors",
		},
		[]string{"strategy"},
	)

	rejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_rejections_total",
			Help:      "Candidates dropped by the title validator",
		},
		[]string{"reason"},
	)

	cacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Event requests by cache state at arrival",
		},
		[]string{"state"},
	)

	persistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_persist_failures_total",
			Help:      "Failed writes of the daily cache",
		},
	)

	cachedEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cached_events",
			Help:      "Number of events currently cached",
		},
	)
)

// ObserveRun records a finished pipeline run.
func ObserveRun(outcome string, took time.Duration) {
	pipelineRuns.WithLabelValues(outcome).Inc()
	pipelineDuration.Observe(took.Seconds())
}

// FetchFailed counts a failed page fetch.
func FetchFailed() {
	fetchFailures.Inc()
}

// ObserveStrategy records the candidates a strategy produced and whether it reported errors.
func ObserveStrategy(strategy string, candidates int, failed bool) {
	strategyCandidates.WithLabelValues(strategy).Add(float64(candidates))
	if failed {
		strategyFailures.WithLabelValues(strategy).Inc()
	}
}

// Rejected counts validator rejections for reason.
func Rejected(reason string, n int) {
	rejections.WithLabelValues(reason).Add(float64(n))
}

// CacheRequest counts an events request observed in state.
func CacheRequest(state string) {
	cacheRequests.WithLabelValues(state).Inc()
}

// PersistFailed counts a failed cache write.
func PersistFailed() {
	persistFailures.Inc()
}

// SetCachedEvents sets the cached event gauge.
func SetCachedEvents(n int) {
	cachedEvents.Set(float64(n))
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
