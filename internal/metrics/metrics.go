// Package metrics mirrors scheduler-service/internal/metrics/metrics.go:
// a struct of prometheus collectors built once at startup via promauto.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SessionAssemblyDuration prometheus.Histogram
	SessionsStarted         prometheus.Counter
	SessionsCompleted       prometheus.Counter
	SessionsExpired         prometheus.Counter

	BoxTransitions   *prometheus.CounterVec
	TagMasteryRecomputes prometheus.Counter
	TierAdvancements prometheus.Counter

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	DBQueries  *prometheus.CounterVec
	DBDuration *prometheus.HistogramVec

	StoreErrors *prometheus.CounterVec
	RetryAttempts *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		SessionAssemblyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "engine_session_assembly_duration_seconds",
			Help:    "Duration of session assembly pipeline runs",
			Buckets: prometheus.DefBuckets,
		}),
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "engine_sessions_started_total",
			Help: "Total number of sessions started",
		}),
		SessionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "engine_sessions_completed_total",
			Help: "Total number of sessions completed",
		}),
		SessionsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "engine_sessions_expired_total",
			Help: "Total number of sessions expired by the staleness classifier",
		}),
		BoxTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_box_transitions_total",
			Help: "Leitner box transitions by direction",
		}, []string{"direction"}),
		TagMasteryRecomputes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "engine_tag_mastery_recomputes_total",
			Help: "Total number of tag mastery recompute passes",
		}),
		TierAdvancements: promauto.NewCounter(prometheus.CounterOpts{
			Name: "engine_tier_advancements_total",
			Help: "Total number of tier advancements",
		}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_cache_hits_total",
			Help: "Cache hits by cache name",
		}, []string{"cache"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_cache_misses_total",
			Help: "Cache misses by cache name",
		}, []string{"cache"}),
		DBQueries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_db_queries_total",
			Help: "Database operations by name and status",
		}, []string{"operation", "status"}),
		DBDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "engine_db_duration_seconds",
			Help:    "Database operation duration by name",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_store_errors_total",
			Help: "Store errors by port and kind",
		}, []string{"port", "kind"}),
		RetryAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_retry_attempts_total",
			Help: "Retry attempts by priority bucket",
		}, []string{"priority"}),
	}
}

// RecordCacheHit records a cache hit for the named cache.
func (m *Metrics) RecordCacheHit(cacheType string) {
	m.CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss for the named cache.
func (m *Metrics) RecordCacheMiss(cacheType string) {
	m.CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordDBOperation records a database operation's outcome; its duration is
// recorded separately through ObserveDuration.
func (m *Metrics) RecordDBOperation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.DBQueries.WithLabelValues(operation, status).Inc()
}

// RecordStoreError records a store-layer error by port and kind.
func (m *Metrics) RecordStoreError(port, kind string) {
	m.StoreErrors.WithLabelValues(port, kind).Inc()
}

// RecordRetryAttempt records a retry attempt by priority bucket.
func (m *Metrics) RecordRetryAttempt(priority string) {
	m.RetryAttempts.WithLabelValues(priority).Inc()
}

// Timer measures elapsed duration, mirroring metrics.NewTimer() in the
// teacher's scheduler-service server layer.
type Timer struct {
	start time.Time
}

func NewTimer() Timer { return Timer{start: time.Now()} }

func (t Timer) Duration() time.Duration { return time.Since(t.start) }

// ObserveDuration records t's elapsed time under operation's histogram.
func (m *Metrics) ObserveDuration(operation string, t Timer) {
	m.DBDuration.WithLabelValues(operation).Observe(t.Duration().Seconds())
}
