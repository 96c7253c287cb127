// Package metrics holds the Prometheus collectors of parlay-engine-service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parlay_engine"

var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	SimulationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulations_total",
		Help:      "Total number of simulation runs by result",
	}, []string{"result"})
	TruncatedRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "truncated_runs_total",
		Help:      "Total number of runs that hit the combination ceiling",
	})
	ReconciliationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconciliations_total",
		Help:      "Total number of run reconciliations by result",
	}, []string{"result"})
	CardsUpsertedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cards_upserted_total",
		Help:      "Total number of fight cards stored by source",
	}, []string{"source"})
	FeedFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_fetches_total",
		Help:      "Total number of odds API fetches by result",
	}, []string{"result"})
	CacheErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_errors_total",
		Help:      "Total number of tolerated cache write failures by operation",
	}, []string{"op"})
)

// Histogram metrics
var (
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "simulation_duration_seconds",
		Help:      "Duration of simulation runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	CombinationsPerRun = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "combinations_per_run",
		Help:      "Number of combinations enumerated per run",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})
)

// InitRegistry initializes the service registry
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			SimulationsTotal,
			TruncatedRunsTotal,
			ReconciliationsTotal,
			CardsUpsertedTotal,
			FeedFetchesTotal,
			CacheErrorsTotal,
			SimulationDuration,
			CombinationsPerRun,
		)
	})
	return registry
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.HandlerFor(InitRegistry(), promhttp.HandlerOpts{})
}

// RecordSimulation records a finished run
func RecordSimulation(result string, durationSeconds float64, combinations int, truncated bool) {
	SimulationsTotal.WithLabelValues(result).Inc()
	SimulationDuration.Observe(durationSeconds)
	if result != "ok" {
		return
	}
	CombinationsPerRun.Observe(float64(combinations))
	if truncated {
		TruncatedRunsTotal.Inc()
	}
}

// RecordReconciliation records a settlement attempt
func RecordReconciliation(result string) {
	ReconciliationsTotal.WithLabelValues(result).Inc()
}

// RecordCardUpsert records a stored fight card
func RecordCardUpsert(source string) {
	if source == "" {
		source = "unknown"
	}
	CardsUpsertedTotal.WithLabelValues(source).Inc()
}

// RecordFeedFetch records an odds API fetch
func RecordFeedFetch(result string) {
	FeedFetchesTotal.WithLabelValues(result).Inc()
}

// RecordCacheError records a cache failure the caller chose to tolerate
func RecordCacheError(op string) {
	CacheErrorsTotal.WithLabelValues(op).Inc()
}
