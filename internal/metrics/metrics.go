// Package metrics exposes Prometheus collectors for the aggregation
// service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	jobsStartedTotal     prometheus.Counter
	jobsCompletedTotal   *prometheus.CounterVec
	fetchesTotal         *prometheus.CounterVec
	fetchDurationSeconds *prometheus.HistogramVec
	cacheOpsTotal        *prometheus.CounterVec
	artifactsTotal       prometheus.Counter
	activeJobs           prometheus.Gauge

	once sync.Once
)

// Init registers the collectors with the default registry. Safe to call
// more than once.
func Init() {
	once.Do(func() {
		jobsStartedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "aggregator_jobs_started_total",
				Help: "Total number of scrape jobs submitted.",
			},
		)

		jobsCompletedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aggregator_jobs_completed_total",
				Help: "Total number of finished jobs, labeled by result.",
			},
			[]string{"result"},
		)

		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aggregator_fetches_total",
				Help: "Total number of source fetches, labeled by source and result.",
			},
			[]string{"source", "result"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aggregator_fetch_duration_seconds",
				Help:    "Histogram of source fetch latencies, labeled by source.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"source"},
		)

		cacheOpsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aggregator_cache_ops_total",
				Help: "Total cache lookups, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		artifactsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "aggregator_artifacts_total",
				Help: "Total number of topic artifacts written.",
			},
		)

		activeJobs = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "aggregator_active_jobs",
				Help: "Number of jobs currently running.",
			},
		)
	})
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveJobStarted counts a submitted job.
func ObserveJobStarted() {
	Init()
	jobsStartedTotal.Inc()
	activeJobs.Inc()
}

// ObserveJobFinished counts a terminal job by result (complete or error).
func ObserveJobFinished(result string) {
	Init()
	jobsCompletedTotal.WithLabelValues(result).Inc()
	activeJobs.Dec()
}

// ObserveFetch counts one adapter fetch attempt and its latency.
func ObserveFetch(source, result string, duration time.Duration) {
	Init()
	fetchesTotal.WithLabelValues(source, result).Inc()
	fetchDurationSeconds.WithLabelValues(source).Observe(duration.Seconds())
}

// ObserveCacheOp counts a cache lookup outcome (hit or miss).
func ObserveCacheOp(outcome string) {
	Init()
	cacheOpsTotal.WithLabelValues(outcome).Inc()
}

// ObserveArtifact counts a written topic artifact.
func ObserveArtifact() {
	Init()
	artifactsTotal.Inc()
}
