// Package metrics exposes Prometheus collectors for the classification service.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionsTotal     *prometheus.CounterVec
	cacheLookupsTotal    *prometheus.CounterVec
	fetchDurationSeconds *prometheus.HistogramVec
	batchItemsTotal      prometheus.Counter
	retrainsTotal        *prometheus.CounterVec
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec

	once sync.Once
)

// Init registers the Prometheus collectors. It is safe to call multiple
// times; recording functions are no-ops until it has been called.
func Init() {
	once.Do(func() {
		predictionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topic_predictions_total",
				Help: "Total predictions served, labeled by source (cache, model, fetch) and status.",
			},
			[]string{"source", "status"},
		)

		cacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topic_cache_lookups_total",
				Help: "Cache lookups, labeled by outcome (hit or miss).",
			},
			[]string{"outcome"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "topic_fetch_duration_seconds",
				Help:    "Content fetch latency, labeled by status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		)

		batchItemsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "topic_batch_items_total",
				Help: "Total URLs processed by batch prediction calls.",
			},
		)

		retrainsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topic_retrains_total",
				Help: "Retraining attempts, labeled by outcome (ok, error, no_data).",
			},
			[]string{"outcome"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)
	})
}

// RecordPrediction increments the prediction counter.
func RecordPrediction(source, status string) {
	if predictionsTotal == nil {
		return
	}
	predictionsTotal.WithLabelValues(source, status).Inc()
}

// RecordCacheLookup increments the cache lookup counter.
func RecordCacheLookup(hit bool) {
	if cacheLookupsTotal == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	cacheLookupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch records a content fetch attempt and its latency.
func ObserveFetch(d time.Duration, ok bool) {
	if fetchDurationSeconds == nil {
		return
	}
	status := "error"
	if ok {
		status = "ok"
	}
	fetchDurationSeconds.WithLabelValues(status).Observe(d.Seconds())
}

// RecordBatch adds the number of items processed by one batch call.
func RecordBatch(n int) {
	if batchItemsTotal == nil {
		return
	}
	batchItemsTotal.Add(float64(n))
}

// RecordRetrain increments the retrain counter.
func RecordRetrain(outcome string) {
	if retrainsTotal == nil {
		return
	}
	retrainsTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest records one completed HTTP request.
func ObserveHTTPRequest(method, route, code string, d time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, code).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
