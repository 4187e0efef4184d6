// Package metrics exposes prometheus instrumentation for the document store
// and the HTTP shell.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	storeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_store_operations_total",
			Help: "Total number of document store operations",
		},
		[]string{"operation", "collection", "result"},
	)

	storeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_store_operation_duration_seconds",
			Help:    "Document store operation latency",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation", "collection"},
	)

	storeUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_store_up",
			Help: "1 if the last health probe reached the backing medium, 0 otherwise",
		},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveStoreOp records one document store call. result is a short error
// kind such as "ok" or "not_found".
func ObserveStoreOp(operation, collection, result string, started time.Time) {
	storeOperations.WithLabelValues(operation, collection, result).Inc()
	storeDuration.WithLabelValues(operation, collection).Observe(time.Since(started).Seconds())
}

// SetStoreUp records the outcome of the latest health probe.
func SetStoreUp(up bool) {
	if up {
		storeUp.Set(1)
		return
	}
	storeUp.Set(0)
}

// ObserveHTTPRequest records one served request. route should be the matched
// route pattern, not the raw path, to keep label cardinality bounded.
func ObserveHTTPRequest(method, route string, status int, started time.Time) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(time.Since(started).Seconds())
}

// Handler returns the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
