// Package metrics provides Prometheus instrumentation for snowdash.
package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snowdash",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "snowdash",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// CacheRequestsTotal counts query cache lookups by operation and result.
	CacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snowdash",
			Name:      "cache_requests_total",
			Help:      "Total query cache lookups by operation and result (hit or miss).",
		},
		[]string{"operation", "result"},
	)

	// WarehouseQueryDuration observes warehouse query latency by operation.
	WarehouseQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "snowdash",
			Name:      "warehouse_query_duration_seconds",
			Help:      "Warehouse query duration in seconds, row validation included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	// WarehouseQueryErrorsTotal counts failed warehouse queries by operation.
	WarehouseQueryErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snowdash",
			Name:      "warehouse_query_errors_total",
			Help:      "Total failed warehouse queries by operation.",
		},
		[]string{"operation"},
	)

	// DashboardBuildsTotal counts dashboard renders by outcome.
	DashboardBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snowdash",
			Name:      "dashboard_builds_total",
			Help:      "Total dashboard builds by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		CacheRequestsTotal,
		WarehouseQueryDuration,
		WarehouseQueryErrorsTotal,
		DashboardBuildsTotal,
	)
}

// CacheObserver reports query cache lookups to Prometheus.
type CacheObserver struct{}

// CacheHit implements contract.CacheObserver.
func (CacheObserver) CacheHit(operation string) {
	CacheRequestsTotal.WithLabelValues(operation, "hit").Inc()
}

// CacheMiss implements contract.CacheObserver.
func (CacheObserver) CacheMiss(operation string) {
	CacheRequestsTotal.WithLabelValues(operation, "miss").Inc()
}

// ObserveWarehouseQuery records the latency and outcome of a warehouse query.
func ObserveWarehouseQuery(operation string, elapsed time.Duration, err error) {
	WarehouseQueryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if err != nil {
		WarehouseQueryErrorsTotal.WithLabelValues(operation).Inc()
	}
}

// ObserveDashboardBuild records the outcome of a dashboard build.
func ObserveDashboardBuild(err error) {
	if err != nil {
		DashboardBuildsTotal.WithLabelValues("error").Inc()
		return
	}
	DashboardBuildsTotal.WithLabelValues("ok").Inc()
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // route pattern keeps label cardinality bounded
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
