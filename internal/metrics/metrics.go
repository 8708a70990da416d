// Package metrics provides Prometheus metrics for the dose server.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dose_server"

// Manager holds all Prometheus collectors on a dedicated registry, keeping
// the default Go runtime collectors out of the scrape surface.
type Manager struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	doseComputations   *prometheus.CounterVec
	computationErrors  *prometheus.CounterVec
	neutronLookups     prometheus.Counter
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
}

// NewManager creates a metrics manager with its own registry.
func NewManager() *Manager {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Manager{
		registry: registry,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		doseComputations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dose_computations_total",
			Help:      "Completed dose computations by mode (effective or equivalent).",
		}, []string{"mode"}),
		computationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "computation_errors_total",
			Help:      "Failed dose computations by error code.",
		}, []string{"code"}),
		neutronLookups: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "neutron_wr_lookups_total",
			Help:      "Direct neutron w_R lookup requests.",
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_cache_hits_total",
			Help:      "Dose responses served from the Redis cache.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_cache_misses_total",
			Help:      "Dose requests that missed the Redis cache.",
		}),
	}
}

// Handler returns the scrape handler for the manager's registry.
func (m *Manager) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// Middleware records request counts and latency per route.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordComputation counts a completed dose computation.
func (m *Manager) RecordComputation(mode string) {
	m.doseComputations.WithLabelValues(mode).Inc()
}

// RecordComputationError counts a failed dose computation by error code.
func (m *Manager) RecordComputationError(code string) {
	m.computationErrors.WithLabelValues(code).Inc()
}

// RecordNeutronLookup counts a direct neutron w_R lookup.
func (m *Manager) RecordNeutronLookup() {
	m.neutronLookups.Inc()
}

// RecordCacheHit counts a response served from cache.
func (m *Manager) RecordCacheHit() {
	m.cacheHits.Inc()
}

// RecordCacheMiss counts a cache miss.
func (m *Manager) RecordCacheMiss() {
	m.cacheMisses.Inc()
}
