package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry.
// All methods are safe to call on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	checkins      *prometheus.CounterVec
	batchItems    *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
}

// New creates the registry and registers every collector on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		checkins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fest_checkins_total",
			Help: "Round check-in attempts by outcome reason.",
		}, []string{"outcome"}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fest_batch_items_total",
			Help: "Items processed by result and prize batches.",
		}, []string{"operation", "outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fest_cache_lookups_total",
			Help: "Cache-aside lookups by cache and result.",
		}, []string{"cache", "result"}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fest_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.checkins,
		m.batchItems,
		m.cacheLookups,
		m.httpDurations,
	)

	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) CheckIn(outcome string, n int) {
	if m == nil {
		return
	}
	m.checkins.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) BatchItems(operation string, recorded, failed int) {
	if m == nil {
		return
	}
	m.batchItems.WithLabelValues(operation, "recorded").Add(float64(recorded))
	m.batchItems.WithLabelValues(operation, "failed").Add(float64(failed))
}

func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDurations.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
