package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsRegistry holds all Prometheus metrics for the logbook service.
// Each registry owns its prometheus.Registry so tests can build as many as they need.
type MetricsRegistry struct {
	registry *prometheus.Registry

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Sync Metrics
	SyncRunsTotal         *prometheus.CounterVec
	SyncDuration          prometheus.Histogram
	SyncRowsAcceptedTotal prometheus.Counter
	SyncRowsRejectedTotal *prometheus.CounterVec
	RecordsStored         prometheus.Gauge

	// Mutation Metrics
	ValidationTransitionsTotal *prometheus.CounterVec
	PushesTotal                *prometheus.CounterVec
	PushesDroppedTotal         *prometheus.CounterVec
	PushQueueDepth             prometheus.Gauge
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &MetricsRegistry{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "logbook_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "logbook_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		SyncRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_sync_runs_total",
				Help: "Bulk sync runs by trigger source and result",
			},
			[]string{"source", "result"},
		),
		SyncDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "logbook_sync_duration_seconds",
				Help:    "Bulk sync execution time in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		SyncRowsAcceptedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "logbook_sync_rows_accepted_total",
				Help: "Remote flight rows mapped into local records",
			},
		),
		SyncRowsRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_sync_rows_rejected_total",
				Help: "Remote rows excluded from a sync, by table",
			},
			[]string{"table"},
		),
		RecordsStored: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "logbook_records_stored",
				Help: "Flight logs in the local store after the last sync",
			},
		),

		ValidationTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_validation_transitions_total",
				Help: "Validation state changes applied locally, by target status",
			},
			[]string{"status"},
		),
		PushesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_pushes_total",
				Help: "Fire-and-forget pushes to the remote logbook, by action and result",
			},
			[]string{"action", "result"},
		),
		PushesDroppedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_pushes_dropped_total",
				Help: "Pushes discarded because the dispatch queue was full or closed",
			},
			[]string{"action"},
		),
		PushQueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "logbook_push_queue_depth",
				Help: "Pushes waiting for a dispatcher worker",
			},
		),
	}
}

// Handler exposes the registry for scraping.
func (m *MetricsRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (m *MetricsRegistry) Gatherer() prometheus.Gatherer {
	return m.registry
}
