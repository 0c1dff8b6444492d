// Package metrics provides Prometheus metrics for the pmv action tracker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for store operations.
const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// Manager manages all Prometheus metrics for the tracker.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Write path
	playersCreated prometheus.Counter
	gamesCreated   prometheus.Counter
	eventsLogged   *prometheus.CounterVec
	eventsReplayed prometheus.Counter

	// Store
	storeOperations *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec
	storeRows       *prometheus.GaugeVec

	// Stats
	statsComputed    prometheus.Counter
	statsLatency     prometheus.Histogram
	statsEvents      prometheus.Gauge
	statsCacheLookup *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pmv",
		subsystem:        "tracker",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.playersCreated = auto.NewCounter(m.counterOpts("players_created_total",
		"Total number of players registered, explicitly or by an event"))
	m.gamesCreated = auto.NewCounter(m.counterOpts("games_created_total",
		"Total number of game sessions started, explicitly or by an event"))
	m.eventsLogged = auto.NewCounterVec(m.counterOpts("events_logged_total",
		"Total number of events appended by action"), []string{"action"})
	m.eventsReplayed = auto.NewCounter(m.counterOpts("events_replayed_total",
		"Total number of event submissions answered from the idempotency guard"))

	m.storeOperations = auto.NewCounterVec(m.counterOpts("store_operations_total",
		"Store operations by name and outcome"), []string{"operation", "outcome"})
	m.storeLatency = auto.NewHistogramVec(m.histogramOpts("store_latency_milliseconds",
		"Store operation latency in milliseconds"), []string{"operation"})
	m.storeRows = auto.NewGaugeVec(m.gaugeOpts("store_rows",
		"Rows per table as of the last status check"), []string{"table"})

	m.statsComputed = auto.NewCounter(m.counterOpts("stats_computed_total",
		"Total number of stats tables computed from the event log"))
	m.statsLatency = auto.NewHistogram(m.histogramOpts("stats_latency_milliseconds",
		"Latency of query plus aggregation in milliseconds"))
	m.statsEvents = auto.NewGauge(m.gaugeOpts("stats_events",
		"Number of events aggregated by the last stats computation"))
	m.statsCacheLookup = auto.NewCounterVec(m.counterOpts("stats_cache_lookups_total",
		"Stats cache lookups by result"), []string{"result"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Errors by component and error type"), []string{"component", "error_type"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Errors by endpoint, method and error type"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes",
		"Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count",
		"Current number of goroutines"))
}

// RecordPlayerCreated increments the players created counter.
func RecordPlayerCreated() {
	globalManager.playersCreated.Inc()
}

// RecordGameCreated increments the game sessions counter.
func RecordGameCreated() {
	globalManager.gamesCreated.Inc()
}

// RecordEventLogged increments the events counter for action.
func RecordEventLogged(action string) {
	globalManager.eventsLogged.WithLabelValues(action).Inc()
}

// RecordEventReplayed counts a duplicate submission answered without a write.
func RecordEventReplayed() {
	globalManager.eventsReplayed.Inc()
}

// RecordStoreOperation records the latency and outcome of one store call.
func RecordStoreOperation(operation string, latencyMs float64, failed bool) {
	outcome := outcomeOK
	if failed {
		outcome = outcomeError
	}
	globalManager.storeOperations.WithLabelValues(operation, outcome).Inc()
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdateStoreRows sets the row gauges for each table.
func UpdateStoreRows(players, games, events int) {
	globalManager.storeRows.WithLabelValues("players").Set(float64(players))
	globalManager.storeRows.WithLabelValues("games").Set(float64(games))
	globalManager.storeRows.WithLabelValues("events").Set(float64(events))
}

// RecordStatsComputed records one aggregation over the event log.
func RecordStatsComputed(events int, latencyMs float64) {
	globalManager.statsComputed.Inc()
	globalManager.statsLatency.Observe(latencyMs)
	globalManager.statsEvents.Set(float64(events))
}

// RecordStatsCacheHit counts a stats table served from cache.
func RecordStatsCacheHit() {
	globalManager.statsCacheLookup.WithLabelValues("hit").Inc()
}

// RecordStatsCacheMiss counts a stats lookup that fell through to the store.
func RecordStatsCacheMiss() {
	globalManager.statsCacheLookup.WithLabelValues("miss").Inc()
}

// RecordStatsCacheError counts a cache lookup that failed.
func RecordStatsCacheError() {
	globalManager.statsCacheLookup.WithLabelValues("error").Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
