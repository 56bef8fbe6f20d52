package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. Every recording method is safe to
// call on a nil *Metrics so components can run without instrumentation.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// State tree metrics
	StateWrites        *prometheus.CounterVec
	CascadeCallbacks   prometheus.Counter
	CascadeRefusals    prometheus.Counter
	SubscriberPanics   prometheus.Counter
	DurableOps         *prometheus.CounterVec
	DurableOpDuration  *prometheus.HistogramVec
	SnapshotImports    *prometheus.CounterVec
	SnapshotExports    prometheus.Counter
	WindowsOpen        prometheus.Gauge
	AchievementsUnlock prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	snapshot MetricsSnapshot
	mu       sync.RWMutex
}

// MetricsSnapshot holds current metric values for the JSON health endpoint
type MetricsSnapshot struct {
	TotalRequests    int64 `json:"total_requests"`
	TotalErrors      int64 `json:"total_errors"`
	StateWrites      int64 `json:"state_writes"`
	DurableFailures  int64 `json:"durable_failures"`
	SnapshotImports  int64 `json:"snapshot_imports"`
	ActiveWebSockets int64 `json:"active_websockets"`
}

// NewMetrics creates a metrics collector registered on reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retros_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "retros_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path"},
		),

		StateWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retros_state_writes_total",
				Help: "State tree writes by persistence flag",
			},
			[]string{"persist"},
		),
		CascadeCallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "retros_state_cascade_callbacks_total",
				Help: "Subscriber callbacks invoked by change cascades",
			},
		),
		CascadeRefusals: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "retros_state_cascade_refusals_total",
				Help: "Writes refused because the cascade depth limit was reached",
			},
		),
		SubscriberPanics: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "retros_state_subscriber_panics_total",
				Help: "Subscriber callbacks that panicked",
			},
		),
		DurableOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retros_durable_ops_total",
				Help: "Durable key-value operations by op and status",
			},
			[]string{"op", "status"},
		),
		DurableOpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "retros_durable_op_duration_seconds",
				Help:    "Durable key-value operation duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"op"},
		),
		SnapshotImports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retros_snapshot_imports_total",
				Help: "Snapshot imports by kind and result",
			},
			[]string{"kind", "result"},
		),
		SnapshotExports: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "retros_snapshot_exports_total",
				Help: "Complete snapshots exported",
			},
		),
		WindowsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "retros_windows_open",
				Help: "Number of open windows",
			},
		),
		AchievementsUnlock: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "retros_achievements_unlocked_total",
				Help: "Achievements unlocked",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "retros_websocket_connections_active",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retros_websocket_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "retros_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if len(status) > 0 && status[0] >= '4' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordStateWrite counts one tree write.
func (m *Metrics) RecordStateWrite(persist bool) {
	if m == nil {
		return
	}
	label := "false"
	if persist {
		label = "true"
	}
	m.StateWrites.WithLabelValues(label).Inc()

	m.mu.Lock()
	m.snapshot.StateWrites++
	m.mu.Unlock()
}

// RecordCascadeCallbacks counts subscriber invocations of one cascade.
func (m *Metrics) RecordCascadeCallbacks(n int) {
	if m == nil || n == 0 {
		return
	}
	m.CascadeCallbacks.Add(float64(n))
}

// IncCascadeRefusals counts a write refused by the depth guard.
func (m *Metrics) IncCascadeRefusals() {
	if m == nil {
		return
	}
	m.CascadeRefusals.Inc()
}

// IncSubscriberPanics counts a recovered subscriber panic.
func (m *Metrics) IncSubscriberPanics() {
	if m == nil {
		return
	}
	m.SubscriberPanics.Inc()
}

// RecordDurableOp records a durable key-value operation.
func (m *Metrics) RecordDurableOp(op string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DurableOps.WithLabelValues(op, status).Inc()
	m.DurableOpDuration.WithLabelValues(op).Observe(duration.Seconds())

	if err != nil {
		m.mu.Lock()
		m.snapshot.DurableFailures++
		m.mu.Unlock()
	}
}

// RecordSnapshotImport records an import attempt.
func (m *Metrics) RecordSnapshotImport(kind string, success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.SnapshotImports.WithLabelValues(kind, result).Inc()

	m.mu.Lock()
	m.snapshot.SnapshotImports++
	m.mu.Unlock()
}

// IncSnapshotExports counts an export.
func (m *Metrics) IncSnapshotExports() {
	if m == nil {
		return
	}
	m.SnapshotExports.Inc()
}

// SetWindowsOpen sets the open window gauge
func (m *Metrics) SetWindowsOpen(count int) {
	if m == nil {
		return
	}
	m.WindowsOpen.Set(float64(count))
}

// IncAchievementsUnlocked counts an unlock.
func (m *Metrics) IncAchievementsUnlocked() {
	if m == nil {
		return
	}
	m.AchievementsUnlock.Inc()
}

// RecordWSMessage records WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveWebSockets++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveWebSockets--
	m.mu.Unlock()
}

// Snapshot returns current values for the JSON health endpoint and refreshes
// the uptime gauge.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.Uptime.Set(time.Since(m.startTime).Seconds())

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// UptimeSeconds returns the seconds since the collector was created.
func (m *Metrics) UptimeSeconds() float64 {
	if m == nil {
		return 0
	}
	return time.Since(m.startTime).Seconds()
}
