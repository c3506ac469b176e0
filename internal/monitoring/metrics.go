package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Shell command metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration prometheus.Histogram
	CommandTimeouts prometheus.Counter
	Interrupts      prometheus.Counter

	// Session metrics
	SessionsActive  prometheus.Gauge
	SessionRestarts prometheus.Counter

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with its own registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		startTime: time.Now(),
		registry:  registry,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentshell_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentshell_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentshell_commands_total",
				Help: "Total number of shell commands executed",
			},
			[]string{"status"},
		),
		CommandDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agentshell_command_duration_seconds",
				Help:    "Shell command duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		CommandTimeouts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "agentshell_command_timeouts_total",
				Help: "Total number of commands that hit the wait timeout",
			},
		),
		Interrupts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "agentshell_interrupts_total",
				Help: "Total number of interrupt signals sent to the shell",
			},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentshell_sessions_active",
				Help: "Number of live shell sessions",
			},
		),
		SessionRestarts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "agentshell_session_restarts_total",
				Help: "Total number of session restarts",
			},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentshell_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}

	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// Handler returns an HTTP handler exposing the Prometheus registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCommand records one shell command execution
func (m *Metrics) RecordCommand(status string, duration time.Duration) {
	m.CommandsTotal.WithLabelValues(status).Inc()
	m.CommandDuration.Observe(duration.Seconds())
}

// IncCommandTimeouts increments the command timeout counter
func (m *Metrics) IncCommandTimeouts() {
	m.CommandTimeouts.Inc()
}

// IncInterrupts increments the interrupt counter
func (m *Metrics) IncInterrupts() {
	m.Interrupts.Inc()
}

// SetSessionsActive sets the number of live sessions
func (m *Metrics) SetSessionsActive(count int) {
	m.SessionsActive.Set(float64(count))
}

// IncSessionRestarts increments the session restart counter
func (m *Metrics) IncSessionRestarts() {
	m.SessionRestarts.Inc()
}
