package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the Prometheus collectors of the service on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	httpErrors       *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	provisionTotal   *prometheus.CounterVec
	provisionSeconds prometheus.Histogram
	directoryUsers   prometheus.Gauge
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "directory_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		httpErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_http_errors_total",
				Help: "Total number of HTTP errors by error code",
			},
			[]string{"route", "method", "code"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_request_transitions_total",
				Help: "Account request status transitions",
			},
			[]string{"from", "to"},
		),
		provisionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_provisioning_total",
				Help: "Completed provisioning attempts by outcome",
			},
			[]string{"outcome"},
		),
		provisionSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "directory_provisioning_duration_seconds",
				Help:    "Time from provisioning start to completion",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 3, 5, 10, 30},
			},
		),
		directoryUsers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "directory_users",
				Help: "Number of users in the internal directory",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.httpErrors,
		m.transitions,
		m.provisionTotal,
		m.provisionSeconds,
		m.directoryUsers,
	)
	return m
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(route, method, code).Inc()
}

// RecordTransition counts a request status change.
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

// RecordProvisioning records the outcome and duration of a provisioning job.
func (m *Metrics) RecordProvisioning(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.provisionTotal.WithLabelValues(outcome).Inc()
	m.provisionSeconds.Observe(duration.Seconds())
}

// SetDirectorySize sets the directory user gauge.
func (m *Metrics) SetDirectorySize(n int) {
	if m == nil {
		return
	}
	m.directoryUsers.Set(float64(n))
}
