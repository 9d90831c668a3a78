package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recruitment"

// Metrics owns the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	identity        *prometheus.CounterVec
	applications    *prometheus.CounterVec
	tokenFlow       *prometheus.CounterVec
	notifications   *prometheus.CounterVec
}

// NewMetrics registers all collectors. A nil registry gets a fresh one with the Go and process collectors.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Error responses by route and error code.",
		}, []string{"route", "method", "code"}),
		identity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_resolutions_total",
			Help:      "Identity resolutions by match kind.",
		}, []string{"match"}),
		applications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_total",
			Help:      "Application submissions by outcome.",
		}, []string{"outcome"}),
		tokenFlow: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_flow_states_total",
			Help:      "Terminal states reached by the emailed link flows.",
		}, []string{"flow", "state"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Outbound notifications by event and outcome.",
		}, []string{"event", "outcome"}),
	}

	reg.MustRegister(m.requests, m.requestDuration, m.errors, m.identity, m.applications, m.tokenFlow, m.notifications)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordIdentityMatch counts a resolver outcome.
func (m *Metrics) RecordIdentityMatch(match string) {
	if m == nil {
		return
	}
	m.identity.WithLabelValues(match).Inc()
}

// RecordApplication counts a submission outcome (accepted, duplicate, invalid, replayed).
func (m *Metrics) RecordApplication(outcome string) {
	if m == nil {
		return
	}
	m.applications.WithLabelValues(outcome).Inc()
}

// RecordTokenFlow counts a link flow reaching state.
func (m *Metrics) RecordTokenFlow(flow, state string) {
	if m == nil {
		return
	}
	m.tokenFlow.WithLabelValues(flow, state).Inc()
}

// RecordNotification counts a delivery attempt.
func (m *Metrics) RecordNotification(event, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(event, outcome).Inc()
}
