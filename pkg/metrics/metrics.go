// Package metrics holds the Prometheus collectors of the service.
//
// Each Registry owns its own prometheus.Registry instead of the global
// default one, so tests can build as many as they like without
// "duplicate metrics collector registration" panics.
// Every recording method is nil-safe: a nil *Registry records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry groups every workdesk metric.
type Registry struct {
	reg *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	WorkflowTransitions *prometheus.CounterVec
	Notifications       *prometheus.CounterVec
	SweepRuns           prometheus.Counter
	ReportCache         *prometheus.CounterVec
}

// NewRegistry creates and registers all collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workdesk_http_requests_total",
				Help: "HTTP requests by method, route pattern and status code",
			},
			[]string{"method", "route", "status"},
		),

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workdesk_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route pattern",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),

		WorkflowTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workdesk_workflow_transitions_total",
				Help: "Approval workflow transitions by request kind and target status",
			},
			[]string{"kind", "to"},
		),

		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workdesk_notifications_total",
				Help: "Notification deliveries by channel and result",
			},
			[]string{"channel", "result"},
		),

		SweepRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "workdesk_sweep_runs_total",
				Help: "Completed notification sweeps",
			},
		),

		ReportCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workdesk_report_cache_total",
				Help: "Report cache lookups by result (hit, miss)",
			},
			[]string{"result"},
		),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.HTTPRequests,
		r.HTTPRequestDuration,
		r.WorkflowTransitions,
		r.Notifications,
		r.SweepRuns,
		r.ReportCache,
	)

	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request.
func (r *Registry) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Transition records a workflow status change.
func (r *Registry) Transition(kind, to string) {
	if r == nil {
		return
	}
	r.WorkflowTransitions.WithLabelValues(kind, to).Inc()
}

// Notification records a delivery attempt on one channel
// (db, ws, push, email) with result ok, error, skipped or gone.
func (r *Registry) Notification(channel, result string) {
	if r == nil {
		return
	}
	r.Notifications.WithLabelValues(channel, result).Inc()
}

// Sweep records a completed sweep run.
func (r *Registry) Sweep() {
	if r == nil {
		return
	}
	r.SweepRuns.Inc()
}

// CacheLookup records a report cache hit or miss.
func (r *Registry) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.ReportCache.WithLabelValues(result).Inc()
}
