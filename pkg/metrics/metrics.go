package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	ReportLoads   *prometheus.CounterVec
	ReportLatency prometheus.Histogram
	ReportRows    prometheus.Histogram
	ViewsPruned   prometheus.Counter
}

// Report load outcomes.
const (
	OutcomeLoaded     = "loaded"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
)

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendance",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ReportLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "report_loads_total",
			Help:      "Student report loads by outcome.",
		}, []string{"outcome"}),
		ReportLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "attendance",
			Name:      "report_load_duration_seconds",
			Help:      "Time spent loading lectures and users for one report.",
			Buckets:   prometheus.DefBuckets,
		}),
		ReportRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "attendance",
			Name:      "report_students",
			Help:      "Number of student rows per loaded report.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		ViewsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "report_views_pruned_total",
			Help:      "Idle report views dropped from memory.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.ReportLoads,
		m.ReportLatency,
		m.ReportRows,
		m.ViewsPruned,
	)
	return m
}

// ObserveLoad records the outcome of one report load.
// A nil receiver is a no-op so callers may run without metrics.
func (m *Metrics) ObserveLoad(outcome string, seconds float64, rows int) {
	if m == nil {
		return
	}
	m.ReportLoads.WithLabelValues(outcome).Inc()
	m.ReportLatency.Observe(seconds)
	if outcome == OutcomeLoaded {
		m.ReportRows.Observe(float64(rows))
	}
}
