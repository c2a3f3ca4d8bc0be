// Package metric holds the Prometheus collectors exposed on /metrics.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "planner_shop"

type Metrics struct {
	InflightRequests prometheus.Gauge
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec

	// ImportRunsTotal counts import runs by outcome: imported, rejected or invalid.
	ImportRunsTotal *prometheus.CounterVec
	// ImportRecordsTotal counts processed records by result: imported or failed.
	ImportRecordsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		InflightRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Number of HTTP requests currently being served.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ImportRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Import runs by outcome.",
		}, []string{"outcome"}),
		ImportRecordsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "records_total",
			Help:      "Imported records by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.InflightRequests,
		m.RequestsTotal,
		m.RequestDuration,
		m.ImportRunsTotal,
		m.ImportRecordsTotal,
	)

	return m
}
