// Package metrics holds the Prometheus collectors of the motif pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "motifs"

// Metrics contains all pipeline metrics
type Metrics struct {
	OracleInvocations *prometheus.CounterVec
	OracleDuration    *prometheus.HistogramVec
	GraphsProcessed   *prometheus.CounterVec
	GraphsRejected    *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the pipeline metrics and registers them on a private registry
func New() *Metrics {
	m := &Metrics{
		OracleInvocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "oracle",
				Name:      "invocations_total",
				Help:      "Total number of motif census invocations",
			},
			[]string{"mode", "status"},
		),

		OracleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "oracle",
				Name:      "duration_seconds",
				Help:      "Motif census duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"mode"},
		),

		GraphsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aggregate",
				Name:      "graphs_processed_total",
				Help:      "Graphs that contributed a census to a group distribution",
			},
			[]string{"group"},
		),

		GraphsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aggregate",
				Name:      "graphs_rejected_total",
				Help:      "Graphs excluded from a group distribution, by reason",
			},
			[]string{"group", "reason"},
		),

		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Result cache lookups by outcome",
			},
			[]string{"result"},
		),

		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.OracleInvocations,
		m.OracleDuration,
		m.GraphsProcessed,
		m.GraphsRejected,
		m.CacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry holding the pipeline metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveOracle records one census invocation
func (m *Metrics) ObserveOracle(mode string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.OracleInvocations.WithLabelValues(mode, status).Inc()
	m.OracleDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// GraphProcessed records a graph that contributed to a group distribution
func (m *Metrics) GraphProcessed(group string) {
	if m == nil {
		return
	}
	m.GraphsProcessed.WithLabelValues(group).Inc()
}

// GraphRejected records a graph excluded from a group distribution
func (m *Metrics) GraphRejected(group, reason string) {
	if m == nil {
		return
	}
	m.GraphsRejected.WithLabelValues(group, reason).Inc()
}

// CacheLookup records a cache lookup outcome (hit, miss, corrupt, disabled)
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
