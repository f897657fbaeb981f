// Package metrics exposes Prometheus collectors for gateway operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the gateway reports to after every command
type Recorder interface {
	ObserveOperation(action, kind, outcome string, elapsed time.Duration)
}

// Metrics holds the operation collectors and the registry they live in
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "binder",
			Name:      "operations_total",
			Help:      "Gateway commands by action, kind and outcome.",
		}, []string{"action", "kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "binder",
			Name:      "operation_duration_seconds",
			Help:      "Gateway command latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
	}
	registry.MustRegister(m.operations, m.duration)
	return m
}

// ObserveOperation records one finished command. outcome is "ok" or a failure kind.
func (m *Metrics) ObserveOperation(action, kind, outcome string, elapsed time.Duration) {
	m.operations.WithLabelValues(action, kind, outcome).Inc()
	m.duration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Nop discards observations
type Nop struct{}

func (Nop) ObserveOperation(string, string, string, time.Duration) {}
