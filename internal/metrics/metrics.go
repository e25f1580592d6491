// Package metrics holds the prometheus collectors exported by the marketplace.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the marketplace collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	AgentsRegistered prometheus.Counter
	AgentsUpdated    prometheus.Counter
	AgentsDeleted    prometheus.Counter
	Executions       *prometheus.CounterVec
	InvokeDuration   prometheus.Histogram
}

// New creates collectors registered on a fresh registry, so independent
// instances never collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		AgentsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "agents_registered_total",
			Help:      "Number of agents registered.",
		}),
		AgentsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "agents_updated_total",
			Help:      "Number of agent updates applied.",
		}),
		AgentsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "agents_deleted_total",
			Help:      "Number of agents deleted.",
		}),
		Executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "executions_total",
			Help:      "Number of executions recorded, by status.",
		}, []string{"status"}),
		InvokeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "marketplace",
			Name:      "invoke_duration_seconds",
			Help:      "Time spent in the agent invoker.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		m.AgentsRegistered,
		m.AgentsUpdated,
		m.AgentsDeleted,
		m.Executions,
		m.InvokeDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
