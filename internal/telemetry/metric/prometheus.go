package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "remotebean"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Naming metrics
	LookupsTotal *prometheus.CounterVec

	// Invocation metrics
	InvocationsTotal   *prometheus.CounterVec
	InvocationDuration *prometheus.HistogramVec

	// Session metrics
	SessionsCreated    prometheus.Counter
	SessionsRemoved    prometheus.Counter
	SessionsExpired    prometheus.Counter
	SessionsPassivated prometheus.Counter
	SessionsActivated  prometheus.Counter
}

// NewRegistry creates a new metrics registry with Go runtime and process
// collectors already registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		LookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Total number of naming lookups by result.",
		}, []string{"kind", "result"}),
		InvocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Total number of remote invocations.",
		}, []string{"contract", "method", "result"}),
		InvocationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Remote invocation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"contract", "method"}),
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of stateful sessions created.",
		}),
		SessionsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_removed_total",
			Help:      "Total number of stateful sessions removed by clients.",
		}),
		SessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Total number of stateful sessions that timed out.",
		}),
		SessionsPassivated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_passivated_total",
			Help:      "Total number of session passivations.",
		}),
		SessionsActivated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_activated_total",
			Help:      "Total number of session activations from the passivation store.",
		}),
	}

	reg.MustRegister(
		r.LookupsTotal,
		r.InvocationsTotal,
		r.InvocationDuration,
		r.SessionsCreated,
		r.SessionsRemoved,
		r.SessionsExpired,
		r.SessionsPassivated,
		r.SessionsActivated,
	)

	return r
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns an HTTP handler for the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// MustRegister registers additional collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// Register registers c, returning an error if an equal collector is
// already registered.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// RecordLookup counts a lookup.
func (r *Registry) RecordLookup(kind, result string) {
	r.LookupsTotal.WithLabelValues(kind, result).Inc()
}

// RecordInvocation counts an invocation and observes its latency.
func (r *Registry) RecordInvocation(contract, method, result string, seconds float64) {
	r.InvocationsTotal.WithLabelValues(contract, method, result).Inc()
	r.InvocationDuration.WithLabelValues(contract, method).Observe(seconds)
}
