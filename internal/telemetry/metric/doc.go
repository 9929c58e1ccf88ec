// Package metric provides Prometheus metrics for remotebean-server.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry and HTTP handler
//   - collector.go: Pull-based collector for session store gauges
//
// Metrics include:
//
//   - Lookup and invocation counters by contract, method and result
//   - Invocation latency histograms
//   - Session lifecycle counters (created, removed, expired, passivated)
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
