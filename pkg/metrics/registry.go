// Package metrics provides the Prometheus registry the hub's components
// (object store, commit engine, transfer protocol) publish operational
// counters and histograms to. Sub-metric constructors live in
// pkg/metrics/prometheus to keep this package free of a direct Prometheus
// collector dependency for components that only need the enabled/disabled
// switch and registry handle.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.RWMutex
	enabled  bool
	registry *prometheus.Registry
)

// InitRegistry enables metrics collection and constructs the process-wide
// registry. Call once during startup before any store is constructed, so
// that metrics.IsEnabled() returns true when stores wire their collectors.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// GetRegistry returns the process-wide registry, or nil if metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}
