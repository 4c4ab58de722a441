// Package metrics exposes Prometheus metrics for layout runs and the layout
// cache.
//
// A [Registry] implements both observability.LayoutHooks and
// observability.CacheHooks, so registering it at startup is all the wiring
// an application needs. The CLI has no HTTP surface; it writes the registry
// to a node-exporter textfile with [Registry.WriteTextfile].
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Layout Metrics
	RunsTotal               *prometheus.CounterVec
	RunDuration             prometheus.Histogram
	RunIterations           prometheus.Histogram
	RunBodies               prometheus.Histogram
	RunsInFlight            prometheus.Gauge
	LastPositionAdjustments prometheus.Gauge

	// Cache Metrics
	CacheEventsTotal *prometheus.CounterVec
	CacheWriteBytes  prometheus.Histogram

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initLayoutMetrics()
	r.initCacheMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
