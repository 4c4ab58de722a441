package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordRun records a finished layout run
func (r *Registry) RecordRun(state string, iterations int, duration time.Duration) {
	r.RunsTotal.WithLabelValues(state).Inc()
	r.RunIterations.Observe(float64(iterations))
	r.RunDuration.Observe(duration.Seconds())
}

// RecordCacheEvent records a cache hit, miss or set
func (r *Registry) RecordCacheEvent(event, keyType string) {
	r.CacheEventsTotal.WithLabelValues(event, keyType).Inc()
}

// WriteTextfile writes every metric in the node-exporter textfile format.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// =============================================================================
// observability.LayoutHooks
// =============================================================================

func (r *Registry) OnLayoutStart(_ context.Context, bodies, _ int) {
	r.RunsInFlight.Inc()
	r.RunBodies.Observe(float64(bodies))
}

func (r *Registry) OnLayoutIteration(_ context.Context, _ int, _, adjustments float64) {
	r.LastPositionAdjustments.Set(adjustments)
}

func (r *Registry) OnLayoutComplete(_ context.Context, state string, iterations int, duration time.Duration, _ error) {
	r.RunsInFlight.Dec()
	r.RecordRun(state, iterations, duration)
}

// =============================================================================
// observability.CacheHooks
// =============================================================================

func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.RecordCacheEvent("hit", keyType)
}

func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.RecordCacheEvent("miss", keyType)
}

func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.RecordCacheEvent("set", keyType)
	r.CacheWriteBytes.Observe(float64(size))
}
