package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCacheMetrics() {
	r.CacheEventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcelayout_cache_events_total",
			Help: "Total number of cache events",
		},
		[]string{"event", "key_type"}, // event: hit, miss, set
	)

	r.CacheWriteBytes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forcelayout_cache_write_bytes",
			Help:    "Size of cache writes in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
	)
}
