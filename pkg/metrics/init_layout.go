package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLayoutMetrics() {
	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcelayout_runs_total",
			Help: "Total number of layout runs by terminal state",
		},
		[]string{"state"}, // converged, iteration_cap_reached, canceled
	)

	r.RunDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forcelayout_run_duration_seconds",
			Help:    "Duration of layout runs in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
	)

	r.RunIterations = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forcelayout_iterations",
			Help:    "Iterations performed per layout run",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	r.RunBodies = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forcelayout_bodies",
			Help:    "Number of bodies per layout run",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	r.RunsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "forcelayout_runs_in_flight",
			Help: "Current number of layout runs being iterated",
		},
	)

	r.LastPositionAdjustments = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "forcelayout_last_position_adjustments",
			Help: "Total body movement of the most recent iteration",
		},
	)
}
