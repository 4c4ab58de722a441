package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/matzehuels/forcelayout/pkg/observability"
)

// Compile-time checks that Registry serves as both hook sets.
var (
	_ observability.LayoutHooks = (*Registry)(nil)
	_ observability.CacheHooks  = (*Registry)(nil)
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.RunsTotal == nil {
		t.Error("RunsTotal not initialized")
	}
	if r.RunDuration == nil {
		t.Error("RunDuration not initialized")
	}
	if r.CacheEventsTotal == nil {
		t.Error("CacheEventsTotal not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	// Should return the same instance
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestLayoutHooks(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.OnLayoutStart(ctx, 12, 11)
	if v := gaugeValue(t, r.RunsInFlight); v != 1 {
		t.Errorf("RunsInFlight = %v, want 1", v)
	}

	r.OnLayoutIteration(ctx, 1, 50, 320)
	r.OnLayoutIteration(ctx, 2, 45, 4)
	if v := gaugeValue(t, r.LastPositionAdjustments); v != 4 {
		t.Errorf("LastPositionAdjustments = %v, want 4", v)
	}

	r.OnLayoutComplete(ctx, "converged", 2, 10*time.Millisecond, nil)
	if v := gaugeValue(t, r.RunsInFlight); v != 0 {
		t.Errorf("RunsInFlight = %v, want 0", v)
	}

	counter, err := r.RunsTotal.GetMetricWithLabelValues("converged")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("Counter value = %v, want 1", metric.Counter.GetValue())
	}

	var hist dto.Metric
	if err := r.RunIterations.Write(&hist); err != nil {
		t.Fatal(err)
	}
	if hist.Histogram.GetSampleCount() != 1 || hist.Histogram.GetSampleSum() != 2 {
		t.Errorf("iterations histogram = %d samples, sum %v",
			hist.Histogram.GetSampleCount(), hist.Histogram.GetSampleSum())
	}
}

func TestCacheHooks(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.OnCacheMiss(ctx, "layout")
	r.OnCacheSet(ctx, "layout", 2048)
	r.OnCacheHit(ctx, "layout")
	r.OnCacheHit(ctx, "layout")

	for event, want := range map[string]float64{"hit": 2, "miss": 1, "set": 1} {
		c, err := r.CacheEventsTotal.GetMetricWithLabelValues(event, "layout")
		if err != nil {
			t.Fatal(err)
		}
		var m dto.Metric
		if err := c.Write(&m); err != nil {
			t.Fatal(err)
		}
		if m.Counter.GetValue() != want {
			t.Errorf("%s = %v, want %v", event, m.Counter.GetValue(), want)
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.RecordRun("iteration_cap_reached", 1000, time.Second)

	path := filepath.Join(t.TempDir(), "forcelayout.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := `forcelayout_runs_total{state="iteration_cap_reached"} 1`
	if !strings.Contains(string(data), want) {
		t.Errorf("textfile missing %q:\n%s", want, data)
	}
}

type writer interface {
	Write(*dto.Metric) error
}

func gaugeValue(t *testing.T, g writer) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatal(err)
	}
	return m.Gauge.GetValue()
}
