package graph

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/forcelayout/pkg/vec"
)

// =============================================================================
// Layout - Layout Result Serialization
// =============================================================================

// Layout is the serialization format of one auto-layout run: the computed
// positions plus the run's outcome.
//
// Positions only lists nodes that took part in the run; nodes excluded from
// it keep their positions in the source graph.
type Layout struct {
	RunID               string        `json:"run_id" yaml:"run_id"`
	State               string        `json:"state" yaml:"state"`
	Iterations          int           `json:"iterations" yaml:"iterations"`
	FinalStep           float64       `json:"final_step" yaml:"final_step"`
	PositionAdjustments float64       `json:"position_adjustments" yaml:"position_adjustments"`
	Energy              float64       `json:"energy" yaml:"energy"`
	OptimalDistance     float64       `json:"optimal_distance" yaml:"optimal_distance"`
	Duration            time.Duration `json:"duration_ns,omitempty" yaml:"duration_ns,omitempty"`
	Positions           []Position    `json:"positions" yaml:"positions"`
}

// Position is the final position of one node.
type Position struct {
	ID string  `json:"id" yaml:"id"`
	X  float64 `json:"x" yaml:"x"`
	Y  float64 `json:"y" yaml:"y"`
}

// PositionMap returns the positions keyed by node ID.
func (l *Layout) PositionMap() map[string]vec.Vec2 {
	m := make(map[string]vec.Vec2, len(l.Positions))
	for _, p := range l.Positions {
		m[p.ID] = vec.New(p.X, p.Y)
	}
	return m
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, l, FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	return decodeLayout(data, FormatJSON)
}

// WriteLayoutFile writes a Layout to path, encoded by its extension.
func WriteLayoutFile(l Layout, path string) error {
	var buf bytes.Buffer
	if err := encode(&buf, l, FormatFromPath(path)); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// ReadLayoutFile reads a Layout from path, decoded by its extension.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return decodeLayout(data, FormatFromPath(path))
}

func decodeLayout(data []byte, format Format) (Layout, error) {
	var l Layout
	if err := decode(bytes.NewReader(data), &l, format); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	for i, p := range l.Positions {
		if p.ID == "" {
			return Layout{}, fmt.Errorf("layout position %d has no id", i)
		}
	}
	return l, nil
}
