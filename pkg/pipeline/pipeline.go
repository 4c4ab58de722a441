// Package pipeline provides the auto-layout pipeline for forcelayout.
//
// This package turns an editor graph into a layout run and the run's result
// back into node positions. The CLI and any embedding editor share it, so
// defaults, validation and caching behave the same everywhere.
//
// # Architecture
//
// One call to [Runner.Execute] performs three steps:
//
//  1. Snapshot: copy the graph's nodes, connections and positions into a
//     force.Snapshot (pinned nodes become immovable bodies)
//  2. Layout: run the force engine, or fetch the result from the cache
//  3. Apply: write the computed positions back onto the graph
//
// Each step can be run independently.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Layout: force.Config{OptimalDistance: 200},
//	}
//	result, err := runner.Execute(ctx, g, opts)
//	if err != nil && !errs.Is(err, errs.ErrCodeNotConverged) {
//	    log.Fatal(err)
//	}
//
// Run individual steps:
//
//	// Layout only, graph untouched
//	l, err := runner.Layout(ctx, g, opts)
//
//	// Apply a stored layout
//	moved := pipeline.Apply(g, l)
//
// # Caching
//
// Layouts are cached by the hash of the serialized graph (which includes
// every start position) and the effective options. Only converged layouts
// are cached; a run that hit its iteration cap or was canceled is returned
// to the caller but never stored.
package pipeline

import (
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/forcelayout/pkg/cache"
	errs "github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/layout/force"
	"github.com/matzehuels/forcelayout/pkg/nodegraph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Library Callers
// =============================================================================

const (
	// DefaultOptimalDistance is the target distance between connected nodes
	// when none is configured. It suits editor nodes roughly 150 units wide.
	DefaultOptimalDistance = 200.0

	// DefaultSeed seeds the jitter of nodes that share a start position.
	DefaultSeed = force.DefaultJitterSeed

	// DefaultJitterRadius is how far coincident nodes are pushed apart.
	DefaultJitterRadius = force.DefaultJitterRadius
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for an auto-layout run.
// It can be loaded from a TOML file with [LoadOptionsFile]; engine
// parameters live in the file's [layout] table.
type Options struct {
	// Layout holds the engine parameters.
	Layout force.Config `toml:"layout" json:"layout"`

	// Only restricts the run to these node IDs. The other nodes keep
	// their positions and their connections are ignored.
	Only []string `toml:"only" json:"only,omitempty" validate:"dive,required"`

	// Seed and JitterRadius control the separation of nodes that start at
	// the same position.
	Seed         uint64  `toml:"seed" json:"seed,omitempty"`
	JitterRadius float64 `toml:"jitter_radius" json:"jitter_radius,omitempty" validate:"gte=0"`
	NoJitter     bool    `toml:"no_jitter" json:"no_jitter,omitempty"`

	// Refresh skips the cache lookup; the fresh result is still stored.
	Refresh bool `toml:"-" json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger    `toml:"-" json:"-"`
	Observer force.Observer `toml:"-" json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the laid out graph (the caller's graph, modified in place).
	Graph *nodegraph.Graph

	// GraphHash is the content hash of the graph before layout.
	GraphHash string

	// Layout is the computed (or cached) layout.
	Layout graph.Layout

	// Moved lists the nodes whose position changed, in graph order.
	Moved []string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the layout came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount       int
	ConnectionCount int
	LayoutTime      time.Duration

	// Connection crossings in the graph before and after the layout is applied.
	CrossingsBefore int
	CrossingsAfter  int
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from the cache
}

// =============================================================================
// Options Methods
// =============================================================================

var validate = validator.New(validator.WithRequiredStructEnabled())

// SetDefaults fills every unset field with its default.
// This method is idempotent.
func (o *Options) SetDefaults() {
	if o.Layout.OptimalDistance == 0 {
		o.Layout.OptimalDistance = DefaultOptimalDistance
	}
	o.Layout = o.Layout.WithDefaults()
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.JitterRadius == 0 {
		o.JitterRadius = DefaultJitterRadius
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the options; call it after [Options.SetDefaults].
// Errors carry [errs.ErrCodeInvalidConfig].
func (o *Options) Validate() error {
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if math.IsInf(o.JitterRadius, 0) || math.IsNaN(o.JitterRadius) {
		return errs.New(errs.ErrCodeInvalidConfig, "jitter_radius must be a finite number, got %v", o.JitterRadius)
	}
	if err := validate.Var(o.JitterRadius, "gte=0"); err != nil {
		return errs.New(errs.ErrCodeInvalidConfig, "jitter_radius must be at least 0, got %v", o.JitterRadius)
	}
	if err := validate.Var(o.Only, "dive,required"); err != nil {
		return errs.New(errs.ErrCodeInvalidConfig, "only must not contain empty node IDs")
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates in one step.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// LayoutKeyOpts returns cache key options for layout computation.
// Worker count is left out: it does not change the result.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	params := o.Layout
	params.Workers = 0

	only := slices.Clone(o.Only)
	slices.Sort(only)
	only = slices.Compact(only)

	radius := o.JitterRadius
	if o.NoJitter {
		radius = 0
	}
	return cache.LayoutKeyOpts{
		Params:       params,
		Only:         only,
		JitterSeed:   o.Seed,
		JitterRadius: radius,
	}
}

// snapshotOptions translates the jitter settings into snapshot options.
func (o *Options) snapshotOptions() []force.SnapshotOption {
	if o.NoJitter {
		return []force.SnapshotOption{force.WithJitter(o.Seed, 0)}
	}
	return []force.SnapshotOption{force.WithJitter(o.Seed, o.JitterRadius)}
}
