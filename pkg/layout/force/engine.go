package force

import (
	"context"
	"io"
	"iter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/vec"
)

// State is the lifecycle state of a layout run.
type State int

const (
	StateInitializing State = iota
	StateIterating
	StateConverged
	StateIterationCapReached
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateIterating:
		return "iterating"
	case StateConverged:
		return "converged"
	case StateIterationCapReached:
		return "iteration_cap_reached"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// IterationStats describes one completed simulation step.
type IterationStats struct {
	Iteration int // 1-based
	// Step is the global step used by this iteration, before decay.
	Step float64
	// PositionAdjustments is the total displacement of all bodies.
	PositionAdjustments float64
	// Energy is the sum of squared net force magnitudes.
	Energy   float64
	Duration time.Duration
}

// Observer is called after every iteration from the goroutine running [Run].
type Observer func(IterationStats)

// RunOption configures [Run].
type RunOption func(*runSettings)

type runSettings struct {
	observer Observer
	logger   *log.Logger
	logEvery int
	trace    bool
}

// WithObserver registers fn to receive the stats of every iteration.
func WithObserver(fn Observer) RunOption {
	return func(s *runSettings) { s.observer = fn }
}

// WithLogger sets the logger used for run summaries and periodic debug
// progress lines.
func WithLogger(l *log.Logger) RunOption {
	return func(s *runSettings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLogEvery sets how many iterations pass between debug progress lines.
func WithLogEvery(n int) RunOption {
	return func(s *runSettings) {
		if n > 0 {
			s.logEvery = n
		}
	}
}

// WithTrace keeps the stats of every iteration on [Outcome.Trace].
func WithTrace() RunOption {
	return func(s *runSettings) { s.trace = true }
}

// Outcome is the result of a layout run. Positions are also written to the
// snapshot's bodies.
type Outcome[P any] struct {
	RunID      uuid.UUID
	State      State
	Iterations int
	// FinalStep is the step the next iteration would have used.
	FinalStep float64
	// PositionAdjustments and Energy are taken from the last iteration.
	PositionAdjustments float64
	Energy              float64
	Duration            time.Duration
	Trace               []IterationStats

	bodies []*Body[P]
}

// Converged reports whether the run stopped because movement fell below the
// configured threshold.
func (o *Outcome[P]) Converged() bool { return o.State == StateConverged }

// Results yields the final position of every body in snapshot order.
func (o *Outcome[P]) Results() iter.Seq[Result[P]] {
	return func(yield func(Result[P]) bool) {
		for _, b := range o.bodies {
			if !yield(Result[P]{ID: b.ID, Position: b.Position, Payload: b.Payload}) {
				return
			}
		}
	}
}

// Positions returns the final positions keyed by body ID.
func (o *Outcome[P]) Positions() map[string]vec.Vec2 {
	m := make(map[string]vec.Vec2, len(o.bodies))
	for _, b := range o.bodies {
		m[b.ID] = b.Position
	}
	return m
}

// Run lays out the bodies of snap in place.
//
// Every iteration computes the net force on each body from the positions at
// the start of the iteration, moves all bodies, then decays the step. The run
// stops when the total movement of an iteration falls below
// cfg.MinAdjustment (StateConverged), when cfg.MaxIterations is reached
// (StateIterationCapReached) or when ctx is done, which is checked between
// iterations (StateCanceled).
//
// The outcome is returned in every terminal state. Reaching the iteration
// cap additionally returns an [errs.NotConvergedError]; cancellation returns
// an error carrying [errs.ErrCodeCanceled] that wraps ctx.Err(). In both cases
// the bodies hold the last computed, usable positions.
//
// A snapshot may be used by one run at a time; a concurrent second run fails
// with [ErrSnapshotInUse].
func Run[P any](ctx context.Context, snap *Snapshot[P], cfg Config, opts ...RunOption) (*Outcome[P], error) {
	settings := runSettings{
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		logEvery: 100,
	}
	for _, opt := range opts {
		opt(&settings)
	}
	if snap == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "nil snapshot")
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	law, err := NewForceLaw(cfg)
	if err != nil {
		return nil, err
	}
	integrator, err := NewIntegrator(cfg)
	if err != nil {
		return nil, err
	}

	if !snap.claim() {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, ErrSnapshotInUse, "run")
	}
	defer snap.release()

	r := &run[P]{
		snap:       snap,
		cfg:        cfg,
		law:        law,
		integrator: integrator,
		settings:   settings,
		out: &Outcome[P]{
			RunID:     uuid.New(),
			State:     StateInitializing,
			FinalStep: cfg.InitialStep,
			bodies:    snap.Bodies,
		},
	}
	return r.execute(ctx)
}

type run[P any] struct {
	snap       *Snapshot[P]
	adj        *Adjacency
	cfg        Config
	law        ForceLaw
	integrator Integrator
	settings   runSettings
	out        *Outcome[P]
}

func (r *run[P]) execute(ctx context.Context) (*Outcome[P], error) {
	start := time.Now()
	logger := r.settings.logger.With("run", r.out.RunID.String()[:8])
	defer func() { r.out.Duration = time.Since(start) }()

	if len(r.snap.Bodies) == 0 {
		r.out.State = StateConverged
		return r.out, nil
	}

	r.adj = BuildAdjacency(r.snap)
	r.out.State = StateIterating
	logger.Debug("layout started",
		"bodies", len(r.snap.Bodies),
		"links", len(r.snap.Links),
		"law", r.law.Name(),
		"integrator", r.integrator.Name())

	step := r.cfg.InitialStep
	for {
		if err := ctx.Err(); err != nil {
			r.out.State = StateCanceled
			logger.Debug("layout canceled", "iterations", r.out.Iterations)
			return r.out, errs.Wrap(errs.ErrCodeCanceled, err, "layout canceled after %d iterations", r.out.Iterations)
		}

		iterStart := time.Now()
		if err := r.accumulate(ctx); err != nil {
			return r.out, errs.Wrap(errs.ErrCodeInternal, err, "accumulate forces")
		}
		stats := r.apply(step)
		stats.Iteration = r.out.Iterations + 1
		stats.Duration = time.Since(iterStart)

		step *= r.cfg.StepDecay
		r.out.Iterations = stats.Iteration
		r.out.FinalStep = step
		r.out.PositionAdjustments = stats.PositionAdjustments
		r.out.Energy = stats.Energy
		if r.settings.trace {
			r.out.Trace = append(r.out.Trace, stats)
		}
		if r.settings.observer != nil {
			r.settings.observer(stats)
		}
		if stats.Iteration%r.settings.logEvery == 0 {
			logger.Debug("layout progress",
				"iteration", stats.Iteration,
				"step", stats.Step,
				"movement", stats.PositionAdjustments)
		}

		if stats.PositionAdjustments < r.cfg.MinAdjustment {
			r.out.State = StateConverged
			logger.Debug("layout converged", "iterations", r.out.Iterations)
			return r.out, nil
		}
		if r.out.Iterations >= r.cfg.MaxIterations {
			r.out.State = StateIterationCapReached
			logger.Warn("layout did not converge",
				"iterations", r.out.Iterations,
				"movement", stats.PositionAdjustments)
			return r.out, &errs.NotConvergedError{
				Iterations:          r.out.Iterations,
				PositionAdjustments: stats.PositionAdjustments,
				Threshold:           r.cfg.MinAdjustment,
			}
		}
	}
}

// accumulate sets Force on every body from start-of-step positions. Only
// Force is written, one body per goroutine, so workers never share state.
func (r *run[P]) accumulate(ctx context.Context) error {
	bodies := r.snap.Bodies
	workers := min(r.cfg.Workers, len(bodies))
	if workers <= 1 {
		for i := range bodies {
			bodies[i].Force = r.netForce(i)
		}
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	chunk := (len(bodies) + workers - 1) / workers
	for lo := 0; lo < len(bodies); lo += chunk {
		hi := min(lo+chunk, len(bodies))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				bodies[i].Force = r.netForce(i)
			}
			return nil
		})
	}
	return g.Wait()
}

func (r *run[P]) netForce(i int) vec.Vec2 {
	bodies := r.snap.Bodies
	pos := bodies[i].Position
	var f vec.Vec2
	for _, j := range r.adj.EdgeSet(i) {
		f.AddInPlace(r.law.Pair(pos, bodies[j].Position, true))
	}
	for _, j := range r.adj.NonEdgeSet(i) {
		f.AddInPlace(r.law.Pair(pos, bodies[j].Position, false))
	}
	return f
}

// apply moves every body with the forces from accumulate.
func (r *run[P]) apply(step float64) IterationStats {
	stats := IterationStats{Step: step}
	for _, b := range r.snap.Bodies {
		stats.Energy += b.Force.LenSq()
		stats.PositionAdjustments += r.integrator.Advance(&b.Position, &b.Velocity, b.Force, b.InvMass, step)
	}
	return stats
}
