package force

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/vec"
)

const optimal = 200.0

type fixture struct {
	nodes     []Node[string]
	edges     []Edge
	positions map[string]vec.Vec2
}

func newFixture() *fixture {
	return &fixture{positions: map[string]vec.Vec2{}}
}

func (f *fixture) node(id string, x, y float64) *fixture {
	f.nodes = append(f.nodes, Node[string]{ID: id, Payload: "payload-" + id})
	f.positions[id] = vec.New(x, y)
	return f
}

func (f *fixture) link(a, b string) *fixture {
	f.edges = append(f.edges, Edge{From: a, To: b})
	return f
}

func (f *fixture) snapshot(t *testing.T) *Snapshot[string] {
	t.Helper()
	s, err := NewSnapshot(f.nodes, f.edges, f.positions)
	require.NoError(t, err)
	return s
}

func distance(t *testing.T, out *Outcome[string], a, b string) float64 {
	t.Helper()
	pos := out.Positions()
	pa, ok := pos[a]
	require.True(t, ok, "missing %s", a)
	pb, ok := pos[b]
	require.True(t, ok, "missing %s", b)
	return vec.Distance(pa, pb)
}

func TestRunEmptySnapshot(t *testing.T) {
	s := newFixture().snapshot(t)

	out, err := Run(context.Background(), s, Config{OptimalDistance: optimal})
	require.NoError(t, err)
	assert.Equal(t, StateConverged, out.State)
	assert.Zero(t, out.Iterations)

	count := 0
	for range out.Results() {
		count++
	}
	assert.Zero(t, count)
}

func TestRunSingleBody(t *testing.T) {
	s := newFixture().node("a", 12, -7).snapshot(t)

	out, err := Run(context.Background(), s, Config{OptimalDistance: optimal})
	require.NoError(t, err)
	assert.True(t, out.Converged())
	assert.Equal(t, 1, out.Iterations)
	assert.Zero(t, out.PositionAdjustments)
	assert.Equal(t, vec.New(12, -7), out.Positions()["a"])
}

func TestRunTwoLinkedBodies(t *testing.T) {
	s := newFixture().node("a", 0, 0).node("b", 100, 0).link("a", "b").snapshot(t)

	out, err := Run(context.Background(), s, Config{OptimalDistance: optimal}, WithTrace())
	require.NoError(t, err)
	assert.True(t, out.Converged())

	// Both bodies move one full step apart, landing exactly on the optimal
	// distance; the second iteration sees no force.
	assert.Equal(t, 2, out.Iterations)
	assert.InDelta(t, optimal, distance(t, out, "a", "b"), 1e-9)
	require.Len(t, out.Trace, 2)
	assert.InDelta(t, 100, out.Trace[0].PositionAdjustments, 1e-9)
	assert.Zero(t, out.Trace[1].PositionAdjustments)
}

func TestRunTwoLinkedBodiesFarApart(t *testing.T) {
	s := newFixture().node("a", 0, 0).node("b", 0, 900).link("a", "b").snapshot(t)

	out, err := Run(context.Background(), s, Config{OptimalDistance: optimal})
	require.NoError(t, err)
	assert.True(t, out.Converged())
	assert.InDelta(t, optimal, distance(t, out, "a", "b"), 10)
}

func TestRunTwoUnlinkedBodiesSettleApart(t *testing.T) {
	s := newFixture().node("a", 0, 0).node("b", 100, 0).snapshot(t)

	out, err := Run(context.Background(), s, Config{OptimalDistance: optimal})
	require.NoError(t, err)
	assert.True(t, out.Converged())
	assert.InDelta(t, 2*optimal, distance(t, out, "a", "b"), 10)
}

func TestRunChain(t *testing.T) {
	s := newFixture().
		node("A", 0, 0).node("B", 300, 0).node("C", 600, 0).
		link("A", "B").link("B", "C").
		snapshot(t)

	out, err := Run(context.Background(), s, Config{OptimalDistance: optimal})
	require.NoError(t, err)
	assert.True(t, out.Converged())
	assert.Less(t, out.Iterations, 200)

	assert.InDelta(t, optimal, distance(t, out, "A", "B"), 10)
	assert.InDelta(t, optimal, distance(t, out, "B", "C"), 10)
	assert.InDelta(t, 2*optimal, distance(t, out, "A", "C"), 20)

	// Symmetric input stays collinear.
	for r := range out.Results() {
		assert.InDelta(t, 0, r.Position.Y, 1e-6, r.ID)
	}
}

func TestRunStepDecay(t *testing.T) {
	s := newFixture().
		node("A", 0, 0).node("B", 300, 0).node("C", 600, 0).
		link("A", "B").link("B", "C").
		snapshot(t)

	var steps []float64
	out, err := Run(context.Background(), s, Config{OptimalDistance: optimal},
		WithObserver(func(st IterationStats) { steps = append(steps, st.Step) }))
	require.NoError(t, err)
	require.Len(t, steps, out.Iterations)
	require.Greater(t, len(steps), 2)

	assert.Equal(t, optimal/4, steps[0])
	for i := 1; i < len(steps); i++ {
		assert.Less(t, steps[i], steps[i-1])
		assert.InEpsilon(t, DefaultStepDecay, steps[i]/steps[i-1], 1e-12)
	}
	assert.InEpsilon(t, steps[len(steps)-1]*DefaultStepDecay, out.FinalStep, 1e-12)
}

func TestRunConvergedLayoutIsStable(t *testing.T) {
	t.Run("ExactEquilibrium", func(t *testing.T) {
		s := newFixture().
			node("A", 0, 0).node("B", 200, 0).node("C", 400, 0).
			link("A", "B").link("B", "C").
			snapshot(t)

		out, err := Run(context.Background(), s, Config{OptimalDistance: optimal})
		require.NoError(t, err)
		assert.Equal(t, 1, out.Iterations)
		assert.Zero(t, out.PositionAdjustments)
		assert.Equal(t, vec.New(200, 0), out.Positions()["B"])
	})

	t.Run("ResumeFromFinalStep", func(t *testing.T) {
		f := newFixture().
			node("A", 0, 0).node("B", 300, 0).node("C", 600, 0).
			link("A", "B").link("B", "C")
		first, err := Run(context.Background(), f.snapshot(t), Config{OptimalDistance: optimal})
		require.NoError(t, err)
		require.True(t, first.Converged())

		f.positions = first.Positions()
		second, err := Run(context.Background(), f.snapshot(t),
			Config{OptimalDistance: optimal, InitialStep: first.FinalStep})
		require.NoError(t, err)
		assert.True(t, second.Converged())
		assert.LessOrEqual(t, second.Iterations, 3)
		assert.Less(t, second.PositionAdjustments, DefaultMinAdjustment)
	})
}

func TestRunPinnedBodyNeverMoves(t *testing.T) {
	nodes := []Node[string]{
		{ID: "anchor", Pinned: true},
		{ID: "free"},
	}
	positions := map[string]vec.Vec2{"anchor": vec.New(0, 0), "free": vec.New(100, 0)}
	s, err := NewSnapshot(nodes, []Edge{{From: "anchor", To: "free"}}, positions)
	require.NoError(t, err)

	out, err := Run(context.Background(), s, Config{OptimalDistance: optimal})
	require.NoError(t, err)
	assert.True(t, out.Converged())
	assert.Equal(t, vec.New(0, 0), out.Positions()["anchor"])
	assert.InDelta(t, optimal, distance(t, out, "anchor", "free"), 10)
}

func TestRunMassScalesDisplacement(t *testing.T) {
	nodes := []Node[string]{{ID: "heavy", Mass: 2}, {ID: "light"}}
	positions := map[string]vec.Vec2{"heavy": vec.New(0, 0), "light": vec.New(100, 0)}
	s, err := NewSnapshot(nodes, []Edge{{From: "heavy", To: "light"}}, positions)
	require.NoError(t, err)

	var first IterationStats
	_, err = Run(context.Background(), s, Config{OptimalDistance: optimal, MaxIterations: 1},
		WithObserver(func(st IterationStats) {
			if st.Iteration == 1 {
				first = st
			}
		}))
	require.Error(t, err)
	assert.InDelta(t, 75, first.PositionAdjustments, 1e-9)
	assert.InDelta(t, -25, s.Bodies[0].Position.X, 1e-9)
	assert.InDelta(t, 150, s.Bodies[1].Position.X, 1e-9)
}

func TestRunIterationCap(t *testing.T) {
	s := newFixture().
		node("A", 0, 0).node("B", 300, 0).node("C", 600, 0).
		link("A", "B").link("B", "C").
		snapshot(t)

	out, err := Run(context.Background(), s, Config{OptimalDistance: optimal, MaxIterations: 3})
	require.Error(t, err)
	require.NotNil(t, out)

	assert.Equal(t, StateIterationCapReached, out.State)
	assert.Equal(t, 3, out.Iterations)
	assert.True(t, errs.Is(err, errs.ErrCodeNotConverged))

	var nc *errs.NotConvergedError
	require.True(t, errors.As(err, &nc))
	assert.Equal(t, 3, nc.Iterations)
	assert.Equal(t, DefaultMinAdjustment, nc.Threshold)

	// Partial positions are usable.
	for r := range out.Results() {
		assert.True(t, r.Position.IsFinite())
	}
}

func TestRunCancellation(t *testing.T) {
	chain := func() *Snapshot[string] {
		return newFixture().
			node("A", 0, 0).node("B", 300, 0).node("C", 600, 0).
			link("A", "B").link("B", "C").
			snapshot(t)
	}

	t.Run("BeforeStart", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		out, err := Run(ctx, chain(), Config{OptimalDistance: optimal})
		require.Error(t, err)
		assert.Equal(t, StateCanceled, out.State)
		assert.Zero(t, out.Iterations)
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, errs.Is(err, errs.ErrCodeCanceled))
	})

	t.Run("BetweenIterations", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out, err := Run(ctx, chain(), Config{OptimalDistance: optimal},
			WithObserver(func(st IterationStats) {
				if st.Iteration == 3 {
					cancel()
				}
			}))
		require.Error(t, err)
		assert.Equal(t, StateCanceled, out.State)
		assert.Equal(t, 3, out.Iterations)
	})
}

func TestRunSnapshotInUse(t *testing.T) {
	s := newFixture().node("a", 0, 0).snapshot(t)
	require.True(t, s.claim())

	_, err := Run(context.Background(), s, Config{OptimalDistance: optimal})
	assert.ErrorIs(t, err, ErrSnapshotInUse)

	s.release()
	_, err = Run(context.Background(), s, Config{OptimalDistance: optimal})
	assert.NoError(t, err)
}

func TestRunInvalidConfig(t *testing.T) {
	s := newFixture().node("a", 0, 0).snapshot(t)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"ZeroDistance", Config{}},
		{"NegativeDistance", Config{OptimalDistance: -1}},
		{"DecayAboveOne", Config{OptimalDistance: 10, StepDecay: 1.5}},
		{"UnknownLaw", Config{OptimalDistance: 10, Law: "magnetic"}},
		{"UnknownIntegrator", Config{OptimalDistance: 10, Integrator: "verlet"}},
		{"DampingOne", Config{OptimalDistance: 10, Damping: 1}},
		{"InfiniteDistance", Config{OptimalDistance: math.Inf(1)}},
		{"InfiniteInitialStep", Config{OptimalDistance: 10, InitialStep: math.Inf(1)}},
		{"InfiniteMinAdjustment", Config{OptimalDistance: 10, MinAdjustment: math.Inf(1)}},
		{"InfiniteNonEdgeFactor", Config{OptimalDistance: 10, NonEdgeFactor: math.Inf(1)}},
		{"InfiniteStiffness", Config{OptimalDistance: 10, Stiffness: math.Inf(1)}},
		{"InfiniteTimeStep", Config{OptimalDistance: 10, TimeStep: math.Inf(1)}},
		{"InfiniteEpsilon", Config{OptimalDistance: 10, Epsilon: math.Inf(1)}},
		{"NaNDistance", Config{OptimalDistance: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Run(context.Background(), s, tt.cfg)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig), "got %v", err)
			assert.Nil(t, out)
		})
	}
	assert.Equal(t, vec.New(0, 0), s.Bodies[0].Position, "rejected config must not touch the snapshot")
}

func TestRunParallelMatchesSerial(t *testing.T) {
	build := func() *Snapshot[string] {
		f := newFixture()
		ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
		for i, id := range ids {
			angle := float64(i) * 2 * math.Pi / float64(len(ids))
			f.node(id, 150*math.Cos(angle)+float64(i*7), 150*math.Sin(angle))
		}
		for i := 1; i < len(ids); i++ {
			f.link(ids[i-1], ids[i])
		}
		f.link("a", "e").link("c", "h")
		return f.snapshot(t)
	}

	serial, err := Run(context.Background(), build(), Config{OptimalDistance: optimal, MaxIterations: 5000})
	require.NoError(t, err)
	parallel, err := Run(context.Background(), build(), Config{OptimalDistance: optimal, MaxIterations: 5000, Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, serial.Iterations, parallel.Iterations)
	assert.Equal(t, serial.Positions(), parallel.Positions())
}

func TestRunStrategies(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		tol  float64
	}{
		{"InverseSquare", Config{OptimalDistance: optimal, Law: LawInverseSquare}, 10},
		{"Capped", Config{OptimalDistance: optimal, Displacement: DisplacementCapped}, 10},
		{"SemiImplicit", Config{OptimalDistance: optimal, Integrator: IntegratorSemiImplicit, MinAdjustment: 0.1}, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFixture().node("a", 0, 0).node("b", 100, 0).link("a", "b").snapshot(t)

			out, err := Run(context.Background(), s, tt.cfg)
			require.NoError(t, err)
			assert.True(t, out.Converged())
			assert.InDelta(t, optimal, distance(t, out, "a", "b"), tt.tol)
		})
	}
}

func TestResultsCarryPayload(t *testing.T) {
	s := newFixture().node("a", 0, 0).node("b", 50, 0).snapshot(t)

	out, err := Run(context.Background(), s, Config{OptimalDistance: optimal})
	require.NoError(t, err)

	var ids []string
	for r := range out.Results() {
		ids = append(ids, r.ID)
		assert.Equal(t, "payload-"+r.ID, r.Payload)
	}
	assert.Equal(t, []string{"a", "b"}, ids)

	// Early break stops the sequence.
	n := 0
	for range out.Results() {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "converged", StateConverged.String())
	assert.Equal(t, "iteration_cap_reached", StateIterationCapReached.String())
	assert.Equal(t, "canceled", StateCanceled.String())
	assert.Equal(t, "unknown", State(42).String())
}
