package pipeline

import (
	"context"
	"time"

	errs "github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/layout/force"
	"github.com/matzehuels/forcelayout/pkg/nodegraph"
	"github.com/matzehuels/forcelayout/pkg/observability"
)

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot copies g into the engine's read model. Every node takes part
// unless opts.Only is set, in which case only the listed nodes do. Pinned
// nodes become immovable bodies that still exert force on the others.
//
// The returned snapshot shares no state with g; the payload of each body is
// the node's title so callers can label results without touching the graph.
func Snapshot(g *nodegraph.Graph, opts Options) (*force.Snapshot[string], error) {
	nodes := make([]force.Node[string], 0, g.NodeCount())
	for _, n := range g.Nodes() {
		nodes = append(nodes, force.Node[string]{
			ID:      n.ID,
			Payload: n.Title,
			Pinned:  n.Pinned,
		})
	}

	conns := g.Connections()
	edges := make([]force.Edge, len(conns))
	for i, c := range conns {
		edges[i] = force.Edge{From: c.From, To: c.To}
	}

	positions := g.Positions()
	if len(opts.Only) > 0 {
		only := make(map[string]bool, len(opts.Only))
		for _, id := range opts.Only {
			if _, ok := g.Node(id); !ok {
				return nil, errs.New(errs.ErrCodeNotFound, "node %q not found", id)
			}
			only[id] = true
		}
		for id := range positions {
			if !only[id] {
				delete(positions, id)
			}
		}
	}

	return force.NewSnapshot(nodes, edges, positions, opts.snapshotOptions()...)
}

// =============================================================================
// Layout Computation
// =============================================================================

// ComputeLayout runs the engine on g without caching.
//
// The layout is returned alongside the error when the run hit its
// iteration cap or was canceled; its positions are the last ones computed.
func ComputeLayout(ctx context.Context, g *nodegraph.Graph, opts Options) (graph.Layout, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.Layout{}, err
	}

	snap, err := Snapshot(g, opts)
	if err != nil {
		return graph.Layout{}, err
	}

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, snap.Len(), len(snap.Links))

	observer := func(s force.IterationStats) {
		hooks.OnLayoutIteration(ctx, s.Iteration, s.Step, s.PositionAdjustments)
		if opts.Observer != nil {
			opts.Observer(s)
		}
	}

	start := time.Now()
	out, err := force.Run(ctx, snap, opts.Layout,
		force.WithLogger(opts.Logger),
		force.WithObserver(observer))
	if out == nil {
		hooks.OnLayoutComplete(ctx, force.StateInitializing.String(), 0, time.Since(start), err)
		return graph.Layout{}, err
	}
	hooks.OnLayoutComplete(ctx, out.State.String(), out.Iterations, out.Duration, err)

	opts.Logger.Debug("layout finished",
		"state", out.State,
		"bodies", snap.Len(),
		"excluded", len(snap.Excluded),
		"jittered", len(snap.Jittered),
		"iterations", out.Iterations,
		"duration", out.Duration)

	return exportLayout(out, opts), err
}

// exportLayout converts an engine outcome to the serialization format.
func exportLayout(out *force.Outcome[string], opts Options) graph.Layout {
	l := graph.Layout{
		RunID:               out.RunID.String(),
		State:               out.State.String(),
		Iterations:          out.Iterations,
		FinalStep:           out.FinalStep,
		PositionAdjustments: out.PositionAdjustments,
		Energy:              out.Energy,
		OptimalDistance:     opts.Layout.OptimalDistance,
		Duration:            out.Duration,
	}
	for r := range out.Results() {
		l.Positions = append(l.Positions, graph.Position{ID: r.ID, X: r.Position.X, Y: r.Position.Y})
	}
	return l
}

// =============================================================================
// Apply
// =============================================================================

// Apply writes the positions of l onto g and returns the IDs of the nodes
// that moved. Nodes absent from the layout are left where they are.
func Apply(g *nodegraph.Graph, l graph.Layout) []string {
	return g.MoveNodes(l.PositionMap())
}
