// Package force implements a mass-spring (force-directed) layout for node
// graphs.
//
// # Overview
//
// A layout run takes a [Snapshot] of the graph, the positions of the nodes
// to arrange and the links between them, and iteratively moves every body
// until the graph relaxes:
//
//	snap, err := force.NewSnapshot(nodes, edges, positions)
//	if err != nil {
//	    return err // malformed input, e.g. an edge to an unknown node
//	}
//	out, err := force.Run(ctx, snap, force.Config{OptimalDistance: 200})
//	for r := range out.Results() {
//	    fmt.Println(r.ID, r.Position)
//	}
//
// # Algorithm
//
// Every pair of bodies is joined by a spring. Linked bodies rest at
// [Config.OptimalDistance]; all other pairs rest at NonEdgeFactor times that
// distance, which spreads unrelated nodes apart. In each iteration:
//
//  1. The net force on every body is summed from the positions at the start
//     of the iteration ([Spring] per pair).
//  2. Each body moves against its force by the current global step along the
//     force direction. Bodies with no net force do not move.
//  3. The moved distances are summed, then the step decays by StepDecay.
//
// The run converges once the summed movement of one iteration drops below
// MinAdjustment. Because the step decays geometrically, a run always ends;
// MaxIterations bounds it regardless and is reported as a NOT_CONVERGED error.
//
// # Strategies
//
// [InverseSquareLaw] replaces the springs by linear attraction along links and
// inverse-square repulsion between all pairs. [GradientIntegrator] in capped
// mode limits each move to the force magnitude; [SemiImplicitIntegrator]
// carries a damped velocity between iterations.
//
// # Ownership
//
// A snapshot copies positions out of the caller's data and carries payloads
// by value. [Run] updates the bodies in place and owns the snapshot for its
// duration; there is no package-level mutable state, so independent runs may
// proceed concurrently.
package force
