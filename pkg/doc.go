// Package pkg provides the core libraries for forcelayout node graph
// auto-layout.
//
// # Overview
//
// forcelayout arranges the nodes of a node-graph editor document (nodes with
// typed sockets, joined by connections) with a mass-spring model: connected
// nodes are pulled toward an optimal distance, unconnected nodes are pushed
// to a multiple of it, and the simulation runs until the total movement per
// iteration drops below a threshold. The pkg directory is organized into
// these areas:
//
//  1. [layout/force] - The engine (snapshot, force laws, integrators, run loop)
//  2. [nodegraph] - The editor-side graph model the engine reads from and writes to
//  3. [graph] - Serialization types for graphs and layouts (JSON or YAML)
//  4. [pipeline] - Orchestration (graph → snapshot → engine → cache → graph)
//  5. [cache] - Layout caches (file, Redis, null)
//
// # Architecture
//
// The typical data flow through forcelayout:
//
//	graph.json / graph.yaml
//	         ↓
//	    [graph] package (decode into a nodegraph.Graph)
//	         ↓
//	    [pipeline] package (options, cache lookup, snapshot)
//	         ↓
//	    [layout/force] package (simulate until converged)
//	         ↓
//	    positions applied back to the nodegraph.Graph
//	         ↓
//	    layout.json, rewritten graph, or SVG/PNG/PDF/DOT via [render/nodelink]
//
// # Quick Start
//
// Lay out a graph and write the positions back:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/forcelayout/pkg/graph"
//	    "github.com/matzehuels/forcelayout/pkg/pipeline"
//	)
//
//	g, _ := graph.ReadGraphFile("flow.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), g, pipeline.Options{})
//	if err != nil && result == nil {
//	    return err
//	}
//	_ = graph.WriteGraphFile(result.Graph, "flow.json")
//
// Drive the engine directly with your own payload type:
//
//	snap, _ := force.NewSnapshot(nodes, edges, positions)
//	out, err := force.Run(ctx, snap, force.DefaultConfig(200))
//	for r := range out.Results() {
//	    editor.Move(r.Payload, r.Position)
//	}
//
// # Main Packages
//
// [vec] - Two-dimensional float64 vector with allocating and in-place
// arithmetic.
//
// [layout/force] - Generic over the caller's payload type. A run owns its
// snapshot, reports an Outcome with the final state, and honors context
// cancellation between iterations.
//
// [errors] - Coded errors (INVALID_INPUT, INVALID_CONFIG, NOT_CONVERGED,
// CANCELED, ...) shared by every package.
//
// [observability] - Hook interfaces for layout runs and cache events with
// no-op defaults. [metrics] implements them with Prometheus collectors.
//
// [render] - Format conversion (SVG to PDF/PNG). [render/nodelink] draws a
// graph at its positions through Graphviz.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/force/...       # Engine only
//	go test -run Example ./...           # Examples only
//
// [vec]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/vec
// [layout/force]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/layout/force
// [nodegraph]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/nodegraph
// [graph]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/observability
// [metrics]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/metrics
// [render]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/render/nodelink
package pkg
