// Package graph provides serialization types for node graphs and layout
// results.
//
// This package defines the wire format of forcelayout's data, used for
// graph files, cached layouts and cross-tool interoperability.
//
// # Architecture
//
// The package sits at the serialization boundary:
//
//   - [Graph], [Layout]: serialization types (this package)
//   - nodegraph.Graph: the editor's live graph
//   - force.Outcome: the engine's result
//
// Use [FromNodeGraph]/[ToNodeGraph] to convert between the first two; the
// pipeline package turns outcomes into [Layout] values.
//
// # Graph Serialization
//
// Graphs use a node/connection document:
//
//	{
//	  "nodes": [
//	    {"id": "load", "x": 0, "y": 0, "sockets": [{"name": "rows", "direction": "out"}]},
//	    {"id": "chart", "x": 40, "y": 0, "sockets": [{"name": "data", "direction": "in"}]}
//	  ],
//	  "connections": [{"from": "load", "from_socket": "rows", "to": "chart", "to_socket": "data"}]
//	}
//
// The same document may be written as YAML; files are decoded by extension
// (.yaml/.yml, anything else is JSON):
//
//	g, _ := graph.ReadGraphFile("flow.yaml")  // File → nodegraph.Graph
//	graph.WriteGraphFile(g, "flow.json")      // nodegraph.Graph → File
//	data, _ := graph.MarshalGraph(g)          // nodegraph.Graph → []byte
//
// # Layout Serialization
//
// A [Layout] records the positions computed by one run along with its run ID,
// terminal state and convergence figures:
//
//	l, _ := graph.ReadLayoutFile("flow.layout.json")
//	g.MoveNodes(l.PositionMap())
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
