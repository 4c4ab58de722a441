// Package nodegraph models the document of a node-based editor: operator
// nodes with typed sockets, joined by connections.
//
// # Overview
//
// A [Graph] is what the editor holds while the user works. Auto-layout reads
// node positions and connections from it, and writes the computed positions
// back with [Graph.MoveNodes]:
//
//	g := nodegraph.New()
//	g.AddNode(nodegraph.Node{ID: "load", Position: vec.New(0, 0)})
//	g.AddNode(nodegraph.Node{ID: "filter", Position: vec.New(20, 0)})
//	g.AddConnection(nodegraph.Connection{From: "load", To: "filter"})
//
// # Sockets
//
// Connections may name the sockets they attach to. Named sockets must exist,
// run from an output ([DirectionOut]) to an input ([DirectionIn]) and carry
// the same type unless one of them is [TypeAny]. Each input accepts a single
// connection; outputs fan out freely.
//
// # Pinned nodes
//
// Nodes with Pinned set keep their place during auto-layout but still push
// and pull on the nodes around them.
package nodegraph
