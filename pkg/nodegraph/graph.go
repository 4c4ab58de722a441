package nodegraph

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/forcelayout/pkg/vec"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddConnection] when the From
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddConnection] when the To
	// node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSelfConnection is returned by [Graph.AddConnection] when a node is
	// wired to itself.
	ErrSelfConnection = errors.New("node cannot connect to itself")

	// ErrUnknownSocket is returned by [Graph.AddConnection] when a named
	// socket does not exist on its node.
	ErrUnknownSocket = errors.New("unknown socket")

	// ErrSocketDirection is returned by [Graph.AddConnection] when the source
	// socket is not an output or the target socket is not an input.
	ErrSocketDirection = errors.New("connection must run from an output to an input socket")

	// ErrSocketTypeMismatch is returned by [Graph.AddConnection] when the
	// socket types differ and neither is [TypeAny].
	ErrSocketTypeMismatch = errors.New("socket types do not match")

	// ErrInputInUse is returned by [Graph.AddConnection] when the target
	// input socket already has a connection.
	ErrInputInUse = errors.New("input socket already connected")

	// ErrInvalidPosition is returned by [Graph.Validate] when a node position
	// is NaN or infinite.
	ErrInvalidPosition = errors.New("node position must be finite")

	// ErrInvalidConnection is returned by [Graph.Validate] when a connection
	// references a node that no longer exists.
	ErrInvalidConnection = errors.New("invalid connection endpoint")
)

// Metadata stores arbitrary key-value pairs attached to nodes.
type Metadata map[string]any

// Direction tells whether a socket receives or emits data.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// TypeAny is the socket type compatible with every other type.
const TypeAny = "any"

// Socket is a named connection point on a node.
type Socket struct {
	Name      string
	Type      string
	Direction Direction
}

// Node is one operator in the execution graph.
//
// Position is the top-left corner in editor coordinates. Pinned nodes are
// never moved by auto-layout.
type Node struct {
	ID       string
	Type     string
	Title    string
	Position vec.Vec2
	Pinned   bool
	Sockets  []Socket
	Meta     Metadata // Never nil after AddNode
}

// Socket returns the socket with the given name.
func (n *Node) Socket(name string) (Socket, bool) {
	for _, s := range n.Sockets {
		if s.Name == name {
			return s, true
		}
	}
	return Socket{}, false
}

// Connection wires an output socket of From to an input socket of To.
// Socket names may be empty for editors that connect whole nodes.
type Connection struct {
	From       string
	FromSocket string
	To         string
	ToSocket   string
}

// Graph is the editor's live node/connection collection.
//
// Nodes keep their insertion order, which is also the order in which they
// are handed to the layout engine. The zero value is not usable; call [New].
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes       map[string]*Node
	order       []string
	connections []Connection
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode adds a copy of n to the graph.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	n.Sockets = slices.Clone(n.Sockets)
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// AddConnection wires two existing nodes.
//
// When socket names are given they must exist on their nodes, the source
// must be an output and the target an input, the types must match (or one
// side be [TypeAny]) and the target input must still be free.
func (g *Graph) AddConnection(c Connection) error {
	from, ok := g.nodes[c.From]
	if !ok {
		return ErrUnknownSourceNode
	}
	to, ok := g.nodes[c.To]
	if !ok {
		return ErrUnknownTargetNode
	}
	if c.From == c.To {
		return ErrSelfConnection
	}
	if err := g.checkSockets(from, to, c); err != nil {
		return err
	}
	g.connections = append(g.connections, c)
	return nil
}

func (g *Graph) checkSockets(from, to *Node, c Connection) error {
	if c.FromSocket == "" && c.ToSocket == "" {
		return nil
	}
	var out, in Socket
	if c.FromSocket != "" {
		s, ok := from.Socket(c.FromSocket)
		if !ok {
			return ErrUnknownSocket
		}
		if s.Direction != DirectionOut {
			return ErrSocketDirection
		}
		out = s
	}
	if c.ToSocket != "" {
		s, ok := to.Socket(c.ToSocket)
		if !ok {
			return ErrUnknownSocket
		}
		if s.Direction != DirectionIn {
			return ErrSocketDirection
		}
		in = s
		for _, existing := range g.connections {
			if existing.To == c.To && existing.ToSocket == c.ToSocket {
				return ErrInputInUse
			}
		}
	}
	if c.FromSocket != "" && c.ToSocket != "" &&
		out.Type != in.Type && out.Type != TypeAny && in.Type != TypeAny {
		return ErrSocketTypeMismatch
	}
	return nil
}

// RemoveNode deletes the node and every connection touching it.
// Removing an unknown node is a no-op.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })
	g.connections = slices.DeleteFunc(g.connections, func(c Connection) bool {
		return c.From == id || c.To == id
	})
}

// RemoveConnection deletes the first connection equal to c.
func (g *Graph) RemoveConnection(c Connection) {
	if i := slices.Index(g.connections, c); i >= 0 {
		g.connections = slices.Delete(g.connections, i, i+1)
	}
}

// Node returns the node with the given ID. The pointer refers to the node in
// the graph; use [Graph.SetPosition] or [Graph.MoveNodes] to move it.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// Connections returns a copy of all connections in insertion order.
func (g *Graph) Connections() []Connection { return slices.Clone(g.connections) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// ConnectionCount returns the number of connections.
func (g *Graph) ConnectionCount() int { return len(g.connections) }

// Neighbors returns the IDs of nodes connected to id in either direction,
// without duplicates, in connection order.
func (g *Graph) Neighbors(id string) []string {
	var out []string
	for _, c := range g.connections {
		var other string
		switch id {
		case c.From:
			other = c.To
		case c.To:
			other = c.From
		default:
			continue
		}
		if !slices.Contains(out, other) {
			out = append(out, other)
		}
	}
	return out
}

// SetPosition moves a single node. It reports false for unknown IDs.
func (g *Graph) SetPosition(id string, p vec.Vec2) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	n.Position = p
	return true
}

// MoveNodes applies a batch of positions, typically a layout result, and
// returns the IDs of the nodes whose position changed in insertion order.
// Unknown IDs are ignored.
func (g *Graph) MoveNodes(positions map[string]vec.Vec2) []string {
	var moved []string
	for _, id := range g.order {
		p, ok := positions[id]
		if !ok {
			continue
		}
		n := g.nodes[id]
		if n.Position != p {
			n.Position = p
			moved = append(moved, id)
		}
	}
	return moved
}

// Positions returns the current position of every node.
func (g *Graph) Positions() map[string]vec.Vec2 {
	m := make(map[string]vec.Vec2, len(g.nodes))
	for id, n := range g.nodes {
		m[id] = n.Position
	}
	return m
}

// Bounds returns the smallest box containing every node position.
// ok is false for an empty graph.
func (g *Graph) Bounds() (lo, hi vec.Vec2, ok bool) {
	if len(g.nodes) == 0 {
		return vec.Zero, vec.Zero, false
	}
	lo = vec.New(math.Inf(1), math.Inf(1))
	hi = vec.New(math.Inf(-1), math.Inf(-1))
	for _, n := range g.nodes {
		lo = vec.Combine(lo, n.Position, math.Min)
		hi = vec.Combine(hi, n.Position, math.Max)
	}
	return lo, hi, true
}

// Clone returns a deep copy of the graph structure. Meta maps are copied
// shallowly.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:       make(map[string]*Node, len(g.nodes)),
		order:       slices.Clone(g.order),
		connections: slices.Clone(g.connections),
	}
	for id, n := range g.nodes {
		cp := *n
		cp.Sockets = slices.Clone(n.Sockets)
		cp.Meta = maps.Clone(n.Meta)
		c.nodes[id] = &cp
	}
	return c
}

// Validate checks that every connection references existing nodes and that
// every position is finite.
func (g *Graph) Validate() error {
	for _, c := range g.connections {
		if _, ok := g.nodes[c.From]; !ok {
			return ErrInvalidConnection
		}
		if _, ok := g.nodes[c.To]; !ok {
			return ErrInvalidConnection
		}
	}
	for _, n := range g.nodes {
		if !n.Position.IsFinite() {
			return fmt.Errorf("%w: node %s at %v", ErrInvalidPosition, n.ID, n.Position)
		}
	}
	return nil
}
