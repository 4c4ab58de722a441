package graph

import (
	"fmt"
	"maps"

	"github.com/matzehuels/forcelayout/pkg/nodegraph"
	"github.com/matzehuels/forcelayout/pkg/vec"
)

// =============================================================================
// Graph - Node Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for node graphs, used for
// files, caching and cross-tool compatibility.
//
// Node order is significant: it is the order the editor created the nodes
// in and the order in which they are laid out.
type Graph struct {
	Nodes       []Node       `json:"nodes" yaml:"nodes"`
	Connections []Connection `json:"connections,omitempty" yaml:"connections,omitempty"`
}

// Node is the serialized form of a [nodegraph.Node].
type Node struct {
	ID      string         `json:"id" yaml:"id"`
	Type    string         `json:"type,omitempty" yaml:"type,omitempty"`
	Title   string         `json:"title,omitempty" yaml:"title,omitempty"`
	X       float64        `json:"x" yaml:"x"`
	Y       float64        `json:"y" yaml:"y"`
	Pinned  bool           `json:"pinned,omitempty" yaml:"pinned,omitempty"`
	Sockets []Socket       `json:"sockets,omitempty" yaml:"sockets,omitempty"`
	Meta    map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// DisplayLabel returns the title if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}

// Socket is the serialized form of a [nodegraph.Socket].
type Socket struct {
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	Direction string `json:"direction" yaml:"direction"`
}

// Connection is the serialized form of a [nodegraph.Connection].
type Connection struct {
	From       string `json:"from" yaml:"from"`
	FromSocket string `json:"from_socket,omitempty" yaml:"from_socket,omitempty"`
	To         string `json:"to" yaml:"to"`
	ToSocket   string `json:"to_socket,omitempty" yaml:"to_socket,omitempty"`
}

// =============================================================================
// nodegraph.Graph ↔ Graph Conversion
// =============================================================================

// FromNodeGraph converts an editor graph to its serialization format.
func FromNodeGraph(g *nodegraph.Graph) Graph {
	nodes := g.Nodes()
	conns := g.Connections()
	out := Graph{
		Nodes:       make([]Node, len(nodes)),
		Connections: make([]Connection, len(conns)),
	}
	for i, n := range nodes {
		out.Nodes[i] = nodeFromGraph(n)
	}
	for i, c := range conns {
		out.Connections[i] = Connection(c)
	}
	return out
}

// ToNodeGraph converts a Graph to an editor graph, enforcing the same rules
// as building it through the [nodegraph] API.
func ToNodeGraph(gj Graph) (*nodegraph.Graph, error) {
	g := nodegraph.New()
	for _, nj := range gj.Nodes {
		n := nodegraph.Node{
			ID:       nj.ID,
			Type:     nj.Type,
			Title:    nj.Title,
			Position: vec.New(nj.X, nj.Y),
			Pinned:   nj.Pinned,
			Meta:     maps.Clone(nj.Meta),
		}
		for _, s := range nj.Sockets {
			n.Sockets = append(n.Sockets, nodegraph.Socket{
				Name:      s.Name,
				Type:      s.Type,
				Direction: nodegraph.Direction(s.Direction),
			})
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nj.ID, err)
		}
	}
	for _, cj := range gj.Connections {
		if err := g.AddConnection(nodegraph.Connection(cj)); err != nil {
			return nil, fmt.Errorf("add connection %s→%s: %w", cj.From, cj.To, err)
		}
	}
	return g, nil
}

func nodeFromGraph(n *nodegraph.Node) Node {
	node := Node{
		ID:     n.ID,
		Type:   n.Type,
		Title:  n.Title,
		X:      n.Position.X,
		Y:      n.Position.Y,
		Pinned: n.Pinned,
	}
	if len(n.Meta) > 0 {
		node.Meta = maps.Clone(n.Meta)
	}
	for _, s := range n.Sockets {
		node.Sockets = append(node.Sockets, Socket{
			Name:      s.Name,
			Type:      s.Type,
			Direction: string(s.Direction),
		})
	}
	return node
}
