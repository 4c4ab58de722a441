package nodegraph_test

import (
	"fmt"

	"github.com/matzehuels/forcelayout/pkg/nodegraph"
	"github.com/matzehuels/forcelayout/pkg/vec"
)

func ExampleGraph() {
	g := nodegraph.New()
	_ = g.AddNode(nodegraph.Node{ID: "load", Sockets: []nodegraph.Socket{
		{Name: "rows", Type: "table", Direction: nodegraph.DirectionOut},
	}})
	_ = g.AddNode(nodegraph.Node{ID: "chart", Sockets: []nodegraph.Socket{
		{Name: "data", Type: "table", Direction: nodegraph.DirectionIn},
	}})

	err := g.AddConnection(nodegraph.Connection{From: "load", FromSocket: "rows", To: "chart", ToSocket: "data"})
	fmt.Println("connected:", err == nil)

	err = g.AddConnection(nodegraph.Connection{From: "load", FromSocket: "rows", To: "chart", ToSocket: "data"})
	fmt.Println("second:", err)
	// Output:
	// connected: true
	// second: input socket already connected
}

func ExampleGraph_MoveNodes() {
	g := nodegraph.New()
	_ = g.AddNode(nodegraph.Node{ID: "a", Position: vec.New(0, 0)})
	_ = g.AddNode(nodegraph.Node{ID: "b", Position: vec.New(5, 0)})

	moved := g.MoveNodes(map[string]vec.Vec2{"a": vec.New(0, 0), "b": vec.New(200, 0)})
	fmt.Println("moved:", moved)
	// Output:
	// moved: [b]
}
