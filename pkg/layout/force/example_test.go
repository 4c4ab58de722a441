package force_test

import (
	"context"
	"fmt"
	"math"

	"github.com/matzehuels/forcelayout/pkg/layout/force"
	"github.com/matzehuels/forcelayout/pkg/vec"
)

func ExampleRun() {
	// Two connected nodes placed too close together.
	nodes := []force.Node[string]{{ID: "source"}, {ID: "sink"}}
	edges := []force.Edge{{From: "source", To: "sink"}}
	positions := map[string]vec.Vec2{
		"source": vec.New(0, 0),
		"sink":   vec.New(100, 0),
	}

	snap, err := force.NewSnapshot(nodes, edges, positions)
	if err != nil {
		panic(err)
	}
	out, err := force.Run(context.Background(), snap, force.Config{OptimalDistance: 200})
	if err != nil {
		panic(err)
	}

	for r := range out.Results() {
		fmt.Println(r.ID, r.Position)
	}
	fmt.Println("state:", out.State)
	fmt.Println("iterations:", out.Iterations)
	// Output:
	// source (-50, 0)
	// sink (150, 0)
	// state: converged
	// iterations: 2
}

func ExampleNewSnapshot_partial() {
	// Only nodes with a position take part; the rest keep theirs.
	nodes := []force.Node[int]{{ID: "a"}, {ID: "b"}, {ID: "anchor"}}
	edges := []force.Edge{{From: "a", To: "b"}, {From: "b", To: "anchor"}}
	positions := map[string]vec.Vec2{"a": vec.New(0, 0), "b": vec.New(10, 0)}

	snap, err := force.NewSnapshot(nodes, edges, positions)
	if err != nil {
		panic(err)
	}
	fmt.Println("bodies:", snap.Len())
	fmt.Println("links:", len(snap.Links))
	fmt.Println("excluded:", snap.Excluded)
	// Output:
	// bodies: 2
	// links: 1
	// excluded: [anchor]
}

func ExampleSpring() {
	// A stretched spring pulls a toward b; the engine moves against the result.
	f := force.Spring(vec.New(0, 0), vec.New(300, 0), 200, force.DefaultEpsilon)
	fmt.Println(f)
	fmt.Println(math.Round(f.Len()))
	// Output:
	// (-100, 0)
	// 100
}
