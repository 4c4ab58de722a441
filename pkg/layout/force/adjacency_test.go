package force

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/forcelayout/pkg/vec"
)

// randomSnapshot decodes n bodies on a grid and one edge per raw value.
func randomSnapshot(n int, raw []int) *Snapshot[struct{}] {
	nodes := make([]Node[struct{}], n)
	positions := make(map[string]vec.Vec2, n)
	for i := range n {
		id := fmt.Sprintf("n%d", i)
		nodes[i] = Node[struct{}]{ID: id}
		positions[id] = vec.New(float64(i%4)*10, float64(i/4)*10)
	}
	edges := make([]Edge, 0, len(raw))
	for _, r := range raw {
		edges = append(edges, Edge{From: nodes[r%n].ID, To: nodes[(r/n)%n].ID})
	}
	s, err := NewSnapshot(nodes, edges, positions)
	if err != nil {
		panic(err)
	}
	return s
}

func TestAdjacencyInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("edge and non-edge sets partition the other bodies", prop.ForAll(
		func(n int, raw []int) bool {
			s := randomSnapshot(n, raw)
			adj := BuildAdjacency(s)
			for i := range n {
				seen := make(map[int]int, n)
				for _, j := range adj.EdgeSet(i) {
					seen[j]++
				}
				for _, j := range adj.NonEdgeSet(i) {
					seen[j]++
				}
				if seen[i] != 0 || len(seen) != n-1 {
					return false
				}
				for _, c := range seen {
					if c != 1 {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 12),
		gen.SliceOf(gen.IntRange(0, 143)),
	))

	properties.Property("adjacency is symmetric", prop.ForAll(
		func(n int, raw []int) bool {
			adj := BuildAdjacency(randomSnapshot(n, raw))
			for i := range n {
				for j := range n {
					if adj.Linked(i, j) != adj.Linked(j, i) {
						return false
					}
				}
				for _, j := range adj.EdgeSet(i) {
					if !adj.Linked(j, i) {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 12),
		gen.SliceOf(gen.IntRange(0, 143)),
	))

	properties.Property("degrees sum to twice the link count", prop.ForAll(
		func(n int, raw []int) bool {
			s := randomSnapshot(n, raw)
			adj := BuildAdjacency(s)
			total := 0
			for i := range n {
				total += adj.Degree(i)
			}
			return total == 2*len(s.Links)
		},
		gen.IntRange(1, 12),
		gen.SliceOf(gen.IntRange(0, 143)),
	))

	properties.TestingRun(t)
}

func TestAdjacencyChain(t *testing.T) {
	s := randomSnapshot(3, []int{0*3 + 1, 1*3 + 2}) // n0-n1, n1-n2
	adj := BuildAdjacency(s)

	if adj.Len() != 3 {
		t.Fatalf("Len = %d, want 3", adj.Len())
	}
	if got := adj.EdgeSet(1); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("EdgeSet(1) = %v, want [0 2]", got)
	}
	if got := adj.NonEdgeSet(0); len(got) != 1 || got[0] != 2 {
		t.Errorf("NonEdgeSet(0) = %v, want [2]", got)
	}
	if adj.Linked(0, 2) {
		t.Error("n0 and n2 should not be linked")
	}
}
