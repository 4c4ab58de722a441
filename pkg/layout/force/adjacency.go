package force

// Adjacency partitions, for every body, the other bodies of a snapshot into
// the ones it is linked to and the ones it is not. Bodies are referred to by
// [Body.Index]. It is built once per run and read concurrently afterwards.
//
// For every body i: EdgeSet(i) and NonEdgeSet(i) are disjoint, neither
// contains i, and together with i they cover every body. Both relations are
// symmetric.
type Adjacency struct {
	n        int
	linked   []bool // n*n matrix, row-major
	edges    [][]int
	nonEdges [][]int
}

// BuildAdjacency derives the adjacency of s from its links.
func BuildAdjacency[P any](s *Snapshot[P]) *Adjacency {
	n := len(s.Bodies)
	a := &Adjacency{
		n:        n,
		linked:   make([]bool, n*n),
		edges:    make([][]int, n),
		nonEdges: make([][]int, n),
	}
	for _, l := range s.Links {
		i, j := l.A.index, l.B.index
		if i == j || a.linked[i*n+j] {
			continue
		}
		a.linked[i*n+j] = true
		a.linked[j*n+i] = true
	}
	for i := range n {
		for j := range n {
			switch {
			case i == j:
			case a.linked[i*n+j]:
				a.edges[i] = append(a.edges[i], j)
			default:
				a.nonEdges[i] = append(a.nonEdges[i], j)
			}
		}
	}
	return a
}

// Len returns the number of bodies covered.
func (a *Adjacency) Len() int { return a.n }

// Linked reports whether bodies i and j share a link.
func (a *Adjacency) Linked(i, j int) bool { return a.linked[i*a.n+j] }

// EdgeSet returns the indices of the bodies linked to i, ascending.
// The slice must not be modified.
func (a *Adjacency) EdgeSet(i int) []int { return a.edges[i] }

// NonEdgeSet returns the indices of the bodies other than i that are not
// linked to it, ascending. The slice must not be modified.
func (a *Adjacency) NonEdgeSet(i int) []int { return a.nonEdges[i] }

// Degree returns the number of links of body i.
func (a *Adjacency) Degree(i int) int { return len(a.edges[i]) }
