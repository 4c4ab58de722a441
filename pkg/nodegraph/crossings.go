package nodegraph

import "github.com/matzehuels/forcelayout/pkg/vec"

// CountCrossings returns the number of pairs of connections whose straight
// segments intersect at the current node positions. Connections sharing a
// node never count as crossing. Duplicate connections between the same pair
// of nodes are counted once.
//
// This runs in O(E²) and is meant for reporting layout quality, not for use
// inside an optimization loop.
func CountCrossings(g *Graph) int {
	type segment struct {
		from, to string
		a, b     vec.Vec2
	}
	seen := make(map[[2]string]bool, len(g.connections))
	segs := make([]segment, 0, len(g.connections))
	for _, c := range g.connections {
		key := [2]string{min(c.From, c.To), max(c.From, c.To)}
		if seen[key] {
			continue
		}
		seen[key] = true
		segs = append(segs, segment{c.From, c.To, g.nodes[c.From].Position, g.nodes[c.To].Position})
	}

	crossings := 0
	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			s, t := segs[i], segs[j]
			if s.from == t.from || s.from == t.to || s.to == t.from || s.to == t.to {
				continue
			}
			if segmentsIntersect(s.a, s.b, t.a, t.b) {
				crossings++
			}
		}
	}
	return crossings
}

// segmentsIntersect reports whether segments p1p2 and q1q2 properly cross.
// Touching endpoints and collinear overlaps do not count.
func segmentsIntersect(p1, p2, q1, q2 vec.Vec2) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)
	return d1*d2 < 0 && d3*d4 < 0
}

// orientation is the z component of (b-a)×(c-a).
func orientation(a, b, c vec.Vec2) float64 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	return ab.X*ac.Y - ab.Y*ac.X
}
