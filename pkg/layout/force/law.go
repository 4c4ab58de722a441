package force

import (
	errs "github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/vec"
)

// Spring returns the spring force acting on a from b for the given rest
// length: (a-b) * (|a-b| - rest) / |a-b|.
//
// The result is the gradient of the spring energy at a, so moving a against
// it relaxes the spring: a stretched spring pulls a toward b, a compressed
// one pushes it away. Coincident points (distance below eps) have no defined
// direction and yield the zero vector.
func Spring(a, b vec.Vec2, rest, eps float64) vec.Vec2 {
	d := a.Sub(b)
	l := d.Len()
	if l < eps {
		return vec.Zero
	}
	return d.Scale((l - rest) / l)
}

// ForceLaw computes the pairwise force acting on body a from body b.
// Implementations return the energy gradient at a and must be safe for
// concurrent use.
type ForceLaw interface {
	Name() string
	Pair(a, b vec.Vec2, linked bool) vec.Vec2
}

// SpringLaw connects every pair of bodies with a spring. Linked pairs rest at
// Optimal, all other pairs at NonEdge.
type SpringLaw struct {
	Optimal float64
	NonEdge float64
	Epsilon float64
}

// Name implements ForceLaw.
func (SpringLaw) Name() string { return LawSpring }

// Pair implements ForceLaw.
func (l SpringLaw) Pair(a, b vec.Vec2, linked bool) vec.Vec2 {
	if linked {
		return Spring(a, b, l.Optimal, l.Epsilon)
	}
	return Spring(a, b, l.NonEdge, l.Epsilon)
}

// InverseSquareLaw combines linear attraction along links with
// inverse-square repulsion between every pair. An isolated linked pair is in
// equilibrium at distance Optimal.
type InverseSquareLaw struct {
	Optimal   float64
	Stiffness float64
	Epsilon   float64
}

// Name implements ForceLaw.
func (InverseSquareLaw) Name() string { return LawInverseSquare }

// Pair implements ForceLaw.
func (l InverseSquareLaw) Pair(a, b vec.Vec2, linked bool) vec.Vec2 {
	d := a.Sub(b)
	dist := d.Len()
	if dist < l.Epsilon {
		return vec.Zero
	}
	// Repulsion magnitude k*D³/dist², directed from b to a.
	d3 := l.Optimal * l.Optimal * l.Optimal
	f := d.Scale(-l.Stiffness * d3 / (dist * dist * dist))
	if linked {
		f.AddInPlace(d.Scale(l.Stiffness))
	}
	return f
}

// NewForceLaw returns the law named by cfg.Law. cfg must have defaults applied.
func NewForceLaw(cfg Config) (ForceLaw, error) {
	switch cfg.Law {
	case LawSpring:
		return SpringLaw{
			Optimal: cfg.OptimalDistance,
			NonEdge: cfg.NonEdgeFactor * cfg.OptimalDistance,
			Epsilon: cfg.Epsilon,
		}, nil
	case LawInverseSquare:
		return InverseSquareLaw{
			Optimal:   cfg.OptimalDistance,
			Stiffness: cfg.Stiffness,
			Epsilon:   cfg.Epsilon,
		}, nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown force law %q", cfg.Law)
	}
}
