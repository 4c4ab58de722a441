// Package vec provides the 2D vector type used for node positions, velocities
// and forces in the layout engine.
//
// [Vec2] is a small value type. Allocating operations ([Vec2.Add],
// [Vec2.Scale], ...) return a new vector and leave the receiver untouched;
// the *InPlace variants mutate the receiver and return it for chaining:
//
//	p := vec.New(3, 4)
//	d := p.Sub(vec.Zero).Normalize() // (0.6, 0.8)
//	p.AddInPlace(d).ScaleInPlace(2)
//
// Normalizing the zero vector yields the zero vector. Callers that divide by
// a length themselves must guard against zero; see [Vec2.Len].
package vec

import (
	"fmt"
	"math"
)

// Zero is the zero vector.
var Zero = Vec2{}

// Vec2 is a 2D vector with float64 components.
// The zero value is the zero vector and is ready to use.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// New returns the vector (x, y).
func New(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// Components returns the x and y components.
func (v Vec2) Components() (float64, float64) { return v.X, v.Y }

// String formats the vector as "(x, y)".
func (v Vec2) String() string { return fmt.Sprintf("(%g, %g)", v.X, v.Y) }

// =============================================================================
// Allocating operations
// =============================================================================

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Negate returns -v.
func (v Vec2) Negate() Vec2 { return Vec2{-v.X, -v.Y} }

// LenSq returns the squared Euclidean length of v.
func (v Vec2) LenSq() float64 { return v.X*v.X + v.Y*v.Y }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Sqrt(v.LenSq()) }

// Normalize returns the unit vector pointing in the direction of v.
// The zero vector normalizes to the zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// IsZero reports whether both components are exactly zero.
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// IsFinite reports whether neither component is NaN or infinite.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// =============================================================================
// In-place operations
// =============================================================================

// AddInPlace sets v to v + o and returns v.
func (v *Vec2) AddInPlace(o Vec2) *Vec2 {
	v.X += o.X
	v.Y += o.Y
	return v
}

// SubInPlace sets v to v - o and returns v.
func (v *Vec2) SubInPlace(o Vec2) *Vec2 {
	v.X -= o.X
	v.Y -= o.Y
	return v
}

// ScaleInPlace sets v to v * s and returns v.
func (v *Vec2) ScaleInPlace(s float64) *Vec2 {
	v.X *= s
	v.Y *= s
	return v
}

// NegateInPlace sets v to -v and returns v.
func (v *Vec2) NegateInPlace() *Vec2 {
	v.X = -v.X
	v.Y = -v.Y
	return v
}

// NormalizeInPlace scales v to unit length and returns v.
// The zero vector is left unchanged.
func (v *Vec2) NormalizeInPlace() *Vec2 {
	*v = v.Normalize()
	return v
}

// =============================================================================
// Helpers
// =============================================================================

// Dot returns the dot product of a and b.
func Dot(a, b Vec2) float64 { return a.X*b.X + a.Y*b.Y }

// DistanceSq returns the squared distance between a and b.
func DistanceSq(a, b Vec2) float64 { return a.Sub(b).LenSq() }

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec2) float64 { return a.Sub(b).Len() }

// Lerp linearly interpolates between a (t=0) and b (t=1).
// t is not clamped.
func Lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// Combine applies fn to the matching components of a and b.
//
//	vec.Combine(a, b, math.Max) // component-wise maximum
func Combine(a, b Vec2, fn func(x, y float64) float64) Vec2 {
	return Vec2{fn(a.X, b.X), fn(a.Y, b.Y)}
}
