package force

import "github.com/matzehuels/forcelayout/pkg/vec"

// Node is the caller's description of one graph node offered for layout.
// Whether it becomes a [Body] depends on the position map passed to
// [NewSnapshot].
type Node[P any] struct {
	ID      string  // Unique, non-empty identifier
	Payload P       // Caller data returned unchanged in [Result]
	Pinned  bool    // Pinned nodes act on others but never move
	Mass    float64 // Optional; zero means 1
}

// Edge is an undirected connection between two node IDs.
// Direction is irrelevant to the layout; From/To mirror the editor's wiring.
type Edge struct {
	From string
	To   string
}

// Body is the engine's representation of one node during a run.
//
// Bodies are created by [NewSnapshot], mutated in place by [Run] and never
// shared between runs. Payload is opaque to the engine.
type Body[P any] struct {
	ID       string
	Position vec.Vec2
	// Velocity is the displacement of the last iteration for the gradient
	// integrator and the physical velocity for the semi-implicit one.
	Velocity vec.Vec2
	// Force is the net force accumulated in the current iteration.
	Force vec.Vec2
	// InvMass scales displacement; 0 pins the body, default 1.
	InvMass float64
	Payload P

	index int
}

// Index returns the body's position in [Snapshot.Bodies].
func (b *Body[P]) Index() int { return b.index }

// Pinned reports whether the body is immovable.
func (b *Body[P]) Pinned() bool { return b.InvMass == 0 }

// Link connects two distinct bodies of the same snapshot.
type Link[P any] struct {
	A, B *Body[P]
}

// Result is the final state of one body, handed back to the caller.
type Result[P any] struct {
	ID       string
	Position vec.Vec2
	Payload  P
}
