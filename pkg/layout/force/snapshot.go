package force

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync/atomic"

	errs "github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/vec"
)

var (
	// ErrInvalidNodeID is returned by [NewSnapshot] when a node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [NewSnapshot] when two nodes share an ID.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownEndpoint is returned by [NewSnapshot] when an edge names a
	// node that is not part of the graph at all.
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")

	// ErrInvalidPosition is returned by [NewSnapshot] for NaN or infinite positions.
	ErrInvalidPosition = errors.New("position must be finite")

	// ErrSnapshotInUse is returned by [Run] when the snapshot is already
	// being laid out by another run.
	ErrSnapshotInUse = errors.New("snapshot is already in use by another run")
)

const (
	// DefaultJitterSeed seeds the jitter of coincident positions.
	DefaultJitterSeed = uint64(42)

	// DefaultJitterRadius is the offset applied to a coincident position.
	DefaultJitterRadius = 1.0
)

// Snapshot is the read model a run operates on: the bodies to lay out and
// the links between them. It is built once from caller data, never aliases
// caller objects (only Payload is carried by value) and is owned by at most
// one [Run] at a time.
type Snapshot[P any] struct {
	// Bodies in the order their nodes were supplied.
	Bodies []*Body[P]
	// Links between bodies; no self-loops, no duplicates.
	Links []Link[P]
	// Excluded lists node IDs that had no position and keep their own.
	Excluded []string
	// Jittered lists body IDs whose start position was nudged apart from an
	// identical one.
	Jittered []string

	index map[string]*Body[P]
	inUse atomic.Bool
}

// SnapshotOption configures [NewSnapshot].
type SnapshotOption func(*snapshotSettings)

type snapshotSettings struct {
	seed   uint64
	radius float64
}

// WithJitter sets the seed and radius used to separate bodies that start at
// exactly the same position. A radius of 0 disables jitter.
func WithJitter(seed uint64, radius float64) SnapshotOption {
	return func(s *snapshotSettings) {
		s.seed = seed
		s.radius = radius
	}
}

// NewSnapshot builds the layout read model from the caller's nodes and edges.
//
// A node becomes a [Body] only when its ID is present in positions; the body
// starts at a copy of that position. Edges whose endpoints both became bodies
// become links. Edges touching an excluded node are dropped; edges naming an
// ID absent from nodes are rejected with [ErrUnknownEndpoint]. Self-loops and
// repeated edges (in either direction) are collapsed.
//
// All returned errors carry [errs.ErrCodeInvalidInput].
func NewSnapshot[P any](nodes []Node[P], edges []Edge, positions map[string]vec.Vec2, opts ...SnapshotOption) (*Snapshot[P], error) {
	settings := snapshotSettings{seed: DefaultJitterSeed, radius: DefaultJitterRadius}
	for _, opt := range opts {
		opt(&settings)
	}

	known := make(map[string]bool, len(nodes))
	s := &Snapshot[P]{index: make(map[string]*Body[P], len(positions))}

	for _, n := range nodes {
		if n.ID == "" {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, ErrInvalidNodeID, "snapshot")
		}
		if known[n.ID] {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, ErrDuplicateNodeID, "node %q", n.ID)
		}
		known[n.ID] = true

		pos, ok := positions[n.ID]
		if !ok {
			s.Excluded = append(s.Excluded, n.ID)
			continue
		}
		if !pos.IsFinite() {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, ErrInvalidPosition, "node %q at %v", n.ID, pos)
		}

		b := &Body[P]{
			ID:       n.ID,
			Position: pos,
			InvMass:  invMass(n),
			Payload:  n.Payload,
			index:    len(s.Bodies),
		}
		s.Bodies = append(s.Bodies, b)
		s.index[n.ID] = b
	}

	seen := make(map[[2]int]bool, len(edges))
	for _, e := range edges {
		if !known[e.From] || !known[e.To] {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, ErrUnknownEndpoint, "edge %s→%s", e.From, e.To)
		}
		a, aok := s.index[e.From]
		b, bok := s.index[e.To]
		if !aok || !bok || a == b {
			continue
		}
		key := [2]int{min(a.index, b.index), max(a.index, b.index)}
		if seen[key] {
			continue
		}
		seen[key] = true
		s.Links = append(s.Links, Link[P]{A: a, B: b})
	}

	if settings.radius > 0 {
		s.jitter(settings.seed, settings.radius)
	}
	return s, nil
}

func invMass[P any](n Node[P]) float64 {
	switch {
	case n.Pinned:
		return 0
	case n.Mass > 0:
		return 1 / n.Mass
	default:
		return 1
	}
}

// jitter nudges bodies that share an exact position with another body onto a
// random point of the circle of the given radius around it. Pinned bodies are
// placed first so a movable body is the one that moves. The sequence is
// deterministic for a given seed and body order.
func (s *Snapshot[P]) jitter(seed uint64, radius float64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	taken := make(map[vec.Vec2]bool, len(s.Bodies))

	for _, b := range s.Bodies {
		if b.Pinned() {
			taken[b.Position] = true
		}
	}
	for _, b := range s.Bodies {
		if b.Pinned() {
			continue
		}
		if taken[b.Position] {
			origin := b.Position
			for taken[b.Position] {
				theta := rng.Float64() * 2 * math.Pi
				b.Position = origin.Add(vec.New(math.Cos(theta), math.Sin(theta)).Scale(radius))
			}
			s.Jittered = append(s.Jittered, b.ID)
		}
		taken[b.Position] = true
	}
}

// Len returns the number of bodies.
func (s *Snapshot[P]) Len() int { return len(s.Bodies) }

// Body returns the body with the given ID.
func (s *Snapshot[P]) Body(id string) (*Body[P], bool) {
	b, ok := s.index[id]
	return b, ok
}

// claim marks the snapshot as owned by a run. It reports false when another
// run already owns it.
func (s *Snapshot[P]) claim() bool { return s.inUse.CompareAndSwap(false, true) }

func (s *Snapshot[P]) release() { s.inUse.Store(false) }
