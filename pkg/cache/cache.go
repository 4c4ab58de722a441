// Package cache stores computed layouts so that re-running auto-layout on an
// unchanged graph with unchanged options is free.
//
// Three backends implement [Cache]: [FileCache] for the CLI (one snappy
// compressed file per entry under the user cache directory), [RedisCache]
// for sharing layouts between machines, and [NullCache] when caching is
// disabled. Keys come from a [Keyer]; [ScopedKeyer] namespaces them.
package cache

import (
	"context"
	"time"
)

// TTLLayout is how long a computed layout stays valid.
const TTLLayout = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key of a layout computed for the graph with the
	// given content hash under the given options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts holds everything besides the graph that affects a layout.
type LayoutKeyOpts struct {
	Params       any      `json:"params"` // Engine configuration, defaults applied
	Only         []string `json:"only,omitempty"`
	JitterSeed   uint64   `json:"jitter_seed"`
	JitterRadius float64  `json:"jitter_radius"`
}

// DefaultKeyer produces keys of the form "layout:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}
