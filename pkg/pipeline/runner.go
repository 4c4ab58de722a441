package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcelayout/pkg/cache"
	errs "github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/nodegraph"
	"github.com/matzehuels/forcelayout/pkg/observability"
)

// cacheKeyType labels cache events for observability hooks.
const cacheKeyType = "layout"

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options and graphs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute lays out g and applies the result to it.
//
// A run that hit its iteration cap still moves the nodes; the result is
// returned together with the NOT_CONVERGED error. Any other error,
// CANCELED included, leaves g untouched and returns a nil result.
func (r *Runner) Execute(ctx context.Context, g *nodegraph.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Graph: g,
		Stats: Stats{
			NodeCount:       g.NodeCount(),
			ConnectionCount: g.ConnectionCount(),
			CrossingsBefore: nodegraph.CountCrossings(g),
		},
	}
	if data, err := graph.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	start := time.Now()
	l, hit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil && !errs.Is(err, errs.ErrCodeNotConverged) {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(start)
	result.CacheInfo.LayoutHit = hit

	result.Moved = Apply(g, l)
	result.Stats.CrossingsAfter = nodegraph.CountCrossings(g)

	r.Logger.Info("applied layout",
		"nodes", result.Stats.NodeCount,
		"moved", len(result.Moved),
		"crossings", result.Stats.CrossingsAfter,
		"state", l.State,
		"iterations", l.Iterations,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	return result, err
}

// LayoutWithCacheInfo computes the layout of g with caching and returns
// cache hit info. g is not modified.
//
// Only converged layouts are written to the cache. On NOT_CONVERGED or
// CANCELED the partial layout is returned with the error; Execute keeps it
// only for NOT_CONVERGED.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *nodegraph.Graph, opts Options) (graph.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.Layout{}, false, err
	}

	// Compute cache key
	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return graph.Layout{}, false, errs.Wrap(errs.ErrCodeInternal, err, "serialize graph for cache key")
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(graphData), opts.LayoutKeyOpts())
	hooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil {
			r.Logger.Warn("cache lookup failed", "err", err)
		}
		if err == nil && hit {
			cached, err := graph.UnmarshalLayout(data)
			if err == nil {
				hooks.OnCacheHit(ctx, cacheKeyType)
				r.Logger.Debug("layout cache hit", "key", cacheKey)
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
			r.Logger.Debug("discarding unreadable cache entry", "key", cacheKey, "err", err)
		}
		hooks.OnCacheMiss(ctx, cacheKeyType)
	}

	l, err := ComputeLayout(ctx, g, opts)
	if err != nil {
		return l, false, err
	}

	// Cache the result
	if data, err := graph.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}

	return l, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, g *nodegraph.Graph, opts Options) (graph.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return l, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
