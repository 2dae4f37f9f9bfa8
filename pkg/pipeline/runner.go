package pipeline

import (
	"context"
	"fmt"
	stdio "io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/followstreams/pkg/adjacency"
	"github.com/matzehuels/followstreams/pkg/cache"
	"github.com/matzehuels/followstreams/pkg/errors"
	"github.com/matzehuels/followstreams/pkg/feature"
	"github.com/matzehuels/followstreams/pkg/io"
	"github.com/matzehuels/followstreams/pkg/observability"
	"github.com/matzehuels/followstreams/pkg/reach"
	"github.com/matzehuels/followstreams/pkg/stitch"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	// Cache stores built graphs. Nil disables caching.
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL applies to cached graphs. Zero means cache.TTLGraph.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, graphs are always built.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
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

// Execute runs the complete filter → build → reach → stitch pipeline.
func (r *Runner) Execute(ctx context.Context, store *feature.Store, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}
	logger := r.Logger.With("run", result.RunID[:8])
	result.Stats.InputFeatures = store.Len()

	// Stage 1: Filter
	filterStart := time.Now()
	work := r.Filter(store, opts)
	result.Stats.FilterTime = time.Since(filterStart)
	result.Stats.Candidates = work.Len()
	logger.Info("filtered features",
		"input", store.Len(),
		"candidates", work.Len(),
		"duration", result.Stats.FilterTime)

	seeds, err := r.ResolveSeeds(work, opts)
	if err != nil {
		return nil, fmt.Errorf("seeds: %w", err)
	}
	result.Seeds = seeds
	logger.Debug("resolved seeds", "seeds", seeds)

	// Stages 2 and 3: Build and Reach
	var res *reach.Result
	if opts.IsStreaming() {
		res, err = r.stream(ctx, work, seeds, opts, result)
	} else {
		res, err = r.batch(ctx, work, seeds, opts, result)
	}
	if err != nil {
		return nil, err
	}
	result.Reached = res.Reached
	result.Order = res.Order
	result.Stats.Reached = res.Reached.Len()
	result.Features = reach.Apply(work, res.Reached)
	if result.Report != nil {
		result.Stats.PredicateFailures = len(result.Report.PredicateFailures)
		result.Stats.NearMisses = len(result.Report.NearMisses)
	}

	logger.Info("reached features",
		"strategy", opts.Strategy,
		"seeds", len(seeds),
		"reached", result.Stats.Reached,
		"failures", result.Stats.PredicateFailures,
		"duration", result.Stats.ReachTime)

	// Stage 4: Stitch
	if opts.Stitch {
		stitchStart := time.Now()
		stitched, n, err := r.Stitch(ctx, result.Features, nil)
		if err != nil {
			return nil, fmt.Errorf("stitch: %w", err)
		}
		result.Features = stitched
		result.Stats.Stitched = n
		result.Stats.StitchTime = time.Since(stitchStart)
		logger.Info("stitched rings",
			"features", n,
			"duration", result.Stats.StitchTime)
	}

	return result, nil
}

// Filter applies the tag filter and bound pre-filter to store.
func (r *Runner) Filter(store *feature.Store, opts Options) *feature.Store {
	work := store
	if len(opts.Tags) > 0 {
		work = work.Filter(feature.MatchAny(opts.Tags))
	}
	if opts.Bound != nil {
		work = work.WithinBound(*opts.Bound)
	}
	return work
}

// ResolveSeeds returns the seed ids selected by opts, deduplicated, in the
// order SeedIDs, Seeds, SeedMatch.
func (r *Runner) ResolveSeeds(s *feature.Store, opts Options) ([]int64, error) {
	var seeds []int64
	for _, id := range opts.SeedIDs {
		if !s.Has(id) {
			return nil, errors.New(errors.ErrCodeUnknownSeed, "seed %d is not among the candidate features", id)
		}
		seeds = append(seeds, id)
	}
	if len(opts.Seeds) > 0 {
		ids, err := feature.SeedsByName(s, opts.Seeds, opts.TieBreak)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, ids...)
	}
	if opts.SeedMatch != nil {
		id, err := feature.SeedMatching(s, "seed predicate", opts.SeedMatch, opts.TieBreak)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, id)
	}
	if len(seeds) == 0 {
		return nil, errors.New(errors.ErrCodeNoSeed, "no seed feature found")
	}
	slices.Sort(seeds)
	return slices.Compact(seeds), nil
}

func (r *Runner) batch(ctx context.Context, work *feature.Store, seeds []int64, opts Options, result *Result) (*reach.Result, error) {
	hooks := observability.Pipeline()

	buildStart := time.Now()
	hooks.OnBuildStart(ctx, work.Len())
	g, report, hit, err := r.BuildWithCacheInfo(ctx, work.Features(), opts)
	result.Stats.BuildTime = time.Since(buildStart)
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, 0, 0, result.Stats.BuildTime, err)
		return nil, fmt.Errorf("build: %w", err)
	}
	hooks.OnBuildComplete(ctx, g.NodeCount(), g.EdgeCount(), len(report.PredicateFailures), result.Stats.BuildTime, nil)
	result.Graph = g
	result.Report = report
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.GraphHit = hit

	r.Logger.Info("built adjacency graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cached", hit,
		"duration", result.Stats.BuildTime)

	reachStart := time.Now()
	hooks.OnReachStart(ctx, StrategyBatch, len(seeds))
	res, err := reach.Reach(g, seeds)
	result.Stats.ReachTime = time.Since(reachStart)
	hooks.OnReachComplete(ctx, StrategyBatch, reachedLen(res), result.Stats.ReachTime, err)
	if err != nil {
		return nil, fmt.Errorf("reach: %w", err)
	}
	return res, nil
}

func (r *Runner) stream(ctx context.Context, work *feature.Store, seeds []int64, opts Options, result *Result) (*reach.Result, error) {
	hooks := observability.Pipeline()

	lazy, err := adjacency.NewLazy(work.Features(), opts.Builder())
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	reachStart := time.Now()
	hooks.OnReachStart(ctx, StrategyStreaming, len(seeds))
	res, err := reach.Stream(ctx, seeds, lazy.Neighbors, reach.StreamOptions{
		Workers: opts.Workers,
		Exists:  lazy.Has,
		Logger:  opts.Logger,
	})
	result.Stats.ReachTime = time.Since(reachStart)
	hooks.OnReachComplete(ctx, StrategyStreaming, reachedLen(res), result.Stats.ReachTime, err)
	result.Report = lazy.Report()
	if err != nil {
		return nil, fmt.Errorf("reach: %w", err)
	}
	return res, nil
}

// BuildWithCacheInfo builds the adjacency graph with caching and returns
// cache hit info. The cache key is the content hash of the features'
// GeoJSON encoding together with the builder options.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, features []feature.Feature, opts Options) (*adjacency.Graph, *adjacency.Report, bool, error) {
	r.applyLogger(&opts)

	var cacheKey string
	if r.Cache != nil && opts.Cacheable() {
		sum, err := cache.Digest(func(w stdio.Writer) error {
			return feature.WriteGeoJSON(w, features)
		})
		if err == nil {
			cacheKey = r.Keyer.GraphKey(sum, opts.GraphKeyOpts())
		}
	}
	hooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if cacheKey != "" && !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		switch {
		case err != nil:
			r.Logger.Warn("cache read failed", "error", err)
		case hit:
			g, report, err := io.Unmarshal(data)
			if err == nil {
				hooks.OnCacheHit(ctx, "graph")
				report.Pairs = len(features) * (len(features) - 1) / 2
				return g, report, true, nil
			}
			r.Logger.Debug("discarding unreadable cache entry", "error", err)
		}
		hooks.OnCacheMiss(ctx, "graph")
	}

	b := opts.Builder()
	g, report, err := b.Build(ctx, features)
	if err != nil {
		return nil, nil, false, err
	}

	if cacheKey != "" {
		if data, err := io.Marshal(g, report); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, r.ttl()); err != nil {
				r.Logger.Warn("cache write failed", "error", err)
			} else {
				hooks.OnCacheSet(ctx, "graph", len(data))
			}
		}
	}

	return g, report, false, nil // Cache miss
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards the cache hit info.
func (r *Runner) Build(ctx context.Context, features []feature.Feature, opts Options) (*adjacency.Graph, *adjacency.Report, error) {
	g, report, _, err := r.BuildWithCacheInfo(ctx, features, opts)
	return g, report, err
}

// Stitch joins the rings of every multi-ring feature in fs. When ids is
// non-empty only those features are stitched. It returns the features in
// their original order and the number that changed.
func (r *Runner) Stitch(ctx context.Context, fs []feature.Feature, ids []int64) ([]feature.Feature, int, error) {
	start := time.Now()
	out := make([]feature.Feature, len(fs))
	changed := 0
	for i, f := range fs {
		out[i] = f
		if len(ids) > 0 && !slices.Contains(ids, f.ID) {
			continue
		}
		if len(stitch.Rings(f.Geometry)) <= 1 {
			continue
		}
		s, err := stitch.Feature(f)
		if err != nil {
			observability.Pipeline().OnStitchComplete(ctx, changed, time.Since(start), err)
			return nil, 0, err
		}
		out[i] = s
		changed++
	}
	observability.Pipeline().OnStitchComplete(ctx, changed, time.Since(start), nil)
	return out, changed, nil
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

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLGraph
}

func reachedLen(res *reach.Result) int {
	if res == nil {
		return 0
	}
	return res.Reached.Len()
}
