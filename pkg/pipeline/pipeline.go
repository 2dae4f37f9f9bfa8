// Package pipeline runs the complete connectivity analysis.
//
// This package ties the engines together the same way for every entry
// point: pre-filter the feature store, resolve seeds, build the adjacency
// graph (or evaluate it lazily), search, and optionally stitch multi-ring
// features in the connected subset.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Filter: keep features matching the tag filter and inside the bound
//  2. Build: compute the adjacency graph, through the cache when enabled
//  3. Reach: breadth-first search from the seeds
//  4. Stitch: join the rings of multi-ring reached features (optional)
//
// The batch strategy builds the whole graph and then searches it; the
// streaming strategy computes neighbors only for features it reaches. Both
// produce the same connected subset.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, store, pipeline.Options{
//	    Seeds:    []string{"Lake Sammamish"},
//	    Strategy: pipeline.StrategyBatch,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(result.Features), "connected features")
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/matzehuels/followstreams/pkg/adjacency"
	"github.com/matzehuels/followstreams/pkg/cache"
	"github.com/matzehuels/followstreams/pkg/errors"
	"github.com/matzehuels/followstreams/pkg/feature"
	"github.com/matzehuels/followstreams/pkg/geo"
	"github.com/matzehuels/followstreams/pkg/reach"
)

// Strategy names.
const (
	// StrategyBatch builds the full graph before searching it.
	StrategyBatch = "batch"
	// StrategyStreaming evaluates adjacency on demand during the search.
	StrategyStreaming = "streaming"
)

// DefaultStrategy is the default search strategy.
const DefaultStrategy = StrategyBatch

// predicateIntersects names the default predicate in cache keys.
const predicateIntersects = "intersects"

// ValidStrategies is the set of supported strategies.
var ValidStrategies = map[string]bool{
	StrategyBatch:     true,
	StrategyStreaming: true,
}

// DefaultWorkers returns the default worker pool size, one worker per
// schedulable CPU.
func DefaultWorkers() int { return adjacency.DefaultWorkers() }

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a connectivity run.
// This struct supports JSON serialization for config dumps.
type Options struct {
	// Seed selection. SeedIDs are used as given; each of Seeds must match
	// exactly one feature name; SeedMatch must match exactly one feature.
	// At least one must be set.
	SeedIDs   []int64                    `json:"seed_ids,omitempty"`
	Seeds     []string                   `json:"seeds,omitempty"`
	SeedMatch func(feature.Feature) bool `json:"-"`
	TieBreak  feature.TieBreak           `json:"tie_break"`

	// Pre-filter options
	Tags  []feature.Tag `json:"tags,omitempty"`
	Bound *orb.Bound    `json:"bbox,omitempty"`

	// Search options
	Strategy          string  `json:"strategy,omitempty"`
	Workers           int     `json:"workers,omitempty"`
	NearMissTolerance float64 `json:"near_miss_tolerance,omitempty"`
	Refresh           bool    `json:"refresh,omitempty"`

	// Stitch joins the rings of multi-ring features in the result.
	Stitch bool `json:"stitch,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
	// Predicate replaces geo.Intersects. Graphs built with a custom
	// predicate are never cached.
	Predicate geo.Predicate `json:"-"`
	// Progress receives adjacency build progress. See adjacency.Builder.
	Progress func(done, total int) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Graph is the adjacency graph over the filtered features. Nil for the
	// streaming strategy, which never materializes it.
	Graph *adjacency.Graph

	// Report lists recoverable predicate failures and near misses.
	Report *adjacency.Report

	// Seeds are the resolved seed ids.
	Seeds []int64

	// Reached and Order are the search outcome.
	Reached *reach.ReachedSet
	Order   []int64

	// Features is the connected subset in store order, stitched if requested.
	Features []feature.Feature

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	InputFeatures     int
	Candidates        int
	NodeCount         int
	EdgeCount         int
	Reached           int
	Stitched          int
	PredicateFailures int
	NearMisses        int
	FilterTime        time.Duration
	BuildTime         time.Duration
	ReachTime         time.Duration
	StitchTime        time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GraphHit bool // Whether the adjacency graph came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateStrategy checks that a strategy is valid.
func ValidateStrategy(strategy string) error {
	if !ValidStrategies[strategy] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid strategy: %q (must be one of: batch, streaming)", strategy)
	}
	return nil
}

// ValidateTolerance checks that a near-miss tolerance is usable.
func ValidateTolerance(tol float64) error {
	if tol < 0 || tol != tol {
		return errors.New(errors.ErrCodeInvalidInput, "invalid near-miss tolerance: %v (must be >= 0)", tol)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.SeedIDs) == 0 && len(o.Seeds) == 0 && o.SeedMatch == nil {
		return errors.New(errors.ErrCodeNoSeed, "no seed feature found: no seeds configured")
	}
	for _, name := range o.Seeds {
		if err := errors.ValidateSeedName(name); err != nil {
			return err
		}
	}
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	if o.Workers < 1 {
		o.Workers = DefaultWorkers()
	}
	if err := ValidateTolerance(o.NearMissTolerance); err != nil {
		return err
	}
	if b := o.Bound; b != nil {
		if err := errors.ValidateBound(b.Min[0], b.Min[1], b.Max[0], b.Max[1]); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// IsStreaming returns true if the streaming strategy is selected.
func (o *Options) IsStreaming() bool {
	return o.Strategy == StrategyStreaming
}

// Builder returns the adjacency builder configured by o.
func (o *Options) Builder() adjacency.Builder {
	return adjacency.Builder{
		Workers:           o.Workers,
		Predicate:         o.Predicate,
		NearMissTolerance: o.NearMissTolerance,
		Logger:            o.Logger,
		Progress:          o.Progress,
	}
}

// GraphKeyOpts returns cache key options for the adjacency graph.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		Predicate:         predicateIntersects,
		NearMissTolerance: o.NearMissTolerance,
	}
}

// Cacheable reports whether the graph built under o may be cached.
func (o *Options) Cacheable() bool {
	return o.Predicate == nil
}

// String summarizes the options for logging.
func (o *Options) String() string {
	return fmt.Sprintf("strategy=%s workers=%d tie_break=%s", o.Strategy, o.Workers, o.TieBreak)
}
