package adjacency

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/followstreams/pkg/errors"
	"github.com/matzehuels/followstreams/pkg/feature"
	"github.com/matzehuels/followstreams/pkg/geo"
	"github.com/matzehuels/followstreams/pkg/observability"
)

// DefaultWorkers returns the default worker pool size, one worker per
// schedulable CPU.
func DefaultWorkers() int { return runtime.GOMAXPROCS(0) }

// Pair identifies an unordered feature pair.
type Pair struct {
	A, B int64
}

// PredicateFailure records a pair whose predicate returned an error.
type PredicateFailure struct {
	A, B int64
	Err  error
}

func (f PredicateFailure) Error() string {
	return fmt.Sprintf("features %d and %d: %v", f.A, f.B, f.Err)
}

func (f PredicateFailure) Unwrap() error { return f.Err }

// Report summarizes the non-fatal outcomes of a build.
type Report struct {
	// Pairs is the number of predicate evaluations performed.
	Pairs int
	// PredicateFailures lists pairs treated as non-adjacent because the
	// predicate failed, in row order.
	PredicateFailures []PredicateFailure
	// NearMisses lists non-intersecting pairs whose bounds come within the
	// near-miss tolerance. Empty when the tolerance is zero.
	NearMisses []Pair
}

// Builder computes adjacency graphs. The zero value is usable: it runs
// [DefaultWorkers] workers with [geo.Intersects] and no near-miss detection.
type Builder struct {
	// Workers bounds the number of concurrently evaluated rows.
	// Values below 1 select DefaultWorkers.
	Workers int
	// Predicate decides adjacency. Nil selects geo.Intersects.
	Predicate geo.Predicate
	// NearMissTolerance enables near-miss reporting when positive.
	NearMissTolerance float64
	// Logger receives failure warnings. Nil selects log.Default().
	Logger *log.Logger
	// Progress, if set, is called from worker goroutines after each row
	// with the number of finished rows and the total. It must be safe for
	// concurrent use.
	Progress func(done, total int)
}

type row struct {
	partners   []int64
	failures   []PredicateFailure
	nearMisses []Pair
}

// Build evaluates every unordered pair of features and returns the
// resulting graph. Every feature becomes a node, including isolated ones.
//
// Feature ids must be unique. The returned graph is independent of the
// worker count and of task scheduling.
func (b *Builder) Build(ctx context.Context, features []feature.Feature) (*Graph, *Report, error) {
	seen := make(map[int64]bool, len(features))
	for _, f := range features {
		if seen[f.ID] {
			return nil, nil, errors.New(errors.ErrCodeDuplicateFeature, "duplicate feature id %d", f.ID)
		}
		seen[f.ID] = true
	}

	logger := b.logger()
	pred := b.predicate()
	start := time.Now()

	rows := make([]row, len(features))
	var finished atomic.Int64
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(b.workers())
	for i := range features {
		if egctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := b.evaluateRow(egctx, features, i, pred, &rows[i]); err != nil {
				return err
			}
			if b.Progress != nil {
				b.Progress(int(finished.Add(1)), len(features))
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Merge runs after the barrier, on this goroutine only.
	g := New()
	report := &Report{Pairs: len(features) * (len(features) - 1) / 2}
	hooks := observability.Geometry()
	for i, f := range features {
		g.AddNode(f.ID)
		for _, p := range rows[i].partners {
			g.AddEdge(f.ID, p)
		}
		for _, pf := range rows[i].failures {
			logger.Warn("predicate failed, treating pair as not adjacent", "a", pf.A, "b", pf.B, "error", pf.Err)
			hooks.OnPredicateFailure(ctx, pf.A, pf.B, pf.Err)
		}
		for _, nm := range rows[i].nearMisses {
			hooks.OnNearMiss(ctx, nm.A, nm.B)
		}
		report.PredicateFailures = append(report.PredicateFailures, rows[i].failures...)
		report.NearMisses = append(report.NearMisses, rows[i].nearMisses...)
	}

	logger.Debug("built adjacency graph",
		"features", len(features),
		"edges", g.EdgeCount(),
		"failures", len(report.PredicateFailures),
		"duration", time.Since(start))
	return g, report, nil
}

func (b *Builder) evaluateRow(ctx context.Context, features []feature.Feature, i int, pred geo.Predicate, out *row) (err error) {
	a := features[i]
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeWorkerFailure, "adjacency task for feature %d panicked: %v", a.ID, r)
		}
	}()

	for _, f := range features[i+1:] {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, perr := pred(a.Geometry, f.Geometry)
		switch {
		case perr != nil:
			out.failures = append(out.failures, PredicateFailure{A: a.ID, B: f.ID, Err: perr})
		case ok:
			out.partners = append(out.partners, f.ID)
		case geo.NearMiss(a.Geometry, f.Geometry, b.NearMissTolerance):
			out.nearMisses = append(out.nearMisses, Pair{A: a.ID, B: f.ID})
		}
	}
	return nil
}

func (b *Builder) workers() int {
	if b.Workers < 1 {
		return DefaultWorkers()
	}
	return b.Workers
}

func (b *Builder) predicate() geo.Predicate {
	if b.Predicate == nil {
		return geo.Intersects
	}
	return b.Predicate
}

func (b *Builder) logger() *log.Logger {
	if b.Logger == nil {
		return log.Default()
	}
	return b.Logger
}
