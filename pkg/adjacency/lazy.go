package adjacency

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/followstreams/pkg/errors"
	"github.com/matzehuels/followstreams/pkg/feature"
	"github.com/matzehuels/followstreams/pkg/geo"
	"github.com/matzehuels/followstreams/pkg/observability"
)

// Lazy computes neighbors on demand by scanning every other feature.
// It is safe for concurrent use.
type Lazy struct {
	features []feature.Feature
	index    map[int64]int
	pred     geo.Predicate
	tol      float64
	logger   *log.Logger

	mu         sync.Mutex
	pairs      int
	failures   map[Pair]PredicateFailure
	nearMisses map[Pair]bool
}

// NewLazy creates a lazy neighbor source over features. Zero-valued fields of
// b select the same defaults as [Builder.Build]; Workers is ignored.
func NewLazy(features []feature.Feature, b Builder) (*Lazy, error) {
	index := make(map[int64]int, len(features))
	for i, f := range features {
		if _, dup := index[f.ID]; dup {
			return nil, errors.New(errors.ErrCodeDuplicateFeature, "duplicate feature id %d", f.ID)
		}
		index[f.ID] = i
	}
	return &Lazy{
		features:   features,
		index:      index,
		pred:       b.predicate(),
		tol:        b.NearMissTolerance,
		logger:     b.logger(),
		failures:   make(map[Pair]PredicateFailure),
		nearMisses: make(map[Pair]bool),
	}, nil
}

// Has reports whether id names one of the features.
func (l *Lazy) Has(id int64) bool {
	_, ok := l.index[id]
	return ok
}

// Neighbors returns the ids of every feature adjacent to id, in feature
// order. Pairs whose predicate fails are left out and recorded once.
func (l *Lazy) Neighbors(ctx context.Context, id int64) ([]int64, error) {
	i, ok := l.index[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown feature id %d", id)
	}
	a := l.features[i]

	var out []int64
	for j, f := range l.features {
		if j == i {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := l.pred(a.Geometry, f.Geometry)
		switch {
		case err != nil:
			l.recordFailure(ctx, a.ID, f.ID, err)
		case ok:
			out = append(out, f.ID)
		case geo.NearMiss(a.Geometry, f.Geometry, l.tol):
			l.recordNearMiss(ctx, a.ID, f.ID)
		}
	}

	l.mu.Lock()
	l.pairs += len(l.features) - 1
	l.mu.Unlock()
	return out, nil
}

// Report returns the failures and near misses seen so far, sorted by pair.
// Pairs counts evaluations, so a pair evaluated from both ends counts twice.
func (l *Lazy) Report() *Report {
	l.mu.Lock()
	defer l.mu.Unlock()

	r := &Report{Pairs: l.pairs}
	for _, f := range l.failures {
		r.PredicateFailures = append(r.PredicateFailures, f)
	}
	for p := range l.nearMisses {
		r.NearMisses = append(r.NearMisses, p)
	}
	slices.SortFunc(r.PredicateFailures, func(x, y PredicateFailure) int {
		return comparePairs(Pair{x.A, x.B}, Pair{y.A, y.B})
	})
	slices.SortFunc(r.NearMisses, comparePairs)
	return r
}

func (l *Lazy) recordFailure(ctx context.Context, a, b int64, err error) {
	key := orderedPair(a, b)
	l.mu.Lock()
	_, seen := l.failures[key]
	if !seen {
		l.failures[key] = PredicateFailure{A: key.A, B: key.B, Err: err}
	}
	l.mu.Unlock()
	if !seen {
		l.logger.Warn("predicate failed, treating pair as not adjacent", "a", key.A, "b", key.B, "error", err)
		observability.Geometry().OnPredicateFailure(ctx, key.A, key.B, err)
	}
}

func (l *Lazy) recordNearMiss(ctx context.Context, a, b int64) {
	key := orderedPair(a, b)
	l.mu.Lock()
	seen := l.nearMisses[key]
	l.nearMisses[key] = true
	l.mu.Unlock()
	if !seen {
		observability.Geometry().OnNearMiss(ctx, key.A, key.B)
	}
}

func orderedPair(a, b int64) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

func comparePairs(x, y Pair) int {
	if c := cmp.Compare(x.A, y.A); c != 0 {
		return c
	}
	return cmp.Compare(x.B, y.B)
}
