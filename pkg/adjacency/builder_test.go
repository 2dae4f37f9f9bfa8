package adjacency

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/matzehuels/followstreams/pkg/errors"
	"github.com/matzehuels/followstreams/pkg/feature"
)

var quiet = log.New(io.Discard)

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{{
		{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y},
	}}
}

// chain returns n unit squares in a row; consecutive squares share an edge
// and every third gap is opened so the chain breaks into components.
func chain(n int) []feature.Feature {
	fs := make([]feature.Feature, 0, n)
	x := 0.0
	for i := range n {
		fs = append(fs, feature.New(int64(i+1), square(x, 0, 1), nil))
		x++
		if i%3 == 2 {
			x += 0.5
		}
	}
	return fs
}

func TestBuild(t *testing.T) {
	fs := []feature.Feature{
		feature.New(1, square(0, 0, 1), nil),
		feature.New(2, square(1, 0, 1), nil),
		feature.New(3, orb.LineString{{1.5, 0.5}, {4, 0.5}}, nil),
		feature.New(4, square(10, 10, 1), nil),
	}
	b := Builder{Workers: 2, Logger: quiet}
	g, report, err := b.Build(context.Background(), fs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if g.NodeCount() != 4 {
		t.Errorf("NodeCount = %d, want 4 (isolated nodes included)", g.NodeCount())
	}
	wantEdges := []Edge{{1, 2}, {2, 3}}
	got := g.Edges()
	if len(got) != len(wantEdges) {
		t.Fatalf("Edges = %v, want %v", got, wantEdges)
	}
	for i := range wantEdges {
		if got[i] != wantEdges[i] {
			t.Errorf("Edges[%d] = %v, want %v", i, got[i], wantEdges[i])
		}
	}
	if report.Pairs != 6 {
		t.Errorf("Pairs = %d, want 6", report.Pairs)
	}
	if len(report.PredicateFailures) != 0 {
		t.Errorf("unexpected failures: %v", report.PredicateFailures)
	}
}

func TestBuildEvaluatesUpperTriangle(t *testing.T) {
	fs := chain(7)
	seen := make(chan [2]orb.Geometry, 64)
	pred := func(a, b orb.Geometry) (bool, error) {
		seen <- [2]orb.Geometry{a, b}
		return false, nil
	}
	b := Builder{Workers: 3, Predicate: pred, Logger: quiet}
	if _, _, err := b.Build(context.Background(), fs); err != nil {
		t.Fatal(err)
	}
	close(seen)

	count := 0
	for range seen {
		count++
	}
	if want := 7 * 6 / 2; count != want {
		t.Errorf("predicate called %d times, want %d", count, want)
	}
}

func TestBuildIndependentOfWorkers(t *testing.T) {
	fs := chain(25)
	rand.New(rand.NewSource(7)).Shuffle(len(fs), func(i, j int) { fs[i], fs[j] = fs[j], fs[i] })

	ref, _, err := (&Builder{Workers: 1, Logger: quiet}).Build(context.Background(), fs)
	if err != nil {
		t.Fatal(err)
	}
	if err := ref.Validate(); err != nil {
		t.Fatalf("graph not symmetric: %v", err)
	}
	for _, w := range []int{2, 4, 16, 0} {
		t.Run(fmt.Sprintf("workers=%d", w), func(t *testing.T) {
			g, _, err := (&Builder{Workers: w, Logger: quiet}).Build(context.Background(), fs)
			if err != nil {
				t.Fatal(err)
			}
			if !g.Equal(ref) {
				t.Errorf("graph with %d workers differs from single-worker graph", w)
			}
		})
	}

	again, _, _ := (&Builder{Workers: 4, Logger: quiet}).Build(context.Background(), fs)
	if !again.Equal(ref) {
		t.Error("rebuilding the same features produced a different graph")
	}
}

func TestBuildMalformedPairIsRecoverable(t *testing.T) {
	fs := []feature.Feature{
		feature.New(1, square(0, 0, 1), nil),
		feature.New(2, square(1, 0, 1), nil),
		feature.New(3, square(2, 0, 1), nil),
	}
	bad := fs[2].Geometry
	pred := func(a, b orb.Geometry) (bool, error) {
		if isSame(a, fs[1].Geometry) && isSame(b, bad) {
			return false, errors.New(errors.ErrCodeMalformedGeometry, "malformed geometry: self-intersection")
		}
		return true, nil
	}

	g, report, err := (&Builder{Workers: 2, Predicate: pred, Logger: quiet}).Build(context.Background(), fs)
	if err != nil {
		t.Fatalf("Build should not fail on a malformed pair: %v", err)
	}
	if g.HasEdge(2, 3) {
		t.Error("failed pair should not be adjacent")
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount = %d, want 2", g.EdgeCount())
	}
	if len(report.PredicateFailures) != 1 {
		t.Fatalf("failures = %v, want exactly one", report.PredicateFailures)
	}
	pf := report.PredicateFailures[0]
	if pf.A != 2 || pf.B != 3 || !errors.Recoverable(pf) {
		t.Errorf("failure = %+v", pf)
	}
}

func TestBuildReportsRealMalformedGeometry(t *testing.T) {
	fs := []feature.Feature{
		feature.New(1, square(0, 0, 1), nil),
		feature.New(2, orb.LineString{{0.5, 0.5}}, nil),
	}
	g, report, err := (&Builder{Logger: quiet}).Build(context.Background(), fs)
	if err != nil {
		t.Fatal(err)
	}
	if g.EdgeCount() != 0 || len(report.PredicateFailures) != 1 {
		t.Errorf("edges = %d, failures = %d", g.EdgeCount(), len(report.PredicateFailures))
	}
}

func TestBuildPanicIsWorkerFailure(t *testing.T) {
	fs := chain(12)
	pred := func(a, b orb.Geometry) (bool, error) {
		if isSame(a, fs[4].Geometry) {
			panic("predicate exploded")
		}
		return false, nil
	}
	g, _, err := (&Builder{Workers: 3, Predicate: pred, Logger: quiet}).Build(context.Background(), fs)
	if !errors.Is(err, errors.ErrCodeWorkerFailure) {
		t.Fatalf("err = %v, want WORKER_FAILURE", err)
	}
	if g != nil {
		t.Error("no graph should be returned after a worker failure")
	}
}

func TestBuildCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := (&Builder{Logger: quiet}).Build(ctx, chain(10))
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBuildDuplicateIDs(t *testing.T) {
	fs := []feature.Feature{
		feature.New(1, square(0, 0, 1), nil),
		feature.New(1, square(1, 0, 1), nil),
	}
	_, _, err := (&Builder{Logger: quiet}).Build(context.Background(), fs)
	if !errors.Is(err, errors.ErrCodeDuplicateFeature) {
		t.Errorf("err = %v, want DUPLICATE_FEATURE", err)
	}
}

func TestBuildNearMisses(t *testing.T) {
	fs := []feature.Feature{
		feature.New(1, square(0, 0, 1), nil),
		feature.New(2, square(1.05, 0, 1), nil),
		feature.New(3, square(5, 0, 1), nil),
	}
	_, report, err := (&Builder{NearMissTolerance: 0.1, Logger: quiet}).Build(context.Background(), fs)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.NearMisses) != 1 || report.NearMisses[0] != (Pair{1, 2}) {
		t.Errorf("NearMisses = %v, want [{1 2}]", report.NearMisses)
	}
}

func TestBuildEmpty(t *testing.T) {
	g, report, err := (&Builder{Logger: quiet}).Build(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 0 || report.Pairs != 0 {
		t.Errorf("empty build = %d nodes, %d pairs", g.NodeCount(), report.Pairs)
	}
}

func TestBuildProgress(t *testing.T) {
	fs := chain(12)
	var (
		mu    sync.Mutex
		calls int
		peak  int
		total int
	)
	b := Builder{
		Workers: 4,
		Logger:  quiet,
		Progress: func(done, n int) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			peak = max(peak, done)
			total = n
		},
	}
	if _, _, err := b.Build(context.Background(), fs); err != nil {
		t.Fatal(err)
	}
	if calls != len(fs) {
		t.Errorf("Progress called %d times, want %d", calls, len(fs))
	}
	if peak != len(fs) || total != len(fs) {
		t.Errorf("final progress = %d/%d, want %d/%d", peak, total, len(fs), len(fs))
	}
}

// isSame compares polygons by their first vertex, which is unique per
// feature in these tests.
func isSame(a, b orb.Geometry) bool {
	pa, ok1 := a.(orb.Polygon)
	pb, ok2 := b.(orb.Polygon)
	return ok1 && ok2 && pa[0][0] == pb[0][0]
}
