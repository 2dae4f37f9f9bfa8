package reach

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/followstreams/pkg/adjacency"
	"github.com/matzehuels/followstreams/pkg/errors"
)

// randomGraph returns a sparse random graph with several components.
func randomGraph(seed int64, n, edges int) *adjacency.Graph {
	r := rand.New(rand.NewSource(seed))
	g := adjacency.New()
	for i := range n {
		g.AddNode(int64(i))
	}
	for range edges {
		g.AddEdge(int64(r.Intn(n)), int64(r.Intn(n)))
	}
	return g
}

func fromGraph(g *adjacency.Graph) NeighborFunc {
	return func(_ context.Context, id int64) ([]int64, error) {
		return g.Neighbors(id), nil
	}
}

// slow delays every expansion by a random amount so the frontier is often
// empty while expansions are still in flight.
func slow(next NeighborFunc, seed int64) NeighborFunc {
	r := rand.New(rand.NewSource(seed))
	delays := make([]time.Duration, 256)
	for i := range delays {
		delays[i] = time.Duration(r.Intn(500)) * time.Microsecond
	}
	return func(ctx context.Context, id int64) ([]int64, error) {
		time.Sleep(delays[id%int64(len(delays))])
		return next(ctx, id)
	}
}

func TestStreamMatchesBatch(t *testing.T) {
	g := randomGraph(42, 200, 180)
	seeds := []int64{0, 17}

	batch, err := Reach(g, seeds)
	if err != nil {
		t.Fatal(err)
	}

	for _, workers := range []int{1, 2, 8, 32} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			res, err := Stream(context.Background(), seeds, slow(fromGraph(g), int64(workers)), StreamOptions{
				Workers: workers,
				Exists:  g.HasNode,
				Logger:  quiet,
			})
			if err != nil {
				t.Fatalf("Stream: %v", err)
			}
			if !res.Reached.Equal(batch.Reached) {
				t.Errorf("streaming reached %d ids, batch reached %d", res.Reached.Len(), batch.Reached.Len())
			}
			if len(res.Order) != res.Reached.Len() {
				t.Errorf("Order has %d entries for %d reached ids", len(res.Order), res.Reached.Len())
			}
		})
	}
}

func TestStreamWaitsForInFlightWork(t *testing.T) {
	// The seed's neighbors arrive only after a delay, long after the
	// frontier first becomes empty.
	g := graphOf(nil, [][2]int64{{1, 2}, {2, 3}, {3, 4}})
	neighbors := func(ctx context.Context, id int64) ([]int64, error) {
		if id == 1 {
			time.Sleep(20 * time.Millisecond)
		}
		return g.Neighbors(id), nil
	}

	res, err := Stream(context.Background(), []int64{1}, neighbors, StreamOptions{Workers: 4, Logger: quiet})
	if err != nil {
		t.Fatal(err)
	}
	if res.Reached.Len() != 4 {
		t.Errorf("reached = %v, want all four nodes", res.Reached.IDs())
	}
}

func TestStreamExpandsEachNodeOnce(t *testing.T) {
	g := randomGraph(7, 100, 400)
	calls := make([]atomic.Int32, 100)
	neighbors := func(ctx context.Context, id int64) ([]int64, error) {
		calls[id].Add(1)
		return g.Neighbors(id), nil
	}

	if _, err := Stream(context.Background(), []int64{0, 1, 2}, neighbors, StreamOptions{Workers: 8, Logger: quiet}); err != nil {
		t.Fatal(err)
	}
	for id := range calls {
		if n := calls[id].Load(); n > 1 {
			t.Errorf("node %d expanded %d times", id, n)
		}
	}
}

func TestStreamSurfacesErrorAfterDraining(t *testing.T) {
	g := randomGraph(3, 60, 120)
	var active atomic.Int32
	neighbors := func(ctx context.Context, id int64) ([]int64, error) {
		active.Add(1)
		defer active.Add(-1)
		if id == 0 {
			return nil, errors.New(errors.ErrCodeInternal, "index unavailable")
		}
		time.Sleep(time.Millisecond)
		return g.Neighbors(id), nil
	}

	_, err := Stream(context.Background(), []int64{0, 1, 2, 3}, neighbors, StreamOptions{Workers: 4, Logger: quiet})
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Fatalf("err = %v, want INTERNAL_ERROR", err)
	}
	if n := active.Load(); n != 0 {
		t.Errorf("%d neighbor calls still running after Stream returned", n)
	}
}

func TestStreamPanicIsWorkerFailure(t *testing.T) {
	neighbors := func(ctx context.Context, id int64) ([]int64, error) {
		if id == 2 {
			panic("index corrupted")
		}
		return []int64{id + 1}, nil
	}
	_, err := Stream(context.Background(), []int64{1}, neighbors, StreamOptions{Workers: 2, Logger: quiet})
	if !errors.Is(err, errors.ErrCodeWorkerFailure) {
		t.Errorf("err = %v, want WORKER_FAILURE", err)
	}
}

func TestStreamCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var n atomic.Int32
	neighbors := func(ctx context.Context, id int64) ([]int64, error) {
		if n.Add(1) == 5 {
			cancel()
		}
		return []int64{id + 1, id + 2}, nil
	}
	_, err := Stream(ctx, []int64{0}, neighbors, StreamOptions{Workers: 3, Logger: quiet})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestStreamSeedErrors(t *testing.T) {
	exists := func(id int64) bool { return id < 10 }
	_, err := Stream(context.Background(), nil, nil, StreamOptions{Exists: exists})
	if !errors.Is(err, errors.ErrCodeNoSeed) {
		t.Errorf("err = %v, want NO_SEED", err)
	}
	_, err = Stream(context.Background(), []int64{3, 12}, nil, StreamOptions{Exists: exists})
	if !errors.Is(err, errors.ErrCodeUnknownSeed) {
		t.Errorf("err = %v, want UNKNOWN_SEED", err)
	}
}
