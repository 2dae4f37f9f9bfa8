package reach

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/followstreams/pkg/adjacency"
	"github.com/matzehuels/followstreams/pkg/errors"
)

// NeighborFunc computes the neighbors of a node. It must be safe for
// concurrent use.
type NeighborFunc func(ctx context.Context, id int64) ([]int64, error)

// StreamOptions configures [Stream].
type StreamOptions struct {
	// Workers bounds concurrent neighbor computations.
	// Values below 1 select adjacency.DefaultWorkers.
	Workers int
	// Exists validates seeds before the search starts. Nil skips the check.
	Exists func(id int64) bool
	// Logger receives progress at debug level. Nil selects log.Default().
	Logger *log.Logger
}

type expansion struct {
	id        int64
	neighbors []int64
	err       error
}

// Stream runs a breadth-first search from seeds, computing neighbors on
// demand with up to opts.Workers concurrent calls to neighbors.
//
// The first neighbor error stops dispatching; Stream waits for in-flight
// calls to return and then reports that error. Cancelling ctx has the same
// effect with ctx.Err(). A panic in neighbors is reported as WORKER_FAILURE.
func Stream(ctx context.Context, seeds []int64, neighbors NeighborFunc, opts StreamOptions) (*Result, error) {
	if err := checkSeeds(seeds, opts.Exists); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers < 1 {
		workers = adjacency.DefaultWorkers()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	jobs := make(chan int64, workers)
	results := make(chan expansion, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				results <- expand(ctx, id, neighbors)
			}
		}()
	}
	defer func() {
		close(jobs)
		wg.Wait()
	}()

	res := &Result{Reached: NewReachedSet()}
	frontier := append([]int64(nil), seeds...)
	inflight := 0
	var firstErr error
	done := ctx.Done()

	for {
		// Dispatch as much of the frontier as the pool accepts. Ids are
		// marked reached on dispatch so each is expanded at most once.
		for firstErr == nil && len(frontier) > 0 && inflight < workers {
			id := frontier[0]
			frontier = frontier[1:]
			if !res.Reached.Add(id) {
				continue
			}
			res.Order = append(res.Order, id)
			jobs <- id
			inflight++
		}

		// Termination is decided here and only here.
		if inflight == 0 && (len(frontier) == 0 || firstErr != nil) {
			break
		}

		select {
		case r := <-results:
			inflight--
			if r.err != nil {
				if firstErr == nil {
					firstErr = r.err
				}
				continue
			}
			frontier = append(frontier, r.neighbors...)
		case <-done:
			if firstErr == nil {
				firstErr = ctx.Err()
			}
			// Keep collecting in-flight results, but stop selecting on a
			// closed channel.
			done = nil
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	logger.Debug("streaming search complete", "seeds", len(seeds), "reached", res.Reached.Len())
	return res, nil
}

func expand(ctx context.Context, id int64, neighbors NeighborFunc) (e expansion) {
	e.id = id
	defer func() {
		if r := recover(); r != nil {
			e.err = errors.New(errors.ErrCodeWorkerFailure, "neighbor task for feature %d panicked: %v", id, r)
		}
	}()
	nbrs, err := neighbors(ctx, id)
	if err != nil {
		e.err = fmt.Errorf("neighbors of %d: %w", id, err)
		return e
	}
	e.neighbors = nbrs
	return e
}
