package reach

import (
	"github.com/matzehuels/followstreams/pkg/adjacency"
	"github.com/matzehuels/followstreams/pkg/errors"
	"github.com/matzehuels/followstreams/pkg/feature"
)

// Result is the outcome of a reachability search.
type Result struct {
	// Reached holds every id connected to a seed, seeds included.
	Reached *ReachedSet
	// Order lists reached ids in discovery order.
	Order []int64
}

// Reach runs a breadth-first search over g from seeds.
//
// Returns NO_SEED when seeds is empty and UNKNOWN_SEED when a seed is not a
// node of g.
func Reach(g *adjacency.Graph, seeds []int64) (*Result, error) {
	if err := checkSeeds(seeds, g.HasNode); err != nil {
		return nil, err
	}

	res := &Result{Reached: NewReachedSet()}
	frontier := append([]int64(nil), seeds...)
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		if !res.Reached.Add(id) {
			continue
		}
		res.Order = append(res.Order, id)
		frontier = append(frontier, g.Neighbors(id)...)
	}
	return res, nil
}

// Apply returns the features of s whose ids were reached, in store order.
func Apply(s *feature.Store, reached *ReachedSet) []feature.Feature {
	return s.Subset(reached.Has)
}

func checkSeeds(seeds []int64, exists func(int64) bool) error {
	if len(seeds) == 0 {
		return errors.New(errors.ErrCodeNoSeed, "no seed feature found: empty seed set")
	}
	if exists == nil {
		return nil
	}
	for _, id := range seeds {
		if !exists(id) {
			return errors.New(errors.ErrCodeUnknownSeed, "seed %d is not a feature in the graph", id)
		}
	}
	return nil
}
