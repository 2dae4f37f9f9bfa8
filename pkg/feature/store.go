package feature

import (
	"slices"

	"github.com/paulmach/orb"

	"github.com/matzehuels/followstreams/pkg/errors"
)

// Store is an immutable, id-indexed collection of features.
// Iteration order is the order features were supplied to [NewStore].
type Store struct {
	features []Feature
	index    map[int64]int // id -> rank
}

// NewStore validates features and indexes them by id.
// Returns DUPLICATE_FEATURE if two features share an id, INVALID_INPUT for a
// missing geometry, or UNSUPPORTED for geometry types the engines cannot use.
func NewStore(features []Feature) (*Store, error) {
	s := &Store{
		features: make([]Feature, 0, len(features)),
		index:    make(map[int64]int, len(features)),
	}
	for _, f := range features {
		if err := validate(f); err != nil {
			return nil, err
		}
		if _, dup := s.index[f.ID]; dup {
			return nil, errors.New(errors.ErrCodeDuplicateFeature, "duplicate feature id %d", f.ID)
		}
		s.index[f.ID] = len(s.features)
		s.features = append(s.features, f)
	}
	return s, nil
}

// Len returns the number of features.
func (s *Store) Len() int { return len(s.features) }

// Get returns the feature with the given id.
func (s *Store) Get(id int64) (Feature, bool) {
	i, ok := s.index[id]
	if !ok {
		return Feature{}, false
	}
	return s.features[i], true
}

// Has reports whether a feature with the given id exists.
func (s *Store) Has(id int64) bool {
	_, ok := s.index[id]
	return ok
}

// Rank returns the position of id in iteration order.
func (s *Store) Rank(id int64) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Features returns the features in iteration order.
// The returned slice is a copy; the features themselves are shared.
func (s *Store) Features() []Feature {
	return slices.Clone(s.features)
}

// IDs returns feature ids in iteration order.
func (s *Store) IDs() []int64 {
	ids := make([]int64, len(s.features))
	for i, f := range s.features {
		ids[i] = f.ID
	}
	return ids
}

// Subset returns the features whose id satisfies keep, in iteration order.
func (s *Store) Subset(keep func(id int64) bool) []Feature {
	var out []Feature
	for _, f := range s.features {
		if keep(f.ID) {
			out = append(out, f)
		}
	}
	return out
}

// Filter returns a new store holding the features for which keep is true.
func (s *Store) Filter(keep func(Feature) bool) *Store {
	out := &Store{index: make(map[int64]int)}
	for _, f := range s.features {
		if keep(f) {
			out.index[f.ID] = len(out.features)
			out.features = append(out.features, f)
		}
	}
	return out
}

// WithinBound returns a new store holding the features whose bounding box
// intersects b.
func (s *Store) WithinBound(b orb.Bound) *Store {
	return s.Filter(func(f Feature) bool {
		return f.Bound().Intersects(b)
	})
}
