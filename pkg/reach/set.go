package reach

import (
	"maps"
	"slices"
	"sync"
)

// ReachedSet is a grow-only set of feature ids. It is safe for concurrent
// use and Add is an atomic check-and-insert.
type ReachedSet struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

// NewReachedSet creates an empty set.
func NewReachedSet() *ReachedSet {
	return &ReachedSet{ids: make(map[int64]struct{})}
}

// Add inserts id and reports whether it was not already present.
func (s *ReachedSet) Add(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Has reports whether id has been reached.
func (s *ReachedSet) Has(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of reached ids.
func (s *ReachedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// IDs returns the reached ids in ascending order.
func (s *ReachedSet) IDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.ids))
}

// Equal reports whether s and o contain the same ids.
func (s *ReachedSet) Equal(o *ReachedSet) bool {
	return slices.Equal(s.IDs(), o.IDs())
}
