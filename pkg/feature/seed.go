package feature

import (
	"fmt"
	"strings"

	"github.com/matzehuels/followstreams/pkg/errors"
)

// TieBreak decides which feature becomes the seed when a lookup matches
// more than one.
type TieBreak int

const (
	// TieBreakNone treats multiple matches as a fatal AMBIGUOUS_SEED error.
	TieBreakNone TieBreak = iota
	// TieBreakFirst picks the match that comes first in store order, i.e.
	// the first one created by the extractor.
	TieBreakFirst
	// TieBreakHighestID picks the match with the largest id.
	TieBreakHighestID
)

var tieBreakNames = map[TieBreak]string{
	TieBreakNone:      "none",
	TieBreakFirst:     "first",
	TieBreakHighestID: "highest-id",
}

// String returns the flag spelling of the policy.
func (t TieBreak) String() string {
	if s, ok := tieBreakNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TieBreak(%d)", int(t))
}

// ParseTieBreak parses "none", "first" or "highest-id". The empty string
// parses as TieBreakNone.
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return TieBreakNone, nil
	case "first":
		return TieBreakFirst, nil
	case "highest-id", "highest_id", "highest":
		return TieBreakHighestID, nil
	}
	return TieBreakNone, errors.New(errors.ErrCodeInvalidInput, "invalid tie-break policy: %q (must be 'none', 'first' or 'highest-id')", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t TieBreak) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using [ParseTieBreak].
func (t *TieBreak) UnmarshalText(text []byte) error {
	v, err := ParseTieBreak(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// SeedsByName resolves each name to exactly one feature by exact match on
// the name tag and returns the seed ids in the order the names were given.
// Duplicate resolutions are collapsed.
//
// Returns NO_SEED when names is empty or a name matches nothing, and
// AMBIGUOUS_SEED when a name matches several features and tb is
// TieBreakNone.
func SeedsByName(s *Store, names []string, tb TieBreak) ([]int64, error) {
	if len(names) == 0 {
		return nil, errors.New(errors.ErrCodeNoSeed, "no seed feature found: no seed names given")
	}
	seen := make(map[int64]bool, len(names))
	var ids []int64
	for _, name := range names {
		id, err := SeedMatching(s, fmt.Sprintf("name %q", name), func(f Feature) bool {
			return f.Name == name
		}, tb)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// SeedMatching resolves a caller-supplied predicate to a single seed id.
// label describes the predicate in error messages.
func SeedMatching(s *Store, label string, match func(Feature) bool, tb TieBreak) (int64, error) {
	var matches []Feature
	for _, f := range s.features {
		if match(f) {
			matches = append(matches, f)
		}
	}

	switch {
	case len(matches) == 0:
		return 0, errors.New(errors.ErrCodeNoSeed, "no seed feature found for %s", label)
	case len(matches) == 1:
		return matches[0].ID, nil
	}

	switch tb {
	case TieBreakFirst:
		return matches[0].ID, nil
	case TieBreakHighestID:
		best := matches[0].ID
		for _, f := range matches[1:] {
			best = max(best, f.ID)
		}
		return best, nil
	}

	ids := make([]int64, len(matches))
	for i, f := range matches {
		ids[i] = f.ID
	}
	return 0, errors.New(errors.ErrCodeAmbiguousSeed, "ambiguous seed: %s matches %d features %v", label, len(matches), ids)
}
