package feature

import (
	"strings"

	"github.com/matzehuels/followstreams/pkg/errors"
)

// Tag is a single key=value pair used to select features.
type Tag struct {
	Key   string
	Value string
}

// String returns the tag in key=value form.
func (t Tag) String() string { return t.Key + "=" + t.Value }

// ParseTag parses a key=value pair. Surrounding whitespace is ignored.
func ParseTag(s string) (Tag, error) {
	k, v, ok := strings.Cut(s, "=")
	k, v = strings.TrimSpace(k), strings.TrimSpace(v)
	if !ok || k == "" || v == "" {
		return Tag{}, errors.New(errors.ErrCodeInvalidInput, "invalid tag %q (want key=value)", s)
	}
	return Tag{Key: k, Value: v}, nil
}

// ParseTags parses each of ss with [ParseTag].
func ParseTags(ss []string) ([]Tag, error) {
	tags := make([]Tag, 0, len(ss))
	for _, s := range ss {
		t, err := ParseTag(s)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// WaterTags selects hydrologically relevant features: standing water and
// every waterway class that can connect two bodies of water.
var WaterTags = []Tag{
	{"natural", "water"},
	{"water", "lake"},
	{"water", "oxbow"},
	{"water", "river"},
	{"water", "stream"},
	{"water", "pond"},
	{"water", "reservoir"},
	{"waterway", "stream"},
	{"waterway", "river"},
	{"waterway", "tidal_channel"},
	{"waterway", "canal"},
	{"waterway", "ditch"},
	{"waterway", "drain"},
}

// MatchAny returns a predicate that is true for features carrying at least
// one of tags. An empty tag list matches every feature.
func MatchAny(tags []Tag) func(Feature) bool {
	return func(f Feature) bool {
		if len(tags) == 0 {
			return true
		}
		for _, t := range tags {
			if v, ok := f.Tags[t.Key]; ok && v == t.Value {
				return true
			}
		}
		return false
	}
}

// Named is a predicate that keeps features with a name tag.
func Named(f Feature) bool { return f.HasName() }
