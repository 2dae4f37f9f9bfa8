package feature

import (
	"maps"

	"github.com/paulmach/orb"

	"github.com/matzehuels/followstreams/pkg/errors"
)

// NameTag is the tag key holding a feature's human-readable name.
const NameTag = "name"

// Feature is one geospatial record under analysis.
//
// The zero value is not usable; features are built with [New] or decoded by
// [ReadGeoJSON] and are treated as immutable once placed in a [Store].
type Feature struct {
	ID       int64             // Unique within a run
	Geometry orb.Geometry      // orb.Polygon, orb.MultiPolygon, orb.LineString or orb.MultiLineString
	Tags     map[string]string // OSM tags (never nil after New)
	Name     string            // Value of the name tag, empty if absent
}

// New creates a feature, deriving Name from the name tag.
// The tags map is copied so later changes by the caller are not observed.
func New(id int64, g orb.Geometry, tags map[string]string) Feature {
	t := make(map[string]string, len(tags))
	maps.Copy(t, tags)
	return Feature{ID: id, Geometry: g, Tags: t, Name: t[NameTag]}
}

// Tag returns the value of key and whether it was present.
func (f Feature) Tag(key string) (string, bool) {
	v, ok := f.Tags[key]
	return v, ok
}

// HasName reports whether the feature carries a non-empty name.
func (f Feature) HasName() bool { return f.Name != "" }

// WithGeometry returns a copy of f with its geometry replaced.
// Tags are shared with f, which is safe because features are never mutated.
func (f Feature) WithGeometry(g orb.Geometry) Feature {
	f.Geometry = g
	return f
}

// Bound returns the bounding box of the feature's geometry.
func (f Feature) Bound() orb.Bound {
	return f.Geometry.Bound()
}

// supported reports whether the geometry type can be handled by the engines.
func supported(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon, orb.LineString, orb.MultiLineString, orb.Ring:
		return true
	}
	return false
}

func validate(f Feature) error {
	if f.Geometry == nil {
		return errors.New(errors.ErrCodeInvalidInput, "feature %d has no geometry", f.ID)
	}
	if !supported(f.Geometry) {
		return errors.New(errors.ErrCodeUnsupported, "feature %d has unsupported geometry type %s", f.ID, f.Geometry.GeoJSONType())
	}
	return nil
}
