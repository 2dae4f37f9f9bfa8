package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/peterstace/simplefeatures/geom"

	"github.com/matzehuels/followstreams/pkg/errors"
)

// Predicate reports whether two geometries are adjacent. A non-nil error
// means the pair could not be evaluated.
type Predicate func(a, b orb.Geometry) (bool, error)

// Intersects reports whether a and b share at least one point.
//
// Both inputs are checked for structural problems first and a
// MALFORMED_GEOMETRY error is returned if either is unusable. Pairs whose
// bounds overlap are then converted to simplefeatures geometries, which
// validates them fully (closed, non self-intersecting rings), and tested
// with [geom.Intersects]. Polygon holes are excluded from the area, so a
// geometry lying wholly inside a hole does not intersect.
func Intersects(a, b orb.Geometry) (bool, error) {
	if err := Validate(a); err != nil {
		return false, err
	}
	if err := Validate(b); err != nil {
		return false, err
	}
	if !a.Bound().Intersects(b.Bound()) {
		return false, nil
	}

	ga, err := toGeom(a)
	if err != nil {
		return false, err
	}
	gb, err := toGeom(b)
	if err != nil {
		return false, err
	}
	return geom.Intersects(ga, gb), nil
}

// NearMiss reports whether the bounding boxes of a and b come within tol of
// each other. It is meant to be asked only of pairs that do not intersect.
func NearMiss(a, b orb.Geometry, tol float64) bool {
	if tol <= 0 || a == nil || b == nil {
		return false
	}
	return a.Bound().Pad(tol).Intersects(b.Bound())
}

// Validate returns a MALFORMED_GEOMETRY error if g is structurally unusable:
// nil, empty, an unsupported type, too few points or non-finite coordinates.
// Topological validity is checked only by [Intersects].
func Validate(g orb.Geometry) error {
	n, err := check(g)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMalformedGeometry, err, "malformed geometry")
	}
	if n == 0 {
		return errors.New(errors.ErrCodeMalformedGeometry, "malformed geometry: empty")
	}
	return nil
}

// toGeom converts g through WKB. Rings are closed first since GeoJSON
// producers do not always repeat the first point.
func toGeom(g orb.Geometry) (geom.Geometry, error) {
	data, err := wkb.Marshal(normalize(g))
	if err != nil {
		return geom.Geometry{}, errors.Wrap(errors.ErrCodeMalformedGeometry, err, "malformed geometry: encode")
	}
	out, err := geom.UnmarshalWKB(data)
	if err != nil {
		return geom.Geometry{}, errors.Wrap(errors.ErrCodeMalformedGeometry, err, "malformed geometry")
	}
	return out, nil
}

func normalize(g orb.Geometry) orb.Geometry {
	switch g := g.(type) {
	case orb.Ring:
		return orb.Polygon{closeRing(g)}
	case orb.Polygon:
		return closePolygon(g)
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(g))
		for i, p := range g {
			out[i] = closePolygon(p)
		}
		return out
	case orb.Collection:
		out := make(orb.Collection, len(g))
		for i, c := range g {
			out[i] = normalize(c)
		}
		return out
	}
	return g
}

func closePolygon(p orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, r := range p {
		out[i] = closeRing(r)
	}
	return out
}

func closeRing(r orb.Ring) orb.Ring {
	if r.Closed() {
		return r
	}
	out := make(orb.Ring, len(r), len(r)+1)
	copy(out, r)
	return append(out, r[0])
}

// check walks g and returns its number of polygons and lines.
func check(g orb.Geometry) (int, error) {
	switch g := g.(type) {
	case nil:
		return 0, fmt.Errorf("nil geometry")
	case orb.Polygon:
		if len(g) == 0 {
			return 0, fmt.Errorf("polygon has no rings")
		}
		for i, r := range g {
			if len(r) < 3 {
				return 0, fmt.Errorf("ring %d: ring has %d points", i, len(r))
			}
			if err := checkPoints(r); err != nil {
				return 0, fmt.Errorf("ring %d: %w", i, err)
			}
		}
		return 1, nil
	case orb.Ring:
		return check(orb.Polygon{g})
	case orb.LineString:
		if len(g) < 2 {
			return 0, fmt.Errorf("line has %d points", len(g))
		}
		return 1, checkPoints(g)
	case orb.MultiPolygon:
		return checkEach(len(g), func(i int) orb.Geometry { return g[i] })
	case orb.MultiLineString:
		return checkEach(len(g), func(i int) orb.Geometry { return g[i] })
	case orb.Collection:
		return checkEach(len(g), func(i int) orb.Geometry { return g[i] })
	default:
		return 0, fmt.Errorf("unsupported geometry type %s", g.GeoJSONType())
	}
}

func checkEach(n int, at func(int) orb.Geometry) (int, error) {
	total := 0
	for i := range n {
		c, err := check(at(i))
		if err != nil {
			return 0, err
		}
		total += c
	}
	return total, nil
}

func checkPoints(pts []orb.Point) error {
	for _, pt := range pts {
		if !finite(pt[0]) || !finite(pt[1]) {
			return fmt.Errorf("non-finite coordinate %v", pt)
		}
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
