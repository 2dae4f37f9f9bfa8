// Package stitch joins the disjoint rings of a multi-part geometry into one
// ordered path.
//
// The join is greedy: starting from the first ring, the path repeatedly
// takes the remaining ring with an endpoint nearest to its current end,
// reversing that ring when its last point is the nearer one. Ties go to the
// ring that comes first in the input. The result is a heuristic tour, not a
// shortest one.
//
// Distances are planar over raw coordinates. Over large extents or high
// latitudes longitude/latitude distortion makes the ordering less
// meaningful; project first if that matters.
package stitch

import (
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/matzehuels/followstreams/pkg/errors"
)

// Path is the concatenation of stitched rings.
type Path []orb.Point

// Stitch concatenates rings greedily by nearest endpoint. Every input point
// appears in the path exactly once; none are dropped or deduplicated.
//
// Empty rings are skipped. Returns EMPTY_RINGS when rings is empty or holds
// no points at all.
func Stitch(rings []orb.Ring) (Path, error) {
	remaining := make([]orb.Ring, 0, len(rings))
	total := 0
	for _, r := range rings {
		if len(r) > 0 {
			remaining = append(remaining, r)
			total += len(r)
		}
	}
	if len(remaining) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyRings, "stitch requires at least one non-empty ring")
	}

	path := make(Path, 0, total)
	path = append(path, remaining[0]...)
	remaining = remaining[1:]

	for len(remaining) > 0 {
		end := path[len(path)-1]
		best, reverse := -1, false
		bestDist := 0.0
		for i, r := range remaining {
			dFirst := planar.Distance(end, r[0])
			dLast := planar.Distance(end, r[len(r)-1])
			d := min(dFirst, dLast)
			if best < 0 || d < bestDist {
				best, bestDist, reverse = i, d, dLast < dFirst
			}
		}

		next := remaining[best]
		if reverse {
			for i := len(next) - 1; i >= 0; i-- {
				path = append(path, next[i])
			}
		} else {
			path = append(path, next...)
		}
		remaining = slices.Delete(remaining, best, best+1)
	}
	return path, nil
}

// Rings returns the rings of g in order: the exterior ring of every polygon
// and every line of a multi-line. Holes are not rings to stitch, so a single
// polygon always has one ring. Unsupported types yield nil.
func Rings(g orb.Geometry) []orb.Ring {
	switch g := g.(type) {
	case orb.Ring:
		return []orb.Ring{g}
	case orb.Polygon:
		if len(g) == 0 {
			return []orb.Ring{}
		}
		return []orb.Ring{g[0]}
	case orb.MultiPolygon:
		out := make([]orb.Ring, 0, len(g))
		for _, p := range g {
			if len(p) > 0 {
				out = append(out, p[0])
			}
		}
		return out
	case orb.LineString:
		return []orb.Ring{orb.Ring(g)}
	case orb.MultiLineString:
		out := make([]orb.Ring, len(g))
		for i, ls := range g {
			out[i] = orb.Ring(ls)
		}
		return out
	}
	return nil
}

// Holes returns the interior rings of every polygon in g, in order.
func Holes(g orb.Geometry) []orb.Ring {
	var out []orb.Ring
	switch g := g.(type) {
	case orb.Polygon:
		if len(g) > 1 {
			out = append(out, g[1:]...)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			if len(p) > 1 {
				out = append(out, p[1:]...)
			}
		}
	}
	return out
}
