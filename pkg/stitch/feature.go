package stitch

import (
	"github.com/paulmach/orb"

	"github.com/matzehuels/followstreams/pkg/errors"
	"github.com/matzehuels/followstreams/pkg/feature"
)

// Feature replaces a multi-ring geometry with its stitched path.
//
// Polygonal inputs become a polygon whose exterior is the stitched path and
// whose holes are those of the input parts. Line inputs become a single line
// string. Features with at most one ring are returned unchanged.
func Feature(f feature.Feature) (feature.Feature, error) {
	rings := Rings(f.Geometry)
	if rings == nil {
		return f, errors.New(errors.ErrCodeUnsupported, "cannot stitch %s geometry of feature %d", geometryType(f.Geometry), f.ID)
	}
	if len(rings) <= 1 {
		return f, nil
	}

	path, err := Stitch(rings)
	if err != nil {
		return f, errors.Wrap(errors.GetCode(err), err, "stitch feature %d", f.ID)
	}

	switch f.Geometry.(type) {
	case orb.LineString, orb.MultiLineString:
		return f.WithGeometry(orb.LineString(path)), nil
	}
	return f.WithGeometry(append(orb.Polygon{orb.Ring(path)}, Holes(f.Geometry)...)), nil
}

// Features stitches every feature in fs and returns the results in order.
func Features(fs []feature.Feature) ([]feature.Feature, error) {
	out := make([]feature.Feature, len(fs))
	for i, f := range fs {
		s, err := Feature(f)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "nil"
	}
	return g.GeoJSONType()
}
