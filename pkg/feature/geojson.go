package feature

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/followstreams/pkg/errors"
)

// idProperties are property keys consulted, in order, when a GeoJSON feature
// has no top-level id. osmium and overpass exports use these.
var idProperties = []string{"@id", "id", "osm_id"}

// ReadGeoJSON decodes a GeoJSON FeatureCollection into features.
//
// Feature ids are taken from the top-level id (a number, or a string such as
// "way/123", "a123" or "123") or from the @id, id or osm_id property. Typed
// references are mapped to osmium area ids, see [AreaID].
// Properties become string tags; a nested "tags" object is flattened.
// Ring geometries are promoted to single-ring polygons.
//
// Returns INVALID_FORMAT for undecodable input or a feature without a usable
// id, and UNSUPPORTED for geometry types other than polygons and lines.
func ReadGeoJSON(r io.Reader) ([]Feature, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode feature collection")
	}

	out := make([]Feature, 0, len(fc.Features))
	for i, gf := range fc.Features {
		id, err := featureID(gf)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "feature #%d", i)
		}
		g := gf.Geometry
		if r, ok := g.(orb.Ring); ok {
			g = orb.Polygon{r}
		}
		f := New(id, g, stringTags(gf.Properties))
		if err := validate(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// WriteGeoJSON encodes features as a GeoJSON FeatureCollection.
// Tags are written as flat string properties.
func WriteGeoJSON(w io.Writer, features []Feature) error {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(f.Geometry)
		gf.ID = f.ID
		for _, k := range slices.Sorted(maps.Keys(f.Tags)) {
			gf.Properties[k] = f.Tags[k]
		}
		fc.Append(gf)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func featureID(gf *geojson.Feature) (int64, error) {
	if gf.ID != nil {
		return parseID(gf.ID)
	}
	for _, key := range idProperties {
		if v, ok := gf.Properties[key]; ok {
			return parseID(v)
		}
	}
	return 0, fmt.Errorf("missing feature id")
}

func parseID(v any) (int64, error) {
	switch id := v.(type) {
	case float64:
		if id != float64(int64(id)) {
			return 0, fmt.Errorf("non-integer id %v", id)
		}
		return int64(id), nil
	case json.Number:
		return id.Int64()
	case int64:
		return id, nil
	case int:
		return int64(id), nil
	case string:
		return parseRef(id)
	}
	return 0, fmt.Errorf("unsupported id type %T", v)
}

// AreaID maps an OSM way or relation id to the osmium area id space: ways
// become 2*id and relations 2*id+1. Ways and relations are numbered
// independently, so the raw numbers of a way and a relation may coincide.
func AreaID(ref string, id int64) (int64, error) {
	if id > math.MaxInt64/2 || id < math.MinInt64/2 {
		return 0, fmt.Errorf("id %d out of range", id)
	}
	switch ref {
	case "w", "way":
		return 2 * id, nil
	case "r", "relation":
		return 2*id + 1, nil
	}
	return 0, fmt.Errorf("unknown element type %q", ref)
}

// parseRef parses "way/123", "relation/42", "w123", "r42", "a246" and "123".
// Area ids and bare numbers are used as given.
func parseRef(s string) (int64, error) {
	ref, num := "", s
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		ref, num = s[:i], s[i+1:]
		if j := strings.LastIndexByte(ref, '/'); j >= 0 {
			ref = ref[j+1:]
		}
	} else if s != "" && strings.IndexByte("anwr", s[0]) >= 0 {
		ref, num = s[:1], s[1:]
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	switch ref {
	case "", "a", "area":
		return n, nil
	case "n", "node":
		return 0, fmt.Errorf("node id %q cannot carry an area", s)
	}
	id, err := AreaID(ref, n)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}

func stringTags(props geojson.Properties) map[string]string {
	tags := make(map[string]string, len(props))
	for k, v := range props {
		if nested, ok := v.(map[string]any); ok && k == "tags" {
			for nk, nv := range nested {
				tags[nk] = fmt.Sprint(nv)
			}
			continue
		}
		if slices.Contains(idProperties, k) || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			tags[k] = s
		} else {
			tags[k] = fmt.Sprint(v)
		}
	}
	return tags
}
