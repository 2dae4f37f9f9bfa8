package stitch

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/matzehuels/followstreams/pkg/errors"
	"github.com/matzehuels/followstreams/pkg/feature"
)

func TestStitchCollinearChain(t *testing.T) {
	r0 := orb.Ring{{0, 0}, {1, 0}}
	r1 := orb.Ring{{10, 0}, {11, 0}}
	r2 := orb.Ring{{20, 0}, {21, 0}}

	path, err := Stitch([]orb.Ring{r0, r2, r1})
	if err != nil {
		t.Fatalf("Stitch: %v", err)
	}
	want := Path{{0, 0}, {1, 0}, {10, 0}, {11, 0}, {20, 0}, {21, 0}}
	assertPath(t, path, want)
}

func TestStitchSingleRingUnchanged(t *testing.T) {
	r := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	path, err := Stitch([]orb.Ring{r})
	if err != nil {
		t.Fatal(err)
	}
	assertPath(t, path, Path(r))
}

func TestStitchReversesNearerLastEndpoint(t *testing.T) {
	// Second ring's last point is next to the first ring's end.
	first := orb.Ring{{0, 0}, {1, 0}}
	second := orb.Ring{{9, 0}, {2, 0}}

	path, err := Stitch([]orb.Ring{first, second})
	if err != nil {
		t.Fatal(err)
	}
	assertPath(t, path, Path{{0, 0}, {1, 0}, {2, 0}, {9, 0}})
}

func TestStitchTieGoesToFirstCandidate(t *testing.T) {
	start := orb.Ring{{0, 0}, {1, 0}}
	above := orb.Ring{{1, 1}, {1, 5}}
	below := orb.Ring{{1, -1}, {1, -5}}

	path, err := Stitch([]orb.Ring{start, above, below})
	if err != nil {
		t.Fatal(err)
	}
	if path[2] != (orb.Point{1, 1}) {
		t.Errorf("path[2] = %v, want the first equidistant ring", path[2])
	}

	path, _ = Stitch([]orb.Ring{start, below, above})
	if path[2] != (orb.Point{1, -1}) {
		t.Errorf("path[2] = %v, want the first equidistant ring", path[2])
	}
}

func TestStitchEqualEndpointDistanceKeepsOrientation(t *testing.T) {
	start := orb.Ring{{0, 0}, {0, 1}}
	// Both endpoints are 1 away from (0, 1).
	loop := orb.Ring{{1, 1}, {5, 5}, {-1, 1}}

	path, _ := Stitch([]orb.Ring{start, loop})
	if path[2] != (orb.Point{1, 1}) {
		t.Errorf("path[2] = %v, ring should not be reversed on a tie", path[2])
	}
}

func TestStitchPreservesPointCount(t *testing.T) {
	rings := []orb.Ring{
		{{0, 0}, {1, 0}, {1, 1}, {0, 0}},
		{{5, 5}, {6, 5}, {6, 6}, {5, 5}},
		{{2, 2}, {3, 2}},
		{},
		{{0, 0}, {0, 0}, {0, 0}},
		{{-4, 3}},
	}
	total := 0
	for _, r := range rings {
		total += len(r)
	}

	path, err := Stitch(rings)
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != total {
		t.Errorf("len(path) = %d, want %d", len(path), total)
	}
}

func TestStitchEmpty(t *testing.T) {
	for _, rings := range [][]orb.Ring{nil, {}, {{}, {}}} {
		_, err := Stitch(rings)
		if !errors.Is(err, errors.ErrCodeEmptyRings) {
			t.Errorf("Stitch(%v) err = %v, want EMPTY_RINGS", rings, err)
		}
	}
}

func TestStitchDoesNotMutateInput(t *testing.T) {
	rings := []orb.Ring{{{0, 0}, {1, 0}}, {{5, 0}, {2, 0}}}
	if _, err := Stitch(rings); err != nil {
		t.Fatal(err)
	}
	if rings[1][0] != (orb.Point{5, 0}) {
		t.Error("input ring was reversed in place")
	}
	if len(rings) != 2 {
		t.Error("input slice was modified")
	}
}

func TestRings(t *testing.T) {
	poly := orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 0}}, {{1, 1}, {2, 1}, {2, 2}, {1, 1}}}
	tests := []struct {
		name string
		g    orb.Geometry
		want int
	}{
		{"polygon with hole", poly, 1},
		{"multipolygon", orb.MultiPolygon{poly, {{{9, 9}, {10, 9}, {10, 10}, {9, 9}}}}, 2},
		{"linestring", orb.LineString{{0, 0}, {1, 1}}, 1},
		{"multilinestring", orb.MultiLineString{{{0, 0}, {1, 1}}, {{2, 2}, {3, 3}}}, 2},
		{"ring", orb.Ring{{0, 0}, {1, 1}, {0, 1}}, 1},
		{"point", orb.Point{0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(Rings(tt.g)); got != tt.want {
				t.Errorf("len(Rings) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFeature(t *testing.T) {
	mp := orb.MultiPolygon{
		{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
		{{{3, 3}, {4, 3}, {4, 4}, {3, 3}}},
	}
	f := feature.New(7, mp, map[string]string{"name": "Twin Lakes"})

	got, err := Feature(f)
	if err != nil {
		t.Fatalf("Feature: %v", err)
	}
	poly, ok := got.Geometry.(orb.Polygon)
	if !ok || len(poly) != 1 {
		t.Fatalf("geometry = %T with %v rings, want single-ring polygon", got.Geometry, poly)
	}
	if len(poly[0]) != 8 {
		t.Errorf("stitched ring has %d points, want 8", len(poly[0]))
	}
	if got.ID != 7 || got.Name != "Twin Lakes" {
		t.Errorf("identity not preserved: %d %q", got.ID, got.Name)
	}
	if _, ok := f.Geometry.(orb.MultiPolygon); !ok {
		t.Error("original feature was modified")
	}
}

func TestFeatureKeepsHoles(t *testing.T) {
	hole := orb.Ring{{1, 1}, {2, 1}, {2, 2}, {1, 1}}
	donut := orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 0}}, hole}

	same, err := Feature(feature.New(1, donut, nil))
	if err != nil {
		t.Fatal(err)
	}
	if p := same.Geometry.(orb.Polygon); len(p) != 2 || len(p[0]) != 4 {
		t.Errorf("polygon with a hole should be unchanged, got %v", p)
	}

	mp := orb.MultiPolygon{donut, {{{9, 9}, {10, 9}, {10, 10}, {9, 9}}}}
	got, err := Feature(feature.New(2, mp, nil))
	if err != nil {
		t.Fatal(err)
	}
	poly, ok := got.Geometry.(orb.Polygon)
	if !ok || len(poly) != 2 {
		t.Fatalf("geometry = %v, want stitched exterior plus one hole", got.Geometry)
	}
	if len(poly[0]) != 8 {
		t.Errorf("exterior has %d points, want 8", len(poly[0]))
	}
	assertPath(t, Path(poly[1]), Path(hole))
}

func TestFeatureLinesAndSingles(t *testing.T) {
	mls := feature.New(1, orb.MultiLineString{{{0, 0}, {1, 0}}, {{3, 0}, {2, 0}}}, nil)
	got, err := Feature(mls)
	if err != nil {
		t.Fatal(err)
	}
	ls, ok := got.Geometry.(orb.LineString)
	if !ok {
		t.Fatalf("geometry = %T, want LineString", got.Geometry)
	}
	assertPath(t, Path(ls), Path{{0, 0}, {1, 0}, {2, 0}, {3, 0}})

	single := feature.New(2, orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, nil)
	same, err := Feature(single)
	if err != nil {
		t.Fatal(err)
	}
	if len(same.Geometry.(orb.Polygon)[0]) != 4 {
		t.Error("single-ring feature should be returned unchanged")
	}

	if _, err := Feature(feature.New(3, orb.Point{1, 1}, nil)); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("point err = %v, want UNSUPPORTED", err)
	}
}

func TestFeatures(t *testing.T) {
	fs := []feature.Feature{
		feature.New(1, orb.MultiLineString{{{0, 0}, {1, 0}}, {{2, 0}, {3, 0}}}, nil),
		feature.New(2, orb.LineString{{5, 5}, {6, 6}}, nil),
	}
	out, err := Features(fs)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].ID != 1 || out[1].ID != 2 {
		t.Errorf("Features = %v", out)
	}
}

func assertPath(t *testing.T, got, want Path) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("path = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("path = %v, want %v", got, want)
		}
	}
}
