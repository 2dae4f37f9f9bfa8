// Package pkg provides the core libraries for followstreams hydrological
// connectivity analysis.
//
// # Overview
//
// Followstreams answers one question about a set of OpenStreetMap water
// features: starting from a named lake, which lakes, ponds, rivers and
// streams are physically connected to it? Two features are connected when
// their geometries touch; connectivity is the transitive closure of that
// relation from the seeds.
//
// # Architecture
//
// The typical data flow:
//
//	GeoJSON FeatureCollection (osmium export)
//	         ↓
//	    [feature] package (store, tag and bound pre-filters, seed lookup)
//	         ↓
//	    [adjacency] package (pairwise intersection graph, worker pool)
//	         ↓
//	    [reach] package (breadth-first search, batch or streaming)
//	         ↓
//	    [stitch] package (optional ring stitching)
//	         ↓
//	    GeoJSON / graph JSON / DOT output
//
// # Quick Start
//
//	features, _ := io.ImportGeoJSON("water.geojson")
//	store, _ := feature.NewStore(features)
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, store, pipeline.Options{
//	    Seeds: []string{"Lake Sammamish"},
//	})
//	if err != nil {
//	    return err
//	}
//	_ = io.ExportGeoJSON(result.Features, "connected.geojson")
//
// # Main Packages
//
// ## Engines
//
// [feature] - Feature store keyed by OSM id, GeoJSON codec, water tag
// filter and seed resolution with explicit tie-break policies.
//
// [geo] - The intersection predicate over orb geometries, including
// containment, and the near-miss test.
//
// [adjacency] - Undirected adjacency graph, the parallel upper-triangle
// builder and the lazy neighbor source used by streaming search.
//
// [reach] - Batch BFS over a built graph and streaming BFS with a single
// coordinator that owns the frontier.
//
// [stitch] - Nearest-endpoint ring stitching for multi-ring features.
//
// ## Orchestration and Infrastructure
//
// [pipeline] - Filter → build → reach → stitch, shared by every entry point.
//
// [cache] - Optional content-addressed graph cache: file, Redis, or none.
//
// [io] - Adjacency graph JSON and GeoJSON file helpers.
//
// [render/nodelink] - Node-link diagrams of the adjacency graph via Graphviz.
//
// [observability] - Hook interfaces, with a Prometheus backend in
// [observability/prom].
//
// [errors] - Coded errors shared by all packages.
//
// # Testing
//
//	go test ./...                        # All tests
//	go test ./pkg/reach/...              # Specific package
//	go test -run Example ./pkg/...       # Examples only
//	FOLLOWSTREAMS_TEST_REDIS=localhost:6379 go test ./pkg/cache/...
//
// [feature]: https://pkg.go.dev/github.com/matzehuels/followstreams/pkg/feature
// [geo]: https://pkg.go.dev/github.com/matzehuels/followstreams/pkg/geo
// [adjacency]: https://pkg.go.dev/github.com/matzehuels/followstreams/pkg/adjacency
// [reach]: https://pkg.go.dev/github.com/matzehuels/followstreams/pkg/reach
// [stitch]: https://pkg.go.dev/github.com/matzehuels/followstreams/pkg/stitch
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/followstreams/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/followstreams/pkg/cache
// [io]: https://pkg.go.dev/github.com/matzehuels/followstreams/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/followstreams/pkg/render/nodelink
// [observability]: https://pkg.go.dev/github.com/matzehuels/followstreams/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/followstreams/pkg/observability/prom
// [errors]: https://pkg.go.dev/github.com/matzehuels/followstreams/pkg/errors
package pkg
