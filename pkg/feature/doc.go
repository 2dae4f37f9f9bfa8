// Package feature provides the immutable Feature Store that the connectivity
// and stitching engines read from.
//
// # Overview
//
// A [Feature] is one water-related map object: a lake polygon, a river
// multipolygon, or a stream centerline. Features are identified by an int64
// id that is unique within a run and carry their OSM tags as a string map.
//
// A [Store] holds features in the order they were extracted. That order is
// the feature's rank: the adjacency builder only tests a feature against
// higher-ranked ones, and every subset the store hands out preserves it.
//
//	features, err := feature.ReadGeoJSON(r)
//	store, err := feature.NewStore(features)
//	lakes := store.Filter(feature.MatchAny(feature.WaterTags))
//
// # Seed Lookup
//
// Reachability searches start from seed features chosen by name. Each name
// must resolve to exactly one feature; see [SeedsByName] and [TieBreak] for
// how zero and multiple matches are reported.
//
// # Pre-filtering
//
// [Store.WithinBound] is an optional stage that drops features whose bounding
// box lies entirely outside an area of interest before the quadratic graph
// build. It is a performance knob only; connectivity inside the box is
// unaffected except for paths that leave it.
//
// # Concurrency
//
// A Store is never modified after [NewStore] returns and is safe for
// concurrent readers.
package feature
