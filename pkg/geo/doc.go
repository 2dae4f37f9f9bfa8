// Package geo provides the spatial predicates used to decide whether two
// features touch.
//
// The central type is [Predicate], a pairwise test over orb geometries. The
// default predicate, [Intersects], delegates to the simplefeatures geom
// package and has closed-set semantics: geometries that share a single
// boundary point, overlap, or contain one another all intersect. A pair whose
// geometry cannot be evaluated (a ring with too few points, non-finite
// coordinates, an unsupported type, a self-intersecting ring) yields a
// MALFORMED_GEOMETRY error instead of a boolean; callers treat such a pair as
// not adjacent and record the failure.
//
// [NearMiss] is a cheaper, bounding-box test used to flag pairs that come
// within a tolerance of each other without intersecting. Closely parallel
// features that should connect but do not are the usual symptom of a
// digitising gap in the source data.
package geo
