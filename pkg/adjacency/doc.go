// Package adjacency builds the undirected "geometrically intersects" graph
// over a set of features.
//
// # Building
//
// [Builder.Build] evaluates a [geo.Predicate] over the upper triangle of the
// feature list: the feature at position i is tested only against features
// at positions greater than i, so every unordered pair is evaluated exactly
// once and no feature is tested against itself. Each row of the triangle is
// an independent task; tasks run on a bounded worker pool and write only to
// their own result slot. Once every task has finished, the coordinator
// merges the rows into a [Graph] sequentially, adding each edge in both
// directions. No goroutine reads or writes the graph during the parallel
// phase, so the graph needs no lock.
//
// # Failures
//
// A predicate error for a pair (usually malformed geometry) is recoverable:
// the pair is treated as not adjacent and recorded in the [Report]. A task
// that panics is not: the builder waits for the remaining tasks to drain and
// returns a WORKER_FAILURE error. Cancelling the context aborts outstanding
// tasks before the merge, leaving no partial graph behind.
//
// # Lazy evaluation
//
// [Lazy] computes a feature's neighbors on demand instead of building the
// whole graph up front. It backs the streaming reachability search, which
// only ever evaluates rows for features it actually reaches.
package adjacency
