// Package reach finds the features connected to a set of seeds.
//
// [Reach] is a single-threaded breadth-first search over a fully built
// [adjacency.Graph]. It is the default: the graph is immutable by the time
// the search starts, so the search shares no state with anything.
//
// [Stream] interleaves neighbor computation with the search. Workers compute
// the neighbors of dispatched nodes on demand, typically with
// [adjacency.Lazy], while a single coordinator owns the frontier and the
// reached set. The coordinator stops only when the frontier is empty and no
// neighbor computation is in flight, decided in one place; a momentarily
// empty frontier with work still outstanding is not termination.
//
// Both strategies yield the same reached set for the same graph and seeds,
// independent of worker count and scheduling. Only the discovery order
// differs.
package reach
