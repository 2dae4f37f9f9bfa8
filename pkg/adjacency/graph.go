package adjacency

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// Edge is an undirected edge with A < B.
type Edge struct {
	A, B int64
}

// Graph is a symmetric adjacency relation over feature ids.
//
// Graph is not safe for concurrent mutation. Once built it is only read,
// and concurrent reads are safe.
type Graph struct {
	adj map[int64]map[int64]struct{}
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{adj: make(map[int64]map[int64]struct{})}
}

// AddNode adds an isolated node. Adding an existing node is a no-op.
func (g *Graph) AddNode(id int64) {
	if _, ok := g.adj[id]; !ok {
		g.adj[id] = make(map[int64]struct{})
	}
}

// AddEdge adds the undirected edge a–b, creating either node if needed.
// Self-loops are ignored and duplicate edges are collapsed.
func (g *Graph) AddEdge(a, b int64) {
	g.AddNode(a)
	g.AddNode(b)
	if a == b {
		return
	}
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
}

// HasNode reports whether id is a node of g.
func (g *Graph) HasNode(id int64) bool {
	_, ok := g.adj[id]
	return ok
}

// HasEdge reports whether a and b are adjacent.
func (g *Graph) HasEdge(a, b int64) bool {
	_, ok := g.adj[a][b]
	return ok
}

// Neighbors returns the neighbors of id in ascending order.
func (g *Graph) Neighbors(id int64) []int64 {
	return slices.Sorted(maps.Keys(g.adj[id]))
}

// Degree returns the number of neighbors of id.
func (g *Graph) Degree(id int64) int { return len(g.adj[id]) }

// Nodes returns all node ids in ascending order.
func (g *Graph) Nodes() []int64 {
	return slices.Sorted(maps.Keys(g.adj))
}

// Edges returns every undirected edge once, sorted by (A, B).
func (g *Graph) Edges() []Edge {
	var out []Edge
	for a, nbrs := range g.adj {
		for b := range nbrs {
			if a < b {
				out = append(out, Edge{A: a, B: b})
			}
		}
	}
	slices.SortFunc(out, func(x, y Edge) int {
		if x.A != y.A {
			return cmp.Compare(x.A, y.A)
		}
		return cmp.Compare(x.B, y.B)
	})
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.adj) }

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, nbrs := range g.adj {
		n += len(nbrs)
	}
	return n / 2
}

// Equal reports whether g and o have the same nodes and edges.
func (g *Graph) Equal(o *Graph) bool {
	if g.NodeCount() != o.NodeCount() {
		return false
	}
	for id, nbrs := range g.adj {
		other, ok := o.adj[id]
		if !ok || !maps.Equal(nbrs, other) {
			return false
		}
	}
	return true
}

// Validate checks that every edge is present in both directions.
func (g *Graph) Validate() error {
	for a, nbrs := range g.adj {
		for b := range nbrs {
			if a == b {
				return fmt.Errorf("self-loop on %d", a)
			}
			if !g.HasEdge(b, a) {
				return fmt.Errorf("edge %d-%d has no reverse", a, b)
			}
		}
	}
	return nil
}
