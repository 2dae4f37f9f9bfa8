package adjacency_test

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/matzehuels/followstreams/pkg/adjacency"
	"github.com/matzehuels/followstreams/pkg/feature"
)

func Example() {
	lake := orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}
	outflow := orb.LineString{{2, 1}, {5, 1}}
	pond := orb.Polygon{{{9, 9}, {10, 9}, {10, 10}, {9, 10}, {9, 9}}}

	features := []feature.Feature{
		feature.New(1, lake, map[string]string{"natural": "water"}),
		feature.New(2, outflow, map[string]string{"waterway": "river"}),
		feature.New(3, pond, map[string]string{"water": "pond"}),
	}

	b := adjacency.Builder{Workers: 2, Logger: log.New(io.Discard)}
	g, report, err := b.Build(context.Background(), features)
	if err != nil {
		panic(err)
	}

	fmt.Println("nodes:", g.NodeCount())
	fmt.Println("edges:", g.Edges())
	fmt.Println("pairs evaluated:", report.Pairs)
	// Output:
	// nodes: 3
	// edges: [{1 2}]
	// pairs evaluated: 3
}
