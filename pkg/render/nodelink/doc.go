// Package nodelink renders adjacency graphs as node-link diagrams.
//
// # Overview
//
// This package produces undirected graph drawings using Graphviz: one
// ellipse per feature, one line per pair of intersecting features. It is a
// debugging view of the connectivity model. Seeds are drawn with a heavy
// outline, reached features are filled and everything else stays hollow, so
// a component that should have been reached but was not stands out.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{
//	    Label:     func(id int64) string { return names[id] },
//	    Highlight: res.Reached.Has,
//	    Seeds:     seeds,
//	})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, pass the SVG to the converters in the render
// package.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
