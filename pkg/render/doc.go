// Package render draws connectivity results.
//
// The [nodelink] subpackage turns an adjacency graph into a Graphviz diagram
// with reached features highlighted. This package holds the format
// conversions shared by renderers: [ToPDF] and [ToPNG] convert SVG using the
// external rsvg-convert tool from librsvg.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Highlight: res.Reached.Has})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0)
package render
