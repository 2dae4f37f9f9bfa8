package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/followstreams/pkg/adjacency"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Label returns the display label for a feature. Nil or an empty
	// result falls back to the id.
	Label func(id int64) string
	// Highlight marks features to fill, typically the reached set.
	Highlight func(id int64) bool
	// Seeds are drawn with a heavy outline.
	Seeds []int64
	// Detailed appends the id and degree to every label.
	Detailed bool
}

// ToDOT converts an adjacency graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(g *adjacency.Graph, opts Options) string {
	seeds := make(map[int64]bool, len(opts.Seeds))
	for _, s := range opts.Seeds {
		seeds[s] = true
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [color=\"#4a6fa5\"];\n")
	buf.WriteString("\n")

	for _, id := range g.Nodes() {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(g, id, opts))}
		if opts.Highlight != nil && opts.Highlight(id) {
			attrs = append(attrs, "fillcolor=\"#9ecae1\"")
		}
		if seeds[id] {
			attrs = append(attrs, "penwidth=3")
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", e.A, e.B)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(g *adjacency.Graph, id int64, opts Options) string {
	label := ""
	if opts.Label != nil {
		label = opts.Label(id)
	}
	if label == "" {
		label = strconv.FormatInt(id, 10)
	}
	if !opts.Detailed {
		return label
	}
	return fmt.Sprintf("%s\nid: %d\ndegree: %d", label, id, g.Degree(id))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with
// its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
