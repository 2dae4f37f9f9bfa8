package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/followstreams/pkg/adjacency"
	"github.com/matzehuels/followstreams/pkg/errors"
	"github.com/matzehuels/followstreams/pkg/feature"
)

type graph struct {
	Nodes      []int64   `json:"nodes"`
	Edges      []pair    `json:"edges"`
	Failures   []failure `json:"failures,omitempty"`
	NearMisses []pair    `json:"near_misses,omitempty"`
}

type pair struct {
	A int64 `json:"a"`
	B int64 `json:"b"`
}

type failure struct {
	A     int64  `json:"a"`
	B     int64  `json:"b"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

// Marshal encodes a graph and its build report as compact JSON.
// A nil report is encoded as an empty one.
func Marshal(g *adjacency.Graph, report *adjacency.Report) ([]byte, error) {
	return json.Marshal(toWire(g, report))
}

// WriteJSON encodes a graph and its build report as indented JSON and writes
// it to w.
func WriteJSON(g *adjacency.Graph, report *adjacency.Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toWire(g, report)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *adjacency.Graph, report *adjacency.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, report, f)
}

// ExportGeoJSON writes features as a GeoJSON FeatureCollection to path, or
// to standard output when path is "-".
func ExportGeoJSON(features []feature.Feature, path string) error {
	if path == "-" {
		return feature.WriteGeoJSON(os.Stdout, features)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return feature.WriteGeoJSON(f, features)
}

func toWire(g *adjacency.Graph, report *adjacency.Report) graph {
	out := graph{Nodes: g.Nodes(), Edges: []pair{}}
	if out.Nodes == nil {
		out.Nodes = []int64{}
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, pair{A: e.A, B: e.B})
	}
	if report == nil {
		return out
	}
	for _, f := range report.PredicateFailures {
		code := errors.GetCode(f.Err)
		msg := f.Err.Error()
		if code != "" {
			msg = strings.TrimPrefix(msg, string(code)+": ")
		}
		out.Failures = append(out.Failures, failure{A: f.A, B: f.B, Code: string(code), Error: msg})
	}
	for _, p := range report.NearMisses {
		out.NearMisses = append(out.NearMisses, pair{A: p.A, B: p.B})
	}
	return out
}
