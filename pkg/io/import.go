package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/followstreams/pkg/adjacency"
	"github.com/matzehuels/followstreams/pkg/errors"
	"github.com/matzehuels/followstreams/pkg/feature"
)

// Unmarshal decodes a graph encoded by [Marshal] or [WriteJSON].
func Unmarshal(data []byte) (*adjacency.Graph, *adjacency.Report, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ReadJSON decodes a JSON graph from r.
//
// Edges may reference nodes missing from the node list; such nodes are
// added. Returns INVALID_FORMAT for malformed JSON.
//
// The returned Report has Pairs set to zero, since the number of evaluated
// pairs is not serialized. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*adjacency.Graph, *adjacency.Report, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}

	g := adjacency.New()
	for _, id := range data.Nodes {
		g.AddNode(id)
	}
	for _, e := range data.Edges {
		g.AddEdge(e.A, e.B)
	}

	report := &adjacency.Report{}
	for _, f := range data.Failures {
		report.PredicateFailures = append(report.PredicateFailures, adjacency.PredicateFailure{
			A:   f.A,
			B:   f.B,
			Err: restoreError(f),
		})
	}
	for _, p := range data.NearMisses {
		report.NearMisses = append(report.NearMisses, adjacency.Pair{A: p.A, B: p.B})
	}
	return g, report, nil
}

// restoreError rebuilds a failure's error. Coded errors keep their code;
// the cause chain is flattened into the message.
func restoreError(f failure) error {
	if f.Code == "" {
		return fmt.Errorf("%s", f.Error)
	}
	return errors.New(errors.Code(f.Code), "%s", f.Error)
}

// ImportJSON reads a JSON graph file at path.
//
// If the file does not exist, ImportJSON returns a FILE_NOT_FOUND error.
func ImportJSON(path string) (*adjacency.Graph, *adjacency.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// ImportGeoJSON reads a GeoJSON FeatureCollection from path, or from
// standard input when path is "-".
func ImportGeoJSON(path string) ([]feature.Feature, error) {
	if path == "-" {
		return feature.ReadGeoJSON(os.Stdin)
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fs, err := feature.ReadGeoJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fs, nil
}
