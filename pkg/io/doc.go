// Package io reads and writes adjacency graphs and feature collections.
//
// # Graph Format
//
// Graphs are serialized as JSON with node ids, undirected edges and the
// non-fatal outcomes of the build:
//
//	{
//	  "nodes": [101, 202, 303],
//	  "edges": [{"a": 101, "b": 202}],
//	  "failures": [{"a": 202, "b": 303, "error": "ring has 2 points"}],
//	  "near_misses": [{"a": 101, "b": 303}]
//	}
//
// Each edge appears once with a < b. The format backs the graph cache and the
// connect command's --graph output; [WriteJSON] output read back with
// [ReadJSON] yields an equal graph. Restored failures carry their original
// message as a MALFORMED_GEOMETRY error.
//
// # Features
//
// [ImportGeoJSON] and [ExportGeoJSON] are file-based wrappers around the
// GeoJSON codec in the feature package. The path "-" means standard input
// or standard output.
package io
