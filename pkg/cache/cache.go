// Package cache provides the content-addressed store used to reuse adjacency
// graphs across runs.
//
// Building the graph is the expensive stage of a run, quadratic in the
// number of features. Its result depends only on the feature set and the
// builder options, so it is cached under a key derived from a hash of both.
// Every engine works with or without a cache. A nil Cache disables caching;
// [FileCache] stores entries on disk for the CLI and [RedisCache] shares them
// between machines.
package cache

import (
	"context"
	"time"
)

// TTLGraph is how long cached adjacency graphs are kept. Graphs are keyed by
// content hash and never go stale, so the TTL only bounds disk usage.
const TTLGraph = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is reported as hit == false with
	// a nil error; errors are reserved for backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
