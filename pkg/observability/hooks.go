// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about connectivity runs, geometry problems, and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the engine packages
// never import a metrics backend. The prom subpackage provides a Prometheus
// implementation.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    h := prom.New(prometheus.NewRegistry())
//	    observability.SetPipelineHooks(h)
//	    observability.SetGeometryHooks(h)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnBuildStart(ctx, len(features))
//	// ... build the adjacency graph ...
//	observability.Pipeline().OnBuildComplete(ctx, nodes, edges, failures, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the connectivity pipeline.
type PipelineHooks interface {
	// Adjacency build events
	OnBuildStart(ctx context.Context, features int)
	OnBuildComplete(ctx context.Context, nodes, edges, failures int, duration time.Duration, err error)

	// Reachability events
	OnReachStart(ctx context.Context, strategy string, seeds int)
	OnReachComplete(ctx context.Context, strategy string, reached int, duration time.Duration, err error)

	// Stitching events
	OnStitchComplete(ctx context.Context, features int, duration time.Duration, err error)
}

// =============================================================================
// Geometry Hooks
// =============================================================================

// GeometryHooks receives per-pair events from adjacency evaluation.
// Implementations must be safe for concurrent use.
type GeometryHooks interface {
	// OnPredicateFailure records a pair whose geometry could not be evaluated.
	OnPredicateFailure(ctx context.Context, a, b int64, err error)

	// OnNearMiss records a non-intersecting pair within the near-miss tolerance.
	OnNearMiss(ctx context.Context, a, b int64)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, int) {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnReachStart(context.Context, string, int) {}
func (NoopPipelineHooks) OnReachComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnStitchComplete(context.Context, int, time.Duration, error) {}

// NoopGeometryHooks is a no-op implementation of GeometryHooks.
type NoopGeometryHooks struct{}

func (NoopGeometryHooks) OnPredicateFailure(context.Context, int64, int64, error) {}
func (NoopGeometryHooks) OnNearMiss(context.Context, int64, int64)                {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	geometryHooks GeometryHooks = NoopGeometryHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetGeometryHooks registers custom geometry hooks.
func SetGeometryHooks(h GeometryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		geometryHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Geometry returns the registered geometry hooks.
func Geometry() GeometryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return geometryHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	geometryHooks = NoopGeometryHooks{}
	cacheHooks = NoopCacheHooks{}
}
