package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnBuildStart(ctx, 120)
	p.OnBuildComplete(ctx, 120, 340, 2, time.Second, nil)
	p.OnReachStart(ctx, "streaming", 1)
	p.OnReachComplete(ctx, "streaming", 57, time.Second, nil)
	p.OnStitchComplete(ctx, 57, time.Millisecond, nil)

	// Geometry hooks
	g := NoopGeometryHooks{}
	g.OnPredicateFailure(ctx, 1, 2, errors.New("ring has 2 points"))
	g.OnNearMiss(ctx, 3, 4)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "graph")
	c.OnCacheMiss(ctx, "graph")
	c.OnCacheSet(ctx, "graph", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Geometry().(NoopGeometryHooks); !ok {
		t.Error("Geometry() should return NoopGeometryHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customGeometry := &testGeometryHooks{}
	SetGeometryHooks(customGeometry)
	if Geometry() != customGeometry {
		t.Error("SetGeometryHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Geometry().(NoopGeometryHooks); !ok {
		t.Error("Reset() should restore NoopGeometryHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)
	SetGeometryHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
	if _, ok := Geometry().(NoopGeometryHooks); !ok {
		t.Error("SetGeometryHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testGeometryHooks struct{ NoopGeometryHooks }
type testCacheHooks struct{ NoopCacheHooks }
