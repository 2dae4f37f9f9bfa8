// Package prom implements the observability hooks on Prometheus collectors.
//
// The engine runs as a batch job, so metrics are usually written to a
// node_exporter textfile with [WriteTextfile] once the run completes rather
// than scraped.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/followstreams/pkg/observability"
)

const namespace = "followstreams"

// Hooks records pipeline, geometry and cache events as Prometheus metrics.
// It implements every hook interface in the observability package.
type Hooks struct {
	BuildsTotal       prometheus.Counter
	BuildDuration     prometheus.Histogram
	GraphNodes        prometheus.Gauge
	GraphEdges        prometheus.Gauge
	PredicateFailures prometheus.Counter
	NearMisses        prometheus.Counter
	ReachDuration     *prometheus.HistogramVec
	Reached           *prometheus.GaugeVec
	StitchDuration    prometheus.Histogram
	CacheRequests     *prometheus.CounterVec
	CacheBytesWritten prometheus.Counter
	ErrorsTotal       *prometheus.CounterVec
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.GeometryHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
)

// New creates the collectors and registers them with reg.
// It panics if any collector is already registered, like MustRegister.
func New(reg prometheus.Registerer) *Hooks {
	h := &Hooks{
		BuildsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Total number of adjacency graph builds",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Adjacency graph build duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		GraphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Nodes in the most recently built adjacency graph",
		}),
		GraphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Undirected edges in the most recently built adjacency graph",
		}),
		PredicateFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predicate_failures_total",
			Help:      "Feature pairs whose geometry could not be evaluated",
		}),
		NearMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "near_misses_total",
			Help:      "Non-intersecting feature pairs within the near-miss tolerance",
		}),
		ReachDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reach_duration_seconds",
			Help:      "Reachability traversal duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"strategy"}),
		Reached: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reached_features",
			Help:      "Features reached from the seeds in the most recent traversal",
		}, []string{"strategy"}),
		StitchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stitch_duration_seconds",
			Help:      "Ring stitching duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by key type and result",
		}, []string{"key_type", "result"}),
		CacheBytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache",
		}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed pipeline stages",
		}, []string{"stage"}),
	}
	reg.MustRegister(
		h.BuildsTotal, h.BuildDuration, h.GraphNodes, h.GraphEdges,
		h.PredicateFailures, h.NearMisses, h.ReachDuration, h.Reached,
		h.StitchDuration, h.CacheRequests, h.CacheBytesWritten, h.ErrorsTotal,
	)
	return h
}

// Install registers h for every hook category.
func (h *Hooks) Install() {
	observability.SetPipelineHooks(h)
	observability.SetGeometryHooks(h)
	observability.SetCacheHooks(h)
}

func (h *Hooks) OnBuildStart(context.Context, int) {}

func (h *Hooks) OnBuildComplete(_ context.Context, nodes, edges, _ int, d time.Duration, err error) {
	h.BuildsTotal.Inc()
	h.BuildDuration.Observe(d.Seconds())
	if err != nil {
		h.ErrorsTotal.WithLabelValues("build").Inc()
		return
	}
	h.GraphNodes.Set(float64(nodes))
	h.GraphEdges.Set(float64(edges))
}

func (h *Hooks) OnReachStart(context.Context, string, int) {}

func (h *Hooks) OnReachComplete(_ context.Context, strategy string, reached int, d time.Duration, err error) {
	h.ReachDuration.WithLabelValues(strategy).Observe(d.Seconds())
	if err != nil {
		h.ErrorsTotal.WithLabelValues("reach").Inc()
		return
	}
	h.Reached.WithLabelValues(strategy).Set(float64(reached))
}

func (h *Hooks) OnStitchComplete(_ context.Context, _ int, d time.Duration, err error) {
	h.StitchDuration.Observe(d.Seconds())
	if err != nil {
		h.ErrorsTotal.WithLabelValues("stitch").Inc()
	}
}

func (h *Hooks) OnPredicateFailure(context.Context, int64, int64, error) {
	h.PredicateFailures.Inc()
}

func (h *Hooks) OnNearMiss(context.Context, int64, int64) { h.NearMisses.Inc() }

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.CacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.CacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, _ string, size int) {
	h.CacheBytesWritten.Add(float64(size))
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format. The file is replaced atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
