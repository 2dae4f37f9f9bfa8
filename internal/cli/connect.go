package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/followstreams/pkg/errors"
	"github.com/matzehuels/followstreams/pkg/feature"
	"github.com/matzehuels/followstreams/pkg/io"
	"github.com/matzehuels/followstreams/pkg/observability"
	"github.com/matzehuels/followstreams/pkg/observability/prom"
	"github.com/matzehuels/followstreams/pkg/pipeline"
	"github.com/matzehuels/followstreams/pkg/render"
	"github.com/matzehuels/followstreams/pkg/render/nodelink"
)

// maxListedFailures caps the predicate failures printed in the summary.
const maxListedFailures = 10

// connectOpts holds the command-line flags for the connect command.
type connectOpts struct {
	source      string   // input GeoJSON ("-" for stdin)
	dest        string   // output GeoJSON ("-" for stdout)
	seeds       []string // seed feature names
	seedIDs     []int64  // seed feature ids
	tieBreak    string   // ambiguous seed policy
	strategy    string   // batch or streaming
	workers     int      // worker pool size, < 1 for default
	bbox        string   // optional pre-filter box
	nearMiss    float64  // near-miss tolerance in coordinate units
	waterOnly   bool     // keep only hydrologically relevant features
	tags        []string // additional key=value pre-filter tags
	stitch      bool     // stitch multi-ring reached features
	graphOut    string   // adjacency graph JSON output
	dotOut      string   // node-link diagram output (.dot, .svg, .pdf, .png)
	detailed    bool     // ids and degrees in diagram labels
	noCache     bool
	refresh     bool
	metricsFile string // Prometheus textfile output
}

// connectCommand creates the connect command.
func (c *CLI) connectCommand() *cobra.Command {
	var opts connectOpts

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Find the water features connected to the seed features",
		Long: `Connect reads a GeoJSON FeatureCollection, builds the graph of features whose
geometries touch, and writes every feature reachable from the seeds.

Seeds are selected by exact name (--seed) or id (--seed-id). A name matching
several features is an error unless --tie-break is set.`,
		Example: `  followstreams connect -s water.geojson -d connected.geojson --seed "Lake Sammamish"
  followstreams connect -s water.geojson -d out.geojson --seed-id 4567 --strategy streaming --water-only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg().apply(cmd.Flags()); err != nil {
				return err
			}
			popts, err := opts.pipelineOptions()
			if err != nil {
				return err
			}
			return c.runConnect(cmd.Context(), &opts, popts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.source, "source", "s", "", "input GeoJSON file (- for stdin)")
	f.StringVarP(&opts.dest, "dest", "d", "", "output GeoJSON file (- for stdout)")
	f.StringArrayVar(&opts.seeds, "seed", nil, "seed feature name (repeatable)")
	f.Int64SliceVar(&opts.seedIDs, "seed-id", nil, "seed feature id (repeatable)")
	f.StringVar(&opts.tieBreak, "tie-break", "none", "policy for ambiguous seed names: none, first, highest-id")
	f.StringVar(&opts.strategy, "strategy", pipeline.DefaultStrategy, "search strategy: batch, streaming")
	f.IntVar(&opts.workers, "workers", 0, "worker pool size (default: number of CPUs)")
	f.StringVar(&opts.bbox, "bbox", "", "only consider features intersecting minLon,minLat,maxLon,maxLat")
	f.Float64Var(&opts.nearMiss, "near-miss", 0, "report non-touching pairs closer than this tolerance")
	f.BoolVar(&opts.waterOnly, "water-only", false, "only consider lakes, ponds, rivers and other waterways")
	f.StringArrayVar(&opts.tags, "tag", nil, "only consider features with this key=value tag (repeatable)")
	f.BoolVar(&opts.stitch, "stitch", false, "stitch multi-ring connected features into single paths")
	f.StringVar(&opts.graphOut, "graph", "", "write the adjacency graph as JSON")
	f.StringVar(&opts.dotOut, "dot", "", "write a node-link diagram (.dot, .svg, .pdf or .png)")
	f.BoolVar(&opts.detailed, "detailed", false, "show ids and degrees in diagram labels")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the graph cache")
	f.BoolVar(&opts.refresh, "refresh", false, "rebuild the graph even if cached")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")

	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("dest")

	return cmd
}

// pipelineOptions validates the flags and converts them to pipeline options.
func (o *connectOpts) pipelineOptions() (pipeline.Options, error) {
	tb, err := feature.ParseTieBreak(o.tieBreak)
	if err != nil {
		return pipeline.Options{}, err
	}
	tags, err := feature.ParseTags(o.tags)
	if err != nil {
		return pipeline.Options{}, err
	}
	if o.waterOnly {
		tags = append(tags, feature.WaterTags...)
	}
	if o.strategy == pipeline.StrategyStreaming && (o.graphOut != "" || o.dotOut != "") {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "--graph and --dot need the batch strategy")
	}
	if o.dotOut != "" {
		if err := validateDiagramPath(o.dotOut); err != nil {
			return pipeline.Options{}, err
		}
	}

	opts := pipeline.Options{
		SeedIDs:           o.seedIDs,
		Seeds:             o.seeds,
		TieBreak:          tb,
		Tags:              tags,
		Strategy:          o.strategy,
		Workers:           o.workers,
		NearMissTolerance: o.nearMiss,
		Refresh:           o.refresh,
		Stitch:            o.stitch,
	}
	if o.bbox != "" {
		b, err := parseBBox(o.bbox)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Bound = b
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// runConnect executes the connect pipeline and writes all outputs.
func (c *CLI) runConnect(ctx context.Context, o *connectOpts, opts pipeline.Options) error {
	if o.metricsFile != "" {
		reg := prometheus.NewRegistry()
		prom.New(reg).Install()
		defer observability.Reset()
		defer func() {
			if err := prom.WriteTextfile(o.metricsFile, reg); err != nil {
				c.Logger.Warn("write metrics", "path", o.metricsFile, "error", err)
			}
		}()
	}

	store, err := c.loadStore(ctx, o.source)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, o.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	opts.Logger = c.Logger
	spin := newSpinner(ctx, c.status, fmt.Sprintf("Comparing %d features...", store.Len()))
	if !opts.IsStreaming() {
		opts.Progress = spin.Progress
	}
	spin.Start()
	result, err := runner.Execute(ctx, store, opts)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Connected %d of %d features", len(result.Features), store.Len()))

	if err := io.ExportGeoJSON(result.Features, o.dest); err != nil {
		return fmt.Errorf("write %s: %w", o.dest, err)
	}
	if o.graphOut != "" {
		if err := io.ExportJSON(result.Graph, result.Report, o.graphOut); err != nil {
			return err
		}
	}
	if o.dotOut != "" {
		if err := writeDiagram(ctx, o.dotOut, result, store, o.detailed); err != nil {
			return err
		}
	}

	if o.dest != "-" {
		printConnectSummary(result, o)
	}
	return nil
}

// loadStore reads and indexes the input features.
func (c *CLI) loadStore(ctx context.Context, path string) (*feature.Store, error) {
	spin := newSpinner(ctx, c.status, fmt.Sprintf("Reading %s...", displayPath(path)))
	spin.Start()
	defer spin.Stop()

	features, err := io.ImportGeoJSON(path)
	if err != nil {
		return nil, err
	}
	spin.SetMessage(fmt.Sprintf("Indexing %d features...", len(features)))
	store, err := feature.NewStore(features)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded features", "path", path, "features", store.Len())
	return store, nil
}

var diagramExts = map[string]bool{".dot": true, ".svg": true, ".pdf": true, ".png": true}

func validateDiagramPath(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !diagramExts[ext] {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported diagram format %q (must be .dot, .svg, .pdf or .png)", ext)
	}
	return nil
}

// writeDiagram renders the adjacency graph in the format implied by path.
func writeDiagram(ctx context.Context, path string, result *pipeline.Result, store *feature.Store, detailed bool) error {
	dot := nodelink.ToDOT(result.Graph, nodelink.Options{
		Label: func(id int64) string {
			f, _ := store.Get(id)
			return f.Name
		},
		Highlight: result.Reached.Has,
		Seeds:     result.Seeds,
		Detailed:  detailed,
	})

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".dot" {
		return os.WriteFile(path, []byte(dot), 0o644)
	}

	data, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return err
	}
	switch ext {
	case ".pdf":
		data, err = render.ToPDF(ctx, data)
	case ".png":
		data, err = render.ToPNG(ctx, data, 2)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printConnectSummary(result *pipeline.Result, o *connectOpts) {
	printSuccess("Connected %s features from %s",
		StyleNumber.Render(fmt.Sprint(result.Stats.Reached)),
		StyleHighlight.Render(fmt.Sprintf("%d seed(s)", len(result.Seeds))))
	printStats(result.Stats, result.CacheInfo.GraphHit)

	if n := result.Stats.PredicateFailures; n > 0 {
		printWarning("%d feature pair(s) could not be compared", n)
		for i, pf := range result.Report.PredicateFailures {
			if i == maxListedFailures {
				printDetail("... and %d more", n-maxListedFailures)
				break
			}
			printDetail("%d / %d: %v", pf.A, pf.B, errors.UserMessage(pf.Err))
		}
	}
	if n := result.Stats.NearMisses; n > 0 {
		printInfo("%d near miss(es) within %g", n, o.nearMiss)
	}

	printFile(o.dest)
	for _, p := range []string{o.graphOut, o.dotOut, o.metricsFile} {
		if p != "" {
			printFile(p)
		}
	}
}

func displayPath(path string) string {
	if path == "-" {
		return "stdin"
	}
	return filepath.Base(path)
}
