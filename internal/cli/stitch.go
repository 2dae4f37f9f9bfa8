package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/followstreams/pkg/io"
	"github.com/matzehuels/followstreams/pkg/pipeline"
)

// stitchOpts holds the command-line flags for the stitch command.
type stitchOpts struct {
	source string
	dest   string
	ids    []int64 // restrict stitching to these features
}

// stitchCommand creates the stitch command.
func (c *CLI) stitchCommand() *cobra.Command {
	var opts stitchOpts

	cmd := &cobra.Command{
		Use:   "stitch",
		Short: "Join the rings of multi-ring features into single paths",
		Long: `Stitch replaces every multi-ring geometry with one path that visits its rings
in nearest-endpoint order, starting from the first ring. Polygons become
single-ring polygons and multi-line strings become line strings.`,
		Example: `  followstreams stitch -s connected.geojson -d stitched.geojson
  followstreams stitch -s connected.geojson -d - --id 4567 --id 4568`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStitch(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.source, "source", "s", "", "input GeoJSON file (- for stdin)")
	cmd.Flags().StringVarP(&opts.dest, "dest", "d", "", "output GeoJSON file (- for stdout)")
	cmd.Flags().Int64SliceVar(&opts.ids, "id", nil, "only stitch the feature with this id (repeatable)")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("dest")

	return cmd
}

func (c *CLI) runStitch(ctx context.Context, o *stitchOpts) error {
	store, err := c.loadStore(ctx, o.source)
	if err != nil {
		return err
	}
	for _, id := range o.ids {
		if !store.Has(id) {
			c.Logger.Warn("feature not in input", "id", id)
		}
	}

	prog := newProgress(c.Logger)
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	out, n, err := runner.Stitch(ctx, store.Features(), o.ids)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Stitched %d features", n))

	if err := io.ExportGeoJSON(out, o.dest); err != nil {
		return fmt.Errorf("write %s: %w", o.dest, err)
	}
	if o.dest != "-" {
		printSuccess("Stitched %s of %d features", StyleNumber.Render(fmt.Sprint(n)), len(out))
		printFile(o.dest)
	}
	return nil
}
