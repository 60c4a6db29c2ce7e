package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	atlasio "github.com/matzehuels/atlaspack/pkg/io"
	"github.com/matzehuels/atlaspack/pkg/pipeline"
	"github.com/matzehuels/atlaspack/pkg/render"
)

// visualizeCommand creates the visualize command for debugging a packed atlas.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		output string
		opts   render.OverlayOptions
	)

	cmd := &cobra.Command{
		Use:   "visualize [output-dir]",
		Short: "Draw the metadata over the atlas pages",
		Long: `Draw the metadata over the atlas pages.

Reads packed_texture.json and the packed_texture_<i>.png pages from the output
directory of a pack run and writes container_<i>_atlas_visualization.png for
each page: every texture as a semi-transparent rectangle labelled with its
name, and every sub-region as an outline.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := pipeline.DefaultOutputDir
			if len(args) == 1 {
				dir = args[0]
			}
			if output == "" {
				output = dir
			}
			return c.runVisualize(cmd.Context(), dir, output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "directory for the visualizations (default: the input directory)")
	cmd.Flags().BoolVar(&opts.FullNames, "full-names", false, "label textures with their full path")
	cmd.Flags().Uint8Var(&opts.Alpha, "alpha", 128, "opacity of the texture rectangles (1-255)")

	return cmd
}

// visualizationPath returns the file written for page index.
func visualizationPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("container_%d_atlas_visualization.png", index))
}

// runVisualize renders one visualization per page listed in the metadata.
func (c *CLI) runVisualize(ctx context.Context, dir, output string, opts render.OverlayOptions) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	meta, err := atlasio.ImportMetadata(filepath.Join(dir, atlasio.MetadataFile))
	if err != nil {
		return fmt.Errorf("load metadata: %w", err)
	}
	records := meta.Records()
	pages := meta.Containers()
	if pages == 0 {
		printInfo("No textures in %s", dir)
		return nil
	}
	if err := os.MkdirAll(output, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d pages...", pages))
	spinner.Start()

	var written []string
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			spinner.Stop()
			return err
		}
		page, err := atlasio.ImportPage(atlasio.PagePath(dir, i))
		if err != nil {
			spinner.StopWithError("Visualization failed")
			return fmt.Errorf("page %d: %w", i, err)
		}
		path := visualizationPath(output, i)
		if err := atlasio.ExportPage(render.Overlay(page, i, records, opts), path); err != nil {
			spinner.StopWithError("Visualization failed")
			return fmt.Errorf("page %d: %w", i, err)
		}
		logger.Debug("saved visualization", "container", i, "path", path)
		written = append(written, path)
	}
	spinner.Stop()
	prog.done("rendered visualizations", "pages", len(written))

	printSuccess("Visualized %d textures on %d pages", len(records), pages)
	for _, path := range written {
		printFile(path)
	}
	return nil
}
