package cli

import (
	"context"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/atlaspack/pkg/observability"
	"github.com/matzehuels/atlaspack/pkg/pipeline"
)

// packCommand creates the pack command.
func (c *CLI) packCommand() *cobra.Command {
	var (
		configPath string
		noProgress bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Pack textures into atlas pages",
		Long: `Pack textures into square atlas pages.

Textures come from a directory (searched recursively) or from a file listing
one path per line. Every texture must have power-of-two dimensions; a
<name>.json file next to a texture may declare named sub-regions.

The output directory receives packed_texture_<i>.png pages, the
packed_texture.json metadata document and the state needed to append more
textures later with --append.

Defaults may be set in atlaspack.toml; flags always take precedence.`,
		Example: `  atlaspack pack -t assets/textures
  atlaspack pack -t assets/new -a
  atlaspack pack -f textures.txt -s 2048 -d build/atlas
  atlaspack pack -t assets --state-url redis://localhost:6379/0?key=game:atlas -a`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg.apply(cmd, &opts)
			return c.runPack(cmd.Context(), opts, !noProgress && interactive())
		},
	}

	cmd.Flags().StringVarP(&opts.InputDir, "textures-directory", "t", "", "directory to search for textures")
	cmd.Flags().StringVarP(&opts.PathsFile, "texture-paths-file", "f", "", "file listing texture paths, one per line")
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "d", pipeline.DefaultOutputDir, "directory for pages, metadata and state")
	cmd.Flags().IntVarP(&opts.ContainerSize, "size", "s", 0, "page edge in pixels, a power of two (default 1024, or the saved size with --append)")
	cmd.Flags().BoolVarP(&opts.Append, "append", "a", false, "add to the atlas of a previous run")
	cmd.Flags().StringVar(&opts.StateURL, "state-url", "", "state location: file path or redis:// URL (default <output-dir>/"+pipeline.StateFile+")")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default ./"+configFile+" if present)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the interactive progress view")

	cmd.MarkFlagsMutuallyExclusive("textures-directory", "texture-paths-file")
	cmd.MarkFlagsOneRequired("textures-directory", "texture-paths-file")

	return cmd
}

// runPack executes a packing run and prints the summary.
func (c *CLI) runPack(ctx context.Context, opts pipeline.Options, showProgress bool) error {
	var (
		result *pipeline.Result
		err    error
	)
	if showProgress {
		result, err = c.runWithProgress(ctx, opts)
	} else {
		opts.Logger = loggerFromContext(ctx)
		result, err = c.newRunner().Execute(ctx, opts)
	}
	if err != nil {
		return err
	}
	printPackSummary(result)
	return nil
}

// runWithProgress runs the pipeline while a bubbletea program draws its
// progress on stderr. Log output is suppressed while the view is active.
func (c *CLI) runWithProgress(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewProgressModel(cancel), tea.WithOutput(os.Stderr))

	prev := observability.Pipeline()
	observability.SetPipelineHooks(progressHooks{p: p})
	defer observability.SetPipelineHooks(prev)

	quiet := quietLogger(c.Logger.GetLevel())
	opts.Logger = quiet
	opts.Diagnostics = progressDiagnostics{p: p}

	viewErr := make(chan error, 1)
	go func() {
		_, err := p.Run()
		viewErr <- err
	}()

	result, err := pipeline.NewRunner(quiet).Execute(ctx, opts)
	p.Send(doneMsg{err: err})
	if verr := <-viewErr; verr != nil {
		c.Logger.Debug("progress view failed", "error", verr)
	}
	return result, err
}

// printPackSummary prints what a run produced.
func printPackSummary(r *pipeline.Result) {
	printSuccess("Packed %d textures into %d pages", r.Stats.Placed, len(r.Containers))
	if r.Resumed {
		printDetail("Appended to atlas %s (%d textures total)", r.AtlasID, r.Stats.Total)
	}
	if r.Stats.Skipped > 0 {
		printDetail("%d textures already packed", r.Stats.Skipped)
	}

	created := make(map[int]bool, len(r.Created))
	for _, c := range r.Created {
		created[c.Index] = true
	}
	touched := make(map[int]bool)
	for _, rec := range r.Records {
		touched[rec.Container] = true
	}
	printContainerTable(summarizeContainers(r.Containers, created, touched))

	for _, rej := range r.Rejected {
		printWarning("Rejected %s (%dx%d): %v", rej.Source, rej.Width, rej.Height, rej.Reason)
	}
	for _, d := range r.Dropped {
		printWarning("Dropped %s (%dx%d): %v", d.Block.Source, d.Block.Width, d.Block.Height, d.Err)
	}

	for _, page := range r.Pages {
		printFile(page)
	}
	printFile(r.MetadataPath)

	printNewline()
	printNextStep("Inspect the pages", "atlaspack visualize "+filepath.Dir(r.MetadataPath))
}
