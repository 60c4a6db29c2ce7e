package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlaspack/pkg/cache"
	errs "github.com/matzehuels/atlaspack/pkg/errors"
	"github.com/matzehuels/atlaspack/pkg/observability"
	"github.com/matzehuels/atlaspack/pkg/pack"
	"github.com/matzehuels/atlaspack/pkg/render"
	"github.com/matzehuels/atlaspack/pkg/state"
)

// treeCacheTTL bounds how long rendered trees are kept.
const treeCacheTTL = 7 * 24 * time.Hour

// Tree output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
)

type treeParams struct {
	index     int
	outputDir string
	stateURL  string
	format    string
	output    string
	noCache   bool
	opts      render.TreeOptions
}

// treeCommand creates the tree command for inspecting placement trees.
func (c *CLI) treeCommand() *cobra.Command {
	p := treeParams{}

	cmd := &cobra.Command{
		Use:   "tree <container>",
		Short: "Export the placement tree of one page",
		Long: `Export the placement tree of one page as Graphviz DOT or SVG.

The tree is read from the saved state of a pack run. Placed nodes show the
size of their texture; free leaves are dashed and show the space left.
Rendered SVGs are cached locally.`,
		Example: `  atlaspack tree 0 > tree.dot
  atlaspack tree 1 --format svg -o tree.svg --hide-empty`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil || index < 0 {
				return errs.New(errs.ErrCodeInvalidInput, "container must be a non-negative integer, got %q", args[0])
			}
			if p.format != formatDOT && p.format != formatSVG {
				return errs.New(errs.ErrCodeUnsupported, "unsupported format %q (want dot or svg)", p.format)
			}
			p.index = index
			return c.runTree(cmd.Context(), p)
		},
	}

	cmd.Flags().StringVarP(&p.outputDir, "output-dir", "d", "", "output directory of the pack run (default packed_textures)")
	cmd.Flags().StringVar(&p.stateURL, "state-url", "", "state location: file path or redis:// URL")
	cmd.Flags().StringVar(&p.format, "format", formatDOT, "output format: dot, svg")
	cmd.Flags().StringVarP(&p.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&p.opts.Detailed, "detailed", false, "add node rectangles to the labels")
	cmd.Flags().BoolVar(&p.opts.HideEmpty, "hide-empty", false, "omit zero-area free nodes")
	cmd.Flags().BoolVar(&p.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runTree loads the snapshot and exports one container's tree.
func (c *CLI) runTree(ctx context.Context, p treeParams) error {
	root, err := loadTree(ctx, stateLocation(p.outputDir, p.stateURL), p.index)
	if err != nil {
		return err
	}

	dot := render.ToDOT(root, p.opts)
	data := []byte(dot)
	cached := false
	if p.format == formatSVG {
		if data, cached, err = renderTreeSVG(ctx, dot, p.opts, p.noCache); err != nil {
			return err
		}
	}

	if p.output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(p.output, data, 0644); err != nil {
		return errs.Wrap(errs.ErrCodeWrite, err, "write %s", p.output)
	}

	nodes, placed := pack.RestorePacker(root).Count()
	printSuccess("Exported tree of page %d", p.index)
	printStats(nodes, placed, cached)
	printFile(p.output)
	return nil
}

// loadTree returns the placement tree of container index from the state at loc.
func loadTree(ctx context.Context, loc string, index int) (*pack.Node, error) {
	store, err := state.Open(loc)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	snap, err := state.LoadSnapshot(ctx, store)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, errs.New(errs.ErrCodeStateNotFound, "no state at %s", loc)
	}
	atlas, err := snap.Atlas(snap.ContainerSize)
	if err != nil {
		return nil, err
	}
	containers := atlas.Containers()
	if index >= len(containers) {
		return nil, errs.New(errs.ErrCodeNotFound, "page %d does not exist (atlas has %d pages)", index, len(containers))
	}
	return containers[index].Packer.Root(), nil
}

// renderTreeSVG renders dot through Graphviz, serving repeated requests from
// the cache. The second result reports a cache hit.
func renderTreeSVG(ctx context.Context, dot string, opts render.TreeOptions, noCache bool) ([]byte, bool, error) {
	store, err := newCache(noCache)
	if err != nil {
		return nil, false, fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	key := newKeyer().TreeKey(cache.Hash([]byte(dot)), cache.TreeKeyOpts{
		Format:    formatSVG,
		Detailed:  opts.Detailed,
		HideEmpty: opts.HideEmpty,
	})
	if data, ok, err := store.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "tree")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "tree")

	spinner := newSpinnerWithContext(ctx, "Rendering tree...")
	spinner.Start()
	data, err := render.RenderSVG(ctx, dot)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return nil, false, err
	}
	spinner.Stop()

	if err := store.Set(ctx, key, data, treeCacheTTL); err != nil {
		loggerFromContext(ctx).Debug("cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "tree", len(data))
	}
	return data, false, nil
}
