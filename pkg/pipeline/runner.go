package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/atlaspack/pkg/errors"
	atlasio "github.com/matzehuels/atlaspack/pkg/io"
	"github.com/matzehuels/atlaspack/pkg/observability"
	"github.com/matzehuels/atlaspack/pkg/pack"
	"github.com/matzehuels/atlaspack/pkg/source"
	"github.com/matzehuels/atlaspack/pkg/state"
)

// Runner executes packing runs.
//
// The Runner holds no per-run state; everything a run produces is returned
// in its Result.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete state → ingest → pack → output pipeline.
//
// Without Append the previous snapshot is ignored and overwritten. Failures
// before the output stage leave earlier outputs untouched.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeWrite, err, "create output dir %s", opts.OutputDir)
	}

	store := opts.Store
	if store == nil {
		var err error
		if store, err = state.Open(opts.StateLocation()); err != nil {
			return nil, fmt.Errorf("state: %w", err)
		}
		defer store.Close()
	}

	result := &Result{
		StateLoc:     store.Location(),
		SkipListPath: opts.SkipListPath(),
	}

	// Stage 1: State
	stateStart := time.Now()
	atlas, skip, err := r.loadState(ctx, store, &opts, result)
	if err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}
	result.Stats.StateTime = time.Since(stateStart)

	// Stage 2: Ingest
	ingestStart := time.Now()
	col, err := r.Ingest(ctx, opts, skip)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	result.Rejected = col.Rejected
	result.Skipped = col.Skipped
	result.Stats.IngestTime = time.Since(ingestStart)
	result.Stats.Collected = len(col.Blocks)
	result.Stats.Rejected = len(col.Rejected)
	result.Stats.Skipped = len(col.Skipped)

	r.Logger.Info("collected textures",
		"textures", len(col.Blocks),
		"rejected", len(col.Rejected),
		"skipped", len(col.Skipped),
		"duration", result.Stats.IngestTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Pack
	packStart := time.Now()
	observability.Pipeline().OnPackStart(ctx, len(col.Blocks))
	packed := atlas.Pack(col.Blocks)
	result.Stats.PackTime = time.Since(packStart)
	observability.Pipeline().OnPackComplete(ctx, len(packed.Records), len(packed.Dropped), len(packed.Created), result.Stats.PackTime)

	result.Records = packed.Records
	result.Created = packed.Created
	result.Dropped = packed.Dropped
	result.Containers = atlas.Containers()
	result.Stats.Placed = len(packed.Records)
	result.Stats.Dropped = len(packed.Dropped)
	result.Stats.Total = len(atlas.Records())

	r.Logger.Info("packed textures",
		"placed", len(packed.Records),
		"dropped", len(packed.Dropped),
		"new_containers", len(packed.Created),
		"containers", len(atlas.Containers()),
		"duration", result.Stats.PackTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: Output
	outputStart := time.Now()
	if err := r.saveState(ctx, store, atlas, result.AtlasID); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}
	if err := r.writeOutputs(ctx, opts, atlas, packed, result); err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	for _, rec := range packed.Records {
		skip.Add(rec.Source)
	}
	if err := state.WriteSkipList(result.SkipListPath, skip); err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	result.Stats.OutputTime = time.Since(outputStart)

	r.Logger.Info("wrote outputs",
		"dir", opts.OutputDir,
		"pages", len(result.Pages),
		"duration", result.Stats.OutputTime)

	return result, nil
}

// loadState returns the atlas to pack into and the skip-list to collect
// against. Without Append both start empty.
func (r *Runner) loadState(ctx context.Context, store state.Store, opts *Options, result *Result) (*pack.Atlas, state.SkipList, error) {
	packOpts := []pack.Option{pack.WithDiagnostics(r.diagnostics(*opts))}

	if !opts.Append {
		result.AtlasID = state.NewAtlasID()
		atlas, err := pack.NewAtlas(sizeOr(opts.ContainerSize, DefaultContainerSize), packOpts...)
		return atlas, make(state.SkipList), err
	}

	start := time.Now()
	snap, err := state.LoadSnapshot(ctx, store)
	observability.State().OnStateLoad(ctx, store.Location(), snap != nil, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}

	skip, err := state.ReadSkipList(opts.SkipListPath())
	if err != nil {
		return nil, nil, err
	}

	if snap == nil {
		r.Logger.Info("no previous state, starting fresh", "state", store.Location())
		result.AtlasID = state.NewAtlasID()
		atlas, err := pack.NewAtlas(sizeOr(opts.ContainerSize, DefaultContainerSize), packOpts...)
		return atlas, skip, err
	}

	size := sizeOr(opts.ContainerSize, snap.ContainerSize)
	if size != snap.ContainerSize {
		r.Logger.Warn("container size differs from previous run; new pages use the new size",
			"previous", snap.ContainerSize, "size", size)
	}
	atlas, err := snap.Atlas(size, packOpts...)
	if err != nil {
		return nil, nil, err
	}
	result.AtlasID = snap.AtlasID
	result.Resumed = true

	// The snapshot is authoritative: a skip-list left stale by a failed
	// write must not let its textures be placed twice.
	for _, rec := range snap.Records {
		skip.Add(rec.Source)
	}

	r.Logger.Info("loaded previous state",
		"state", store.Location(),
		"containers", len(snap.Containers),
		"records", len(snap.Records),
		"skip_list", len(skip))
	return atlas, skip, nil
}

// Ingest collects the textures for a run, skipping identifiers in skip.
func (r *Runner) Ingest(ctx context.Context, opts Options, skip state.SkipList) (*source.Collection, error) {
	r.applyLogger(&opts)
	input := opts.InputName()
	observability.Pipeline().OnIngestStart(ctx, input)
	start := time.Now()

	srcOpts := opts.sourceOptions()
	srcOpts.Skip = skip
	col, err := source.Collect(ctx, srcOpts)

	blocks, rejected := 0, 0
	if col != nil {
		blocks, rejected = len(col.Blocks), len(col.Rejected)
	}
	observability.Pipeline().OnIngestComplete(ctx, input, blocks, rejected, time.Since(start), err)
	return col, err
}

func (r *Runner) saveState(ctx context.Context, store state.Store, atlas *pack.Atlas, id string) error {
	start := time.Now()
	data, err := state.Encode(state.FromAtlas(atlas, id))
	if err == nil {
		err = store.Save(ctx, data)
	}
	observability.State().OnStateSave(ctx, store.Location(), len(data), time.Since(start), err)
	if err != nil {
		return err
	}
	r.Logger.Debug("saved state", "state", store.Location(), "bytes", len(data))
	return nil
}

// writeOutputs writes the metadata document for every record of the atlas
// and the pages this run changed. Pages of untouched containers are only
// rewritten when their file is missing.
func (r *Runner) writeOutputs(ctx context.Context, opts Options, atlas *pack.Atlas, packed pack.Result, result *Result) (err error) {
	observability.Pipeline().OnOutputStart(ctx, opts.OutputDir)
	start := time.Now()
	defer func() {
		observability.Pipeline().OnOutputComplete(ctx, opts.OutputDir, len(result.Pages), time.Since(start), err)
	}()

	touched := make(map[int]bool)
	for _, rec := range packed.Records {
		touched[rec.Container] = true
	}
	for _, c := range atlas.Containers() {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := atlasio.PagePath(opts.OutputDir, c.Index)
		if !touched[c.Index] {
			if _, statErr := os.Stat(path); statErr == nil {
				continue
			}
		}
		if err := atlasio.ExportPage(c.Canvas, path); err != nil {
			return errs.Wrap(errs.ErrCodeWrite, err, "write page %d", c.Index)
		}
		r.Logger.Debug("saved page", "container", c.Index, "path", path)
		result.Pages = append(result.Pages, path)
	}

	result.MetadataPath = filepath.Join(opts.OutputDir, atlasio.MetadataFile)
	if err := atlasio.ExportMetadata(atlas.Records(), result.MetadataPath); err != nil {
		return errs.Wrap(errs.ErrCodeWrite, err, "write metadata")
	}
	return nil
}

func (r *Runner) diagnostics(opts Options) pack.Diagnostics {
	logDiag := pack.NewLogDiagnostics(opts.Logger)
	if opts.Diagnostics == nil {
		return logDiag
	}
	return pack.MultiDiagnostics{logDiag, opts.Diagnostics}
}

// applyLogger sets the runner's logger on opts when none is configured.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func sizeOr(size, fallback int) int {
	if size != 0 {
		return size
	}
	return fallback
}
