// Package pipeline runs a complete packing pass: load state, collect
// textures, pack them, then persist the state and write the outputs.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. State: with Append, load the previous snapshot and skip-list
//  2. Ingest: collect and decode textures (see package source)
//  3. Pack: place the textures into the atlas (see package pack)
//  4. Output: save the snapshot, write pages, metadata and the skip-list
//
// The CLI is a thin layer over [Runner.Execute]; tests drive it directly.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    InputDir:  "textures",
//	    OutputDir: "packed_textures",
//	    Append:    true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Stats.Placed, "textures on", len(result.Containers), "pages")
package pipeline

import (
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/atlaspack/pkg/errors"
	"github.com/matzehuels/atlaspack/pkg/pack"
	"github.com/matzehuels/atlaspack/pkg/source"
	"github.com/matzehuels/atlaspack/pkg/state"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultContainerSize is the edge length of new pages.
	DefaultContainerSize = 1024

	// DefaultOutputDir receives pages, metadata and state.
	DefaultOutputDir = "packed_textures"

	// StateFile is the snapshot name inside the output directory.
	StateFile = "packed_state.bin"

	// SkipListFile lists the textures packed so far.
	SkipListFile = "currently_packed_texture_paths.txt"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one packing run.
type Options struct {
	// Input; exactly one must be set.
	InputDir  string `json:"input_dir,omitempty"`
	PathsFile string `json:"paths_file,omitempty"`

	OutputDir string `json:"output_dir,omitempty"`

	// ContainerSize is the edge of new pages. Zero means the size stored in
	// the previous snapshot when appending, DefaultContainerSize otherwise.
	ContainerSize int `json:"container_size,omitempty"`

	// Append continues the atlas saved by an earlier run.
	Append bool `json:"append,omitempty"`

	// StateURL overrides the snapshot location: a file path or redis:// URL.
	StateURL string `json:"state_url,omitempty"`

	// Runtime options (not serialized)
	Logger      *log.Logger      `json:"-"`
	Diagnostics pack.Diagnostics `json:"-"`
	Store       state.Store      `json:"-"` // used instead of opening StateURL

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outcome of a run.
type Result struct {
	// AtlasID identifies the atlas across append runs.
	AtlasID string

	// Records placed by this run, in processing order.
	Records []pack.Record

	// Containers holds every page of the atlas; Created those opened by
	// this run.
	Containers []*pack.Container
	Created    []*pack.Container

	Dropped  []pack.Drop
	Rejected []source.Rejection
	Skipped  []string

	// Pages lists the page files written by this run.
	Pages        []string
	MetadataPath string
	SkipListPath string
	StateLoc     string

	// Resumed is true when an earlier snapshot was loaded.
	Resumed bool

	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Collected int // textures decoded and submitted for packing
	Placed    int
	Dropped   int
	Rejected  int // not power-of-two
	Skipped   int // already packed by an earlier run
	Total     int // records across all runs

	StateTime  time.Duration
	IngestTime time.Duration
	PackTime   time.Duration
	OutputTime time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.sourceOptions().Validate(); err != nil {
		return err
	}
	if o.ContainerSize != 0 {
		if err := errs.ValidateContainerSize(o.ContainerSize); err != nil {
			return err
		}
	}
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// StateLocation returns where the snapshot is kept.
func (o *Options) StateLocation() string {
	if o.StateURL != "" {
		return o.StateURL
	}
	return filepath.Join(o.OutputDir, StateFile)
}

// SkipListPath returns the skip-list location.
func (o *Options) SkipListPath() string {
	return filepath.Join(o.OutputDir, SkipListFile)
}

// InputName describes the configured input for logs.
func (o *Options) InputName() string {
	if o.InputDir != "" {
		return o.InputDir
	}
	return o.PathsFile
}

func (o *Options) sourceOptions() source.Options {
	return source.Options{
		Dir:       o.InputDir,
		PathsFile: o.PathsFile,
		OutputDir: o.OutputDir,
		Logger:    o.Logger,
	}
}
