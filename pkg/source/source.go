package source

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/atlaspack/pkg/errors"
	"github.com/matzehuels/atlaspack/pkg/pack"
)

// Extensions lists the file extensions collected from directories.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// generatedPage matches atlas pages and debug visualizations written by
// previous runs.
var generatedPage = regexp.MustCompile(`^(packed_texture_\d+|container_\d+_atlas_visualization)\.png$`)

// Skipper reports identifiers that must not be collected again.
type Skipper interface {
	Has(id string) bool
}

// Options selects where textures come from. Exactly one of Dir and
// PathsFile must be set.
type Options struct {
	Dir       string // directory walked recursively
	PathsFile string // file listing one texture path per line

	// OutputDir is where pages are written. Pages found there are skipped.
	OutputDir string

	Skip   Skipper
	Logger *log.Logger
}

// Rejection is a texture that was read but cannot be packed.
type Rejection struct {
	Source string
	Width  int
	Height int
	Reason error
}

// Collection is the result of Collect.
type Collection struct {
	Blocks   []*pack.Block
	Rejected []Rejection
	Skipped  []string // identifiers already packed by an earlier run
}

// Validate checks that exactly one input is configured.
func (o Options) Validate() error {
	switch {
	case o.Dir == "" && o.PathsFile == "":
		return errs.New(errs.ErrCodeInvalidInput, "either a textures directory or a texture paths file is required")
	case o.Dir != "" && o.PathsFile != "":
		return errs.New(errs.ErrCodeInvalidInput, "textures directory and texture paths file are mutually exclusive")
	}
	return nil
}

// Collect gathers and decodes the configured textures in lexical path order.
// The context is checked between files.
func Collect(ctx context.Context, opts Options) (*Collection, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	var paths []string
	var err error
	if opts.Dir != "" {
		paths, err = walkDir(opts.Dir, opts.OutputDir, logger)
	} else {
		paths, err = readPathsFile(opts.PathsFile)
	}
	if err != nil {
		return nil, err
	}

	col := &Collection{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if opts.Skip != nil && opts.Skip.Has(path) {
			logger.Debug("skipping already packed texture", "source", path)
			col.Skipped = append(col.Skipped, path)
			continue
		}

		block, rej, err := load(path)
		if err != nil {
			return nil, err
		}
		if rej != nil {
			logger.Warn("texture does not have power-of-two dimensions",
				"source", path, "width", rej.Width, "height", rej.Height)
			col.Rejected = append(col.Rejected, *rej)
			continue
		}
		logger.Debug("found texture", "source", path, "width", block.Width, "height", block.Height)
		col.Blocks = append(col.Blocks, block)
	}
	return col, nil
}

func load(path string) (*pack.Block, *Rejection, error) {
	if err := errs.ValidateSourceID(path); err != nil {
		return nil, nil, err
	}
	img, err := DecodeFile(path)
	if err != nil {
		return nil, nil, err
	}
	b := img.Bounds()
	if err := errs.ValidateTextureSize(b.Dx(), b.Dy()); err != nil {
		return nil, &Rejection{Source: path, Width: b.Dx(), Height: b.Dy(), Reason: err}, nil
	}
	regions, err := ReadSidecar(SidecarPath(path))
	if err != nil {
		return nil, nil, err
	}
	return pack.NewBlock(path, img, regions), nil, nil
}

// IsTexture reports whether name has one of the collected extensions.
func IsTexture(name string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(name)))
}

// IsGeneratedPage reports whether name is an atlas page written by a run.
func IsGeneratedPage(name string) bool {
	return generatedPage.MatchString(name)
}

func walkDir(dir, outputDir string, logger *log.Logger) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "textures directory %s", dir)
		}
		return nil, errs.Wrap(errs.ErrCodeRead, err, "textures directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errs.New(errs.ErrCodeInvalidPath, "%s is not a directory", dir)
	}

	var outInfo os.FileInfo
	if outputDir != "" {
		outInfo, _ = os.Stat(outputDir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsTexture(d.Name()) {
			return nil
		}
		if outInfo != nil && IsGeneratedPage(d.Name()) && inDir(path, outInfo) {
			logger.Debug("skipping generated page", "source", path)
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeRead, err, "walk %s", dir)
	}
	slices.Sort(paths)
	return paths, nil
}

func inDir(path string, dir os.FileInfo) bool {
	parent, err := os.Stat(filepath.Dir(path))
	return err == nil && os.SameFile(parent, dir)
}

func readPathsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "texture paths file %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeRead, err, "open %s", path)
	}
	defer f.Close()

	var paths []string
	seen := make(map[string]bool)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		paths = append(paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeRead, err, "read %s", path)
	}
	slices.Sort(paths)
	return paths, nil
}
