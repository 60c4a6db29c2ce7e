package cli

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/atlaspack/pkg/errors"
	"github.com/matzehuels/atlaspack/pkg/pipeline"
)

// Config holds defaults read from atlaspack.toml. Every key is optional.
//
//	container_size = 2048
//	output_dir     = "build/atlas"
//	append         = true
//	state_url      = "redis://localhost:6379/0?key=game:atlas"
type Config struct {
	ContainerSize int    `toml:"container_size"`
	OutputDir     string `toml:"output_dir"`
	Append        *bool  `toml:"append"`
	StateURL      string `toml:"state_url"`
}

// loadConfig reads path. With an empty path the default file in the working
// directory is used when present; an explicitly named file must exist.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = configFile
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &cfg, nil
		}
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "config %s: unknown key %q", path, undecoded[0].String())
	}
	if cfg.ContainerSize != 0 {
		if err := errs.ValidateContainerSize(cfg.ContainerSize); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config %s", path)
		}
	}
	return &cfg, nil
}

// apply copies config values into opts for every flag the user did not set.
func (cfg *Config) apply(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	if cfg.ContainerSize != 0 && !flags.Changed("size") {
		opts.ContainerSize = cfg.ContainerSize
	}
	if cfg.OutputDir != "" && !flags.Changed("output-dir") {
		opts.OutputDir = cfg.OutputDir
	}
	if cfg.Append != nil && !flags.Changed("append") {
		opts.Append = *cfg.Append
	}
	if cfg.StateURL != "" && !flags.Changed("state-url") {
		opts.StateURL = cfg.StateURL
	}
}
