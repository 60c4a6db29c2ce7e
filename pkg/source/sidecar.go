package source

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/atlaspack/pkg/errors"
	"github.com/matzehuels/atlaspack/pkg/pack"
)

// Sidecar is the optional <stem>.json file next to a texture.
type Sidecar struct {
	SubTextures pack.Regions `json:"sub_textures"`
}

// SidecarPath returns the sidecar location for a texture: the same path
// with its extension replaced by .json.
func SidecarPath(texture string) string {
	return strings.TrimSuffix(texture, filepath.Ext(texture)) + ".json"
}

// ReadSidecar reads the regions in path. A missing file yields nil regions;
// a file that cannot be parsed is an error.
func ReadSidecar(path string) (pack.Regions, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeRead, err, "read sidecar %s", path)
	}

	var sc Sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidSidecar, err, "parse sidecar %s", path)
	}
	for name, r := range sc.SubTextures {
		if r.Width < 0 || r.Height < 0 {
			return nil, errs.New(errs.ErrCodeInvalidSidecar, "sidecar %s: region %q has negative size", path, name)
		}
	}
	return sc.SubTextures, nil
}
