package source

import (
	"bufio"
	"image"
	"os"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	errs "github.com/matzehuels/atlaspack/pkg/errors"
)

// DecodeFile decodes the image at path in any registered format.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "texture %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeRead, err, "open texture %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidImage, err, "decode %s", path)
	}
	return img, nil
}
