package pack

import (
	"image"

	"golang.org/x/image/draw"
)

// Container is one square atlas page: a placement tree and the canvas the
// placed textures are drawn onto.
type Container struct {
	Index  int
	Size   int
	Packer *Packer
	Canvas *image.NRGBA
}

// NewContainer creates an empty size×size container with a transparent canvas.
func NewContainer(index, size int) *Container {
	return &Container{
		Index:  index,
		Size:   size,
		Packer: NewPacker(size, size),
		Canvas: image.NewNRGBA(image.Rect(0, 0, size, size)),
	}
}

// RestoreContainer rebuilds a container from a saved tree and canvas.
func RestoreContainer(index int, root *Node, canvas *image.NRGBA) *Container {
	return &Container{
		Index:  index,
		Size:   canvas.Bounds().Dx(),
		Packer: RestorePacker(root),
		Canvas: canvas,
	}
}

// place tries to fit b into the container. On success the block's pixels are
// copied onto the canvas and the placement origin is returned.
func (c *Container) place(b *Block) (image.Point, bool) {
	n, ok := c.Packer.Fit(b.Width, b.Height)
	if !ok {
		return image.Point{}, false
	}
	origin := image.Pt(n.X, n.Y)
	if b.Image != nil {
		draw.Copy(c.Canvas, origin, b.Image, b.Image.Bounds(), draw.Src, nil)
	}
	return origin, true
}

// Utilization returns the fraction of the canvas covered by placed textures.
func (c *Container) Utilization() float64 {
	if c.Size == 0 {
		return 0
	}
	return float64(c.Packer.UsedArea()) / float64(c.Size*c.Size)
}
