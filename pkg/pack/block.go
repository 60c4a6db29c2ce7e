package pack

import (
	"image"
	"maps"
)

// Region is a named sub-rectangle inside a texture, such as one sprite frame.
type Region struct {
	X      float64 `json:"x" cbor:"x"`
	Y      float64 `json:"y" cbor:"y"`
	Width  float64 `json:"width" cbor:"width"`
	Height float64 `json:"height" cbor:"height"`
}

// Regions maps region names to their rectangles.
type Regions map[string]Region

// Translate returns a copy of r with every origin shifted by (dx, dy).
// The receiver is never modified, so translating a block's local regions
// into container space cannot be applied twice by accident.
func (r Regions) Translate(dx, dy int) Regions {
	if r == nil {
		return nil
	}
	out := make(Regions, len(r))
	for name, reg := range r {
		reg.X += float64(dx)
		reg.Y += float64(dy)
		out[name] = reg
	}
	return out
}

// Clone returns a shallow copy of r.
func (r Regions) Clone() Regions {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Block is a texture waiting to be placed.
//
// Regions are in the texture's local coordinates and stay that way; the
// container-space copy lives on the Record produced by a successful placement.
type Block struct {
	Width   int
	Height  int
	Image   image.Image
	Source  string
	Regions Regions

	placement *Record
}

// NewBlock creates a block sized to img's bounds.
func NewBlock(source string, img image.Image, regions Regions) *Block {
	b := img.Bounds()
	return &Block{
		Width:   b.Dx(),
		Height:  b.Dy(),
		Image:   img,
		Source:  source,
		Regions: regions,
	}
}

// Placement returns the record assigned to b, if it has been placed.
func (b *Block) Placement() (Record, bool) {
	if b.placement == nil {
		return Record{}, false
	}
	return *b.placement, true
}

// Placed reports whether b has been placed.
func (b *Block) Placed() bool { return b.placement != nil }

func (b *Block) minSide() int {
	return min(b.Width, b.Height)
}
