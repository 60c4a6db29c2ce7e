package render

import (
	"image"
	"image/color"
	"maps"
	"path/filepath"
	"slices"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/atlaspack/pkg/pack"
)

// Palette is cycled through for texture fills, one color per record.
var Palette = []color.NRGBA{
	{R: 255, A: 255},
	{G: 255, A: 255},
	{B: 255, A: 255},
	{R: 255, G: 255, A: 255},
	{G: 255, B: 255, A: 255},
}

var (
	labelColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	regionColor = color.NRGBA{G: 255, A: 255}
)

// OverlayOptions configures Overlay. The zero value draws on black and labels
// textures by base name.
type OverlayOptions struct {
	// Background is drawn under the page. Nil means opaque black.
	Background color.Color

	// Alpha is the opacity of texture fills, 0-255. Zero means 128.
	Alpha uint8

	// FullNames labels textures with their full source path.
	FullNames bool

	// Outline is the sub-texture outline width in pixels. Zero means 2.
	Outline int
}

func (o *OverlayOptions) setDefaults() {
	if o.Background == nil {
		o.Background = color.Black
	}
	if o.Alpha == 0 {
		o.Alpha = 128
	}
	if o.Outline == 0 {
		o.Outline = 2
	}
}

// Overlay returns a copy of page with the records of container index drawn
// on top. Records for other containers are ignored; the palette advances
// only for drawn records.
func Overlay(page image.Image, index int, records []pack.Record, opts OverlayOptions) *image.NRGBA {
	opts.setDefaults()

	bounds := page.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), page, bounds.Min, draw.Over)

	mask := image.NewUniform(color.Alpha{A: opts.Alpha})
	n := 0
	for _, r := range records {
		if r.Container != index {
			continue
		}
		fill := Palette[n%len(Palette)]
		n++

		rect := r.Rect()
		draw.DrawMask(out, rect, image.NewUniform(fill), image.Point{}, mask, image.Point{}, draw.Over)

		name := r.Source
		if !opts.FullNames {
			name = filepath.Base(name)
		}
		drawLabel(out, rect.Min, name, labelColor)

		for _, sub := range sortedRegions(r.Regions) {
			reg := r.Regions[sub]
			sr := image.Rect(int(reg.X), int(reg.Y), int(reg.X+reg.Width), int(reg.Y+reg.Height))
			strokeRect(out, sr, opts.Outline, regionColor)
			drawLabel(out, sr.Min, sub, regionColor)
		}
	}
	return out
}

// strokeRect draws the border of r, width px thick, inside r.
func strokeRect(dst draw.Image, r image.Rectangle, width int, c color.Color) {
	src := image.NewUniform(c)
	w := min(width, r.Dx(), r.Dy())
	if w <= 0 {
		return
	}
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w),
		image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y),
		image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e, src, image.Point{}, draw.Src)
	}
}

// drawLabel writes s with its top-left corner at p.
func drawLabel(dst draw.Image, p image.Point, s string, c color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(p.X+2, p.Y+face.Ascent+1),
	}
	d.DrawString(s)
}

func sortedRegions(r pack.Regions) []string {
	return slices.Sorted(maps.Keys(r))
}
