package pack

import "image"

// Record is the placement outcome for one texture: which container holds it,
// where, and its sub-regions already translated into container space.
type Record struct {
	Container int     `json:"container_index" cbor:"container"`
	X         int     `json:"x" cbor:"x"`
	Y         int     `json:"y" cbor:"y"`
	Width     int     `json:"width" cbor:"width"`
	Height    int     `json:"height" cbor:"height"`
	Source    string  `json:"-" cbor:"source"`
	Regions   Regions `json:"sub_textures" cbor:"regions"`
}

// Rect returns the placed rectangle in container space.
func (r Record) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}
