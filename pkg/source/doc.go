// Package source turns texture files on disk into blocks ready for packing.
//
// Textures come either from a directory tree or from a list file naming one
// path per line. Each file is decoded (PNG, JPEG, GIF, BMP, TIFF and WebP are
// registered), checked for power-of-two dimensions and paired with an
// optional sidecar describing its sub-regions:
//
//	textures/hero.png
//	textures/hero.json   {"sub_textures": {"idle": {"x": 0, "y": 0, "width": 32, "height": 32}}}
//
// Pages written by a previous run (packed_texture_<n>.png inside the output
// directory) and identifiers listed in the skip-list are never collected.
//
// Images with other dimensions are not fatal; they are returned in
// [Collection.Rejected]. A sidecar that exists but cannot be parsed aborts
// collection with an INVALID_SIDECAR error.
package source
