// Package io reads and writes the files a packing run produces.
//
// # Metadata document
//
// The metadata document maps every packed texture to its page and offset.
// Sub-texture coordinates are already in page space:
//
//	{
//	  "sub_textures": {
//	    "textures/hero.png": {
//	      "container_index": 0,
//	      "x": 256,
//	      "y": 0,
//	      "width": 64,
//	      "height": 64,
//	      "sub_textures": {
//	        "idle": {"x": 256, "y": 0, "width": 32, "height": 32}
//	      }
//	    }
//	  }
//	}
//
// Use [ExportMetadata] and [ImportMetadata] for files, or [WriteMetadata] and
// [ReadMetadata] for any stream. The document always lists every record of
// the atlas, including those placed by earlier append runs.
//
// # Pages
//
// Each container canvas is written as packed_texture_<index>.png by
// [ExportPage]; [PagePath] builds the name and [ImportPage] reads one back.
package io
