// Package pkg provides the libraries behind the atlaspack texture packer.
//
// # Overview
//
// Atlaspack places power-of-two textures into square atlas pages with a
// binary split tree, draws their pixels onto the pages and records where each
// texture (and each of its named sub-regions) ended up. Runs can append to the
// atlas of an earlier run: the split trees are saved and restored, so new
// textures fill the free space the earlier run left behind.
//
// # Architecture
//
// The typical data flow through atlaspack:
//
//	Texture directory / paths file
//	         ↓
//	    [source] package (decode images, read sidecars, skip packed files)
//	         ↓
//	    [pack] package (sort, place, open new pages as needed)
//	         ↓
//	    [state] package (snapshot the trees and canvases)
//	         ↓
//	    [io] package (pages as PNG, metadata as JSON)
//
// # Quick Start
//
// Pack a directory of textures in memory:
//
//	col, _ := source.Collect(ctx, source.Options{Dir: "textures"})
//	atlas, _ := pack.NewAtlas(1024)
//	res := atlas.Pack(col.Blocks)
//	for _, rec := range res.Records {
//	    fmt.Println(rec.Source, rec.Container, rec.X, rec.Y)
//	}
//
// Or run the whole pass, including state and outputs:
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{InputDir: "textures", Append: true})
//
// # Main Packages
//
// [pack] - Placement tree, blocks, records, containers and the multi-page
// orchestrator. Packing events are reported through an injected Diagnostics.
//
// [source] - Texture collection from a directory or a paths file, image
// decoding (PNG, JPEG, GIF, BMP, TIFF, WebP) and sub-region sidecars.
//
// [state] - Versioned, checksummed snapshots of an atlas (CBOR + zstd) with
// file and Redis stores, plus the skip-list of packed textures.
//
// [io] - Page PNGs and the packed_texture.json metadata document.
//
// [render] - Debug overlays of the metadata on pages and placement tree
// export as Graphviz DOT or SVG.
//
// [pipeline] - The state → ingest → pack → output run used by the CLI.
//
// [cache] - Local cache for rendered tree SVGs.
//
// [observability] - No-op-by-default hooks for pipeline, state and cache events.
//
// [errors] - Structured error codes.
//
// [pack]: https://pkg.go.dev/github.com/matzehuels/atlaspack/pkg/pack
// [source]: https://pkg.go.dev/github.com/matzehuels/atlaspack/pkg/source
// [state]: https://pkg.go.dev/github.com/matzehuels/atlaspack/pkg/state
// [io]: https://pkg.go.dev/github.com/matzehuels/atlaspack/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/atlaspack/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/atlaspack/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/atlaspack/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/atlaspack/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/atlaspack/pkg/errors
package pkg
