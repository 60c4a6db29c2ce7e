// Package render draws debugging views of a packed atlas.
//
// # Overlay
//
// [Overlay] paints the metadata of one page over its canvas: every texture
// gets a half-transparent fill from a cycling palette and its name, and every
// sub-texture a green outline with its name. This is the quickest way to see
// whether a renderer will address the right pixels.
//
//	m, _ := io.ImportMetadata("packed_textures/packed_texture.json")
//	page, _ := io.ImportPage("packed_textures/packed_texture_0.png")
//	img := render.Overlay(page, 0, m.Records(), render.OverlayOptions{})
//
// # Placement tree
//
// [ToDOT] converts a container's split tree to Graphviz DOT; [RenderSVG]
// lays it out with the embedded Graphviz engine.
//
//	dot := render.ToDOT(c.Packer.Root(), render.TreeOptions{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
package render
