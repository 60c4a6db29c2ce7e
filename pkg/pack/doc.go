// Package pack places textures into square atlas containers.
//
// # Placement tree
//
// Each [Container] owns a [Packer]: a binary tree of rectangles rooted at the
// container's full area. Placing a w×h texture finds the first unused node
// large enough (searching right subtrees before down subtrees) and splits it:
//
//	+--------+---------------+
//	| placed | right         |
//	| w×h    | (W-w)×h       |
//	+--------+---------------+
//	| down                   |
//	| W×(H-h)                |
//	+------------------------+
//
// The placed rectangle and the two children tile the node exactly. Nodes are
// never merged or freed, so a tree restored from a saved snapshot keeps every
// earlier placement's space reserved.
//
// # Orchestration
//
// [Atlas.Pack] sorts blocks by their shorter side, largest first, with a
// stable sort so equal inputs always produce equal layouts. Each block goes to
// the first container with room; a new container is opened on overflow.
// Blocks larger than the container edge are reported through [Diagnostics]
// and left out of the result.
//
// # Sub-regions
//
// A [Block] carries named [Regions] in its own coordinates. The container-space
// copy is computed once, when the block is placed, and stored on the [Record];
// the block's own map is left untouched.
//
// # Example
//
//	atlas, err := pack.NewAtlas(1024, pack.WithDiagnostics(pack.NewLogDiagnostics(logger)))
//	if err != nil {
//	    return err
//	}
//	res := atlas.Pack(blocks)
//	for _, rec := range res.Records {
//	    fmt.Println(rec.Source, rec.Container, rec.X, rec.Y)
//	}
package pack
