package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/atlaspack/pkg/pack"
)

// TreeOptions configures placement tree diagrams.
type TreeOptions struct {
	// Detailed adds the node rectangle to every label.
	Detailed bool

	// HideEmpty leaves out free nodes with zero area. Every split of a
	// full-width or full-height placement produces one.
	HideEmpty bool
}

// ToDOT converts a placement tree to Graphviz DOT. Split nodes are drawn as
// filled boxes labelled with the placed size, free leaves as dashed boxes.
func ToDOT(root *pack.Node, opts TreeOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	var edges []string
	next := 0
	var visit func(n *pack.Node) string
	visit = func(n *pack.Node) string {
		id := fmt.Sprintf("n%d", next)
		next++
		fmt.Fprintf(&buf, "  %s [%s];\n", id, strings.Join(nodeAttrs(n, opts.Detailed), ", "))
		for _, c := range []struct {
			label string
			node  *pack.Node
		}{{"right", n.Right}, {"down", n.Down}} {
			if c.node == nil || (opts.HideEmpty && isEmptyLeaf(c.node)) {
				continue
			}
			child := visit(c.node)
			edges = append(edges, fmt.Sprintf("  %s -> %s [label=%q];\n", id, child, c.label))
		}
		return id
	}
	visit(root)

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func isEmptyLeaf(n *pack.Node) bool {
	return !n.Used && (n.W == 0 || n.H == 0)
}

func nodeAttrs(n *pack.Node, detailed bool) []string {
	var label string
	if n.Used {
		w, h := n.Placed()
		label = fmt.Sprintf("%dx%d", w, h)
	} else {
		label = fmt.Sprintf("free %dx%d", n.W, n.H)
	}
	if detailed {
		label += fmt.Sprintf("\n(%d,%d) %dx%d", n.X, n.Y, n.W, n.H)
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.Used:
		attrs = append(attrs, "fillcolor=lightblue")
	case n.W == 0 || n.H == 0:
		attrs = append(attrs, "style=\"rounded,dashed\"", "fontcolor=grey")
	default:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=palegreen")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the drawing scales with its
// container instead of using Graphviz's point units.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
