// Package nodelink renders editor graphs as node-link diagrams at their
// current positions.
//
// # Overview
//
// The force engine decides where nodes go; this package only draws them.
// [ToDOT] writes every node with a fixed pos="x,y!" attribute and selects
// the neato engine, which honors fixed positions, so Graphviz contributes
// node shapes and edge routing but never moves a node.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Or pick a format directly:
//
//	png, err := nodelink.Render(ctx, g, render.FormatPNG, nodelink.Options{Detailed: true})
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
