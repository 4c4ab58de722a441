// Package render provides output formats for laid out graphs.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). [Convert] dispatches on a
// [Format]:
//
//	svg, _ := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.Convert(ctx, svg, render.FormatPDF, 1)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage draws editor graphs with Graphviz, keeping every
// node at the position computed by the layout engine.
//
// [nodelink]: github.com/matzehuels/forcelayout/pkg/render/nodelink
package render
