package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/forcelayout/pkg/nodegraph"
	"github.com/matzehuels/forcelayout/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the node type, sockets and metadata in node labels
	// and socket names on connections. When false, only the title is shown.
	Detailed bool
}

// ToDOT converts an editor graph to Graphviz DOT with every node fixed at
// its current position, so rendering reproduces the editor's arrangement
// instead of computing a new one.
//
// Positions are written in points (inputscale=72) with the y axis flipped:
// editor y grows downwards, Graphviz y grows upwards. Pinned nodes are drawn
// with a bold outline.
func ToDOT(g *nodegraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(*n, opts.Detailed)
		attrs := fmtAttrs(*n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range g.Connections() {
		if opts.Detailed && (c.FromSocket != "" || c.ToSocket != "") {
			fmt.Fprintf(&buf, "  %q -> %q [taillabel=%q, headlabel=%q];\n", c.From, c.To, c.FromSocket, c.ToSocket)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", c.From, c.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n nodegraph.Node, detailed bool) string {
	title := n.Title
	if title == "" {
		title = n.ID
	}
	if !detailed {
		return title
	}

	var parts []string
	if n.Type != "" {
		parts = append(parts, "type: "+n.Type)
	}
	var ins, outs []string
	for _, s := range n.Sockets {
		if s.Direction == nodegraph.DirectionIn {
			ins = append(ins, s.Name)
		} else {
			outs = append(outs, s.Name)
		}
	}
	if len(ins) > 0 {
		parts = append(parts, "in: "+strings.Join(ins, ", "))
	}
	if len(outs) > 0 {
		parts = append(parts, "out: "+strings.Join(outs, ", "))
	}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	if len(parts) == 0 {
		return title
	}
	return title + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n nodegraph.Node, label string) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%s,%s!\"", fmtCoord(n.Position.X), fmtCoord(-n.Position.Y)),
	}
	if n.Pinned {
		attrs = append(attrs, "style=\"rounded,filled,bold\"", "penwidth=2")
	}
	return attrs
}

func fmtCoord(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders a DOT graph to SVG using the Graphviz neato engine,
// which keeps the fixed node positions written by [ToDOT].
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// Render renders g in the given format. PDF and PNG go through
// [render.Convert] and need rsvg-convert on PATH.
func Render(ctx context.Context, g *nodegraph.Graph, format render.Format, opts Options) ([]byte, error) {
	dot := ToDOT(g, opts)
	if format == render.FormatDOT {
		return []byte(dot), nil
	}
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.Convert(ctx, svg, format, 2.0)
}
