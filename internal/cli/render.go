package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/pipeline"
	"github.com/matzehuels/forcelayout/pkg/render"
	"github.com/matzehuels/forcelayout/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string // output file path (default: <input>.<format>)
	format     string // svg, png, pdf or dot; inferred from output when empty
	layoutFile string // positions to apply before drawing
	detailed   bool   // show node types, sockets and metadata
}

// renderCommand creates the render command for drawing a graph at its
// current positions.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a graph at its node positions",
		Long: `Render a graph at its node positions.

Nodes are drawn exactly where the graph (or the layout given with --layout)
places them; pinned nodes get a bold outline. SVG and DOT are produced
in-process, PNG and PDF need rsvg-convert on the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg (default), png, pdf, dot")
	cmd.Flags().StringVarP(&opts.layoutFile, "layout", "l", "", "apply positions from a layout.json before rendering")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node types, sockets and metadata")

	formats := make([]string, 0, len(render.ValidFormats))
	for f := range render.ValidFormats {
		formats = append(formats, string(f))
	}
	slices.Sort(formats)
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletions(formats...))

	return cmd
}

// runRender loads the graph, optionally applies a layout, and writes the
// drawing.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	format, output, err := resolveRenderTarget(input, opts.output, opts.format)
	if err != nil {
		return err
	}

	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	if opts.layoutFile != "" {
		l, err := graph.ReadLayoutFile(opts.layoutFile)
		if err != nil {
			return fmt.Errorf("load layout %s: %w", opts.layoutFile, err)
		}
		moved := pipeline.Apply(g, l)
		c.Logger.Debug("applied layout", "path", opts.layoutFile, "moved", len(moved))
	}

	prog := newProgress(c.Logger)
	data, err := nodelink.Render(ctx, g, format, nodelink.Options{Detailed: opts.detailed})
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	prog.done("Rendered " + output)

	printSuccess("Rendered %s", format)
	printFile(output)
	return nil
}

// resolveRenderTarget picks the output format and path. An explicit format
// wins; otherwise it is inferred from the output path, defaulting to SVG.
func resolveRenderTarget(input, output, format string) (render.Format, string, error) {
	var f render.Format
	switch {
	case format != "":
		parsed, err := render.ParseFormat(format)
		if err != nil {
			return "", "", err
		}
		f = parsed
	case output != "":
		f = render.FormatFromPath(output)
	default:
		f = render.FormatSVG
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + string(f)
	}
	return f, output, nil
}
