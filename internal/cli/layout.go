package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	errs "github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/layout/force"
	"github.com/matzehuels/forcelayout/pkg/metrics"
	"github.com/matzehuels/forcelayout/pkg/nodegraph"
	"github.com/matzehuels/forcelayout/pkg/observability"
	"github.com/matzehuels/forcelayout/pkg/pipeline"
	"github.com/matzehuels/forcelayout/pkg/render"
	"github.com/matzehuels/forcelayout/pkg/render/nodelink"
)

// layoutFlags holds the flags of the layout command that are not engine
// parameters.
type layoutFlags struct {
	output      string        // layout file path (default: <input>.layout.json)
	configFile  string        // TOML options file
	apply       bool          // rewrite the input graph with the new positions
	svg         string        // also render the laid out graph to this path
	tui         bool          // show the interactive progress view
	noCache     bool          // disable caching
	refresh     bool          // recompute even when cached
	redisURL    string        // use a Redis cache instead of the file cache
	metricsFile string        // write Prometheus metrics in text format here
	timeout     time.Duration // abort the run after this long
	strict      bool          // fail when the run hits the iteration cap
}

// layoutCommand creates the layout command for auto-arranging a graph.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   layoutFlags
		flagged pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Auto-arrange the nodes of a graph",
		Long: `Auto-arrange the nodes of a graph with the force-directed engine.

Connected nodes are pulled toward the optimal distance, unconnected nodes are
pushed to a multiple of it. Nodes marked as pinned never move. The computed
positions are written to a layout.json file; --apply also rewrites the input
graph in place.

Engine parameters are read from --config (the [layout] table of a TOML file)
and overridden by explicit flags. Converged results are cached locally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(cmd.Flags(), flags.configFile, flagged)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, flags)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "TOML file with layout options")
	cmd.Flags().BoolVar(&flags.apply, "apply", false, "write the new positions back to the input graph")
	cmd.Flags().StringVar(&flags.svg, "svg", "", "also render the result (svg, png, pdf or dot by extension)")
	cmd.Flags().BoolVar(&flags.tui, "tui", false, "show interactive progress")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute even if a cached layout exists")
	cmd.Flags().StringVar(&flags.redisURL, "redis-url", os.Getenv("FORCELAYOUT_REDIS_URL"), "cache layouts in Redis (env FORCELAYOUT_REDIS_URL)")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "abort the run after this duration (0 = no limit)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail if the layout does not converge")

	// Engine flags
	cfg := &flagged.Layout
	cmd.Flags().Float64VarP(&cfg.OptimalDistance, "optimal-distance", "d", pipeline.DefaultOptimalDistance, "target distance between connected nodes")
	cmd.Flags().Float64Var(&cfg.InitialStep, "initial-step", 0, "step of the first iteration (default: optimal-distance/4)")
	cmd.Flags().Float64Var(&cfg.StepDecay, "step-decay", force.DefaultStepDecay, "step multiplier per iteration")
	cmd.Flags().Float64Var(&cfg.MinAdjustment, "min-adjustment", force.DefaultMinAdjustment, "total movement per iteration below which the run converges")
	cmd.Flags().IntVar(&cfg.MaxIterations, "max-iterations", force.DefaultMaxIterations, "iteration cap")
	cmd.Flags().Float64Var(&cfg.NonEdgeFactor, "non-edge-factor", force.DefaultNonEdgeFactor, "rest length of unconnected pairs, in optimal distances")
	cmd.Flags().StringVar(&cfg.Law, "law", force.LawSpring, "force law: spring, inverse-square")
	cmd.Flags().Float64Var(&cfg.Stiffness, "stiffness", force.DefaultStiffness, "k constant of the inverse-square law")
	cmd.Flags().StringVar(&cfg.Integrator, "integrator", force.IntegratorGradient, "update rule: gradient, semi-implicit")
	cmd.Flags().StringVar(&cfg.Displacement, "displacement", force.DisplacementUnit, "gradient step rule: unit, capped")
	cmd.Flags().Float64Var(&cfg.TimeStep, "time-step", force.DefaultTimeStep, "dt of the semi-implicit integrator")
	cmd.Flags().Float64Var(&cfg.Damping, "damping", force.DefaultDamping, "velocity loss per semi-implicit iteration")
	cmd.Flags().Float64Var(&cfg.Epsilon, "epsilon", force.DefaultEpsilon, "distance treated as zero")
	cmd.Flags().IntVar(&cfg.Workers, "workers", 1, "goroutines accumulating forces")

	_ = cmd.RegisterFlagCompletionFunc("law", fixedCompletions(force.LawSpring, force.LawInverseSquare))
	_ = cmd.RegisterFlagCompletionFunc("integrator", fixedCompletions(force.IntegratorGradient, force.IntegratorSemiImplicit))
	_ = cmd.RegisterFlagCompletionFunc("displacement", fixedCompletions(force.DisplacementUnit, force.DisplacementCapped))

	// Scope and jitter flags
	cmd.Flags().StringSliceVar(&flagged.Only, "only", nil, "lay out only these node IDs (comma-separated)")
	cmd.Flags().Uint64Var(&flagged.Seed, "seed", pipeline.DefaultSeed, "seed for separating coincident nodes")
	cmd.Flags().Float64Var(&flagged.JitterRadius, "jitter-radius", pipeline.DefaultJitterRadius, "how far coincident nodes are pushed apart")
	cmd.Flags().BoolVar(&flagged.NoJitter, "no-jitter", false, "leave coincident nodes in place")

	return cmd
}

// resolveOptions merges the options file (if any) with the flags the user
// actually set. Unset flags never override the file.
func resolveOptions(fs *pflag.FlagSet, configFile string, flagged pipeline.Options) (pipeline.Options, error) {
	var opts pipeline.Options
	if configFile != "" {
		loaded, err := pipeline.LoadOptionsFile(configFile)
		if err != nil {
			return opts, fmt.Errorf("load config %s: %w", configFile, err)
		}
		opts = loaded
	}

	overrides := map[string]func(){
		"optimal-distance": func() { opts.Layout.OptimalDistance = flagged.Layout.OptimalDistance },
		"initial-step":     func() { opts.Layout.InitialStep = flagged.Layout.InitialStep },
		"step-decay":       func() { opts.Layout.StepDecay = flagged.Layout.StepDecay },
		"min-adjustment":   func() { opts.Layout.MinAdjustment = flagged.Layout.MinAdjustment },
		"max-iterations":   func() { opts.Layout.MaxIterations = flagged.Layout.MaxIterations },
		"non-edge-factor":  func() { opts.Layout.NonEdgeFactor = flagged.Layout.NonEdgeFactor },
		"law":              func() { opts.Layout.Law = flagged.Layout.Law },
		"stiffness":        func() { opts.Layout.Stiffness = flagged.Layout.Stiffness },
		"integrator":       func() { opts.Layout.Integrator = flagged.Layout.Integrator },
		"displacement":     func() { opts.Layout.Displacement = flagged.Layout.Displacement },
		"time-step":        func() { opts.Layout.TimeStep = flagged.Layout.TimeStep },
		"damping":          func() { opts.Layout.Damping = flagged.Layout.Damping },
		"epsilon":          func() { opts.Layout.Epsilon = flagged.Layout.Epsilon },
		"workers":          func() { opts.Layout.Workers = flagged.Layout.Workers },
		"only":             func() { opts.Only = flagged.Only },
		"seed":             func() { opts.Seed = flagged.Seed },
		"jitter-radius":    func() { opts.JitterRadius = flagged.JitterRadius },
		"no-jitter":        func() { opts.NoJitter = flagged.NoJitter },
	}
	for name, apply := range overrides {
		if fs.Changed(name) {
			apply()
		}
	}
	return opts, nil
}

// runLayout loads the graph, runs the engine, and writes the outputs.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, flags layoutFlags) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	runner, err := c.newRunner(flags.noCache, flags.redisURL)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if flags.metricsFile != "" {
		reg := metrics.NewRegistry()
		observability.SetLayoutHooks(reg)
		observability.SetCacheHooks(reg)
		defer observability.Reset()
		defer func() {
			if err := reg.WriteTextfile(flags.metricsFile); err != nil {
				c.Logger.Warn("write metrics", "path", flags.metricsFile, "err", err)
			}
		}()
	}

	opts.Refresh = flags.refresh

	var result *pipeline.Result
	if flags.tui {
		result, err = c.runWithProgress(ctx, runner, g, opts)
	} else {
		result, err = c.runWithSpinner(ctx, runner, g, opts)
	}
	notConverged := errs.Is(err, errs.ErrCodeNotConverged)
	if err != nil && !notConverged {
		return fmt.Errorf("compute layout: %w", err)
	}

	outputPath := flags.output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}
	if err := graph.WriteLayoutFile(result.Layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	if flags.apply {
		if err := graph.WriteGraphFile(g, input); err != nil {
			return fmt.Errorf("write graph %s: %w", input, err)
		}
	}

	if flags.svg != "" {
		data, err := nodelink.Render(ctx, g, render.FormatFromPath(flags.svg), nodelink.Options{})
		if err != nil {
			return fmt.Errorf("render %s: %w", flags.svg, err)
		}
		if err := os.WriteFile(flags.svg, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", flags.svg, err)
		}
	}

	if notConverged {
		if flags.strict {
			return err
		}
		printWarning("Layout did not converge after %d iterations", result.Layout.Iterations)
	} else {
		printSuccess("Layout complete")
	}
	printFile(outputPath)
	if flags.apply {
		printFile(input)
	}
	if flags.svg != "" {
		printFile(flags.svg)
	}
	printStats(result.Stats, len(result.Moved), result.CacheInfo.LayoutHit)
	if !flags.apply {
		printNewline()
		printNextStep("Apply", "forcelayout layout --apply "+input)
	}

	return nil
}

// runWithSpinner executes the layout behind a spinner that follows the
// iteration count.
func (c *CLI) runWithSpinner(ctx context.Context, runner *pipeline.Runner, g *nodegraph.Graph, opts pipeline.Options) (*pipeline.Result, error) {
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	opts.Observer = func(s force.IterationStats) {
		spinner.Update(fmt.Sprintf("Computing layout... iteration %d, moved %.1f", s.Iteration, s.PositionAdjustments))
	}

	result, err := runner.Execute(ctx, g, opts)
	if err != nil && !errs.Is(err, errs.ErrCodeNotConverged) {
		spinner.StopWithError("Layout failed")
		return nil, err
	}
	spinner.Stop()
	return result, err
}
