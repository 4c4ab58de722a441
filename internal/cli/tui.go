package cli

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/forcelayout/pkg/layout/force"
	"github.com/matzehuels/forcelayout/pkg/nodegraph"
	"github.com/matzehuels/forcelayout/pkg/pipeline"
)

// Progress styles
var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
	sparkStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	helpStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	barWidth     = 40
	historyWidth = 48
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// =============================================================================
// Messages
// =============================================================================

// iterationMsg carries the stats of one engine iteration.
type iterationMsg force.IterationStats

// layoutDoneMsg is sent once the run has returned.
type layoutDoneMsg struct {
	result *pipeline.Result
	err    error
}

// =============================================================================
// ProgressModel - Live view of a layout run
// =============================================================================

// ProgressModel is the bubbletea model that follows a running layout.
type ProgressModel struct {
	MaxIterations int
	Threshold     float64

	Last     force.IterationStats
	History  []float64
	Canceled bool
	Done     bool

	cancel context.CancelFunc
}

// NewProgressModel creates a progress model for a run with the given
// iteration cap and convergence threshold. cancel is called when the user
// quits.
func NewProgressModel(maxIterations int, threshold float64, cancel context.CancelFunc) ProgressModel {
	return ProgressModel{
		MaxIterations: maxIterations,
		Threshold:     threshold,
		cancel:        cancel,
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return nil
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// The run reports back with a layoutDoneMsg once it notices.
			m.Canceled = true
			if m.cancel != nil {
				m.cancel()
			}
		}
	case iterationMsg:
		m.Last = force.IterationStats(msg)
		m.History = append(m.History, msg.PositionAdjustments)
		if len(m.History) > historyWidth {
			m.History = m.History[len(m.History)-historyWidth:]
		}
	case layoutDoneMsg:
		m.Done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Computing layout"))
	b.WriteString("\n\n")
	b.WriteString(progressBar(m.Last.Iteration, m.MaxIterations, barWidth))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d/%d", m.Last.Iteration, m.MaxIterations)))
	b.WriteString("\n\n")

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Step", "Movement", "Threshold", "Energy").
		Row(
			strconv.FormatFloat(m.Last.Step, 'f', 2, 64),
			strconv.FormatFloat(m.Last.PositionAdjustments, 'f', 2, 64),
			strconv.FormatFloat(m.Threshold, 'f', 2, 64),
			strconv.FormatFloat(m.Last.Energy, 'g', 4, 64),
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 && m.Last.Iteration > 0 && m.Last.PositionAdjustments < m.Threshold {
				return StyleSuccess
			}
			return StyleValue
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(sparkStyle.Render(sparkline(m.History)))
	b.WriteString("\n\n")

	switch {
	case m.Canceled:
		b.WriteString(StyleWarning.Render("Canceling..."))
	case m.Done:
		b.WriteString(StyleSuccess.Render("Done"))
	default:
		b.WriteString(helpStyle.Render("q cancel"))
	}
	b.WriteString("\n")

	return b.String()
}

// =============================================================================
// Runner Integration
// =============================================================================

// runWithProgress executes the layout while a ProgressModel follows it.
// Quitting the view cancels the run, which then fails with CANCELED and a nil
// result; the graph is left untouched.
func (c *CLI) runWithProgress(ctx context.Context, runner *pipeline.Runner, g *nodegraph.Graph, opts pipeline.Options) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shown := opts
	shown.SetDefaults()
	model := NewProgressModel(shown.Layout.MaxIterations, shown.Layout.MinAdjustment, cancel)
	p := tea.NewProgram(model, tea.WithOutput(os.Stderr))

	opts.Observer = func(s force.IterationStats) {
		p.Send(iterationMsg(s))
	}

	done := make(chan layoutDoneMsg, 1)
	go func() {
		result, err := runner.Execute(ctx, g, opts)
		msg := layoutDoneMsg{result: result, err: err}
		done <- msg
		p.Send(msg)
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		c.Logger.Debug("progress view failed", "err", err)
	}
	out := <-done
	return out.result, out.err
}

// =============================================================================
// Helpers
// =============================================================================

// progressBar renders done/total as a bar of the given width.
func progressBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(width, done*width/total)
	}
	return barFullStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// sparkline draws values on a log scale, one rune per value.
func sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	scaled := make([]float64, len(values))
	for i, v := range values {
		scaled[i] = math.Log1p(math.Max(v, 0))
		lo = math.Min(lo, scaled[i])
		hi = math.Max(hi, scaled[i])
	}

	var b strings.Builder
	top := len(sparkLevels) - 1
	for _, v := range scaled {
		level := top
		if hi > lo {
			level = int(math.Round((v - lo) / (hi - lo) * float64(top)))
		}
		b.WriteRune(sparkLevels[level])
	}
	return b.String()
}
