package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/atlaspack/pkg/observability"
	"github.com/matzehuels/atlaspack/pkg/pack"
)

// =============================================================================
// Messages
// =============================================================================

type stageMsg struct {
	stage string
	total int // blocks submitted; only set for the pack stage
}

type containerMsg struct{ index int }

type placedMsg struct {
	source    string
	container int
}

type droppedMsg struct {
	source string
	reason error
}

type doneMsg struct{ err error }

type tickMsg time.Time

// =============================================================================
// ProgressModel - live packing progress
// =============================================================================

var progressFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ProgressModel is the bubbletea model for the pack command's progress view.
// It only ever sees copies of event data sent through Program.Send.
type ProgressModel struct {
	Stage      string
	Total      int
	Placed     int
	Dropped    int
	Containers int
	Last       string
	Err        error
	Done       bool

	// Interrupted is set when the user pressed ctrl+c inside the view.
	Interrupted bool

	cancel context.CancelFunc
	frame  int
	width  int
}

// NewProgressModel creates a progress model. cancel is called when the user
// interrupts the view.
func NewProgressModel(cancel context.CancelFunc) ProgressModel {
	return ProgressModel{Stage: "starting", cancel: cancel, width: 80}
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m ProgressModel) Init() tea.Cmd {
	return tick()
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Interrupted = true
			if m.cancel != nil {
				m.cancel()
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		if m.Done {
			return m, nil
		}
		m.frame++
		return m, tick()
	case stageMsg:
		m.Stage = msg.stage
		if msg.total > 0 {
			m.Total = msg.total
		}
	case containerMsg:
		m.Containers++
	case placedMsg:
		m.Placed++
		m.Last = msg.source
	case droppedMsg:
		m.Dropped++
		m.Last = msg.source
	case doneMsg:
		m.Done = true
		m.Err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m ProgressModel) View() string {
	if m.Done {
		return ""
	}
	var b strings.Builder

	frame := progressFrames[m.frame%len(progressFrames)]
	b.WriteString(styleIconSpinner.Render(frame) + " " + StyleTitle.Render(m.Stage))
	b.WriteString("\n")

	done := m.Placed + m.Dropped
	b.WriteString("  " + renderBar(done, m.Total, 30) + " ")
	b.WriteString(StyleNumber.Render(fmt.Sprintf("%d/%d", done, m.Total)))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d new pages", m.Containers)))
	if m.Dropped > 0 {
		b.WriteString("  " + StyleWarning.Render(fmt.Sprintf("%d dropped", m.Dropped)))
	}
	b.WriteString("\n")

	if m.Last != "" {
		b.WriteString("  " + StyleDim.Render(truncate(filepath.Base(m.Last), m.width-4)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderBar draws a fixed-width progress bar.
func renderBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(done*width/total, width)
	}
	return StyleSuccess.Render(strings.Repeat("█", filled)) +
		StyleDim.Render(strings.Repeat("░", width-filled))
}

func truncate(s string, n int) string {
	if n <= 1 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// =============================================================================
// Event adapters
// =============================================================================

// sender is the part of *tea.Program the adapters need.
type sender interface {
	Send(msg tea.Msg)
}

// progressDiagnostics forwards packing events to the progress view.
type progressDiagnostics struct {
	p sender
}

func (d progressDiagnostics) ContainerCreated(c *pack.Container) {
	d.p.Send(containerMsg{index: c.Index})
}

func (d progressDiagnostics) BlockPlaced(b *pack.Block, rec pack.Record) {
	d.p.Send(placedMsg{source: b.Source, container: rec.Container})
}

func (d progressDiagnostics) BlockDropped(b *pack.Block, reason error) {
	d.p.Send(droppedMsg{source: b.Source, reason: reason})
}

// progressHooks forwards pipeline stage changes to the progress view.
type progressHooks struct {
	observability.NoopPipelineHooks
	p sender
}

func (h progressHooks) OnIngestStart(ctx context.Context, input string) {
	h.p.Send(stageMsg{stage: "collecting textures"})
}

func (h progressHooks) OnPackStart(ctx context.Context, blocks int) {
	h.p.Send(stageMsg{stage: "packing", total: blocks})
}

func (h progressHooks) OnOutputStart(ctx context.Context, dir string) {
	h.p.Send(stageMsg{stage: "writing outputs"})
}

// =============================================================================
// Helpers
// =============================================================================

// interactive reports whether the progress view can be drawn on stderr.
func interactive() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
