package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/atlaspack/pkg/pack"
)

type recordingSender struct {
	msgs []tea.Msg
}

func (s *recordingSender) Send(msg tea.Msg) { s.msgs = append(s.msgs, msg) }

func update(t *testing.T, m ProgressModel, msgs ...tea.Msg) (ProgressModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(ProgressModel)
	}
	return m, cmd
}

func TestProgressModelCounts(t *testing.T) {
	m, _ := update(t, NewProgressModel(nil),
		stageMsg{stage: "packing", total: 3},
		containerMsg{index: 0},
		placedMsg{source: "a.png"},
		placedMsg{source: "b.png"},
		droppedMsg{source: "huge.png", reason: pack.ErrOversized},
	)

	if m.Stage != "packing" || m.Total != 3 {
		t.Errorf("stage = %q total = %d", m.Stage, m.Total)
	}
	if m.Placed != 2 || m.Dropped != 1 || m.Containers != 1 {
		t.Errorf("placed=%d dropped=%d containers=%d", m.Placed, m.Dropped, m.Containers)
	}
	if m.Last != "huge.png" {
		t.Errorf("Last = %q", m.Last)
	}

	view := m.View()
	for _, want := range []string{"packing", "3/3", "1 dropped", "huge.png"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestProgressModelDone(t *testing.T) {
	failure := errors.New("boom")
	m, cmd := update(t, NewProgressModel(nil), doneMsg{err: failure})

	if !m.Done || m.Err != failure {
		t.Errorf("Done = %v, Err = %v", m.Done, m.Err)
	}
	if cmd == nil {
		t.Fatal("done should quit the program")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("done should return tea.Quit")
	}
	if m.View() != "" {
		t.Error("finished view should be empty")
	}
}

func TestProgressModelInterrupt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m, _ := update(t, NewProgressModel(cancel), tea.KeyMsg{Type: tea.KeyCtrlC})

	if !m.Interrupted {
		t.Error("ctrl+c should mark the model interrupted")
	}
	if ctx.Err() == nil {
		t.Error("ctrl+c should cancel the run")
	}
}

func TestProgressAdapters(t *testing.T) {
	s := &recordingSender{}
	d := progressDiagnostics{p: s}
	b := &pack.Block{Source: "a.png", Width: 16, Height: 16}

	d.ContainerCreated(pack.NewContainer(0, 64))
	d.BlockPlaced(b, pack.Record{Container: 0})
	d.BlockDropped(b, pack.ErrOversized)

	h := progressHooks{p: s}
	h.OnPackStart(context.Background(), 7)

	if len(s.msgs) != 4 {
		t.Fatalf("sent %d messages, want 4", len(s.msgs))
	}
	if msg, ok := s.msgs[3].(stageMsg); !ok || msg.total != 7 {
		t.Errorf("last message = %#v", s.msgs[3])
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		done, total int
	}{
		{0, 0}, {0, 10}, {5, 10}, {10, 10}, {12, 10},
	}
	for _, tt := range tests {
		bar := renderBar(tt.done, tt.total, 10)
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != 10 {
			t.Errorf("renderBar(%d, %d) has %d cells, want 10", tt.done, tt.total, got)
		}
	}
}
