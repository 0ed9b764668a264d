package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/graphstudio/studio/internal/models"
	"github.com/graphstudio/studio/internal/simulation"
	"github.com/graphstudio/studio/internal/stream"
)

func friendsStream() *stream.Stream {
	s := stream.New()
	s.PutVertex(models.VertexData{ID: 1, Encoding: models.EncodingEntity, Label: "person: alice", ShortLabel: "alice"})
	s.PutVertex(models.VertexData{ID: 2, Encoding: models.EncodingAttribute, Label: "name: bob", ShortLabel: "bob"})
	s.PutEdge(models.EdgeData{ID: 3, Source: 1, Target: 2, Label: "has", Highlight: models.HighlightNone})
	s.Complete()
	return s
}

func newTestModel(s *stream.Stream) Model {
	return New(Config{
		Title:         "social",
		SimulationID:  "sim-1",
		Seed:          7,
		Stream:        s,
		FrameInterval: time.Millisecond,
		DrainInterval: 10 * time.Millisecond,
	})
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()

	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

func runFrames(t *testing.T, m Model, n int) Model {
	t.Helper()

	start := time.Unix(1_700_000_000, 0)
	for i := range n {
		m = step(t, m, tickMsg(start.Add(time.Duration(i)*20*time.Millisecond)))
	}
	return m
}

func TestModel_DrawsDrainedGraph(t *testing.T) {
	m := newTestModel(friendsStream())
	m = step(t, m, tea.WindowSizeMsg{Width: 160, Height: 20})
	m = runFrames(t, m, 5)

	if m.vis.State() != simulation.StateRunningPopulated {
		t.Fatalf("visualiser state = %v", m.vis.State())
	}

	plain := m.draw(60, 18).Plain()
	for _, want := range []string{"■", "●", "alice", "bob", "·"} {
		if !strings.Contains(plain, want) {
			t.Errorf("canvas missing %q:\n%s", want, plain)
		}
	}

	view := m.View()
	for _, want := range []string{"vertices 2", "edges 1", "complete", "social"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_LabelsToggle(t *testing.T) {
	m := newTestModel(friendsStream())
	m = step(t, m, tea.WindowSizeMsg{Width: 160, Height: 20})
	m = runFrames(t, m, 3)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})

	if plain := m.draw(60, 18).Plain(); strings.Contains(plain, "alice") {
		t.Errorf("labels still drawn:\n%s", plain)
	}
}

func TestModel_ShowsStreamError(t *testing.T) {
	s := stream.New()
	s.PutError(errors.New("typeql syntax error"))

	m := newTestModel(s)
	m = step(t, m, tea.WindowSizeMsg{Width: 160, Height: 10})
	m = runFrames(t, m, 2)

	if view := m.View(); !strings.Contains(view, "typeql syntax error") {
		t.Errorf("view missing error:\n%s", view)
	}
}

func TestModel_Keys(t *testing.T) {
	m := newTestModel(friendsStream())
	m = runFrames(t, m, 2)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	if m.view.Zoom <= 1 {
		t.Errorf("zoom = %v after zoom in", m.view.Zoom)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.view.PanX != 4 {
		t.Errorf("panX = %d after left", m.view.PanX)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'0'}})
	if m.view != DefaultViewport() {
		t.Errorf("view = %+v after reset", m.view)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if a := m.vis.Layout().Alpha(); a < reheatAlpha {
		t.Errorf("alpha = %v after reheat", a)
	}
}

func TestModel_QuitDestroysVisualiser(t *testing.T) {
	m := newTestModel(friendsStream())
	m = runFrames(t, m, 2)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}

	m = next.(Model)
	if m.vis.State() != simulation.StateDestroyed {
		t.Errorf("state = %v after quit", m.vis.State())
	}
	if m.View() != "" {
		t.Error("expected empty view after quit")
	}

	if _, cmd := m.Update(tickMsg(time.Now())); cmd != nil {
		t.Error("expected ticks to stop after quit")
	}
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := newTestModel(friendsStream())
	if m.View() != "starting..." {
		t.Errorf("view = %q", m.View())
	}
}
