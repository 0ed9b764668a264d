// Package tui draws a query's force layout in the terminal with Bubble Tea.
// The model is both the visualiser's surface reader and its render loop.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/models"
	"github.com/graphstudio/studio/internal/render"
	"github.com/graphstudio/studio/internal/simulation"
	"github.com/graphstudio/studio/internal/stream"
)

// reheatAlpha is the alpha the reheat key raises the layout to.
const reheatAlpha = 0.3

// maxLabelLen bounds vertex labels drawn next to glyphs.
const maxLabelLen = 16

// Config wires a Model to one query.
type Config struct {
	Title         string
	SimulationID  string
	Seed          uint64
	Stream        *stream.Stream
	FrameInterval time.Duration
	DrainInterval time.Duration
	Log           *logrus.Logger
}

type tickMsg time.Time

// Model is the Bubble Tea model for the terminal visualiser.
type Model struct {
	title    string
	stream   *stream.Stream
	vis      *simulation.Visualiser
	recorder *render.Recorder
	runner   *simulation.Runner
	interval time.Duration

	width      int
	height     int
	view       Viewport
	showLabels bool
	quitting   bool
}

// New creates a Model. The loader filling cfg.Stream is started by the caller.
func New(cfg Config) Model {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = simulation.DefaultFrameInterval
	}

	if cfg.Log == nil {
		cfg.Log = logrus.New()
		cfg.Log.SetOutput(io.Discard)
	}

	recorder := render.NewRecorder()
	vis := simulation.NewVisualiser(func(string) simulation.Surface { return recorder }, cfg.Seed, cfg.Log)
	runner := simulation.NewRunner(cfg.Stream, vis, cfg.SimulationID, simulation.RunnerConfig{
		FrameInterval: cfg.FrameInterval,
		DrainInterval: cfg.DrainInterval,
	}, cfg.Log)

	return Model{
		title:      cfg.Title,
		stream:     cfg.Stream,
		vis:        vis,
		recorder:   recorder,
		runner:     runner,
		interval:   cfg.FrameInterval,
		view:       DefaultViewport(),
		showLabels: true,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles frame ticks, resizes and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.quitting {
			return m, nil
		}
		m.runner.Step(time.Time(msg))
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		m.vis.Destroy()
		return m, tea.Quit
	case "left", "h":
		m.view = m.view.Pan(4, 0)
	case "right", "l":
		m.view = m.view.Pan(-4, 0)
	case "up", "k":
		m.view = m.view.Pan(0, 2)
	case "down", "j":
		m.view = m.view.Pan(0, -2)
	case "+", "=":
		m.view = m.view.ZoomIn()
	case "-", "_":
		m.view = m.view.ZoomOut()
	case "0":
		m.view = DefaultViewport()
	case "t":
		m.showLabels = !m.showLabels
	case "r":
		if layout := m.vis.Layout(); layout != nil {
			layout.Reheat(reheatAlpha)
		}
	}
	return m, nil
}

// View draws the layout and the status bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width <= 0 || m.height <= 0 {
		return "starting..."
	}

	canvas := m.draw(m.width, max(m.height-2, 1))
	return canvas.Render() + "\n" + m.statusBar() + "\n" + m.helpLine()
}

// draw projects the recorder's latest frame onto a fresh canvas.
func (m Model) draw(width, height int) *Canvas {
	canvas := NewCanvas(width, height)
	snap := m.recorder.Snapshot()
	if snap.Frame == nil {
		return canvas
	}

	proj := fit(snap.Frame, width, height, m.view)

	for _, e := range snap.Frame.Edges {
		color := edgeColor
		if e.Inferred {
			color = render.InferredColor
		}
		x0, y0 := proj.point(e.SourceX, e.SourceY)
		x1, y1 := proj.point(e.TargetX, e.TargetY)
		if e.ViaX != nil && e.ViaY != nil {
			vx, vy := proj.point(*e.ViaX, *e.ViaY)
			canvas.Line(x0, y0, vx, vy, edgeRune, color)
			canvas.Line(vx, vy, x1, y1, edgeRune, color)
			continue
		}
		canvas.Line(x0, y0, x1, y1, edgeRune, color)
	}

	vertices := make(map[int]models.VertexData, len(snap.Graph.Vertices))
	for _, v := range snap.Graph.Vertices {
		vertices[v.ID] = v
	}

	// Glyphs overwrite edges; labels only take free cells.
	type placed struct {
		x, y  int
		label string
	}
	labels := make([]placed, 0, len(snap.Frame.Vertices))
	for _, vp := range snap.Frame.Vertices {
		v, ok := vertices[vp.ID]
		if !ok {
			continue
		}
		x, y := proj.point(vp.X, vp.Y)
		canvas.Set(x, y, glyphOf(v.Encoding), render.ColorOf(v.Encoding))
		labels = append(labels, placed{x: x + 2, y: y, label: truncate(v.ShortLabel, maxLabelLen)})
	}

	if m.showLabels {
		for _, l := range labels {
			canvas.Text(l.x, l.y, l.label, labelColor)
		}
	}
	return canvas
}

func (m Model) statusBar() string {
	stats := m.stream.Stats()

	state := "loading"
	switch {
	case stats.Failed:
		state = errorStyle.Render("error: " + errText(m.stream.Err()))
	case m.runner.Done():
		state = "complete"
	}

	alpha := 0.0
	if layout := m.vis.Layout(); layout != nil {
		alpha = layout.Alpha()
	}

	parts := []string{
		titleStyle.Render(m.title),
		fmt.Sprintf("vertices %d", stats.Vertices),
		fmt.Sprintf("edges %d", stats.Edges),
		fmt.Sprintf("alpha %.3f", alpha),
		fmt.Sprintf("zoom %.2fx", m.view.Zoom),
		state,
	}
	return statusStyle.Width(m.width).Render(strings.Join(parts, "  │  "))
}

func (m Model) helpLine() string {
	return helpStyle.Render("←↑↓→ pan  +/- zoom  0 fit  r reheat  t labels  q quit")
}

func errText(err error) string {
	if err == nil {
		return "unknown"
	}
	return truncate(err.Error(), 80)
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}

// Run starts a full-screen Bubble Tea program for m and blocks until the user quits.
func Run(m Model) error {
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running visualiser: %w", err)
	}
	return nil
}
