// Package viewer hosts a Simulation in the terminal: it forwards input,
// ticks frames and semantic cycles, and draws each snapshot as runes.
package viewer

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/sim"
	"github.com/msalah0e/lattice/internal/ui"
)

type frameMsg time.Time

type cycleMsg time.Time

var (
	diagStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Model is the bubbletea model. Frame and semantic ticks arrive as
// messages, so they are serialised with input handling.
type Model struct {
	sim      *sim.Simulation
	cfg      config.ViewerConfig
	interval time.Duration

	cols, rows int
	canvas     *Canvas
	last       time.Time
	showDiag   bool
	pointerX   float64
	pointerY   float64
	quitting   bool
}

// New creates a viewer for s. interval is the semantic cycle period.
func New(s *sim.Simulation, cfg config.ViewerConfig, interval time.Duration) Model {
	w, h := s.Viewport()
	cols := max(1, int(w/cfg.CellWidth))
	rows := max(1, int(h/cfg.CellHeight))
	return Model{
		sim:      s,
		cfg:      cfg,
		interval: interval,
		cols:     cols,
		rows:     rows,
		canvas:   NewCanvas(cols, rows),
		showDiag: cfg.ShowDiagnostic,
		pointerX: w / 2,
		pointerY: h / 2,
	}
}

// Run starts a full-screen program and blocks until the user quits.
func Run(s *sim.Simulation, cfg config.ViewerConfig, interval time.Duration) error {
	p := tea.NewProgram(New(s, cfg, interval), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}

func (m Model) frameTick() tea.Cmd {
	fps := m.cfg.FPS
	if fps <= 0 {
		fps = 60
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) cycleTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return cycleMsg(t) })
}

// Init starts both tickers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.frameTick(), m.cycleTick())
}

// Update handles input and ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionMotion || msg.Action == tea.MouseActionPress {
			m.movePointer((float64(msg.X)+0.5)*m.cellW(), (float64(msg.Y)+0.5)*m.cellH())
		}

	case tea.WindowSizeMsg:
		m.cols, m.rows = max(1, msg.Width), max(1, msg.Height-1)
		m.canvas = NewCanvas(m.cols, m.rows)
		m.sim.Resize(float64(m.cols)*m.cfg.CellWidth, float64(m.rows)*m.cfg.CellHeight)
		w, h := m.sim.Viewport()
		m.movePointer(math.Min(m.pointerX, w), math.Min(m.pointerY, h))

	case frameMsg:
		now := time.Time(msg)
		dt := sim.MinFrameDT
		if !m.last.IsZero() {
			dt = now.Sub(m.last)
		}
		m.last = now
		m.sim.Frame(dt)
		return m, m.frameTick()

	case cycleMsg:
		m.sim.SemanticCycle()
		return m, m.cycleTick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := m.cfg.PointerStep
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case m.cfg.DiagnosticsKey:
		m.showDiag = !m.showDiag
	case "left", "h":
		m.movePointer(m.pointerX-step, m.pointerY)
	case "right", "l":
		m.movePointer(m.pointerX+step, m.pointerY)
	case "up", "k":
		m.movePointer(m.pointerX, m.pointerY-step)
	case "down", "j":
		m.movePointer(m.pointerX, m.pointerY+step)
	}
	return m, nil
}

func (m *Model) movePointer(x, y float64) {
	w, h := m.sim.Viewport()
	m.pointerX = math.Max(0, math.Min(x, w))
	m.pointerY = math.Max(0, math.Min(y, h))
	m.sim.SetPointer(m.pointerX, m.pointerY)
}

// cellW and cellH are the simulation pixels per canvas cell. They differ
// from the configured cell size when the viewport was clamped up to the
// minimum.
func (m Model) cellW() float64 {
	w, _ := m.sim.Viewport()
	return w / float64(m.cols)
}

func (m Model) cellH() float64 {
	_, h := m.sim.Viewport()
	return h / float64(m.rows)
}

// ShowingDiagnostics reports whether the overlay is on.
func (m Model) ShowingDiagnostics() bool { return m.showDiag }

// View draws the current snapshot.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.sim.Snapshot()
	draw(m.canvas, &snap, m.cellW(), m.cellH())
	out := m.canvas.Render()

	if m.showDiag {
		overlay := diagStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.sim.Diagnostics().Lines()...))
		out = lipgloss.JoinHorizontal(lipgloss.Top, overlay, " ", out)
	}
	return out + "\n" + helpStyle.Render(ui.Mark+" move: arrows/hjkl/mouse · "+m.cfg.DiagnosticsKey+": diagnostics · q: quit")
}
