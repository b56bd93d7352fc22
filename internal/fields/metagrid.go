package fields

import (
	"fmt"
	"math"

	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/vec"
)

const (
	MetaRows = 3
	MetaCols = 3
	MetaSize = MetaRows * MetaCols
)

// MetaNode is one cell of the coarse coupled-oscillator overlay.
type MetaNode struct {
	ID        string
	Row       int
	Col       int
	X         float64
	Y         float64
	Energy    float64
	Coherence float64
	Focus     float64
	Phase     float64
}

// Bias is the aggregate pull of the meta-grid, fed back into the projector
// and the decorative passes.
type Bias struct {
	PhaseDrift   float64 // [-1,1]
	PressureBias float64 // [0,1]
	ShearX       float64 // [-1,1]
	ShearY       float64 // [-1,1]
	IconDrive    float64 // [0,1]
}

// Activity is the global signal fed into the local meta-node.
type Activity struct {
	Force  float64
	Focus  float64
	Strain float64
}

// MetaGrid is a 3×3 coupled-oscillator network. The local node tracks the
// simulation's activity; the others follow it with coupling that falls off
// with grid distance.
type MetaGrid struct {
	Nodes     [MetaSize]MetaNode
	Local     int
	Bias      Bias
	Smoothing float64
}

// NewMetaGrid builds the grid with all oscillators at rest.
func NewMetaGrid(local int, smoothing float64) *MetaGrid {
	m := &MetaGrid{Local: local, Smoothing: smoothing}
	for i := range m.Nodes {
		r, c := i/MetaCols, i%MetaCols
		m.Nodes[i] = MetaNode{ID: fmt.Sprintf("m-%d-%d", r, c), Row: r, Col: c, Coherence: 1}
	}
	return m
}

// Layout places the meta-nodes at the cell centres of bounds. Oscillator
// state is kept.
func (m *MetaGrid) Layout(bounds geometry.Rect) {
	for i := range m.Nodes {
		n := &m.Nodes[i]
		n.X = bounds.MinX + bounds.Width()*(float64(n.Col)+0.5)/MetaCols
		n.Y = bounds.MinY + bounds.Height()*(float64(n.Row)+0.5)/MetaRows
	}
}

// Cell maps proportional grid coordinates in [0,1] to a meta-node index.
func Cell(row, col float64) int {
	r := min(MetaRows-1, max(0, int(row*MetaRows)))
	c := min(MetaCols-1, max(0, int(col*MetaCols)))
	return r*MetaCols + c
}

// Lookup returns the index of the meta-node with the given id.
func (m *MetaGrid) Lookup(id string) (int, bool) {
	for i := range m.Nodes {
		if m.Nodes[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (m *MetaGrid) gridDist(i int) float64 {
	l := m.Nodes[m.Local]
	n := m.Nodes[i]
	return math.Hypot(float64(n.Row-l.Row), float64(n.Col-l.Col))
}

// Update advances all oscillators by dt at time t and recomputes Bias.
func (m *MetaGrid) Update(dt, t float64, act Activity) {
	rate := 1 - math.Exp(-m.Smoothing*dt)
	loc := &m.Nodes[m.Local]
	loc.Energy = vec.Clamp01(loc.Energy + (vec.Clamp01(act.Force)-loc.Energy)*rate)
	loc.Coherence = vec.Clamp01(loc.Coherence + (vec.Clamp01(1-act.Strain)-loc.Coherence)*rate)
	loc.Focus = vec.Clamp01(loc.Focus + (vec.Clamp01(act.Focus)-loc.Focus)*rate)
	loc.Phase = t * 0.9

	var sx, sy, drift, pressure, icon float64
	count := 0
	for i := range m.Nodes {
		if i == m.Local {
			continue
		}
		n := &m.Nodes[i]
		gd := m.gridDist(i)
		coupling := 1 / (1 + gd)
		n.Phase = t*0.9 - gd*0.9 + float64(n.Row+n.Col)*0.7

		targetEnergy := loc.Energy * coupling * (0.6 + 0.4*math.Sin(n.Phase))
		targetCoherence := loc.Coherence * (0.5 + 0.5*math.Cos(n.Phase*0.8))
		targetFocus := loc.Focus * coupling * (0.5 + 0.5*math.Sin(n.Phase*0.7+loc.Energy*math.Pi))

		k := 1 - math.Exp(-m.Smoothing*coupling*dt)
		n.Energy = vec.Clamp01(n.Energy + (targetEnergy-n.Energy)*k)
		n.Coherence = vec.Clamp01(n.Coherence + (targetCoherence-n.Coherence)*k)
		n.Focus = vec.Clamp01(n.Focus + (targetFocus-n.Focus)*k)

		dir, _ := vec.Vec2{X: float64(n.Col - loc.Col), Y: float64(n.Row - loc.Row)}.Normalize()
		pull := n.Energy * coupling
		sx += dir.X * pull
		sy += dir.Y * pull
		drift += math.Sin(n.Phase) * coupling
		pressure += n.Energy * n.Coherence
		icon += n.Focus * n.Coherence
		count++
	}

	if count == 0 {
		m.Bias = Bias{PressureBias: loc.Energy, IconDrive: loc.Focus * loc.Coherence}
		return
	}
	fc := float64(count)
	m.Bias = Bias{
		PhaseDrift:   vec.Clamp(drift/fc*2, -1, 1),
		PressureBias: vec.Clamp01(0.5*loc.Energy + 0.5*pressure/fc),
		ShearX:       vec.Clamp(sx/fc*2, -1, 1),
		ShearY:       vec.Clamp(sy/fc*2, -1, 1),
		IconDrive:    vec.Clamp01(icon / fc * 2),
	}
}
