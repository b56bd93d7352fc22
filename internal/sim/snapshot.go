package sim

import (
	"fmt"

	"github.com/msalah0e/lattice/internal/fields"
	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/particles"
	"github.com/msalah0e/lattice/internal/projector"
	"github.com/msalah0e/lattice/internal/semantic"
	"github.com/msalah0e/lattice/internal/sphere"
	"github.com/msalah0e/lattice/internal/vec"
)

// Snapshot is a read-only copy of everything a renderer draws.
type Snapshot struct {
	SessionID string
	Seed      int64
	T         float64
	Width     float64
	Height    float64

	Geometry  *geometry.Geometry // shared, immutable
	Nodes     []projector.Projected
	Semantic  []semantic.Edge
	Strain    []float64 // per structural edge
	Connector []float64
	Focus     []float64

	Sphere   sphere.State
	Vessel   vec.Vec2
	Event    fields.EventState
	Gain     float64
	Hush     float64
	Icon     float64 // icon drive weighted by the glyph phase
	Pressure float64
	Meta     [fields.MetaSize]fields.MetaNode
	Bias     fields.Bias
	Mode     fields.ModeKind
	Envelope float64

	Box     particles.Box
	Primary []particles.Particle
	Shadow  []particles.Particle
}

// Snapshot copies the current frame. Before the first frame Nodes is empty.
func (s *Simulation) Snapshot() Snapshot {
	return Snapshot{
		SessionID: s.Session.ID,
		Seed:      s.Session.Seed,
		T:         s.t,
		Width:     s.width,
		Height:    s.height,
		Geometry:  s.geom,
		Nodes:     append([]projector.Projected(nil), s.out...),
		Semantic:  append([]semantic.Edge(nil), s.engine.Edges()...),
		Strain:    append([]float64(nil), s.strain...),
		Connector: append([]float64(nil), s.connector.Values()...),
		Focus:     append([]float64(nil), s.focus.Values()...),
		Sphere:    s.field.State,
		Vessel:    s.vessel,
		Event:     s.lifecycle.State,
		Gain:      s.lifecycle.Gain,
		Hush:      s.lifecycle.Hush(),
		Icon:      s.icon,
		Pressure:  s.pressure,
		Meta:      s.meta.Nodes,
		Bias:      s.meta.Bias,
		Mode:      s.mode.Kind,
		Envelope:  s.mode.Envelope(),
		Box:       s.box,
		Primary:   append([]particles.Particle(nil), s.swarms.Primary...),
		Shadow:    append([]particles.Particle(nil), s.swarms.Shadow...),
	}
}

// Diagnostics is the state shown by the diagnostics overlay.
type Diagnostics struct {
	Seed          int64
	Radius        float64
	Sigma         float64
	AvgForce      float64
	SemanticEdges int
	Pressure      float64
	Event         fields.EventState
	Gain          float64
	Bias          fields.Bias
	Mode          fields.ModeKind
	ModeElapsed   float64
	ModeDuration  float64
	Frames        int
	Cycles        int
	Transitions   int
}

// Diagnostics summarises the current frame.
func (s *Simulation) Diagnostics() Diagnostics {
	return Diagnostics{
		Seed:          s.Session.Seed,
		Radius:        s.field.State.Radius,
		Sigma:         s.field.State.Sigma,
		AvgForce:      fields.Mean(s.force),
		SemanticEdges: len(s.engine.Edges()),
		Pressure:      s.pressure,
		Event:         s.lifecycle.State,
		Gain:          s.lifecycle.Gain,
		Bias:          s.meta.Bias,
		Mode:          s.mode.Kind,
		ModeElapsed:   s.mode.Elapsed,
		ModeDuration:  s.mode.Duration,
		Frames:        s.frames,
		Cycles:        s.engine.Cycles(),
		Transitions:   s.lifecycle.Transitions,
	}
}

// Lines formats the diagnostics for an overlay.
func (d Diagnostics) Lines() []string {
	b := d.Bias
	return []string{
		fmt.Sprintf("seed      %d", d.Seed),
		fmt.Sprintf("field     r=%.1f σ=%.1f", d.Radius, d.Sigma),
		fmt.Sprintf("force     %.3f", d.AvgForce),
		fmt.Sprintf("semantic  %d edges (%d cycles)", d.SemanticEdges, d.Cycles),
		fmt.Sprintf("pressure  %.3f", d.Pressure),
		fmt.Sprintf("event     %s gain=%.2f", d.Event, d.Gain),
		fmt.Sprintf("meta      drift=%+.2f press=%.2f shear=(%+.2f,%+.2f) icon=%.2f",
			b.PhaseDrift, b.PressureBias, b.ShearX, b.ShearY, b.IconDrive),
		fmt.Sprintf("mode      %s %.1f/%.1fs", d.Mode, d.ModeElapsed, d.ModeDuration),
	}
}
