// Package sim owns the state of one running lattice: geometry, fields,
// spring states and particles. A Simulation is not safe for concurrent use;
// drive it from a single goroutine (see Loop).
package sim

import (
	"math"
	"time"

	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/fields"
	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/particles"
	"github.com/msalah0e/lattice/internal/projector"
	"github.com/msalah0e/lattice/internal/semantic"
	"github.com/msalah0e/lattice/internal/sphere"
	"github.com/msalah0e/lattice/internal/ui"
	"github.com/msalah0e/lattice/internal/vec"
)

const (
	MinFrameDT = time.Millisecond
	MaxFrameDT = 80 * time.Millisecond
)

// ClampDT bounds a frame delta to [MinFrameDT, MaxFrameDT].
func ClampDT(dt time.Duration) time.Duration {
	if dt < MinFrameDT {
		return MinFrameDT
	}
	if dt > MaxFrameDT {
		return MaxFrameDT
	}
	return dt
}

// Simulation is one lattice instance.
type Simulation struct {
	Session Session

	cfg    *config.Config
	width  float64
	height float64
	t      float64
	frames int

	geom      *geometry.Geometry
	field     *sphere.Field
	engine    *semantic.Engine
	proj      *projector.Projector
	relax     *projector.Relaxer
	connector *fields.Connector
	focus     *fields.Focus
	lifecycle *fields.Lifecycle
	meta      *fields.MetaGrid
	mode      *fields.CenterMode
	core      *fields.CoreWeights
	swarms    *particles.System

	target    vec.Vec2
	vessel    vec.Vec2
	vesselVel vec.Vec2

	frame    projector.Frame
	out      []projector.Projected
	pos      []vec.Vec2
	force    []float64
	strain   []float64
	box      particles.Box
	pressure float64
	icon     float64
}

// New creates a simulation over geom for a w×h viewport. cfg.Seed, when
// non-zero, fixes the session seed.
func New(cfg *config.Config, geom *geometry.Geometry, w, h float64) *Simulation {
	w, h = clampViewport(cfg, w, h)
	s := &Simulation{
		Session: NewSession(cfg.Seed),
		cfg:     cfg,
		width:   w,
		height:  h,
	}
	seed := s.Session.Seed
	fc := cfg.Fields

	s.field = sphere.New(w, h, seed)
	s.relax = projector.NewRelaxer(cfg.Relax)
	s.lifecycle = fields.NewLifecycle(cfg.Lifecycle)
	s.meta = fields.NewMetaGrid(fc.MetaLocalIndex, fc.MetaSmoothing)
	s.mode = fields.NewCenterMode(seed, fc.CenterModeMinS, fc.CenterModeMaxS)
	s.swarms = particles.New(cfg.Particles, seed)

	s.geom = geom
	s.engine = semantic.New(cfg.Semantic, geom, w, h)
	s.proj = projector.New(cfg.Projector, seed, geom, s.field)
	s.connector = fields.NewConnector(geom.Len(), fc.ConnectorDecay, fc.ConnectorSelf, fc.ConnectorNeighbor)
	s.focus = fields.NewFocus(geom.Len(), fc.FocusSeeds, fc.FocusSeedSpacing, fc.FocusSigmaFrac, fc.FocusSigmaMin, fc.FocusCoreBonus)
	s.core = fields.NewCoreWeights(geom.Core, seed, fc.CoreReassignMinS, fc.CoreReassignJitS)
	s.meta.Layout(s.metaBounds())
	s.resizeScratch()

	s.target = vec.Vec2{X: w / 2, Y: h / 2}
	s.vessel = s.target

	ui.Logf("session %s seed %d: %d nodes, %d edges", s.Session.ID, seed, geom.Len(), len(geom.Edges))
	return s
}

func clampViewport(cfg *config.Config, w, h float64) (float64, float64) {
	return math.Max(w, cfg.Viewport.MinWidth), math.Max(h, cfg.Viewport.MinHeight)
}

// metaBounds is the region the meta-grid spans: the node bounds, or the
// whole viewport when there are no nodes.
func (s *Simulation) metaBounds() geometry.Rect {
	if s.geom.Len() == 0 {
		return geometry.Rect{MaxX: s.width, MaxY: s.height}
	}
	return s.geom.Bounds
}

func (s *Simulation) resizeScratch() {
	n := s.geom.Len()
	s.pos = make([]vec.Vec2, n)
	s.force = make([]float64, n)
	s.strain = make([]float64, len(s.geom.Edges))
	s.out = nil
}

// Geometry is the current node and edge set.
func (s *Simulation) Geometry() *geometry.Geometry { return s.geom }

// Field is the spherical containment field.
func (s *Simulation) Field() *sphere.Field { return s.field }

// Viewport returns the current width and height.
func (s *Simulation) Viewport() (float64, float64) { return s.width, s.height }

// Elapsed is the simulated time in seconds.
func (s *Simulation) Elapsed() float64 { return s.t }

// Frames is the number of frames run.
func (s *Simulation) Frames() int { return s.frames }

// Vessel is the inertial pointer position forces concentrate around.
func (s *Simulation) Vessel() vec.Vec2 { return s.vessel }

// SetPointer moves the vessel's target; the vessel follows with inertia.
func (s *Simulation) SetPointer(x, y float64) {
	s.target = vec.Vec2{
		X: vec.Clamp(x, 0, s.width),
		Y: vec.Clamp(y, 0, s.height),
	}
}

// Frame advances the simulation by dt, clamped to [1ms, 80ms].
func (s *Simulation) Frame(dt time.Duration) {
	d := ClampDT(dt).Seconds()
	s.t += d
	s.frames++

	s.stepVessel(d)
	s.engine.Attune(s.vessel)
	s.field.Update(s.t)

	s.pressure = vec.Clamp01(0.5*s.meta.Bias.PressureBias + 0.5*s.lifecycle.Gain)
	s.frame = projector.Frame{
		T:          s.t,
		DT:         d,
		Pointer:    s.vessel,
		Width:      s.width,
		Height:     s.height,
		Density:    s.engine.Density(),
		Attunement: s.engine.AttunementSlice(),
		Pressure:   s.pressure,
		Meta:       s.meta,
		Mode:       s.mode,
	}
	s.out = s.proj.Project(&s.frame)
	s.relax.Relax(s.geom, s.out)

	for i, p := range s.out {
		s.pos[i] = p.Pos()
		s.force[i] = p.Force
	}
	s.strain = fields.Strain(s.geom, s.pos, s.cfg.Fields.StrainGain, s.strain)
	s.connector.Step(s.geom, s.strain, s.force)
	s.focus.Step(s.geom, s.pos, s.force, s.connector.Values(), s.width, s.height)
	s.lifecycle.Step(fields.EventActivity(s.focus.Values(), s.connector.Values()), d)

	s.meta.Update(d, s.t, fields.Activity{
		Force:  fields.Mean(s.force),
		Focus:  fields.Mean(s.focus.Values()),
		Strain: fields.Mean(s.strain),
	})
	s.mode.Step(d)

	env, w := s.mode.Envelope(), s.mode.Weights()
	s.icon = vec.Clamp01(s.meta.Bias.IconDrive * (0.5 + w.Glyph*env))

	s.core.Step(s.t)
	s.box = particles.CoreBox(s.geom, s.out, s.cfg.Particles.BoxMargin)
	s.swarms.Step(&particles.Input{
		T:      s.t,
		DT:     d,
		Box:    s.box,
		Focus:  s.focus.Centroid(s.pos, s.box.Center()),
		Field:  s.field,
		Nodes:  s.out,
		Core:   s.core.Active(),
		Icon:   s.icon,
		Stitch: w.Stitch * env,
		Hush:   s.lifecycle.Hush(),
	})
}

func (s *Simulation) stepVessel(dt float64) {
	c := s.cfg.Projector
	acc := s.target.Sub(s.vessel).Scale(c.VesselFollow * c.VesselFollow)
	s.vesselVel = s.vesselVel.Add(acc.Scale(dt)).Scale(math.Pow(c.VesselDamping, dt*60))
	s.vessel = s.vessel.Add(s.vesselVel.Scale(dt))
}

// SemanticCycle runs one semantic overlay recomputation around the vessel.
// It is kept off the per-frame path.
func (s *Simulation) SemanticCycle() []semantic.Edge {
	edges := s.engine.Cycle(s.vessel)
	ui.Logf("semantic cycle %d: %d edges", s.engine.Cycles(), len(edges))
	return edges
}

// Resize rescales the simulation to a new viewport (at least the configured
// minimum). The field and meta-grid are rebuilt; a procedural grid is
// rebuilt too and every per-node field is carried over by node id.
func (s *Simulation) Resize(w, h float64) {
	s.width, s.height = clampViewport(s.cfg, w, h)
	s.field.Resize(s.width, s.height)
	s.engine.SetViewport(s.width, s.height)
	s.SetPointer(s.target.X, s.target.Y)

	if s.geom.Procedural {
		s.Rebuild(geometry.BuildGrid(s.width, s.height, s.cfg.Geometry))
		return
	}
	s.meta.Layout(s.metaBounds())
}

// Rebuild swaps in a new geometry, repairing all per-node state by id.
func (s *Simulation) Rebuild(g *geometry.Geometry) {
	old := s.geom
	s.geom = g
	s.engine.Repair(g)
	s.proj.Repair(g)
	s.connector.Repair(old, g)
	s.focus.Repair(old, g)
	s.core.Reset(g.Core)
	s.meta.Layout(s.metaBounds())
	s.resizeScratch()
	ui.Logf("rebuilt geometry: %d nodes, %d edges", g.Len(), len(g.Edges))
}
