// Package projector computes, each frame, where every lattice node is drawn.
//
// A node's target is composed from pointer, structural, planetary and
// spherical terms; a damped spring tracks the target and the result is
// wrapped over the containment shell and folded toward its meta-grid cell.
package projector

import (
	"math"

	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/fields"
	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/sphere"
	"github.com/msalah0e/lattice/internal/vec"
)

// StabilizedNode is the spring state tracking a node's target.
type StabilizedNode struct {
	X, Y   float64
	VX, VY float64
}

// Projected is one node's output for one frame.
type Projected struct {
	X     float64
	Y     float64
	Scale float64
	Depth float64 // static per node, in [-1,1]
	Force float64 // [0,1]
	Shell float64 // proximity to the containment shell, [0,1]
}

// Pos returns the projected position.
func (p Projected) Pos() vec.Vec2 { return vec.Vec2{X: p.X, Y: p.Y} }

// Frame carries everything the projector reads besides its own state.
type Frame struct {
	T          float64 // seconds since start
	DT         float64 // seconds, already clamped by the caller
	Pointer    vec.Vec2
	Width      float64
	Height     float64
	Density    float64   // semantic density, [0,1]
	Attunement []float64 // per node, may be nil
	Pressure   float64   // warm pressure, [0,1]

	Meta *fields.MetaGrid   // optional
	Mode *fields.CenterMode // optional
}

// Projector owns the per-node spring states of one simulation.
type Projector struct {
	cfg   config.ProjectorConfig
	seed  int64
	geom  *geometry.Geometry
	field *sphere.Field

	stable map[string]*StabilizedNode
	depth  []float64
	out    []Projected
}

// New creates a projector for geom. Spring states are created lazily on the
// first frame that sees each node.
func New(cfg config.ProjectorConfig, seed int64, geom *geometry.Geometry, field *sphere.Field) *Projector {
	p := &Projector{
		cfg:    cfg,
		seed:   seed,
		field:  field,
		stable: make(map[string]*StabilizedNode),
	}
	p.Repair(geom)
	return p
}

// Repair rebinds the projector to a rebuilt geometry: spring states of
// vanished nodes are pruned, new nodes get theirs on the next frame.
func (p *Projector) Repair(geom *geometry.Geometry) {
	p.geom = geom
	for id := range p.stable {
		if _, ok := geom.Index[id]; !ok {
			delete(p.stable, id)
		}
	}
	p.depth = make([]float64, geom.Len())
	for i, n := range geom.Nodes {
		p.depth[i] = vec.HashSigned(n.ID, p.seed)
	}
	p.out = make([]Projected, geom.Len())
}

// SetField swaps the containment field, e.g. after a resize.
func (p *Projector) SetField(f *sphere.Field) { p.field = f }

// Stabilized returns the spring state for a node id, if it exists yet.
func (p *Projector) Stabilized(id string) (StabilizedNode, bool) {
	s, ok := p.stable[id]
	if !ok {
		return StabilizedNode{}, false
	}
	return *s, true
}

// Depth is node i's static pseudo-random depth.
func (p *Projector) Depth(i int) float64 { return p.depth[i] }

// Output is the last projected frame. It is overwritten by the next Project.
func (p *Projector) Output() []Projected { return p.out }

// Force is the instantaneous force intensity of node i.
func (p *Projector) Force(i int, f *Frame) float64 {
	c := p.cfg
	rest := p.geom.Rest(i)

	d := rest.Dist(f.Pointer)
	var proximity float64
	if c.PointerRadius > vec.Epsilon {
		proximity = math.Max(0, 1-d/c.PointerRadius)
	}
	var attune float64
	if i < len(f.Attunement) {
		attune = f.Attunement[i]
	}
	wave := 0.5 + 0.5*math.Sin(f.T*c.WaveSpeed-(rest.X+rest.Y)*c.WaveScale+phaseDrift(f))

	return vec.Clamp01(c.PointerWeight*proximity +
		c.AttunementWeight*vec.Clamp01(attune) +
		c.DegreeWeight*p.geom.DegreeNorm(i) +
		c.WaveWeight*wave +
		c.DensityWeight*vec.Clamp01(f.Density))
}

// Project runs one frame for every node and returns the output slice.
func (p *Projector) Project(f *Frame) []Projected {
	c := p.cfg
	g := p.geom
	centre := vec.Vec2{X: f.Width / 2, Y: f.Height / 2}
	ease := vec.Smoothstep(0, c.StartupEaseS, f.T)
	pressure := vec.Clamp01(f.Pressure)
	drift := phaseDrift(f)

	// Pointer offset from the viewport centre, in [-1,1] per axis.
	look := vec.Vec2{
		X: vec.Clamp(vec.SafeDiv(f.Pointer.X-centre.X, centre.X), -1, 1),
		Y: vec.Clamp(vec.SafeDiv(f.Pointer.Y-centre.Y, centre.Y), -1, 1),
	}

	for i, n := range g.Nodes {
		rest := g.Rest(i)
		depth := p.depth[i]
		force := p.Force(i, f)

		// Target.
		target := rest.Add(look.Scale(c.ParallaxPx * depth * (0.4 + 0.6*force)))

		away, d := rest.Sub(f.Pointer).Normalize()
		proximity := 0.0
		if c.PointerRadius > vec.Epsilon {
			proximity = math.Max(0, 1-d/c.PointerRadius)
		}
		target = target.Add(away.Scale(c.RadialPx * force * ease * (2*proximity - 1)))

		cont := p.field.Containment(target, depth, force)
		target = target.Add(cont.Offset)

		planet := p.field.PlanetaryForce(rest, f.T)
		target = target.Add(planetaryOffset(planet, c.PlanetaryGain, force))

		// Wrap, blended.
		k := vec.Clamp(0.35*pressure+0.45*cont.Shell+0.1, 0, 0.85)
		wrapped, _ := p.field.Wrap(target)
		target = target.Lerp(wrapped, k)

		// Organic offsets.
		phase := depth*math.Pi + drift
		target = target.Add(vec.Vec2{
			X: math.Sin(f.T*0.8 + rest.Y*0.013 + phase),
			Y: math.Cos(f.T*0.7 + rest.X*0.011 + phase),
		}.Scale(c.BillowPx))

		outward, _ := target.Sub(p.field.State.Center).Normalize()
		target = target.Sub(outward.Scale(c.ShellRepelPx * cont.Shell))

		core := g.IsCore[i]
		if core {
			target = target.Add(vec.Vec2{
				X: math.Sin(f.T*1.7 + phase),
				Y: math.Cos(f.T*1.3 + phase),
			}.Scale(c.CoreElasticPx * (0.5 + 0.5*force)))
		}

		// Spring.
		s, ok := p.stable[n.ID]
		if !ok {
			s = &StabilizedNode{X: target.X, Y: target.Y}
			p.stable[n.ID] = s
		}
		restPull := c.RestPullOuter
		if core {
			restPull = c.RestPullCore
		}
		pos := vec.Vec2{X: s.X, Y: s.Y}
		acc := target.Sub(pos).Scale(c.SpringStiffness).Add(rest.Sub(pos).Scale(restPull))
		vel := vec.Vec2{X: s.VX, Y: s.VY}.Add(acc.Scale(f.DT)).Scale(math.Exp(-c.SpringDamping * f.DT))
		pos = pos.Add(vel.Scale(f.DT))
		if !finite(pos) || !finite(vel) {
			pos, vel = rest, vec.Vec2{}
		}
		s.X, s.Y, s.VX, s.VY = pos.X, pos.Y, vel.X, vel.Y

		// Re-wrap, then shear.
		wrapped, cosTheta := p.field.Wrap(pos)
		out := pos.Lerp(wrapped, k)
		if f.Meta != nil {
			b := f.Meta.Bias
			out = out.Add(vec.Vec2{X: b.ShearX, Y: b.ShearY}.Scale(c.ShearPx * (0.6 + 0.4*force)))
		}

		// Meta-grid anchoring.
		if f.Meta != nil && f.Mode != nil {
			mn := f.Meta.Nodes[fields.Cell(g.GridRow[i], g.GridCol[i])]
			anchor := vec.Vec2{X: mn.X, Y: mn.Y}
			env := f.Mode.Envelope()
			w := f.Mode.Weights()
			fold := w.Fold * env * (0.5*mn.Energy + 0.5*mn.Coherence)
			expand := w.Expand * env * mn.Focus
			out = out.Add(anchor.Sub(out).Scale(fold)).Add(out.Sub(anchor).Scale(expand))
		}
		if !finite(out) {
			out = rest
		}

		scale := (1 + 0.12*depth + 0.1*force) * (0.85 + 0.15*cosTheta)
		if !(scale >= c.MinScale) {
			scale = c.MinScale
		}

		p.out[i] = Projected{
			X:     out.X,
			Y:     out.Y,
			Scale: scale,
			Depth: depth,
			Force: force,
			Shell: cont.Shell,
		}
	}
	return p.out
}

// phaseDrift shifts the wave and billow phases by the meta-grid drift, up to
// half a turn either way.
func phaseDrift(f *Frame) float64 {
	if f.Meta == nil {
		return 0
	}
	return vec.Clamp(f.Meta.Bias.PhaseDrift, -1, 1) * math.Pi
}

// planetaryOffset is the pixel pull of the orbiting bodies. Nodes far from
// every body keep half of it.
func planetaryOffset(p sphere.Planetary, gain, force float64) vec.Vec2 {
	return p.F.Scale(gain * (0.5 + 0.5*force) * (0.5 + 0.5*vec.Clamp01(p.Intensity)))
}

func finite(v vec.Vec2) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
