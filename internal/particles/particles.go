// Package particles runs the two decorative swarms that drift inside the
// lattice core.
package particles

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/fields"
	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/projector"
	"github.com/msalah0e/lattice/internal/sphere"
	"github.com/msalah0e/lattice/internal/vec"
)

// Particle is one free-floating point.
type Particle struct {
	Pos vec.Vec2
	Vel vec.Vec2
	Key float64 // noise offset
}

// Box is the axis-aligned region the swarms are confined to.
type Box struct {
	Min   vec.Vec2
	Max   vec.Vec2
	Valid bool
}

// Center of the box.
func (b Box) Center() vec.Vec2 { return b.Min.Lerp(b.Max, 0.5) }

// HalfDiag is half the box diagonal.
func (b Box) HalfDiag() float64 { return b.Min.Dist(b.Max) / 2 }

// Contains reports whether p is inside the box, edges included.
func (b Box) Contains(p vec.Vec2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// CoreBox is the bounding box of the four corner core nodes' projected
// positions, shrunk by margin (a fraction of each side) on every side.
func CoreBox(g *geometry.Geometry, out []projector.Projected, margin float64) Box {
	corners := g.CoreCorners()
	b := Box{
		Min: vec.Vec2{X: math.Inf(1), Y: math.Inf(1)},
		Max: vec.Vec2{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	for _, i := range corners {
		if i < 0 || i >= len(out) {
			return Box{}
		}
		p := out[i].Pos()
		b.Min = vec.Vec2{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y)}
		b.Max = vec.Vec2{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y)}
	}
	inset := b.Max.Sub(b.Min).Scale(vec.Clamp(margin, 0, 0.45))
	b.Min = b.Min.Add(inset)
	b.Max = b.Max.Sub(inset)
	b.Valid = b.Max.X-b.Min.X > vec.Epsilon && b.Max.Y-b.Min.Y > vec.Epsilon
	return b
}

// Input is what the swarms read each frame.
type Input struct {
	T     float64
	DT    float64
	Box   Box
	Focus vec.Vec2 // focus heatmap centroid
	Field *sphere.Field
	Nodes []projector.Projected
	Core  []fields.CoreWeight

	Icon   float64 // boosts core interaction, [0,1]
	Stitch float64 // tightens partner springs, [0,1]
	Hush   float64 // quiets the wander during a silence window, [0,1]
}

// System owns both swarms. Shadow[i] is Primary[i]'s partner.
type System struct {
	Primary []Particle
	Shadow  []Particle

	cfg      config.ParticlesConfig
	noise    opensimplex.Noise
	rng      *rand.Rand
	placed   bool
	gust     vec.Vec2
	gustNext float64
	force    []vec.Vec2
	pair     []vec.Vec2
}

// New creates unplaced swarms; they are scattered on the first step with a
// valid box.
func New(cfg config.ParticlesConfig, seed int64) *System {
	n := max(cfg.Count, 0)
	return &System{
		Primary: make([]Particle, n),
		Shadow:  make([]Particle, n),
		cfg:     cfg,
		noise:   opensimplex.New(seed),
		rng:     rand.New(rand.NewSource(seed ^ 0x5a4d)),
		force:   make([]vec.Vec2, n),
		pair:    make([]vec.Vec2, n),
	}
}

// Placed reports whether the swarms have been scattered yet.
func (s *System) Placed() bool { return s.placed }

func (s *System) place(b Box) {
	c := b.Center()
	half := b.Max.Sub(b.Min).Scale(0.35)
	for i := range s.Primary {
		off := vec.Vec2{
			X: (s.rng.Float64()*2 - 1) * half.X,
			Y: (s.rng.Float64()*2 - 1) * half.Y,
		}
		key := s.rng.Float64() * 100
		s.Primary[i] = Particle{Pos: c.Add(off), Key: key}
		s.Shadow[i] = Particle{Pos: c.Sub(off), Key: key + 57.3}
	}
	s.placed = true
}

// Step advances both swarms by one frame. It does nothing until the core
// box is valid.
func (s *System) Step(in *Input) {
	if !in.Box.Valid || len(s.Primary) == 0 {
		return
	}
	if !s.placed {
		s.place(in.Box)
	}
	s.stepGust(in.T, in.DT)

	var ref sphere.Planetary
	if in.Field != nil {
		ref = in.Field.PlanetaryForce(in.Box.Center(), in.T)
	}

	// Pair forces act equal and opposite on partners.
	for i := range s.Primary {
		s.pair[i] = s.pairForce(s.Primary[i].Pos, s.Shadow[i].Pos).Scale(1 + vec.Clamp01(in.Stitch))
	}

	for _, sw := range []struct {
		ps   []Particle
		sign float64
	}{{s.Primary, 1}, {s.Shadow, -1}} {
		for i := range sw.ps {
			f := s.ambient(in, sw.ps, i, sw.sign, ref)
			f = f.Add(s.pair[i].Scale(sw.sign))
			s.force[i] = f
		}
		for i := range sw.ps {
			s.integrate(&sw.ps[i], s.force[i], in.DT, in.Box)
		}
	}
}

func (s *System) stepGust(t, dt float64) {
	s.gust = s.gust.Scale(math.Exp(-2 * dt))
	if t < s.gustNext {
		return
	}
	a := s.rng.Float64() * 2 * math.Pi
	s.gust = vec.Vec2{X: math.Cos(a), Y: math.Sin(a)}.Scale(0.5 + 0.5*s.rng.Float64())
	s.gustNext = t + 1.5 + 2*s.rng.Float64()
}

func (s *System) pairForce(p, partner vec.Vec2) vec.Vec2 {
	dir, d := partner.Sub(p).Normalize()
	spring := dir.Scale((d - s.cfg.PairRest) * s.cfg.PairSpring)
	swirl := dir.Perp().Scale(s.cfg.Swirl)
	return spring.Add(swirl)
}

// ambient sums every force on particle i except the pair force.
func (s *System) ambient(in *Input, ps []Particle, i int, sign float64, ref sphere.Planetary) vec.Vec2 {
	c := s.cfg
	p := ps[i]
	box := in.Box
	centre := box.Center()
	half := box.Max.Sub(box.Min).Scale(0.5)

	f := centre.Sub(p.Pos).Scale(c.CenterPull)

	orbit := vec.Vec2{
		X: math.Cos(in.T*0.31) * half.X * 0.3,
		Y: math.Sin(in.T*0.23) * half.Y * 0.3,
	}
	anchor := centre.Add(orbit.Scale(sign))
	f = f.Add(anchor.Sub(p.Pos).Scale(c.OrbitPull))

	focus := vec.Vec2{
		X: vec.Clamp(in.Focus.X, box.Min.X, box.Max.X),
		Y: vec.Clamp(in.Focus.Y, box.Min.Y, box.Max.Y),
	}
	f = f.Add(focus.Sub(p.Pos).Scale(c.FocusPull))

	nx, ny, nt := p.Pos.X*0.008, p.Pos.Y*0.008, in.T*0.25+p.Key
	f = f.Add(vec.Vec2{
		X: s.noise.Eval3(nx, ny, nt),
		Y: s.noise.Eval3(nx+31.7, ny-17.3, nt),
	}.Scale(c.Wander * (1 - 0.6*vec.Clamp01(in.Hush))))
	f = f.Add(s.gust.Scale(c.Gust * sign))

	if in.Field != nil {
		local := in.Field.PlanetaryForce(p.Pos, in.T)
		f = f.Add(local.F.Sub(ref.F).Scale(c.Planetary * box.HalfDiag()))
	}

	for j := range ps {
		if j == i {
			continue
		}
		away, d := p.Pos.Sub(ps[j].Pos).Normalize()
		if d < c.SeparationRange && c.SeparationRange > vec.Epsilon {
			f = f.Add(away.Scale((1 - d/c.SeparationRange) * c.SeparationGain))
		}
	}

	return f.Add(s.coreForce(in, p.Pos, sign))
}

func (s *System) coreForce(in *Input, pos vec.Vec2, sign float64) vec.Vec2 {
	c := s.cfg
	sigma := math.Max(c.CoreSigma, vec.Epsilon)
	var f vec.Vec2
	for _, w := range in.Core {
		if w.Node < 0 || w.Node >= len(in.Nodes) {
			continue
		}
		dir, d := pos.Sub(in.Nodes[w.Node].Pos()).Normalize()
		fall := c.CoreForce * math.Exp(-d*d/(2*sigma*sigma))
		switch w.Mode {
		case fields.AttractPrimary:
			if sign > 0 {
				f = f.Sub(dir.Scale(fall))
			} else {
				f = f.Add(dir.Scale(0.35 * fall))
			}
		case fields.AttractShadow:
			if sign < 0 {
				f = f.Sub(dir.Scale(fall))
			} else {
				f = f.Add(dir.Scale(0.35 * fall))
			}
		case fields.ShearOrbit:
			f = f.Add(dir.Perp().Scale(fall * sign))
		case fields.TurbulenceKick:
			f = f.Add(w.Dir.Scale(fall))
		}
	}
	return f.Scale(1 + vec.Clamp01(in.Icon)).CapLen(c.CoreForceCap)
}

func (s *System) integrate(p *Particle, f vec.Vec2, dt float64, b Box) {
	c := s.cfg
	p.Vel = p.Vel.Add(f.Scale(dt))
	p.Vel = p.Vel.Scale(math.Pow(c.Damping, dt*60))
	p.Vel = p.Vel.CapLen(c.MaxSpeed)
	p.Pos = p.Pos.Add(p.Vel.Scale(dt))

	if p.Pos.X < b.Min.X {
		p.Pos.X = b.Min.X
		p.Vel.X = math.Abs(p.Vel.X) * c.WallRestitution
	} else if p.Pos.X > b.Max.X {
		p.Pos.X = b.Max.X
		p.Vel.X = -math.Abs(p.Vel.X) * c.WallRestitution
	}
	if p.Pos.Y < b.Min.Y {
		p.Pos.Y = b.Min.Y
		p.Vel.Y = math.Abs(p.Vel.Y) * c.WallRestitution
	} else if p.Pos.Y > b.Max.Y {
		p.Pos.Y = b.Max.Y
		p.Vel.Y = -math.Abs(p.Vel.Y) * c.WallRestitution
	}
	if math.IsNaN(p.Pos.X) || math.IsNaN(p.Pos.Y) {
		p.Pos, p.Vel = b.Center(), vec.Vec2{}
	}
}
