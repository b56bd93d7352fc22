package sphere

import (
	"math"
	"math/rand"

	"github.com/msalah0e/lattice/internal/vec"
)

const (
	radiusFrac   = 0.46 // of min(viewport)
	driftFrac    = 0.05
	primaryIndex = 0
)

// State is the containment field the whole scene warps around.
type State struct {
	Center vec.Vec2
	Radius float64
	Sigma  float64
	Spin   float64
}

// Body is one orbiting point mass of the planetary sampler.
type Body struct {
	Mass  float64
	Orbit float64 // orbit radius as a fraction of the field radius
	Speed float64 // rad/s, sign gives direction
	Phase float64
}

// Containment is the displacement the field applies to a point.
type Containment struct {
	Offset vec.Vec2
	Shell  float64
}

// Planetary is a sampled planetary force.
type Planetary struct {
	F         vec.Vec2
	Intensity float64
}

// Field is the moving spherical containment field. Its motion is fully
// determined by the seed and elapsed time.
type Field struct {
	State State

	seed       int64
	base       vec.Vec2
	baseRadius float64
	span       float64
	phase      [4]float64
	freq       [4]float64
	bodies     []Body
	t          float64
}

// New creates a field for a w×h viewport.
func New(w, h float64, seed int64) *Field {
	rng := rand.New(rand.NewSource(seed))
	f := &Field{seed: seed}
	for i := range f.phase {
		f.phase[i] = rng.Float64() * 2 * math.Pi
		f.freq[i] = 0.05 + rng.Float64()*0.07
	}

	f.bodies = append(f.bodies, Body{Mass: 1, Orbit: 0.16, Speed: 0.11, Phase: rng.Float64() * 2 * math.Pi})
	for i := 0; i < 3; i++ {
		dir := 1.0
		if rng.Intn(2) == 0 {
			dir = -1
		}
		f.bodies = append(f.bodies, Body{
			Mass:  0.16 + rng.Float64()*0.14,
			Orbit: 0.45 + rng.Float64()*0.5,
			Speed: dir * (0.2 + rng.Float64()*0.25),
			Phase: rng.Float64() * 2 * math.Pi,
		})
	}

	f.Resize(w, h)
	return f
}

// Resize recentres and rescales the field. The drift phase is kept, so the
// only discontinuity is the change of scale itself.
func (f *Field) Resize(w, h float64) {
	f.base = vec.Vec2{X: w / 2, Y: h / 2}
	f.span = math.Min(w, h)
	f.baseRadius = f.span * radiusFrac
	f.Update(f.t)
}

// Update advances the field to elapsed time t (seconds).
func (f *Field) Update(t float64) {
	f.t = t
	p, w := f.phase, f.freq
	f.State.Center = vec.Vec2{
		X: f.base.X + math.Sin(w[0]*t+p[0])*driftFrac*f.span,
		Y: f.base.Y + math.Cos(w[1]*t+p[1])*driftFrac*0.8*f.span,
	}
	f.State.Radius = f.baseRadius * (1 + 0.04*math.Sin(w[2]*t+p[2]))
	f.State.Sigma = f.State.Radius * (0.16 + 0.03*math.Sin(w[3]*t+p[3]))
	f.State.Spin = 0.35 * math.Sin(w[3]*0.7*t+p[0])
}

// Seed returns the session seed driving the field.
func (f *Field) Seed() int64 { return f.seed }

// Bodies returns the planetary masses.
func (f *Field) Bodies() []Body { return f.bodies }

// SampleShell is the proximity of p to the containment shell, in [0,1].
func (f *Field) SampleShell(p vec.Vec2) float64 {
	d := p.Dist(f.State.Center)
	sigma := math.Max(f.State.Sigma, vec.Epsilon)
	dr := d - f.State.Radius
	return math.Exp(-(dr * dr) / (2 * sigma * sigma))
}

// Containment pulls points beyond the shell back inside, draws interior
// points gently toward it, and drags them along it by the field spin.
func (f *Field) Containment(p vec.Vec2, depth, forceHint float64) Containment {
	dir, d := p.Sub(f.State.Center).Normalize()
	shell := f.SampleShell(p)
	if d < vec.Epsilon {
		return Containment{Shell: shell}
	}

	R := f.State.Radius
	var pull float64
	if d > R {
		pull = -(d - R) * 0.5
	} else {
		pull = (R - d) * shell * 0.08 * (0.5 + forceHint)
	}
	pull *= 1 + 0.25*depth

	tangent := dir.Perp().Scale(f.State.Spin * shell * R * 0.04)
	return Containment{
		Offset: dir.Scale(pull).Add(tangent),
		Shell:  shell,
	}
}

// BodyPosition is where body i sits at time t.
func (f *Field) BodyPosition(i int, t float64) vec.Vec2 {
	b := f.bodies[i]
	a := b.Speed*t + b.Phase
	r := b.Orbit * f.State.Radius
	return f.State.Center.Add(vec.Vec2{X: math.Cos(a) * r, Y: math.Sin(a) * r})
}

// PlanetaryForce samples the softened pull of all bodies at p. The result is
// unitless; callers scale it to pixels.
func (f *Field) PlanetaryForce(p vec.Vec2, t float64) Planetary {
	R := math.Max(f.State.Radius, vec.Epsilon)
	soft := 0.25 * R
	reach := 0.35 * R

	var acc vec.Vec2
	for i, b := range f.bodies {
		delta := f.BodyPosition(i, t).Sub(p)
		d2 := delta.Dot(delta) + soft*soft
		dir, _ := delta.Normalize()
		acc = acc.Add(dir.Scale(b.Mass * reach * reach / d2))
	}
	return Planetary{F: acc, Intensity: vec.Clamp01(acc.Len() / 1.5)}
}

// Wrap bends p over the curved shell: the radial distance r from the centre
// is remapped to R·sin(r/R), saturating at a quarter turn. It returns the
// wrapped point and cos of the wrap angle (1 at the centre, 0 at the rim).
func (f *Field) Wrap(p vec.Vec2) (vec.Vec2, float64) {
	R := f.State.Radius
	if R < vec.Epsilon {
		return p, 1
	}
	dir, r := p.Sub(f.State.Center).Normalize()
	if r < vec.Epsilon {
		return p, 1
	}
	theta := math.Min(r/R, math.Pi/2)
	return f.State.Center.Add(dir.Scale(R * math.Sin(theta))), math.Cos(theta)
}
