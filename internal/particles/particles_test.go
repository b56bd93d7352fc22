package particles

import (
	"math"
	"testing"

	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/fields"
	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/projector"
	"github.com/msalah0e/lattice/internal/sphere"
	"github.com/msalah0e/lattice/internal/vec"
)

func restProjection(g *geometry.Geometry) []projector.Projected {
	out := make([]projector.Projected, g.Len())
	for i, n := range g.Nodes {
		out[i] = projector.Projected{X: n.X, Y: n.Y, Scale: 1}
	}
	return out
}

func TestCoreBoxFromGrid(t *testing.T) {
	g := geometry.BuildGrid(1024, 768, config.Default().Geometry)
	out := restProjection(g)
	b := CoreBox(g, out, 0.12)
	if !b.Valid {
		t.Fatal("grid core box should be valid")
	}

	tl := g.Rest(g.Index["v-2-2"])
	br := g.Rest(g.Index["v-5-5"])
	inset := br.Sub(tl).Scale(0.12)
	if math.Abs(b.Min.X-(tl.X+inset.X)) > 1e-9 || math.Abs(b.Max.Y-(br.Y-inset.Y)) > 1e-9 {
		t.Errorf("box = %+v, want corners %v..%v shrunk by %v", b, tl, br, inset)
	}
	if c := b.Center(); c.Dist(tl.Lerp(br, 0.5)) > 1e-9 {
		t.Errorf("box centre %v off the core centre", c)
	}
}

func TestCoreBoxInvalidWithoutCore(t *testing.T) {
	g := geometry.New([]geometry.Node{{ID: "far", X: 1, Y: 1, RingIndex: 9}}, nil, 1)
	if b := CoreBox(g, restProjection(g), 0.12); b.Valid {
		t.Error("geometry without core nodes should give an invalid box")
	}
}

func TestStepWithoutBoxIsNoop(t *testing.T) {
	s := New(config.Default().Particles, 1)
	s.Step(&Input{DT: 0.016})
	if s.Placed() {
		t.Error("swarms should not be placed without a valid box")
	}
}

func TestShadowMirrorsPrimary(t *testing.T) {
	s := New(config.Default().Particles, 1)
	b := Box{Min: vec.Vec2{X: 0, Y: 0}, Max: vec.Vec2{X: 200, Y: 100}, Valid: true}
	s.place(b)
	c := b.Center()
	for i := range s.Primary {
		mid := s.Primary[i].Pos.Lerp(s.Shadow[i].Pos, 0.5)
		if mid.Dist(c) > 1e-9 {
			t.Fatalf("pair %d not mirrored about the centre: %v", i, mid)
		}
	}
}

func TestPairForceOpposite(t *testing.T) {
	s := New(config.Default().Particles, 1)
	a := vec.Vec2{X: 10, Y: 10}
	b := vec.Vec2{X: 60, Y: 10}
	f := s.pairForce(a, b)
	if f.X <= 0 {
		t.Errorf("stretched pair should pull together, got %v", f)
	}
	if f.Y == 0 {
		t.Error("pair force should carry a swirl component")
	}
}

func TestSwarmsStayConfined(t *testing.T) {
	cfg := config.Default()
	g := geometry.BuildGrid(1024, 768, cfg.Geometry)
	out := restProjection(g)
	box := CoreBox(g, out, cfg.Particles.BoxMargin)
	field := sphere.New(1024, 768, 3)
	core := fields.NewCoreWeights(g.Core, 3, 1, 1)
	s := New(cfg.Particles, 3)

	for step := 0; step < 1200; step++ {
		tt := float64(step) / 60
		field.Update(tt)
		core.Step(tt)
		s.Step(&Input{
			T:     tt,
			DT:    1.0 / 60,
			Box:   box,
			Focus: vec.Vec2{X: 2000, Y: -500},
			Field: field,
			Nodes: out,
			Core:  core.Active(),
		})
		for _, sw := range [][]Particle{s.Primary, s.Shadow} {
			for i, p := range sw {
				if !box.Contains(p.Pos) {
					t.Fatalf("step %d particle %d escaped: %v", step, i, p.Pos)
				}
				if p.Vel.Len() > cfg.Particles.MaxSpeed+1e-9 {
					t.Fatalf("step %d particle %d too fast: %f", step, i, p.Vel.Len())
				}
			}
		}
	}
	if len(s.Primary) != cfg.Particles.Count || len(s.Shadow) != cfg.Particles.Count {
		t.Errorf("swarm sizes %d/%d", len(s.Primary), len(s.Shadow))
	}
}

func TestCoreForceCapped(t *testing.T) {
	cfg := config.Default().Particles
	s := New(cfg, 1)
	nodes := []projector.Projected{{X: 100, Y: 100}, {X: 102, Y: 100}, {X: 100, Y: 103}}
	var core []fields.CoreWeight
	for i := range nodes {
		core = append(core, fields.CoreWeight{Node: i, Mode: fields.TurbulenceKick, Dir: vec.Vec2{X: 1}})
	}
	f := s.coreForce(&Input{Nodes: nodes, Core: core}, vec.Vec2{X: 101, Y: 101}, 1)
	if l := f.Len(); l > cfg.CoreForceCap+1e-9 || l < cfg.CoreForceCap-1e-6 {
		t.Errorf("core force %f should be capped at %f", l, cfg.CoreForceCap)
	}
}

func TestCoreForceScalesWithIcon(t *testing.T) {
	cfg := config.Default().Particles
	s := New(cfg, 1)
	nodes := []projector.Projected{{X: 100, Y: 100}}
	core := []fields.CoreWeight{{Node: 0, Mode: fields.TurbulenceKick, Dir: vec.Vec2{X: 1}}}
	pos := vec.Vec2{X: 140, Y: 100}

	quiet := s.coreForce(&Input{Nodes: nodes, Core: core}, pos, 1)
	driven := s.coreForce(&Input{Nodes: nodes, Core: core, Icon: 1}, pos, 1)
	if quiet.Len() <= 0 || driven.Len() >= cfg.CoreForceCap {
		t.Fatalf("setup out of range: quiet %f driven %f", quiet.Len(), driven.Len())
	}
	if math.Abs(driven.Len()-2*quiet.Len()) > 1e-9 {
		t.Errorf("full icon drive should double the core force: %f vs %f", driven.Len(), quiet.Len())
	}
}

func TestStitchAndHushChangeMotion(t *testing.T) {
	cfg := config.Default()
	g := geometry.BuildGrid(1024, 768, cfg.Geometry)
	box := CoreBox(g, restProjection(g), cfg.Particles.BoxMargin)

	run := func(mutate func(*Input)) []Particle {
		s := New(cfg.Particles, 9)
		for step := 0; step < 30; step++ {
			in := &Input{T: float64(step) / 60, DT: 1.0 / 60, Box: box, Focus: box.Center()}
			mutate(in)
			s.Step(in)
		}
		return append([]Particle(nil), s.Primary...)
	}
	moved := func(a, b []Particle) float64 {
		var sum float64
		for i := range a {
			sum += a[i].Pos.Dist(b[i].Pos)
		}
		return sum
	}

	base := run(func(*Input) {})
	if again := run(func(*Input) {}); moved(base, again) != 0 {
		t.Fatal("same seed and input should replay exactly")
	}
	if d := moved(base, run(func(in *Input) { in.Stitch = 1 })); d == 0 {
		t.Error("stitch should change partner motion")
	}
	if d := moved(base, run(func(in *Input) { in.Hush = 1 })); d == 0 {
		t.Error("hush should quiet the wander")
	}
}
