package fields

import (
	"math"
	"testing"

	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/vec"
)

func newTestFocus(n int) *Focus {
	fc := config.Default().Fields
	return NewFocus(n, fc.FocusSeeds, fc.FocusSeedSpacing, fc.FocusSigmaFrac, fc.FocusSigmaMin, fc.FocusCoreBonus)
}

func TestFocusBlendAsymmetric(t *testing.T) {
	f := newTestFocus(1)
	if got := f.Blend(0.2, 0.6); math.Abs(got-(0.2*0.74+0.6*0.42)) > 1e-12 {
		t.Errorf("rise blend = %f", got)
	}
	if got := f.Blend(0.6, 0.2); math.Abs(got-(0.6*0.86+0.2*0.08)) > 1e-12 {
		t.Errorf("decay blend = %f", got)
	}
	if got := f.Blend(0.9, 1); got != 1 {
		t.Errorf("blend should clamp to 1, got %f", got)
	}
}

func TestFocusSigmaFloor(t *testing.T) {
	f := newTestFocus(1)
	if got := f.Sigma(320, 240); got != 64 {
		t.Errorf("small viewport sigma = %f, want floor 64", got)
	}
	if got := f.Sigma(2000, 1000); math.Abs(got-90) > 1e-9 {
		t.Errorf("large viewport sigma = %f, want 90", got)
	}
}

func TestFocusSeedsAreSpaced(t *testing.T) {
	g := geometry.BuildGrid(1024, 768, config.Default().Geometry)
	pos := restPositions(g)
	f := newTestFocus(g.Len())
	force := make([]float64, g.Len())
	connector := make([]float64, g.Len())

	// Two hot neighbours and one distant hot node.
	force[g.Index["v-3-3"]] = 1
	force[g.Index["v-3-4"]] = 0.99
	force[g.Index["v-7-7"]] = 0.9

	f.Step(g, pos, force, connector, 1024, 768)
	seeds := f.SeedNodes()
	if len(seeds) != 2 {
		t.Fatalf("expected 2 seeds, got %d", len(seeds))
	}
	if pos[seeds[0]].Dist(pos[seeds[1]]) <= 100 {
		t.Errorf("seeds too close: %s, %s", g.Nodes[seeds[0]].ID, g.Nodes[seeds[1]].ID)
	}
	if g.Nodes[seeds[0]].ID != "v-3-3" {
		t.Errorf("hottest node should seed first, got %s", g.Nodes[seeds[0]].ID)
	}

	v := f.Values()
	if v[g.Index["v-3-3"]] <= v[g.Index["v-0-7"]] {
		t.Error("seed should be hotter than a far corner")
	}
	for i, x := range v {
		if x < 0 || x > 1 {
			t.Fatalf("focus %d out of range: %f", i, x)
		}
	}
}

func TestFocusCentroidFallback(t *testing.T) {
	f := newTestFocus(2)
	fallback := vec.Vec2{X: 3, Y: 4}
	if got := f.Centroid([]vec.Vec2{{}, {X: 10}}, fallback); got != fallback {
		t.Errorf("empty heatmap centroid = %+v, want fallback", got)
	}
	f.values[1] = 1
	if got := f.Centroid([]vec.Vec2{{}, {X: 10}}, fallback); got.X != 10 {
		t.Errorf("centroid = %+v, want x=10", got)
	}
}

func TestTopMean(t *testing.T) {
	if got := TopMean([]float64{0.1, 0.9, 0.5, 0.7, 0.3, 0.2}, 2); math.Abs(got-0.8) > 1e-12 {
		t.Errorf("top-2 mean = %f, want 0.8", got)
	}
	if got := TopMean(nil, 5); got != 0 {
		t.Errorf("empty top mean = %f", got)
	}
}
