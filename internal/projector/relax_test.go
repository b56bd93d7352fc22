package projector

import (
	"testing"

	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/geometry"
)

func lineGeometry() *geometry.Geometry {
	nodes := []geometry.Node{
		{ID: "a", X: 0, Y: 0, RingIndex: 2},
		{ID: "b", X: 10, Y: 0, RingIndex: 2},
		{ID: "c", X: 20, Y: 0, RingIndex: 2},
		{ID: "lonely", X: 50, Y: 50, RingIndex: 2},
	}
	edges := []geometry.StructuralEdge{
		{FromNodeID: "a", ToNodeID: "b", Weight: 1, Stability: 1},
		{FromNodeID: "b", ToNodeID: "c", Weight: 1, Stability: 1},
	}
	return geometry.New(nodes, edges, 1)
}

func TestRelaxPullsTowardNeighbours(t *testing.T) {
	g := lineGeometry()
	r := NewRelaxer(config.Default().Relax)
	out := []Projected{{X: 0}, {X: 10, Y: 10}, {X: 20}, {X: 50, Y: 50}}

	r.Relax(g, out)
	if out[1].Y >= 10 || out[1].Y <= 0 {
		t.Errorf("middle node should move toward the line, y = %f", out[1].Y)
	}
	if out[3].X != 50 || out[3].Y != 50 {
		t.Errorf("node without neighbours should not move: %+v", out[3])
	}
	// Endpoints read the pre-pass middle position.
	if out[0].Y <= 0 {
		t.Errorf("endpoint should move toward the raised middle, y = %f", out[0].Y)
	}
}

func TestRelaxRate(t *testing.T) {
	r := NewRelaxer(config.Default().Relax)
	outer := r.Rate(false, 0)
	if outer != 0.18 {
		t.Errorf("outer rate = %f, want 0.18", outer)
	}
	if core := r.Rate(true, 0); core >= outer {
		t.Errorf("core rate %f should be below outer rate %f", core, outer)
	}
	if hot := r.Rate(false, 1); hot >= outer {
		t.Errorf("high force rate %f should be below idle rate %f", hot, outer)
	}
}
