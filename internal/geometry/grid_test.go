package geometry

import (
	"testing"

	"github.com/msalah0e/lattice/internal/config"
)

func TestBuildGridScenario1024x768(t *testing.T) {
	g := BuildGrid(1024, 768, config.Default().Geometry)

	if g.Len() != 64 {
		t.Fatalf("expected 64 nodes, got %d", g.Len())
	}
	if len(g.Edges) != 112 {
		t.Fatalf("expected 112 structural edges, got %d", len(g.Edges))
	}
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if _, ok := g.Index[GridID(r, c)]; !ok {
				t.Errorf("missing node %s", GridID(r, c))
			}
		}
	}
	if g.Nodes[0].ID != "v-0-0" || g.Nodes[63].ID != "v-7-7" {
		t.Errorf("unexpected id range %s..%s", g.Nodes[0].ID, g.Nodes[63].ID)
	}

	if len(g.Core) != 16 {
		t.Fatalf("expected 16 core nodes, got %d", len(g.Core))
	}
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			want := r >= 2 && r <= 5 && c >= 2 && c <= 5
			if got := g.IsCore[g.Index[GridID(r, c)]]; got != want {
				t.Errorf("core(%d,%d) = %v, want %v", r, c, got, want)
			}
		}
	}
}

func TestBuildGridRingsAndDegree(t *testing.T) {
	g := BuildGrid(1024, 768, config.Default().Geometry)

	cases := map[string]int{"v-0-0": 3, "v-3-3": 0, "v-4-4": 0, "v-2-5": 1, "v-7-4": 3, "v-1-3": 2}
	for id, ring := range cases {
		if got := g.Nodes[g.Index[id]].RingIndex; got != ring {
			t.Errorf("ring(%s) = %d, want %d", id, got, ring)
		}
	}

	if g.MaxDegree != 4 {
		t.Errorf("expected max degree 4, got %d", g.MaxDegree)
	}
	if d := g.Degree[g.Index["v-0-0"]]; d != 2 {
		t.Errorf("corner degree = %d, want 2", d)
	}
	if n := g.DegreeNorm(g.Index["v-0-3"]); n != 0.75 {
		t.Errorf("edge node degree norm = %f, want 0.75", n)
	}
}

func TestBuildGridCentred(t *testing.T) {
	g := BuildGrid(1024, 768, config.Default().Geometry)
	c := g.Bounds.Center()
	if c.X < 511 || c.X > 513 || c.Y < 383 || c.Y > 385 {
		t.Errorf("grid not centred: %+v", c)
	}
	for i := range g.Edges {
		if g.RestLength[i] <= 0 {
			t.Fatalf("edge %d has non-positive rest length", i)
		}
	}
}

func TestCoreCorners(t *testing.T) {
	g := BuildGrid(1024, 768, config.Default().Geometry)
	corners := g.CoreCorners()
	want := [4]string{"v-2-2", "v-2-5", "v-5-5", "v-5-2"}
	for k, idx := range corners {
		if idx < 0 || g.Nodes[idx].ID != want[k] {
			t.Errorf("corner %d = %d, want %s", k, idx, want[k])
		}
	}

	empty := New(nil, nil, 1)
	if empty.CoreCorners() != [4]int{-1, -1, -1, -1} {
		t.Error("empty geometry should have no corners")
	}
}

func TestNewDropsDegenerateEdges(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b", X: 10}, {ID: "a", X: 99}}
	edges := []StructuralEdge{
		{FromNodeID: "a", ToNodeID: "b"},
		{FromNodeID: "b", ToNodeID: "a"},
		{FromNodeID: "a", ToNodeID: "a"},
		{FromNodeID: "a", ToNodeID: "ghost"},
	}
	g := New(nodes, edges, 0)
	if g.Len() != 2 {
		t.Fatalf("duplicate node id should be dropped, got %d nodes", g.Len())
	}
	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 surviving edge, got %d", len(g.Edges))
	}
	if g.Nodes[0].X != 0 {
		t.Error("first occurrence of a duplicate id should win")
	}
}

func TestRemapByID(t *testing.T) {
	cfg := config.Default().Geometry
	old := BuildGrid(1024, 768, cfg)
	values := make([]float64, old.Len())
	values[old.Index["v-3-3"]] = 0.7

	cfg.Rows, cfg.Cols = 4, 4
	small := BuildGrid(400, 300, cfg)
	got := RemapByID(old, values, small, -1)
	if len(got) != small.Len() {
		t.Fatalf("expected %d entries, got %d", small.Len(), len(got))
	}
	if got[small.Index["v-3-3"]] != 0.7 {
		t.Errorf("surviving id lost its value: %f", got[small.Index["v-3-3"]])
	}

	cfg.Rows, cfg.Cols = 9, 9
	big := BuildGrid(1024, 768, cfg)
	grown := RemapByID(old, values, big, -1)
	if grown[big.Index["v-8-8"]] != -1 {
		t.Errorf("new id should be backfilled, got %f", grown[big.Index["v-8-8"]])
	}
}
