package fields

import (
	"testing"

	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/geometry"
)

func TestConnectorDecaysWithoutSignal(t *testing.T) {
	g := geometry.BuildGrid(1024, 768, config.Default().Geometry)
	c := NewConnector(g.Len(), 0.9, 0.11, 0.025)
	for i := range c.values {
		c.values[i] = 0.5
	}
	strain := make([]float64, len(g.Edges))
	force := make([]float64, g.Len())

	c.Step(g, strain, force)
	for i, v := range c.Values() {
		if v != 0.45 {
			t.Fatalf("node %d = %f, want 0.45 after pure decay", i, v)
		}
	}
}

func TestConnectorInjectsAndClamps(t *testing.T) {
	g := geometry.BuildGrid(1024, 768, config.Default().Geometry)
	c := NewConnector(g.Len(), 0.9, 0.11, 0.025)
	strain := make([]float64, len(g.Edges))
	for e := range strain {
		strain[e] = 1
	}
	force := make([]float64, g.Len())
	for i := range force {
		force[i] = 1
	}

	for step := 0; step < 200; step++ {
		c.Step(g, strain, force)
	}
	for i, v := range c.Values() {
		if v < 0 || v > 1 {
			t.Fatalf("node %d out of range: %f", i, v)
		}
	}
	centre := c.Values()[g.Index["v-3-3"]]
	if centre != 1 {
		t.Errorf("fully strained interior node should saturate, got %f", centre)
	}
}

func TestConnectorSpreadsToNeighbours(t *testing.T) {
	g := geometry.BuildGrid(1024, 768, config.Default().Geometry)
	c := NewConnector(g.Len(), 0.9, 0.11, 0.025)
	strain := make([]float64, len(g.Edges))
	force := make([]float64, g.Len())

	// Strain only the edge between v-0-0 and v-0-1.
	for e, ends := range g.EdgeEnds {
		if g.Nodes[ends[0]].ID == "v-0-0" && g.Nodes[ends[1]].ID == "v-0-1" {
			strain[e] = 1
		}
	}
	c.Step(g, strain, force)

	v := c.Values()
	if v[g.Index["v-0-0"]] <= v[g.Index["v-1-0"]] {
		t.Error("endpoint should receive more than a neighbour")
	}
	if v[g.Index["v-1-0"]] == 0 {
		t.Error("neighbour of an endpoint should receive some signal")
	}
	if v[g.Index["v-5-5"]] != 0 {
		t.Error("distant node should be untouched")
	}
}
