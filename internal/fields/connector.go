package fields

import (
	"math"

	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/vec"
)

// Connector is a diffusion-like signal pushed outward from strained or
// imbalanced structural edges.
type Connector struct {
	Decay    float64
	Self     float64
	Neighbor float64

	values []float64
	nw     []float64
	wsum   []float64
}

// NewConnector creates an empty field for n nodes.
func NewConnector(n int, decay, self, neighbor float64) *Connector {
	return &Connector{
		Decay:    decay,
		Self:     self,
		Neighbor: neighbor,
		values:   make([]float64, n),
		nw:       make([]float64, n),
		wsum:     make([]float64, n),
	}
}

// Values is the current field, one entry per node.
func (c *Connector) Values() []float64 { return c.values }

// Repair carries values onto a rebuilt geometry.
func (c *Connector) Repair(old, g *geometry.Geometry) {
	c.values = geometry.RemapByID(old, c.values, g, 0)
	c.nw = make([]float64, g.Len())
	c.wsum = make([]float64, g.Len())
}

// Step decays the field and injects each edge's signal into both endpoints
// and their immediate neighbours.
func (c *Connector) Step(g *geometry.Geometry, strain, force []float64) {
	for i := range c.values {
		c.values[i] *= c.Decay
		c.nw[i] = 0
		c.wsum[i] = 0
	}

	// Neighbourhood weight: edge-weighted mean force of a node's neighbours.
	for e, ends := range g.EdgeEnds {
		a, b := ends[0], ends[1]
		w := math.Max(g.Edges[e].Weight, 0)
		c.nw[a] += w * force[b]
		c.nw[b] += w * force[a]
		c.wsum[a] += w
		c.wsum[b] += w
	}
	for i := range c.nw {
		c.nw[i] = vec.SafeDiv(c.nw[i], c.wsum[i])
	}

	for e, ends := range g.EdgeEnds {
		a, b := ends[0], ends[1]
		imbalance := math.Abs(c.nw[a] - c.nw[b])
		meanForce := (force[a] + force[b]) / 2
		signal := vec.Clamp01(0.5*strain[e] + 0.3*imbalance + 0.2*meanForce)

		c.values[a] += signal * c.Self
		c.values[b] += signal * c.Self
		for _, n := range g.Neighbors[a] {
			c.values[n] += signal * c.Neighbor
		}
		for _, n := range g.Neighbors[b] {
			c.values[n] += signal * c.Neighbor
		}
	}

	for i := range c.values {
		c.values[i] = vec.Clamp01(c.values[i])
	}
}
