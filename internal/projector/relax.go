package projector

import (
	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/vec"
)

// Relaxer runs one Laplacian smoothing iteration over the structural
// adjacency. Core nodes and high-force nodes relax less.
type Relaxer struct {
	cfg  config.RelaxConfig
	snap []vec.Vec2
}

// NewRelaxer creates a relaxation pass.
func NewRelaxer(cfg config.RelaxConfig) *Relaxer {
	return &Relaxer{cfg: cfg}
}

// Rate is the blend toward the neighbour average for a node.
func (r *Relaxer) Rate(core bool, force float64) float64 {
	rate := r.cfg.Rate
	if core {
		rate *= r.cfg.CoreFactor
	}
	return vec.Clamp01(rate * (1 - r.cfg.ForceResist*vec.Clamp01(force)))
}

// Relax pulls every node with neighbours toward their mean position, in
// place. All averages read the positions from before the pass.
func (r *Relaxer) Relax(g *geometry.Geometry, out []Projected) {
	if cap(r.snap) < len(out) {
		r.snap = make([]vec.Vec2, len(out))
	}
	r.snap = r.snap[:len(out)]
	for i := range out {
		r.snap[i] = out[i].Pos()
	}

	for i := range out {
		nbrs := g.Neighbors[i]
		if len(nbrs) == 0 {
			continue
		}
		var sum vec.Vec2
		for _, n := range nbrs {
			sum = sum.Add(r.snap[n])
		}
		avg := sum.Scale(1 / float64(len(nbrs)))
		p := r.snap[i].Lerp(avg, r.Rate(g.IsCore[i], out[i].Force))
		out[i].X, out[i].Y = p.X, p.Y
	}
}
