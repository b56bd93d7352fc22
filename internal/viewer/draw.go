package viewer

import (
	"github.com/msalah0e/lattice/internal/sim"
)

const (
	hotForce  = 0.6
	iconGlyph = 0.35
)

// draw renders one snapshot, back to front: structural edges, semantic
// edges, particles, nodes, then the vessel. A silence window drops the
// semantic overlay and hot nodes and dims the swarms.
func draw(c *Canvas, s *sim.Snapshot, cellW, cellH float64) {
	c.Clear()
	if cellW <= 0 || cellH <= 0 {
		return
	}
	cell := func(x, y float64) (int, int) {
		return int(x / cellW), int(y / cellH)
	}

	hushed := s.Hush > 0
	g := s.Geometry
	if len(s.Nodes) == g.Len() {
		for e, ends := range g.EdgeEnds {
			a, b := s.Nodes[ends[0]], s.Nodes[ends[1]]
			x0, y0 := cell(a.X, a.Y)
			x1, y1 := cell(b.X, b.Y)
			layer := LayerEdge
			if e < len(s.Strain) && s.Strain[e] > 0.5 {
				layer = LayerStrained
			}
			c.Line(x0, y0, x1, y1, '·', layer)
		}
		for _, e := range s.Semantic {
			if hushed {
				break
			}
			if e.FromIndex >= len(s.Nodes) || e.ToIndex >= len(s.Nodes) {
				continue
			}
			a, b := s.Nodes[e.FromIndex], s.Nodes[e.ToIndex]
			x0, y0 := cell(a.X, a.Y)
			x1, y1 := cell(b.X, b.Y)
			c.Line(x0, y0, x1, y1, '∙', LayerSemantic)
		}
	}

	for _, p := range s.Shadow {
		x, y := cell(p.Pos.X, p.Pos.Y)
		c.Set(x, y, '+', LayerShadow)
	}
	for _, p := range s.Primary {
		x, y := cell(p.Pos.X, p.Pos.Y)
		if hushed {
			c.Set(x, y, '.', LayerShadow)
			continue
		}
		c.Set(x, y, '*', LayerParticle)
	}

	for i, n := range s.Nodes {
		x, y := cell(n.X, n.Y)
		switch {
		case i < g.Len() && g.IsCore[i]:
			glyph := '◇'
			if s.Icon >= iconGlyph {
				glyph = '◆'
			}
			c.Set(x, y, glyph, LayerCore)
		case n.Force >= hotForce && !hushed:
			c.Set(x, y, '●', LayerHot)
		default:
			c.Set(x, y, 'o', LayerNode)
		}
	}

	x, y := cell(s.Vessel.X, s.Vessel.Y)
	c.Set(x, y, '◈', LayerVessel)
}
