package fields

import (
	"math"

	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/vec"
)

// EdgeStrain is min(1, gain·|current−rest|/rest). Zero rest length yields 0.
func EdgeStrain(rest, current, gain float64) float64 {
	if rest < vec.Epsilon {
		return 0
	}
	return math.Min(1, gain*math.Abs(current-rest)/rest)
}

// Strain fills out (resized as needed) with the strain of every structural edge.
func Strain(g *geometry.Geometry, pos []vec.Vec2, gain float64, out []float64) []float64 {
	if cap(out) < len(g.Edges) {
		out = make([]float64, len(g.Edges))
	}
	out = out[:len(g.Edges)]
	for e, ends := range g.EdgeEnds {
		out[e] = EdgeStrain(g.RestLength[e], pos[ends[0]].Dist(pos[ends[1]]), gain)
	}
	return out
}

// Mean averages a slice, 0 when empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
