package geometry

import (
	"fmt"
	"math"

	"github.com/msalah0e/lattice/internal/config"
)

// GridID is the id of the procedural node at row r, column c.
func GridID(r, c int) string {
	return fmt.Sprintf("v-%d-%d", r, c)
}

// BuildGrid lays out a rows×cols grid centred in a w×h viewport. Ring index is
// the Chebyshev distance to the grid centre; every node is joined to its
// right and lower neighbour.
func BuildGrid(w, h float64, cfg config.GeometryConfig) *Geometry {
	rows, cols := cfg.Rows, cfg.Cols
	span := math.Min(w, h) * cfg.GridFill
	steps := float64(max(rows, cols) - 1)
	step := span / steps
	originX := w/2 - step*float64(cols-1)/2
	originY := h/2 - step*float64(rows-1)/2
	centerR := float64(rows-1) / 2
	centerC := float64(cols-1) / 2

	nodes := make([]Node, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			ring := int(math.Max(math.Abs(float64(r)-centerR), math.Abs(float64(c)-centerC)))
			nodes = append(nodes, Node{
				ID:        GridID(r, c),
				X:         originX + float64(c)*step,
				Y:         originY + float64(r)*step,
				RingIndex: ring,
				Embedding: gridEmbedding(r, c, rows, cols, cfg.EmbeddingDims),
			})
		}
	}

	edges := make([]StructuralEdge, 0, rows*(cols-1)+cols*(rows-1))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c+1 < cols {
				edges = append(edges, StructuralEdge{
					FromNodeID: GridID(r, c),
					ToNodeID:   GridID(r, c+1),
					Weight:     cfg.EdgeWeight,
					Stability:  cfg.EdgeStability,
				})
			}
			if r+1 < rows {
				edges = append(edges, StructuralEdge{
					FromNodeID: GridID(r, c),
					ToNodeID:   GridID(r+1, c),
					Weight:     cfg.EdgeWeight,
					Stability:  cfg.EdgeStability,
				})
			}
		}
	}

	g := New(nodes, edges, cfg.CoreRing)
	g.Procedural = true
	return g
}

// gridEmbedding is a smooth function of grid position, so neighbouring
// nodes score as semantically similar.
func gridEmbedding(r, c, rows, cols, dims int) []float64 {
	u := float64(c) / float64(max(cols-1, 1))
	v := float64(r) / float64(max(rows-1, 1))
	out := make([]float64, dims)
	for k := 0; k < dims; k++ {
		fk := float64(k + 1)
		out[k] = math.Sin(fk*u*1.7+float64(k)*0.9) + math.Cos(fk*v*1.3-float64(k)*0.4)
	}
	return out
}
