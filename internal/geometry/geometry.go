package geometry

import (
	"math"

	"github.com/msalah0e/lattice/internal/vec"
)

// Node is an immutable lattice vertex.
type Node struct {
	ID                 string
	X                  float64
	Y                  float64
	RingIndex          int
	IsDormant          bool
	Embedding          []float64
	SemanticCandidates []string // optional precomputed candidate ids
}

// StructuralEdge is a permanent connection between two nodes.
type StructuralEdge struct {
	FromNodeID string
	ToNodeID   string
	Weight     float64
	Stability  float64
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func (r Rect) Width() float64 { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }
func (r Rect) Center() vec.Vec2 {
	return vec.Vec2{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Geometry is the immutable node/edge set for a session plus everything
// derived from it. Index-based slices are parallel to Nodes.
type Geometry struct {
	Nodes []Node
	Edges []StructuralEdge

	Index      map[string]int
	EdgeEnds   [][2]int
	RestLength []float64
	Neighbors  [][]int
	Degree     []int
	MaxDegree  int

	// GridRow/GridCol are each node's proportional position in Bounds, in [0,1].
	GridRow []float64
	GridCol []float64
	Core    []int
	IsCore  []bool
	Bounds  Rect

	// BoundaryRadius comes from the grid-state endpoint. Nothing reads it yet.
	BoundaryRadius float64
	Procedural     bool
}

// New derives adjacency, degree, core membership and bounds. Duplicate node
// ids keep the first occurrence; edges that reference unknown nodes, self
// loops and duplicate pairs are dropped.
func New(nodes []Node, edges []StructuralEdge, coreRing int) *Geometry {
	g := &Geometry{Index: make(map[string]int, len(nodes))}
	for _, n := range nodes {
		if _, dup := g.Index[n.ID]; dup {
			continue
		}
		g.Index[n.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, n)
	}
	nodes = g.Nodes

	g.Neighbors = make([][]int, len(nodes))
	g.Degree = make([]int, len(nodes))
	seen := make(map[[2]int]bool, len(edges))
	for _, e := range edges {
		a, okA := g.Index[e.FromNodeID]
		b, okB := g.Index[e.ToNodeID]
		if !okA || !okB || a == b {
			continue
		}
		key := [2]int{min(a, b), max(a, b)}
		if seen[key] {
			continue
		}
		seen[key] = true

		g.Edges = append(g.Edges, e)
		g.EdgeEnds = append(g.EdgeEnds, [2]int{a, b})
		g.RestLength = append(g.RestLength, math.Hypot(nodes[a].X-nodes[b].X, nodes[a].Y-nodes[b].Y))
		g.Neighbors[a] = append(g.Neighbors[a], b)
		g.Neighbors[b] = append(g.Neighbors[b], a)
		g.Degree[a]++
		g.Degree[b]++
	}
	for _, d := range g.Degree {
		if d > g.MaxDegree {
			g.MaxDegree = d
		}
	}

	g.IsCore = make([]bool, len(nodes))
	for i, n := range nodes {
		if n.RingIndex <= coreRing {
			g.IsCore[i] = true
			g.Core = append(g.Core, i)
		}
	}

	g.computeBounds()
	return g
}

func (g *Geometry) computeBounds() {
	g.GridRow = make([]float64, len(g.Nodes))
	g.GridCol = make([]float64, len(g.Nodes))
	if len(g.Nodes) == 0 {
		return
	}
	b := Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, n := range g.Nodes {
		b.MinX = math.Min(b.MinX, n.X)
		b.MinY = math.Min(b.MinY, n.Y)
		b.MaxX = math.Max(b.MaxX, n.X)
		b.MaxY = math.Max(b.MaxY, n.Y)
	}
	g.Bounds = b
	for i, n := range g.Nodes {
		g.GridCol[i] = vec.Clamp01(vec.SafeDiv(n.X-b.MinX, b.Width()))
		g.GridRow[i] = vec.Clamp01(vec.SafeDiv(n.Y-b.MinY, b.Height()))
	}
}

// Len is the node count.
func (g *Geometry) Len() int { return len(g.Nodes) }

// Rest returns node i's immutable position.
func (g *Geometry) Rest(i int) vec.Vec2 {
	return vec.Vec2{X: g.Nodes[i].X, Y: g.Nodes[i].Y}
}

// DegreeNorm is degree(i)/maxDegree, 0 when the graph has no edges.
func (g *Geometry) DegreeNorm(i int) float64 {
	if g.MaxDegree == 0 {
		return 0
	}
	return float64(g.Degree[i]) / float64(g.MaxDegree)
}

// CoreCorners returns the top-left, top-right, bottom-right and bottom-left
// core nodes, or -1 entries when the core is empty.
func (g *Geometry) CoreCorners() [4]int {
	corners := [4]int{-1, -1, -1, -1}
	var best [4]float64
	for _, i := range g.Core {
		n := g.Nodes[i]
		scores := [4]float64{-(n.X + n.Y), n.X - n.Y, n.X + n.Y, n.Y - n.X}
		for k, s := range scores {
			if corners[k] < 0 || s > best[k] {
				corners[k] = i
				best[k] = s
			}
		}
	}
	return corners
}

// RemapByID carries a per-node slice from old to g by node id. Missing
// entries are backfilled with fill; entries for vanished ids are dropped.
func RemapByID[T any](old *Geometry, values []T, g *Geometry, fill T) []T {
	out := make([]T, g.Len())
	for i := range out {
		out[i] = fill
	}
	if old == nil {
		return out
	}
	for i, n := range g.Nodes {
		if j, ok := old.Index[n.ID]; ok && j < len(values) {
			out[i] = values[j]
		}
	}
	return out
}
