package semantic

import (
	"math"
	"sort"

	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/vec"
)

// Edge is an ephemeral, locally computed connection near the pointer.
type Edge struct {
	From      string
	To        string
	FromIndex int
	ToIndex   int
	Weight    float64 // score at the last cycle that produced it, [0,1]
	Stability float64 // accumulated stability, clamped to [0,1]
}

// Terms are the five interpretation score inputs, each in [0,1].
type Terms struct {
	Similarity float64
	Ring       float64
	Density    float64
	Gravity    float64
	Attunement float64
}

// Score is the weighted interpretation score of a candidate pair.
func Score(w config.SemanticWeights, t Terms) float64 {
	return w.Similarity*t.Similarity +
		w.Ring*t.Ring +
		w.Density*t.Density +
		w.Gravity*t.Gravity +
		w.Attunement*t.Attunement
}

// Similarity maps cosine similarity from [-1,1] to [0,1].
func Similarity(a, b []float64) float64 {
	return (vec.Cosine(a, b) + 1) / 2
}

type pairKey struct{ a, b int }

type bucket struct {
	acc   float64
	score float64
}

// Engine recomputes the semantic overlay on a slow fixed cycle. It keeps a
// decaying stability memory so edges persist across cycles.
type Engine struct {
	cfg    config.SemanticConfig
	geom   *geometry.Geometry
	width  float64
	height float64

	attunement []float64
	stability  map[pairKey]*bucket
	edges      []Edge
	cycles     int
}

// New creates an engine over geom for a w×h viewport.
func New(cfg config.SemanticConfig, geom *geometry.Geometry, w, h float64) *Engine {
	return &Engine{
		cfg:        cfg,
		geom:       geom,
		width:      w,
		height:     h,
		attunement: make([]float64, geom.Len()),
		stability:  make(map[pairKey]*bucket),
	}
}

// SetViewport updates the size used for the candidate radius.
func (e *Engine) SetViewport(w, h float64) {
	e.width, e.height = w, h
}

// Repair moves all per-node state onto a rebuilt geometry by node id.
func (e *Engine) Repair(geom *geometry.Geometry) {
	old := e.geom
	e.attunement = geometry.RemapByID(old, e.attunement, geom, 0)

	next := make(map[pairKey]*bucket, len(e.stability))
	for k, b := range e.stability {
		ai, okA := geom.Index[old.Nodes[k.a].ID]
		bi, okB := geom.Index[old.Nodes[k.b].ID]
		if okA && okB {
			next[pairKey{ai, bi}] = b
		}
	}
	e.stability = next
	e.geom = geom
	e.edges = e.emit()
}

// Attunement returns node i's dwell memory.
func (e *Engine) Attunement(i int) float64 {
	if i < 0 || i >= len(e.attunement) {
		return 0
	}
	return e.attunement[i]
}

// AttunementSlice exposes the attunement field read-only by convention.
func (e *Engine) AttunementSlice() []float64 { return e.attunement }

// Edges returns the retained semantic edges from the last cycle.
func (e *Engine) Edges() []Edge { return e.edges }

// StableCount is the number of entries in the stability memory.
func (e *Engine) StableCount() int { return len(e.stability) }

// Cycles is how many times Cycle has run.
func (e *Engine) Cycles() int { return e.cycles }

// Density is the retained edge count relative to the cap, in [0,1].
func (e *Engine) Density() float64 {
	if e.cfg.MaxStableEdges <= 0 {
		return 0
	}
	return vec.Clamp01(float64(len(e.edges)) / float64(e.cfg.MaxStableEdges))
}

// Attune raises attunement for nodes near the pointer and decays the rest.
func (e *Engine) Attune(pointer vec.Vec2) {
	radius := e.cfg.AttuneRadius
	for i := range e.attunement {
		d := pointer.Dist(e.geom.Rest(i))
		if radius > 0 && d <= radius {
			e.attunement[i] = vec.Clamp01(e.attunement[i] + (1-d/radius)*e.cfg.AttuneGain)
		} else {
			e.attunement[i] *= e.cfg.AttuneDecay
		}
	}
}

// CandidateRadius is the pointer influence radius for candidate selection.
func (e *Engine) CandidateRadius() float64 {
	return math.Max(e.cfg.CandidateRadiusMin, e.cfg.CandidateRadiusFrac*math.Min(e.width, e.height))
}

// Terms computes the score inputs for the pair a→b.
func (e *Engine) Terms(a, b int, pointer vec.Vec2) Terms {
	na, nb := e.geom.Nodes[a], e.geom.Nodes[b]
	ring := na.RingIndex - nb.RingIndex
	if ring < 0 {
		ring = -ring
	}
	return Terms{
		Similarity: Similarity(na.Embedding, nb.Embedding),
		Ring:       1 / float64(ring+1),
		Density:    e.geom.DegreeNorm(b),
		Gravity:    1 / (pointer.Dist(e.geom.Rest(b)) + 1),
		Attunement: e.attunement[b],
	}
}

type scored struct {
	to    int
	score float64
}

// Cycle runs one full overlay recomputation and returns the retained edges.
// It reads attunement but never advances it; callers Attune once per frame.
func (e *Engine) Cycle(pointer vec.Vec2) []Edge {
	e.cycles++

	for k, b := range e.stability {
		b.acc *= e.cfg.StabilityDecay
		if b.acc < e.cfg.StabilityFloor {
			delete(e.stability, k)
		}
	}

	radius := e.CandidateRadius()
	var influence []int
	for i := 0; i < e.geom.Len(); i++ {
		if pointer.Dist(e.geom.Rest(i)) <= radius {
			influence = append(influence, i)
		}
	}

	var ranked []scored
	for _, a := range influence {
		pool := e.pool(a, influence)
		ranked = ranked[:0]
		for _, b := range pool {
			if b == a {
				continue
			}
			s := Score(e.cfg.Weights, e.Terms(a, b, pointer))
			if s > e.cfg.Threshold {
				ranked = append(ranked, scored{to: b, score: s})
			}
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].score != ranked[j].score {
				return ranked[i].score > ranked[j].score
			}
			return ranked[i].to < ranked[j].to
		})
		if len(ranked) > e.cfg.TopK {
			ranked = ranked[:e.cfg.TopK]
		}
		for _, r := range ranked {
			k := pairKey{a, r.to}
			b, ok := e.stability[k]
			if !ok {
				b = &bucket{}
				e.stability[k] = b
			}
			b.acc += r.score * e.cfg.StabilityGain
			b.score = r.score
		}
	}

	e.prune()
	e.edges = e.emit()
	return e.edges
}

// pool is a's precomputed candidate list when it has one, otherwise the
// whole influence set.
func (e *Engine) pool(a int, influence []int) []int {
	ids := e.geom.Nodes[a].SemanticCandidates
	if len(ids) == 0 {
		return influence
	}
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if j, ok := e.geom.Index[id]; ok {
			out = append(out, j)
		}
	}
	return out
}

func (e *Engine) sortedKeys() []pairKey {
	keys := make([]pairKey, 0, len(e.stability))
	for k := range e.stability {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		bi, bj := e.stability[keys[i]], e.stability[keys[j]]
		if bi.acc != bj.acc {
			return bi.acc > bj.acc
		}
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})
	return keys
}

func (e *Engine) prune() {
	keys := e.sortedKeys()
	for _, k := range keys[min(len(keys), e.cfg.MaxStableEdges):] {
		delete(e.stability, k)
	}
}

func (e *Engine) emit() []Edge {
	keys := e.sortedKeys()
	out := make([]Edge, 0, len(keys))
	for _, k := range keys {
		b := e.stability[k]
		out = append(out, Edge{
			From:      e.geom.Nodes[k.a].ID,
			To:        e.geom.Nodes[k.b].ID,
			FromIndex: k.a,
			ToIndex:   k.b,
			Weight:    vec.Clamp01(b.score),
			Stability: math.Min(1, b.acc/2),
		})
	}
	return out
}
