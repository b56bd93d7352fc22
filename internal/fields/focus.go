package fields

import (
	"math"
	"sort"

	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/vec"
)

// Focus is the attention heatmap: Gaussian blobs around the most active
// nodes, rising quickly and fading slowly.
type Focus struct {
	Seeds     int
	Spacing   float64
	SigmaFrac float64
	SigmaMin  float64
	CoreBonus float64
	RiseKeep  float64
	RiseGain  float64
	DecayKeep float64
	DecayGain float64

	values   []float64
	activity []float64
	order    []int
	seeds    []int
}

// NewFocus creates an empty heatmap for n nodes.
func NewFocus(n, seeds int, spacing, sigmaFrac, sigmaMin, coreBonus float64) *Focus {
	return &Focus{
		Seeds:     seeds,
		Spacing:   spacing,
		SigmaFrac: sigmaFrac,
		SigmaMin:  sigmaMin,
		CoreBonus: coreBonus,
		RiseKeep:  0.74,
		RiseGain:  0.42,
		DecayKeep: 0.86,
		DecayGain: 0.08,
		values:    make([]float64, n),
		activity:  make([]float64, n),
		order:     make([]int, n),
	}
}

// Values is the current heatmap, one entry per node.
func (f *Focus) Values() []float64 { return f.values }

// SeedNodes are the node indices chosen as blob centres on the last step.
func (f *Focus) SeedNodes() []int { return f.seeds }

// Repair carries values onto a rebuilt geometry.
func (f *Focus) Repair(old, g *geometry.Geometry) {
	f.values = geometry.RemapByID(old, f.values, g, 0)
	f.activity = make([]float64, g.Len())
	f.order = make([]int, g.Len())
	f.seeds = f.seeds[:0]
}

// Sigma is the blob width for a w×h viewport.
func (f *Focus) Sigma(w, h float64) float64 {
	return math.Max(f.SigmaMin, f.SigmaFrac*math.Min(w, h))
}

// Blend applies the asymmetric rise/decay toward target.
func (f *Focus) Blend(prev, target float64) float64 {
	if target > prev {
		return vec.Clamp01(prev*f.RiseKeep + target*f.RiseGain)
	}
	return vec.Clamp01(prev*f.DecayKeep + target*f.DecayGain)
}

// Step picks seeds by activity and blends every node toward the seed
// Gaussians.
func (f *Focus) Step(g *geometry.Geometry, pos []vec.Vec2, force, connector []float64, w, h float64) {
	for i := range f.activity {
		a := connector[i]*0.62 + force[i]*0.3
		if g.IsCore[i] {
			a += f.CoreBonus
		}
		f.activity[i] = a
		f.order[i] = i
	}
	sort.SliceStable(f.order, func(a, b int) bool {
		return f.activity[f.order[a]] > f.activity[f.order[b]]
	})

	f.seeds = f.seeds[:0]
	for _, i := range f.order {
		if len(f.seeds) >= f.Seeds {
			break
		}
		if f.activity[i] <= 0 {
			break
		}
		tooClose := false
		for _, s := range f.seeds {
			if pos[i].Dist(pos[s]) <= f.Spacing {
				tooClose = true
				break
			}
		}
		if !tooClose {
			f.seeds = append(f.seeds, i)
		}
	}

	sigma := f.Sigma(w, h)
	den := 2 * sigma * sigma
	for i := range f.values {
		var target float64
		for _, s := range f.seeds {
			d := pos[i].Dist(pos[s])
			target = math.Max(target, math.Exp(-d*d/den))
		}
		f.values[i] = f.Blend(f.values[i], target)
	}
}

// Centroid is the focus-weighted mean position, or fallback when the
// heatmap is empty.
func (f *Focus) Centroid(pos []vec.Vec2, fallback vec.Vec2) vec.Vec2 {
	var sum vec.Vec2
	var wsum float64
	for i, v := range f.values {
		sum = sum.Add(pos[i].Scale(v))
		wsum += v
	}
	if wsum < vec.Epsilon {
		return fallback
	}
	return sum.Scale(1 / wsum)
}

// TopMean is the mean of the k largest values.
func TopMean(values []float64, k int) float64 {
	if len(values) == 0 || k <= 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	if k > len(sorted) {
		k = len(sorted)
	}
	return Mean(sorted[:k])
}
