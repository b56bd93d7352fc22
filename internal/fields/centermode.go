package fields

import (
	"math/rand"

	"github.com/msalah0e/lattice/internal/vec"
)

// ModeKind is one of the two alternating centre mode phases.
type ModeKind int

const (
	ModeMemory ModeKind = iota
	ModeAttractor
)

func (k ModeKind) String() string {
	if k == ModeAttractor {
		return "attractor"
	}
	return "memory"
}

// ModeWeights shape how strongly each phase folds, expands, stitches and
// drives glyphs.
type ModeWeights struct {
	Fold   float64
	Expand float64
	Stitch float64
	Glyph  float64
}

var modeWeights = map[ModeKind]ModeWeights{
	ModeMemory:    {Fold: 0.10, Expand: 0.02, Stitch: 0.60, Glyph: 0.30},
	ModeAttractor: {Fold: 0.03, Expand: 0.09, Stitch: 0.25, Glyph: 0.70},
}

// CenterMode alternates memory and attractor phases of random 8–12 s length.
type CenterMode struct {
	Kind     ModeKind
	Duration float64
	Elapsed  float64
	Cycles   int

	minS float64
	maxS float64
	rng  *rand.Rand
}

// NewCenterMode starts in the memory phase.
func NewCenterMode(seed int64, minS, maxS float64) *CenterMode {
	c := &CenterMode{
		Kind: ModeMemory,
		minS: minS,
		maxS: maxS,
		rng:  rand.New(rand.NewSource(seed ^ 0x5eed)),
	}
	c.Duration = c.nextDuration()
	return c
}

func (c *CenterMode) nextDuration() float64 {
	return c.minS + c.rng.Float64()*(c.maxS-c.minS)
}

// Step advances the phase clock, switching phase when it runs out.
func (c *CenterMode) Step(dt float64) {
	c.Elapsed += dt
	for c.Duration > 0 && c.Elapsed >= c.Duration {
		c.Elapsed -= c.Duration
		if c.Kind == ModeMemory {
			c.Kind = ModeAttractor
		} else {
			c.Kind = ModeMemory
		}
		c.Cycles++
		c.Duration = c.nextDuration()
	}
}

// Progress is the fraction of the current phase elapsed.
func (c *CenterMode) Progress() float64 {
	return vec.Clamp01(vec.SafeDiv(c.Elapsed, c.Duration))
}

// Remaining is the time left in the current phase.
func (c *CenterMode) Remaining() float64 {
	return c.Duration - c.Elapsed
}

// Envelope eases in over the first quarter of a phase and out over the last.
func (c *CenterMode) Envelope() float64 {
	p := c.Progress()
	return vec.Smoothstep(0, 0.25, p) * (1 - vec.Smoothstep(0.75, 1, p))
}

// Weights are the current phase's weights.
func (c *CenterMode) Weights() ModeWeights {
	return modeWeights[c.Kind]
}
