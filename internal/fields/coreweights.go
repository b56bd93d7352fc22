package fields

import (
	"math"
	"math/rand"

	"github.com/msalah0e/lattice/internal/vec"
)

// MaxCoreNodes bounds the core interaction table.
const MaxCoreNodes = 16

// InteractionMode is how a core node pushes the decorative particles.
type InteractionMode int

const (
	AttractPrimary InteractionMode = iota
	AttractShadow
	ShearOrbit
	TurbulenceKick
	interactionModes
)

var interactionNames = [...]string{"attract_primary", "attract_shadow", "shear_orbit", "turbulence_kick"}

func (m InteractionMode) String() string {
	if m < 0 || m >= interactionModes {
		return "unknown"
	}
	return interactionNames[m]
}

// CoreWeight is one core node's current interaction assignment.
type CoreWeight struct {
	Node int
	Mode InteractionMode
	Dir  vec.Vec2
}

// CoreWeights reassigns every core node a random mode and direction every
// one to two seconds.
type CoreWeights struct {
	Weights [MaxCoreNodes]CoreWeight
	N       int
	Next    float64

	minS float64
	jitS float64
	rng  *rand.Rand
}

// NewCoreWeights creates a table for the given core nodes. Only the first
// MaxCoreNodes are used.
func NewCoreWeights(core []int, seed int64, minS, jitS float64) *CoreWeights {
	c := &CoreWeights{
		minS: minS,
		jitS: jitS,
		rng:  rand.New(rand.NewSource(seed ^ 0xc07e)),
	}
	c.Reset(core)
	return c
}

// Reset rebinds the table to a new core set and forces reassignment on the
// next step.
func (c *CoreWeights) Reset(core []int) {
	c.N = min(len(core), MaxCoreNodes)
	for i := 0; i < c.N; i++ {
		c.Weights[i] = CoreWeight{Node: core[i]}
	}
	c.Next = 0
}

// Active returns the assigned weights.
func (c *CoreWeights) Active() []CoreWeight {
	return c.Weights[:c.N]
}

// Step reassigns modes when t has reached the next deadline and reports
// whether it did.
func (c *CoreWeights) Step(t float64) bool {
	if t < c.Next {
		return false
	}
	for i := 0; i < c.N; i++ {
		a := c.rng.Float64() * 2 * math.Pi
		c.Weights[i].Mode = InteractionMode(c.rng.Intn(int(interactionModes)))
		c.Weights[i].Dir = vec.Vec2{X: math.Cos(a), Y: math.Sin(a)}
	}
	c.Next = t + c.minS + c.rng.Float64()*c.jitS
	return true
}
