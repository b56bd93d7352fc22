package vec

import (
	"hash/fnv"
	"math"
	"strconv"
)

// Epsilon is the smallest magnitude we are willing to divide by.
const Epsilon = 1e-6

// Vec2 is a point or displacement in viewport pixels.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }
func (v Vec2) Dist(o Vec2) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Normalize returns the unit vector and the original length.
// Vectors shorter than Epsilon normalize to zero.
func (v Vec2) Normalize() (Vec2, float64) {
	l := v.Len()
	if l < Epsilon {
		return Vec2{}, l
	}
	return Vec2{v.X / l, v.Y / l}, l
}

// CapLen limits the vector magnitude to max.
func (v Vec2) CapLen(max float64) Vec2 {
	l := v.Len()
	if l <= max || l < Epsilon {
		return v
	}
	return v.Scale(max / l)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 clamps to [0,1] and maps NaN to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return Clamp(v, 0, 1)
}

func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Smoothstep is the cubic Hermite ramp between edge0 and edge1.
func Smoothstep(edge0, edge1, x float64) float64 {
	d := edge1 - edge0
	if math.Abs(d) < Epsilon {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp01((x - edge0) / d)
	return t * t * (3 - 2*t)
}

// SafeDiv returns a/b, or 0 when |b| is below Epsilon.
func SafeDiv(a, b float64) float64 {
	if math.Abs(b) < Epsilon {
		return 0
	}
	return a / b
}

// HashUnit maps (key, seed) to a stable pseudo-random value in [0,1).
func HashUnit(key string, seed int64) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(strconv.FormatInt(seed, 10)))
	return float64(h.Sum64()>>11) / float64(1<<53)
}

// HashSigned maps (key, seed) to a stable pseudo-random value in [-1,1).
func HashSigned(key string, seed int64) float64 {
	return HashUnit(key, seed)*2 - 1
}

// Cosine returns the cosine similarity of a and b over their shared prefix.
// Zero-magnitude inputs yield 0.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	den := math.Sqrt(na * nb)
	if den < Epsilon {
		return 0
	}
	return Clamp(dot/den, -1, 1)
}
