package vec

import (
	"math"
	"testing"
)

func TestNormalizeZero(t *testing.T) {
	u, l := Vec2{}.Normalize()
	if u != (Vec2{}) || l != 0 {
		t.Fatalf("expected zero normalize, got %+v len=%f", u, l)
	}
	u, l = Vec2{3, 4}.Normalize()
	if math.Abs(l-5) > 1e-12 || math.Abs(u.Len()-1) > 1e-12 {
		t.Fatalf("unexpected normalize result %+v len=%f", u, l)
	}
}

func TestSmoothstep(t *testing.T) {
	if Smoothstep(0, 1, -1) != 0 || Smoothstep(0, 1, 2) != 1 {
		t.Fatal("smoothstep should saturate outside its edges")
	}
	if got := Smoothstep(0, 1, 0.5); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected 0.5 at midpoint, got %f", got)
	}
	if Smoothstep(1, 1, 0.5) != 0 {
		t.Error("degenerate edges should not divide by zero")
	}
}

func TestHashUnitDeterministic(t *testing.T) {
	a := HashUnit("v-3-4", 42)
	b := HashUnit("v-3-4", 42)
	c := HashUnit("v-3-4", 43)
	if a != b {
		t.Fatalf("hash not stable: %f vs %f", a, b)
	}
	if a == c {
		t.Errorf("different seeds should give different values")
	}
	if a < 0 || a >= 1 {
		t.Errorf("hash out of range: %f", a)
	}
}

func TestCosine(t *testing.T) {
	if got := Cosine([]float64{1, 2, 3}, []float64{1, 2, 3}); math.Abs(got-1) > 1e-12 {
		t.Errorf("self cosine = %f, want 1", got)
	}
	if got := Cosine([]float64{1, 0}, []float64{0, 1}); got != 0 {
		t.Errorf("orthogonal cosine = %f, want 0", got)
	}
	if got := Cosine(nil, []float64{1}); got != 0 {
		t.Errorf("empty cosine = %f, want 0", got)
	}
}

func TestClamp01NaN(t *testing.T) {
	if Clamp01(math.NaN()) != 0 {
		t.Error("NaN should clamp to 0")
	}
}
