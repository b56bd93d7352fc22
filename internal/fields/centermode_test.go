package fields

import "testing"

func TestCenterModeAlternates(t *testing.T) {
	c := NewCenterMode(7, 8, 12)
	if c.Kind != ModeMemory {
		t.Fatalf("should start in memory, got %v", c.Kind)
	}

	kinds := []ModeKind{c.Kind}
	for i := 0; i < 60*60; i++ {
		if c.Duration < 8 || c.Duration > 12 {
			t.Fatalf("phase duration out of range: %f", c.Duration)
		}
		before := c.Kind
		c.Step(1.0 / 60)
		if c.Kind != before {
			kinds = append(kinds, c.Kind)
		}
	}
	if len(kinds) < 5 || len(kinds) > 9 {
		t.Fatalf("60s should see 5 to 8 switches, got %d phases", len(kinds))
	}
	for i := 1; i < len(kinds); i++ {
		if kinds[i] == kinds[i-1] {
			t.Fatal("phases should alternate")
		}
	}
}

func TestCenterModeEnvelope(t *testing.T) {
	c := NewCenterMode(1, 10, 10)
	if c.Envelope() != 0 {
		t.Errorf("envelope at phase start = %f, want 0", c.Envelope())
	}
	c.Step(5)
	if c.Envelope() != 1 {
		t.Errorf("envelope mid-phase = %f, want 1", c.Envelope())
	}
	c.Step(4.9)
	if e := c.Envelope(); e <= 0 || e >= 0.2 {
		t.Errorf("envelope near phase end = %f", e)
	}
}

func TestCenterModeWeights(t *testing.T) {
	c := NewCenterMode(1, 8, 12)
	if w := c.Weights(); w.Stitch != 0.60 || w.Glyph != 0.30 {
		t.Errorf("memory weights = %+v", w)
	}
	c.Step(c.Duration)
	if w := c.Weights(); c.Kind != ModeAttractor || w.Glyph != 0.70 {
		t.Errorf("attractor weights = %+v", w)
	}
}

func TestCoreWeightsCadence(t *testing.T) {
	core := make([]int, 20)
	for i := range core {
		core[i] = i
	}
	c := NewCoreWeights(core, 3, 1, 1)
	if c.N != MaxCoreNodes {
		t.Fatalf("core table should cap at %d, got %d", MaxCoreNodes, c.N)
	}
	if !c.Step(0) {
		t.Fatal("first step should assign")
	}
	if c.Next < 1 || c.Next > 2 {
		t.Fatalf("next reassignment at %f, want within [1,2]", c.Next)
	}
	if c.Step(0.5) {
		t.Error("should not reassign before the deadline")
	}
	for _, w := range c.Active() {
		if l := w.Dir.Len(); l < 0.999 || l > 1.001 {
			t.Errorf("direction not unit: %f", l)
		}
		if w.Mode.String() == "unknown" {
			t.Errorf("invalid mode %d", w.Mode)
		}
	}
	if !c.Step(c.Next) {
		t.Error("should reassign at the deadline")
	}
}

func TestCoreWeightsReset(t *testing.T) {
	c := NewCoreWeights([]int{4, 5}, 3, 1, 1)
	c.Step(0)
	c.Reset([]int{9})
	if c.N != 1 || c.Active()[0].Node != 9 || c.Next != 0 {
		t.Errorf("reset table = %+v", c.Active())
	}
}
