package viewer

import (
	"strings"
	"testing"
)

func TestCanvasLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.Line(0, 0, 9, 4, '·', LayerEdge)
	for _, p := range [][2]int{{0, 0}, {9, 4}} {
		if r, _ := c.At(p[0], p[1]); r != '·' {
			t.Errorf("endpoint %v not drawn", p)
		}
	}

	c.Clear()
	c.Line(2, 1, 7, 1, '-', LayerEdge)
	n := 0
	for x := 0; x < c.W; x++ {
		if r, _ := c.At(x, 1); r == '-' {
			n++
		}
	}
	if n != 6 {
		t.Errorf("horizontal line covered %d cells, want 6", n)
	}
}

func TestCanvasLayersAndBounds(t *testing.T) {
	c := NewCanvas(4, 4)
	c.Set(1, 1, 'o', LayerNode)
	c.Set(1, 1, '·', LayerEdge)
	if r, l := c.At(1, 1); r != 'o' || l != LayerNode {
		t.Errorf("lower layer overwrote a node: %q %v", r, l)
	}
	c.Set(1, 1, '◈', LayerVessel)
	if r, _ := c.At(1, 1); r != '◈' {
		t.Error("higher layer should overwrite")
	}

	c.Set(-1, 0, 'x', LayerText)
	c.Set(4, 4, 'x', LayerText)
	c.Line(-10, -10, 20, 20, 'x', LayerEdge)
	if r, _ := c.At(-1, 0); r != ' ' {
		t.Error("out of bounds read should be blank")
	}
}

func TestCanvasRender(t *testing.T) {
	c := NewCanvas(6, 3)
	c.Text(0, 0, "abc")
	out := c.Render()
	if lines := strings.Split(out, "\n"); len(lines) != 3 {
		t.Fatalf("rendered %d lines, want 3", len(lines))
	}
	if !strings.Contains(out, "abc") {
		t.Errorf("text missing from %q", out)
	}
}
