package viewer

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Layer picks the style of a canvas cell. Higher layers overwrite lower
// ones.
type Layer uint8

const (
	LayerEmpty Layer = iota
	LayerEdge
	LayerStrained
	LayerSemantic
	LayerShadow
	LayerParticle
	LayerNode
	LayerHot
	LayerCore
	LayerVessel
	LayerText
)

var layerStyles = map[Layer]lipgloss.Style{
	LayerEmpty:    lipgloss.NewStyle(),
	LayerEdge:     lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	LayerStrained: lipgloss.NewStyle().Foreground(lipgloss.Color("166")),
	LayerSemantic: lipgloss.NewStyle().Foreground(lipgloss.Color("135")),
	LayerShadow:   lipgloss.NewStyle().Foreground(lipgloss.Color("60")),
	LayerParticle: lipgloss.NewStyle().Foreground(lipgloss.Color("87")),
	LayerNode:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	LayerHot:      lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true),
	LayerCore:     lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	LayerVessel:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
	LayerText:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
}

// Canvas is a grid of styled runes.
type Canvas struct {
	W, H   int
	runes  []rune
	layers []Layer
}

// NewCanvas creates a blank w×h canvas.
func NewCanvas(w, h int) *Canvas {
	w, h = max(w, 1), max(h, 1)
	c := &Canvas{W: w, H: h, runes: make([]rune, w*h), layers: make([]Layer, w*h)}
	c.Clear()
	return c
}

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.runes {
		c.runes[i] = ' '
		c.layers[i] = LayerEmpty
	}
}

// Set writes r at (x,y) unless a higher layer already owns the cell.
// Out-of-bounds writes are ignored.
func (c *Canvas) Set(x, y int, r rune, l Layer) {
	if x < 0 || y < 0 || x >= c.W || y >= c.H {
		return
	}
	i := y*c.W + x
	if l < c.layers[i] {
		return
	}
	c.runes[i] = r
	c.layers[i] = l
}

// At returns the rune and layer at (x,y).
func (c *Canvas) At(x, y int) (rune, Layer) {
	if x < 0 || y < 0 || x >= c.W || y >= c.H {
		return ' ', LayerEmpty
	}
	i := y*c.W + x
	return c.runes[i], c.layers[i]
}

// Line draws a Bresenham line between two cells.
func (c *Canvas) Line(x0, y0, x1, y1 int, r rune, l Layer) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for steps := 0; steps <= c.W+c.H+dx-dy; steps++ {
		c.Set(x0, y0, r, l)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// Text writes s starting at (x,y) on the text layer.
func (c *Canvas) Text(x, y int, s string) {
	for _, r := range s {
		c.Set(x, y, r, LayerText)
		x++
	}
}

// Render joins the canvas into styled lines, grouping runs of equal layer.
func (c *Canvas) Render() string {
	var b strings.Builder
	for y := 0; y < c.H; y++ {
		row := y * c.W
		start := 0
		for x := 1; x <= c.W; x++ {
			if x < c.W && c.layers[row+x] == c.layers[row+start] {
				continue
			}
			run := string(c.runes[row+start : row+x])
			l := c.layers[row+start]
			if l == LayerEmpty {
				b.WriteString(run)
			} else {
				b.WriteString(layerStyles[l].Render(run))
			}
			start = x
		}
		if y < c.H-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
