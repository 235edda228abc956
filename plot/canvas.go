package plot

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/katalvlaran/fluxgrid/geometry"
)

// Layer identifies what a drawing call represents. Later layers are drawn
// over earlier ones.
type Layer int

const (
	LayerGrid Layer = iota
	LayerContour
	LayerWall
	LayerSeparatrix
	LayerMarker
)

// Drawer is implemented by Canvas and SVG.
type Drawer interface {
	Polyline(points []geometry.Point, layer Layer)
	Marker(p geometry.Point, label string, layer Layer)
}

var (
	glyphs = map[Layer]rune{
		LayerGrid:       '+',
		LayerContour:    '.',
		LayerWall:       '#',
		LayerSeparatrix: '*',
		LayerMarker:     'X',
	}

	defaultStyles = map[Layer]lipgloss.Style{
		LayerGrid:       lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0")),
		LayerContour:    lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")),
		LayerWall:       lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")).Bold(true),
		LayerSeparatrix: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		LayerMarker:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true),
	}
)

type cell struct {
	glyph rune
	layer Layer
	set   bool
}

// Canvas is a character raster over a Box. Terminal cells are about twice
// as tall as they are wide, so a row covers twice the Z extent a column
// covers in R.
type Canvas struct {
	box   Box
	w, h  int
	cells [][]cell
}

// MinWidth is the narrowest Canvas.
const MinWidth = 8

// NewCanvas returns an empty canvas width columns wide over box.
func NewCanvas(box Box, width int) (*Canvas, error) {
	if err := box.Validate(); err != nil {
		return nil, fmt.Errorf("NewCanvas: %w", err)
	}
	if width < MinWidth {
		return nil, fmt.Errorf("NewCanvas: width %d < %d: %w", width, MinWidth, ErrSize)
	}
	h := max(1, int(math.Round(float64(width)*box.Height()/box.Width()/2)))
	c := &Canvas{box: box, w: width, h: h}
	c.cells = make([][]cell, h)
	for i := range c.cells {
		c.cells[i] = make([]cell, width)
	}

	return c, nil
}

// Size returns the number of columns and rows.
func (c *Canvas) Size() (cols, rows int) { return c.w, c.h }

// cellOf returns the column and row of p. Row 0 is the top (largest Z).
func (c *Canvas) cellOf(p geometry.Point) (col, row int) {
	col = int(math.Floor((p.R - c.box.RMin) / c.box.Width() * float64(c.w)))
	row = int(math.Floor((c.box.ZMax - p.Z) / c.box.Height() * float64(c.h)))
	// the upper edges belong to the last cell
	if p.R == c.box.RMax {
		col = c.w - 1
	}
	if p.Z == c.box.ZMin {
		row = c.h - 1
	}

	return col, row
}

func (c *Canvas) plot(col, row int, g rune, layer Layer) {
	if col < 0 || col >= c.w || row < 0 || row >= c.h {
		return
	}
	cur := &c.cells[row][col]
	if cur.set && cur.layer > layer {
		return
	}
	*cur = cell{glyph: g, layer: layer, set: true}
}

// Line draws the segment from a to b. Parts outside the box are dropped.
func (c *Canvas) Line(a, b geometry.Point, layer Layer) {
	if !a.IsFinite() || !b.IsFinite() {
		return
	}
	x0, y0 := c.cellOf(a)
	x1, y1 := c.cellOf(b)
	// segments spanning far beyond the canvas are skipped
	if abs(x1-x0)+abs(y1-y0) > 16*(c.w+c.h) {
		return
	}
	g := glyphs[layer]
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.plot(x0, y0, g, layer)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Polyline draws consecutive segments through points.
func (c *Canvas) Polyline(points []geometry.Point, layer Layer) {
	if len(points) == 1 {
		c.Line(points[0], points[0], layer)
	}
	for i := 1; i < len(points); i++ {
		c.Line(points[i-1], points[i], layer)
	}
}

// Marker draws the layer glyph at p followed by label.
func (c *Canvas) Marker(p geometry.Point, label string, layer Layer) {
	if !p.IsFinite() {
		return
	}
	col, row := c.cellOf(p)
	c.plot(col, row, glyphs[layer], layer)
	for k, r := range []rune(label) {
		c.plot(col+1+k, row, r, layer)
	}
}

// Plain returns the raster without styling.
func (c *Canvas) Plain() string {
	return c.render(func(_ Layer, s string) string { return s })
}

// Render returns the raster with each run of same-layer cells styled.
func (c *Canvas) Render() string {
	return c.render(func(l Layer, s string) string { return defaultStyles[l].Render(s) })
}

func (c *Canvas) render(style func(Layer, string) string) string {
	var sb strings.Builder
	for i, row := range c.cells {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j := 0; j < len(row); {
			k := j
			for k < len(row) && row[k].set == row[j].set && row[k].layer == row[j].layer {
				k++
			}
			run := make([]rune, 0, k-j)
			for _, cl := range row[j:k] {
				if cl.set {
					run = append(run, cl.glyph)
				} else {
					run = append(run, ' ')
				}
			}
			if row[j].set {
				sb.WriteString(style(row[j].layer, string(run)))
			} else {
				sb.WriteString(string(run))
			}
			j = k
		}
	}

	return sb.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
