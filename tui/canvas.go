package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-tombola/geometry"
)

// viewport maps the y-up world onto terminal cells. Cells are roughly
// twice as tall as wide, so one row covers twice the world distance of one
// column.
type viewport struct {
	bounds     geometry.Rect
	cols, rows int
	scale      float64 // columns per world unit
	offX, offY float64
}

func newViewport(bounds geometry.Rect, cols, rows int) viewport {
	cols, rows = max(cols, 1), max(rows, 1)
	scale := math.Min(float64(cols)/bounds.Width(), 2*float64(rows)/bounds.Height())
	return viewport{
		bounds: bounds,
		cols:   cols,
		rows:   rows,
		scale:  scale,
		offX:   (float64(cols) - bounds.Width()*scale) / 2,
		offY:   (float64(rows) - bounds.Height()*scale/2) / 2,
	}
}

// toCell returns the cell containing world point p
func (v viewport) toCell(p geometry.Vec2) (col, row int) {
	x := v.offX + (p.X-v.bounds.Min.X)*v.scale
	y := v.offY + (v.bounds.Max.Y-p.Y)*v.scale/2
	return int(math.Floor(x)), int(math.Floor(y))
}

// toWorld returns the world point at the centre of a cell
func (v viewport) toWorld(col, row int) geometry.Vec2 {
	return geometry.Vec2{
		X: v.bounds.Min.X + (float64(col)+0.5-v.offX)/v.scale,
		Y: v.bounds.Max.Y - (float64(row)+0.5-v.offY)*2/v.scale,
	}
}

type cell struct {
	glyph rune
	color lipgloss.Color
}

// canvas is a grid of coloured glyphs
type canvas struct {
	viewport
	cells [][]cell
	empty rune
}

func newCanvas(v viewport, empty rune) *canvas {
	c := &canvas{viewport: v, empty: empty}
	c.cells = make([][]cell, v.rows)
	for y := range c.cells {
		c.cells[y] = make([]cell, v.cols)
		for x := range c.cells[y] {
			c.cells[y][x].glyph = empty
		}
	}
	return c
}

func (c *canvas) set(col, row int, glyph rune, color lipgloss.Color) {
	if row < 0 || row >= c.rows || col < 0 || col >= c.cols {
		return
	}
	c.cells[row][col] = cell{glyph: glyph, color: color}
}

// point draws a glyph at a world position
func (c *canvas) point(p geometry.Vec2, glyph rune, color lipgloss.Color) {
	col, row := c.toCell(p)
	c.set(col, row, glyph, color)
}

// line draws the world segment a-b
func (c *canvas) line(a, b geometry.Vec2, glyph rune, color lipgloss.Color) {
	x0, y0 := c.toCell(a)
	x1, y1 := c.toCell(b)
	steps := max(abs(x1-x0), abs(y1-y0))
	if steps == 0 {
		c.set(x0, y0, glyph, color)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(float64(x0) + t*float64(x1-x0)))
		y := int(math.Round(float64(y0) + t*float64(y1-y0)))
		c.set(x, y, glyph, color)
	}
}

// String renders the grid, one style per run of equal colour
func (c *canvas) String() string {
	var out strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			out.WriteString("\n")
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].color == row[start].color {
				continue
			}
			var run strings.Builder
			for _, cl := range row[start:x] {
				run.WriteRune(cl.glyph)
			}
			if row[start].color == "" {
				out.WriteString(run.String())
			} else {
				out.WriteString(lipgloss.NewStyle().Foreground(row[start].color).Render(run.String()))
			}
			start = x
		}
	}
	return out.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
