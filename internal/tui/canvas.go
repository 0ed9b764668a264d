package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type cell struct {
	r     rune
	color string
}

// Canvas is a fixed-size grid of coloured runes.
type Canvas struct {
	width  int
	height int
	cells  []cell
	styles map[string]lipgloss.Style
}

// NewCanvas creates a blank canvas. Non-positive sizes yield an empty canvas.
func NewCanvas(width, height int) *Canvas {
	width = max(width, 0)
	height = max(height, 0)

	c := &Canvas{
		width:  width,
		height: height,
		cells:  make([]cell, width*height),
		styles: make(map[string]lipgloss.Style),
	}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

// Size returns the canvas dimensions in cells.
func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

func (c *Canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.width && y < c.height
}

// Set writes r at (x, y). Writes outside the canvas are ignored.
func (c *Canvas) Set(x, y int, r rune, color string) {
	if !c.inside(x, y) {
		return
	}
	c.cells[y*c.width+x] = cell{r: r, color: color}
}

// At returns the rune at (x, y), or a space outside the canvas.
func (c *Canvas) At(x, y int) rune {
	if !c.inside(x, y) {
		return ' '
	}
	return c.cells[y*c.width+x].r
}

// Empty reports whether (x, y) is inside the canvas and blank.
func (c *Canvas) Empty(x, y int) bool {
	return c.inside(x, y) && c.cells[y*c.width+x].r == ' '
}

// Line draws a Bresenham line from (x0, y0) to (x1, y1), leaving occupied
// cells untouched.
func (c *Canvas) Line(x0, y0, x1, y1 int, r rune, color string) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		if c.Empty(x0, y0) {
			c.Set(x0, y0, r, color)
		}
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

// Text writes s starting at (x, y) while the cells are free. It reports
// whether the whole string fit.
func (c *Canvas) Text(x, y int, s, color string) bool {
	for i, r := range []rune(s) {
		if !c.Empty(x+i, y) {
			return false
		}
		c.Set(x+i, y, r, color)
	}
	return true
}

// Render returns the canvas as styled lines. Runs of the same colour share
// one lipgloss render call.
func (c *Canvas) Render() string {
	var sb strings.Builder
	for y := range c.height {
		if y > 0 {
			sb.WriteByte('\n')
		}
		row := c.cells[y*c.width : (y+1)*c.width]
		for start := 0; start < len(row); {
			end := start + 1
			for end < len(row) && row[end].color == row[start].color {
				end++
			}
			sb.WriteString(c.paint(row[start:end]))
			start = end
		}
	}
	return sb.String()
}

func (c *Canvas) paint(run []cell) string {
	rs := make([]rune, len(run))
	for i, cl := range run {
		rs[i] = cl.r
	}
	text := string(rs)

	color := run[0].color
	if color == "" {
		return text
	}
	style, ok := c.styles[color]
	if !ok {
		style = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		c.styles[color] = style
	}
	return style.Render(text)
}

// Plain returns the canvas without styling.
func (c *Canvas) Plain() string {
	var sb strings.Builder
	for y := range c.height {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := range c.width {
			sb.WriteRune(c.cells[y*c.width+x].r)
		}
	}
	return sb.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
