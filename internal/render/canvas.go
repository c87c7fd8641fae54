package render

import (
	"errors"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/msalah0e/tripgraph/internal/layout"
)

// A terminal cell stands for CellWidth x CellHeight virtual pixels, so world
// distances keep their aspect ratio on screen.
const (
	CellWidth  = 8
	CellHeight = 16
)

const maxLabelRunes = 24

var ErrReleased = errors.New("render: surface released")

type cell struct {
	r     rune
	color string
	bold  bool
}

// Canvas is a Surface backed by a grid of terminal cells.
type Canvas struct {
	cols, rows int
	cells      []cell
	released   bool
	plain      bool
}

// NewCanvas returns a blank canvas of cols x rows cells.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the grid size and clears it.
func (c *Canvas) Resize(cols, rows int) {
	c.cols, c.rows = max(cols, 0), max(rows, 0)
	c.cells = make([]cell, c.cols*c.rows)
	c.clear()
}

// SetPlain disables colour output.
func (c *Canvas) SetPlain(plain bool) { c.plain = plain }

func (c *Canvas) Size() (cols, rows int) { return c.cols, c.rows }

func (c *Canvas) Viewport() layout.Viewport {
	return layout.Viewport{Width: float64(c.cols * CellWidth), Height: float64(c.rows * CellHeight)}
}

func (c *Canvas) Bind() error {
	if c.cols == 0 || c.rows == 0 {
		return errors.New("render: canvas has no area")
	}
	c.released = false
	c.clear()
	return nil
}

func (c *Canvas) Release() {
	c.released = true
	c.clear()
}

func (c *Canvas) Released() bool { return c.released }

func (c *Canvas) Placeholder(title, hint string) error {
	c.released = false
	c.clear()
	mid := c.rows / 2
	c.centered(mid-1, title, LabelColor, true)
	c.centered(mid+1, hint, EdgeColor, false)
	return nil
}

func (c *Canvas) Draw(f Frame) error {
	if c.released {
		return ErrReleased
	}
	c.clear()
	for _, e := range f.Edges {
		c.edge(e)
	}
	for _, n := range f.Nodes {
		col, row := toCell(n.Pos)
		c.text(col+2, row, truncate(n.Label, maxLabelRunes), LabelColor, n.Focused)
	}
	for _, n := range f.Nodes {
		col, row := toCell(n.Pos)
		r, color := '●', n.Color
		if n.Focused {
			r, color = '◉', FocusColor
		}
		c.set(col, row, cell{r: r, color: color, bold: n.Focused})
	}
	return nil
}

func (c *Canvas) edge(e FrameEdge) {
	fc, fr := toCell(e.From)
	tc, tr := toCell(e.To)
	steps := 2*max(abs(tc-fc), abs(tr-fr)) + 2

	var (
		before layout.Vec
		moved  bool
	)
	for i := 1; i < steps; i++ {
		p := e.Point(float64(i) / float64(steps))
		col, row := toCell(p)
		if col == tc && row == tr {
			break
		}
		before, moved = p, true
		if col == fc && row == fr {
			continue
		}
		c.set(col, row, cell{r: '·', color: EdgeColor})
	}

	if e.Directed && moved {
		col, row := toCell(before)
		if col != fc || row != fr {
			c.set(col, row, cell{r: arrowRune(e.To.Sub(before)), color: EdgeColor})
		}
	}
}

// arrowRune picks one of eight arrows for direction d in screen space.
func arrowRune(d layout.Vec) rune {
	arrows := []rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}
	angle := math.Atan2(d.Y, d.X)
	i := int(math.Round(angle/(math.Pi/4))+8) % 8
	return arrows[i]
}

func (c *Canvas) centered(row int, s, color string, bold bool) {
	s = truncate(s, c.cols)
	col := (c.cols - len([]rune(s))) / 2
	c.text(col, row, s, color, bold)
}

func (c *Canvas) text(col, row int, s, color string, bold bool) {
	for _, r := range s {
		c.set(col, row, cell{r: r, color: color, bold: bold})
		col++
	}
}

func (c *Canvas) set(col, row int, v cell) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.cells[row*c.cols+col] = v
}

func (c *Canvas) at(col, row int) cell { return c.cells[row*c.cols+col] }

func (c *Canvas) clear() {
	for i := range c.cells {
		c.cells[i] = cell{r: ' '}
	}
}

// Plain returns the grid without colour, one line per row.
func (c *Canvas) Plain() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < c.cols; col++ {
			b.WriteRune(c.at(col, row).r)
		}
	}
	return b.String()
}

// String renders the grid, styling runs of equally coloured cells.
func (c *Canvas) String() string {
	if c.plain || c.cols == 0 {
		return c.Plain()
	}
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		cur := c.at(0, row)
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur.color == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(cur.color)).Bold(cur.bold).Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < c.cols; col++ {
			v := c.at(col, row)
			if v.color != cur.color || v.bold != cur.bold {
				flush()
				cur = v
			}
			run.WriteRune(v.r)
		}
		flush()
	}
	return b.String()
}

func toCell(p layout.Vec) (col, row int) {
	return int(math.Floor(p.X / CellWidth)), int(math.Floor(p.Y / CellHeight))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-1]) + "…"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
