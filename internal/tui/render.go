// Package tui is a terminal sandbox for driving cubes with the field by
// hand.
package tui

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

// Terminal cells are about twice as tall as wide, so a row spans twice the
// board units of a column.
const rowAspect = 2

var (
	styleWall   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleRed    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleBlue   = tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleHelp   = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleCursor = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

// View maps board units onto terminal cells. The board is drawn inside a
// one-cell wall starting at the top-left corner; board y grows upward.
type View struct {
	Scale  float64 // board units per column
	Width  float64
	Height float64
}

// FitView picks the smallest whole scale that shows a w×h board on a
// cols×rows terminal, leaving two rows for the status lines.
func FitView(w, h float64, cols, rows int) View {
	sx := w / float64(max(cols-2, 1))
	sy := h / float64(max(rows-4, 1)) / rowAspect
	s := math.Ceil(math.Max(math.Max(sx, sy), 1))
	return View{Scale: s, Width: w, Height: h}
}

// Cols and Rows are the board's extent in cells, walls excluded.
func (v View) Cols() int { return int(math.Ceil(v.Width / v.Scale)) }
func (v View) Rows() int { return int(math.Ceil(v.Height / (v.Scale * rowAspect))) }

// ToCell returns the terminal cell showing board point p.
func (v View) ToCell(p core.Vec) (int, int) {
	col := int(math.Floor(p.X / v.Scale))
	row := int(math.Floor((v.Height - p.Y) / (v.Scale * rowAspect)))
	col = min(max(col, 0), v.Cols()-1)
	row = min(max(row, 0), v.Rows()-1)
	return col + 1, row + 1
}

// ToBoard returns the board point at the center of terminal cell (x, y).
func (v View) ToBoard(x, y int) core.Vec {
	return core.V(
		(float64(x-1)+0.5)*v.Scale,
		v.Height-(float64(y-1)+0.5)*v.Scale*rowAspect,
	)
}

// Frame is everything one redraw shows.
type Frame struct {
	Config  *core.Configuration
	Target  *core.Shape
	Cursor  core.Vec
	Place   core.CubeType
	Motions int
	Busy    bool
}

// Render draws f on s.
func Render(s tcell.Screen, v View, f Frame) {
	s.Clear()
	cols, rows := v.Cols(), v.Rows()

	for x := 0; x <= cols+1; x++ {
		s.SetContent(x, 0, '─', nil, styleWall)
		s.SetContent(x, rows+1, '─', nil, styleWall)
	}
	for y := 0; y <= rows+1; y++ {
		s.SetContent(0, y, '│', nil, styleWall)
		s.SetContent(cols+1, y, '│', nil, styleWall)
	}
	s.SetContent(0, 0, '┌', nil, styleWall)
	s.SetContent(cols+1, 0, '┐', nil, styleWall)
	s.SetContent(0, rows+1, '└', nil, styleWall)
	s.SetContent(cols+1, rows+1, '┘', nil, styleWall)

	cx, cy := v.ToCell(f.Cursor)
	s.SetContent(cx, cy, '+', nil, styleCursor)

	polys := f.Config.PolyCollection()
	for _, st := range f.Config.States() {
		x, y := v.ToCell(st.Pos)
		s.SetContent(x, y, cubeRune(st.Cube, polys), nil, cubeStyle(st.Cube.Type))
	}

	if f.Target != nil {
		drawTarget(s, cols+3, 1, f.Target)
	}

	status := fmt.Sprintf("field %4.0f°  %-10v  cubes %d  polys %d  place %v  motions %d",
		f.Config.FieldAngle*180/math.Pi, f.Config.Elevation, f.Config.Len(), polys.Len(), f.Place, f.Motions)
	if f.Busy {
		status += "  moving"
	}
	drawText(s, 0, rows+2, styleStatus, status)
	drawText(s, 0, rows+3, styleHelp, "q/e rotate  a/d walk  w/s tilt  h level  t type  arrows+enter place  r reset  esc quit")
	s.Show()
}

// cubeRune marks single cubes with a dot and polyomino members with a block.
func cubeRune(c core.Cube, polys *core.PolyCollection) rune {
	if p := polys.PolyOf(c); p != nil && p.Size() > 1 {
		return '█'
	}
	return '●'
}

func cubeStyle(t core.CubeType) tcell.Style {
	if t == core.TypeRed {
		return styleRed
	}
	return styleBlue
}

// drawTarget draws the goal shape with its top-left cell at (x, y).
func drawTarget(s tcell.Screen, x, y int, target *core.Shape) {
	drawText(s, x, y, styleHelp, "target")
	top := 0
	for _, c := range target.Cells() {
		top = max(top, c.Y)
	}
	for _, c := range target.Cells() {
		t, _ := target.TypeAt(c)
		s.SetContent(x+c.X, y+1+top-c.Y, '█', nil, cubeStyle(t))
	}
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
