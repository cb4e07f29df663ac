package draw

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/magcubes/internal/core"
	"github.com/elektrokombinacija/magcubes/internal/vis/interact"
)

var (
	ColorBoard = color.NRGBA{R: 38, G: 42, B: 48, A: 255}
	ColorGrid  = color.NRGBA{R: 48, G: 53, B: 60, A: 255}
	ColorWall  = color.NRGBA{R: 110, G: 115, B: 125, A: 255}
	ColorField = color.NRGBA{R: 120, G: 220, B: 160, A: 255}
	ColorTilt  = color.NRGBA{R: 255, G: 160, B: 60, A: 255}
)

// DrawBoard fills the board area, draws a grid every cube size and
// outlines the walls.
func DrawBoard(gtx layout.Context, width, height float64, camera *interact.Camera) {
	x0, y0 := camera.WorldToScreen(0, height)
	x1, y1 := camera.WorldToScreen(width, 0)
	r := image.Rect(int(x0), int(y0), int(x1), int(y1))
	paint.FillShape(gtx.Ops, ColorBoard, clip.Rect(r).Op())

	for x := core.CubeSize; x < width; x += core.CubeSize {
		sx, _ := camera.WorldToScreen(x, 0)
		paint.FillShape(gtx.Ops, ColorGrid, clip.Rect(image.Rect(int(sx), r.Min.Y, int(sx)+1, r.Max.Y)).Op())
	}
	for y := core.CubeSize; y < height; y += core.CubeSize {
		_, sy := camera.WorldToScreen(0, y)
		paint.FillShape(gtx.Ops, ColorGrid, clip.Rect(image.Rect(r.Min.X, int(sy), r.Max.X, int(sy)+1)).Op())
	}

	w := float32(2)
	drawLine(gtx, x0, y0, x1, y0, w, ColorWall)
	drawLine(gtx, x1, y0, x1, y1, w, ColorWall)
	drawLine(gtx, x1, y1, x0, y1, w, ColorWall)
	drawLine(gtx, x0, y1, x0, y0, w, ColorWall)
}

// DrawField draws a compass in screen space at (cx, cy): the field's north
// as an arrow and the tilt as a bar on the lowered side.
func DrawField(gtx layout.Context, cx, cy, radius float32, fieldAngle float64, tilt core.Tilt) {
	drawFilledCircle(gtx, cx, cy, radius, ColorBoard)
	n := core.North.Vec(fieldAngle)
	tip := f32.Pt(cx+radius*float32(n.X), cy-radius*float32(n.Y))
	drawLine(gtx, cx, cy, tip.X, tip.Y, 3, ColorField)
	drawFilledCircle(gtx, tip.X, tip.Y, 4, ColorField)

	var down core.Direction
	switch tilt {
	case core.TiltNorthDown:
		down = core.North
	case core.TiltSouthDown:
		down = core.South
	default:
		return
	}
	d := down.Vec(fieldAngle)
	side := d.Rotate(math.Pi / 2).Scale(float64(radius) * 0.6)
	mid := core.V(float64(cx)+d.X*float64(radius)*1.2, float64(cy)-d.Y*float64(radius)*1.2)
	drawLine(gtx,
		float32(mid.X+side.X), float32(mid.Y-side.Y),
		float32(mid.X-side.X), float32(mid.Y+side.Y),
		4, ColorTilt)
}

// DrawTarget draws the target shape in screen space with its lower-left
// cell at (x, y), cell pixels per cube.
func DrawTarget(gtx layout.Context, s *core.Shape, x, y, cell float32) {
	if s == nil {
		return
	}
	minY := 0
	for _, c := range s.Cells() {
		minY = min(minY, c.Y)
	}
	for _, c := range s.Cells() {
		t, _ := s.TypeAt(c)
		px := x + float32(c.X)*cell
		py := y - float32(c.Y-minY)*cell
		r := image.Rect(int(px), int(py-cell), int(px+cell), int(py))
		paint.FillShape(gtx.Ops, ColorOutline, clip.Rect(r).Op())
		inner := image.Rect(r.Min.X+1, r.Min.Y+1, r.Max.X-1, r.Max.Y-1)
		paint.FillShape(gtx.Ops, CubeColor(t), clip.Rect(inner).Op())
	}
}
