// Package draw renders boards, cubes and links with Gio.
package draw

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/magcubes/internal/core"
	"github.com/elektrokombinacija/magcubes/internal/vis/interact"
)

// Cube colors by type
var (
	ColorRed     = color.NRGBA{R: 220, G: 80, B: 80, A: 255}
	ColorBlue    = color.NRGBA{R: 80, G: 130, B: 230, A: 255}
	ColorOutline = color.NRGBA{R: 20, G: 20, B: 24, A: 255}
	ColorNorth   = color.NRGBA{R: 240, G: 240, B: 240, A: 255}
	ColorLink    = color.NRGBA{R: 255, G: 220, B: 90, A: 255}
)

// CubeColor returns the fill color for a cube type.
func CubeColor(t core.CubeType) color.NRGBA {
	if t == core.TypeBlue {
		return ColorBlue
	}
	return ColorRed
}

// corners returns the screen corners of a cube in counter-clockwise order.
func corners(s core.CubeState, camera *interact.Camera, inset float64) [4]f32.Point {
	h := core.CubeRadius - inset
	var out [4]f32.Point
	for i, off := range []core.Vec{core.V(-h, -h), core.V(h, -h), core.V(h, h), core.V(-h, h)} {
		p := s.Pos.Add(off.Rotate(s.Angle))
		x, y := camera.WorldToScreen(p.X, p.Y)
		out[i] = f32.Pt(x, y)
	}
	return out
}

func fillPolygon(gtx layout.Context, pts []f32.Point, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(pts[0])
	for _, p := range pts[1:] {
		path.LineTo(p)
	}
	path.Close()
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

// DrawCube draws a rotated cube with a marker on its north face.
func DrawCube(gtx layout.Context, s core.CubeState, camera *interact.Camera, highlight bool) {
	outer := corners(s, camera, 0)
	fillPolygon(gtx, outer[:], ColorOutline)
	inner := corners(s, camera, 1)
	col := CubeColor(s.Cube.Type)
	if highlight {
		col.R, col.G, col.B = lighten(col.R), lighten(col.G), lighten(col.B)
	}
	fillPolygon(gtx, inner[:], col)

	// North face marker.
	n := s.Pos.Add(core.FromAngle(s.Angle + math.Pi/2).Scale(core.CubeRadius - 3))
	x, y := camera.WorldToScreen(n.X, n.Y)
	drawFilledCircle(gtx, x, y, 2*camera.Zoom, ColorNorth)
}

// DrawCubes draws every cube of c and the links between them.
func DrawCubes(gtx layout.Context, c *core.Configuration, camera *interact.Camera) {
	for _, s := range c.States() {
		DrawCube(gtx, s, camera, false)
	}
	DrawLinks(gtx, c, camera)
}

// DrawLinks marks each latched contact with a short bar across the shared
// face.
func DrawLinks(gtx layout.Context, c *core.Configuration, camera *interact.Camera) {
	for _, p := range c.PolyCollection().Polyominoes() {
		for _, l := range p.Links() {
			a, b := c.Position(l.A), c.Position(l.B)
			mid := a.Add(b).Scale(0.5)
			half := b.Sub(a).Norm().Rotate(math.Pi / 2).Scale(core.CubeRadius * 0.6)
			x1, y1 := camera.WorldToScreen(mid.Add(half).X, mid.Add(half).Y)
			x2, y2 := camera.WorldToScreen(mid.Sub(half).X, mid.Sub(half).Y)
			drawLine(gtx, x1, y1, x2, y2, max(1, camera.Zoom), ColorLink)
		}
	}
}

func lighten(v uint8) uint8 {
	return uint8(min(255, int(v)+40))
}

func drawLine(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	dx, dy := x2-x1, y2-y1
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length < 0.1 {
		return
	}
	px := -dy / length * width / 2
	py := dx / length * width / 2
	fillPolygon(gtx, []f32.Point{
		f32.Pt(x1+px, y1+py), f32.Pt(x2+px, y2+py),
		f32.Pt(x2-px, y2-py), f32.Pt(x1-px, y1-py),
	}, col)
}

func drawFilledCircle(gtx layout.Context, cx, cy, radius float32, col color.NRGBA) {
	const segments = 12
	pts := make([]f32.Point, segments)
	for i := range pts {
		a := float64(i) * 2 * math.Pi / segments
		pts[i] = f32.Pt(cx+radius*float32(math.Cos(a)), cy+radius*float32(math.Sin(a)))
	}
	fillPolygon(gtx, pts, col)
}
