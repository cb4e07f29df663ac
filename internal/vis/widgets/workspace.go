// Package widgets provides Gio UI widgets for the viewer.
package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/magcubes/internal/core"
	"github.com/elektrokombinacija/magcubes/internal/vis/draw"
	"github.com/elektrokombinacija/magcubes/internal/vis/interact"
	"github.com/elektrokombinacija/magcubes/internal/vis/state"
)

// Workspace is the board view.
type Workspace struct {
	state  *state.State
	camera *interact.Camera
	fitted bool
}

// NewWorkspace creates a new workspace widget.
func NewWorkspace(st *state.State, camera *interact.Camera) *Workspace {
	return &Workspace{state: st, camera: camera}
}

// Refit fits the board to the view on the next frame.
func (w *Workspace) Refit() { w.fitted = false }

// Layout renders the workspace.
func (w *Workspace) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	cfg := w.state.Current()
	if !w.fitted && bounds.X > 0 {
		w.camera.FitBoard(cfg.Width, cfg.Height, float32(bounds.X), float32(bounds.Y), 40)
		w.fitted = true
	}
	w.handlePointerEvents(gtx)

	draw.DrawBoard(gtx, cfg.Width, cfg.Height, w.camera)
	draw.DrawCubes(gtx, cfg, w.camera)
	draw.DrawField(gtx, float32(bounds.X)-50, 50, 30, cfg.FieldAngle, cfg.Elevation)
	draw.DrawTarget(gtx, w.state.Target, 16, float32(bounds.Y)-16, 14)

	w.layoutInfo(gtx, th, cfg)
	return layout.Dimensions{Size: bounds}
}

func (w *Workspace) layoutInfo(gtx layout.Context, th *material.Theme, cfg *core.Configuration) {
	text := fmt.Sprintf("%s  cubes=%d  polyominoes=%d", w.state.Mode, cfg.Len(), cfg.PolyCollection().Len())
	if w.state.Mode == state.ModeSandbox {
		text += fmt.Sprintf("  place=%v", w.state.PlaceType)
	} else if m := w.state.CurrentMotion(); m != "" {
		text += "  " + m
	}
	if w.state.Target != nil {
		text += fmt.Sprintf("  target x%d", cfg.PolyCollection().CountShape(w.state.Target))
	}
	defer op.Offset(image.Pt(gtx.Dp(unit.Dp(12)), gtx.Dp(unit.Dp(8)))).Push(gtx.Ops).Pop()
	label := material.Label(th, 13, text)
	label.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	label.Layout(gtx)
}

func (w *Workspace) handlePointerEvents(gtx layout.Context) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		w.camera.HandleEvent(pe)
		if pe.Kind == pointer.Press && pe.Buttons.Contain(pointer.ButtonPrimary) {
			x, y := w.camera.ScreenToWorld(pe.Position.X, pe.Position.Y)
			w.state.Place(core.V(x, y))
		}
	}
}
