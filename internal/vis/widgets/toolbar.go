package widgets

import (
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/magcubes/internal/core"
	"github.com/elektrokombinacija/magcubes/internal/vis/state"
)

// Toolbar provides playback, sandbox and planner controls.
type Toolbar struct {
	state *state.State

	// OnPlan starts a search; OnStop cancels it.
	OnPlan func()
	OnStop func()

	playBtn      widget.Clickable
	resetBtn     widget.Clickable
	stepFwdBtn   widget.Clickable
	stepBackBtn  widget.Clickable
	speedUpBtn   widget.Clickable
	speedDownBtn widget.Clickable

	modeBtn widget.Clickable
	typeBtn widget.Clickable
	planBtn widget.Clickable
}

// NewToolbar creates a new toolbar.
func NewToolbar(st *state.State) *Toolbar {
	return &Toolbar{state: st}
}

// Layout renders the toolbar.
func (t *Toolbar) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	height := gtx.Dp(unit.Dp(44))
	paint.FillShape(gtx.Ops, color.NRGBA{R: 40, G: 43, B: 48, A: 255},
		clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, height)).Op())
	t.handleClicks(gtx)

	gap := layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout)
	return layout.Inset{Left: unit.Dp(10), Right: unit.Dp(10), Top: unit.Dp(8), Bottom: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.button(gtx, th, &t.stepBackBtn, "|<", false)
			}),
			gap,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if t.state.Playback.Playing {
					return t.button(gtx, th, &t.playBtn, "||", false)
				}
				return t.button(gtx, th, &t.playBtn, ">", false)
			}),
			gap,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.button(gtx, th, &t.stepFwdBtn, ">|", false)
			}),
			gap,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.button(gtx, th, &t.resetBtn, "[]", false)
			}),
			layout.Rigid(t.separator),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.button(gtx, th, &t.speedDownBtn, "-", false)
			}),
			gap,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.button(gtx, th, &t.speedUpBtn, "+", false)
			}),
			layout.Rigid(t.separator),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.button(gtx, th, &t.modeBtn, "Sandbox", t.state.Mode == state.ModeSandbox)
			}),
			gap,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				label := "Red"
				if t.state.PlaceType == core.TypeBlue {
					label = "Blue"
				}
				return t.button(gtx, th, &t.typeBtn, label, false)
			}),
			layout.Rigid(t.separator),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				label := "Plan"
				if t.state.Planner.Running() {
					label = "Stop"
				}
				return t.button(gtx, th, &t.planBtn, label, t.state.Planner.Running())
			}),
			gap,
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				l := material.Label(th, 12, t.state.Planner.Status())
				l.Color = color.NRGBA{R: 180, G: 190, B: 200, A: 255}
				l.MaxLines = 1
				return l.Layout(gtx)
			}),
		)
	})
}

func (t *Toolbar) separator(gtx layout.Context) layout.Dimensions {
	return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(image.Rect(0, 0, 1, 24)).Op())
		return layout.Dimensions{Size: image.Point{X: 1, Y: 24}}
	})
}

func (t *Toolbar) button(gtx layout.Context, th *material.Theme, btn *widget.Clickable, text string, active bool) layout.Dimensions {
	bg := color.NRGBA{R: 55, G: 58, B: 65, A: 255}
	if active {
		bg = color.NRGBA{R: 80, G: 130, B: 180, A: 255}
	}
	if btn.Hovered() {
		bg.R, bg.G, bg.B = lighten(bg.R), lighten(bg.G), lighten(bg.B)
	}
	return btn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Background{}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions {
				sz := gtx.Constraints.Min
				paint.FillShape(gtx.Ops, bg, clip.Rect(image.Rectangle{Max: sz}).Op())
				return layout.Dimensions{Size: sz}
			},
			func(gtx layout.Context) layout.Dimensions {
				return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					l := material.Label(th, 12, text)
					l.Color = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
					return l.Layout(gtx)
				})
			},
		)
	})
}

func (t *Toolbar) handleClicks(gtx layout.Context) {
	pb := t.state.Playback
	for t.playBtn.Clicked(gtx) {
		pb.TogglePlay()
	}
	for t.resetBtn.Clicked(gtx) {
		pb.Reset()
	}
	for t.stepFwdBtn.Clicked(gtx) {
		pb.StepForward()
	}
	for t.stepBackBtn.Clicked(gtx) {
		pb.StepBack()
	}
	for t.speedUpBtn.Clicked(gtx) {
		pb.SetSpeed(pb.Speed * 1.5)
	}
	for t.speedDownBtn.Clicked(gtx) {
		pb.SetSpeed(pb.Speed / 1.5)
	}
	for t.modeBtn.Clicked(gtx) {
		t.state.ToggleMode()
	}
	for t.typeBtn.Clicked(gtx) {
		t.state.ToggleType()
	}
	for t.planBtn.Clicked(gtx) {
		if t.state.Planner.Running() {
			if t.OnStop != nil {
				t.OnStop()
			}
		} else if t.OnPlan != nil {
			t.OnPlan()
		}
	}
}

func lighten(v uint8) uint8 {
	return uint8(min(255, int(v)+15))
}
