package widgets

import (
	"image"
	"image/color"
	"log/slog"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/magcubes/internal/vis/observer"
)

// EventPanel lists the planner's recent log records, newest last.
type EventPanel struct {
	log  *observer.Log
	list widget.List
}

// NewEventPanel shows the records of log.
func NewEventPanel(log *observer.Log) *EventPanel {
	p := &EventPanel{log: log}
	p.list.Axis = layout.Vertical
	p.list.ScrollToEnd = true
	return p
}

// Layout renders the panel at a fixed width.
func (p *EventPanel) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	width := gtx.Dp(unit.Dp(320))
	gtx.Constraints.Min.X, gtx.Constraints.Max.X = width, width
	paint.FillShape(gtx.Ops, color.NRGBA{R: 40, G: 40, B: 45, A: 255},
		clip.Rect(image.Rect(0, 0, width, gtx.Constraints.Max.Y)).Op())

	events := p.log.Events()
	layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return material.List(th, &p.list).Layout(gtx, len(events), func(gtx layout.Context, i int) layout.Dimensions {
			ev := events[i]
			l := material.Label(th, 11, ev.String())
			switch {
			case ev.Level >= slog.LevelWarn:
				l.Color = color.NRGBA{R: 255, G: 170, B: 90, A: 255}
			case ev.Level >= slog.LevelInfo:
				l.Color = color.NRGBA{R: 150, G: 230, B: 170, A: 255}
			default:
				l.Color = color.NRGBA{R: 160, G: 160, B: 170, A: 255}
			}
			return l.Layout(gtx)
		})
	})
	return layout.Dimensions{Size: image.Point{X: width, Y: gtx.Constraints.Max.Y}}
}
