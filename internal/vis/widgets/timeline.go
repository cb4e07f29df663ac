package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/magcubes/internal/vis/state"
)

const (
	timelineHeight = 56
	timelineMargin = 20
)

// Timeline is a scrubber over the recorded replay. Frame boundaries of
// motions are drawn as ticks.
type Timeline struct {
	state    *state.State
	dragging bool
}

// NewTimeline creates a new timeline widget.
func NewTimeline(st *state.State) *Timeline {
	return &Timeline{state: st}
}

// Layout renders the timeline.
func (t *Timeline) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	width := gtx.Constraints.Max.X
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255}, clip.Rect(image.Rect(0, 0, width, timelineHeight)).Op())
	t.handlePointerEvents(gtx, width)

	trackY := timelineHeight / 2
	trackW := width - 2*timelineMargin
	paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255},
		clip.Rect(image.Rect(timelineMargin, trackY-3, timelineMargin+trackW, trackY+3)).Op())

	pb := t.state.Playback
	if pb.MaxTime > 0 {
		prev := -1
		for _, f := range t.state.Frames {
			if f.Motion == prev {
				continue
			}
			prev = f.Motion
			x := timelineMargin + int(float64(trackW)*float64(f.Step)*t.state.Sim.Dt/pb.MaxTime)
			paint.FillShape(gtx.Ops, color.NRGBA{R: 90, G: 95, B: 105, A: 255},
				clip.Rect(image.Rect(x, trackY-8, x+1, trackY+8)).Op())
		}
	}

	fill := int(float64(trackW) * pb.Progress())
	if fill > 0 {
		paint.FillShape(gtx.Ops, color.NRGBA{R: 100, G: 180, B: 255, A: 255},
			clip.Rect(image.Rect(timelineMargin, trackY-3, timelineMargin+fill, trackY+3)).Op())
	}
	head := timelineMargin + fill
	paint.FillShape(gtx.Ops, color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		clip.Rect(image.Rect(head-6, trackY-6, head+6, trackY+6)).Op())

	t.drawLabels(gtx, th)
	return layout.Dimensions{Size: image.Point{X: width, Y: timelineHeight}}
}

func (t *Timeline) drawLabels(gtx layout.Context, th *material.Theme) {
	pb := t.state.Playback
	cur := material.Label(th, 12, fmt.Sprintf("%.2fs  frame %d/%d", pb.CurrentTime, t.state.FrameIndex()+1, len(t.state.Frames)))
	cur.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	speed := material.Label(th, 12, fmt.Sprintf("%.1fx", pb.Speed))
	speed.Color = color.NRGBA{R: 150, G: 180, B: 200, A: 255}
	end := material.Label(th, 12, fmt.Sprintf("%.2fs", pb.MaxTime))
	end.Color = color.NRGBA{R: 150, G: 150, B: 150, A: 255}

	layout.Inset{Top: unit.Dp(2), Left: unit.Dp(timelineMargin), Right: unit.Dp(timelineMargin)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
			layout.Rigid(cur.Layout),
			layout.Rigid(speed.Layout),
			layout.Rigid(end.Layout),
		)
	})
}

func (t *Timeline) handlePointerEvents(gtx layout.Context, width int) {
	area := clip.Rect(image.Rect(0, 0, width, timelineHeight)).Push(gtx.Ops)
	event.Op(gtx.Ops, t)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: t,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release,
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			t.dragging = true
			t.seek(pe.Position.X, width)
		case pointer.Drag:
			if t.dragging {
				t.seek(pe.Position.X, width)
			}
		case pointer.Release:
			t.dragging = false
		}
	}
}

func (t *Timeline) seek(screenX float32, width int) {
	if t.state.Mode != state.ModeReplay {
		return
	}
	trackW := float64(width - 2*timelineMargin)
	progress := max(0, min(1, (float64(screenX)-timelineMargin)/trackW))
	t.state.Playback.Pause()
	t.state.Playback.SetTime(progress * t.state.Playback.MaxTime)
}
