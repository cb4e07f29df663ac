// Package vis implements a Gio viewer for plans and a live sandbox.
package vis

import (
	"context"
	"image/color"
	"log/slog"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/magcubes/internal/algo"
	"github.com/elektrokombinacija/magcubes/internal/sim"
	"github.com/elektrokombinacija/magcubes/internal/vis/interact"
	"github.com/elektrokombinacija/magcubes/internal/vis/observer"
	"github.com/elektrokombinacija/magcubes/internal/vis/state"
	"github.com/elektrokombinacija/magcubes/internal/vis/widgets"
)

// stepsPerFrame is how many world steps the sandbox runs per redraw.
const stepsPerFrame = 4

// App is the viewer application.
type App struct {
	state     *state.State
	planning  algo.GlobalConfig
	events    *observer.Log
	theme     *material.Theme
	workspace *widgets.Workspace
	timeline  *widgets.Timeline
	toolbar   *widgets.Toolbar
	panel     *widgets.EventPanel
	camera    *interact.Camera
	window    *app.Window
	showLog   bool
}

// NewApp creates a viewer over st. Plans started from the UI use cfg.
func NewApp(st *state.State, cfg algo.GlobalConfig) *App {
	camera := interact.NewCamera()
	events := observer.NewLog(500, slog.LevelDebug)
	cfg.Logger = events.Logger()
	cfg.Local.Logger = nil
	a := &App{
		state:     st,
		planning:  cfg,
		events:    events,
		theme:     material.NewTheme(),
		workspace: widgets.NewWorkspace(st, camera),
		timeline:  widgets.NewTimeline(st),
		toolbar:   widgets.NewToolbar(st),
		panel:     widgets.NewEventPanel(events),
		camera:    camera,
		showLog:   true,
	}
	a.toolbar.OnPlan = a.startPlan
	a.toolbar.OnStop = st.Planner.Stop
	return a
}

// Run starts the event loop on w.
func (a *App) Run(w *app.Window) error {
	a.window = w
	var ops op.Ops
	tag := new(int)

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			a.state.Planner.Stop()
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag, Optional: key.ModShift})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKeyEvent(ke)
				}
			}
			event.Op(gtx.Ops, tag)
			gtx.Execute(key.FocusCmd{Tag: tag})

			a.collectPlan()
			a.layout(gtx)
			e.Frame(gtx.Ops)

			switch a.state.Mode {
			case state.ModeReplay:
				if a.state.Playback.Playing {
					a.state.Playback.Advance()
					w.Invalidate()
				}
			case state.ModeSandbox:
				if a.state.Sandbox.Busy() {
					a.state.Sandbox.Tick(stepsPerFrame)
					w.Invalidate()
				}
			}
		}
	}
}

func (a *App) startPlan() {
	if a.state.Target == nil {
		return
	}
	a.events.Clear()
	notify := func() {
		if a.window != nil {
			a.window.Invalidate()
		}
	}
	a.state.Planner.Start(context.Background(), algo.NewGlobalPlanner(a.planning), a.state.PlanningStart(), a.state.Target, notify)
}

// collectPlan loads a finished plan into the replay.
func (a *App) collectPlan() {
	plan := a.state.Planner.Poll()
	if plan == nil {
		return
	}
	a.events.Logger().Info("plan finished", "state", plan.State, "connections", len(plan.Actions), "cost", plan.Cost())
	if plan.State != algo.Success {
		return
	}
	if err := a.state.LoadMotions(context.Background(), plan.Initial, plan.Motions()); err != nil {
		a.events.Logger().Warn("replay failed", "err", err)
	}
}

var sandboxKeys = map[key.Name]sim.Command{
	"Q": sim.RotateLeft,
	"E": sim.RotateRight,
	"A": sim.WalkWest,
	"D": sim.WalkEast,
	"W": sim.TiltNorth,
	"S": sim.TiltSouth,
	"H": sim.Level,
}

func (a *App) handleKeyEvent(e key.Event) {
	if cmd, ok := sandboxKeys[e.Name]; ok && a.state.Mode == state.ModeSandbox {
		a.state.Sandbox.Do(cmd)
		a.window.Invalidate()
		return
	}
	switch e.Name {
	case key.NameSpace:
		a.state.Playback.TogglePlay()
	case key.NameLeftArrow:
		a.state.Playback.StepBack()
	case key.NameRightArrow:
		a.state.Playback.StepForward()
	case key.NameHome:
		a.state.Playback.Reset()
	case key.NameTab, "M":
		a.state.ToggleMode()
	case "T":
		a.state.ToggleType()
	case "P":
		if a.state.Planner.Running() {
			a.state.Planner.Stop()
		} else {
			a.startPlan()
		}
	case "L":
		a.showLog = !a.showLog
	case "R":
		a.camera.Reset()
	case "F":
		a.workspace.Refit()
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, color.NRGBA{R: 30, G: 30, B: 35, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.toolbar.Layout(gtx, a.theme)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return a.workspace.Layout(gtx, a.theme)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					if !a.showLog {
						return layout.Dimensions{}
					}
					return a.panel.Layout(gtx, a.theme)
				}),
			)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.timeline.Layout(gtx, a.theme)
		}),
	)
}
