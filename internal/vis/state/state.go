// Package state manages the viewer state.
package state

import (
	"context"
	"sort"

	"github.com/elektrokombinacija/magcubes/internal/core"
	"github.com/elektrokombinacija/magcubes/internal/sim"
)

// Mode selects what the workspace shows.
type Mode int

const (
	ModeReplay  Mode = iota // recorded frames of a plan
	ModeSandbox             // live world driven by keys and clicks
)

func (m Mode) String() string {
	if m == ModeSandbox {
		return "sandbox"
	}
	return "replay"
}

// RecordEvery is the frame interval of replays, in world steps.
const RecordEvery = 5

// State holds all viewer state.
type State struct {
	Mode      Mode
	Sim       sim.Config
	Start     *core.Configuration
	Target    *core.Shape
	Frames    []sim.Frame
	Motions   []sim.Motion
	Playback  *PlaybackState
	Sandbox   *sim.Driver
	Planner   *PlannerState
	PlaceType core.CubeType
}

// NewState starts in replay mode with an empty script at start.
func NewState(cfg sim.Config, start *core.Configuration, target *core.Shape) *State {
	s := &State{
		Sim:      cfg,
		Start:    start,
		Target:   target,
		Playback: NewPlaybackState(0),
		Sandbox:  sim.NewDriver(cfg, start),
		Planner:  NewPlannerState(),
	}
	s.Frames = []sim.Frame{{Config: start}}
	return s
}

// LoadMotions replays motions from start and records frames for playback.
func (s *State) LoadMotions(ctx context.Context, start *core.Configuration, motions []sim.Motion) error {
	rec := &sim.Recorder{Every: RecordEvery}
	if _, err := sim.Replay(ctx, s.Sim, start, motions, rec); err != nil {
		return err
	}
	s.Start, s.Motions, s.Frames = start, motions, rec.Frames
	s.Playback = NewPlaybackState(s.frameTime(len(s.Frames) - 1))
	s.Mode = ModeReplay
	return nil
}

func (s *State) frameTime(i int) float64 {
	return float64(s.Frames[i].Step) * s.Sim.Dt
}

// FrameIndex returns the last frame at or before the playhead.
func (s *State) FrameIndex() int {
	t := s.Playback.CurrentTime
	i := sort.Search(len(s.Frames), func(i int) bool { return s.frameTime(i) > t+1e-9 })
	return max(0, i-1)
}

// Current returns the configuration to draw.
func (s *State) Current() *core.Configuration {
	if s.Mode == ModeSandbox {
		return s.Sandbox.World().Snapshot()
	}
	return s.Frames[s.FrameIndex()].Config
}

// CurrentMotion describes the motion running at the playhead.
func (s *State) CurrentMotion() string {
	if s.Mode == ModeSandbox || len(s.Motions) == 0 {
		return ""
	}
	i := s.Frames[s.FrameIndex()].Motion
	if i >= len(s.Motions) {
		return "done"
	}
	return s.Motions[i].String()
}

// ToggleMode switches between replay and the sandbox. Entering the
// sandbox starts it from the configuration on screen.
func (s *State) ToggleMode() {
	if s.Mode == ModeSandbox {
		s.Mode = ModeReplay
		return
	}
	s.Playback.Pause()
	s.Sandbox.Reset(s.Current())
	s.Mode = ModeSandbox
}

// ToggleType flips the type of cubes placed by clicks.
func (s *State) ToggleType() {
	if s.PlaceType == core.TypeRed {
		s.PlaceType = core.TypeBlue
	} else {
		s.PlaceType = core.TypeRed
	}
}

// Place drops a cube at a board position in sandbox mode.
func (s *State) Place(pos core.Vec) bool {
	if s.Mode != ModeSandbox {
		return false
	}
	_, ok := s.Sandbox.Place(s.PlaceType, pos)
	return ok
}

// PlanningStart is the configuration a new plan search should start from.
func (s *State) PlanningStart() *core.Configuration {
	if s.Mode == ModeSandbox {
		return s.Sandbox.World().Snapshot()
	}
	return s.Start
}
