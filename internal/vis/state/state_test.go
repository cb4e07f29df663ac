package state

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/magcubes/internal/algo"
	"github.com/elektrokombinacija/magcubes/internal/core"
	"github.com/elektrokombinacija/magcubes/internal/sim"
)

func twoCubes() (*core.Configuration, *core.Shape) {
	a := core.NewArena()
	r, b := a.New(core.TypeRed), a.New(core.TypeBlue)
	c := core.NewConfiguration(400, 200, 0, core.TiltHorizontal, []core.CubeState{
		{Cube: r, Pos: core.V(100, 100)},
		{Cube: b, Pos: core.V(300, 100)},
	})
	target := core.NewShape(map[core.Cell]core.CubeType{{X: 0}: core.TypeRed, {X: 1}: core.TypeBlue})
	return c, target
}

func TestPlaybackClamps(t *testing.T) {
	p := NewPlaybackState(10)
	p.SetTime(-3)
	assert.Zero(t, p.CurrentTime)
	p.SetTime(99)
	assert.Equal(t, 10.0, p.CurrentTime)

	p.Reset()
	p.TogglePlay()
	p.SetSpeed(2)
	p.advanceBy(3)
	assert.Equal(t, 6.0, p.CurrentTime)
	p.advanceBy(10)
	assert.Equal(t, 10.0, p.CurrentTime)
	assert.False(t, p.Playing)

	p.StepBack()
	assert.InDelta(t, 9.9, p.CurrentTime, 1e-9)
	p.SetSpeed(1000)
	assert.Equal(t, 20.0, p.Speed)
}

func TestLoadMotionsFrames(t *testing.T) {
	start, target := twoCubes()
	s := NewState(sim.DefaultConfig(), start, target)
	assert.Same(t, start, s.Current())

	ms := []sim.Motion{sim.PivotWalk{Direction: core.West, Angle: math.Pi / 6}, sim.Rotation{Angle: 0.2}}
	require.NoError(t, s.LoadMotions(context.Background(), start, ms))
	require.Greater(t, len(s.Frames), 2)
	assert.Same(t, start, s.Frames[0].Config)
	assert.Equal(t, "PivotWalk(WEST, 0.524)", s.CurrentMotion())

	s.Playback.SetTime(s.Playback.MaxTime)
	assert.Equal(t, len(s.Frames)-1, s.FrameIndex())
	assert.Equal(t, "done", s.CurrentMotion())

	final, err := sim.Replay(context.Background(), s.Sim, start, ms, nil)
	require.NoError(t, err)
	assert.Equal(t, final.Key(), s.Current().Key())
}

func TestSandboxMode(t *testing.T) {
	start, target := twoCubes()
	s := NewState(sim.DefaultConfig(), start, target)
	assert.False(t, s.Place(core.V(200, 150)), "replay mode never places")

	s.ToggleMode()
	require.Equal(t, ModeSandbox, s.Mode)
	s.ToggleType()
	assert.Equal(t, core.TypeBlue, s.PlaceType)
	assert.True(t, s.Place(core.V(200, 150)))
	assert.Equal(t, 3, s.Current().Len())
	assert.Equal(t, 3, s.PlanningStart().Len())

	s.ToggleMode()
	assert.Equal(t, ModeReplay, s.Mode)
	assert.Equal(t, 2, s.Current().Len())
}

func TestPlannerRunsInBackground(t *testing.T) {
	start, target := twoCubes()
	cfg := algo.DefaultGlobalConfig()
	cfg.Local.Parallel = false
	ps := NewPlannerState()
	assert.Nil(t, ps.Poll())

	notified := make(chan struct{}, 1)
	require.True(t, ps.Start(context.Background(), algo.NewGlobalPlanner(cfg), start, target, func() { notified <- struct{}{} }))
	assert.False(t, ps.Start(context.Background(), algo.NewGlobalPlanner(cfg), start, target, nil), "one search at a time")

	select {
	case <-notified:
	case <-time.After(time.Minute):
		t.Fatal("planner did not finish")
	}
	plan := ps.Poll()
	require.NotNil(t, plan)
	assert.Equal(t, algo.Success, plan.State)
	assert.Nil(t, ps.Poll())
	assert.Contains(t, ps.Status(), "SUCCESS")
}

func TestPlannerStop(t *testing.T) {
	start, target := twoCubes()
	ps := NewPlannerState()
	require.True(t, ps.Start(context.Background(), algo.NewGlobalPlanner(algo.DefaultGlobalConfig()), start, target, nil))
	ps.Stop()
	plan := ps.Wait()
	require.NotNil(t, plan)
	assert.False(t, ps.Running())
}
