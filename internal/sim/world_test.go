package sim

import (
	"context"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

func board(states ...core.CubeState) *core.Configuration {
	return core.NewConfiguration(400, 200, 0, core.TiltHorizontal, states)
}

func TestPivotWalkTranslatesSingleCube(t *testing.T) {
	a := core.NewArena()
	c := a.New(core.TypeRed)
	w := NewWorld(DefaultConfig(), board(core.CubeState{Cube: c, Pos: core.V(200, 100)}))

	require.NoError(t, w.Execute(context.Background(), PivotWalk{Direction: core.West, Angle: math.Pi / 6}))
	p := w.Position(c)
	// One walk moves a lone cube by 4 R sin(angle).
	assert.InDelta(t, 200-4*core.CubeRadius*0.5, p.X, 0.5)
	assert.InDelta(t, 100, p.Y, 0.5)

	require.NoError(t, w.Execute(context.Background(), PivotWalk{Direction: core.East, Angle: math.Pi / 6}))
	p = w.Position(c)
	assert.InDelta(t, 200, p.X, 1)
}

func TestWallStopsWalk(t *testing.T) {
	a := core.NewArena()
	c := a.New(core.TypeBlue)
	w := NewWorld(DefaultConfig(), board(core.CubeState{Cube: c, Pos: core.V(15, 100)}))

	require.NoError(t, w.Execute(context.Background(), PivotWalk{Direction: core.West, Angle: math.Pi / 6}))
	assert.InDelta(t, core.CubeRadius, w.Position(c).X, 0.5)
}

func TestMagnetsConnectNearbyCubes(t *testing.T) {
	a := core.NewArena()
	r, b := a.New(core.TypeRed), a.New(core.TypeBlue)
	w := NewWorld(DefaultConfig(), board(
		core.CubeState{Cube: r, Pos: core.V(100, 100)},
		core.CubeState{Cube: b, Pos: core.V(125, 100)},
	))
	require.Equal(t, 2, w.PolyCollection().Len())

	require.NoError(t, w.Execute(context.Background(), Idle{N: 60}))
	assert.True(t, w.Linked(r, b, core.West))
	assert.True(t, w.Linked(b, r, core.East))

	pc := w.PolyCollection()
	require.Equal(t, 1, pc.Len())
	assert.Equal(t, 2, pc.Polyominoes()[0].Size())
	assert.Equal(t, 1, w.Metrics().Connections)

	// The rigid pair keeps its grid spacing.
	assert.InDelta(t, core.CubeSize, w.Position(r).Dist(w.Position(b)), 1e-9)
}

func TestSameTypeSidesRepel(t *testing.T) {
	a := core.NewArena()
	r1, r2 := a.New(core.TypeRed), a.New(core.TypeRed)
	w := NewWorld(DefaultConfig(), board(
		core.CubeState{Cube: r1, Pos: core.V(100, 100)},
		core.CubeState{Cube: r2, Pos: core.V(122, 100)},
	))

	require.NoError(t, w.Execute(context.Background(), Idle{N: 60}))
	assert.Equal(t, 2, w.PolyCollection().Len())
	assert.Greater(t, w.Position(r1).Dist(w.Position(r2)), 22.0)
}

func TestStackConnectsAnyTypes(t *testing.T) {
	a := core.NewArena()
	r1, r2 := a.New(core.TypeRed), a.New(core.TypeRed)
	w := NewWorld(DefaultConfig(), board(
		core.CubeState{Cube: r1, Pos: core.V(100, 100)},
		core.CubeState{Cube: r2, Pos: core.V(100, 124)},
	))

	require.NoError(t, w.Execute(context.Background(), Idle{N: 60}))
	assert.True(t, w.Linked(r2, r1, core.North))
}

func TestSnapshotKeepsPolyominoes(t *testing.T) {
	a := core.NewArena()
	r, b, lone := a.New(core.TypeRed), a.New(core.TypeBlue), a.New(core.TypeRed)
	initial := board(
		core.CubeState{Cube: r, Pos: core.V(100, 100)},
		core.CubeState{Cube: b, Pos: core.V(120, 100)},
		core.CubeState{Cube: lone, Pos: core.V(300, 100)},
	)
	w := NewWorld(DefaultConfig(), initial)
	snap := w.Snapshot()
	assert.True(t, snap.Equal(initial))
	assert.True(t, snap.PolyCollection().Equal(initial.PolyCollection()))
	assert.Equal(t, 3, snap.Len())
}

func TestReplayIsDeterministic(t *testing.T) {
	a := core.NewArena()
	r, b := a.New(core.TypeRed), a.New(core.TypeBlue)
	initial := board(
		core.CubeState{Cube: r, Pos: core.V(100, 100)},
		core.CubeState{Cube: b, Pos: core.V(160, 120)},
	)
	motions := []Motion{
		Rotation{Angle: 0.4},
		PivotWalk{Direction: core.East, Angle: math.Pi / 6},
		Rotation{Angle: -0.4},
		Idle{N: 10},
	}

	w := NewWorld(DefaultConfig(), initial)
	for _, m := range motions {
		require.NoError(t, w.Execute(context.Background(), m))
	}
	want := w.Snapshot()

	rec := &Recorder{Every: 25}
	got, err := Replay(context.Background(), DefaultConfig(), initial, motions, rec)
	require.NoError(t, err)
	assert.Equal(t, want.Key(), got.Key())
	assert.Equal(t, want.States(), got.States())
	require.GreaterOrEqual(t, len(rec.Frames), 3)
	assert.Same(t, initial, rec.Frames[0].Config)
	assert.Zero(t, rec.Frames[0].Step)
	assert.Same(t, got, rec.Frames[len(rec.Frames)-1].Config)
}

func TestAddCube(t *testing.T) {
	w := NewWorld(DefaultConfig(), board())
	a := core.NewArena()
	c := a.New(core.TypeRed)
	assert.True(t, w.AddCube(c, core.V(50, 50)))
	assert.False(t, w.AddCube(a.New(core.TypeBlue), core.V(55, 50)), "overlap")
	assert.False(t, w.AddCube(a.New(core.TypeBlue), core.V(5, 50)), "off the board")
	assert.Equal(t, 1, w.PolyCollection().Len())
}

func TestCanceledExecute(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := NewWorld(DefaultConfig(), board())
	assert.ErrorIs(t, w.Execute(ctx, Idle{N: 10}), context.Canceled)
}

func TestContactsThroughSpace(t *testing.T) {
	a := core.NewArena()
	r, b, far := a.New(core.TypeRed), a.New(core.TypeBlue), a.New(core.TypeRed)
	w := NewWorld(DefaultConfig(), board(
		core.CubeState{Cube: r, Pos: core.V(100, 100)},
		core.CubeState{Cube: b, Pos: core.V(125, 100)},
		core.CubeState{Cube: far, Pos: core.V(300, 100)},
	))
	bodies := func() int {
		n := 0
		w.space.EachBody(func(*cp.Body) { n++ })
		return n
	}
	require.Equal(t, 3, bodies())

	// A latch swaps two chipmunk bodies for one.
	require.NoError(t, w.Execute(context.Background(), Idle{N: 60}))
	require.Equal(t, 2, w.PolyCollection().Len())
	assert.Equal(t, 2, bodies())

	// Repeated walks into the west wall never push a cube off the board.
	for i := 0; i < 4; i++ {
		require.NoError(t, w.Execute(context.Background(), PivotWalk{Direction: core.West, Angle: math.Pi / 6}))
	}
	for _, s := range w.Snapshot().States() {
		assert.GreaterOrEqual(t, s.Pos.X, core.CubeRadius-0.5, "cube %d", s.Cube.ID)
	}
}
