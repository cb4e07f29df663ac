package tui

import (
	"math"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/magcubes/internal/core"
	"github.com/elektrokombinacija/magcubes/internal/sim"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)
	return screen
}

func twoCubes() *core.Configuration {
	a := core.NewArena()
	return core.NewConfiguration(400, 300, 0, core.TiltHorizontal, []core.CubeState{
		{Cube: a.New(core.TypeRed), Pos: core.V(100, 150)},
		{Cube: a.New(core.TypeBlue), Pos: core.V(300, 50)},
	})
}

func TestFitView(t *testing.T) {
	v := FitView(400, 300, 80, 24)
	assert.Equal(t, 8.0, v.Scale)
	assert.Equal(t, 50, v.Cols())
	assert.Equal(t, 19, v.Rows())

	x, y := v.ToCell(core.V(100, 150))
	assert.Equal(t, 13, x)
	assert.Equal(t, 10, y)

	// Corners clamp inside the walls.
	x, y = v.ToCell(core.V(400, 0))
	assert.Equal(t, 50, x)
	assert.Equal(t, 19, y)

	p := v.ToBoard(13, 10)
	cx, cy := v.ToCell(p)
	assert.Equal(t, 13, cx)
	assert.Equal(t, 10, cy)
}

func TestRender(t *testing.T) {
	screen := newScreen(t)
	v := FitView(400, 300, 80, 24)
	target := core.NewShape(map[core.Cell]core.CubeType{
		{X: 0, Y: 0}: core.TypeRed,
		{X: 1, Y: 0}: core.TypeBlue,
	})
	Render(screen, v, Frame{Config: twoCubes(), Target: target, Cursor: core.V(200, 280)})

	r, _, _, _ := screen.GetContent(13, 10)
	assert.Equal(t, '●', r)
	x, y := v.ToCell(core.V(300, 50))
	r, _, _, _ = screen.GetContent(x, y)
	assert.Equal(t, '●', r)

	r, _, _, _ = screen.GetContent(0, 0)
	assert.Equal(t, '┌', r)
	r, _, _, _ = screen.GetContent(51, 20)
	assert.Equal(t, '┘', r)

	x, y = v.ToCell(core.V(200, 280))
	r, _, _, _ = screen.GetContent(x, y)
	assert.Equal(t, '+', r)

	// Target preview sits right of the board.
	r, _, _, _ = screen.GetContent(53, 2)
	assert.Equal(t, '█', r)
	r, _, _, _ = screen.GetContent(54, 2)
	assert.Equal(t, '█', r)

	r, _, _, _ = screen.GetContent(0, 21)
	assert.Equal(t, 'f', r)
}

func TestSandboxCommands(t *testing.T) {
	screen := newScreen(t)
	sb := NewSandbox(screen, sim.DefaultConfig(), twoCubes(), nil, nil)

	sb.Press('q')
	require.True(t, sb.Driver().Busy())
	sb.Driver().Flush()
	assert.InDelta(t, math.Pi/12, sb.Driver().World().FieldAngle(), 1e-9)
	assert.Len(t, sb.Driver().History(), 1)

	sb.Press('w')
	sb.Driver().Flush()
	assert.Equal(t, core.TiltNorthDown, sb.Driver().World().Elevation())

	sb.Press('r')
	assert.False(t, sb.Driver().Busy())
	assert.Empty(t, sb.Driver().History())
	assert.Equal(t, core.TiltHorizontal, sb.Driver().World().Elevation())
}

func TestSandboxPlace(t *testing.T) {
	screen := newScreen(t)
	sb := NewSandbox(screen, sim.DefaultConfig(), twoCubes(), nil, nil)

	// The cursor starts at the board center, away from both cubes.
	sb.Press('t')
	require.True(t, sb.Place())
	snap := sb.Driver().World().Snapshot()
	require.Equal(t, 3, snap.Len())
	assert.Equal(t, core.TypeBlue, snap.States()[2].Cube.Type)

	// Same spot again overlaps.
	assert.False(t, sb.Place())

	for i := 0; i < 200; i++ {
		sb.MoveCursor(-1, 0)
	}
	assert.GreaterOrEqual(t, sb.cursor.X, 0.0)
	assert.True(t, sb.Handle(tcell.NewEventResize(100, 40)))
}
