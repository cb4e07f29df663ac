package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

func testParams() StepParams {
	cfg := DefaultConfig()
	return StepParams{
		Dt:                 cfg.Dt,
		MaxAngularVelocity: cfg.MaxAngularVelocity,
		SettleSteps:        cfg.SettleSteps,
		LongestChain:       1,
		Elevation:          core.TiltHorizontal,
	}
}

func sumAngle(steps []Step) float64 {
	total := 0.0
	for _, s := range steps {
		total += s.AngleChange
	}
	return total
}

func TestRotationSteps(t *testing.T) {
	p := testParams()
	per := p.MaxAngularVelocity * p.Dt

	tests := []struct {
		angle float64
		chain int
	}{
		{1.0, 1},
		{-0.5, 1},
		{2 * per, 3},
		{0.01, 2},
	}

	for _, tt := range tests {
		p.LongestChain = tt.chain
		steps := Rotation{Angle: tt.angle}.Steps(p)
		assert.InDelta(t, tt.angle, sumAngle(steps), 1e-9, "angle %v", tt.angle)

		moving := 0
		for _, s := range steps {
			assert.LessOrEqual(t, math.Abs(s.AngleChange), per+1e-12)
			assert.Equal(t, core.TiltHorizontal, s.Elevation)
			if s.AngleChange != 0 {
				moving++
			}
		}
		pad := len(steps) - moving
		assert.Equal(t, p.SettleSteps*tt.chain, pad, "settle pad scales with the longest chain")
	}

	assert.Empty(t, Rotation{}.Steps(p))
}

func TestPivotWalkSteps(t *testing.T) {
	p := testParams()
	w := PivotWalk{Direction: core.West, Angle: math.Pi / 6}
	steps := w.Steps(p)
	require.NotEmpty(t, steps)

	assert.Equal(t, core.TiltSouthDown, steps[0].Elevation)
	assert.Equal(t, core.TiltHorizontal, steps[len(steps)-1].Elevation)
	assert.InDelta(t, 0, sumAngle(steps), 1e-9)
	assert.InDelta(t, 4*math.Pi/6, w.Cost(), 1e-12)

	// Tilt sequence: south, north, south, horizontal.
	var tilts []core.Tilt
	for _, s := range steps {
		if len(tilts) == 0 || tilts[len(tilts)-1] != s.Elevation {
			tilts = append(tilts, s.Elevation)
		}
	}
	assert.Equal(t, []core.Tilt{core.TiltSouthDown, core.TiltNorthDown, core.TiltSouthDown, core.TiltHorizontal}, tilts)

	// The first rotation turns counter-clockwise for a westward walk.
	for _, s := range steps {
		if s.AngleChange != 0 {
			assert.Greater(t, s.AngleChange, 0.0)
			break
		}
	}
	east := PivotWalk{Direction: core.East, Angle: math.Pi / 6}.Steps(p)
	for _, s := range east {
		if s.AngleChange != 0 {
			assert.Less(t, s.AngleChange, 0.0)
			break
		}
	}
}

func TestTiltAndIdle(t *testing.T) {
	p := testParams()
	p.Elevation = core.TiltNorthDown
	assert.Equal(t, []Step{{Elevation: core.TiltSouthDown}}, Tilt{Level: core.TiltSouthDown}.Steps(p))

	idle := Idle{N: 5}.Steps(p)
	require.Len(t, idle, 5)
	for _, s := range idle {
		assert.Equal(t, Step{Elevation: core.TiltNorthDown}, s)
	}

	ms := []Motion{Rotation{Angle: -1}, PivotWalk{Direction: core.East, Angle: 0.5}, Tilt{}, Idle{N: 3}}
	assert.InDelta(t, 3.0, MotionsCost(ms), 1e-12)
}
