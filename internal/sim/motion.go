package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

// Step is one low-level field command.
type Step struct {
	AngleChange float64
	Elevation   core.Tilt
}

// StepParams is what a Motion needs to expand into Steps.
type StepParams struct {
	Dt                 float64
	MaxAngularVelocity float64
	SettleSteps        int
	LongestChain       int
	Elevation          core.Tilt // elevation before the motion
}

// Motion is a field primitive.
type Motion interface {
	Steps(p StepParams) []Step
	Cost() float64
	String() string
}

// Rotation turns the field by Angle radians.
type Rotation struct {
	Angle float64
}

func (r Rotation) Steps(p StepParams) []Step {
	if r.Angle == 0 {
		return nil
	}
	per := p.MaxAngularVelocity * p.Dt
	s := math.Copysign(1, r.Angle)
	n := int(math.Floor(math.Abs(r.Angle) / per))
	steps := make([]Step, 0, n+1+p.SettleSteps*max(1, p.LongestChain))
	for i := 0; i < n; i++ {
		steps = append(steps, Step{AngleChange: s * per, Elevation: p.Elevation})
	}
	if rem := math.Abs(r.Angle) - float64(n)*per; rem > 1e-12 {
		steps = append(steps, Step{AngleChange: s * rem, Elevation: p.Elevation})
	}
	for i := 0; i < p.SettleSteps*max(1, p.LongestChain); i++ {
		steps = append(steps, Step{Elevation: p.Elevation})
	}
	return steps
}

func (r Rotation) Cost() float64  { return math.Abs(r.Angle) }
func (r Rotation) String() string { return fmt.Sprintf("Rotation(%.3f)", r.Angle) }

// PivotWalk translates polyominoes along the field's east/west axis by
// rocking them on alternating rows.
type PivotWalk struct {
	Direction core.Direction // East or West
	Angle     float64        // pivot angle, positive
}

func (w PivotWalk) Steps(p StepParams) []Step {
	a := math.Abs(w.Angle)
	if w.Direction == core.East {
		a = -a
	}
	var steps []Step
	phase := func(t core.Tilt, angle float64) {
		steps = append(steps, Tilt{Level: t}.Steps(p)...)
		p.Elevation = t
		steps = append(steps, Rotation{Angle: angle}.Steps(p)...)
	}
	phase(core.TiltSouthDown, a)
	phase(core.TiltNorthDown, -2*a)
	phase(core.TiltSouthDown, a)
	steps = append(steps, Tilt{Level: core.TiltHorizontal}.Steps(p)...)
	return steps
}

func (w PivotWalk) Cost() float64 { return 4 * math.Abs(w.Angle) }
func (w PivotWalk) String() string {
	return fmt.Sprintf("PivotWalk(%v, %.3f)", w.Direction, w.Angle)
}

// Tilt changes the elevation in one step.
type Tilt struct {
	Level core.Tilt
}

func (t Tilt) Steps(StepParams) []Step { return []Step{{Elevation: t.Level}} }
func (t Tilt) Cost() float64           { return 0 }
func (t Tilt) String() string          { return fmt.Sprintf("Tilt(%v)", t.Level) }

// Idle lets the world settle for N steps.
type Idle struct {
	N int
}

func (i Idle) Steps(p StepParams) []Step {
	steps := make([]Step, i.N)
	for k := range steps {
		steps[k].Elevation = p.Elevation
	}
	return steps
}

func (i Idle) Cost() float64  { return 0 }
func (i Idle) String() string { return fmt.Sprintf("Idle(%d)", i.N) }

// MotionsCost sums the cost of motions.
func MotionsCost(ms []Motion) float64 {
	total := 0.0
	for _, m := range ms {
		total += m.Cost()
	}
	return total
}

// params returns the expansion parameters for the current state.
func (w *World) params() StepParams {
	w.mu.Lock()
	defer w.mu.Unlock()
	return StepParams{
		Dt:                 w.cfg.Dt,
		MaxAngularVelocity: w.cfg.MaxAngularVelocity,
		SettleSteps:        w.cfg.SettleSteps,
		LongestChain:       w.polys.LongestChain(),
		Elevation:          w.elevation,
	}
}

// Execute runs all steps of m. It stops early with the context's error.
func (w *World) Execute(ctx context.Context, m Motion) error {
	for i, s := range m.Steps(w.params()) {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		w.Step(s.AngleChange, s.Elevation)
	}
	return nil
}
