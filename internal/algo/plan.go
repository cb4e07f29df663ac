package algo

import (
	"fmt"
	"strings"
	"time"

	"github.com/elektrokombinacija/magcubes/internal/core"
	"github.com/elektrokombinacija/magcubes/internal/sim"
)

// PlanState is the terminal outcome of a plan.
type PlanState int

const (
	Success PlanState = iota
	Failure
	FailureSameType
	FailureConnect
	FailureSlideIn
	FailureInvalPoly
	FailureCave
	FailureStuck
	FailureMaxItr
	FailureAllowedPolys
)

var planStateNames = [...]string{
	"SUCCESS",
	"FAILURE",
	"FAILURE_SAME_TYPE",
	"FAILURE_CONNECT",
	"FAILURE_SLIDE_IN",
	"FAILURE_INVAL_POLY",
	"FAILURE_CAVE",
	"FAILURE_STUCK",
	"FAILURE_MAX_ITR",
	"FAILURE_ALLOWED_POLYS",
}

func (s PlanState) String() string {
	if s < 0 || int(s) >= len(planStateNames) {
		return fmt.Sprintf("PlanState(%d)", int(s))
	}
	return planStateNames[s]
}

// MarshalText encodes the state by name.
func (s PlanState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name.
func (s *PlanState) UnmarshalText(b []byte) error {
	name := strings.ToUpper(string(b))
	for i, n := range planStateNames {
		if n == name {
			*s = PlanState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown plan state %q", string(b))
}

// IsGlobalFailure reports whether s is more than a plain "this connection
// cannot be made": the global planner counts these separately.
func (s PlanState) IsGlobalFailure() bool {
	switch s {
	case FailureAllowedPolys, FailureMaxItr, FailureStuck, FailureCave, FailureInvalPoly, FailureSameType:
		return true
	}
	return false
}

// informative reports whether a failure tells more about the connection
// itself than about the rollout.
func (s PlanState) informative() bool {
	return s == FailureConnect || s == FailureSlideIn
}

// LocalPlan is a replayable motion script connecting cube A on the Edge
// side of cube B.
type LocalPlan struct {
	Initial *core.Configuration
	Goal    *core.Configuration // where the rollout ended; nil for preflight failures
	Actions []sim.Motion
	State   PlanState

	A, B core.Cube
	Edge core.Direction

	// Rollout candidate that produced the plan
	Approach core.Direction
	Walk     core.Direction
	Flip     bool
}

// Cost returns the summed motion cost in radians.
func (p *LocalPlan) Cost() float64 { return sim.MotionsCost(p.Actions) }

// Connection returns the connection the plan targets.
func (p *LocalPlan) Connection() core.Connection {
	return core.Connection{A: p.A, B: p.B, Edge: p.Edge}
}

func (p *LocalPlan) String() string {
	return fmt.Sprintf("%v %v walk=%v actions=%d cost=%.2f", p.Connection(), p.State, p.Walk, len(p.Actions), p.Cost())
}

// better reports whether p should be preferred over q.
func (p *LocalPlan) better(q *LocalPlan) bool {
	if q == nil {
		return true
	}
	ps, qs := p.State == Success, q.State == Success
	if ps != qs {
		return ps
	}
	if !ps && p.State.informative() != q.State.informative() {
		return p.State.informative()
	}
	return p.Cost() < q.Cost()
}

// GlobalPlan is an ordered list of local plans assembling a target shape.
type GlobalPlan struct {
	Initial *core.Configuration
	Goal    *core.Configuration
	Target  *core.Shape
	Actions []*LocalPlan
	State   PlanState
	Reason  string

	// Diagnostics
	ConfigsVisited int
	LocalCalls     int
	TCSANodes      int
	Elapsed        time.Duration
	States         map[PlanState]int // local plan outcomes
}

// Cost sums the local plan costs.
func (g *GlobalPlan) Cost() float64 {
	total := 0.0
	for _, lp := range g.Actions {
		total += lp.Cost()
	}
	return total
}

// Motions flattens the plan into one motion script.
func (g *GlobalPlan) Motions() []sim.Motion {
	var out []sim.Motion
	for _, lp := range g.Actions {
		out = append(out, lp.Actions...)
	}
	return out
}

func (g *GlobalPlan) String() string {
	s := fmt.Sprintf("%v connections=%d cost=%.2f nlocal=%d configs=%d tcsa=%d elapsed=%v",
		g.State, len(g.Actions), g.Cost(), g.LocalCalls, g.ConfigsVisited, g.TCSANodes, g.Elapsed.Round(time.Millisecond))
	if g.Reason != "" {
		s += " (" + g.Reason + ")"
	}
	return s
}
