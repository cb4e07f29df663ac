package algo

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/elektrokombinacija/magcubes/internal/core"
	"github.com/elektrokombinacija/magcubes/internal/sim"
)

// LocalConfig tunes the local planner.
type LocalConfig struct {
	// Pivot angle of every walk (rad)
	PivotAngle float64

	// Below this distance to the target pose magnets finish the job
	CriticalDistance float64

	// Walked distance budget as a multiple of the board perimeter
	DistanceFactor float64

	// Hard cap on rollout iterations
	MaxIterations int

	// A cube moving less than StuckOffset in an iteration counts as
	// stuck; StuckLimit stuck iterations in a row trigger recovery.
	StuckOffset float64
	StuckLimit  int

	// Idle length while magnets settle, and how many idle rounds the
	// stuck recovery waits at most
	IdleSteps    int
	SettleRounds int

	// Alignment rotations smaller than this are skipped
	MinRotation float64

	// Also try every candidate after a half turn of the field
	PreFlip bool

	// Run candidates concurrently; the first success cancels the rest
	Parallel bool

	Sim    sim.Config
	Logger *slog.Logger
}

// DefaultLocalConfig returns the tuning used by the experiments.
func DefaultLocalConfig() LocalConfig {
	return LocalConfig{
		PivotAngle:       math.Pi / 6,
		CriticalDistance: core.CubeRadius,
		DistanceFactor:   2,
		MaxIterations:    200,
		StuckOffset:      1,
		StuckLimit:       3,
		IdleSteps:        30,
		SettleRounds:     10,
		MinRotation:      0.01,
		PreFlip:          true,
		Parallel:         true,
		Sim:              sim.DefaultConfig(),
	}
}

// LocalPlanner connects two cubes through physics rollouts.
type LocalPlanner struct {
	cfg LocalConfig
	log *slog.Logger
}

// NewLocalPlanner creates a local planner.
func NewLocalPlanner(cfg LocalConfig) *LocalPlanner {
	return &LocalPlanner{cfg: cfg, log: logger(cfg.Logger)}
}

// Config returns the planner tuning.
func (lp *LocalPlanner) Config() LocalConfig { return lp.cfg }

// candidate is one rollout strategy: the side of A's polyomino that B
// arrives from, the walk direction, and whether the field first turns
// half way round.
type candidate struct {
	approach core.Direction
	walk     core.Direction
	flip     bool
}

func (c candidate) String() string {
	s := fmt.Sprintf("%v/%v", c.approach, c.walk)
	if c.flip {
		s += "/flip"
	}
	return s
}

// PlanConnect plans to put cube a on the edge side of cube b. Structural
// problems are reported before any simulation runs. With a filter, every
// intermediate collection must pass it.
func (lp *LocalPlanner) PlanConnect(ctx context.Context, initial *core.Configuration, a, b core.Cube, edge core.Direction, filter PolyFilter) *LocalPlan {
	plan := &LocalPlan{Initial: initial, A: a, B: b, Edge: edge}
	fail := func(s PlanState) *LocalPlan {
		plan.State = s
		lp.log.Debug("local preflight", "conn", plan.Connection(), "state", s)
		return plan
	}

	if edge.IsSide() && a.Type == b.Type {
		return fail(FailureSameType)
	}
	pc := initial.PolyCollection()
	if !allowed(filter, pc) {
		return fail(FailureAllowedPolys)
	}
	polyA, polyB := pc.PolyOf(a), pc.PolyOf(b)
	if polyA == nil || polyB == nil {
		return fail(Failure)
	}
	if !pc.IsValid() {
		return fail(FailureInvalPoly)
	}
	if polyA == polyB {
		if n, ok := polyB.Neighbor(b, edge); ok && n == a {
			plan.Goal = initial
			return fail(Success)
		}
		return fail(FailureConnect)
	}
	merged := polyA.ConnectPoly(a, polyB, b, edge)
	if merged == nil {
		return fail(FailureConnect)
	}
	if !merged.IsValid() {
		return fail(FailureInvalPoly)
	}
	if polyB.IsCave(b, edge) || polyA.IsCave(a, edge.Inv()) {
		return fail(FailureCave)
	}

	var cands []candidate
	for _, ap := range approaches(edge) {
		if !polyA.ConnectPolyPossible(a, polyB, b, edge, ap) {
			continue
		}
		for _, walk := range []core.Direction{core.West, core.East} {
			cands = append(cands, candidate{approach: ap, walk: walk})
		}
	}
	if len(cands) == 0 {
		return fail(FailureSlideIn)
	}
	if lp.cfg.PreFlip {
		for _, c := range cands {
			c.flip = true
			cands = append(cands, c)
		}
	}

	var best *LocalPlan
	if lp.cfg.Parallel {
		best = lp.runParallel(ctx, initial, a, b, edge, cands, filter)
	} else {
		for _, c := range cands {
			p := lp.rollout(ctx, initial, a, b, edge, c, filter)
			if p != nil && p.better(best) {
				best = p
			}
		}
	}
	if best == nil {
		return fail(Failure)
	}
	lp.log.Debug("local plan", "plan", best.String())
	return best
}

// runParallel rolls out every candidate on its own world. The first
// success cancels the others; otherwise the best finished plan wins.
func (lp *LocalPlanner) runParallel(ctx context.Context, initial *core.Configuration, a, b core.Cube, edge core.Direction, cands []candidate, filter PolyFilter) *LocalPlan {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*LocalPlan, len(cands))
	var wg sync.WaitGroup
	for i, c := range cands {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := lp.rollout(ctx, initial, a, b, edge, c, filter)
			results[i] = p
			if p != nil && p.State == Success {
				cancel()
			}
		}()
	}
	wg.Wait()

	var best *LocalPlan
	for _, p := range results {
		if p != nil && p.better(best) {
			best = p
		}
	}
	return best
}

// rollout drives one candidate until a terminal state. It returns nil if
// ctx is canceled first.
func (lp *LocalPlanner) rollout(ctx context.Context, initial *core.Configuration, a, b core.Cube, edge core.Direction, c candidate, filter PolyFilter) *LocalPlan {
	cfg := lp.cfg
	w := sim.NewWorld(cfg.Sim, initial)
	plan := &LocalPlan{Initial: initial, A: a, B: b, Edge: edge, Approach: c.approach, Walk: c.walk, Flip: c.flip}

	canceled := false
	exec := func(m sim.Motion) {
		plan.Actions = append(plan.Actions, m)
		if err := w.Execute(ctx, m); err != nil {
			canceled = true
		}
	}
	done := func() bool {
		if canceled {
			return true
		}
		s, ok := terminal(w, a, b, edge, filter)
		if ok {
			plan.State = s
		}
		return ok
	}
	finish := func(s PlanState) *LocalPlan {
		if canceled {
			return nil
		}
		plan.State = s
		plan.Goal = w.Snapshot()
		lp.log.Debug("rollout", "conn", plan.Connection(), "candidate", c.String(),
			"state", plan.State, "actions", len(plan.Actions), "steps", w.Metrics().Steps)
		return plan
	}

	if c.flip {
		exec(sim.Rotation{Angle: math.Pi})
		if done() {
			return finish(plan.State)
		}
	}

	budget := cfg.DistanceFactor * initial.Perimeter()
	walked := 0.0
	prog := &progress{offset: cfg.StuckOffset, limit: cfg.StuckLimit, a: w.Position(a), b: w.Position(b)}

	for it := 0; it < cfg.MaxIterations; it++ {
		if rot := alignment(w, a, b, edge, c.approach); math.Abs(rot) > cfg.MinRotation {
			exec(sim.Rotation{Angle: rot})
			if done() {
				return finish(plan.State)
			}
		}

		if d := targetDistance(w, a, b, edge); d > cfg.CriticalDistance {
			per := walkDistance(w, a, b, cfg.PivotAngle)
			n := max(1, int(math.Ceil(d/per))/2)
			for k := 0; k < n; k++ {
				exec(sim.PivotWalk{Direction: c.walk, Angle: cfg.PivotAngle})
				walked += per
				if done() {
					return finish(plan.State)
				}
			}
		} else {
			exec(sim.Idle{N: cfg.IdleSteps})
			if done() {
				return finish(plan.State)
			}
		}
		if walked > budget {
			return finish(FailureMaxItr)
		}

		if !prog.step(w.Position(a), w.Position(b)) {
			continue
		}

		// Recovery: point A straight at its slot and let the magnets work.
		if rot := straightAlignment(w, a, b, edge); math.Abs(rot) > cfg.MinRotation {
			exec(sim.Rotation{Angle: rot})
			if done() {
				return finish(plan.State)
			}
		}
		ra, rb := w.Position(a), w.Position(b)
		for r := 0; r < cfg.SettleRounds && !canceled; r++ {
			before := w.Position(a).Dist(w.Position(b))
			exec(sim.Idle{N: cfg.IdleSteps})
			if math.Abs(w.Position(a).Dist(w.Position(b))-before) < cfg.StuckOffset {
				break
			}
		}
		if done() {
			return finish(plan.State)
		}
		// Magnets that still pull the pair along get another round of walks.
		if prog.recovered(ra, rb, w.Position(a), w.Position(b)) {
			continue
		}
		return finish(FailureStuck)
	}
	return finish(FailureMaxItr)
}

// progress counts iterations in a row in which neither cube of the pair
// moved by offset.
type progress struct {
	offset float64
	limit  int
	stuck  int
	a, b   core.Vec
}

// step records the pair's positions after an iteration and reports whether
// the pair has now been stuck limit times in a row.
func (p *progress) step(a, b core.Vec) bool {
	if a.Dist(p.a) < p.offset && b.Dist(p.b) < p.offset {
		p.stuck++
	} else {
		p.stuck = 0
	}
	p.a, p.b = a, b
	return p.stuck >= p.limit
}

// recovered reports whether a recovery that started at fromA, fromB moved
// the pair. If so the count restarts from the new positions.
func (p *progress) recovered(fromA, fromB, a, b core.Vec) bool {
	if a.Dist(fromA) < p.offset && b.Dist(fromB) < p.offset {
		return false
	}
	p.stuck = 0
	p.a, p.b = a, b
	return true
}

func terminal(w *sim.World, a, b core.Cube, edge core.Direction, filter PolyFilter) (PlanState, bool) {
	pc := w.PolyCollection()
	if !pc.IsValid() {
		return FailureInvalPoly, true
	}
	if !allowed(filter, pc) {
		return FailureAllowedPolys, true
	}
	if w.Linked(a, b, edge) {
		return Success, true
	}
	if pc.PolyOf(a) == pc.PolyOf(b) {
		return FailureConnect, true
	}
	return Failure, false
}

// targetDistance is how far a is from its slot next to b.
func targetDistance(w *sim.World, a, b core.Cube, edge core.Direction) float64 {
	slot := w.Position(b).Add(edge.Vec(w.FieldAngle()).Scale(core.CubeSize))
	return w.Position(a).Dist(slot)
}

// walkDistance estimates how far one pivot walk carries the taller of the
// two polyominoes.
func walkDistance(w *sim.World, a, b core.Cube, pivot float64) float64 {
	pc := w.PolyCollection()
	h := 1
	for _, c := range []core.Cube{a, b} {
		if p := pc.PolyOf(c); p != nil {
			h = max(h, p.Height())
		}
	}
	return 2 * math.Sin(pivot) * float64(h) * core.CubeSize
}

// alignment returns the field rotation that lines a and b up for walking.
// For side edges b must lie straight along the field's east/west axis. For
// north/south edges b keeps one cube of vertical offset so that the walk
// slides it under or over a from the approach side.
func alignment(w *sim.World, a, b core.Cube, edge, approach core.Direction) float64 {
	v := w.Position(b).Sub(w.Position(a))
	var want float64
	if edge.IsSide() {
		want = v.Angle() - edge.Inv().Angle()
	} else {
		l, s := v.Len(), core.CubeSize
		dy := -s
		if edge == core.South {
			dy = s
		}
		dx := 0.0
		if l > s {
			dx = math.Sqrt(l*l - s*s)
		}
		if approach == core.West {
			dx = -dx
		}
		want = v.Angle() - math.Atan2(dy, dx)
	}
	return core.WrapAngle(want - w.FieldAngle())
}

// straightAlignment points the field so that a lies on the edge side of b.
func straightAlignment(w *sim.World, a, b core.Cube, edge core.Direction) float64 {
	v := w.Position(a).Sub(w.Position(b))
	return core.WrapAngle(v.Angle() - edge.Angle() - w.FieldAngle())
}
