package algo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/magcubes/internal/core"
	"github.com/elektrokombinacija/magcubes/internal/sim"
)

func sequentialGlobal() GlobalConfig {
	cfg := DefaultGlobalConfig()
	cfg.Local.Parallel = false
	return cfg
}

func TestGlobalTargetAlreadyPresent(t *testing.T) {
	initial, _ := layout(placed{core.TypeRed, 100, 100}, placed{core.TypeBlue, 120, 100}, placed{core.TypeRed, 300, 100})
	g := NewGlobalPlanner(sequentialGlobal())

	p := g.Plan(context.Background(), initial, shapeOf("RB"))
	assert.Equal(t, Success, p.State)
	assert.Empty(t, p.Actions)
	assert.Zero(t, p.LocalCalls)
	assert.Same(t, initial, p.Goal)
}

func TestGlobalInitialNotInGraph(t *testing.T) {
	// A vertical domino never shows up in a cut of a flat line.
	initial, _ := layout(
		placed{core.TypeRed, 100, 100},
		placed{core.TypeBlue, 100, 120},
		placed{core.TypeRed, 200, 100},
		placed{core.TypeBlue, 300, 100},
	)
	require.Equal(t, 3, initial.PolyCollection().Len())
	g := NewGlobalPlanner(sequentialGlobal())

	p := g.Plan(context.Background(), initial, shapeOf("RBRB"))
	assert.Equal(t, Failure, p.State)
	assert.Zero(t, p.LocalCalls)
	assert.Empty(t, p.Actions)
	assert.Nil(t, p.Goal)
	assert.Positive(t, p.TCSANodes)
	assert.NotEmpty(t, p.Reason)
}

func TestGlobalInvalidTarget(t *testing.T) {
	initial, _ := layout(placed{core.TypeRed, 100, 100}, placed{core.TypeRed, 300, 100})
	p := NewGlobalPlanner(sequentialGlobal()).Plan(context.Background(), initial, shapeOf("RR"))
	assert.Equal(t, Failure, p.State)
	assert.Zero(t, p.LocalCalls)
}

func TestGlobalTimeout(t *testing.T) {
	initial, _ := layout(placed{core.TypeRed, 100, 100}, placed{core.TypeBlue, 300, 100})
	cfg := sequentialGlobal()
	cfg.Timeout = time.Nanosecond
	p := NewGlobalPlanner(cfg).Plan(context.Background(), initial, shapeOf("RB"))
	assert.Equal(t, Failure, p.State)
	assert.Equal(t, "timeout", p.Reason)
	assert.Zero(t, p.LocalCalls)
}

func TestGlobalAssemblesDomino(t *testing.T) {
	initial, c := layout(placed{core.TypeRed, 100, 100}, placed{core.TypeBlue, 300, 100})
	cfg := sequentialGlobal()
	g := NewGlobalPlanner(cfg)
	target := shapeOf("RB")

	p := g.Plan(context.Background(), initial, target)
	require.Equal(t, Success, p.State, p.String())
	require.Len(t, p.Actions, 1)
	assert.Equal(t, 1, p.LocalCalls)
	assert.Equal(t, 1, p.States[Success])
	assert.Equal(t, 2, p.TCSANodes)
	assert.Equal(t, core.Connection{A: c[0], B: c[1], Edge: core.West}, p.Actions[0].Connection())
	assert.Equal(t, 1, p.Goal.PolyCollection().CountShape(target))
	assert.InDelta(t, p.Actions[0].Cost(), p.Cost(), 1e-12)

	got, err := sim.Replay(context.Background(), cfg.Local.Sim, initial, p.Motions(), nil)
	require.NoError(t, err)
	assert.Equal(t, p.Goal.Key(), got.Key())

	assert.Same(t, g.Graph(target), g.Graph(shapeOf("RB")), "graphs are memoized per shape")
}

func TestOptionsBindLiveCubes(t *testing.T) {
	initial, c := layout(
		placed{core.TypeRed, 100, 100},
		placed{core.TypeBlue, 300, 100},
		placed{core.TypeRed, 200, 150},
	)
	g := NewTCSAGraph(shapeOf("RB"))
	opts := g.Options(initial)
	require.Len(t, opts, 2)

	ordered := OrderOptions(opts, MinDist)
	assert.Equal(t, c[2], ordered[0].A, "the closer red goes first")
	assert.Equal(t, c[0], ordered[1].A)
	for _, o := range ordered {
		assert.Equal(t, c[1], o.B)
		assert.Equal(t, core.West, o.Edge)
		assert.Equal(t, 2, o.Size)
	}
}

func TestOrderOptions(t *testing.T) {
	cube := func(id int) core.Cube { return core.Cube{ID: core.CubeID(id)} }
	opt := func(a, b int, dist float64, size int) Option {
		return Option{A: cube(a), B: cube(b), Dist: dist, Size: size}
	}
	opts := []Option{opt(1, 2, 5, 2), opt(3, 4, 1, 3), opt(5, 6, 3, 3), opt(7, 8, 5, 2)}

	ids := func(os []Option) []core.CubeID {
		out := make([]core.CubeID, len(os))
		for i, o := range os {
			out[i] = o.A.ID
		}
		return out
	}
	assert.Equal(t, []core.CubeID{3, 5, 1, 7}, ids(OrderOptions(opts, MinDist)))
	assert.Equal(t, []core.CubeID{3, 5, 1, 7}, ids(OrderOptions(opts, GrowLargest)))
	assert.Equal(t, []core.CubeID{1, 7, 3, 5}, ids(OrderOptions(opts, GrowSmallest)))

	// Equal distance falls back to ids.
	tie := []Option{opt(9, 2, 4, 2), opt(2, 9, 4, 2), opt(2, 3, 4, 2)}
	assert.Equal(t, []core.CubeID{2, 2, 9}, ids(OrderOptions(tie, MinDist)))

	s, err := ParseStrategy("grow-largest")
	require.NoError(t, err)
	assert.Equal(t, GrowLargest, s)
	_, err = ParseStrategy("shortest")
	assert.Error(t, err)
}

// scripted answers connection requests from a fixed list of outcomes.
type scripted struct {
	replies []LocalPlan
	seen    []*core.Configuration
}

func (s *scripted) PlanConnect(_ context.Context, initial *core.Configuration, a, b core.Cube, edge core.Direction, _ PolyFilter) *LocalPlan {
	s.seen = append(s.seen, initial)
	out := LocalPlan{State: Failure}
	if len(s.replies) > 0 {
		out, s.replies = s.replies[0], s.replies[1:]
	}
	out.Initial, out.A, out.B, out.Edge = initial, a, b, edge
	return &out
}

func TestGlobalCommitAndBacktrack(t *testing.T) {
	initial, c := layout(placed{core.TypeRed, 100, 100}, placed{core.TypeBlue, 200, 100}, placed{core.TypeRed, 300, 100})
	arrange := func(pos ...core.Vec) *core.Configuration {
		states := make([]core.CubeState, len(c))
		for i := range c {
			states[i] = core.CubeState{Cube: c[i], Pos: pos[i]}
		}
		return core.NewConfiguration(400, 200, 0, core.TiltHorizontal, states)
	}
	domino := arrange(core.V(180, 100), core.V(200, 100), core.V(300, 100))
	line := arrange(core.V(180, 100), core.V(200, 100), core.V(220, 100))
	target := shapeOf("RBR")
	require.Equal(t, 1, line.PolyCollection().CountShape(target))
	require.GreaterOrEqual(t, len(NewTCSAGraph(target).Options(initial)), 2)
	require.NotEmpty(t, NewTCSAGraph(target).Options(domino))

	tests := []struct {
		name      string
		replies   []LocalPlan
		want      PlanState
		calls     int
		committed []PlanState
		check     func(t *testing.T, s *scripted, p *GlobalPlan)
	}{
		{
			name: "global failure backtracks",
			replies: []LocalPlan{
				{State: Success, Goal: domino},
				{State: FailureStuck, Goal: domino},
				{State: Success, Goal: line},
			},
			want:      Success,
			calls:     3,
			committed: []PlanState{Success},
			check: func(t *testing.T, s *scripted, p *GlobalPlan) {
				assert.Same(t, domino, s.seen[1])
				assert.Same(t, initial, s.seen[2], "the stuck option undoes the domino")
				assert.Equal(t, 1, p.States[FailureStuck])
			},
		},
		{
			name:    "global failure at the root aborts",
			replies: []LocalPlan{{State: FailureCave}, {State: Success, Goal: line}},
			want:    Failure,
			calls:   1,
			check: func(t *testing.T, _ *scripted, p *GlobalPlan) {
				assert.Contains(t, p.Reason, FailureCave.String())
				assert.Nil(t, p.Goal)
			},
		},
		{
			name:      "plain failure with a goal commits",
			replies:   []LocalPlan{{State: FailureConnect, Goal: line}},
			want:      Success,
			calls:     1,
			committed: []PlanState{FailureConnect},
		},
		{
			name:      "failure without goal tries the next option",
			replies:   []LocalPlan{{State: FailureSlideIn}, {State: Success, Goal: line}},
			want:      Success,
			calls:     2,
			committed: []PlanState{Success},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &scripted{replies: tt.replies}
			p := NewGlobalPlanner(sequentialGlobal()).WithConnector(s).Plan(context.Background(), initial, target)
			require.Equal(t, tt.want, p.State, p.Reason)
			assert.Equal(t, tt.calls, p.LocalCalls)
			var committed []PlanState
			for _, lp := range p.Actions {
				committed = append(committed, lp.State)
			}
			assert.Equal(t, tt.committed, committed)
			if tt.want == Success {
				assert.Same(t, line, p.Goal)
			}
			if tt.check != nil {
				tt.check(t, s, p)
			}
		})
	}
}

func TestGlobalAssemblesLine(t *testing.T) {
	initial, _ := layout(placed{core.TypeRed, 60, 100}, placed{core.TypeBlue, 200, 100}, placed{core.TypeRed, 340, 100})
	cfg := DefaultGlobalConfig()
	target := shapeOf("RBR")

	p := NewGlobalPlanner(cfg).Plan(context.Background(), initial, target)
	require.Equal(t, Success, p.State, p.String())
	assert.Len(t, p.Actions, target.Size()-1)
	assert.Equal(t, 1, p.Goal.PolyCollection().CountShape(target))
	for i := 1; i < len(p.Actions); i++ {
		assert.Same(t, p.Actions[i-1].Goal, p.Actions[i].Initial, "commits chain")
	}

	got, err := sim.Replay(context.Background(), cfg.Local.Sim, initial, p.Motions(), nil)
	require.NoError(t, err)
	assert.Equal(t, p.Goal.Key(), got.Key())
}
