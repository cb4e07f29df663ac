package algo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

// GlobalConfig tunes the global planner.
type GlobalConfig struct {
	Timeout  time.Duration // wall clock budget of one Plan call
	Strategy Strategy
	Local    LocalConfig
	Logger   *slog.Logger
}

// DefaultGlobalConfig returns the tuning used by the experiments.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		Timeout:  60 * time.Second,
		Strategy: MinDist,
		Local:    DefaultLocalConfig(),
	}
}

// Connector plans a single connection. *LocalPlanner is the physics
// backed implementation.
type Connector interface {
	PlanConnect(ctx context.Context, initial *core.Configuration, a, b core.Cube, edge core.Direction, filter PolyFilter) *LocalPlan
}

// GlobalPlanner assembles a target shape one connection at a time along
// the TCSA graph. It backtracks when a configuration runs out of options or
// a local plan ends in a global failure.
type GlobalPlanner struct {
	cfg   GlobalConfig
	local Connector
	log   *slog.Logger

	mu     sync.Mutex
	graphs map[string]*TCSAGraph
}

// NewGlobalPlanner creates a global planner. A nil local logger inherits
// the global one.
func NewGlobalPlanner(cfg GlobalConfig) *GlobalPlanner {
	if cfg.Local.Logger == nil {
		cfg.Local.Logger = cfg.Logger
	}
	return &GlobalPlanner{
		cfg:    cfg,
		local:  NewLocalPlanner(cfg.Local),
		log:    logger(cfg.Logger),
		graphs: make(map[string]*TCSAGraph),
	}
}

// WithConnector swaps the connection planner, mostly for tests.
func (g *GlobalPlanner) WithConnector(c Connector) *GlobalPlanner {
	g.local = c
	return g
}

func (g *GlobalPlanner) Name() string { return "TCSA-" + g.cfg.Strategy.String() }

// Graph returns the memoized TCSA graph of target.
func (g *GlobalPlanner) Graph(target *core.Shape) *TCSAGraph {
	g.mu.Lock()
	defer g.mu.Unlock()
	if tg, ok := g.graphs[target.Key()]; ok {
		return tg
	}
	tg := NewTCSAGraph(target)
	g.graphs[target.Key()] = tg
	return tg
}

// Plan implements Planner.
func (g *GlobalPlanner) Plan(ctx context.Context, initial *core.Configuration, target *core.Shape) *GlobalPlan {
	start := time.Now()
	plan := &GlobalPlan{
		Initial: initial,
		Target:  target,
		State:   Failure,
		States:  make(map[PlanState]int),
	}
	defer func() { plan.Elapsed = time.Since(start) }()

	if target == nil || !target.Valid() {
		plan.Reason = "invalid target shape"
		return plan
	}
	if initial.PolyCollection().CountShape(target) > 0 {
		plan.State, plan.Goal = Success, initial
		plan.ConfigsVisited = 1
		return plan
	}

	graph := g.Graph(target)
	plan.TCSANodes = graph.Len()
	if graph.Match(initial.PolyCollection()) == nil {
		plan.Reason = "initial polyominoes are not a TCSA node"
		return plan
	}

	var deadline time.Time
	if g.cfg.Timeout > 0 {
		deadline = start.Add(g.cfg.Timeout)
	}
	memo := make(map[string]*optionQueue)
	var stack []*LocalPlan
	cur := initial
	// backtrack pops the last commit and restores its start. It reports
	// false, recording reason, when nothing is left to undo.
	backtrack := func(reason string) bool {
		if len(stack) == 0 {
			plan.Reason = reason
			return false
		}
		last := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cur = last.Initial
		g.log.Debug("backtrack", "depth", len(stack), "undo", last.Connection(), "reason", reason)
		return true
	}

	for {
		if err := ctx.Err(); err != nil {
			plan.Reason = err.Error()
			return plan
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			plan.Reason = "timeout"
			return plan
		}

		key := cur.Key()
		q, ok := memo[key]
		if !ok {
			q = newOptionQueue(graph.Options(cur), g.cfg.Strategy)
			memo[key] = q
		}
		plan.ConfigsVisited = len(memo)

		if cur.PolyCollection().CountShape(target) > 0 {
			plan.State, plan.Goal = Success, cur
			plan.Actions = stack
			g.log.Info("assembled", "target", target.Key(), "connections", len(stack), "nlocal", plan.LocalCalls)
			return plan
		}

		if q.Len() == 0 {
			if !backtrack("options exhausted") {
				return plan
			}
			continue
		}

		opt := q.next()
		lp := g.local.PlanConnect(ctx, cur, opt.A, opt.B, opt.Edge, graph)
		plan.LocalCalls++
		plan.States[lp.State]++
		if lp.State.IsGlobalFailure() {
			if !backtrack(fmt.Sprintf("%v on %v", lp.State, opt)) {
				return plan
			}
			continue
		}
		if lp.Goal == nil {
			g.log.Debug("option failed", "option", opt.String(), "state", lp.State)
			continue
		}
		stack = append(stack, lp)
		cur = lp.Goal
		g.log.Info("connected", "option", opt.String(), "depth", len(stack), "cost", lp.Cost())
	}
}
