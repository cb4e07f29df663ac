package state

import (
	"context"
	"sync"

	"github.com/elektrokombinacija/magcubes/internal/algo"
	"github.com/elektrokombinacija/magcubes/internal/core"
)

// PlannerState runs one planner call in the background so the UI keeps
// drawing while it searches.
type PlannerState struct {
	mu sync.Mutex

	Active bool
	Name   string
	Last   *algo.GlobalPlan // most recent finished plan

	cancel context.CancelFunc
	done   chan *algo.GlobalPlan
}

// NewPlannerState creates an idle planner state.
func NewPlannerState() *PlannerState {
	return &PlannerState{}
}

// Start plans target from initial. It does nothing if a search is already
// running. notify, if set, is called from the worker when the plan is in.
func (p *PlannerState) Start(ctx context.Context, planner algo.Planner, initial *core.Configuration, target *core.Shape, notify func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Active {
		return false
	}
	ctx, cancel := context.WithCancel(ctx)
	p.Active, p.Name, p.cancel = true, planner.Name(), cancel
	done := make(chan *algo.GlobalPlan, 1)
	p.done = done

	go func() {
		done <- planner.Plan(ctx, initial, target)
		if notify != nil {
			notify()
		}
	}()
	return true
}

// Stop cancels a running search. Its plan still arrives through Poll.
func (p *PlannerState) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// Poll returns the finished plan exactly once, or nil while searching or
// when idle.
func (p *PlannerState) Poll() *algo.GlobalPlan {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.Active {
		return nil
	}
	select {
	case plan := <-p.done:
		p.Active = false
		p.Last = plan
		p.cancel()
		p.cancel = nil
		return plan
	default:
		return nil
	}
}

// Wait blocks until the running search finishes and returns its plan.
func (p *PlannerState) Wait() *algo.GlobalPlan {
	p.mu.Lock()
	done, active := p.done, p.Active
	p.mu.Unlock()
	if !active {
		return nil
	}
	plan := <-done
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Active = false
	p.Last = plan
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	return plan
}

// Running reports whether a search is in flight.
func (p *PlannerState) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Active
}

// Status is a one-line description for the toolbar.
func (p *PlannerState) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.Active:
		return p.Name + ": planning..."
	case p.Last != nil:
		return p.Name + ": " + p.Last.String()
	default:
		return ""
	}
}
