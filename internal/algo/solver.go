// Package algo plans magnetic cube reconfiguration.
//
// A GlobalPlanner cuts the target shape into a two-cut subassembly (TCSA)
// graph and searches it with backtracking. Each edge of the search is
// realized by the LocalPlanner, which drives a physics rollout until the
// two chosen cubes connect.
package algo

import (
	"context"
	"log/slog"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

// Planner is the interface for assembly planners.
type Planner interface {
	// Plan searches for a motion script that assembles target somewhere on
	// the board. The returned plan is never nil; failures are reported in
	// its State.
	Plan(ctx context.Context, initial *core.Configuration, target *core.Shape) *GlobalPlan

	// Name returns the planner name.
	Name() string
}

// PolyFilter restricts which polyomino collections a rollout may pass
// through.
type PolyFilter interface {
	Allows(pc *core.PolyCollection) bool
}

func allowed(f PolyFilter, pc *core.PolyCollection) bool {
	return f == nil || f.Allows(pc)
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
