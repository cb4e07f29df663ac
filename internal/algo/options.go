package algo

import (
	"container/heap"
	"fmt"
	"strings"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

// Strategy orders the connection options at a search node.
type Strategy int

const (
	// MinDist tries the closest cube pair first.
	MinDist Strategy = iota
	// GrowLargest prefers connections that build the largest part.
	GrowLargest
	// GrowSmallest prefers connections that build the smallest part.
	GrowSmallest
)

var strategyNames = [...]string{"MIN_DIST", "GROW_LARGEST", "GROW_SMALLEST"}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// ParseStrategy accepts a strategy name in any case, with '-' or '_'.
func ParseStrategy(name string) (Strategy, error) {
	n := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	for i, s := range strategyNames {
		if s == n {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}

// Option is one connection the global planner may try.
type Option struct {
	A, B core.Cube
	Edge core.Direction
	Dist float64 // between the two cube centers
	Size int     // cubes in the part the connection builds
}

func (o Option) String() string {
	return fmt.Sprintf("%v d=%.1f size=%d", core.Connection{A: o.A, B: o.B, Edge: o.Edge}, o.Dist, o.Size)
}

// less orders options: by part size first for the grow strategies, then
// by distance, then by cube ids and edge for a stable order.
func (s Strategy) less(a, b Option) bool {
	switch s {
	case GrowLargest:
		if a.Size != b.Size {
			return a.Size > b.Size
		}
	case GrowSmallest:
		if a.Size != b.Size {
			return a.Size < b.Size
		}
	}
	if a.Dist != b.Dist {
		return a.Dist < b.Dist
	}
	if a.A.ID != b.A.ID {
		return a.A.ID < b.A.ID
	}
	if a.B.ID != b.B.ID {
		return a.B.ID < b.B.ID
	}
	return a.Edge < b.Edge
}

// optionQueue is the untried options of one configuration.
type optionQueue struct {
	items    []Option
	strategy Strategy
}

func (q optionQueue) Len() int           { return len(q.items) }
func (q optionQueue) Less(i, j int) bool { return q.strategy.less(q.items[i], q.items[j]) }
func (q optionQueue) Swap(i, j int)      { q.items[i], q.items[j] = q.items[j], q.items[i] }
func (q *optionQueue) Push(x any)        { q.items = append(q.items, x.(Option)) }
func (q *optionQueue) Pop() any {
	old := q.items
	n := len(old)
	x := old[n-1]
	q.items = old[:n-1]
	return x
}

func newOptionQueue(opts []Option, s Strategy) *optionQueue {
	q := &optionQueue{items: append([]Option(nil), opts...), strategy: s}
	heap.Init(q)
	return q
}

func (q *optionQueue) next() Option { return heap.Pop(q).(Option) }

// OrderOptions returns opts in the order strategy s tries them.
func OrderOptions(opts []Option, s Strategy) []Option {
	q := newOptionQueue(opts, s)
	out := make([]Option, 0, len(opts))
	for q.Len() > 0 {
		out = append(out, q.next())
	}
	return out
}

// Options lists the connections that move cfg one assembly step up the
// graph. Abstract cut links are bound to every live polyomino of the
// right shape.
func (g *TCSAGraph) Options(cfg *core.Configuration) []Option {
	pc := cfg.PolyCollection()
	n := g.Match(pc)
	if n == nil {
		return nil
	}
	groups := pc.Groups()
	seen := make(map[core.Connection]bool)
	var out []Option
	for _, e := range g.Edges[n.ID] {
		for _, pl := range groups[e.Cut.Left.Key()] {
			for _, pr := range groups[e.Cut.Right.Key()] {
				if pl == pr {
					continue
				}
				for _, l := range e.Cut.Links {
					a, okA := pl.CubeAt(l.A)
					b, okB := pr.CubeAt(l.B)
					if !okA || !okB {
						continue
					}
					conn := core.Connection{A: a, B: b, Edge: l.Edge}.Canonical()
					if seen[conn] {
						continue
					}
					seen[conn] = true
					out = append(out, Option{
						A:    a,
						B:    b,
						Edge: l.Edge,
						Dist: cfg.Position(a).Dist(cfg.Position(b)),
						Size: e.Result.Size(),
					})
				}
			}
		}
	}
	return out
}
