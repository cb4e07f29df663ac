package algo

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

// CutLink is one grid contact across a cut: the cube at A in the left part
// sits on the Edge side of the cube at B in the right part.
type CutLink struct {
	A, B core.Cell
	Edge core.Direction
}

// Cut splits a shape into two connected parts. Left holds the shape's
// origin cell. Offsets place each part's origin in the parent grid.
type Cut struct {
	Left, Right             *core.Shape
	LeftOffset, RightOffset core.Cell
	Links                   []CutLink
}

// NodeID is a TCSA graph node identifier.
type NodeID int

// Node is a multiset of shapes that assembles into the target.
type Node struct {
	ID    NodeID
	Parts []*core.Shape // ordered by key
	Key   string

	counts map[string]int
}

// TCSAEdge merges the Left and Right parts of node From into the Result
// part of node To.
type TCSAEdge struct {
	From, To NodeID
	Cut      Cut
	Result   *core.Shape
}

// TCSAGraph is the two-cut subassembly graph of a target shape. Nodes are
// reached from the target by cutting one part at a time; edges point the
// other way, from a finer node to the coarser node an assembly step yields.
type TCSAGraph struct {
	Target *core.Shape
	Nodes  map[NodeID]*Node
	Edges  map[NodeID][]TCSAEdge // outgoing assembly steps
	Root   NodeID

	byKey map[string]NodeID
	cuts  map[string][]Cut

	mu      sync.Mutex
	matched map[string]*Node
}

// NewTCSAGraph builds the graph breadth-first from the target.
func NewTCSAGraph(target *core.Shape) *TCSAGraph {
	g := &TCSAGraph{
		Target:  target,
		Nodes:   make(map[NodeID]*Node),
		Edges:   make(map[NodeID][]TCSAEdge),
		byKey:   make(map[string]NodeID),
		cuts:    make(map[string][]Cut),
		matched: make(map[string]*Node),
	}
	root, _ := g.addNode([]*core.Shape{target})
	g.Root = root.ID

	queue := []NodeID{root.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := g.Nodes[id]

		done := make(map[string]bool)
		for i, part := range n.Parts {
			if part.Size() < 2 || done[part.Key()] {
				continue
			}
			done[part.Key()] = true
			for _, c := range g.Cuts(part) {
				parts := make([]*core.Shape, 0, len(n.Parts)+1)
				parts = append(parts, n.Parts[:i]...)
				parts = append(parts, n.Parts[i+1:]...)
				parts = append(parts, c.Left, c.Right)
				child, fresh := g.addNode(parts)
				if fresh {
					queue = append(queue, child.ID)
				}
				g.Edges[child.ID] = append(g.Edges[child.ID], TCSAEdge{From: child.ID, To: id, Cut: c, Result: part})
			}
		}
	}
	return g
}

func nodeKey(parts []*core.Shape) string {
	keys := make([]string, len(parts))
	for i, p := range parts {
		keys[i] = p.Key()
	}
	return strings.Join(keys, "|")
}

func (g *TCSAGraph) addNode(parts []*core.Shape) (*Node, bool) {
	sort.Slice(parts, func(i, j int) bool { return parts[i].Key() < parts[j].Key() })
	key := nodeKey(parts)
	if id, ok := g.byKey[key]; ok {
		return g.Nodes[id], false
	}
	n := &Node{
		ID:     NodeID(len(g.Nodes)),
		Parts:  parts,
		Key:    key,
		counts: make(map[string]int, len(parts)),
	}
	for _, p := range parts {
		n.counts[p.Key()]++
	}
	g.Nodes[n.ID] = n
	g.byKey[key] = n.ID
	return n, true
}

// Len returns the node count.
func (g *TCSAGraph) Len() int { return len(g.Nodes) }

// Node returns the node with the given key.
func (g *TCSAGraph) Node(key string) (*Node, bool) {
	id, ok := g.byKey[key]
	if !ok {
		return nil, false
	}
	return g.Nodes[id], true
}

// Match finds the node a live collection stands at: every part of the node
// is present, everything else is a single cube. The node with the fewest
// parts wins.
func (g *TCSAGraph) Match(pc *core.PolyCollection) *Node {
	key := pc.Key()
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.matched[key]; ok {
		return n
	}
	n := g.match(pc)
	g.matched[key] = n
	return n
}

func (g *TCSAGraph) match(pc *core.PolyCollection) *Node {
	if id, ok := g.byKey[pc.Key()]; ok {
		return g.Nodes[id]
	}
	live := pc.Shapes()
	sizes := make(map[string]int, len(live))
	for _, p := range pc.Polyominoes() {
		sizes[p.Key()] = p.Size()
	}

	var best *Node
	for id := NodeID(0); int(id) < len(g.Nodes); id++ {
		n := g.Nodes[id]
		if best != nil && len(n.Parts) >= len(best.Parts) {
			continue
		}
		ok := true
		for k, c := range n.counts {
			if live[k] < c {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for k, c := range live {
			if c > n.counts[k] && sizes[k] > 1 {
				ok = false
				break
			}
		}
		if ok {
			best = n
		}
	}
	return best
}

// Allows reports whether pc matches a node.
func (g *TCSAGraph) Allows(pc *core.PolyCollection) bool {
	return g.Match(pc) != nil
}

// Cuts returns every split of s into exactly two connected parts, found
// along monotone cutting paths. Results are memoized per shape key.
func (g *TCSAGraph) Cuts(s *core.Shape) []Cut {
	if c, ok := g.cuts[s.Key()]; ok {
		return c
	}
	c := EnumerateCuts(s)
	g.cuts[s.Key()] = c
	return c
}

type adjacency struct{ lo, hi core.Cell }

func pair(p, q core.Cell) adjacency {
	if q.Less(p) {
		p, q = q, p
	}
	return adjacency{p, q}
}

// EnumerateCuts walks monotone paths over the grid corners of s. A path
// starts at a boundary corner, moves in one horizontal and one vertical
// direction at most, and may only cross contacts between two occupied
// cells. Every prefix ending on the boundary is a cut candidate; it counts
// when it leaves exactly two components that can slide together.
func EnumerateCuts(s *core.Shape) []Cut {
	if s.Size() < 2 {
		return nil
	}
	cells := s.Cells()
	lo, hi := cells[0], cells[0]
	for _, c := range cells {
		lo.X, lo.Y = min(lo.X, c.X), min(lo.Y, c.Y)
		hi.X, hi.Y = max(hi.X, c.X), max(hi.Y, c.Y)
	}

	// Corner (x, y) is the lower left corner of cell (x, y).
	boundary := func(v core.Cell) bool {
		n := 0
		for _, c := range [4]core.Cell{{X: v.X - 1, Y: v.Y - 1}, {X: v.X, Y: v.Y - 1}, {X: v.X - 1, Y: v.Y}, v} {
			if s.Has(c) {
				n++
			}
		}
		return n > 0 && n < 4
	}
	crossing := func(v core.Cell, d core.Direction) (adjacency, bool) {
		var p, q core.Cell
		switch d {
		case core.East:
			p, q = core.Cell{X: v.X, Y: v.Y - 1}, v
		case core.West:
			p, q = core.Cell{X: v.X - 1, Y: v.Y - 1}, core.Cell{X: v.X - 1, Y: v.Y}
		case core.North:
			p, q = core.Cell{X: v.X - 1, Y: v.Y}, v
		case core.South:
			p, q = core.Cell{X: v.X - 1, Y: v.Y - 1}, core.Cell{X: v.X, Y: v.Y - 1}
		}
		return pair(p, q), s.Has(p) && s.Has(q)
	}

	seen := make(map[string]bool)
	var out []Cut
	var removed []adjacency

	var walk func(v core.Cell, dirs [2]core.Direction)
	walk = func(v core.Cell, dirs [2]core.Direction) {
		if len(removed) > 0 && boundary(v) {
			if c, ok := splitShape(s, removed); ok {
				k := c.Left.Key() + "@" + strconv.Itoa(c.LeftOffset.X) + "," + strconv.Itoa(c.LeftOffset.Y) +
					"/" + c.Right.Key() + "@" + strconv.Itoa(c.RightOffset.X) + "," + strconv.Itoa(c.RightOffset.Y)
				if !seen[k] {
					seen[k] = true
					out = append(out, c)
				}
			}
		}
		for _, d := range dirs {
			a, ok := crossing(v, d)
			if !ok {
				continue
			}
			removed = append(removed, a)
			walk(v.Step(d), dirs)
			removed = removed[:len(removed)-1]
		}
	}

	quadrants := [][2]core.Direction{
		{core.East, core.North}, {core.East, core.South},
		{core.West, core.North}, {core.West, core.South},
	}
	for x := lo.X; x <= hi.X+1; x++ {
		for y := lo.Y; y <= hi.Y+1; y++ {
			v := core.Cell{X: x, Y: y}
			if !boundary(v) {
				continue
			}
			for _, q := range quadrants {
				walk(v, q)
			}
		}
	}
	return out
}

// splitShape removes the given contacts from s and returns the cut if
// exactly two components remain and at least one crossing link can be
// closed by sliding.
func splitShape(s *core.Shape, removed []adjacency) (Cut, bool) {
	cut := make(map[adjacency]bool, len(removed))
	for _, a := range removed {
		cut[a] = true
	}
	comp := make(map[core.Cell]int, s.Size())
	n := 0
	for _, start := range s.Cells() {
		if _, ok := comp[start]; ok {
			continue
		}
		if n == 2 {
			return Cut{}, false
		}
		comp[start] = n
		queue := []core.Cell{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, d := range core.Directions() {
				nb := cur.Step(d)
				if _, done := comp[nb]; done || !s.Has(nb) || cut[pair(cur, nb)] {
					continue
				}
				comp[nb] = n
				queue = append(queue, nb)
			}
		}
		n++
	}
	if n != 2 {
		return Cut{}, false
	}

	parts := [2]map[core.Cell]core.CubeType{{}, {}}
	var cells [2][]core.Cell
	for _, c := range s.Cells() {
		t, _ := s.TypeAt(c)
		parts[comp[c]][c] = t
		cells[comp[c]] = append(cells[comp[c]], c)
	}
	// Cells are in key order, so the first of each part is its origin.
	c := Cut{
		Left:        core.NewShape(parts[0]),
		Right:       core.NewShape(parts[1]),
		LeftOffset:  cells[0][0],
		RightOffset: cells[1][0],
	}
	for _, p := range s.Cells() {
		for _, d := range []core.Direction{core.North, core.East} {
			q := p.Step(d)
			if !s.Has(q) || comp[p] == comp[q] {
				continue
			}
			l := CutLink{A: p.Sub(c.LeftOffset), B: q.Sub(c.RightOffset), Edge: d.Inv()}
			if comp[p] == 1 {
				l = CutLink{A: q.Sub(c.LeftOffset), B: p.Sub(c.RightOffset), Edge: d}
			}
			if slidable(cells[0], cells[1], l.Edge) {
				c.Links = append(c.Links, l)
			}
		}
	}
	return c, len(c.Links) > 0
}

// approaches lists the sides of A from which B may arrive for a link on
// edge. B sits on the edge.Inv() side of A, so a side link fixes it.
func approaches(edge core.Direction) []core.Direction {
	if edge.IsSide() {
		return []core.Direction{edge.Inv()}
	}
	return []core.Direction{core.East, core.West}
}

func slidable(fixed, moving []core.Cell, edge core.Direction) bool {
	for _, a := range approaches(edge) {
		if core.Slidable(fixed, moving, a) {
			return true
		}
	}
	return false
}
