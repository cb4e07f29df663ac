package core

import (
	"sort"
	"strings"
)

// PolyCollection is a set of disjoint polyominoes.
type PolyCollection struct {
	polys     []*Polyomino
	byCube    map[CubeID]int
	maxWidth  int
	maxHeight int
	maxSize   int
	valid     bool
	key       string
}

// NewPolyCollection groups the given polyominoes. A cube listed twice stays
// with the first polyomino that holds it.
func NewPolyCollection(polys ...*Polyomino) *PolyCollection {
	pc := &PolyCollection{}
	pc.reset()
	for _, p := range polys {
		pc.add(p)
	}
	pc.finish()
	return pc
}

// DetectPolyominoes flood-fills the links in adj into polyominoes, one per
// connected component, singletons included.
func DetectPolyominoes(adj *Adjacency) *PolyCollection {
	pc := &PolyCollection{}
	pc.reset()
	for _, c := range adj.Cubes() {
		if _, ok := pc.byCube[c.ID]; ok {
			continue
		}
		p := NewPolyomino(c)
		queue := []Cube{c}
		seen := map[CubeID]bool{c.ID: true}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, d := range Directions() {
				n, ok := adj.Neighbor(cur, d)
				if !ok || seen[n.ID] {
					continue
				}
				// A link into an occupied cell may still place n through
				// another neighbour.
				if p.Connect(n, cur, d) {
					seen[n.ID] = true
					queue = append(queue, n)
				}
			}
		}
		pc.add(p)
	}
	pc.finish()
	return pc
}

func (pc *PolyCollection) reset() {
	pc.polys = nil
	pc.byCube = map[CubeID]int{}
	pc.maxWidth, pc.maxHeight, pc.maxSize = 0, 0, 0
	pc.valid = true
	pc.key = ""
}

func (pc *PolyCollection) add(p *Polyomino) {
	idx := len(pc.polys)
	for _, c := range p.Cubes() {
		if _, ok := pc.byCube[c.ID]; ok {
			return
		}
	}
	for _, c := range p.Cubes() {
		pc.byCube[c.ID] = idx
	}
	pc.polys = append(pc.polys, p)
	pc.maxWidth = max(pc.maxWidth, p.Width())
	pc.maxHeight = max(pc.maxHeight, p.Height())
	pc.maxSize = max(pc.maxSize, p.Size())
	pc.valid = pc.valid && p.IsValid()
}

func (pc *PolyCollection) finish() {
	keys := make([]string, len(pc.polys))
	for i, p := range pc.polys {
		keys[i] = p.Key()
	}
	sort.Strings(keys)
	pc.key = strings.Join(keys, "|")
}

// Polyominoes returns the members in detection order.
func (pc *PolyCollection) Polyominoes() []*Polyomino { return pc.polys }

// Len returns the number of members.
func (pc *PolyCollection) Len() int { return len(pc.polys) }

// PolyOf returns the member holding c.
func (pc *PolyCollection) PolyOf(c Cube) *Polyomino {
	i, ok := pc.byCube[c.ID]
	if !ok {
		return nil
	}
	return pc.polys[i]
}

// Contains reports whether a member is congruent to p.
func (pc *PolyCollection) Contains(p *Polyomino) bool {
	return pc.CountShape(p.Shape()) > 0
}

// CountShape returns how many members have shape s.
func (pc *PolyCollection) CountShape(s *Shape) int {
	n := 0
	for _, m := range pc.polys {
		if m.Size() == s.Size() && m.Key() == s.Key() {
			n++
		}
	}
	return n
}

// Groups buckets members by shape key.
func (pc *PolyCollection) Groups() map[string][]*Polyomino {
	out := make(map[string][]*Polyomino)
	for _, p := range pc.polys {
		out[p.Key()] = append(out[p.Key()], p)
	}
	return out
}

// Shapes returns the member shapes as a multiset of key counts.
func (pc *PolyCollection) Shapes() map[string]int {
	out := make(map[string]int)
	for _, p := range pc.polys {
		out[p.Key()]++
	}
	return out
}

// IsValid is the conjunction of member validity.
func (pc *PolyCollection) IsValid() bool { return pc.valid }

func (pc *PolyCollection) MaxWidth() int  { return pc.maxWidth }
func (pc *PolyCollection) MaxHeight() int { return pc.maxHeight }
func (pc *PolyCollection) MaxSize() int   { return pc.maxSize }

// LongestChain is the largest extent of any member, in cubes.
func (pc *PolyCollection) LongestChain() int {
	return max(pc.maxWidth, pc.maxHeight)
}

// Key is the sorted multiset of member shape keys.
func (pc *PolyCollection) Key() string { return pc.key }

// Equal compares the multisets of shapes.
func (pc *PolyCollection) Equal(o *PolyCollection) bool {
	return o != nil && pc.key == o.key
}
