package core

import "fmt"

// Connection says that A sits on the Edge side of B. A connection and its
// inverse describe the same link.
type Connection struct {
	A, B Cube
	Edge Direction
}

// Inverse returns the same link seen from B.
func (c Connection) Inverse() Connection {
	return Connection{A: c.B, B: c.A, Edge: c.Edge.Inv()}
}

// Canonical returns the orientation with the smaller id as A.
func (c Connection) Canonical() Connection {
	if c.B.ID < c.A.ID {
		return c.Inverse()
	}
	return c
}

// Equal compares links up to inversion.
func (c Connection) Equal(o Connection) bool {
	return c.Canonical() == o.Canonical()
}

func (c Connection) String() string {
	return fmt.Sprintf("%v@%v.%v", c.A, c.B, c.Edge)
}

// Adjacency is the global link map: every cube with its neighbor id per
// direction, NoCube for a free edge.
type Adjacency struct {
	cubes map[CubeID]Cube
	links map[CubeID][4]CubeID
}

// NewAdjacency returns an adjacency over cubes with no links.
func NewAdjacency(cubes ...Cube) *Adjacency {
	a := &Adjacency{
		cubes: make(map[CubeID]Cube, len(cubes)),
		links: make(map[CubeID][4]CubeID, len(cubes)),
	}
	for _, c := range cubes {
		a.Add(c)
	}
	return a
}

// Add registers a cube without links. Re-adding keeps existing links.
func (a *Adjacency) Add(c Cube) {
	if _, ok := a.cubes[c.ID]; ok {
		return
	}
	a.cubes[c.ID] = c
	a.links[c.ID] = [4]CubeID{NoCube, NoCube, NoCube, NoCube}
}

// Link records that ca sits on the edge side of cb. It fails when either
// edge is already taken by another cube.
func (a *Adjacency) Link(ca, cb Cube, edge Direction) bool {
	a.Add(ca)
	a.Add(cb)
	la, lb := a.links[ca.ID], a.links[cb.ID]
	if (lb[edge] != NoCube && lb[edge] != ca.ID) || (la[edge.Inv()] != NoCube && la[edge.Inv()] != cb.ID) {
		return false
	}
	lb[edge] = ca.ID
	la[edge.Inv()] = cb.ID
	a.links[ca.ID], a.links[cb.ID] = la, lb
	return true
}

// Linked reports whether ca sits on the edge side of cb.
func (a *Adjacency) Linked(ca, cb Cube, edge Direction) bool {
	l, ok := a.links[cb.ID]
	return ok && l[edge] == ca.ID
}

// Neighbor returns the cube linked to c at d.
func (a *Adjacency) Neighbor(c Cube, d Direction) (Cube, bool) {
	id := a.links[c.ID][d]
	if id == NoCube {
		return Cube{}, false
	}
	n, ok := a.cubes[id]
	return n, ok
}

// Cubes returns all registered cubes ordered by id.
func (a *Adjacency) Cubes() []Cube {
	out := make([]Cube, 0, len(a.cubes))
	for _, c := range a.cubes {
		out = append(out, c)
	}
	SortCubes(out)
	return out
}

// Len returns the number of registered cubes.
func (a *Adjacency) Len() int { return len(a.cubes) }

// DetectLinks derives links from cube geometry with the same port test the
// simulator uses.
func DetectLinks(states []CubeState) *Adjacency {
	adj := NewAdjacency()
	for _, s := range states {
		adj.Add(s.Cube)
	}
	for i := range states {
		for j := i + 1; j < len(states); j++ {
			if states[i].Pos.Dist(states[j].Pos) > 1.5*CubeSize {
				continue
			}
			if edge, ok := CheckConnection(states[i], states[j]); ok {
				adj.Link(states[i].Cube, states[j].Cube, edge)
			}
		}
	}
	return adj
}
