package core

import (
	"fmt"
	"math"
	"sort"
)

// CubeID identifies a cube. IDs are arena indices.
type CubeID int

// NoCube marks a free edge in an adjacency entry.
const NoCube CubeID = -1

// Cube is a unit square robot with four edge magnets.
type Cube struct {
	ID   CubeID
	Type CubeType
}

func (c Cube) String() string {
	return fmt.Sprintf("%s#%d", c.Type, c.ID)
}

// Arena hands out cubes with dense, increasing ids. Each planning session
// owns its own arena.
type Arena struct {
	cubes []Cube
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// NewArenaAfter returns an arena whose next id follows the largest id in
// cubes. Ids below that are reserved.
func NewArenaAfter(cubes []Cube) *Arena {
	a := &Arena{}
	for _, c := range cubes {
		for len(a.cubes) <= int(c.ID) {
			a.cubes = append(a.cubes, Cube{ID: CubeID(len(a.cubes)), Type: -1})
		}
		a.cubes[c.ID] = c
	}
	return a
}

// New allocates a cube of type t.
func (a *Arena) New(t CubeType) Cube {
	c := Cube{ID: CubeID(len(a.cubes)), Type: t}
	a.cubes = append(a.cubes, c)
	return c
}

// Len returns the number of allocated ids.
func (a *Arena) Len() int { return len(a.cubes) }

// SortCubes orders cubes by id.
func SortCubes(cubes []Cube) {
	sort.Slice(cubes, func(i, j int) bool { return cubes[i].ID < cubes[j].ID })
}

// Port is one magnet of a cube in world coordinates.
type Port struct {
	Edge   Direction
	Pos    Vec
	Moment Vec // unit dipole orientation
}

// Ports returns the four magnets of c at pos with body angle angle.
//
// North and south magnets both point along the cube's north axis, so
// stacking attracts for any types. Red side magnets point outward, blue
// side magnets inward, so red/blue side contact attracts and equal types
// repel.
func (c Cube) Ports(pos Vec, angle float64) [4]Port {
	var ports [4]Port
	north := North.Vec(angle)
	east := East.Vec(angle)
	for _, d := range Directions() {
		out := d.Vec(angle)
		m := north
		if d.IsSide() {
			m = east
			if (c.Type == TypeRed) != (d == East) {
				m = east.Neg()
			}
		}
		ports[d] = Port{Edge: d, Pos: pos.Add(out.Scale(MagnetOffset)), Moment: m}
	}
	return ports
}

// MagForce returns the dipole force exerted on the magnet at p2 by the
// magnet at p1. The magnet at p1 receives the negated force.
func MagForce(p1, p2, m1, m2 Vec) Vec {
	d := p2.Sub(p1)
	r := d.Len()
	var rh Vec
	if r > 0 {
		rh = d.Scale(1 / r)
	}
	r = math.Max(r, MagDistanceMin)
	a := m1.Dot(rh)
	b := m2.Dot(rh)
	f := m2.Scale(a).Add(m1.Scale(b))
	f = f.Add(rh.Scale(m1.Dot(m2)))
	f = f.Sub(rh.Scale(5 * a * b))
	return f.Scale(MagConstant / (r * r * r * r))
}

// MagConnectForce is the force between two head-to-tail north/south magnets
// at minimum separation.
var MagConnectForce = MagForce(V(0, 0), V(0, MagDistanceMin), V(0, 1), V(0, 1)).Len()

// CubeState is the physical state of one cube.
type CubeState struct {
	Cube  Cube
	Pos   Vec
	Angle float64
	Vel   Vec
	Spin  float64 // angular velocity of the cube's polyomino
}

// CheckConnection reports whether a is magnetically latched onto b, and if
// so on which edge of b it sits. The closest port pair must face each other
// and carry at least the connection force. Same-type side contact never
// connects.
func CheckConnection(a, b CubeState) (Direction, bool) {
	pa := a.Cube.Ports(a.Pos, a.Angle)
	pb := b.Cube.Ports(b.Pos, b.Angle)
	bi, bj := 0, 0
	best := math.Inf(1)
	for i := range pa {
		for j := range pb {
			if d := pa[i].Pos.Dist(pb[j].Pos); d < best {
				best, bi, bj = d, i, j
			}
		}
	}
	if pa[bi].Edge != pb[bj].Edge.Inv() {
		return 0, false
	}
	edge := pb[bj].Edge
	if edge.IsSide() && a.Cube.Type == b.Cube.Type {
		return 0, false
	}
	f := MagForce(pa[bi].Pos, pb[bj].Pos, pa[bi].Moment, pb[bj].Moment)
	if f.Len() < MagConnectForce*(1-ConnectTolerance) {
		return 0, false
	}
	return edge, true
}
