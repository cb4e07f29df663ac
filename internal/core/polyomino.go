package core

import (
	"fmt"
	"sort"
)

// Polyomino is a rigid cluster of cubes on an integer grid. Its smallest
// cell (leftmost, then bottommost) is always the origin.
type Polyomino struct {
	cubes map[Cell]Cube
	cells map[CubeID]Cell
	minY  int
	maxX  int
	maxY  int
	valid bool
	hash  uint64
	shape *Shape
}

// NewPolyomino returns a single-cube polyomino.
func NewPolyomino(root Cube) *Polyomino {
	p := &Polyomino{
		cubes: map[Cell]Cube{},
		cells: map[CubeID]Cell{},
		valid: true,
	}
	p.place(root, Cell{})
	return p
}

// PolyominoFromCells builds a polyomino from placed cubes. It returns nil
// when the cells are empty or not 4-connected.
func PolyominoFromCells(cubes map[Cell]Cube) *Polyomino {
	if len(cubes) == 0 {
		return nil
	}
	var start Cell
	first := true
	for c := range cubes {
		if first || c.Less(start) {
			start, first = c, false
		}
	}
	p := NewPolyomino(cubes[start])
	queue := []Cell{start}
	seen := map[Cell]bool{start: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range Directions() {
			n := cur.Step(d)
			c, ok := cubes[n]
			if !ok || seen[n] {
				continue
			}
			seen[n] = true
			p.Connect(c, cubes[cur], d)
			queue = append(queue, n)
		}
	}
	if p.Size() != len(cubes) {
		return nil
	}
	return p
}

func (p *Polyomino) place(c Cube, at Cell) {
	p.cubes[at] = c
	p.cells[c.ID] = at
	p.hash += cellHash(at, c.Type)
	p.shape = nil
}

// Connect attaches a on the edge side of b. It fails when b is absent, a is
// already present or the target cell is occupied. A same-type side contact
// marks the polyomino invalid for good.
func (p *Polyomino) Connect(a, b Cube, edge Direction) bool {
	cb, ok := p.cells[b.ID]
	if !ok {
		return false
	}
	if _, ok := p.cells[a.ID]; ok {
		return false
	}
	t := cb.Step(edge)
	if _, ok := p.cubes[t]; ok {
		return false
	}
	p.place(a, t)
	if t.Less(Cell{}) {
		p.shift(Cell{}.Sub(t))
		t = Cell{}
	} else {
		p.maxX = max(p.maxX, t.X)
		p.minY = min(p.minY, t.Y)
		p.maxY = max(p.maxY, t.Y)
	}
	if p.valid {
		for _, d := range []Direction{East, West} {
			if n, ok := p.cubes[t.Step(d)]; ok && n.Type == a.Type {
				p.valid = false
			}
		}
	}
	return true
}

func (p *Polyomino) shift(by Cell) {
	cubes := make(map[Cell]Cube, len(p.cubes))
	first := true
	for c, cube := range p.cubes {
		n := c.Add(by)
		cubes[n] = cube
		p.cells[cube.ID] = n
		if first {
			p.minY, p.maxX, p.maxY = n.Y, n.X, n.Y
			first = false
		}
		p.maxX = max(p.maxX, n.X)
		p.minY = min(p.minY, n.Y)
		p.maxY = max(p.maxY, n.Y)
	}
	p.cubes = cubes
	p.hash *= translateHash(by)
	p.shape = nil
}

// Size returns the number of cubes.
func (p *Polyomino) Size() int { return len(p.cubes) }

// Width returns the number of columns.
func (p *Polyomino) Width() int { return p.maxX + 1 }

// Height returns the number of rows.
func (p *Polyomino) Height() int { return p.maxY - p.minY + 1 }

// Bounds returns the lower-left and upper-right cells of the bounding box.
func (p *Polyomino) Bounds() (Cell, Cell) {
	return Cell{0, p.minY}, Cell{p.maxX, p.maxY}
}

// IsValid reports whether no same-type side contact was ever made.
func (p *Polyomino) IsValid() bool { return p.valid }

// Root returns the cube at the origin.
func (p *Polyomino) Root() Cube { return p.cubes[Cell{}] }

// Contains reports whether c belongs to p.
func (p *Polyomino) Contains(c Cube) bool {
	_, ok := p.cells[c.ID]
	return ok
}

// CellOf returns the local cell of c.
func (p *Polyomino) CellOf(c Cube) (Cell, bool) {
	cell, ok := p.cells[c.ID]
	return cell, ok
}

// CubeAt returns the cube at cell.
func (p *Polyomino) CubeAt(cell Cell) (Cube, bool) {
	c, ok := p.cubes[cell]
	return c, ok
}

// Neighbor returns the cube next to c in direction d.
func (p *Polyomino) Neighbor(c Cube, d Direction) (Cube, bool) {
	cell, ok := p.cells[c.ID]
	if !ok {
		return Cube{}, false
	}
	return p.CubeAt(cell.Step(d))
}

// Cubes returns the member cubes ordered by id.
func (p *Polyomino) Cubes() []Cube {
	out := make([]Cube, 0, len(p.cubes))
	for _, c := range p.cubes {
		out = append(out, c)
	}
	SortCubes(out)
	return out
}

// Row returns the cubes of row y from west to east.
func (p *Polyomino) Row(y int) []Cube {
	var xs []int
	for c := range p.cubes {
		if c.Y == y {
			xs = append(xs, c.X)
		}
	}
	sort.Ints(xs)
	out := make([]Cube, len(xs))
	for i, x := range xs {
		out[i] = p.cubes[Cell{x, y}]
	}
	return out
}

// Rows returns all rows from south to north.
func (p *Polyomino) Rows() [][]Cube {
	rows := make([][]Cube, 0, p.Height())
	for y := p.minY; y <= p.maxY; y++ {
		rows = append(rows, p.Row(y))
	}
	return rows
}

// Hash returns the structural hash. It is maintained on every connect.
func (p *Polyomino) Hash() uint64 { return p.hash }

// Shape returns the typed cell pattern of p.
func (p *Polyomino) Shape() *Shape {
	if p.shape == nil {
		cells := make(map[Cell]CubeType, len(p.cubes))
		for c, cube := range p.cubes {
			cells[c] = cube.Type
		}
		p.shape = NewShape(cells)
	}
	return p.shape
}

// Key returns the structural key.
func (p *Polyomino) Key() string { return p.Shape().Key() }

// Equal compares shape and cube types by relative position.
func (p *Polyomino) Equal(o *Polyomino) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Size() == o.Size() && p.hash == o.hash && p.Key() == o.Key()
}

func (p *Polyomino) String() string {
	return fmt.Sprintf("Poly[%d %dx%d %s]", p.Size(), p.Width(), p.Height(), p.Key())
}

// Clone copies the topology. Cubes are shared.
func (p *Polyomino) Clone() *Polyomino {
	c := &Polyomino{
		cubes: make(map[Cell]Cube, len(p.cubes)),
		cells: make(map[CubeID]Cell, len(p.cells)),
		minY:  p.minY,
		maxX:  p.maxX,
		maxY:  p.maxY,
		valid: p.valid,
		hash:  p.hash,
		shape: p.shape,
	}
	for k, v := range p.cubes {
		c.cubes[k] = v
	}
	for k, v := range p.cells {
		c.cells[k] = v
	}
	return c
}

// Sub clones the part of p made of cubes. It returns nil if a cube is not
// in p or the part is not connected.
func (p *Polyomino) Sub(cubes []Cube) *Polyomino {
	if len(cubes) == 0 {
		return nil
	}
	want := make(map[Cell]Cube, len(cubes))
	for _, c := range cubes {
		cell, ok := p.cells[c.ID]
		if !ok {
			return nil
		}
		want[cell] = c
	}
	return PolyominoFromCells(want)
}

// Links lists every grid contact inside p, one entry per pair.
func (p *Polyomino) Links() []Connection {
	var out []Connection
	for _, b := range p.Cubes() {
		for _, d := range []Direction{North, East} {
			if a, ok := p.Neighbor(b, d); ok {
				out = append(out, Connection{A: a, B: b, Edge: d})
			}
		}
	}
	return out
}

// GetFreeEdges returns the directions of c without a neighbor. With onlyNS
// side edges are left out.
func (p *Polyomino) GetFreeEdges(c Cube, onlyNS bool) []Direction {
	var out []Direction
	for _, d := range Directions() {
		if onlyNS && d.IsSide() {
			continue
		}
		if _, ok := p.Neighbor(c, d); !ok {
			out = append(out, d)
		}
	}
	return out
}

// IsCave reports whether the free cell on the d side of c has both of its
// lateral neighbors occupied.
func (p *Polyomino) IsCave(c Cube, d Direction) bool {
	cell, ok := p.cells[c.ID]
	if !ok {
		return false
	}
	t := cell.Step(d)
	if _, ok := p.cubes[t]; ok {
		return false
	}
	l, r := (d+1)%4, (d+3)%4
	_, okl := p.cubes[t.Step(l)]
	_, okr := p.cubes[t.Step(r)]
	return okl && okr
}

// ConnectPoly merges p into a clone of other by placing a on the edge side
// of b, then flood-filling p's cubes around it. It returns nil if any cube
// collides.
func (p *Polyomino) ConnectPoly(a Cube, other *Polyomino, b Cube, edge Direction) *Polyomino {
	if !p.Contains(a) || !other.Contains(b) {
		return nil
	}
	merged := other.Clone()
	if !merged.Connect(a, b, edge) {
		return nil
	}
	queue := []Cube{a}
	seen := map[CubeID]bool{a.ID: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range Directions() {
			n, ok := p.Neighbor(cur, d)
			if !ok || seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			if !merged.Connect(n, cur, d) {
				return nil
			}
			queue = append(queue, n)
		}
	}
	return merged
}

// ConnectPolyPossible reports whether other can slide horizontally into p,
// arriving from the approach side of p, and end up with a on the edge side
// of b.
func (p *Polyomino) ConnectPolyPossible(a Cube, other *Polyomino, b Cube, edge, approach Direction) bool {
	if edge == approach || !approach.IsSide() {
		return false
	}
	merged := p.ConnectPoly(a, other, b, edge)
	if merged == nil {
		return false
	}
	var fixed, moving []Cell
	for id, cell := range merged.cells {
		if _, ok := p.cells[id]; ok {
			fixed = append(fixed, cell)
		} else {
			moving = append(moving, cell)
		}
	}
	return Slidable(fixed, moving, approach)
}

// LocalCOM returns the center of mass relative to the origin cell center.
func (p *Polyomino) LocalCOM() Vec {
	var sum Vec
	for c := range p.cubes {
		sum = sum.Add(c.Local())
	}
	return sum.Scale(1 / float64(len(p.cubes)))
}

// PivotAxis returns the outer edge endpoints of the northmost (d == North)
// or southmost row, relative to the origin cell center.
func (p *Polyomino) PivotAxis(d Direction) (Vec, Vec) {
	y, off := p.minY, -CubeRadius
	if d == North {
		y, off = p.maxY, CubeRadius
	}
	row := p.Row(y)
	lo, hi := p.cells[row[0].ID], p.cells[row[len(row)-1].ID]
	return lo.Local().Add(V(-CubeRadius, off)), hi.Local().Add(V(CubeRadius, off))
}

// Structural hash: each cell contributes typeSeed * A^x * B^y, so a root
// shift is a single multiplication.
const (
	hashA = 0x9e3779b97f4a7c15
	hashB = 0xc2b2ae3d27d4eb4f
)

var (
	hashAInv  = inverse64(hashA)
	hashBInv  = inverse64(hashB)
	typeSeeds = [...]uint64{0x165667b19e3779f9, 0x27d4eb2f165667c5}
)

func cellHash(c Cell, t CubeType) uint64 {
	return typeSeeds[t] * translateHash(c)
}

func translateHash(c Cell) uint64 {
	return pow64(hashA, hashAInv, c.X) * pow64(hashB, hashBInv, c.Y)
}

func pow64(base, inv uint64, e int) uint64 {
	if e < 0 {
		base, e = inv, -e
	}
	r := uint64(1)
	for ; e > 0; e >>= 1 {
		if e&1 == 1 {
			r *= base
		}
		base *= base
	}
	return r
}

// inverse64 returns the multiplicative inverse of an odd x modulo 2^64.
func inverse64(x uint64) uint64 {
	y := x
	for i := 0; i < 5; i++ {
		y *= 2 - x*y
	}
	return y
}
