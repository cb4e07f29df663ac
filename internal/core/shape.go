package core

import (
	"sort"
	"strconv"
	"strings"
)

// Cell is a position in a polyomino's local grid.
type Cell struct {
	X, Y int
}

// Step returns the neighbor cell in direction d.
func (c Cell) Step(d Direction) Cell {
	dx, dy := d.Offset()
	return Cell{c.X + dx, c.Y + dy}
}

func (c Cell) Add(o Cell) Cell { return Cell{c.X + o.X, c.Y + o.Y} }
func (c Cell) Sub(o Cell) Cell { return Cell{c.X - o.X, c.Y - o.Y} }

// Less orders cells leftmost first, then bottommost.
func (c Cell) Less(o Cell) bool {
	return c.X < o.X || (c.X == o.X && c.Y < o.Y)
}

// Local returns the center of c relative to the center of cell (0,0).
func (c Cell) Local() Vec {
	return Vec{float64(c.X) * CubeSize, float64(c.Y) * CubeSize}
}

// Shape is a cube-free typed cell pattern with its smallest cell at the
// origin. Two polyominoes are congruent iff their shapes share a key.
type Shape struct {
	cells []Cell
	types []CubeType
	index map[Cell]int
	key   string
	minY  int
	maxX  int
	maxY  int
}

// NewShape normalizes a typed cell set. It returns nil for an empty set.
func NewShape(cells map[Cell]CubeType) *Shape {
	if len(cells) == 0 {
		return nil
	}
	list := make([]Cell, 0, len(cells))
	for c := range cells {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Less(list[j]) })
	root := list[0]

	s := &Shape{
		cells: make([]Cell, len(list)),
		types: make([]CubeType, len(list)),
		index: make(map[Cell]int, len(list)),
	}
	var b strings.Builder
	for i, c := range list {
		t := cells[c]
		n := c.Sub(root)
		s.cells[i], s.types[i], s.index[n] = n, t, i
		if i == 0 || n.Y < s.minY {
			s.minY = n.Y
		}
		if n.X > s.maxX {
			s.maxX = n.X
		}
		if i == 0 || n.Y > s.maxY {
			s.maxY = n.Y
		}
		b.WriteString(strconv.Itoa(n.X))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(n.Y))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(int(t)))
		b.WriteByte(';')
	}
	s.key = b.String()
	return s
}

// Key is the canonical content key of the shape.
func (s *Shape) Key() string { return s.key }

func (s *Shape) String() string { return s.key }

// Size returns the number of cells.
func (s *Shape) Size() int { return len(s.cells) }

// Width returns the number of columns.
func (s *Shape) Width() int { return s.maxX + 1 }

// Height returns the number of rows.
func (s *Shape) Height() int { return s.maxY - s.minY + 1 }

// Cells returns the normalized cells in key order.
func (s *Shape) Cells() []Cell { return s.cells }

// Has reports whether c is occupied.
func (s *Shape) Has(c Cell) bool {
	_, ok := s.index[c]
	return ok
}

// TypeAt returns the cube type at c.
func (s *Shape) TypeAt(c Cell) (CubeType, bool) {
	i, ok := s.index[c]
	if !ok {
		return 0, false
	}
	return s.types[i], true
}

// Valid reports whether no two equal types touch along a side.
func (s *Shape) Valid() bool {
	for i, c := range s.cells {
		if t, ok := s.TypeAt(c.Step(East)); ok && t == s.types[i] {
			return false
		}
	}
	return true
}

// Polyomino materializes the shape with fresh cubes from arena.
func (s *Shape) Polyomino(arena *Arena) *Polyomino {
	cubes := make(map[Cell]Cube, len(s.cells))
	for i, c := range s.cells {
		cubes[c] = arena.New(s.types[i])
	}
	return PolyominoFromCells(cubes)
}

// Slidable reports whether the cells in moving can slide horizontally into
// place next to fixed, arriving from the approach side of fixed. Every row
// holding both sets must keep the moving cells strictly on the approach
// side of the fixed ones.
func Slidable(fixed, moving []Cell, approach Direction) bool {
	if !approach.IsSide() {
		return false
	}
	type span struct{ lo, hi int }
	rows := func(cells []Cell) map[int]span {
		m := make(map[int]span)
		for _, c := range cells {
			s, ok := m[c.Y]
			if !ok {
				s = span{c.X, c.X}
			}
			if c.X < s.lo {
				s.lo = c.X
			}
			if c.X > s.hi {
				s.hi = c.X
			}
			m[c.Y] = s
		}
		return m
	}
	fr, mr := rows(fixed), rows(moving)
	for y, m := range mr {
		f, ok := fr[y]
		if !ok {
			continue
		}
		if approach == East && m.lo <= f.hi {
			return false
		}
		if approach == West && m.hi >= f.lo {
			return false
		}
	}
	return true
}
