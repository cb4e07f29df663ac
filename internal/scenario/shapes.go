package scenario

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

// ShapeKind names a target shape family.
type ShapeKind string

const (
	ShapeLine   ShapeKind = "line"
	ShapeSquare ShapeKind = "square"
	ShapeL      ShapeKind = "l"
	ShapeT      ShapeKind = "t"
	ShapeRandom ShapeKind = "random"
)

// ShapeKinds lists every known kind.
func ShapeKinds() []ShapeKind {
	return []ShapeKind{ShapeLine, ShapeSquare, ShapeL, ShapeT, ShapeRandom}
}

// ParseShapeKind accepts a kind name in any case.
func ParseShapeKind(s string) (ShapeKind, error) {
	k := ShapeKind(strings.ToLower(s))
	for _, known := range ShapeKinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownShape)
}

// cellsOf returns the untyped layout of a kind with n cells.
func cellsOf(kind ShapeKind, n int, rng *rand.Rand) []core.Cell {
	var out []core.Cell
	switch kind {
	case ShapeLine:
		for x := 0; x < n; x++ {
			out = append(out, core.Cell{X: x})
		}
	case ShapeSquare:
		// Row-major fill of the smallest square holding n cells.
		w := 1
		for w*w < n {
			w++
		}
		for i := 0; i < n; i++ {
			out = append(out, core.Cell{X: i % w, Y: i / w})
		}
	case ShapeL:
		// Foot along x, remaining cells stacked on the first column.
		foot := (n + 1) / 2
		for x := 0; x < foot; x++ {
			out = append(out, core.Cell{X: x})
		}
		for y := 1; y <= n-foot; y++ {
			out = append(out, core.Cell{Y: y})
		}
	case ShapeT:
		bar := n - n/3
		if bar%2 == 0 && n > 2 {
			bar--
		}
		mid := bar / 2
		for x := 0; x < bar; x++ {
			out = append(out, core.Cell{X: x})
		}
		for y := 1; y <= n-bar; y++ {
			out = append(out, core.Cell{X: mid, Y: -y})
		}
	case ShapeRandom:
		out = randomCells(n, rng)
	}
	return out
}

// randomCells grows a 4-connected cell set from the origin.
func randomCells(n int, rng *rand.Rand) []core.Cell {
	seen := map[core.Cell]bool{{}: true}
	out := []core.Cell{{}}
	var frontier []core.Cell
	push := func(c core.Cell) {
		for _, d := range core.Directions() {
			if nb := c.Step(d); !seen[nb] {
				frontier = append(frontier, nb)
			}
		}
	}
	push(core.Cell{})
	for len(out) < n {
		i := rng.Intn(len(frontier))
		c := frontier[i]
		frontier[i] = frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		push(c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// BuildShape returns a target of the given kind with n cells. Types
// alternate by column so that no two equal types touch along a side;
// redFirst puts red in the leftmost column. rng is only used by
// ShapeRandom and may be nil otherwise.
func BuildShape(kind ShapeKind, n int, redFirst bool, rng *rand.Rand) (*core.Shape, error) {
	if n < 1 {
		return nil, ErrEmptyShape
	}
	if kind == ShapeRandom && rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	cells := cellsOf(kind, n, rng)
	if cells == nil {
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownShape)
	}
	minX := cells[0].X
	for _, c := range cells {
		minX = min(minX, c.X)
	}
	typed := make(map[core.Cell]core.CubeType, len(cells))
	for _, c := range cells {
		even := (c.X-minX)%2 == 0
		if even == redFirst {
			typed[c] = core.TypeRed
		} else {
			typed[c] = core.TypeBlue
		}
	}
	return core.NewShape(typed), nil
}

// TypeCounts returns the number of red and blue cells of s.
func TypeCounts(s *core.Shape) (red, blue int) {
	for _, c := range s.Cells() {
		if t, _ := s.TypeAt(c); t == core.TypeRed {
			red++
		} else {
			blue++
		}
	}
	return red, blue
}
