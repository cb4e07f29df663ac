package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

// shapeOf parses rows drawn top first: 'R' red, 'B' blue, anything else
// empty.
func shapeOf(rows ...string) *core.Shape {
	cells := make(map[core.Cell]core.CubeType)
	for i, row := range rows {
		y := len(rows) - 1 - i
		for x, ch := range row {
			switch ch {
			case 'R':
				cells[core.Cell{X: x, Y: y}] = core.TypeRed
			case 'B':
				cells[core.Cell{X: x, Y: y}] = core.TypeBlue
			}
		}
	}
	return core.NewShape(cells)
}

func TestCutsOfLine(t *testing.T) {
	cuts := EnumerateCuts(shapeOf("RBR"))
	require.Len(t, cuts, 2)

	var sizes [][2]int
	for _, c := range cuts {
		sizes = append(sizes, [2]int{c.Left.Size(), c.Right.Size()})
		require.Len(t, c.Links, 1)
		assert.Equal(t, core.West, c.Links[0].Edge)
	}
	assert.ElementsMatch(t, [][2]int{{1, 2}, {2, 1}}, sizes)

	g := NewTCSAGraph(shapeOf("RBR"))
	// {RBR}, {R, BR}, {RB, R}, {R, B, R}
	assert.Equal(t, 4, g.Len())
	assert.Empty(t, g.Edges[g.Root], "the target has nowhere to grow")
}

func TestCutsOfSquare(t *testing.T) {
	sq := shapeOf("RB", "RB")
	cuts := EnumerateCuts(sq)
	require.GreaterOrEqual(t, len(cuts), 2)

	var vertical, horizontal bool
	for _, c := range cuts {
		if c.Left.Size() == 2 && c.Left.Width() == 1 {
			vertical = true
		}
		if c.Left.Size() == 2 && c.Left.Height() == 1 {
			horizontal = true
		}
	}
	assert.True(t, vertical)
	assert.True(t, horizontal)
}

func TestCutsReassemble(t *testing.T) {
	shapes := []*core.Shape{
		shapeOf("RBRB"),
		shapeOf("RB", "RB"),
		shapeOf("R..", "RBR"),
		shapeOf(".B.", "RBR"),
		shapeOf("BRB", "R.R"),
	}
	for _, s := range shapes {
		cuts := EnumerateCuts(s)
		require.NotEmpty(t, cuts, s.Key())
		for _, c := range cuts {
			assert.Equal(t, core.Cell{}, c.LeftOffset)
			assert.Equal(t, s.Size(), c.Left.Size()+c.Right.Size())

			rebuilt := make(map[core.Cell]core.CubeType)
			for part, off := range map[*core.Shape]core.Cell{c.Left: c.LeftOffset, c.Right: c.RightOffset} {
				for _, cell := range part.Cells() {
					typ, _ := part.TypeAt(cell)
					rebuilt[cell.Add(off)] = typ
				}
			}
			assert.Equal(t, s.Key(), core.NewShape(rebuilt).Key())

			for _, l := range c.Links {
				a, b := l.A.Add(c.LeftOffset), l.B.Add(c.RightOffset)
				assert.Equal(t, b.Step(l.Edge), a, "link %v", l)
			}
		}
	}
}

func TestCutsOfSingleCube(t *testing.T) {
	assert.Empty(t, EnumerateCuts(shapeOf("R")))
	g := NewTCSAGraph(shapeOf("B"))
	assert.Equal(t, 1, g.Len())
}

func TestGraphEdgesPointToCoarserNodes(t *testing.T) {
	g := NewTCSAGraph(shapeOf(".B.", "RBR"))
	for from, edges := range g.Edges {
		for _, e := range edges {
			assert.Equal(t, from, e.From)
			assert.Equal(t, len(g.Nodes[e.From].Parts)-1, len(g.Nodes[e.To].Parts))
			assert.Equal(t, e.Result.Size(), e.Cut.Left.Size()+e.Cut.Right.Size())
		}
	}
	// Every node but the target can grow.
	for id := range g.Nodes {
		if id != g.Root {
			assert.NotEmpty(t, g.Edges[id], "node %v", g.Nodes[id].Key)
		}
	}
}

func TestMatchWithLeftovers(t *testing.T) {
	g := NewTCSAGraph(shapeOf("RB"))
	a := core.NewArena()
	r1, b, r2 := a.New(core.TypeRed), a.New(core.TypeBlue), a.New(core.TypeRed)

	singles := core.NewPolyCollection(core.NewPolyomino(r1), core.NewPolyomino(b), core.NewPolyomino(r2))
	n := g.Match(singles)
	require.NotNil(t, n)
	assert.Len(t, n.Parts, 2)
	assert.True(t, g.Allows(singles))

	pair := core.NewPolyomino(b)
	require.True(t, pair.Connect(r1, b, core.West))
	done := core.NewPolyCollection(pair, core.NewPolyomino(r2))
	n = g.Match(done)
	require.NotNil(t, n)
	assert.Equal(t, g.Root, n.ID)

	stack := core.NewPolyomino(b)
	require.True(t, stack.Connect(r1, b, core.North))
	assert.Nil(t, g.Match(core.NewPolyCollection(stack, core.NewPolyomino(r2))))
	assert.False(t, g.Allows(core.NewPolyCollection(stack)))
}
