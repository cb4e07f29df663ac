package scenario

import (
	"bytes"
	"encoding/csv"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/magcubes/internal/algo"
	"github.com/elektrokombinacija/magcubes/internal/core"
)

func TestBuildShapes(t *testing.T) {
	for _, kind := range ShapeKinds() {
		for n := 1; n <= 9; n++ {
			for _, redFirst := range []bool{true, false} {
				s, err := BuildShape(kind, n, redFirst, rand.New(rand.NewSource(int64(n))))
				require.NoError(t, err)
				require.NotNil(t, s)
				assert.Equal(t, n, s.Size(), "%s/%d", kind, n)
				assert.True(t, s.Valid(), "%s/%d %s", kind, n, s.Key())
				assert.NotNil(t, s.Polyomino(core.NewArena()), "%s/%d is connected", kind, n)

				first, _ := s.TypeAt(core.Cell{})
				if redFirst {
					assert.Equal(t, core.TypeRed, first)
				} else {
					assert.Equal(t, core.TypeBlue, first)
				}
			}
		}
	}
}

func TestShapeLayouts(t *testing.T) {
	sq, err := BuildShape(ShapeSquare, 4, true, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, sq.Width())
	assert.Equal(t, 2, sq.Height())

	line, err := BuildShape(ShapeLine, 5, true, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, line.Height())
	red, blue := TypeCounts(line)
	assert.Equal(t, 3, red)
	assert.Equal(t, 2, blue)

	tee, err := BuildShape(ShapeT, 4, true, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, tee.Width())
	assert.Equal(t, 2, tee.Height())

	_, err = BuildShape(ShapeLine, 0, true, nil)
	assert.ErrorIs(t, err, ErrEmptyShape)
	_, err = BuildShape("zigzag", 3, true, nil)
	assert.ErrorIs(t, err, ErrUnknownShape)

	k, err := ParseShapeKind("T")
	require.NoError(t, err)
	assert.Equal(t, ShapeT, k)
	_, err = ParseShapeKind("blob")
	assert.ErrorIs(t, err, ErrUnknownShape)
}

func TestGenerateIsDeterministic(t *testing.T) {
	for _, variant := range []Variant{VariantFixed, VariantFree} {
		p := DefaultGenParams()
		p.Shape, p.Tiles, p.Leftover, p.Variant, p.Seed = ShapeRandom, 5, 3, variant, 42

		a, err := Generate(p)
		require.NoError(t, err)
		b, err := Generate(p)
		require.NoError(t, err)
		assert.Equal(t, a.Name, b.Name)
		assert.Equal(t, a.Config, b.Config, "variant %s", variant)

		p.Seed++
		c, err := Generate(p)
		require.NoError(t, err)
		assert.NotEqual(t, a.Config.Cubes, c.Config.Cubes)
	}
}

func TestGeneratePlacement(t *testing.T) {
	p := DefaultGenParams()
	p.Shape, p.Tiles, p.Leftover = ShapeSquare, 4, 2
	in, err := Generate(p)
	require.NoError(t, err)

	c, target, err := in.Decode()
	require.NoError(t, err)
	require.Equal(t, 6, c.Len())
	assert.Equal(t, 6, c.PolyCollection().Len(), "cubes start apart")

	states := c.States()
	for i := range states {
		s := states[i]
		assert.Equal(t, s.Pos.X, float64(int(s.Pos.X)))
		assert.GreaterOrEqual(t, s.Pos.X, core.CubeSize)
		assert.LessOrEqual(t, s.Pos.Y, p.Height-core.CubeSize)
		for j := i + 1; j < len(states); j++ {
			assert.GreaterOrEqual(t, s.Pos.Dist(states[j].Pos), core.SensorRadius)
		}
	}

	// Fixed types carry exactly the target's cubes plus alternating leftovers.
	red, blue := TypeCounts(target)
	var gotRed, gotBlue int
	for _, s := range states {
		if s.Cube.Type == core.TypeRed {
			gotRed++
		} else {
			gotBlue++
		}
	}
	assert.Equal(t, red+1, gotRed)
	assert.Equal(t, blue+1, gotBlue)
}

func TestGenerateErrors(t *testing.T) {
	p := DefaultGenParams()
	p.TypeCount = 3
	_, err := Generate(p)
	assert.ErrorIs(t, err, ErrTypeCount)

	p = DefaultGenParams()
	p.Width, p.Height, p.Tiles = 60, 60, 6
	_, err = Generate(p)
	assert.ErrorIs(t, err, ErrNoRoom)

	p = DefaultGenParams()
	p.Shape = "ring"
	_, err = Generate(p)
	assert.ErrorIs(t, err, ErrUnknownShape)
}

func TestResultsCSV(t *testing.T) {
	plan := &algo.GlobalPlan{
		State:          algo.FailureMaxItr,
		Reason:         "timeout",
		ConfigsVisited: 4,
		LocalCalls:     7,
		TCSANodes:      5,
		Elapsed:        1500 * time.Microsecond,
		States:         map[algo.PlanState]int{algo.FailureConnect: 5, algo.FailureMaxItr: 2},
	}
	p := DefaultGenParams()
	r := NewResult(InstanceName(p), "TCSA-MIN_DIST", p, plan)
	assert.False(t, r.Success)
	assert.Equal(t, 1.5, r.ElapsedMs)
	assert.Equal(t, map[string]int{"FAILURE_CONNECT": 5, "FAILURE_MAX_ITR": 2}, r.States)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []Result{r, r}))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Len(t, rows[1], len(csvHeader))
	assert.Equal(t, "FAILURE_CONNECT=5 FAILURE_MAX_ITR=2", rows[1][len(rows[1])-1])
	assert.Equal(t, "false", rows[1][11])

	_, err = uuid.Parse(rows[1][len(rows[1])-2])
	require.NoError(t, err)
}
