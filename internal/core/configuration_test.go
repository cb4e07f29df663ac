package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationDetectsPolyominoes(t *testing.T) {
	a := NewArena()
	r, b, r2, lone := a.New(TypeRed), a.New(TypeBlue), a.New(TypeRed), a.New(TypeBlue)
	cfg := NewConfiguration(400, 200, 0, TiltHorizontal, []CubeState{
		{Cube: r, Pos: V(100, 100)},
		{Cube: b, Pos: V(120, 100)},
		{Cube: r2, Pos: V(100, 120)},
		{Cube: lone, Pos: V(300, 50)},
	})

	pc := cfg.PolyCollection()
	require.Equal(t, 2, pc.Len())
	p := pc.PolyOf(r)
	require.NotNil(t, p)
	assert.Equal(t, 3, p.Size())
	assert.True(t, p.Contains(r2))
	assert.False(t, p.Contains(lone))

	meta, ok := cfg.MetaOf(r)
	require.True(t, ok)
	assert.InDelta(t, 320.0/3, meta.COM.X, 1e-9)
	assert.InDelta(t, 320.0/3, meta.COM.Y, 1e-9)
	// South pivot axis spans the bottom row.
	assert.InDelta(t, 90, meta.South[0].X, 1e-9)
	assert.InDelta(t, 130, meta.South[1].X, 1e-9)
	assert.InDelta(t, 90, meta.South[0].Y, 1e-9)
	// North axis spans the single top cube.
	assert.InDelta(t, 110, meta.North[1].X, 1e-9)
	assert.InDelta(t, 130, meta.North[1].Y, 1e-9)
}

func TestConfigurationSameTypeSideNotLinked(t *testing.T) {
	a := NewArena()
	r1, r2 := a.New(TypeRed), a.New(TypeRed)
	cfg := NewConfiguration(400, 200, 0, TiltHorizontal, []CubeState{
		{Cube: r1, Pos: V(100, 100)},
		{Cube: r2, Pos: V(120, 100)},
	})
	assert.Equal(t, 2, cfg.PolyCollection().Len())
}

func TestConfigurationKey(t *testing.T) {
	a := NewArena()
	r, b := a.New(TypeRed), a.New(TypeBlue)
	base := NewConfiguration(400, 200, 0.5, TiltHorizontal, []CubeState{
		{Cube: r, Pos: V(100, 100)},
		{Cube: b, Pos: V(200, 100)},
	})
	jitter := NewConfiguration(400, 200, 0.5, TiltHorizontal, []CubeState{
		{Cube: b, Pos: V(200.2, 99.9)},
		{Cube: r, Pos: V(99.8, 100.1)},
	})
	moved := NewConfiguration(400, 200, 0.5, TiltHorizontal, []CubeState{
		{Cube: r, Pos: V(110, 100)},
		{Cube: b, Pos: V(200, 100)},
	})
	turned := NewConfiguration(400, 200, 0.5+2*3.141592653589793, TiltHorizontal, []CubeState{
		{Cube: r, Pos: V(100, 100)},
		{Cube: b, Pos: V(200, 100)},
	})

	assert.True(t, base.Equal(jitter))
	assert.Equal(t, base.Hash(), jitter.Hash())
	assert.False(t, base.Equal(moved))
	assert.True(t, base.Equal(turned), "field angle is taken modulo a full turn")
	assert.Equal(t, []Cube{r, b}, jitter.Cubes(), "states are ordered by id")
}
