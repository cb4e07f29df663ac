package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectionInv(t *testing.T) {
	tests := []struct {
		d    Direction
		want Direction
	}{
		{North, South},
		{East, West},
		{South, North},
		{West, East},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.d.Inv(), "Inv(%v)", tt.d)
		assert.Equal(t, tt.d, tt.d.Inv().Inv(), "Inv(Inv(%v))", tt.d)
	}
}

func TestDirectionVecFollowsField(t *testing.T) {
	n := North.Vec(0)
	assert.InDelta(t, 0, n.X, 1e-12)
	assert.InDelta(t, 1, n.Y, 1e-12)

	// A quarter turn of the field makes north point west.
	n = North.Vec(math.Pi / 2)
	assert.InDelta(t, -1, n.X, 1e-12)
	assert.InDelta(t, 0, n.Y, 1e-12)

	for _, d := range Directions() {
		dx, dy := d.Offset()
		v := d.Vec(0)
		assert.InDelta(t, float64(dx), v.X, 1e-12, "%v", d)
		assert.InDelta(t, float64(dy), v.Y, 1e-12, "%v", d)
	}
}

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, 0.5, WrapAngle(0.5+4*math.Pi), 1e-9)
	assert.InDelta(t, -0.5, WrapAngle(-0.5-2*math.Pi), 1e-9)
	assert.InDelta(t, math.Pi, WrapAngle(-math.Pi), 1e-9)
}

func TestArenaIDs(t *testing.T) {
	a := NewArena()
	r := a.New(TypeRed)
	b := a.New(TypeBlue)
	assert.Equal(t, CubeID(0), r.ID)
	assert.Equal(t, CubeID(1), b.ID)

	resumed := NewArenaAfter([]Cube{{ID: 4, Type: TypeRed}, {ID: 2, Type: TypeBlue}})
	assert.Equal(t, CubeID(5), resumed.New(TypeRed).ID)
}
