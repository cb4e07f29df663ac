package core

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagForceNewtonThirdLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		p1 := V(rng.Float64()*100, rng.Float64()*100)
		p2 := V(rng.Float64()*100, rng.Float64()*100)
		m1 := FromAngle(rng.Float64() * 2 * math.Pi)
		m2 := FromAngle(rng.Float64() * 2 * math.Pi)

		f := MagForce(p1, p2, m1, m2)
		g := MagForce(p2, p1, m2, m1)
		assert.InDelta(t, -f.X, g.X, 1e-9*(1+math.Abs(f.X)))
		assert.InDelta(t, -f.Y, g.Y, 1e-9*(1+math.Abs(f.Y)))
	}
}

func TestMagForceDecreasesWithDistance(t *testing.T) {
	dirs := []Vec{V(0, 1), V(1, 0), V(1, 1).Norm()}
	for _, dir := range dirs {
		m := V(0, 1)
		prev := math.Inf(1)
		for r := MagDistanceMin; r < 80; r += 0.5 {
			f := MagForce(V(0, 0), dir.Scale(r), m, m).Len()
			require.Less(t, f, prev, "r=%.1f dir=%v", r, dir)
			prev = f
		}
	}
}

func TestMagForceClampFloor(t *testing.T) {
	m := V(0, 1)
	atFloor := MagForce(V(0, 0), V(0, MagDistanceMin), m, m)
	inside := MagForce(V(0, 0), V(0, MagDistanceMin/2), m, m)
	assert.InDelta(t, atFloor.Len(), inside.Len(), 1e-9)
	assert.InDelta(t, MagConnectForce, atFloor.Len(), 1e-9)
}

func TestSideMagnetsAttractOnlyAcrossTypes(t *testing.T) {
	tests := []struct {
		name    string
		left    CubeType
		right   CubeType
		attract bool
	}{
		{"red-blue", TypeRed, TypeBlue, true},
		{"blue-red", TypeBlue, TypeRed, true},
		{"red-red", TypeRed, TypeRed, false},
		{"blue-blue", TypeBlue, TypeBlue, false},
	}

	for _, tt := range tests {
		l := Cube{ID: 0, Type: tt.left}.Ports(V(0, 0), 0)[East]
		r := Cube{ID: 1, Type: tt.right}.Ports(V(CubeSize+2, 0), 0)[West]
		f := MagForce(l.Pos, r.Pos, l.Moment, r.Moment)
		// Force on the right magnet points west when attracting.
		assert.Equal(t, tt.attract, f.X < 0, tt.name)
	}
}

func TestCheckConnection(t *testing.T) {
	red := Cube{ID: 0, Type: TypeRed}
	blue := Cube{ID: 1, Type: TypeBlue}
	red2 := Cube{ID: 2, Type: TypeRed}

	tests := []struct {
		name string
		a, b CubeState
		edge Direction
		ok   bool
	}{
		{"red west of blue", CubeState{Cube: red, Pos: V(80, 50)}, CubeState{Cube: blue, Pos: V(100, 50)}, West, true},
		{"blue east of red", CubeState{Cube: blue, Pos: V(100, 50)}, CubeState{Cube: red, Pos: V(80, 50)}, East, true},
		{"red on red", CubeState{Cube: red2, Pos: V(80, 70)}, CubeState{Cube: red, Pos: V(80, 50)}, North, true},
		{"red beside red", CubeState{Cube: red2, Pos: V(100, 50)}, CubeState{Cube: red, Pos: V(80, 50)}, 0, false},
		{"gap", CubeState{Cube: red, Pos: V(70, 50)}, CubeState{Cube: blue, Pos: V(100, 50)}, 0, false},
		// The ports pull with (6/6.2)^4 of the contact force, inside the tolerance.
		{"small gap", CubeState{Cube: red, Pos: V(79.8, 50)}, CubeState{Cube: blue, Pos: V(100, 50)}, West, true},
		// (6/6.5)^4 drops below 1-ConnectTolerance.
		{"gap past tolerance", CubeState{Cube: red, Pos: V(79.5, 50)}, CubeState{Cube: blue, Pos: V(100, 50)}, 0, false},
	}

	for _, tt := range tests {
		edge, ok := CheckConnection(tt.a, tt.b)
		assert.Equal(t, tt.ok, ok, tt.name)
		if tt.ok {
			assert.Equal(t, tt.edge, edge, tt.name)
		}
	}
}

func TestConnectionEquality(t *testing.T) {
	a := Cube{ID: 3, Type: TypeRed}
	b := Cube{ID: 1, Type: TypeBlue}
	c := Connection{A: a, B: b, Edge: West}
	assert.True(t, c.Equal(c.Inverse()))
	assert.Equal(t, Connection{A: b, B: a, Edge: East}, c.Canonical())
	assert.False(t, c.Equal(Connection{A: a, B: b, Edge: East}))
}

func TestAdjacencyLink(t *testing.T) {
	a := Cube{ID: 0, Type: TypeRed}
	b := Cube{ID: 1, Type: TypeBlue}
	c := Cube{ID: 2, Type: TypeBlue}
	adj := NewAdjacency(a, b, c)

	require.True(t, adj.Link(a, b, West))
	assert.True(t, adj.Linked(a, b, West))
	assert.True(t, adj.Linked(b, a, East))
	assert.False(t, adj.Link(c, b, West), "edge already taken")

	n, ok := adj.Neighbor(a, East)
	require.True(t, ok)
	assert.Equal(t, b, n)
}
