// Package core defines domain models for magnetic modular cubes.
package core

import "math"

// Direction is a field-relative edge of a cube.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

func (d Direction) String() string {
	return [...]string{"NORTH", "EAST", "SOUTH", "WEST"}[d]
}

// Directions lists all four directions in enum order.
func Directions() []Direction {
	return []Direction{North, East, South, West}
}

// Inv returns the opposite direction.
func (d Direction) Inv() Direction {
	return (d + 2) % 4
}

// IsSide reports whether d is EAST or WEST.
func (d Direction) IsSide() bool {
	return d == East || d == West
}

// Angle is the world angle of d when the field angle is zero.
func (d Direction) Angle() float64 {
	return [...]float64{math.Pi / 2, 0, -math.Pi / 2, math.Pi}[d]
}

// Vec returns the unit vector of d rotated by the field angle.
func (d Direction) Vec(fieldAngle float64) Vec {
	return FromAngle(d.Angle() + fieldAngle)
}

// Offset returns the local grid step for d. Grid y grows to the north.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case North:
		return 0, 1
	case East:
		return 1, 0
	case South:
		return 0, -1
	default:
		return -1, 0
	}
}

// CubeType selects the magnet polarity pattern of a cube.
type CubeType int

const (
	TypeRed  CubeType = iota // east/west magnets point outward
	TypeBlue                 // east/west magnets point inward
)

func (t CubeType) String() string {
	return [...]string{"RED", "BLUE"}[t]
}

// Tilt is the elevation of the field plane.
type Tilt int

const (
	TiltHorizontal Tilt = iota
	TiltNorthDown
	TiltSouthDown
)

func (t Tilt) String() string {
	return [...]string{"HORIZONTAL", "NORTH_DOWN", "SOUTH_DOWN"}[t]
}

// Cube geometry. Lengths are in board units.
const (
	CubeSize     = 20.0
	CubeRadius   = CubeSize / 2
	MagnetOffset = 7.0

	// MagDistanceMin is the clamp floor of the dipole law: the port
	// distance of two touching cubes.
	MagDistanceMin = 2 * (CubeRadius - MagnetOffset)

	// MagConstant scales the dipole law.
	MagConstant = 129600.0

	// SensorRadius is the center distance below which two cubes interact
	// magnetically.
	SensorRadius = 3 * CubeSize

	// ConnectTolerance relaxes the connection threshold so that a pair held
	// slightly apart by collision correction still registers.
	ConnectTolerance = 0.2
)
