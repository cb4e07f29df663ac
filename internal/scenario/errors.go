package scenario

import "errors"

// Sentinel errors for decoding and generation.
var (
	// ErrUnknownCubeType indicates a cube type name other than red or blue.
	ErrUnknownCubeType = errors.New("scenario: unknown cube type")
	// ErrUnknownTilt indicates an unknown field elevation name.
	ErrUnknownTilt = errors.New("scenario: unknown tilt")
	// ErrUnknownShape indicates a target shape family that does not exist.
	ErrUnknownShape = errors.New("scenario: unknown shape")
	// ErrEmptyShape indicates a target shape without cells.
	ErrEmptyShape = errors.New("scenario: shape has no cells")
	// ErrDisconnectedShape indicates target cells that are not 4-connected.
	ErrDisconnectedShape = errors.New("scenario: shape is not connected")
	// ErrOverlap indicates two cubes or cells in the same place, or a
	// repeated cube id.
	ErrOverlap = errors.New("scenario: overlapping cubes")
	// ErrTypeCount indicates an unsupported number of cube types.
	ErrTypeCount = errors.New("scenario: unsupported type count")
	// ErrNoRoom indicates the board cannot hold the requested cubes.
	ErrNoRoom = errors.New("scenario: no room on board")
)
