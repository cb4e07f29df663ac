// Package scenario loads, saves and generates reconfiguration instances.
package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

// CubeRecord is one cube of a configuration.
type CubeRecord struct {
	ID    int     `json:"id"`
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
	VX    float64 `json:"vx,omitempty"`
	VY    float64 `json:"vy,omitempty"`
	Spin  float64 `json:"spin,omitempty"`
}

// CellRecord is one typed cell of a target shape.
type CellRecord struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Type string `json:"type"`
}

// ConfigRecord is the serialized form of a configuration and an optional
// target shape.
type ConfigRecord struct {
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	FieldAngle float64      `json:"field_angle"`
	Elevation  string       `json:"elevation"`
	Cubes      []CubeRecord `json:"cubes"`
	Target     []CellRecord `json:"target,omitempty"`
}

// ParseCubeType accepts "red" or "blue" in any case.
func ParseCubeType(s string) (core.CubeType, error) {
	switch strings.ToLower(s) {
	case "red":
		return core.TypeRed, nil
	case "blue":
		return core.TypeBlue, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownCubeType)
}

// ParseTilt accepts a tilt name in any case. Empty means horizontal.
func ParseTilt(s string) (core.Tilt, error) {
	switch strings.ToUpper(s) {
	case "", "HORIZONTAL":
		return core.TiltHorizontal, nil
	case "NORTH_DOWN":
		return core.TiltNorthDown, nil
	case "SOUTH_DOWN":
		return core.TiltSouthDown, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownTilt)
}

func typeName(t core.CubeType) string { return strings.ToLower(t.String()) }

// EncodeShape lists the cells of s in key order.
func EncodeShape(s *core.Shape) []CellRecord {
	if s == nil {
		return nil
	}
	out := make([]CellRecord, 0, s.Size())
	for _, c := range s.Cells() {
		t, _ := s.TypeAt(c)
		out = append(out, CellRecord{X: c.X, Y: c.Y, Type: typeName(t)})
	}
	return out
}

// DecodeShape builds a shape from cell records. Cells may be given at any
// offset; the shape is normalized.
func DecodeShape(cells []CellRecord) (*core.Shape, error) {
	if len(cells) == 0 {
		return nil, ErrEmptyShape
	}
	m := make(map[core.Cell]core.CubeType, len(cells))
	for _, r := range cells {
		t, err := ParseCubeType(r.Type)
		if err != nil {
			return nil, fmt.Errorf("cell (%d,%d): %w", r.X, r.Y, err)
		}
		c := core.Cell{X: r.X, Y: r.Y}
		if _, ok := m[c]; ok {
			return nil, fmt.Errorf("cell (%d,%d): %w", r.X, r.Y, ErrOverlap)
		}
		m[c] = t
	}
	s := core.NewShape(m)
	if s.Polyomino(core.NewArena()) == nil {
		return nil, ErrDisconnectedShape
	}
	return s, nil
}

// EncodeConfiguration records c and an optional target.
func EncodeConfiguration(c *core.Configuration, target *core.Shape) ConfigRecord {
	r := ConfigRecord{
		Width:      c.Width,
		Height:     c.Height,
		FieldAngle: c.FieldAngle,
		Elevation:  c.Elevation.String(),
		Cubes:      make([]CubeRecord, 0, c.Len()),
		Target:     EncodeShape(target),
	}
	for _, s := range c.States() {
		r.Cubes = append(r.Cubes, CubeRecord{
			ID:    int(s.Cube.ID),
			Type:  typeName(s.Cube.Type),
			X:     s.Pos.X,
			Y:     s.Pos.Y,
			Angle: s.Angle,
			VX:    s.Vel.X,
			VY:    s.Vel.Y,
			Spin:  s.Spin,
		})
	}
	return r
}

// Decode rebuilds the configuration and target. The target is nil when
// the record has none.
func (r ConfigRecord) Decode() (*core.Configuration, *core.Shape, error) {
	elev, err := ParseTilt(r.Elevation)
	if err != nil {
		return nil, nil, err
	}
	states := make([]core.CubeState, 0, len(r.Cubes))
	seen := make(map[int]bool, len(r.Cubes))
	for _, cr := range r.Cubes {
		if seen[cr.ID] || cr.ID < 0 {
			return nil, nil, fmt.Errorf("cube id %d: %w", cr.ID, ErrOverlap)
		}
		seen[cr.ID] = true
		t, err := ParseCubeType(cr.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("cube %d: %w", cr.ID, err)
		}
		states = append(states, core.CubeState{
			Cube:  core.Cube{ID: core.CubeID(cr.ID), Type: t},
			Pos:   core.V(cr.X, cr.Y),
			Angle: cr.Angle,
			Vel:   core.V(cr.VX, cr.VY),
			Spin:  cr.Spin,
		})
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Cube.ID < states[j].Cube.ID })

	var target *core.Shape
	if len(r.Target) > 0 {
		if target, err = DecodeShape(r.Target); err != nil {
			return nil, nil, fmt.Errorf("target: %w", err)
		}
	}
	return core.NewConfiguration(r.Width, r.Height, r.FieldAngle, elev, states), target, nil
}

// Write encodes c and target as indented JSON.
func Write(w io.Writer, c *core.Configuration, target *core.Shape) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(EncodeConfiguration(c, target))
}

// Read decodes a configuration written by Write.
func Read(r io.Reader) (*core.Configuration, *core.Shape, error) {
	var rec ConfigRecord
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, nil, fmt.Errorf("decode configuration: %w", err)
	}
	return rec.Decode()
}

// Save writes c and target to path.
func Save(path string, c *core.Configuration, target *core.Shape) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, c, target); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Load reads a configuration file. Instance files are accepted too.
func Load(path string) (*core.Configuration, *core.Shape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var wrapped struct {
		Config *ConfigRecord `json:"config"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Config != nil {
		return wrapped.Config.Decode()
	}
	var rec ConfigRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return rec.Decode()
}
