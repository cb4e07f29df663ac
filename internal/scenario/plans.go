package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/elektrokombinacija/magcubes/internal/algo"
	"github.com/elektrokombinacija/magcubes/internal/core"
	"github.com/elektrokombinacija/magcubes/internal/sim"
)

// MotionRecord is one serialized motion. Kind is "rotation", "pivot_walk",
// "tilt" or "idle"; the other fields are set as the kind needs.
type MotionRecord struct {
	Kind      string  `json:"kind"`
	Angle     float64 `json:"angle,omitempty"`
	Direction string  `json:"direction,omitempty"`
	Level     string  `json:"level,omitempty"`
	N         int     `json:"n,omitempty"`
}

// PlanRecord is a replayable plan: the start configuration, the target and
// the flattened motion script.
type PlanRecord struct {
	Planner string         `json:"planner"`
	State   string         `json:"state"`
	Start   ConfigRecord   `json:"start"`
	Motions []MotionRecord `json:"motions"`
}

// EncodeMotions converts motions to records. Unknown motion types are an
// error.
func EncodeMotions(ms []sim.Motion) ([]MotionRecord, error) {
	out := make([]MotionRecord, 0, len(ms))
	for i, m := range ms {
		switch m := m.(type) {
		case sim.Rotation:
			out = append(out, MotionRecord{Kind: "rotation", Angle: m.Angle})
		case sim.PivotWalk:
			out = append(out, MotionRecord{Kind: "pivot_walk", Angle: m.Angle, Direction: m.Direction.String()})
		case sim.Tilt:
			out = append(out, MotionRecord{Kind: "tilt", Level: m.Level.String()})
		case sim.Idle:
			out = append(out, MotionRecord{Kind: "idle", N: m.N})
		default:
			return nil, fmt.Errorf("motion %d: unsupported %T", i, m)
		}
	}
	return out, nil
}

// DecodeMotions is the inverse of EncodeMotions.
func DecodeMotions(rs []MotionRecord) ([]sim.Motion, error) {
	out := make([]sim.Motion, 0, len(rs))
	for i, r := range rs {
		switch r.Kind {
		case "rotation":
			out = append(out, sim.Rotation{Angle: r.Angle})
		case "pivot_walk":
			var d core.Direction
			switch strings.ToUpper(r.Direction) {
			case "EAST":
				d = core.East
			case "WEST":
				d = core.West
			default:
				return nil, fmt.Errorf("motion %d: pivot walk direction %q", i, r.Direction)
			}
			out = append(out, sim.PivotWalk{Direction: d, Angle: r.Angle})
		case "tilt":
			t, err := ParseTilt(r.Level)
			if err != nil {
				return nil, fmt.Errorf("motion %d: %w", i, err)
			}
			out = append(out, sim.Tilt{Level: t})
		case "idle":
			out = append(out, sim.Idle{N: r.N})
		default:
			return nil, fmt.Errorf("motion %d: unknown kind %q", i, r.Kind)
		}
	}
	return out, nil
}

// NewPlanRecord captures p for later replay.
func NewPlanRecord(planner string, p *algo.GlobalPlan) (*PlanRecord, error) {
	ms, err := EncodeMotions(p.Motions())
	if err != nil {
		return nil, err
	}
	return &PlanRecord{
		Planner: planner,
		State:   p.State.String(),
		Start:   EncodeConfiguration(p.Initial, p.Target),
		Motions: ms,
	}, nil
}

// Decode returns the start configuration, target and motion script.
func (r *PlanRecord) Decode() (*core.Configuration, *core.Shape, []sim.Motion, error) {
	c, target, err := r.Start.Decode()
	if err != nil {
		return nil, nil, nil, err
	}
	ms, err := DecodeMotions(r.Motions)
	if err != nil {
		return nil, nil, nil, err
	}
	return c, target, ms, nil
}

// SavePlan writes r as indented JSON.
func SavePlan(path string, r *PlanRecord) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadPlan reads a plan file.
func LoadPlan(path string) (*PlanRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r PlanRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &r, nil
}
