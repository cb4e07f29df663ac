package scenario

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

// Variant selects how cube types are drawn.
type Variant string

const (
	// VariantFixed types the cubes exactly as the target needs, red in
	// the target's leftmost column, and alternates leftover types.
	VariantFixed Variant = "fixed"
	// VariantFree draws the target's column parity and every leftover
	// type at random.
	VariantFree Variant = "free"
)

// GenParams defines parameters for instance generation.
type GenParams struct {
	Seed      int64     `json:"seed"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Tiles     int       `json:"tiles"`    // cubes in the target shape
	Shape     ShapeKind `json:"shape"`    // target family
	Leftover  int       `json:"leftover"` // extra single cubes
	TypeCount int       `json:"type_count"`
	Variant   Variant   `json:"variant"`
}

// DefaultGenParams returns a small fixed-type line instance.
func DefaultGenParams() GenParams {
	return GenParams{
		Seed:      1,
		Width:     400,
		Height:    300,
		Tiles:     4,
		Shape:     ShapeLine,
		TypeCount: 2,
		Variant:   VariantFixed,
	}
}

// Board is a named board size.
type Board struct {
	Name          string
	Width, Height float64
}

// Boards lists the board presets used by the experiment sweeps.
var Boards = []Board{
	{"small", 300, 300},
	{"medium", 500, 400},
	{"large", 800, 600},
}

// BoardByName finds a preset.
func BoardByName(name string) (Board, bool) {
	for _, b := range Boards {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return Board{}, false
}

// Instance is a complete generated problem.
type Instance struct {
	Name      string       `json:"name"`
	Params    GenParams    `json:"params"`
	Config    ConfigRecord `json:"config"`
	Generated string       `json:"generated"`
}

// Decode returns the start configuration and target of the instance.
func (in *Instance) Decode() (*core.Configuration, *core.Shape, error) {
	return in.Config.Decode()
}

// Save writes the instance as indented JSON.
func (in *Instance) Save(path string) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("encode instance %s: %w", in.Name, err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadInstance reads an instance file.
func LoadInstance(path string) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in Instance
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &in, nil
}

// maxPlacementTries bounds the rejection sampling per cube.
const maxPlacementTries = 2000

// Generate creates a deterministic instance from p. Cubes are placed with
// integer coordinates, at least SensorRadius apart and clear of the walls,
// so the start configuration holds single cubes only.
func Generate(p GenParams) (*Instance, error) {
	if p.TypeCount != 2 {
		return nil, fmt.Errorf("%d types: %w", p.TypeCount, ErrTypeCount)
	}
	rng := rand.New(rand.NewSource(p.Seed))

	redFirst := true
	if p.Variant == VariantFree {
		redFirst = rng.Intn(2) == 0
	}
	target, err := BuildShape(p.Shape, p.Tiles, redFirst, rng)
	if err != nil {
		return nil, err
	}
	if !target.Valid() {
		return nil, fmt.Errorf("%s target %s: %w", p.Shape, target.Key(), ErrUnknownShape)
	}

	red, blue := TypeCounts(target)
	types := make([]core.CubeType, 0, p.Tiles+p.Leftover)
	for i := 0; i < red; i++ {
		types = append(types, core.TypeRed)
	}
	for i := 0; i < blue; i++ {
		types = append(types, core.TypeBlue)
	}
	for i := 0; i < p.Leftover; i++ {
		t := core.CubeType(i % 2)
		if p.Variant == VariantFree {
			t = core.CubeType(rng.Intn(2))
		}
		types = append(types, t)
	}

	positions, err := place(len(types), p.Width, p.Height, rng)
	if err != nil {
		return nil, err
	}
	arena := core.NewArena()
	states := make([]core.CubeState, len(types))
	for i, t := range types {
		states[i] = core.CubeState{Cube: arena.New(t), Pos: positions[i]}
	}
	cfg := core.NewConfiguration(p.Width, p.Height, 0, core.TiltHorizontal, states)

	return &Instance{
		Name:      InstanceName(p),
		Params:    p,
		Config:    EncodeConfiguration(cfg, target),
		Generated: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// InstanceName is the canonical file stem for p.
func InstanceName(p GenParams) string {
	return fmt.Sprintf("%s_n%d_l%d_%s_%dx%d_s%d",
		p.Shape, p.Tiles, p.Leftover, p.Variant, int(p.Width), int(p.Height), p.Seed)
}

func place(n int, width, height float64, rng *rand.Rand) ([]core.Vec, error) {
	margin := core.CubeSize
	if width < 2*margin || height < 2*margin {
		return nil, fmt.Errorf("board %vx%v: %w", width, height, ErrNoRoom)
	}
	out := make([]core.Vec, 0, n)
	for len(out) < n {
		placed := false
		for try := 0; try < maxPlacementTries && !placed; try++ {
			v := core.V(
				math.Round(margin+rng.Float64()*(width-2*margin)),
				math.Round(margin+rng.Float64()*(height-2*margin)),
			)
			ok := true
			for _, o := range out {
				if v.Sub(o).Len() < core.SensorRadius {
					ok = false
					break
				}
			}
			if ok {
				out = append(out, v)
				placed = true
			}
		}
		if !placed {
			return nil, fmt.Errorf("%d cubes on %vx%v: %w", n, width, height, ErrNoRoom)
		}
	}
	return out, nil
}
