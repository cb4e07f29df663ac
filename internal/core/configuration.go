package core

import (
	"hash/fnv"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// PolyMeta is derived per-polyomino data in world coordinates.
type PolyMeta struct {
	Poly  *Polyomino
	COM   Vec
	North [2]Vec // northmost row outer edge endpoints
	South [2]Vec
}

// Configuration is a snapshot of the board. It is never mutated after
// construction; a motion produces a new one.
type Configuration struct {
	Width, Height float64
	FieldAngle    float64
	Elevation     Tilt

	cubes []CubeState
	index map[CubeID]int

	once    sync.Once
	polys   *PolyCollection
	meta    []PolyMeta
	keyOnce sync.Once
	key     string
}

// NewConfiguration builds a snapshot. Polyominoes are derived from cube
// geometry on first use.
func NewConfiguration(width, height, fieldAngle float64, elevation Tilt, states []CubeState) *Configuration {
	return newConfiguration(width, height, fieldAngle, elevation, states, nil)
}

// NewDetectedConfiguration builds a snapshot whose polyominoes are already
// known, as after a simulation step.
func NewDetectedConfiguration(width, height, fieldAngle float64, elevation Tilt, states []CubeState, polys *PolyCollection) *Configuration {
	return newConfiguration(width, height, fieldAngle, elevation, states, polys)
}

func newConfiguration(width, height, fieldAngle float64, elevation Tilt, states []CubeState, polys *PolyCollection) *Configuration {
	cs := make([]CubeState, len(states))
	copy(cs, states)
	sort.Slice(cs, func(i, j int) bool { return cs[i].Cube.ID < cs[j].Cube.ID })
	idx := make(map[CubeID]int, len(cs))
	for i, s := range cs {
		idx[s.Cube.ID] = i
	}
	return &Configuration{
		Width:      width,
		Height:     height,
		FieldAngle: fieldAngle,
		Elevation:  elevation,
		cubes:      cs,
		index:      idx,
		polys:      polys,
	}
}

// Len returns the number of cubes.
func (c *Configuration) Len() int { return len(c.cubes) }

// States returns cube states ordered by id. The slice must not be modified.
func (c *Configuration) States() []CubeState { return c.cubes }

// Cubes returns the cubes ordered by id.
func (c *Configuration) Cubes() []Cube {
	out := make([]Cube, len(c.cubes))
	for i, s := range c.cubes {
		out[i] = s.Cube
	}
	return out
}

// State returns the state of cube.
func (c *Configuration) State(cube Cube) (CubeState, bool) {
	i, ok := c.index[cube.ID]
	if !ok {
		return CubeState{}, false
	}
	return c.cubes[i], true
}

// Position returns the center of cube.
func (c *Configuration) Position(cube Cube) Vec {
	s, _ := c.State(cube)
	return s.Pos
}

// Perimeter returns the board perimeter.
func (c *Configuration) Perimeter() float64 {
	return 2 * (c.Width + c.Height)
}

func (c *Configuration) derive() {
	c.once.Do(func() {
		if c.polys == nil {
			c.polys = DetectPolyominoes(DetectLinks(c.cubes))
		}
		c.meta = make([]PolyMeta, 0, c.polys.Len())
		for _, p := range c.polys.Polyominoes() {
			c.meta = append(c.meta, c.polyMeta(p))
		}
	})
}

func (c *Configuration) polyMeta(p *Polyomino) PolyMeta {
	root, _ := c.State(p.Root())
	world := func(v Vec) Vec { return root.Pos.Add(v.Rotate(root.Angle)) }
	var sum Vec
	for _, cube := range p.Cubes() {
		sum = sum.Add(c.Position(cube))
	}
	n0, n1 := p.PivotAxis(North)
	s0, s1 := p.PivotAxis(South)
	return PolyMeta{
		Poly:  p,
		COM:   sum.Scale(1 / float64(p.Size())),
		North: [2]Vec{world(n0), world(n1)},
		South: [2]Vec{world(s0), world(s1)},
	}
}

// PolyCollection returns the polyominoes on the board.
func (c *Configuration) PolyCollection() *PolyCollection {
	c.derive()
	return c.polys
}

// Meta returns per-polyomino metadata in collection order.
func (c *Configuration) Meta() []PolyMeta {
	c.derive()
	return c.meta
}

// MetaOf returns the metadata of the polyomino holding cube.
func (c *Configuration) MetaOf(cube Cube) (PolyMeta, bool) {
	for _, m := range c.Meta() {
		if m.Poly.Contains(cube) {
			return m, true
		}
	}
	return PolyMeta{}, false
}

// Key identifies the configuration by rounded cube positions, cube types
// and the field angle.
func (c *Configuration) Key() string {
	c.keyOnce.Do(c.buildKey)
	return c.key
}

func (c *Configuration) buildKey() {
	var b strings.Builder
	a := math.Mod(c.FieldAngle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	b.WriteString(strconv.FormatInt(int64(math.Round(a*1000)), 10))
	for _, s := range c.cubes {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(int(s.Cube.ID)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(s.Cube.Type)))
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(int64(math.Round(s.Pos.X)), 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(int64(math.Round(s.Pos.Y)), 10))
	}
	c.key = b.String()
}

// Hash returns a hash of Key.
func (c *Configuration) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(c.Key()))
	return h.Sum64()
}

// Equal compares keys.
func (c *Configuration) Equal(o *Configuration) bool {
	return o != nil && c.Key() == o.Key()
}
