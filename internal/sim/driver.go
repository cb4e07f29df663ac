package sim

import (
	"math"
	"sync"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

// Command is an interactive field input.
type Command int

const (
	RotateLeft  Command = iota // counter-clockwise
	RotateRight                // clockwise
	WalkWest
	WalkEast
	TiltNorth
	TiltSouth
	Level
)

// Driver feeds motions into a World a few steps at a time, so that an
// interactive frontend can animate them. Motions queue up and expand only
// when they start, against the state left by the previous one.
type Driver struct {
	mu sync.Mutex

	cfg     Config
	world   *World
	arena   *core.Arena
	queue   []Motion
	steps   []Step
	history []Motion

	PivotAngle float64 // walk pivot angle
	RotateStep float64 // angle of one rotate command
}

// NewDriver starts a sandbox from c.
func NewDriver(cfg Config, c *core.Configuration) *Driver {
	d := &Driver{
		cfg:        cfg,
		PivotAngle: math.Pi / 6,
		RotateStep: math.Pi / 12,
	}
	d.Reset(c)
	return d
}

// Reset reloads c and drops queued motions and history.
func (d *Driver) Reset(c *core.Configuration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.world = NewWorld(d.cfg, c)
	d.arena = core.NewArenaAfter(c.Cubes())
	d.queue, d.steps, d.history = nil, nil, nil
}

// World returns the live world.
func (d *Driver) World() *World {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.world
}

// Motion maps a command to its motion.
func (d *Driver) Motion(c Command) Motion {
	switch c {
	case RotateLeft:
		return Rotation{Angle: d.RotateStep}
	case RotateRight:
		return Rotation{Angle: -d.RotateStep}
	case WalkWest:
		return PivotWalk{Direction: core.West, Angle: d.PivotAngle}
	case WalkEast:
		return PivotWalk{Direction: core.East, Angle: d.PivotAngle}
	case TiltNorth:
		return Tilt{Level: core.TiltNorthDown}
	case TiltSouth:
		return Tilt{Level: core.TiltSouthDown}
	default:
		return Tilt{Level: core.TiltHorizontal}
	}
}

// Do queues the motion of c.
func (d *Driver) Do(c Command) { d.Push(d.Motion(c)) }

// Push queues motions.
func (d *Driver) Push(ms ...Motion) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, ms...)
}

// Busy reports whether steps are still pending.
func (d *Driver) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.steps) > 0 || len(d.queue) > 0
}

// Tick runs up to n pending steps and returns how many ran.
func (d *Driver) Tick(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	ran := 0
	for ran < n {
		if len(d.steps) == 0 {
			if len(d.queue) == 0 {
				break
			}
			m := d.queue[0]
			d.queue = d.queue[1:]
			d.history = append(d.history, m)
			d.steps = m.Steps(d.world.params())
			continue
		}
		s := d.steps[0]
		d.steps = d.steps[1:]
		d.world.Step(s.AngleChange, s.Elevation)
		ran++
	}
	return ran
}

// Flush runs every pending step.
func (d *Driver) Flush() {
	for d.Busy() {
		d.Tick(1 << 16)
	}
}

// Idle runs n zero steps at the current elevation, outside the history.
func (d *Driver) Idle(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range (Idle{N: n}).Steps(d.world.params()) {
		d.world.Step(s.AngleChange, s.Elevation)
	}
}

// Place drops a fresh cube of type t at pos.
func (d *Driver) Place(t core.CubeType, pos core.Vec) (core.Cube, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.world.Fits(pos) {
		return core.Cube{}, false
	}
	c := d.arena.New(t)
	if !d.world.AddCube(c, pos) {
		return core.Cube{}, false
	}
	return c, true
}

// History returns the motions started so far.
func (d *Driver) History() []Motion {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Motion(nil), d.history...)
}
