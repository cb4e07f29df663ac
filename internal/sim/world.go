// Package sim advances magnetic cubes on a board under a global field.
//
// The World steps rigid polyomino bodies in a chipmunk space:
//   - overdamped translation from pairwise dipole forces
//   - field-tracking rotation about a tilt-dependent pivot
//   - cube/cube and cube/wall contacts solved by chipmunk
//   - magnet-triggered, latched connections
package sim

import (
	"math"
	"sync"

	"github.com/jakecoffman/cp"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

// Config holds the physical tuning of a World.
type Config struct {
	// Duration of one step in seconds
	Dt float64

	// Field rotation speed limit (rad/s)
	MaxAngularVelocity float64

	// Restoring torque per cube at a quarter turn of lag
	FieldTorque float64

	// Rotational and translational drag per cube
	RotationalDrag float64
	LinearDrag     float64

	// Drag multiplier while the plane is tipped
	TiltFriction float64

	// Per-step clamps
	MaxStepDisplacement float64
	MaxStepRotation     float64

	// Contact solver iterations per step
	CollisionIterations int

	// Fraction of contact overlap pushed out per step
	ContactCorrection float64

	// Zero steps per cube of the longest chain after each rotation
	SettleSteps int
}

// DefaultConfig returns the tuning used by the planners.
func DefaultConfig() Config {
	return Config{
		Dt:                  0.02,
		MaxAngularVelocity:  math.Pi / 2,
		FieldTorque:         5000,
		RotationalDrag:      200,
		LinearDrag:          1,
		TiltFriction:        0.6,
		MaxStepDisplacement: 2,
		MaxStepRotation:     0.1,
		CollisionIterations: 6,
		ContactCorrection:   0.8,
		SettleSteps:         8,
	}
}

// Metrics counts world events.
type Metrics struct {
	Steps       int `json:"steps"`
	Connections int `json:"connections"`
	Detections  int `json:"detections"`
}

// World is the mutable physical state of one rollout. It is owned by a
// single goroutine at a time; the mutex only guards readers such as a
// renderer.
type World struct {
	mu sync.Mutex

	cfg           Config
	width, height float64
	fieldAngle    float64
	elevation     core.Tilt

	space   *cp.Space
	bodies  []*body
	bodyOf  map[core.CubeID]*body
	latches []latch
	loaded  bool
	adj     *core.Adjacency
	polys   *core.PolyCollection
	dirty   bool

	metrics Metrics
}

// NewWorld loads a configuration. Cubes of one polyomino are snapped onto
// their grid around the polyomino's root cube.
func NewWorld(cfg Config, c *core.Configuration) *World {
	w := &World{
		cfg:        cfg,
		width:      c.Width,
		height:     c.Height,
		fieldAngle: c.FieldAngle,
		elevation:  c.Elevation,
		bodyOf:     make(map[core.CubeID]*body),
		adj:        core.NewAdjacency(c.Cubes()...),
		polys:      c.PolyCollection(),
	}
	w.space = newSpace(cfg, w.width, w.height)
	for _, p := range w.polys.Polyominoes() {
		for _, l := range p.Links() {
			if !(l.Edge.IsSide() && l.A.Type == l.B.Type) {
				w.adj.Link(l.A, l.B, l.Edge)
			}
		}
		root, _ := c.State(p.Root())
		var vel core.Vec
		for _, cube := range p.Cubes() {
			s, _ := c.State(cube)
			vel = vel.Add(s.Vel)
		}
		vel = vel.Scale(1 / float64(p.Size()))
		com := root.Pos.Add(p.LocalCOM().Rotate(root.Angle))
		b := newBody(p, com, root.Angle, vel, root.Spin)
		b.setElevation(w.elevation, cfg.TiltFriction)
		w.addBody(b)
	}
	return w
}

// newSpace builds a gravity-free space walled in by four static segments
// lying just outside the board.
func newSpace(cfg Config, width, height float64) *cp.Space {
	space := cp.NewSpace()
	space.Iterations = uint(max(cfg.CollisionIterations, 1))
	space.SetCollisionBias(math.Pow(1-cfg.ContactCorrection, 1/cfg.Dt))
	const r = core.CubeSize
	corners := [4]cp.Vector{{X: -r, Y: -r}, {X: width + r, Y: -r}, {X: width + r, Y: height + r}, {X: -r, Y: height + r}}
	for i, a := range corners {
		wall := space.AddShape(cp.NewSegment(space.StaticBody, a, corners[(i+1)%4], r))
		wall.SetFriction(0)
		wall.SetElasticity(0)
	}
	return space
}

func (w *World) addBody(b *body) {
	b.attach(w.space, w.velocityFunc(b))
	w.bodies = append(w.bodies, b)
	for _, c := range b.cubes {
		w.bodyOf[c.ID] = b
	}
}

// AddCube drops a single cube at pos. It fails if the cube would overlap
// another cube or leave the board.
func (w *World) AddCube(c core.Cube, pos core.Vec) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.bodyOf[c.ID]; ok {
		return false
	}
	if !w.fits(pos) {
		return false
	}
	b := newBody(core.NewPolyomino(c), pos, w.fieldAngle, core.Vec{}, 0)
	b.setElevation(w.elevation, w.cfg.TiltFriction)
	w.addBody(b)
	w.adj.Add(c)
	w.dirty = true
	w.detect()
	return true
}

// Fits reports whether a single cube dropped at pos would stay on the board
// without overlapping another cube.
func (w *World) Fits(pos core.Vec) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fits(pos)
}

func (w *World) fits(pos core.Vec) bool {
	for _, s := range [4]core.Vec{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}} {
		q := pos.Add(s.Scale(core.CubeRadius).Rotate(w.fieldAngle))
		if q.X < 0 || q.Y < 0 || q.X > w.width || q.Y > w.height {
			return false
		}
	}
	for _, o := range w.bodies {
		for _, oc := range o.cubes {
			if o.pos(oc).Dist(pos) < core.CubeSize {
				return false
			}
		}
	}
	return true
}

// Step advances one timestep. The field turns first. Chipmunk then moves
// every body by the velocity of the previous step, and the velocity update
// of the first body computes magnet forces and field torque at the new
// poses. Latches found there connect once the space is unlocked.
func (w *World) Step(angleChange float64, elevation core.Tilt) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.fieldAngle += angleChange
	w.elevation = elevation
	w.latches = w.latches[:0]
	w.loaded = false
	w.space.Step(w.cfg.Dt)
	w.load()
	for _, b := range w.bodies {
		b.pull()
	}
	for _, l := range w.latches {
		w.connect(l)
	}
	w.detect()
	w.metrics.Steps++
}

func (w *World) velocityFunc(b *body) cp.BodyVelocityFunc {
	return func(rigid *cp.Body, _ cp.Vector, _, dt float64) {
		w.load()
		v, omega := b.overdamped(w.cfg, dt)
		rigid.SetVelocityVector(toCP(v))
		rigid.SetAngularVelocity(omega)
	}
}

// load computes the forces of the current step once.
func (w *World) load() {
	if w.loaded {
		return
	}
	w.loaded = true
	for _, b := range w.bodies {
		b.pull()
		b.force, b.torque = core.Vec{}, 0
	}
	w.applyMagnets()
	w.applyField()
}

type latch struct {
	a, b core.Cube
	edge core.Direction
}

// applyMagnets sums the dipole forces of every cube pair within sensor
// range that belongs to different bodies, and collects pairs whose closest
// ports latch.
func (w *World) applyMagnets() {
	cubes := w.adj.Cubes()
	for i, ca := range cubes {
		ba := w.bodyOf[ca.ID]
		pa := ba.pos(ca)
		for _, cb := range cubes[i+1:] {
			bb := w.bodyOf[cb.ID]
			if ba == bb {
				continue
			}
			pb := bb.pos(cb)
			dist := pa.Dist(pb)
			if dist > core.SensorRadius {
				continue
			}
			portsA := ca.Ports(pa, ba.angle)
			portsB := cb.Ports(pb, bb.angle)
			for _, x := range portsA {
				for _, y := range portsB {
					f := core.MagForce(x.Pos, y.Pos, x.Moment, y.Moment)
					bb.force = bb.force.Add(f)
					bb.torque += y.Pos.Sub(bb.com).Cross(f)
					ba.force = ba.force.Sub(f)
					ba.torque -= x.Pos.Sub(ba.com).Cross(f)
				}
			}
			if dist > 1.5*core.CubeSize {
				continue
			}
			sa := core.CubeState{Cube: ca, Pos: pa, Angle: ba.angle}
			sb := core.CubeState{Cube: cb, Pos: pb, Angle: bb.angle}
			if edge, ok := core.CheckConnection(sa, sb); ok {
				w.latches = append(w.latches, latch{ca, cb, edge})
			}
		}
	}
}

// connect merges the bodies of a latch into one, anchored on the heavier
// body. Merges that would overlap are dropped. The space must be unlocked.
func (w *World) connect(l latch) {
	ba, bb := w.bodyOf[l.a.ID], w.bodyOf[l.b.ID]
	if ba == bb {
		return
	}
	var merged *core.Polyomino
	anchor, anchorCube := bb, l.b
	if bb.mass() >= ba.mass() {
		merged = ba.poly.ConnectPoly(l.a, bb.poly, l.b, l.edge)
	} else {
		anchor, anchorCube = ba, l.a
		merged = bb.poly.ConnectPoly(l.b, ba.poly, l.a, l.edge.Inv())
	}
	if merged == nil {
		return
	}
	c0, _ := merged.CellOf(anchorCube)
	com := anchor.pos(anchorCube).Add(merged.LocalCOM().Sub(c0.Local()).Rotate(anchor.angle))
	nb := newBody(merged, com, anchor.angle, anchor.vel, anchor.spin)
	nb.setElevation(w.elevation, w.cfg.TiltFriction)
	ba.detach(w.space)
	bb.detach(w.space)
	nb.attach(w.space, w.velocityFunc(nb))

	keep := make([]*body, 0, len(w.bodies)-1)
	placed := false
	for _, b := range w.bodies {
		if b != ba && b != bb {
			keep = append(keep, b)
			continue
		}
		if !placed {
			keep = append(keep, nb)
			placed = true
		}
	}
	w.bodies = keep
	for _, c := range nb.cubes {
		w.bodyOf[c.ID] = nb
	}
	for _, link := range merged.Links() {
		if !(link.Edge.IsSide() && link.A.Type == link.B.Type) {
			w.adj.Link(link.A, link.B, link.Edge)
		}
	}
	w.dirty = true
	w.metrics.Connections++
}

func (w *World) detect() {
	if !w.dirty {
		return
	}
	w.polys = core.DetectPolyominoes(w.adj)
	w.dirty = false
	w.metrics.Detections++
}

// applyField adds the restoring torque toward the field angle and sets
// each body's friction pivot for the current elevation.
func (w *World) applyField() {
	for _, b := range w.bodies {
		b.torque += w.cfg.FieldTorque * b.mass() * math.Sin(w.fieldAngle-b.angle)
		b.setElevation(w.elevation, w.cfg.TiltFriction)
	}
}

// Snapshot returns the current state as a Configuration.
func (w *World) Snapshot() *core.Configuration {
	w.mu.Lock()
	defer w.mu.Unlock()

	states := make([]core.CubeState, 0, len(w.bodyOf))
	for _, b := range w.bodies {
		for _, c := range b.cubes {
			states = append(states, core.CubeState{Cube: c, Pos: b.pos(c), Angle: b.angle, Vel: b.vel, Spin: b.spin})
		}
	}
	return core.NewDetectedConfiguration(w.width, w.height, w.fieldAngle, w.elevation, states, w.polys)
}

// Position returns the center of cube c.
func (w *World) Position(c core.Cube) core.Vec {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b, ok := w.bodyOf[c.ID]; ok {
		return b.pos(c)
	}
	return core.Vec{}
}

// PolyCollection returns the current polyominoes.
func (w *World) PolyCollection() *core.PolyCollection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polys
}

// Linked reports whether a sits on the edge side of b.
func (w *World) Linked(a, b core.Cube, edge core.Direction) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.adj.Linked(a, b, edge)
}

// FieldAngle returns the field orientation.
func (w *World) FieldAngle() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fieldAngle
}

// Elevation returns the field tilt.
func (w *World) Elevation() core.Tilt {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.elevation
}

// Size returns the board dimensions.
func (w *World) Size() (float64, float64) { return w.width, w.height }

// Config returns the world tuning.
func (w *World) Config() Config { return w.cfg }

// Metrics returns event counters.
func (w *World) Metrics() Metrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}
