package sim

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

// body is one polyomino moving as a rigid compound of cubes. The pose
// fields mirror the chipmunk body after every step.
type body struct {
	poly   *core.Polyomino
	cubes  []core.Cube
	offset map[core.CubeID]core.Vec // body frame, from the center of mass
	com    core.Vec
	angle  float64
	vel    core.Vec
	spin   float64

	rigid  *cp.Body
	shapes []*cp.Shape

	// accumulated for the velocity update of the current step
	force  core.Vec
	torque float64

	// set from the elevation each step
	pivot core.Vec // body frame, from the center of mass
	drag  float64
}

func newBody(p *core.Polyomino, com core.Vec, angle float64, vel core.Vec, spin float64) *body {
	b := &body{
		poly:   p,
		cubes:  p.Cubes(),
		offset: make(map[core.CubeID]core.Vec, p.Size()),
		com:    com,
		angle:  angle,
		vel:    vel,
		spin:   spin,
		drag:   1,
	}
	lc := p.LocalCOM()
	for _, c := range b.cubes {
		cell, _ := p.CellOf(c)
		b.offset[c.ID] = cell.Local().Sub(lc)
	}
	return b
}

// attach creates the chipmunk body with one square shape per cube and
// adds both to space.
func (b *body) attach(space *cp.Space, velocity cp.BodyVelocityFunc) {
	moment := 0.0
	for _, off := range b.offset {
		moment += cp.MomentForBox(1, core.CubeSize, core.CubeSize) + off.LenSq()
	}
	b.rigid = space.AddBody(cp.NewBody(b.mass(), moment))
	b.rigid.SetPosition(toCP(b.com))
	b.rigid.SetAngle(b.angle)
	b.rigid.SetVelocityVector(toCP(b.vel))
	b.rigid.SetAngularVelocity(b.spin)
	b.rigid.SetVelocityUpdateFunc(velocity)
	b.shapes = b.shapes[:0]
	for _, c := range b.cubes {
		off := b.offset[c.ID]
		box := cp.BB{
			L: off.X - core.CubeRadius, B: off.Y - core.CubeRadius,
			R: off.X + core.CubeRadius, T: off.Y + core.CubeRadius,
		}
		s := space.AddShape(cp.NewBox2(b.rigid, box, 0))
		s.SetFriction(0)
		s.SetElasticity(0)
		b.shapes = append(b.shapes, s)
	}
}

func (b *body) detach(space *cp.Space) {
	for _, s := range b.shapes {
		space.RemoveShape(s)
	}
	space.RemoveBody(b.rigid)
	b.shapes, b.rigid = nil, nil
}

// pull copies the chipmunk pose into the mirror fields.
func (b *body) pull() {
	b.com = fromCP(b.rigid.Position())
	b.angle = b.rigid.Angle()
	b.vel = fromCP(b.rigid.Velocity())
	b.spin = b.rigid.AngularVelocity()
}

// overdamped turns the accumulated force and torque into the velocities
// that move the body along the exact pivot arc in one step of dt.
func (b *body) overdamped(cfg Config, dt float64) (core.Vec, float64) {
	m := b.mass()
	rot := b.torque / (cfg.RotationalDrag * m) * dt
	rot = math.Max(-cfg.MaxStepRotation, math.Min(cfg.MaxStepRotation, rot))
	var d core.Vec
	if rot != 0 {
		p := b.com.Add(b.pivot.Rotate(b.angle))
		d = p.Add(b.com.Sub(p).Rotate(rot)).Sub(b.com)
	}
	shift := b.force.Scale(dt / (cfg.LinearDrag * m * b.drag))
	if l := shift.Len(); l > cfg.MaxStepDisplacement {
		shift = shift.Scale(cfg.MaxStepDisplacement / l)
	}
	return d.Add(shift).Scale(1 / dt), rot / dt
}

func (b *body) mass() float64 { return float64(len(b.cubes)) }

func (b *body) pos(c core.Cube) core.Vec {
	return b.com.Add(b.offset[c.ID].Rotate(b.angle))
}

// setElevation places the friction pivot: the center of mass when flat,
// the middle of the touching row's outer edge when tipped.
func (b *body) setElevation(t core.Tilt, tiltFriction float64) {
	switch t {
	case core.TiltNorthDown, core.TiltSouthDown:
		d := core.South
		if t == core.TiltNorthDown {
			d = core.North
		}
		e0, e1 := b.poly.PivotAxis(d)
		b.pivot = e0.Lerp(e1, 0.5).Sub(b.poly.LocalCOM())
		b.drag = tiltFriction
	default:
		b.pivot = core.Vec{}
		b.drag = 1
	}
}

func toCP(v core.Vec) cp.Vector   { return cp.Vector{X: v.X, Y: v.Y} }
func fromCP(v cp.Vector) core.Vec { return core.V(v.X, v.Y) }
