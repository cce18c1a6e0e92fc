package physical

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/frame"
)

// HardConstraint joins a child physical to its parent. RelativeFrame maps the
// child's attachment frame into the parent's attachment frame; RelativeMotion
// is the child side's motion in the parent attachment's axes.
type HardConstraint interface {
	RelativeFrame() frame.Frame
	RelativeMotion() frame.Motion
	Update(dt float64)
}

// FixedConstraint welds both sides together.
type FixedConstraint struct{}

func (FixedConstraint) RelativeFrame() frame.Frame   { return frame.Identity() }
func (FixedConstraint) RelativeMotion() frame.Motion { return frame.Motion{} }
func (FixedConstraint) Update(float64)               {}

// MotorConstraint spins the child about the attachment's Z axis at a
// constant angular speed.
type MotorConstraint struct {
	Speed float64
	Angle float64
}

func NewMotorConstraint(speed float64) *MotorConstraint {
	return &MotorConstraint{Speed: speed}
}

func (m *MotorConstraint) RelativeFrame() frame.Frame {
	return frame.Frame{Rotation: mgl64.Rotate3DZ(m.Angle)}
}

func (m *MotorConstraint) RelativeMotion() frame.Motion {
	return frame.Motion{AngularVelocity: mgl64.Vec3{0, 0, m.Speed}}
}

func (m *MotorConstraint) Update(dt float64) {
	m.Angle = math.Mod(m.Angle+m.Speed*dt, 2*math.Pi)
}

// PistonConstraint slides the child along the attachment's Z axis between
// Min and Max, completing one cycle every 2π/Speed seconds.
type PistonConstraint struct {
	Min, Max float64
	Speed    float64
	Phase    float64
}

func NewPistonConstraint(lo, hi, speed float64) *PistonConstraint {
	return &PistonConstraint{Min: lo, Max: hi, Speed: speed}
}

func (p *PistonConstraint) extension() float64 {
	return p.Min + (p.Max-p.Min)*(1-math.Cos(p.Phase))/2
}

func (p *PistonConstraint) RelativeFrame() frame.Frame {
	return frame.At(mgl64.Vec3{0, 0, p.extension()})
}

func (p *PistonConstraint) RelativeMotion() frame.Motion {
	v := (p.Max - p.Min) * math.Sin(p.Phase) / 2 * p.Speed
	return frame.Motion{Velocity: mgl64.Vec3{0, 0, v}}
}

func (p *PistonConstraint) Update(dt float64) {
	p.Phase = math.Mod(p.Phase+p.Speed*dt, 2*math.Pi)
}
