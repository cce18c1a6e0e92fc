package frame

import "github.com/go-gl/mathgl/mgl64"

// Motion is the linear and angular velocity of a point, in world axes.
type Motion struct {
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

// MotionOfPoint returns the motion of a point rigidly attached at offset.
func (m Motion) MotionOfPoint(offset mgl64.Vec3) Motion {
	return Motion{
		Velocity:        m.Velocity.Add(m.AngularVelocity.Cross(offset)),
		AngularVelocity: m.AngularVelocity,
	}
}

func (m Motion) AddRelativeMotion(rel Motion) Motion {
	return Motion{
		Velocity:        m.Velocity.Add(rel.Velocity),
		AngularVelocity: m.AngularVelocity.Add(rel.AngularVelocity),
	}
}

// Rotated re-expresses both vectors through rotation.
func (m Motion) Rotated(rotation mgl64.Mat3) Motion {
	return Motion{
		Velocity:        rotation.Mul3x1(m.Velocity),
		AngularVelocity: rotation.Mul3x1(m.AngularVelocity),
	}
}
