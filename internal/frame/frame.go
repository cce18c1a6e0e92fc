package frame

import "github.com/go-gl/mathgl/mgl64"

// Frame is a position and rotation in some parent space.
type Frame struct {
	Position mgl64.Vec3
	Rotation mgl64.Mat3
}

func Identity() Frame {
	return Frame{Rotation: mgl64.Ident3()}
}

func At(position mgl64.Vec3) Frame {
	return Frame{Position: position, Rotation: mgl64.Ident3()}
}

// New builds a frame and re-orthonormalizes the rotation.
func New(position mgl64.Vec3, rotation mgl64.Mat3) Frame {
	return Frame{Position: position, Rotation: Orthonormalize(rotation)}
}

func (f Frame) LocalToGlobal(v mgl64.Vec3) mgl64.Vec3 {
	return f.Position.Add(f.Rotation.Mul3x1(v))
}

func (f Frame) GlobalToLocal(v mgl64.Vec3) mgl64.Vec3 {
	return f.Rotation.Transpose().Mul3x1(v.Sub(f.Position))
}

func (f Frame) LocalToRelative(v mgl64.Vec3) mgl64.Vec3 {
	return f.Rotation.Mul3x1(v)
}

func (f Frame) RelativeToLocal(v mgl64.Vec3) mgl64.Vec3 {
	return f.Rotation.Transpose().Mul3x1(v)
}

// LocalToGlobalFrame expresses a frame given relative to f in f's parent space.
func (f Frame) LocalToGlobalFrame(local Frame) Frame {
	return Frame{
		Position: f.LocalToGlobal(local.Position),
		Rotation: f.Rotation.Mul3(local.Rotation),
	}
}

// GlobalToLocalFrame expresses a frame given in f's parent space relative to f.
func (f Frame) GlobalToLocalFrame(global Frame) Frame {
	rt := f.Rotation.Transpose()
	return Frame{
		Position: rt.Mul3x1(global.Position.Sub(f.Position)),
		Rotation: rt.Mul3(global.Rotation),
	}
}

func (f Frame) Inverse() Frame {
	rt := f.Rotation.Transpose()
	return Frame{
		Position: rt.Mul3x1(f.Position).Mul(-1),
		Rotation: rt,
	}
}

// GlobalFrame is a frame in world space with a fixed-point position.
type GlobalFrame struct {
	Position Position
	Rotation mgl64.Mat3
}

func GlobalIdentity() GlobalFrame {
	return GlobalFrame{Rotation: mgl64.Ident3()}
}

func GlobalAt(p Position) GlobalFrame {
	return GlobalFrame{Position: p, Rotation: mgl64.Ident3()}
}

func NewGlobal(p Position, rotation mgl64.Mat3) GlobalFrame {
	return GlobalFrame{Position: p, Rotation: Orthonormalize(rotation)}
}

func (g GlobalFrame) LocalToGlobal(v mgl64.Vec3) Position {
	return g.Position.Add(g.Rotation.Mul3x1(v))
}

func (g GlobalFrame) GlobalToLocal(p Position) mgl64.Vec3 {
	return g.Rotation.Transpose().Mul3x1(p.Sub(g.Position))
}

func (g GlobalFrame) LocalToRelative(v mgl64.Vec3) mgl64.Vec3 {
	return g.Rotation.Mul3x1(v)
}

func (g GlobalFrame) RelativeToLocal(v mgl64.Vec3) mgl64.Vec3 {
	return g.Rotation.Transpose().Mul3x1(v)
}

func (g GlobalFrame) LocalToGlobalFrame(local Frame) GlobalFrame {
	return GlobalFrame{
		Position: g.LocalToGlobal(local.Position),
		Rotation: g.Rotation.Mul3(local.Rotation),
	}
}

func (g GlobalFrame) GlobalToLocalFrame(global GlobalFrame) Frame {
	rt := g.Rotation.Transpose()
	return Frame{
		Position: rt.Mul3x1(global.Position.Sub(g.Position)),
		Rotation: rt.Mul3(global.Rotation),
	}
}

// RelativeTo drops the fixed-point position by expressing g relative to an
// origin. The result keeps world axes.
func (g GlobalFrame) RelativeTo(origin Position) Frame {
	return Frame{Position: g.Position.Sub(origin), Rotation: g.Rotation}
}

func (g GlobalFrame) Translated(v mgl64.Vec3) GlobalFrame {
	return GlobalFrame{Position: g.Position.Add(v), Rotation: g.Rotation}
}

// RotatedAroundLocalPoint applies a world-space rotation about the point that
// sits at localPoint in g. That point keeps its world position.
func (g GlobalFrame) RotatedAroundLocalPoint(localPoint mgl64.Vec3, rotation mgl64.Mat3) GlobalFrame {
	offset := g.Rotation.Mul3x1(localPoint)
	rotatedOffset := rotation.Mul3x1(offset)
	return GlobalFrame{
		Position: g.Position.Add(offset.Sub(rotatedOffset)),
		Rotation: Orthonormalize(rotation.Mul3(g.Rotation)),
	}
}
