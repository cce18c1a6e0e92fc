package frame

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RotationFromVec is the exponential map: a rotation of |v| radians about v.
func RotationFromVec(v mgl64.Vec3) mgl64.Mat3 {
	angle := v.Len()
	if angle < 1e-12 {
		return mgl64.Ident3()
	}
	return mgl64.QuatRotate(angle, v.Mul(1/angle)).Mat4().Mat3()
}

// Orthonormalize projects an almost-rotation back onto the rotation group.
func Orthonormalize(m mgl64.Mat3) mgl64.Mat3 {
	return mgl64.Mat4ToQuat(m.Mat4()).Normalize().Mat4().Mat3()
}

// CrossMatrix returns C such that C*x == v.Cross(x).
func CrossMatrix(v mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{0, -v[2], v[1]},
		mgl64.Vec3{v[2], 0, -v[0]},
		mgl64.Vec3{-v[1], v[0], 0},
	)
}

// TransformInertia rotates an inertia tensor into the parent of rotation.
func TransformInertia(inertia, rotation mgl64.Mat3) mgl64.Mat3 {
	return rotation.Mul3(inertia).Mul3(rotation.Transpose())
}

// ParallelAxis moves an inertia tensor taken about the center of mass to a
// point from which the center of mass sits at offset.
func ParallelAxis(inertia mgl64.Mat3, mass float64, offset mgl64.Vec3) mgl64.Mat3 {
	shift := mgl64.Ident3().Mul(offset.Dot(offset)).Sub(offset.OuterProd3(offset))
	return inertia.Add(shift.Mul(mass))
}

func IsVecValid(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func IsMatValid(m mgl64.Mat3) bool {
	for _, c := range m {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// IsRotationValid reports whether m is finite and orthonormal within tol.
func IsRotationValid(m mgl64.Mat3, tol float64) bool {
	if !IsMatValid(m) {
		return false
	}
	return m.Mul3(m.Transpose()).ApproxEqualThreshold(mgl64.Ident3(), tol) && m.Det() > 0
}

func IsGlobalFrameValid(g GlobalFrame) bool {
	return IsRotationValid(g.Rotation, 1e-6)
}

func IsFrameValid(f Frame) bool {
	return IsVecValid(f.Position) && IsRotationValid(f.Rotation, 1e-6)
}
