package frame

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestFixRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1, -1, 0.5, 1234.5678, -98765.4321} {
		got := FixFromFloat(v).Float()
		if math.Abs(got-v) > 1e-9 {
			t.Errorf("fix round trip of %f: got %f", v, got)
		}
	}
}

func TestPositionSubKeepsPrecisionFarFromOrigin(t *testing.T) {
	a := PositionOf(1e8, 0, 0)
	b := a.Add(mgl64.Vec3{1e-6, 0, 0})
	d := b.Sub(a)
	if math.Abs(d[0]-1e-6) > 1e-9 {
		t.Errorf("expected offset 1e-6, got %g", d[0])
	}
}

func TestFrameInverseComposesToIdentity(t *testing.T) {
	f := New(mgl64.Vec3{1, 2, 3}, RotationFromVec(mgl64.Vec3{0.3, -0.2, 0.9}))
	id := f.LocalToGlobalFrame(f.Inverse())

	if id.Position.Len() > 1e-12 {
		t.Errorf("expected zero position, got %v", id.Position)
	}
	if !id.Rotation.ApproxEqualThreshold(mgl64.Ident3(), 1e-12) {
		t.Errorf("expected identity rotation, got %v", id.Rotation)
	}
}

func TestFrameCompositionIsNotCommutative(t *testing.T) {
	a := New(mgl64.Vec3{1, 0, 0}, RotationFromVec(mgl64.Vec3{0, 0, math.Pi / 2}))
	b := New(mgl64.Vec3{0, 2, 0}, mgl64.Ident3())

	ab := a.LocalToGlobalFrame(b)
	ba := b.LocalToGlobalFrame(a)

	if ab.Position.ApproxEqualThreshold(ba.Position, 1e-9) {
		t.Errorf("expected different positions, both %v", ab.Position)
	}
}

func TestGlobalToLocalFrameUndoesLocalToGlobalFrame(t *testing.T) {
	g := NewGlobal(PositionOf(10, -4, 2), RotationFromVec(mgl64.Vec3{1, 1, 0}))
	local := New(mgl64.Vec3{0.5, 0.25, -1}, RotationFromVec(mgl64.Vec3{0, 0.4, 0}))

	back := g.GlobalToLocalFrame(g.LocalToGlobalFrame(local))

	if !back.Position.ApproxEqualThreshold(local.Position, 1e-9) {
		t.Errorf("position: got %v want %v", back.Position, local.Position)
	}
	if !back.Rotation.ApproxEqualThreshold(local.Rotation, 1e-12) {
		t.Errorf("rotation: got %v want %v", back.Rotation, local.Rotation)
	}
}

func TestRotatedAroundLocalPointKeepsPivot(t *testing.T) {
	g := GlobalAt(PositionOf(3, 0, 0))
	pivot := mgl64.Vec3{1, 1, 0}
	before := g.LocalToGlobal(pivot)

	rotated := g.RotatedAroundLocalPoint(pivot, RotationFromVec(mgl64.Vec3{0, 0, 1.2}))
	after := rotated.LocalToGlobal(pivot)

	if after.Sub(before).Len() > 1e-9 {
		t.Errorf("pivot moved by %v", after.Sub(before))
	}
}

func TestRotationFromVecIsOrthonormal(t *testing.T) {
	r := RotationFromVec(mgl64.Vec3{0.7, -1.3, 2.1})
	if !IsRotationValid(r, 1e-12) {
		t.Errorf("rotation not orthonormal: %v", r)
	}
	if !RotationFromVec(mgl64.Vec3{}).ApproxEqual(mgl64.Ident3()) {
		t.Error("zero rotation vector should give identity")
	}
}

func TestParallelAxis(t *testing.T) {
	// point mass at distance 2 along x: Iyy = Izz = m*d^2
	I := ParallelAxis(mgl64.Mat3{}, 3, mgl64.Vec3{2, 0, 0})
	if I.At(0, 0) != 0 || I.At(1, 1) != 12 || I.At(2, 2) != 12 {
		t.Errorf("unexpected tensor %v", I)
	}
}

func TestCrossMatrix(t *testing.T) {
	v := mgl64.Vec3{1, 2, 3}
	x := mgl64.Vec3{-4, 0.5, 2}
	if !CrossMatrix(v).Mul3x1(x).ApproxEqual(v.Cross(x)) {
		t.Error("cross matrix does not match cross product")
	}
}

func TestBounds(t *testing.T) {
	a := EmptyBounds().Include(mgl64.Vec3{0, 0, 0}).Include(mgl64.Vec3{1, 1, 1})
	b := EmptyBounds().Include(mgl64.Vec3{0.5, 0.5, 0.5}).Include(mgl64.Vec3{2, 2, 2})
	c := EmptyBounds().Include(mgl64.Vec3{3, 3, 3})

	if !a.Overlaps(b) {
		t.Error("expected a and b to overlap")
	}
	if a.Overlaps(c) {
		t.Error("expected a and c to be disjoint")
	}
	if EmptyBounds().Overlaps(a) {
		t.Error("empty bounds overlap nothing")
	}
	if u := a.Union(c); u.Max != (mgl64.Vec3{3, 3, 3}) {
		t.Errorf("unexpected union %v", u)
	}
}

func TestMotionOfPoint(t *testing.T) {
	m := Motion{Velocity: mgl64.Vec3{1, 0, 0}, AngularVelocity: mgl64.Vec3{0, 0, 2}}
	p := m.MotionOfPoint(mgl64.Vec3{1, 0, 0})
	if !p.Velocity.ApproxEqual(mgl64.Vec3{1, 2, 0}) {
		t.Errorf("unexpected velocity %v", p.Velocity)
	}
}
