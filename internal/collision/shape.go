// Package collision implements GJK intersection testing and EPA penetration
// depth for convex shapes given by support functions.
package collision

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/frame"
	"github.com/san-kum/rigidsim/internal/polyhedron"
)

// Shape is a convex point set described by its support mapping. Support
// returns the point furthest along dir together with a vertex index that
// Vertex maps back to the same point.
type Shape interface {
	Support(dir mgl64.Vec3) (mgl64.Vec3, int)
	Vertex(index int) mgl64.Vec3
}

// Transformed places a polyhedron with a frame. Frame positions are usually
// relative to some nearby origin rather than the world origin so that the
// narrow phase works with small coordinates.
type Transformed struct {
	Poly  *polyhedron.Polyhedron
	Frame frame.Frame
}

func (t Transformed) Support(dir mgl64.Vec3) (mgl64.Vec3, int) {
	v, i := t.Poly.Support(t.Frame.RelativeToLocal(dir))
	return t.Frame.LocalToGlobal(v), i
}

func (t Transformed) Vertex(index int) mgl64.Vec3 {
	return t.Frame.LocalToGlobal(t.Poly.Vertex(index))
}

// MinkowskiIndices records which vertex of each shape produced a point of
// the Minkowski difference A - B.
type MinkowskiIndices struct {
	A, B int
}

func support(a, b Shape, dir mgl64.Vec3) (mgl64.Vec3, MinkowskiIndices) {
	pa, ia := a.Support(dir)
	pb, ib := b.Support(dir.Mul(-1))
	return pa.Sub(pb), MinkowskiIndices{A: ia, B: ib}
}
