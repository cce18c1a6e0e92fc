package polyhedron

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/frame"
)

// Volume integrates z·n_z over the surface (divergence theorem with F = (0,0,z)).
func (p *Polyhedron) Volume() float64 {
	total := 0.0
	for _, t := range p.triangles {
		v0, v1, v2 := p.vertices[t.A], p.vertices[t.B], p.vertices[t.C]
		d1x, d1y := v1[0]-v0[0], v1[1]-v0[1]
		d2x, d2y := v2[0]-v0[0], v2[1]-v0[1]
		nz := d1x*d2y - d1y*d2x
		total += nz * (v0[2] + v1[2] + v2[2])
	}
	return total / 6
}

func mulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// CenterOfMass assumes uniform density.
func (p *Polyhedron) CenterOfMass() mgl64.Vec3 {
	var total mgl64.Vec3
	for _, t := range p.triangles {
		v0, v1, v2 := p.vertices[t.A], p.vertices[t.B], p.vertices[t.C]
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		f := mulElem(v0, v0).Add(mulElem(v1, v1)).Add(mulElem(v2, v2)).
			Add(mulElem(v0, v1)).Add(mulElem(v1, v2)).Add(mulElem(v2, v0))
		total = total.Add(mulElem(n, f))
	}
	return total.Mul(1 / (24 * p.Volume()))
}

// ScalableInertia keeps the inertia integrals split so that a per-axis scale
// can be applied without re-integrating the mesh. Diagonal holds ∫x², ∫y², ∫z²
// and OffDiagonal holds -∫yz, -∫xz, -∫xy, all for unit density.
type ScalableInertia struct {
	Diagonal    mgl64.Vec3
	OffDiagonal mgl64.Vec3
}

func (s ScalableInertia) ToMatrix() mgl64.Mat3 {
	d, o := s.Diagonal, s.OffDiagonal
	return mgl64.Mat3FromRows(
		mgl64.Vec3{d[1] + d[2], o[2], o[1]},
		mgl64.Vec3{o[2], d[0] + d[2], o[0]},
		mgl64.Vec3{o[1], o[0], d[0] + d[1]},
	)
}

// ToMatrixScaled equals the inertia of the mesh scaled by scale about the
// reference origin.
func (s ScalableInertia) ToMatrixScaled(scale mgl64.Vec3) mgl64.Mat3 {
	sx, sy, sz := scale[0], scale[1], scale[2]
	det := sx * sy * sz
	return ScalableInertia{
		Diagonal: mgl64.Vec3{
			s.Diagonal[0] * det * sx * sx,
			s.Diagonal[1] * det * sy * sy,
			s.Diagonal[2] * det * sz * sz,
		},
		OffDiagonal: mgl64.Vec3{
			s.OffDiagonal[0] * det * sy * sz,
			s.OffDiagonal[1] * det * sx * sz,
			s.OffDiagonal[2] * det * sx * sy,
		},
	}.ToMatrix()
}

// ScalableInertia integrates relative to reference, which need not be the
// center of mass.
func (p *Polyhedron) ScalableInertia(reference frame.Frame) ScalableInertia {
	var diag, off mgl64.Vec3
	for _, t := range p.triangles {
		v0 := reference.GlobalToLocal(p.vertices[t.A])
		v1 := reference.GlobalToLocal(p.vertices[t.B])
		v2 := reference.GlobalToLocal(p.vertices[t.C])

		n := v1.Sub(v0).Cross(v2.Sub(v0))

		cubes := mulElem(mulElem(v0, v0), v0).
			Add(mulElem(mulElem(v1, v1), v1)).
			Add(mulElem(mulElem(v2, v2), v2)).
			Add(mulElem(mulElem(v0, v0), v1.Add(v2))).
			Add(mulElem(mulElem(v1, v1), v0.Add(v2))).
			Add(mulElem(mulElem(v2, v2), v0.Add(v1))).
			Add(mulElem(mulElem(v0, v1), v2))
		diag = diag.Add(mulElem(n, cubes))

		off = off.Add(n.Mul(-mixedIntegral(v0, v1, v2)))
	}
	return ScalableInertia{Diagonal: diag.Mul(1.0 / 60), OffDiagonal: off.Mul(1.0 / 60)}
}

// mixedIntegral is 60/(2A) times the surface integral of xyz over the triangle.
func mixedIntegral(v0, v1, v2 mgl64.Vec3) float64 {
	v := [3]mgl64.Vec3{v0, v1, v2}
	self, twoSame, allDiff := 0.0, 0.0, 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				term := v[i][0] * v[j][1] * v[k][2]
				switch {
				case i == j && j == k:
					self += term
				case i != j && j != k && i != k:
					allDiff += term
				default:
					twoSame += term
				}
			}
		}
	}
	return 3*self + twoSame + 0.5*allDiff
}

func (p *Polyhedron) ScalableInertiaAroundCenterOfMass() ScalableInertia {
	return p.ScalableInertia(frame.At(p.CenterOfMass()))
}

// Inertia is the unit-density inertia tensor about the reference frame.
func (p *Polyhedron) Inertia(reference frame.Frame) mgl64.Mat3 {
	return p.ScalableInertia(reference).ToMatrix()
}

func (p *Polyhedron) InertiaAroundCenterOfMass() mgl64.Mat3 {
	return p.ScalableInertiaAroundCenterOfMass().ToMatrix()
}
