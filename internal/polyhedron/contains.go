package polyhedron

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// rayHit intersects origin + d·ray with triangle (v0, v1, v2). ok is false
// when the ray is parallel to the triangle or misses it.
func rayHit(origin, ray, v0, v1, v2 mgl64.Vec3) (d float64, ok bool) {
	const eps = 1e-12
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	h := ray.Cross(e2)
	a := e1.Dot(h)
	if math.Abs(a) < eps {
		return 0, false
	}
	f := 1 / a
	s := origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := f * ray.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	return f * e2.Dot(q), true
}

// ContainsPoint casts a ray along +X and reports whether the nearest surface
// crossing is an exit. Rays grazing an edge or vertex can give a wrong answer.
func (p *Polyhedron) ContainsPoint(point mgl64.Vec3) bool {
	ray := mgl64.Vec3{1, 0, 0}
	exiting := false
	best := math.Inf(1)
	for _, t := range p.triangles {
		v0, v1, v2 := p.vertices[t.A], p.vertices[t.B], p.vertices[t.C]
		d, ok := rayHit(point, ray, v0, v1, v2)
		if !ok || d < 0 || d >= best {
			continue
		}
		best = d
		exiting = v1.Sub(v0).Cross(v2.Sub(v0)).Dot(ray) >= 0
	}
	return exiting
}
