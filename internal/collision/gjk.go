package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	MaxGJKIterations = 64

	// directions shorter than this mean the origin lies on the simplex
	gjkDirEpsilon = 1e-20
)

// Simplex holds up to four points of the Minkowski difference. Points[0] is
// the most recently added.
type Simplex struct {
	Points  [4]mgl64.Vec3
	Indices [4]MinkowskiIndices
	Order   int
}

// Insert puts p in front and shifts older points back, dropping the oldest
// when the simplex is already full.
func (s *Simplex) Insert(p mgl64.Vec3, idx MinkowskiIndices) {
	for i := min(s.Order, 3); i > 0; i-- {
		s.Points[i] = s.Points[i-1]
		s.Indices[i] = s.Indices[i-1]
	}
	s.Points[0] = p
	s.Indices[0] = idx
	if s.Order < 4 {
		s.Order++
	}
}

// keep reduces the simplex to the listed slots, in order.
func (s *Simplex) keep(slots ...int) {
	var pts [4]mgl64.Vec3
	var ids [4]MinkowskiIndices
	for i, slot := range slots {
		pts[i] = s.Points[slot]
		ids[i] = s.Indices[slot]
	}
	s.Points, s.Indices, s.Order = pts, ids, len(slots)
}

// tripleCross returns (a × b) × c.
func tripleCross(a, b, c mgl64.Vec3) mgl64.Vec3 {
	return a.Cross(b).Cross(c)
}

// GJK reports whether shapes a and b intersect. On success the returned
// simplex encloses the origin and can seed EPA; touching contacts may end
// with fewer than four points.
func GJK(a, b Shape, initialDir mgl64.Vec3) (Simplex, bool) {
	var s Simplex

	dir := initialDir
	if dir.LenSqr() < gjkDirEpsilon {
		dir = mgl64.Vec3{1, 0, 0}
	}
	p, idx := support(a, b, dir)
	s.Insert(p, idx)
	dir = p.Mul(-1)

	for i := 0; i < MaxGJKIterations; i++ {
		if dir.LenSqr() < gjkDirEpsilon {
			s.complete(a, b)
			return s, true
		}
		p, idx = support(a, b, dir)
		if p.Dot(dir) <= 0 {
			return s, false
		}
		s.Insert(p, idx)
		if s.next(&dir) {
			s.complete(a, b)
			return s, true
		}
	}
	return s, false
}

// complete grows a simplex that touches the origin with fewer than four
// points into a tetrahedron, so that EPA has a polytope to start from. It
// leaves the simplex short when both shapes are flat along every probe.
func (s *Simplex) complete(a, b Shape) {
	const eps = 1e-10
	axes := [6]mgl64.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}

	if s.Order == 1 {
		for _, dir := range axes {
			p, idx := support(a, b, dir)
			if p.Sub(s.Points[0]).LenSqr() > eps {
				s.Insert(p, idx)
				break
			}
		}
	}

	if s.Order == 2 {
		line := s.Points[1].Sub(s.Points[0])
		axis := mgl64.Vec3{1, 0, 0}
		if math.Abs(line[1]) < math.Abs(line[0]) && math.Abs(line[1]) <= math.Abs(line[2]) {
			axis = mgl64.Vec3{0, 1, 0}
		} else if math.Abs(line[2]) < math.Abs(line[0]) {
			axis = mgl64.Vec3{0, 0, 1}
		}
		p1 := line.Cross(axis)
		p2 := line.Cross(p1)
		for _, dir := range [4]mgl64.Vec3{p1, p1.Mul(-1), p2, p2.Mul(-1)} {
			p, idx := support(a, b, dir)
			if line.Cross(p.Sub(s.Points[0])).LenSqr() > eps*line.LenSqr() {
				s.Insert(p, idx)
				break
			}
		}
	}

	if s.Order == 3 {
		n := s.Points[1].Sub(s.Points[0]).Cross(s.Points[2].Sub(s.Points[0]))
		for _, dir := range [2]mgl64.Vec3{n, n.Mul(-1)} {
			p, idx := support(a, b, dir)
			if d := n.Dot(p.Sub(s.Points[0])); d*d > eps*n.LenSqr() {
				s.Insert(p, idx)
				break
			}
		}
	}
}

// next reduces the simplex to the feature closest to the origin and updates
// dir to point at the origin from it. It returns true once the origin is
// enclosed.
func (s *Simplex) next(dir *mgl64.Vec3) bool {
	switch s.Order {
	case 2:
		return s.line(dir)
	case 3:
		return s.triangle(dir)
	case 4:
		return s.tetrahedron(dir)
	}
	return false
}

func (s *Simplex) line(dir *mgl64.Vec3) bool {
	a, b := s.Points[0], s.Points[1]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.Dot(ao) > 0 {
		*dir = tripleCross(ab, ao, ab)
	} else {
		s.keep(0)
		*dir = ao
	}
	return dir.LenSqr() < gjkDirEpsilon
}

func (s *Simplex) triangle(dir *mgl64.Vec3) bool {
	a, b, c := s.Points[0], s.Points[1], s.Points[2]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)
	abc := ab.Cross(ac)

	if abc.LenSqr() < gjkDirEpsilon {
		s.keep(0, 1)
		return s.line(dir)
	}

	if abc.Cross(ac).Dot(ao) > 0 {
		if ac.Dot(ao) > 0 {
			s.keep(0, 2)
			*dir = tripleCross(ac, ao, ac)
			return dir.LenSqr() < gjkDirEpsilon
		}
		s.keep(0, 1)
		return s.line(dir)
	}

	if ab.Cross(abc).Dot(ao) > 0 {
		s.keep(0, 1)
		return s.line(dir)
	}

	switch d := abc.Dot(ao); {
	case d > 0:
		*dir = abc
	case d < 0:
		s.keep(0, 2, 1)
		*dir = abc.Mul(-1)
	default:
		// origin lies in the triangle's plane and inside it
		return true
	}
	return false
}

func (s *Simplex) tetrahedron(dir *mgl64.Vec3) bool {
	a, b, c, d := s.Points[0], s.Points[1], s.Points[2], s.Points[3]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	abc := ab.Cross(ac)
	if v := abc.Dot(ad); v*v < gjkDirEpsilon*abc.LenSqr() {
		// flat tetrahedron, continue with the newest face
		s.keep(0, 1, 2)
		return s.triangle(dir)
	}

	acd := ac.Cross(ad)
	adb := ad.Cross(ab)
	// point every face normal away from the vertex it does not contain
	if abc.Dot(ad) > 0 {
		abc = abc.Mul(-1)
	}
	if acd.Dot(ab) > 0 {
		acd = acd.Mul(-1)
	}
	if adb.Dot(ac) > 0 {
		adb = adb.Mul(-1)
	}

	switch {
	case abc.Dot(ao) > 0:
		s.keep(0, 1, 2)
		return s.triangle(dir)
	case acd.Dot(ao) > 0:
		s.keep(0, 2, 3)
		return s.triangle(dir)
	case adb.Dot(ao) > 0:
		s.keep(0, 3, 1)
		return s.triangle(dir)
	}
	return true
}
