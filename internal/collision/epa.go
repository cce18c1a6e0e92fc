package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	MaxEPAIterations = 64

	// EPATolerance is the relative distance gain below which the polytope
	// is considered converged.
	EPATolerance = 1e-6
)

// Result describes the penetration of two intersecting shapes. Moving the
// second shape by Exit (or the first by -Exit) brings them to touching.
// Intersection is a point on the first shape near the deepest contact.
type Result struct {
	Intersection mgl64.Vec3
	Exit         mgl64.Vec3
}

type epaFace struct {
	a, b, c int
	normal  mgl64.Vec3
	dist    float64
}

type epaEdge struct {
	from, to int
}

// Buffers is scratch space for EPA. A Buffers value may be reused across
// calls but not shared between goroutines.
type Buffers struct {
	vertices []mgl64.Vec3
	indices  []MinkowskiIndices
	faces    []epaFace
	edges    []epaEdge
}

func (b *Buffers) Reset() {
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
	b.faces = b.faces[:0]
	b.edges = b.edges[:0]
}

func (b *Buffers) addVertex(p mgl64.Vec3, idx MinkowskiIndices) int {
	b.vertices = append(b.vertices, p)
	b.indices = append(b.indices, idx)
	return len(b.vertices) - 1
}

// addFace appends triangle (i, j, k). It returns false for a degenerate face.
func (b *Buffers) addFace(i, j, k int) bool {
	va := b.vertices[i]
	n := b.vertices[j].Sub(va).Cross(b.vertices[k].Sub(va))
	l := n.Len()
	if l < 1e-14 {
		return false
	}
	n = n.Mul(1 / l)
	b.faces = append(b.faces, epaFace{a: i, b: j, c: k, normal: n, dist: n.Dot(va)})
	return true
}

// addHorizonEdge records an edge of a removed face. An edge seen twice in
// opposite directions is shared by two removed faces and is not on the horizon.
func (b *Buffers) addHorizonEdge(from, to int) {
	for i, e := range b.edges {
		if e.from == to && e.to == from {
			last := len(b.edges) - 1
			b.edges[i] = b.edges[last]
			b.edges = b.edges[:last]
			return
		}
	}
	b.edges = append(b.edges, epaEdge{from: from, to: to})
}

func (b *Buffers) closestFace() int {
	best := 0
	for i := 1; i < len(b.faces); i++ {
		if b.faces[i].dist < b.faces[best].dist {
			best = i
		}
	}
	return best
}

// EPA expands a GJK simplex enclosing the origin until it finds the face of
// the Minkowski difference closest to the origin. It needs a full
// tetrahedron and fails for touching contacts or when it does not converge.
func EPA(a, b Shape, s Simplex, bufs *Buffers) (Result, bool) {
	if s.Order < 4 {
		return Result{}, false
	}
	bufs.Reset()
	for i := 0; i < 4; i++ {
		bufs.addVertex(s.Points[i], s.Indices[i])
	}

	var centroid mgl64.Vec3
	for _, v := range bufs.vertices {
		centroid = centroid.Add(v)
	}
	centroid = centroid.Mul(0.25)

	for _, f := range [4][3]int{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}} {
		i, j, k := f[0], f[1], f[2]
		n := bufs.vertices[j].Sub(bufs.vertices[i]).Cross(bufs.vertices[k].Sub(bufs.vertices[i]))
		if n.Dot(bufs.vertices[i].Sub(centroid)) < 0 {
			j, k = k, j
		}
		if !bufs.addFace(i, j, k) {
			return Result{}, false
		}
	}

	for iter := 0; iter < MaxEPAIterations; iter++ {
		closest := bufs.faces[bufs.closestFace()]

		p, idx := support(a, b, closest.normal)
		gain := p.Dot(closest.normal) - closest.dist
		if gain <= EPATolerance*math.Max(1, math.Abs(closest.dist)) {
			return bufs.result(a, closest), true
		}

		newIdx := bufs.addVertex(p, idx)
		bufs.edges = bufs.edges[:0]
		kept := bufs.faces[:0]
		for _, f := range bufs.faces {
			if f.normal.Dot(p.Sub(bufs.vertices[f.a])) > 0 {
				bufs.addHorizonEdge(f.a, f.b)
				bufs.addHorizonEdge(f.b, f.c)
				bufs.addHorizonEdge(f.c, f.a)
				continue
			}
			kept = append(kept, f)
		}
		bufs.faces = kept

		if len(bufs.edges) == 0 {
			return bufs.result(a, closest), true
		}
		for _, e := range bufs.edges {
			// a sliver face collinear with the new point carries no normal
			bufs.addFace(e.from, e.to, newIdx)
		}
		if len(bufs.faces) == 0 {
			return Result{}, false
		}
	}
	return Result{}, false
}

// result projects the origin onto the face and maps the projection back to
// the first shape through barycentric weights of the source vertices.
func (b *Buffers) result(a Shape, f epaFace) Result {
	exit := f.normal.Mul(f.dist)

	u, v, w := barycentric(exit, b.vertices[f.a], b.vertices[f.b], b.vertices[f.c])
	pa := a.Vertex(b.indices[f.a].A)
	pb := a.Vertex(b.indices[f.b].A)
	pc := a.Vertex(b.indices[f.c].A)

	return Result{
		Intersection: pa.Mul(u).Add(pb.Mul(v)).Add(pc.Mul(w)),
		Exit:         exit,
	}
}

func barycentric(p, a, b, c mgl64.Vec3) (u, v, w float64) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)
	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if math.Abs(denom) < 1e-20 {
		return 1, 0, 0
	}
	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	return 1 - v - w, v, w
}
