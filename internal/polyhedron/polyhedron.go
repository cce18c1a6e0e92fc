// Package polyhedron holds closed triangle meshes and derives their mass
// properties (volume, center of mass, inertia) with closed-form surface
// integrals.
//
// Every formula assumes a closed mesh with consistently outward (counter
// clockwise seen from outside) triangles. [New] rejects anything else, so the
// integrals themselves never check winding.
package polyhedron

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/frame"
)

var (
	ErrTooFewVertices      = errors.New("polyhedron: a closed mesh needs at least 4 vertices and 4 triangles")
	ErrIndexOutOfRange     = errors.New("polyhedron: triangle index out of range")
	ErrDegenerateTriangle  = errors.New("polyhedron: degenerate triangle")
	ErrNotClosed           = errors.New("polyhedron: mesh is not closed")
	ErrInconsistentWinding = errors.New("polyhedron: inconsistent triangle winding")
	ErrInwardWinding       = errors.New("polyhedron: triangles wound inward (non-positive volume)")
	ErrInvalidScale        = errors.New("polyhedron: scale factors must be positive")
)

// Triangle indexes three vertices in counter-clockwise order seen from outside.
type Triangle struct {
	A, B, C int
}

type Polyhedron struct {
	vertices  []mgl64.Vec3
	triangles []Triangle
}

// New validates the mesh and returns a polyhedron owning copies of the slices.
func New(vertices []mgl64.Vec3, triangles []Triangle) (*Polyhedron, error) {
	p := NewUnchecked(vertices, triangles)
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewUnchecked skips validation. Mass properties of an invalid mesh are
// silently wrong.
func NewUnchecked(vertices []mgl64.Vec3, triangles []Triangle) *Polyhedron {
	return &Polyhedron{
		vertices:  append([]mgl64.Vec3(nil), vertices...),
		triangles: append([]Triangle(nil), triangles...),
	}
}

type edge struct{ from, to int }

func (p *Polyhedron) validate() error {
	if len(p.vertices) < 4 || len(p.triangles) < 4 {
		return ErrTooFewVertices
	}

	edges := make(map[edge]int, len(p.triangles)*3)
	for i, tri := range p.triangles {
		for _, idx := range [3]int{tri.A, tri.B, tri.C} {
			if idx < 0 || idx >= len(p.vertices) {
				return fmt.Errorf("%w: triangle %d uses vertex %d", ErrIndexOutOfRange, i, idx)
			}
		}
		if tri.A == tri.B || tri.B == tri.C || tri.C == tri.A || p.triangleNormal(tri).LenSqr() == 0 {
			return fmt.Errorf("%w: triangle %d", ErrDegenerateTriangle, i)
		}
		edges[edge{tri.A, tri.B}]++
		edges[edge{tri.B, tri.C}]++
		edges[edge{tri.C, tri.A}]++
	}

	for e, n := range edges {
		if n > 1 {
			return fmt.Errorf("%w: edge %d->%d used %d times", ErrInconsistentWinding, e.from, e.to, n)
		}
	}
	for e := range edges {
		if edges[edge{e.to, e.from}] != 1 {
			return fmt.Errorf("%w: edge %d->%d has no opposite", ErrNotClosed, e.from, e.to)
		}
	}

	if p.Volume() <= 0 {
		return ErrInwardWinding
	}
	return nil
}

func (p *Polyhedron) VertexCount() int   { return len(p.vertices) }
func (p *Polyhedron) TriangleCount() int { return len(p.triangles) }

func (p *Polyhedron) Vertex(i int) mgl64.Vec3 { return p.vertices[i] }
func (p *Polyhedron) Triangle(i int) Triangle { return p.triangles[i] }

// Vertices returns the vertex slice. Callers must not modify it.
func (p *Polyhedron) Vertices() []mgl64.Vec3 { return p.vertices }

// Normal returns the unnormalized normal of triangle i, twice its area long.
func (p *Polyhedron) Normal(i int) mgl64.Vec3 {
	return p.triangleNormal(p.triangles[i])
}

func (p *Polyhedron) triangleNormal(t Triangle) mgl64.Vec3 {
	v0 := p.vertices[t.A]
	return p.vertices[t.B].Sub(v0).Cross(p.vertices[t.C].Sub(v0))
}

// Support returns the vertex furthest along dir and its index.
func (p *Polyhedron) Support(dir mgl64.Vec3) (mgl64.Vec3, int) {
	best := 0
	bestDot := p.vertices[0].Dot(dir)
	for i := 1; i < len(p.vertices); i++ {
		if d := p.vertices[i].Dot(dir); d > bestDot {
			best, bestDot = i, d
		}
	}
	return p.vertices[best], best
}

func (p *Polyhedron) Bounds() frame.Bounds {
	b := frame.EmptyBounds()
	for _, v := range p.vertices {
		b = b.Include(v)
	}
	return b
}

// BoundsIn returns the world bounds of the polyhedron placed at g.
func (p *Polyhedron) BoundsIn(g frame.GlobalFrame) frame.Bounds {
	b := frame.EmptyBounds()
	origin := g.Position.Vec3()
	for _, v := range p.vertices {
		b = b.Include(origin.Add(g.Rotation.Mul3x1(v)))
	}
	return b
}

func (p *Polyhedron) mapVertices(fn func(mgl64.Vec3) mgl64.Vec3) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(p.vertices))
	for i, v := range p.vertices {
		out[i] = fn(v)
	}
	return out
}

func (p *Polyhedron) Translated(offset mgl64.Vec3) *Polyhedron {
	return &Polyhedron{
		vertices:  p.mapVertices(func(v mgl64.Vec3) mgl64.Vec3 { return v.Add(offset) }),
		triangles: p.triangles,
	}
}

// Rotated assumes rotation is orthonormal with positive determinant.
func (p *Polyhedron) Rotated(rotation mgl64.Mat3) *Polyhedron {
	return &Polyhedron{
		vertices:  p.mapVertices(rotation.Mul3x1),
		triangles: p.triangles,
	}
}

func (p *Polyhedron) LocalToGlobal(f frame.Frame) *Polyhedron {
	return &Polyhedron{vertices: p.mapVertices(f.LocalToGlobal), triangles: p.triangles}
}

func (p *Polyhedron) GlobalToLocal(f frame.Frame) *Polyhedron {
	return &Polyhedron{vertices: p.mapVertices(f.GlobalToLocal), triangles: p.triangles}
}

// Scaled stretches the mesh along each axis. Negative or zero factors would
// flip or flatten the winding and are rejected.
func (p *Polyhedron) Scaled(scale mgl64.Vec3) (*Polyhedron, error) {
	if scale[0] <= 0 || scale[1] <= 0 || scale[2] <= 0 {
		return nil, ErrInvalidScale
	}
	return &Polyhedron{
		vertices: p.mapVertices(func(v mgl64.Vec3) mgl64.Vec3 {
			return mgl64.Vec3{v[0] * scale[0], v[1] * scale[1], v[2] * scale[2]}
		}),
		triangles: p.triangles,
	}, nil
}
