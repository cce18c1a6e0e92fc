package polyhedron

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box is centered on the origin with full extents w, h, d along X, Y, Z.
func Box(w, h, d float64) *Polyhedron {
	hx, hy, hz := w/2, h/2, d/2
	vertices := make([]mgl64.Vec3, 8)
	for i := range vertices {
		v := mgl64.Vec3{-hx, -hy, -hz}
		if i&1 != 0 {
			v[0] = hx
		}
		if i&2 != 0 {
			v[1] = hy
		}
		if i&4 != 0 {
			v[2] = hz
		}
		vertices[i] = v
	}
	triangles := []Triangle{
		{0, 4, 6}, {0, 6, 2}, // -X
		{1, 3, 7}, {1, 7, 5}, // +X
		{0, 1, 5}, {0, 5, 4}, // -Y
		{2, 6, 7}, {2, 7, 3}, // +Y
		{0, 2, 3}, {0, 3, 1}, // -Z
		{4, 5, 7}, {4, 7, 6}, // +Z
	}
	return &Polyhedron{vertices: vertices, triangles: triangles}
}

// Tetrahedron is the regular tetrahedron with edge length size, centered on
// its centroid.
func Tetrahedron(size float64) *Polyhedron {
	s := size / (2 * math.Sqrt2)
	vertices := []mgl64.Vec3{
		{s, s, s},
		{s, -s, -s},
		{-s, s, -s},
		{-s, -s, s},
	}
	return &Polyhedron{
		vertices:  vertices,
		triangles: orientOutward(vertices, []Triangle{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}}),
	}
}

// Icosphere approximates a sphere by subdividing an icosahedron. Zero
// subdivisions gives the icosahedron itself.
func Icosphere(radius float64, subdivisions int) *Polyhedron {
	t := (1 + math.Sqrt(5)) / 2
	vertices := []mgl64.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	triangles := []Triangle{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	for i := range vertices {
		vertices[i] = vertices[i].Normalize()
	}

	for ; subdivisions > 0; subdivisions-- {
		midpoints := make(map[[2]int]int)
		midpoint := func(a, b int) int {
			key := [2]int{min(a, b), max(a, b)}
			if idx, ok := midpoints[key]; ok {
				return idx
			}
			vertices = append(vertices, vertices[a].Add(vertices[b]).Normalize())
			idx := len(vertices) - 1
			midpoints[key] = idx
			return idx
		}
		next := make([]Triangle, 0, len(triangles)*4)
		for _, tri := range triangles {
			ab := midpoint(tri.A, tri.B)
			bc := midpoint(tri.B, tri.C)
			ca := midpoint(tri.C, tri.A)
			next = append(next,
				Triangle{tri.A, ab, ca},
				Triangle{tri.B, bc, ab},
				Triangle{tri.C, ca, bc},
				Triangle{ab, bc, ca},
			)
		}
		triangles = next
	}

	for i := range vertices {
		vertices[i] = vertices[i].Mul(radius)
	}
	return &Polyhedron{vertices: vertices, triangles: orientOutward(vertices, triangles)}
}

// orientOutward flips triangles of a convex mesh whose normal points toward
// the centroid.
func orientOutward(vertices []mgl64.Vec3, triangles []Triangle) []Triangle {
	var centroid mgl64.Vec3
	for _, v := range vertices {
		centroid = centroid.Add(v)
	}
	centroid = centroid.Mul(1 / float64(len(vertices)))

	out := make([]Triangle, len(triangles))
	for i, t := range triangles {
		v0, v1, v2 := vertices[t.A], vertices[t.B], vertices[t.C]
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		if n.Dot(v0.Sub(centroid)) < 0 {
			t.B, t.C = t.C, t.B
		}
		out[i] = t
	}
	return out
}
