package collision

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/frame"
	"github.com/san-kum/rigidsim/internal/polyhedron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubeAt(pos mgl64.Vec3) Transformed {
	return Transformed{Poly: polyhedron.Box(1, 1, 1), Frame: frame.At(pos)}
}

func overlaps(a, b Shape) bool {
	_, hit := GJK(a, b, a.Vertex(0).Sub(b.Vertex(0)))
	return hit
}

func TestSimplexInsertShiftsAndCaps(t *testing.T) {
	var s Simplex
	for i := 0; i < 6; i++ {
		s.Insert(mgl64.Vec3{float64(i), 0, 0}, MinkowskiIndices{A: i, B: -i})
	}

	require.Equal(t, 4, s.Order)
	for slot, want := range []int{5, 4, 3, 2} {
		assert.Equal(t, float64(want), s.Points[slot][0])
		assert.Equal(t, MinkowskiIndices{A: want, B: -want}, s.Indices[slot])
	}
}

func TestGJKSeparated(t *testing.T) {
	tests := []struct {
		name   string
		offset mgl64.Vec3
	}{
		{"along x", mgl64.Vec3{1.5, 0, 0}},
		{"diagonal", mgl64.Vec3{1.1, 1.1, 1.1}},
		{"barely apart", mgl64.Vec3{0, 0, 1.001}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, overlaps(cubeAt(mgl64.Vec3{}), cubeAt(tt.offset)))
		})
	}
}

func TestGJKOverlapEnclosesOrigin(t *testing.T) {
	a := cubeAt(mgl64.Vec3{})
	b := Transformed{
		Poly:  polyhedron.Box(1, 1, 1),
		Frame: frame.New(mgl64.Vec3{0.7, 0.3, -0.2}, frame.RotationFromVec(mgl64.Vec3{0.4, 0.2, 0.9})),
	}

	s, hit := GJK(a, b, mgl64.Vec3{1, 0, 0})
	require.True(t, hit)
	require.Equal(t, 4, s.Order)

	for i := 0; i < s.Order; i++ {
		want := a.Vertex(s.Indices[i].A).Sub(b.Vertex(s.Indices[i].B))
		assert.True(t, want.ApproxEqualThreshold(s.Points[i], 1e-12), "point %d does not match its source vertices", i)
	}
}

func TestEPAAxisAlignedOverlap(t *testing.T) {
	a := cubeAt(mgl64.Vec3{})
	b := cubeAt(mgl64.Vec3{0.8, 0, 0})

	var bufs Buffers
	r, ok := Intersect(a, b, &bufs)
	require.True(t, ok)

	assert.True(t, r.Exit.ApproxEqualThreshold(mgl64.Vec3{0.2, 0, 0}, 1e-9), "exit %v", r.Exit)
	assert.InDelta(t, 0.5, r.Intersection[0], 1e-9)
	assert.LessOrEqual(t, r.Intersection[1], 0.5+1e-9)
	assert.GreaterOrEqual(t, r.Intersection[1], -0.5-1e-9)
}

func TestEPACoincidentShapes(t *testing.T) {
	var bufs Buffers
	r, ok := Intersect(cubeAt(mgl64.Vec3{}), cubeAt(mgl64.Vec3{}), &bufs)
	require.True(t, ok)
	assert.InDelta(t, 1.0, r.Exit.Len(), 1e-9)
}

func TestEPAExitSeparatesShapes(t *testing.T) {
	shapes := []struct {
		name string
		a, b Transformed
	}{
		{
			name: "rotated cubes",
			a:    cubeAt(mgl64.Vec3{}),
			b: Transformed{
				Poly:  polyhedron.Box(1, 1, 1),
				Frame: frame.New(mgl64.Vec3{0.6, 0.5, 0.1}, frame.RotationFromVec(mgl64.Vec3{0.3, -0.5, 0.7})),
			},
		},
		{
			name: "spheres",
			a:    Transformed{Poly: polyhedron.Icosphere(1, 2), Frame: frame.Identity()},
			b:    Transformed{Poly: polyhedron.Icosphere(0.5, 2), Frame: frame.At(mgl64.Vec3{0.9, 0.6, 0.3})},
		},
		{
			name: "tetrahedron into box",
			a:    Transformed{Poly: polyhedron.Box(2, 0.5, 2), Frame: frame.Identity()},
			b: Transformed{
				Poly:  polyhedron.Tetrahedron(1),
				Frame: frame.New(mgl64.Vec3{0.2, 0.4, -0.1}, frame.RotationFromVec(mgl64.Vec3{1, 0, 0.2})),
			},
		},
	}

	for _, tt := range shapes {
		t.Run(tt.name, func(t *testing.T) {
			var bufs Buffers
			r, ok := Intersect(tt.a, tt.b, &bufs)
			require.True(t, ok)
			require.Greater(t, r.Exit.Len(), 0.0)

			pushed := tt.b
			pushed.Frame.Position = pushed.Frame.Position.Add(r.Exit.Mul(1.01))
			assert.False(t, overlaps(tt.a, pushed), "shapes still overlap after applying exit %v", r.Exit)

			halfway := tt.b
			halfway.Frame.Position = halfway.Frame.Position.Add(r.Exit.Mul(0.5))
			assert.True(t, overlaps(tt.a, halfway), "exit %v overshoots the penetration", r.Exit)
		})
	}
}

func TestEPARequiresTetrahedron(t *testing.T) {
	var s Simplex
	s.Insert(mgl64.Vec3{1, 0, 0}, MinkowskiIndices{})
	s.Insert(mgl64.Vec3{-1, 0, 0}, MinkowskiIndices{})

	var bufs Buffers
	_, ok := EPA(cubeAt(mgl64.Vec3{}), cubeAt(mgl64.Vec3{}), s, &bufs)
	assert.False(t, ok)
}

func TestBuffersReuse(t *testing.T) {
	var bufs Buffers
	a := cubeAt(mgl64.Vec3{})
	b := cubeAt(mgl64.Vec3{0, 0.9, 0})

	first, ok := Intersect(a, b, &bufs)
	require.True(t, ok)
	_, ok = Intersect(a, cubeAt(mgl64.Vec3{0.3, 0.3, 0.3}), &bufs)
	require.True(t, ok)
	again, ok := Intersect(a, b, &bufs)
	require.True(t, ok)

	assert.Equal(t, first, again)
}

func TestDetectAll(t *testing.T) {
	var pairs []Pair
	for i := 0; i < 20; i++ {
		offset := 0.5
		if i%2 == 1 {
			offset = 3
		}
		pairs = append(pairs, Pair{
			A:   cubeAt(mgl64.Vec3{float64(i) * 10, 0, 0}),
			B:   cubeAt(mgl64.Vec3{float64(i)*10 + offset, 0, 0}),
			Tag: i,
		})
	}

	contacts := DetectAll(pairs, 3)
	require.Len(t, contacts, 10)
	for n, c := range contacts {
		assert.Equal(t, 2*n, c.Pair.Tag)
		assert.True(t, c.Exit.ApproxEqualThreshold(mgl64.Vec3{0.5, 0, 0}, 1e-9), "contact %d exit %v", n, c.Exit)
	}

	assert.Empty(t, DetectAll(nil, 4))
}
