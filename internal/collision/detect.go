package collision

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
)

// Pair is a candidate from the broad phase. Tag is carried through to the
// contact untouched.
type Pair struct {
	A, B Shape
	Tag  any
}

type Contact struct {
	Pair         Pair
	Intersection mgl64.Vec3
	Exit         mgl64.Vec3
}

// Intersect runs GJK then EPA on one pair.
func Intersect(a, b Shape, bufs *Buffers) (Result, bool) {
	s, hit := GJK(a, b, a.Vertex(0).Sub(b.Vertex(0)))
	if !hit {
		return Result{}, false
	}
	return EPA(a, b, s, bufs)
}

// DetectAll tests every pair and returns the penetrating ones in input order.
// Pairs are spread over workers goroutines, each with its own Buffers.
func DetectAll(pairs []Pair, workers int) []Contact {
	return DetectAllPooled(pairs, workers, defaultPool)
}

// DetectAllPooled is DetectAll drawing scratch space from pool.
func DetectAllPooled(pairs []Pair, workers int, pool *BufferPool) []Contact {
	hits := make([]Contact, len(pairs))
	found := make([]bool, len(pairs))

	dynamo.ParallelFor(len(pairs), 4, workers, func(start, end int) {
		bufs := pool.Get()
		defer pool.Put(bufs)
		for i := start; i < end; i++ {
			r, ok := Intersect(pairs[i].A, pairs[i].B, bufs)
			if !ok {
				continue
			}
			hits[i] = Contact{Pair: pairs[i], Intersection: r.Intersection, Exit: r.Exit}
			found[i] = true
		}
	})

	contacts := make([]Contact, 0, len(pairs))
	for i, ok := range found {
		if ok {
			contacts = append(contacts, hits[i])
		}
	}
	return contacts
}
