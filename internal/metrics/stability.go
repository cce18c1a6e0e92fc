package metrics

import "github.com/san-kum/rigidsim/internal/dynamo"

// Stability is the fraction of snapshots in which no body moves or spins
// faster than the threshold. A scene that blows up scores close to zero.
type Stability struct {
	limitSq float64
	steady  int
	n       int
}

func NewStability(threshold float64) *Stability {
	return &Stability{limitSq: threshold * threshold}
}

func (*Stability) Name() string { return "stability" }

func (s *Stability) Observe(snap dynamo.Snapshot) {
	s.n++
	if s.calm(snap.Bodies) {
		s.steady++
	}
}

func (s *Stability) calm(bodies []dynamo.BodyState) bool {
	for _, b := range bodies {
		if b.Velocity.LenSqr() > s.limitSq || b.AngularVelocity.LenSqr() > s.limitSq {
			return false
		}
	}
	return true
}

func (s *Stability) Value() float64 {
	if s.n == 0 {
		return 1
	}
	return float64(s.steady) / float64(s.n)
}

func (s *Stability) Reset() { s.steady, s.n = 0, 0 }
