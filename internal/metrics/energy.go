package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

// Energy is the mean total mechanical energy over a run.
type Energy struct {
	sum float64
	n   int
}

func NewEnergy() *Energy { return &Energy{} }

func (*Energy) Name() string { return "energy" }

func (e *Energy) Observe(s dynamo.Snapshot) {
	e.sum += s.TotalEnergy()
	e.n++
}

func (e *Energy) Value() float64 {
	if e.n == 0 {
		return 0
	}
	return e.sum / float64(e.n)
}

func (e *Energy) Reset() { *e = Energy{} }

// EnergyDrift is the largest departure of total energy from its first
// value, relative to that value. Potential energy is measured from the world
// origin, so a scene may well start at zero total energy; the drift is then
// taken relative to the largest kinetic energy seen instead.
type EnergyDrift struct {
	started  bool
	initial  float64
	peakKE   float64
	worstAbs float64
	worst    float64
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{} }

func (*EnergyDrift) Name() string { return "energy_drift" }

func (d *EnergyDrift) Observe(s dynamo.Snapshot) {
	total := s.TotalEnergy()
	if !d.started {
		d.started = true
		d.initial = total
	}
	d.peakKE = max(d.peakKE, s.KineticEnergy)
	d.worstAbs = max(d.worstAbs, math.Abs(total-d.initial))

	scale := math.Abs(d.initial)
	if scale == 0 {
		scale = d.peakKE
	}
	if scale > 0 {
		d.worst = max(d.worst, math.Abs(total-d.initial)/scale)
	}
}

func (d *EnergyDrift) Value() float64 { return d.worst }

// Absolute is the largest drift in energy units.
func (d *EnergyDrift) Absolute() float64 { return d.worstAbs }

func (d *EnergyDrift) Reset() { *d = EnergyDrift{} }
