package metrics

import (
	"github.com/san-kum/rigidsim/internal/dynamo"
)

// Contacts is the mean number of contacts per step.
type Contacts struct {
	name    string
	sum     int
	samples int
}

func NewContacts() *Contacts {
	return &Contacts{name: "contacts"}
}

func (c *Contacts) Name() string { return c.name }

func (c *Contacts) Observe(s dynamo.Snapshot) {
	c.sum += s.Contacts
	c.samples++
}

func (c *Contacts) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.sum) / float64(c.samples)
}

func (c *Contacts) Reset() {
	c.sum = 0
	c.samples = 0
}

// Penetration is the deepest penetration seen during a run.
type Penetration struct {
	name  string
	worst float64
}

func NewPenetration() *Penetration {
	return &Penetration{name: "max_penetration"}
}

func (p *Penetration) Name() string { return p.name }

func (p *Penetration) Observe(s dynamo.Snapshot) {
	p.worst = max(p.worst, s.MaxPenetration)
}

func (p *Penetration) Value() float64 { return p.worst }

func (p *Penetration) Reset() { p.worst = 0 }

// Standard returns the metrics every run records.
func Standard() []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergy(),
		NewEnergyDrift(),
		NewContacts(),
		NewPenetration(),
		NewStability(50),
	}
}
