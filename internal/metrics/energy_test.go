package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
)

func TestEnergyMean(t *testing.T) {
	m := NewEnergy()

	m.Observe(dynamo.Snapshot{KineticEnergy: 1, PotentialEnergy: 2})
	m.Observe(dynamo.Snapshot{KineticEnergy: 2, PotentialEnergy: 3})

	if math.Abs(m.Value()-4) > 1e-12 {
		t.Errorf("expected mean energy 4, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()

	for _, e := range []float64{10, 11, 9.5, 10} {
		m.Observe(dynamo.Snapshot{KineticEnergy: e})
	}

	if math.Abs(m.Value()-0.1) > 1e-12 {
		t.Errorf("expected max drift 0.1, got %f", m.Value())
	}

	m.Reset()
	m.Observe(dynamo.Snapshot{KineticEnergy: 5})
	if m.Value() != 0 {
		t.Errorf("expected no drift after reset, got %f", m.Value())
	}
}

func TestEnergyDriftFromZero(t *testing.T) {
	m := NewEnergyDrift()
	m.Observe(dynamo.Snapshot{})
	m.Observe(dynamo.Snapshot{KineticEnergy: 4, PotentialEnergy: -3})

	if math.Abs(m.Value()-0.25) > 1e-12 {
		t.Errorf("expected drift 0.25 against peak kinetic energy, got %f", m.Value())
	}
	if math.Abs(m.Absolute()-1) > 1e-12 {
		t.Errorf("expected absolute drift 1, got %f", m.Absolute())
	}
}

func TestStability(t *testing.T) {
	m := NewStability(1.0)
	if m.Value() != 1.0 {
		t.Error("expected full stability with no samples")
	}

	calm := dynamo.Snapshot{Bodies: []dynamo.BodyState{{Velocity: mgl64.Vec3{0.5, 0, 0}}}}
	spinning := dynamo.Snapshot{Bodies: []dynamo.BodyState{{AngularVelocity: mgl64.Vec3{0, 2, 0}}}}
	m.Observe(calm)
	m.Observe(spinning)

	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected stability 0.5, got %f", m.Value())
	}
}

func TestContactsAndPenetration(t *testing.T) {
	c := NewContacts()
	p := NewPenetration()
	for _, s := range []dynamo.Snapshot{
		{Contacts: 2, MaxPenetration: 0.01},
		{Contacts: 0},
		{Contacts: 4, MaxPenetration: 0.03},
	} {
		c.Observe(s)
		p.Observe(s)
	}

	if math.Abs(c.Value()-2) > 1e-12 {
		t.Errorf("expected 2 contacts per step, got %f", c.Value())
	}
	if p.Value() != 0.03 {
		t.Errorf("expected max penetration 0.03, got %f", p.Value())
	}
}

func TestStandardNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Standard() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}
