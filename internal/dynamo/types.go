package dynamo

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyState is the observable state of one root physical.
type BodyState struct {
	Name            string
	Position        mgl64.Vec3
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Mass            float64
	KineticEnergy   float64
}

// Snapshot is the state of a world after a step.
type Snapshot struct {
	Step   int
	Time   float64
	Bodies []BodyState

	KineticEnergy   float64
	PotentialEnergy float64

	Contacts int
	// MaxPenetration is the longest exit vector found this step.
	MaxPenetration float64
}

func (s Snapshot) TotalEnergy() float64 {
	return s.KineticEnergy + s.PotentialEnergy
}

func (s Snapshot) Clone() Snapshot {
	c := s
	c.Bodies = append([]BodyState(nil), s.Bodies...)
	return c
}

type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Snapshot)
}

type Config struct {
	Dt       float64
	Duration float64
	Seed     int64
	// Workers bounds the narrow phase fan-out; 0 means GOMAXPROCS.
	Workers       int
	ValidateState bool
	// RecordEvery keeps one snapshot in RecordEvery steps; 0 keeps all.
	RecordEvery int
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrParameterBounds, c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrParameterBounds, c.Duration)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrParameterBounds, c.Workers)
	}
	return nil
}

// Steps is the number of whole steps that fit in Duration.
func (c Config) Steps() int {
	return int(c.Duration/c.Dt + 1e-9)
}

type Result struct {
	Snapshots   []Snapshot
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

// Final returns the last recorded snapshot.
func (r *Result) Final() (Snapshot, bool) {
	if len(r.Snapshots) == 0 {
		return Snapshot{}, false
	}
	return r.Snapshots[len(r.Snapshots)-1], true
}
