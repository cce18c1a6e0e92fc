package sim

import (
	"context"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

// Stepper is a world a Simulator can drive. *world.World implements it.
type Stepper interface {
	Step(ctx context.Context, dt float64) error
	Snapshot() dynamo.Snapshot
	Validate() error
	SetWorkers(n int)
}

// Builder creates a fresh world for one run of an ensemble.
type Builder func(seed int64) (Stepper, error)
