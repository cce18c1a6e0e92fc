package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

type Simulator struct {
	w         Stepper
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(w Stepper) *Simulator {
	return &Simulator{
		w:         w,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s.w.SetWorkers(cfg.Workers)

	steps := cfg.Steps()
	every := max(cfg.RecordEvery, 1)
	result := &dynamo.Result{
		Snapshots: make([]dynamo.Snapshot, 0, steps/every+2),
		Metrics:   make(map[string]float64),
		Errors:    make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	snap := s.w.Snapshot()
	result.Snapshots = append(result.Snapshots, snap)
	initialEnergy := snap.TotalEnergy()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		for _, m := range s.metrics {
			m.Observe(snap)
		}
		for _, obs := range s.observers {
			obs.OnStep(snap)
		}

		if err := s.w.Step(ctx, cfg.Dt); err != nil {
			result.Errors = append(result.Errors, &dynamo.SimulationError{Step: i, Time: snap.Time, Wrapped: err})
			break
		}
		if cfg.ValidateState {
			if err := s.w.Validate(); err != nil {
				result.Errors = append(result.Errors, &dynamo.SimulationError{Step: i, Time: snap.Time, Wrapped: err})
				break
			}
		}

		snap = s.w.Snapshot()
		result.StepsTaken++
		if (i+1)%every == 0 || i == steps-1 {
			result.Snapshots = append(result.Snapshots, snap)
		}
	}

	finalEnergy := snap.TotalEnergy()
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback steps until the duration is reached, the callback returns
// false or ctx is done. The callback sees every snapshot before its step.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg dynamo.Config, callback func(dynamo.Snapshot) bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.w.SetWorkers(cfg.Workers)

	for i := 0; i < cfg.Steps(); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		snap := s.w.Snapshot()
		if !callback(snap) {
			return nil
		}

		if err := s.w.Step(ctx, cfg.Dt); err != nil {
			return &dynamo.SimulationError{Step: i, Time: snap.Time, Wrapped: err}
		}
		if cfg.ValidateState {
			if err := s.w.Validate(); err != nil {
				return &dynamo.SimulationError{Step: i, Time: snap.Time, Wrapped: err}
			}
		}
	}

	return nil
}
