package sim

import (
	"context"
	"sync"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

// Ensemble runs the same scene several times concurrently, each run built
// with its own seed.
type Ensemble struct {
	build     Builder
	metrics   []func() dynamo.Metric
	numRuns   int
	seedStart int64
}

func NewEnsemble(build Builder, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// AddMetric registers a metric constructor; every run gets its own instance.
func (e *Ensemble) AddMetric(newMetric func() dynamo.Metric) {
	e.metrics = append(e.metrics, newMetric)
}

func (e *Ensemble) Run(ctx context.Context, cfg dynamo.Config) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			w, err := e.build(cfgCopy.Seed)
			if err != nil {
				errs[idx] = err
				return
			}
			s := New(w)
			for _, newMetric := range e.metrics {
				s.AddMetric(newMetric())
			}

			results[idx], errs[idx] = s.Run(ctx, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
