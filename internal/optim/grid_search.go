package optim

import (
	"context"
	"errors"
	"maps"
	"math"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

// RunFunc runs one scene with the given parameter values.
type RunFunc func(ctx context.Context, params map[string]float64) (*dynamo.Result, error)

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, errors.New("optim: one range per parameter")
	}
	for _, r := range ranges {
		if len(r) == 0 {
			return nil, errors.New("optim: empty range")
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search runs every grid point and returns the one minimizing metricName
// together with all trials in grid order. Failed runs are recorded and
// skipped; a canceled context stops the search.
func (g *GridSearch) Search(ctx context.Context, run RunFunc, metricName string) (map[string]float64, float64, []Trial, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	err := g.searchRecursive(ctx, 0, map[string]float64{}, func(params map[string]float64) {
		result, err := run(ctx, params)
		if err == nil && len(result.Errors) > 0 {
			err = result.Errors[0]
		}
		t := Trial{Params: params, Err: err}
		if err == nil {
			val, ok := result.Metrics[metricName]
			if !ok {
				t.Err = errors.New("optim: metric " + metricName + " not recorded")
			} else {
				t.Value = val
				if val < best {
					best = val
					bestParams = maps.Clone(params)
				}
			}
		}
		trials = append(trials, t)
	})
	return bestParams, best, trials, err
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		visit(current)
		return nil
	}

	for _, val := range g.ranges[depth] {
		next := maps.Clone(current)
		next[g.paramNames[depth]] = val
		if err := g.searchRecursive(ctx, depth+1, next, visit); err != nil {
			return err
		}
	}
	return nil
}
