package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/san-kum/quadsim/internal/experiment"
)

var ErrNoCandidate = errors.New("optim: no grid point produced a result")

// BuildFunc builds an experiment for one grid point.
type BuildFunc func(params map[string]float64) (*experiment.Experiment, error)

// Candidate is one evaluated grid point.
type Candidate struct {
	Params map[string]float64
	Score  float64
	index  int
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: runtime.GOMAXPROCS(0)}
}

// WithWorkers limits how many experiments run at once.
func (g *GridSearch) WithWorkers(n int) *GridSearch {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Points enumerates the grid in row-major order.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.collect(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) collect(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val
		g.collect(depth+1, next, out)
	}
}

// Search runs every grid point and returns the one with the lowest value of
// metricName. Points whose experiment cannot be built or fails to run are
// skipped. Ties go to the earlier point.
func (g *GridSearch) Search(ctx context.Context, build BuildFunc, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("optim: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	p := pool.NewWithResults[Candidate]().
		WithContext(ctx).
		WithMaxGoroutines(g.workers)

	for i, params := range g.Points() {
		p.Go(func(ctx context.Context) (Candidate, error) {
			c := Candidate{Params: params, Score: math.Inf(1), index: i}

			exp, err := build(params)
			if err != nil {
				return c, nil
			}
			result, err := exp.Run(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return c, ctx.Err()
				}
				return c, nil
			}

			val, ok := result.Metrics[metricName]
			if !ok {
				return c, fmt.Errorf("optim: metric %q not recorded", metricName)
			}
			c.Score = val
			return c, nil
		})
	}

	candidates, err := p.Wait()
	if err != nil {
		return nil, 0, err
	}

	best := Candidate{Score: math.Inf(1), index: -1}
	for _, c := range candidates {
		if math.IsNaN(c.Score) || math.IsInf(c.Score, 1) {
			continue
		}
		if c.Score < best.Score || (c.Score == best.Score && c.index < best.index) {
			best = c
		}
	}
	if best.index < 0 {
		return nil, 0, ErrNoCandidate
	}
	return best.Params, best.Score, nil
}
