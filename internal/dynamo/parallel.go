package dynamo

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// Factory builds an independent simulator for one ensemble member.
type Factory func(seed int64) (*Simulator, error)

// Flight drives one simulator, typically by executing a flight plan.
type Flight func(ctx context.Context, s *Simulator) error

// Ensemble runs the same flight under different seeds (and therefore
// different winds) in parallel.
type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart int64
	workers   int
}

func NewEnsemble(f Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: f, numRuns: numRuns, seedStart: seedStart, workers: runtime.GOMAXPROCS(0)}
}

// WithWorkers bounds the number of flights in progress at once.
func (e *Ensemble) WithWorkers(n int) *Ensemble {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Run flies every seed and returns the results in seed order. Any failed
// member fails the ensemble.
func (e *Ensemble) Run(ctx context.Context, fly Flight) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	p := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(e.workers)

	for idx := range e.numRuns {
		seed := e.seedStart + int64(idx)
		p.Go(func(ctx context.Context) error {
			s, err := e.factory(seed)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			if err := fly(ctx, s); err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[idx] = s.Result()
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
