// Package uncertainty characterizes allocation risk by re-running the
// pipeline over noise-perturbed region tables and aggregating the
// results into per-region confidence intervals.
package uncertainty

import (
	"context"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"fundalloc/core/engine"
	"fundalloc/core/types"
	"fundalloc/internal/errors"
	"fundalloc/internal/logging"

	"go.uber.org/zap"
)

// Estimator runs Monte Carlo allocation batches.
type Estimator struct {
	// Iterations is the number of perturbed runs (default 1000)
	Iterations int

	// Confidence is the interval confidence level (default 0.90)
	Confidence float64

	// Workers bounds parallelism (default GOMAXPROCS)
	Workers int
}

// Defaults for estimator parameters.
const (
	DefaultIterations = 1000
	DefaultConfidence = 0.90
)

// Estimate runs the full pipeline once per iteration against an
// independently perturbed region table and aggregates the per-region
// allocations into an empirical mean and confidence interval.
// Iterations are independent and executed in parallel; aggregation
// starts only after every iteration completes. Cancelling the context
// aborts the batch and discards partial results.
func (e Estimator) Estimate(ctx context.Context, base engine.Input, noise NoiseModel) (*types.UncertaintyResult, error) {
	iterations := e.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	confidence := e.Confidence
	if confidence <= 0 || confidence >= 1 {
		confidence = DefaultConfidence
	}
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > iterations {
		workers = iterations
	}

	if err := base.Validate(); err != nil {
		return nil, err
	}

	logging.Info("starting uncertainty estimation",
		zap.Int("iterations", iterations),
		zap.Float64("confidence", confidence),
		zap.Int("workers", workers))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	samples := make([]map[string]float64, iterations)
	jobs := make(chan int)

	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-runCtx.Done():
					return
				default:
				}

				rng := rand.New(rand.NewPCG(noise.Seed, uint64(idx)))
				perturbed := noise.Perturb(base.Regions, rng)

				result, err := engine.Run(engine.Input{
					Regions:     perturbed,
					Weights:     base.Weights.Clone(),
					Constraints: base.Constraints,
				})
				if err != nil {
					fail(errors.Wrapf(errors.TypeInternal, err, "iteration %d failed", idx))
					return
				}

				amounts := make(map[string]float64, len(result.Allocation.Amounts))
				for id, amt := range result.Allocation.Amounts {
					amounts[id] = amt.InexactFloat64()
				}
				samples[idx] = amounts
			}
		}()
	}

	for idx := 0; idx < iterations; idx++ {
		select {
		case <-runCtx.Done():
			idx = iterations
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "uncertainty estimation aborted", err)
	}

	return aggregate(samples, confidence, iterations), nil
}

// aggregate is a pure reduction over completed samples.
func aggregate(samples []map[string]float64, confidence float64, iterations int) *types.UncertaintyResult {
	perRegion := make(map[string][]float64)
	for _, sample := range samples {
		for id, v := range sample {
			perRegion[id] = append(perRegion[id], v)
		}
	}

	lowerQ := (1 - confidence) / 2
	upperQ := 1 - lowerQ

	intervals := make(map[string]types.RegionInterval, len(perRegion))
	for id, values := range perRegion {
		sort.Float64s(values)
		intervals[id] = types.RegionInterval{
			Mean:  stat.Mean(values, nil),
			Lower: stat.Quantile(lowerQ, stat.Empirical, values, nil),
			Upper: stat.Quantile(upperQ, stat.Empirical, values, nil),
		}
	}

	return &types.UncertaintyResult{
		Intervals:  intervals,
		Confidence: confidence,
		Iterations: iterations,
	}
}
