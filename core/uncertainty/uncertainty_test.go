// Package uncertainty - Monte Carlo estimation tests
package uncertainty

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"

	"fundalloc/core/engine"
	"fundalloc/core/types"
)

func estimatorInput() engine.Input {
	return engine.Input{
		Regions: []types.Region{
			{ID: "a", Name: "A", Population: 100, Criteria: map[types.CriterionName]float64{
				types.CriterionPovertyRate:     0.30,
				types.CriterionComplianceScore: 0.80,
			}},
			{ID: "b", Name: "B", Population: 100, Criteria: map[types.CriterionName]float64{
				types.CriterionPovertyRate:     0.10,
				types.CriterionComplianceScore: 0.95,
			}},
			{ID: "c", Name: "C", Population: 100, Criteria: map[types.CriterionName]float64{
				types.CriterionPovertyRate:     0.20,
				types.CriterionComplianceScore: 0.90,
			}},
		},
		Weights: types.WeightConfig{
			NeedShare: 0.6,
			Criteria: []types.CriterionSpec{
				{Name: types.CriterionPovertyRate, Polarity: types.PolarityDirect, Class: types.ClassNeed, Weight: 0.6},
				{Name: types.CriterionComplianceScore, Polarity: types.PolarityDirect, Class: types.ClassPerformance, Weight: 0.4},
			},
		},
		Constraints: types.Constraints{
			TotalAppropriation: decimal.RequireFromString("100000.00"),
			FloorFraction:      0.05,
			CapFraction:        0.8,
		},
	}
}

func testNoise(seed uint64) NoiseModel {
	return NoiseModel{
		Seed: seed,
		Factors: map[types.CriterionName]Factor{
			types.CriterionPovertyRate: {StdDev: 0.03, Min: ptr(0.0), Max: ptr(0.5)},
		},
	}
}

// TestEstimateZeroNoiseCollapses verifies an empty noise model makes
// every interval collapse onto the point allocation
func TestEstimateZeroNoiseCollapses(t *testing.T) {
	in := estimatorInput()
	point, err := engine.Run(in)
	if err != nil {
		t.Fatalf("point run failed: %v", err)
	}

	est := Estimator{Iterations: 20, Confidence: 0.9}
	result, err := est.Estimate(context.Background(), in, NoiseModel{Seed: 1})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	for id, interval := range result.Intervals {
		want := point.Allocation.Amounts[id].InexactFloat64()
		if math.Abs(interval.Mean-want) > 0.01 {
			t.Errorf("mean[%s] = %v, want %v", id, interval.Mean, want)
		}
		if math.Abs(interval.Upper-interval.Lower) > 0.01 {
			t.Errorf("interval[%s] did not collapse: [%v, %v]",
				id, interval.Lower, interval.Upper)
		}
	}
}

// TestEstimateIntervalOrdering verifies lower <= mean <= upper in every
// interval
func TestEstimateIntervalOrdering(t *testing.T) {
	est := Estimator{Iterations: 200, Confidence: 0.9}
	result, err := est.Estimate(context.Background(), estimatorInput(), testNoise(7))
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	if len(result.Intervals) != 3 {
		t.Fatalf("got %d intervals, want 3", len(result.Intervals))
	}
	for id, interval := range result.Intervals {
		if interval.Lower > interval.Mean+1e-9 || interval.Mean > interval.Upper+1e-9 {
			t.Errorf("interval[%s] out of order: lower %v, mean %v, upper %v",
				id, interval.Lower, interval.Mean, interval.Upper)
		}
	}
	if result.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", result.Confidence)
	}
	if result.Iterations != 200 {
		t.Errorf("iterations = %v, want 200", result.Iterations)
	}
}

// TestEstimateSeedDeterminism verifies the same seed reproduces
// identical intervals regardless of worker count
func TestEstimateSeedDeterminism(t *testing.T) {
	single := Estimator{Iterations: 100, Confidence: 0.9, Workers: 1}
	parallel := Estimator{Iterations: 100, Confidence: 0.9, Workers: 8}

	first, err := single.Estimate(context.Background(), estimatorInput(), testNoise(42))
	if err != nil {
		t.Fatalf("single-worker estimate failed: %v", err)
	}
	second, err := parallel.Estimate(context.Background(), estimatorInput(), testNoise(42))
	if err != nil {
		t.Fatalf("parallel estimate failed: %v", err)
	}

	for id, want := range first.Intervals {
		got := second.Intervals[id]
		if got.Mean != want.Mean || got.Lower != want.Lower || got.Upper != want.Upper {
			t.Errorf("interval[%s] differs across worker counts: %+v vs %+v", id, want, got)
		}
	}
}

// TestEstimateCancellation verifies a cancelled context aborts the
// batch with an error
func TestEstimateCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	est := Estimator{Iterations: 1000, Confidence: 0.9}
	if _, err := est.Estimate(ctx, estimatorInput(), testNoise(1)); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

// TestPerturbRespectsClips verifies noisy values stay inside the
// configured bounds
func TestPerturbRespectsClips(t *testing.T) {
	model := NoiseModel{
		Seed: 3,
		Factors: map[types.CriterionName]Factor{
			types.CriterionPovertyRate: {StdDev: 5.0, Min: ptr(0.0), Max: ptr(0.5)},
		},
	}
	regions := estimatorInput().Regions

	rng := rand.New(rand.NewPCG(3, 0))
	for i := 0; i < 50; i++ {
		perturbed := model.Perturb(regions, rng)
		for _, r := range perturbed {
			v := r.Criteria[types.CriterionPovertyRate]
			if v < 0 || v > 0.5 {
				t.Fatalf("perturbed poverty_rate %v outside [0, 0.5]", v)
			}
		}
	}
}

// TestPerturbDoesNotMutateInput verifies perturbation copies the table
func TestPerturbDoesNotMutateInput(t *testing.T) {
	regions := estimatorInput().Regions
	before := regions[0].Criteria[types.CriterionPovertyRate]

	rng := rand.New(rand.NewPCG(9, 0))
	_ = testNoise(9).Perturb(regions, rng)

	if regions[0].Criteria[types.CriterionPovertyRate] != before {
		t.Errorf("input region mutated: %v -> %v",
			before, regions[0].Criteria[types.CriterionPovertyRate])
	}
}

// TestDefaultNoiseModelFactors verifies the built-in noise model
// covers the fractional criteria with unit-interval clips
func TestDefaultNoiseModelFactors(t *testing.T) {
	model := DefaultNoiseModel()

	fractional := []types.CriterionName{
		types.CriterionPovertyRate,
		types.CriterionUtilizationRate,
		types.CriterionVulnerableShare,
	}
	for _, name := range fractional {
		f, ok := model.Factors[name]
		if !ok {
			t.Errorf("no default factor for %s", name)
			continue
		}
		if f.StdDev <= 0 {
			t.Errorf("%s stddev = %v, want > 0", name, f.StdDev)
		}
		if f.Min == nil || *f.Min < 0 {
			t.Errorf("%s missing non-negative lower clip", name)
		}
		if f.Max == nil || *f.Max > 1.0 {
			t.Errorf("%s upper clip should not exceed 1.0", name)
		}
	}
}
