// Package equity computes dispersion and fairness statistics over a
// finalized allocation. All metrics are pure read-only functions; the
// allocation is never altered.
package equity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"fundalloc/core/determinism"
	"fundalloc/core/types"
)

// Options configures an equity analysis.
type Options struct {
	// PerCapita divides each amount by region population before analysis
	PerCapita bool

	// GroupPairs lists group label pairs to report mean-allocation
	// ratios for (e.g. {"urban", "rural"})
	GroupPairs [][2]string

	// AtkinsonEpsilon is the inequality-aversion parameter (default 0.5)
	AtkinsonEpsilon float64

	// RatioTargets maps a "groupA/groupB" key to a target ratio. Pairs
	// with a target get a pass/fail assessment in the report.
	RatioTargets map[string]float64

	// RatioTolerance is the relative deviation from a target still
	// counted as met (default 0.10)
	RatioTolerance float64
}

// Analyze produces an EquityReport for the allocation.
func Analyze(alloc types.Allocation, regions []types.Region, opts Options) *types.EquityReport {
	eps := opts.AtkinsonEpsilon
	if eps == 0 {
		eps = 0.5
	}

	byID := make(map[string]types.Region, len(regions))
	for _, r := range regions {
		byID[r.ID] = r
	}

	ids := determinism.SortedKeys(alloc.Amounts)
	values := make([]float64, 0, len(ids))
	popShares := make([]float64, 0, len(ids))
	allocShares := make([]float64, 0, len(ids))

	var totalPop, totalAlloc float64
	for _, id := range ids {
		totalPop += float64(byID[id].Population)
		totalAlloc += alloc.Amounts[id].InexactFloat64()
	}

	for _, id := range ids {
		amount := alloc.Amounts[id].InexactFloat64()
		v := amount
		if opts.PerCapita {
			if pop := byID[id].Population; pop > 0 {
				v = amount / float64(pop)
			}
		}
		values = append(values, v)
		if totalPop > 0 {
			popShares = append(popShares, float64(byID[id].Population)/totalPop)
		}
		if totalAlloc > 0 {
			allocShares = append(allocShares, amount/totalAlloc)
		}
	}

	report := &types.EquityReport{
		Gini:                   Gini(values),
		CoefficientOfVariation: CoefficientOfVariation(values),
		PerCapita:              opts.PerCapita,
		Theil:                  Theil(values),
		Atkinson:               Atkinson(values, eps),
		Hoover:                 Hoover(values),
	}

	if len(popShares) == len(allocShares) && len(popShares) > 1 {
		report.PopulationCorrelation = stat.Correlation(popShares, allocShares, nil)
	}

	if len(opts.GroupPairs) > 0 {
		report.GroupRatios = groupRatios(alloc, byID, ids, opts)
		report.GroupAssessments = assessRatios(report.GroupRatios, opts)
	}
	return report
}

func assessRatios(ratios map[string]float64, opts Options) map[string]types.GroupAssessment {
	if len(opts.RatioTargets) == 0 {
		return nil
	}
	tol := opts.RatioTolerance
	if tol == 0 {
		tol = 0.10
	}

	out := make(map[string]types.GroupAssessment, len(opts.RatioTargets))
	for key, target := range opts.RatioTargets {
		ratio, ok := ratios[key]
		if !ok || target == 0 {
			continue
		}
		gap := ratio - target
		out[key] = types.GroupAssessment{
			Ratio:  ratio,
			Target: target,
			Gap:    gap,
			Met:    math.Abs(gap) <= tol*target,
		}
	}
	return out
}

func groupRatios(alloc types.Allocation, byID map[string]types.Region, ids []string, opts Options) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, id := range ids {
		r := byID[id]
		if r.Group == "" {
			continue
		}
		v := alloc.Amounts[id].InexactFloat64()
		if opts.PerCapita && r.Population > 0 {
			v /= float64(r.Population)
		}
		sums[r.Group] += v
		counts[r.Group]++
	}

	ratios := make(map[string]float64, len(opts.GroupPairs))
	for _, pair := range opts.GroupPairs {
		a, b := pair[0], pair[1]
		if counts[a] == 0 || counts[b] == 0 {
			continue
		}
		meanA := sums[a] / float64(counts[a])
		meanB := sums[b] / float64(counts[b])
		if meanB == 0 {
			continue
		}
		ratios[fmt.Sprintf("%s/%s", a, b)] = meanA / meanB
	}
	return ratios
}

// Gini computes the Gini coefficient via the mean absolute difference
// formula: sum_i sum_j |x_i - x_j| / (2 n^2 mean). Zero for an equal
// vector, approaching 1 as the vector concentrates on one entry.
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := stat.Mean(values, nil)
	if mean <= 0 {
		return 0
	}

	var diff float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			diff += math.Abs(values[i] - values[j])
		}
	}
	return diff / (2 * float64(n) * float64(n) * mean)
}

// CoefficientOfVariation is the population standard deviation divided
// by the mean; a scale-free dispersion measure.
func CoefficientOfVariation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := stat.Mean(values, nil)
	if mean <= 0 {
		return 0
	}
	stddev := math.Sqrt(stat.MomentAbout(2, values, mean, nil))
	return stddev / mean
}
