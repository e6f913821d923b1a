// Package uncertainty - Noise models for perturbed region tables
package uncertainty

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"fundalloc/core/types"
)

// Distribution names a noise distribution shape.
type Distribution string

const (
	// DistributionNormal is independent Gaussian noise (the default)
	DistributionNormal Distribution = "normal"

	// DistributionUniform is uniform noise on [-stddev, +stddev]
	DistributionUniform Distribution = "uniform"
)

// Factor describes the noise applied to one criterion.
type Factor struct {
	// StdDev is the noise standard deviation (half-width for uniform)
	StdDev float64 `json:"stddev" yaml:"stddev"`

	// Distribution is the noise shape (default normal)
	Distribution Distribution `json:"distribution,omitempty" yaml:"distribution,omitempty"`

	// Min clips perturbed values from below when non-nil
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`

	// Max clips perturbed values from above when non-nil
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// NoiseModel maps criteria to noise factors. Criteria without a factor
// are left untouched.
type NoiseModel struct {
	// Factors maps criterion name to its noise description
	Factors map[types.CriterionName]Factor `json:"factors" yaml:"factors"`

	// Seed is the base seed; iteration i derives its own stream from
	// (Seed, i), so results are reproducible regardless of worker count
	Seed uint64 `json:"seed" yaml:"seed"`
}

// DefaultNoiseModel mirrors the historically observed measurement
// uncertainty of the standard criteria.
func DefaultNoiseModel() NoiseModel {
	return NoiseModel{
		Seed: 1,
		Factors: map[types.CriterionName]Factor{
			types.CriterionPovertyRate:     {StdDev: 0.05, Min: ptr(0.02), Max: ptr(0.50)},
			types.CriterionEnergyBurden:    {StdDev: 0.08, Min: ptr(0.02), Max: ptr(0.60)},
			types.CriterionMedianIncome:    {StdDev: 5000, Min: ptr(0.0)},
			types.CriterionComplianceScore: {StdDev: 0.08, Min: ptr(0.50), Max: ptr(1.0)},
			types.CriterionUtilizationRate: {StdDev: 0.05, Min: ptr(0.0), Max: ptr(1.0)},
			types.CriterionVulnerableShare: {StdDev: 0.03, Min: ptr(0.0), Max: ptr(1.0)},
		},
	}
}

func ptr(v float64) *float64 { return &v }

// Perturb returns a noisy copy of the region table. Sampling order is
// fixed (regions in slice order, factors in sorted criterion order) so
// a given rng stream always produces the same table.
func (m NoiseModel) Perturb(regions []types.Region, rng *rand.Rand) []types.Region {
	names := make([]types.CriterionName, 0, len(m.Factors))
	for name := range m.Factors {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	out := types.CloneRegions(regions)
	for i := range out {
		for _, name := range names {
			raw, ok := out[i].Criteria[name]
			if !ok {
				continue
			}
			f := m.Factors[name]
			if f.StdDev <= 0 {
				continue
			}

			v := raw + f.sample(rng)
			if f.Min != nil && v < *f.Min {
				v = *f.Min
			}
			if f.Max != nil && v > *f.Max {
				v = *f.Max
			}
			out[i].Criteria[name] = v
		}
	}
	return out
}

func (f Factor) sample(rng *rand.Rand) float64 {
	switch f.Distribution {
	case DistributionUniform:
		return distuv.Uniform{Min: -f.StdDev, Max: f.StdDev, Src: rng}.Rand()
	default:
		return distuv.Normal{Mu: 0, Sigma: f.StdDev, Src: rng}.Rand()
	}
}
