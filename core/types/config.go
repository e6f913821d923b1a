// Package types - Allocation configuration
package types

import (
	"math"

	"github.com/shopspring/decimal"

	"fundalloc/internal/errors"
)

// WeightSumTolerance is the permitted deviation when validating that
// weights sum to 1.0 (and class subsets to their configured shares).
const WeightSumTolerance = 1e-6

// CriterionSpec declares one scored criterion: its polarity, weight
// class and weight.
type CriterionSpec struct {
	// Name is the criterion name, matching the region table column
	Name CriterionName `json:"name"`

	// Polarity controls post-standardization sign
	Polarity Polarity `json:"polarity"`

	// Class assigns the criterion to the need or performance subset
	Class WeightClass `json:"class"`

	// Weight is the criterion weight in [0,1]
	Weight float64 `json:"weight"`
}

// WeightConfig is the criterion weight configuration.
// Immutable: the engine never mutates it; scenarios derive copies.
type WeightConfig struct {
	// Criteria lists all scored criteria in declaration order
	Criteria []CriterionSpec `json:"criteria"`

	// NeedShare is the share the need-based subset must sum to
	// (the performance subset sums to the complement)
	NeedShare float64 `json:"need_share"`
}

// Clone returns a deep copy of the weight configuration
func (w WeightConfig) Clone() WeightConfig {
	out := w
	out.Criteria = make([]CriterionSpec, len(w.Criteria))
	copy(out.Criteria, w.Criteria)
	return out
}

// Validate checks the weight invariants: every weight in [0,1], the
// need subset summing to NeedShare, the performance subset to its
// complement, and all weights summing to 1.0.
func (w WeightConfig) Validate() error {
	if len(w.Criteria) == 0 {
		return errors.Config("weight configuration has no criteria")
	}
	if w.NeedShare < 0 || w.NeedShare > 1 {
		return errors.Configf("need share %.4f outside [0,1]", w.NeedShare)
	}

	var total, need, perf float64
	seen := make(map[CriterionName]bool, len(w.Criteria))
	for _, c := range w.Criteria {
		if c.Weight < 0 || c.Weight > 1 {
			return errors.Configf("criterion %q weight %.6f outside [0,1]", c.Name, c.Weight)
		}
		if seen[c.Name] {
			return errors.Configf("criterion %q declared twice", c.Name)
		}
		seen[c.Name] = true

		total += c.Weight
		switch c.Class {
		case ClassNeed:
			need += c.Weight
		case ClassPerformance:
			perf += c.Weight
		default:
			return errors.Configf("criterion %q has unknown class %q", c.Name, c.Class)
		}
	}

	if math.Abs(total-1.0) > WeightSumTolerance {
		return errors.Configf("criterion weights sum to %.8f, expected 1.0", total)
	}
	if math.Abs(need-w.NeedShare) > WeightSumTolerance {
		return errors.Configf("need-based weights sum to %.8f, expected %.4f", need, w.NeedShare)
	}
	if math.Abs(perf-(1.0-w.NeedShare)) > WeightSumTolerance {
		return errors.Configf("performance-based weights sum to %.8f, expected %.4f", perf, 1.0-w.NeedShare)
	}
	return nil
}

// Constraints bound the distribution of the appropriation.
type Constraints struct {
	// TotalAppropriation is the full funding pool (currency amount > 0)
	TotalAppropriation decimal.Decimal `json:"total_appropriation"`

	// ReserveFraction in [0,1) is withheld before distribution
	ReserveFraction float64 `json:"reserve_fraction"`

	// FloorFraction is the minimum share of the distributable amount
	// any region may receive
	FloorFraction float64 `json:"floor_fraction"`

	// CapFraction is the maximum share of the distributable amount
	// any region may receive
	CapFraction float64 `json:"cap_fraction"`

	// MaxIterations bounds the redistribution loop (default 100)
	MaxIterations int `json:"max_iterations,omitempty"`
}

// DefaultMaxIterations bounds constraint redistribution when the
// configuration does not say otherwise.
const DefaultMaxIterations = 100

// IterationCap returns the configured iteration budget
func (c Constraints) IterationCap() int {
	if c.MaxIterations > 0 {
		return c.MaxIterations
	}
	return DefaultMaxIterations
}

// Distributable returns the amount available after reserve withholding,
// rounded to whole cents.
func (c Constraints) Distributable() decimal.Decimal {
	reserve := decimal.NewFromFloat(c.ReserveFraction)
	return c.TotalAppropriation.Mul(decimal.NewFromInt(1).Sub(reserve)).Round(2)
}

// Validate checks positivity, reserve range and the feasibility
// invariant floor*n <= 1 <= cap*n for the given region count.
func (c Constraints) Validate(regionCount int) error {
	if regionCount == 0 {
		return errors.Config("no regions to allocate across")
	}
	if !c.TotalAppropriation.IsPositive() {
		return errors.Configf("total appropriation %s is not positive", c.TotalAppropriation)
	}
	if c.ReserveFraction < 0 || c.ReserveFraction >= 1 {
		return errors.Configf("reserve fraction %.4f outside [0,1)", c.ReserveFraction)
	}
	if c.FloorFraction < 0 || c.CapFraction <= 0 || c.CapFraction > 1 {
		return errors.Configf("floor %.4f / cap %.4f outside valid ranges", c.FloorFraction, c.CapFraction)
	}
	if c.FloorFraction > c.CapFraction {
		return errors.Configf("floor fraction %.4f exceeds cap fraction %.4f", c.FloorFraction, c.CapFraction)
	}

	n := float64(regionCount)
	if c.FloorFraction*n > 1.0+WeightSumTolerance {
		return errors.Configf("infeasible: floor %.4f x %d regions exceeds the distributable total", c.FloorFraction, regionCount)
	}
	if c.CapFraction*n < 1.0-WeightSumTolerance {
		return errors.Configf("infeasible: cap %.4f x %d regions cannot absorb the distributable total", c.CapFraction, regionCount)
	}
	return nil
}
