// Package types - Allocation results
package types

import (
	"github.com/shopspring/decimal"
)

// ScoreTable holds normalized per-region, per-criterion scores for one
// run. Recomputed every run from the current region set; never cached
// across runs with different region sets.
type ScoreTable struct {
	// RegionIDs lists region identifiers in ascending order
	RegionIDs []string `json:"region_ids"`

	// Scores maps region ID -> criterion -> normalized score
	Scores map[string]map[CriterionName]float64 `json:"scores"`

	// Degenerate lists criteria with zero variance across all regions
	// (normalized scores defined as zero for those criteria)
	Degenerate []CriterionName `json:"degenerate,omitempty"`
}

// Allocation maps region identifiers to funding amounts.
// Amounts are non-negative and sum exactly to the distributable amount.
// Immutable once returned.
type Allocation struct {
	// Amounts maps region ID to the allocated amount
	Amounts map[string]decimal.Decimal `json:"amounts"`

	// Distributable is the amount the allocation sums to
	Distributable decimal.Decimal `json:"distributable"`
}

// Total returns the sum of all allocated amounts
func (a Allocation) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amt := range a.Amounts {
		total = total.Add(amt)
	}
	return total
}

// RunMetadata carries non-fatal flags and bookkeeping for one run.
type RunMetadata struct {
	// DegenerateCriteria lists zero-variance criteria (DegenerateInput flag)
	DegenerateCriteria []CriterionName `json:"degenerate_criteria,omitempty"`

	// UniformComposite is set when all composite scores are equal
	UniformComposite bool `json:"uniform_composite,omitempty"`

	// Iterations is the redistribution iteration count
	Iterations int `json:"iterations"`

	// InputHash fingerprints the (region table, configuration) pair
	InputHash string `json:"input_hash,omitempty"`
}

// Degenerate reports whether any degenerate-input condition was flagged
func (m RunMetadata) Degenerate() bool {
	return len(m.DegenerateCriteria) > 0 || m.UniformComposite
}

// EquityReport summarizes dispersion and fairness of an allocation.
type EquityReport struct {
	// Gini is the Gini coefficient (0 = equal, 1 = maximally unequal)
	Gini float64 `json:"gini"`

	// CoefficientOfVariation is population stddev / mean
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`

	// PerCapita indicates the metrics were computed over per-capita values
	PerCapita bool `json:"per_capita"`

	// GroupRatios maps "groupA/groupB" to the ratio of group mean allocations
	GroupRatios map[string]float64 `json:"group_ratios,omitempty"`

	// Theil is the Theil inequality index
	Theil float64 `json:"theil"`

	// Atkinson is the Atkinson index at the configured epsilon
	Atkinson float64 `json:"atkinson"`

	// Hoover is the Hoover (Robin Hood) index
	Hoover float64 `json:"hoover"`

	// PopulationCorrelation correlates population shares with allocation shares
	PopulationCorrelation float64 `json:"population_correlation"`

	// GroupAssessments holds pass/fail results for group ratios with
	// a configured target
	GroupAssessments map[string]GroupAssessment `json:"group_assessments,omitempty"`
}

// GroupAssessment compares an observed group-mean ratio against
// its configured target.
type GroupAssessment struct {
	// Ratio is the observed mean-allocation ratio for the pair
	Ratio float64 `json:"ratio"`

	// Target is the configured target ratio
	Target float64 `json:"target"`

	// Gap is observed minus target
	Gap float64 `json:"gap"`

	// Met reports whether the ratio falls within tolerance of the target
	Met bool `json:"met"`
}

// Scenario is a named, non-destructive delta over the base
// configuration. Applying a scenario derives an independent
// configuration; the base is never mutated.
type Scenario struct {
	// Name identifies the scenario
	Name string `json:"name"`

	// WeightMultipliers scales selected criterion weights
	WeightMultipliers map[CriterionName]float64 `json:"weight_multipliers,omitempty"`

	// WeightOverrides replaces selected criterion weights outright.
	// Derived weights are always renormalized to sum to 1.0.
	WeightOverrides map[CriterionName]float64 `json:"weight_overrides,omitempty"`

	// FundingMultiplier scales the total appropriation (0 = unchanged)
	FundingMultiplier float64 `json:"funding_multiplier,omitempty"`

	// FloorOverride replaces the floor fraction when non-nil
	FloorOverride *float64 `json:"floor_override,omitempty"`

	// CapOverride replaces the cap fraction when non-nil
	CapOverride *float64 `json:"cap_override,omitempty"`

	// ReserveOverride replaces the reserve fraction when non-nil
	ReserveOverride *float64 `json:"reserve_override,omitempty"`
}

// RegionInterval is the distribution summary for one region after
// repeated perturbed runs.
type RegionInterval struct {
	// Mean is the empirical mean allocation
	Mean float64 `json:"mean"`

	// Lower is the lower confidence bound
	Lower float64 `json:"lower"`

	// Upper is the upper confidence bound
	Upper float64 `json:"upper"`
}

// UncertaintyResult aggregates Monte Carlo allocation runs.
type UncertaintyResult struct {
	// Intervals maps region ID to its distribution summary
	Intervals map[string]RegionInterval `json:"intervals"`

	// Confidence is the interval confidence level (e.g. 0.90)
	Confidence float64 `json:"confidence"`

	// Iterations is the number of perturbed runs aggregated
	Iterations int `json:"iterations"`
}
