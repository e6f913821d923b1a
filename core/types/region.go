// Package types defines the core data model for funding allocation.
package types

import (
	"math"

	"fundalloc/internal/errors"
)

// CriterionName identifies a scoring criterion
type CriterionName string

// Well-known criteria. The engine is not limited to these; any criterion
// named in the weight configuration and present in the region table works.
const (
	CriterionMedianIncome     CriterionName = "median_income"
	CriterionEnergyBurden     CriterionName = "energy_burden_pct"
	CriterionPovertyRate      CriterionName = "poverty_rate"
	CriterionUtilizationRate  CriterionName = "utilization_rate"
	CriterionComplianceScore  CriterionName = "compliance_score"
	CriterionVulnerableShare  CriterionName = "vulnerable_share"
)

// String returns the string representation
func (c CriterionName) String() string {
	return string(c)
}

// Polarity describes how a raw criterion value relates to need
type Polarity int

const (
	// PolarityDirect means a higher raw value implies higher need/performance
	PolarityDirect Polarity = iota

	// PolarityInverse means a lower raw value implies higher need (e.g. income)
	PolarityInverse
)

// WeightClass partitions criteria into need-based and performance-based
type WeightClass string

const (
	ClassNeed        WeightClass = "need"
	ClassPerformance WeightClass = "performance"
)

// Region is one funding recipient with its raw criterion values.
// Immutable per allocation run; supplied by the data-loading boundary.
type Region struct {
	// ID is the stable region identifier (ordering and tie-break key)
	ID string `json:"id"`

	// Name is the human-readable region name
	Name string `json:"name"`

	// Population is the total population, used for per-capita metrics
	Population int64 `json:"population"`

	// Group is an optional sub-group label (e.g. "urban", "rural")
	Group string `json:"group,omitempty"`

	// Criteria maps criterion name to raw numeric value
	Criteria map[CriterionName]float64 `json:"criteria"`
}

// Criterion returns a raw criterion value, rejecting missing or
// non-finite entries. Shape checks only; semantic validation belongs
// to the loading boundary.
func (r Region) Criterion(name CriterionName) (float64, error) {
	v, ok := r.Criteria[name]
	if !ok {
		return 0, errors.Inputf("region %s missing criterion %q", r.ID, name)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Inputf("region %s criterion %q is not a finite number", r.ID, name)
	}
	return v, nil
}

// Clone returns a deep copy of the region
func (r Region) Clone() Region {
	out := r
	out.Criteria = make(map[CriterionName]float64, len(r.Criteria))
	for k, v := range r.Criteria {
		out.Criteria[k] = v
	}
	return out
}

// CloneRegions deep-copies a region table
func CloneRegions(regions []Region) []Region {
	out := make([]Region, len(regions))
	for i, r := range regions {
		out[i] = r.Clone()
	}
	return out
}
