// Package scenario - Built-in scenario catalog
package scenario

import (
	"fundalloc/core/types"
)

// Catalog returns the built-in scenario set. Weight multipliers shift
// emphasis between need criteria (income, energy burden, poverty) and
// performance criteria (utilization, compliance); funding scenarios
// scale the appropriation without touching weights.
func Catalog() []types.Scenario {
	return []types.Scenario{
		{
			Name: "Base Case",
		},
		{
			Name: "Optimistic",
			WeightMultipliers: map[types.CriterionName]float64{
				types.CriterionMedianIncome:    0.9,
				types.CriterionEnergyBurden:    1.1,
				types.CriterionPovertyRate:     0.9,
				types.CriterionVulnerableShare: 0.9,
				types.CriterionUtilizationRate: 1.2,
				types.CriterionComplianceScore: 1.2,
			},
		},
		{
			Name: "Pessimistic",
			WeightMultipliers: map[types.CriterionName]float64{
				types.CriterionMedianIncome:    1.2,
				types.CriterionEnergyBurden:    1.3,
				types.CriterionPovertyRate:     1.1,
				types.CriterionVulnerableShare: 1.2,
				types.CriterionUtilizationRate: 0.8,
				types.CriterionComplianceScore: 0.8,
			},
		},
		{
			Name: "Equity-Focused",
			WeightMultipliers: map[types.CriterionName]float64{
				types.CriterionMedianIncome:    1.4,
				types.CriterionEnergyBurden:    1.2,
				types.CriterionPovertyRate:     1.3,
				types.CriterionVulnerableShare: 1.4,
				types.CriterionUtilizationRate: 0.7,
				types.CriterionComplianceScore: 0.7,
			},
		},
		{
			Name: "Performance-Driven",
			WeightMultipliers: map[types.CriterionName]float64{
				types.CriterionMedianIncome:    0.7,
				types.CriterionEnergyBurden:    0.8,
				types.CriterionPovertyRate:     0.6,
				types.CriterionVulnerableShare: 0.7,
				types.CriterionUtilizationRate: 1.5,
				types.CriterionComplianceScore: 1.5,
			},
		},
		{
			Name:              "Increased Funding (+25%)",
			FundingMultiplier: 1.25,
		},
		{
			Name:              "Reduced Funding (-20%)",
			FundingMultiplier: 0.80,
		},
		{
			Name:              "Emergency Funding (+50%)",
			FundingMultiplier: 1.50,
		},
	}
}

// Lookup finds a catalog scenario by name
func Lookup(name string) (types.Scenario, bool) {
	for _, sc := range Catalog() {
		if sc.Name == name {
			return sc, true
		}
	}
	return types.Scenario{}, false
}
