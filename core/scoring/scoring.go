// Package scoring combines normalized criterion scores into one
// weighted composite score per region.
package scoring

import (
	"math"

	"fundalloc/core/types"
)

// uniformTolerance decides when all composite scores are considered equal.
const uniformTolerance = 1e-12

// Composite computes the weighted sum of normalized scores per region.
// Weight validity is the configuration loader's responsibility; the sum
// is computed as given. Returns the scores and whether every region
// scored identically (DegenerateInput flag for the run metadata).
// Identical inputs always yield identical scores.
func Composite(table *types.ScoreTable, cfg types.WeightConfig) (map[string]float64, bool) {
	scores := make(map[string]float64, len(table.RegionIDs))

	for _, id := range table.RegionIDs {
		var sum float64
		row := table.Scores[id]
		for _, spec := range cfg.Criteria {
			sum += spec.Weight * row[spec.Name]
		}
		scores[id] = sum
	}

	uniform := true
	if len(table.RegionIDs) > 0 {
		first := scores[table.RegionIDs[0]]
		for _, id := range table.RegionIDs[1:] {
			if math.Abs(scores[id]-first) > uniformTolerance {
				uniform = false
				break
			}
		}
	}

	return scores, uniform
}

// NeedPerformance splits the composite into its need-based and
// performance-based components per region, for downstream ranking.
func NeedPerformance(table *types.ScoreTable, cfg types.WeightConfig) (need, perf map[string]float64) {
	need = make(map[string]float64, len(table.RegionIDs))
	perf = make(map[string]float64, len(table.RegionIDs))

	for _, id := range table.RegionIDs {
		row := table.Scores[id]
		for _, spec := range cfg.Criteria {
			switch spec.Class {
			case types.ClassNeed:
				need[id] += spec.Weight * row[spec.Name]
			case types.ClassPerformance:
				perf[id] += spec.Weight * row[spec.Name]
			}
		}
	}
	return need, perf
}
