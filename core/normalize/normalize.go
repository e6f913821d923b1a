// Package normalize converts raw per-region criterion values into
// comparable unit-free scores.
package normalize

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"fundalloc/core/types"
)

// zeroVarianceTolerance treats a criterion as constant when its
// population standard deviation falls below this bound.
const zeroVarianceTolerance = 1e-12

// Normalize z-scores every configured criterion across the region
// table. Statistics use the population standard deviation over the
// regions in this run. A zero-variance criterion yields all-zero
// scores and is recorded as degenerate. Inverse-polarity criteria are
// negated after standardization so higher always means higher need or
// performance. Pure function of its inputs.
func Normalize(regions []types.Region, criteria []types.CriterionSpec) (*types.ScoreTable, error) {
	ids := make([]string, len(regions))
	for i, r := range regions {
		ids[i] = r.ID
	}
	sort.Strings(ids)

	byID := make(map[string]types.Region, len(regions))
	for _, r := range regions {
		byID[r.ID] = r
	}

	table := &types.ScoreTable{
		RegionIDs: ids,
		Scores:    make(map[string]map[types.CriterionName]float64, len(ids)),
	}
	for _, id := range ids {
		table.Scores[id] = make(map[types.CriterionName]float64, len(criteria))
	}

	for _, spec := range criteria {
		raw := make([]float64, len(ids))
		for i, id := range ids {
			v, err := byID[id].Criterion(spec.Name)
			if err != nil {
				return nil, err
			}
			raw[i] = v
		}

		mean := stat.Mean(raw, nil)
		stddev := math.Sqrt(stat.MomentAbout(2, raw, mean, nil))

		if stddev < zeroVarianceTolerance {
			// No signal: every score is zero for this criterion.
			for _, id := range ids {
				table.Scores[id][spec.Name] = 0
			}
			table.Degenerate = append(table.Degenerate, spec.Name)
			continue
		}

		for i, id := range ids {
			z := (raw[i] - mean) / stddev
			if spec.Polarity == types.PolarityInverse {
				z = -z
			}
			table.Scores[id][spec.Name] = z
		}
	}

	return table, nil
}
