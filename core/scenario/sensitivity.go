// Package scenario - Single-parameter sensitivity analysis
package scenario

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"fundalloc/core/determinism"
	"fundalloc/core/engine"
	"fundalloc/core/types"
)

// Parameter selects what a sensitivity sweep varies: a raw criterion
// (every region's value multiplied by the sweep value) or the funding
// level (appropriation multiplied by the sweep value).
type Parameter struct {
	Criterion types.CriterionName
	Funding   bool
}

// Summary condenses one allocation into sweep-comparable statistics.
type Summary struct {
	Total                  float64 `json:"total"`
	Mean                   float64 `json:"mean"`
	StdDev                 float64 `json:"std_dev"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	Min                    float64 `json:"min"`
	Max                    float64 `json:"max"`
}

// Point is one sweep value with its resulting summary.
type Point struct {
	Value   float64 `json:"value"`
	Summary Summary `json:"summary"`
}

// Sensitivity runs the pipeline once per sweep value, deriving an
// independent input each time. The base input is never mutated.
func Sensitivity(base engine.Input, param Parameter, values []float64) ([]Point, error) {
	points := make([]Point, 0, len(values))

	for _, value := range values {
		derived := base.Clone()
		if param.Funding {
			derived.Constraints.TotalAppropriation = derived.Constraints.TotalAppropriation.
				Mul(decimal.NewFromFloat(value)).Round(2)
		} else {
			for i := range derived.Regions {
				if raw, ok := derived.Regions[i].Criteria[param.Criterion]; ok {
					derived.Regions[i].Criteria[param.Criterion] = raw * value
				}
			}
		}

		result, err := engine.Run(derived)
		if err != nil {
			return nil, err
		}
		points = append(points, Point{Value: value, Summary: Summarize(result)})
	}
	return points, nil
}

// Summarize reduces a result's allocation to summary statistics.
func Summarize(result *engine.Result) Summary {
	amounts := make([]float64, 0, len(result.Allocation.Amounts))
	determinism.RangeMapSorted(result.Allocation.Amounts, func(_ string, amt decimal.Decimal) bool {
		amounts = append(amounts, amt.InexactFloat64())
		return true
	})
	if len(amounts) == 0 {
		return Summary{}
	}

	mean := stat.Mean(amounts, nil)
	stddev := math.Sqrt(stat.MomentAbout(2, amounts, mean, nil))

	s := Summary{
		Total:  result.Allocation.Total().InexactFloat64(),
		Mean:   mean,
		StdDev: stddev,
		Min:    amounts[0],
		Max:    amounts[0],
	}
	if mean > 0 {
		s.CoefficientOfVariation = stddev / mean
	}
	for _, v := range amounts[1:] {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	return s
}
