// Package scenario derives independent configurations from named
// deltas and runs the allocation pipeline against them for
// side-by-side comparison. The base configuration is never mutated.
package scenario

import (
	"github.com/shopspring/decimal"

	"fundalloc/core/engine"
	"fundalloc/core/types"
	"fundalloc/internal/errors"
	"fundalloc/internal/logging"

	"go.uber.org/zap"
)

// Apply derives a new input from the base with the scenario's deltas
// applied. Weight multipliers and overrides are followed by
// renormalization so the derived weights sum to 1.0 again (the need
// share is recomputed from the renormalized need-class sum). The base
// input is deep-copied and left untouched.
func Apply(base engine.Input, sc types.Scenario) engine.Input {
	derived := base.Clone()

	touched := len(sc.WeightMultipliers) > 0 || len(sc.WeightOverrides) > 0
	if touched {
		for i := range derived.Weights.Criteria {
			spec := &derived.Weights.Criteria[i]
			if ov, ok := sc.WeightOverrides[spec.Name]; ok {
				spec.Weight = ov
			} else if m, ok := sc.WeightMultipliers[spec.Name]; ok {
				spec.Weight *= m
			}
		}

		var total, need float64
		for _, spec := range derived.Weights.Criteria {
			total += spec.Weight
		}
		if total > 0 {
			for i := range derived.Weights.Criteria {
				derived.Weights.Criteria[i].Weight /= total
				if derived.Weights.Criteria[i].Class == types.ClassNeed {
					need += derived.Weights.Criteria[i].Weight
				}
			}
			derived.Weights.NeedShare = need
		}
	}

	if sc.FundingMultiplier > 0 {
		derived.Constraints.TotalAppropriation = derived.Constraints.TotalAppropriation.
			Mul(decimal.NewFromFloat(sc.FundingMultiplier)).Round(2)
	}
	if sc.FloorOverride != nil {
		derived.Constraints.FloorFraction = *sc.FloorOverride
	}
	if sc.CapOverride != nil {
		derived.Constraints.CapFraction = *sc.CapOverride
	}
	if sc.ReserveOverride != nil {
		derived.Constraints.ReserveFraction = *sc.ReserveOverride
	}

	return derived
}

// RunAll executes the pipeline once per scenario and returns results
// keyed by scenario name. A failing scenario fails the whole batch
// with the scenario named in the error.
func RunAll(base engine.Input, scenarios []types.Scenario) (map[string]*engine.Result, error) {
	results := make(map[string]*engine.Result, len(scenarios))
	for _, sc := range scenarios {
		logging.Info("running scenario", zap.String("scenario", sc.Name))
		result, err := engine.Run(Apply(base, sc))
		if err != nil {
			if domainErr, ok := err.(*errors.Error); ok {
				return nil, domainErr.WithContext("scenario", sc.Name)
			}
			return nil, errors.Wrapf(errors.TypeInternal, err, "scenario %q failed", sc.Name)
		}
		results[sc.Name] = result
	}
	return results, nil
}
