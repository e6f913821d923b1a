// Package config - HCL program configuration
//
// A program file declares the funding pool, criterion weights,
// scenarios and the uncertainty model for one allocation program.
// It is parsed and validated once at load time; the engine never
// re-reads or mutates it.
package config

import (
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"fundalloc/core/equity"
	"fundalloc/core/types"
	"fundalloc/core/uncertainty"
	"fundalloc/internal/errors"
)

// Program is a fully validated allocation program configuration.
type Program struct {
	// Weights is the criterion weight configuration
	Weights types.WeightConfig

	// Constraints bounds the distribution
	Constraints types.Constraints

	// Scenarios lists configured scenario deltas
	Scenarios []types.Scenario

	// Uncertainty configures Monte Carlo estimation
	Uncertainty UncertaintySettings

	// Equity configures the equity analysis
	Equity equity.Options
}

// UncertaintySettings configures the uncertainty estimator.
type UncertaintySettings struct {
	Iterations int
	Confidence float64
	Noise      uncertainty.NoiseModel
}

type programFile struct {
	Funding     fundingBlock      `hcl:"funding,block"`
	Weights     weightsBlock      `hcl:"weights,block"`
	Scenarios   []scenarioBlock   `hcl:"scenario,block"`
	Uncertainty *uncertaintyBlock `hcl:"uncertainty,block"`
	Equity      *equityBlock      `hcl:"equity,block"`
}

type fundingBlock struct {
	TotalAppropriation float64 `hcl:"total_appropriation"`
	ReserveFraction    float64 `hcl:"reserve_fraction,optional"`
	FloorFraction      float64 `hcl:"floor_fraction"`
	CapFraction        float64 `hcl:"cap_fraction"`
	MaxIterations      int     `hcl:"max_iterations,optional"`
}

type weightsBlock struct {
	NeedShare float64          `hcl:"need_share"`
	Criteria  []criterionBlock `hcl:"criterion,block"`
}

type criterionBlock struct {
	Name     string  `hcl:"name,label"`
	Weight   float64 `hcl:"weight"`
	Polarity string  `hcl:"polarity,optional"`
	Class    string  `hcl:"class"`
}

type scenarioBlock struct {
	Name              string    `hcl:"name,label"`
	WeightMultipliers cty.Value `hcl:"weight_multipliers,optional"`
	WeightOverrides   cty.Value `hcl:"weight_overrides,optional"`
	FundingMultiplier float64   `hcl:"funding_multiplier,optional"`
	FloorFraction     *float64  `hcl:"floor_fraction,optional"`
	CapFraction       *float64  `hcl:"cap_fraction,optional"`
	ReserveFraction   *float64  `hcl:"reserve_fraction,optional"`
}

type uncertaintyBlock struct {
	Iterations int          `hcl:"iterations,optional"`
	Confidence float64      `hcl:"confidence,optional"`
	Seed       int64        `hcl:"seed,optional"`
	Noise      []noiseBlock `hcl:"noise,block"`
}

type noiseBlock struct {
	Criterion    string   `hcl:"criterion,label"`
	StdDev       float64  `hcl:"stddev"`
	Distribution string   `hcl:"distribution,optional"`
	Min          *float64 `hcl:"min,optional"`
	Max          *float64 `hcl:"max,optional"`
}

type equityBlock struct {
	PerCapita       bool             `hcl:"per_capita,optional"`
	AtkinsonEpsilon float64          `hcl:"atkinson_epsilon,optional"`
	RatioTolerance  float64          `hcl:"ratio_tolerance,optional"`
	GroupRatios     []groupPairBlock `hcl:"group_ratio,block"`
}

type groupPairBlock struct {
	Numerator   string   `hcl:"numerator,label"`
	Denominator string   `hcl:"denominator,label"`
	Target      *float64 `hcl:"target,optional"`
}

// LoadProgram parses and validates a program file.
func LoadProgram(path string) (*Program, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errors.Wrap(errors.TypeConfig, "failed to parse program file", diags)
	}

	var raw programFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, errors.Wrap(errors.TypeConfig, "failed to decode program file", diags)
	}

	return buildProgram(&raw)
}

func buildProgram(raw *programFile) (*Program, error) {
	program := &Program{
		Constraints: types.Constraints{
			TotalAppropriation: decimal.NewFromFloat(raw.Funding.TotalAppropriation).Round(2),
			ReserveFraction:    raw.Funding.ReserveFraction,
			FloorFraction:      raw.Funding.FloorFraction,
			CapFraction:        raw.Funding.CapFraction,
			MaxIterations:      raw.Funding.MaxIterations,
		},
		Weights: types.WeightConfig{
			NeedShare: raw.Weights.NeedShare,
		},
	}

	for _, c := range raw.Weights.Criteria {
		polarity := types.PolarityDirect
		switch c.Polarity {
		case "", "direct":
		case "inverse":
			polarity = types.PolarityInverse
		default:
			return nil, errors.Configf("criterion %q has unknown polarity %q", c.Name, c.Polarity)
		}
		program.Weights.Criteria = append(program.Weights.Criteria, types.CriterionSpec{
			Name:     types.CriterionName(c.Name),
			Polarity: polarity,
			Class:    types.WeightClass(c.Class),
			Weight:   c.Weight,
		})
	}

	if err := program.Weights.Validate(); err != nil {
		return nil, err
	}
	// Feasibility depends on the region count, checked again per run;
	// range checks do not.
	if program.Constraints.ReserveFraction < 0 || program.Constraints.ReserveFraction >= 1 {
		return nil, errors.Configf("reserve fraction %.4f outside [0,1)", program.Constraints.ReserveFraction)
	}
	if !program.Constraints.TotalAppropriation.IsPositive() {
		return nil, errors.Config("total appropriation must be positive")
	}

	for _, sb := range raw.Scenarios {
		sc, err := buildScenario(sb)
		if err != nil {
			return nil, err
		}
		program.Scenarios = append(program.Scenarios, sc)
	}

	program.Uncertainty = UncertaintySettings{
		Iterations: uncertainty.DefaultIterations,
		Confidence: uncertainty.DefaultConfidence,
		Noise:      uncertainty.DefaultNoiseModel(),
	}
	if ub := raw.Uncertainty; ub != nil {
		if ub.Iterations > 0 {
			program.Uncertainty.Iterations = ub.Iterations
		}
		if ub.Confidence > 0 && ub.Confidence < 1 {
			program.Uncertainty.Confidence = ub.Confidence
		}
		if len(ub.Noise) > 0 {
			model := uncertainty.NoiseModel{
				Factors: make(map[types.CriterionName]uncertainty.Factor, len(ub.Noise)),
			}
			for _, nb := range ub.Noise {
				model.Factors[types.CriterionName(nb.Criterion)] = uncertainty.Factor{
					StdDev:       nb.StdDev,
					Distribution: uncertainty.Distribution(nb.Distribution),
					Min:          nb.Min,
					Max:          nb.Max,
				}
			}
			program.Uncertainty.Noise = model
		}
		if ub.Seed > 0 {
			program.Uncertainty.Noise.Seed = uint64(ub.Seed)
		}
	}

	if eb := raw.Equity; eb != nil {
		program.Equity = equity.Options{
			PerCapita:       eb.PerCapita,
			AtkinsonEpsilon: eb.AtkinsonEpsilon,
			RatioTolerance:  eb.RatioTolerance,
		}
		for _, gp := range eb.GroupRatios {
			program.Equity.GroupPairs = append(program.Equity.GroupPairs, [2]string{gp.Numerator, gp.Denominator})
			if gp.Target != nil {
				if program.Equity.RatioTargets == nil {
					program.Equity.RatioTargets = make(map[string]float64)
				}
				program.Equity.RatioTargets[gp.Numerator+"/"+gp.Denominator] = *gp.Target
			}
		}
	}

	return program, nil
}

func buildScenario(sb scenarioBlock) (types.Scenario, error) {
	sc := types.Scenario{
		Name:              sb.Name,
		FundingMultiplier: sb.FundingMultiplier,
		FloorOverride:     sb.FloorFraction,
		CapOverride:       sb.CapFraction,
		ReserveOverride:   sb.ReserveFraction,
	}

	multipliers, err := decodeWeightMap(sb.WeightMultipliers, sb.Name, "weight_multipliers")
	if err != nil {
		return types.Scenario{}, err
	}
	sc.WeightMultipliers = multipliers

	overrides, err := decodeWeightMap(sb.WeightOverrides, sb.Name, "weight_overrides")
	if err != nil {
		return types.Scenario{}, err
	}
	sc.WeightOverrides = overrides

	return sc, nil
}

func decodeWeightMap(val cty.Value, scenario, attr string) (map[types.CriterionName]float64, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, errors.Configf("scenario %q: %s must be a map of criterion to number", scenario, attr)
	}

	out := make(map[types.CriterionName]float64)
	for key, elem := range val.AsValueMap() {
		var f float64
		if err := gocty.FromCtyValue(elem, &f); err != nil {
			return nil, errors.Wrapf(errors.TypeConfig, err, "scenario %q: %s[%s] is not a number", scenario, attr, key)
		}
		out[types.CriterionName(key)] = f
	}
	return out, nil
}
