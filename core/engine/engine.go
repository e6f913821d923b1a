// Package engine provides the API-primary allocation pipeline.
// CLI, server and analysis layers are thin wrappers around this engine.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"fundalloc/core/allocate"
	"fundalloc/core/determinism"
	"fundalloc/core/normalize"
	"fundalloc/core/scoring"
	"fundalloc/core/types"
)

// Input is one complete pipeline input: the region table plus the
// validated configuration. The engine operates on copies and mutates
// nothing it is given, so concurrent runs are safe.
type Input struct {
	// Regions is the raw region table
	Regions []types.Region `json:"regions"`

	// Weights is the criterion weight configuration
	Weights types.WeightConfig `json:"weights"`

	// Constraints bound the distribution
	Constraints types.Constraints `json:"constraints"`
}

// Clone deep-copies the input
func (in Input) Clone() Input {
	return Input{
		Regions:     types.CloneRegions(in.Regions),
		Weights:     in.Weights.Clone(),
		Constraints: in.Constraints,
	}
}

// Validate checks the configuration invariants before a run.
// Configuration is normally validated once at load time; this re-check
// is cheap and keeps direct engine callers honest.
func (in Input) Validate() error {
	if err := in.Weights.Validate(); err != nil {
		return err
	}
	return in.Constraints.Validate(len(in.Regions))
}

// ResultLine is the per-region view of a finished allocation,
// sorted by ascending region ID.
type ResultLine struct {
	RegionID         string          `json:"region_id"`
	Name             string          `json:"name"`
	Amount           decimal.Decimal `json:"amount"`
	Share            float64         `json:"share"`
	PerCapita        decimal.Decimal `json:"per_capita"`
	CompositeScore   float64         `json:"composite_score"`
	NeedScore        float64         `json:"need_score"`
	PerformanceScore float64         `json:"performance_score"`
	Rank             int             `json:"rank"`
}

// Result is the complete output of one pipeline run. Immutable once
// returned.
type Result struct {
	// Allocation maps region ID to its funding amount
	Allocation types.Allocation `json:"allocation"`

	// Composites is the composite score per region
	Composites map[string]float64 `json:"composites"`

	// Lines is the per-region detail, ascending region ID
	Lines []ResultLine `json:"lines"`

	// Metadata carries degenerate-input flags and run bookkeeping
	Metadata types.RunMetadata `json:"metadata"`
}

// Run executes the full pipeline: normalization, composite scoring,
// proportional allocation and constraint satisfaction. It returns a
// typed error for invalid configuration or non-convergence; degenerate
// inputs are flagged in the result metadata, never silently dropped.
func Run(in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	table, err := normalize.Normalize(in.Regions, in.Weights.Criteria)
	if err != nil {
		return nil, err
	}

	composites, uniform := scoring.Composite(table, in.Weights)
	need, perf := scoring.NeedPerformance(table, in.Weights)

	shares := allocate.ProportionalShares(composites, table.RegionIDs)

	final, iterations, err := allocate.SatisfyShares(
		shares,
		in.Constraints.FloorFraction,
		in.Constraints.CapFraction,
		in.Constraints.IterationCap(),
	)
	if err != nil {
		return nil, err
	}

	allocation := allocate.RoundToCents(final, in.Constraints.Distributable())

	result := &Result{
		Allocation: allocation,
		Composites: composites,
		Metadata: types.RunMetadata{
			DegenerateCriteria: table.Degenerate,
			UniformComposite:   uniform,
			Iterations:         iterations,
			InputHash:          fingerprint(in).String(),
		},
	}
	result.Lines = buildLines(in.Regions, allocation, composites, need, perf, final)
	return result, nil
}

func buildLines(regions []types.Region, alloc types.Allocation, composites, need, perf, shares map[string]float64) []ResultLine {
	byID := make(map[string]types.Region, len(regions))
	for _, r := range regions {
		byID[r.ID] = r
	}

	lines := make([]ResultLine, 0, len(regions))
	determinism.RangeMapSorted(alloc.Amounts, func(id string, amount decimal.Decimal) bool {
		r := byID[id]
		line := ResultLine{
			RegionID:         id,
			Name:             r.Name,
			Amount:           amount,
			Share:            shares[id],
			CompositeScore:   composites[id],
			NeedScore:        need[id],
			PerformanceScore: perf[id],
		}
		if r.Population > 0 {
			line.PerCapita = amount.Div(decimal.NewFromInt(r.Population)).Round(2)
		}
		lines = append(lines, line)
		return true
	})

	// Rank by amount, largest first; ties keep ascending ID order.
	ranked := make([]int, len(lines))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return lines[ranked[a]].Amount.GreaterThan(lines[ranked[b]].Amount)
	})
	for pos, idx := range ranked {
		lines[idx].Rank = pos + 1
	}
	return lines
}

// fingerprint hashes the (region table, configuration) pair so callers
// can detect identical runs.
func fingerprint(in Input) determinism.Fingerprint {
	parts := make([]string, 0, len(in.Regions)+2)

	regions := append([]types.Region(nil), in.Regions...)
	sort.Slice(regions, func(i, j int) bool { return regions[i].ID < regions[j].ID })
	for _, r := range regions {
		var b strings.Builder
		fmt.Fprintf(&b, "%s|%s|%d|%s", r.ID, r.Name, r.Population, r.Group)
		determinism.RangeMapSorted(r.Criteria, func(name types.CriterionName, v float64) bool {
			fmt.Fprintf(&b, "|%s=%g", name, v)
			return true
		})
		parts = append(parts, b.String())
	}

	var cfg strings.Builder
	fmt.Fprintf(&cfg, "need=%g", in.Weights.NeedShare)
	for _, c := range in.Weights.Criteria {
		fmt.Fprintf(&cfg, "|%s:%d:%s:%g", c.Name, c.Polarity, c.Class, c.Weight)
	}
	parts = append(parts, cfg.String())
	parts = append(parts, fmt.Sprintf("total=%s|reserve=%g|floor=%g|cap=%g",
		in.Constraints.TotalAppropriation, in.Constraints.ReserveFraction,
		in.Constraints.FloorFraction, in.Constraints.CapFraction))

	return determinism.NewFingerprint(parts...)
}
