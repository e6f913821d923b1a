// Package engine - Full pipeline tests
package engine

import (
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"fundalloc/core/types"
	"fundalloc/internal/errors"
)

func testInput() Input {
	return Input{
		Regions: []types.Region{
			{ID: "north", Name: "North", Population: 120000, Group: "urban", Criteria: map[types.CriterionName]float64{
				types.CriterionPovertyRate:     0.22,
				types.CriterionMedianIncome:    38000,
				types.CriterionComplianceScore: 0.91,
			}},
			{ID: "south", Name: "South", Population: 80000, Group: "rural", Criteria: map[types.CriterionName]float64{
				types.CriterionPovertyRate:     0.31,
				types.CriterionMedianIncome:    29000,
				types.CriterionComplianceScore: 0.78,
			}},
			{ID: "east", Name: "East", Population: 200000, Group: "urban", Criteria: map[types.CriterionName]float64{
				types.CriterionPovertyRate:     0.12,
				types.CriterionMedianIncome:    61000,
				types.CriterionComplianceScore: 0.95,
			}},
			{ID: "west", Name: "West", Population: 50000, Group: "rural", Criteria: map[types.CriterionName]float64{
				types.CriterionPovertyRate:     0.27,
				types.CriterionMedianIncome:    33000,
				types.CriterionComplianceScore: 0.83,
			}},
		},
		Weights: types.WeightConfig{
			NeedShare: 0.6,
			Criteria: []types.CriterionSpec{
				{Name: types.CriterionPovertyRate, Polarity: types.PolarityDirect, Class: types.ClassNeed, Weight: 0.35},
				{Name: types.CriterionMedianIncome, Polarity: types.PolarityInverse, Class: types.ClassNeed, Weight: 0.25},
				{Name: types.CriterionComplianceScore, Polarity: types.PolarityDirect, Class: types.ClassPerformance, Weight: 0.4},
			},
		},
		Constraints: types.Constraints{
			TotalAppropriation: decimal.RequireFromString("1000000.00"),
			ReserveFraction:    0.1,
			FloorFraction:      0.05,
			CapFraction:        0.6,
		},
	}
}

// TestRunConservation verifies the amounts sum exactly to the
// distributable pool after reserve withholding
func TestRunConservation(t *testing.T) {
	result, err := Run(testInput())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := decimal.RequireFromString("900000.00")
	if !result.Allocation.Total().Equal(want) {
		t.Errorf("allocated total = %s, want %s", result.Allocation.Total(), want)
	}
	if !result.Allocation.Distributable.Equal(want) {
		t.Errorf("distributable = %s, want %s", result.Allocation.Distributable, want)
	}
}

// TestRunDeterminism verifies identical inputs produce bit-identical
// amounts and the same input hash
func TestRunDeterminism(t *testing.T) {
	first, err := Run(testInput())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := Run(testInput())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if first.Metadata.InputHash != second.Metadata.InputHash {
		t.Errorf("input hashes differ: %s vs %s",
			first.Metadata.InputHash, second.Metadata.InputHash)
	}
	for id, amt := range first.Allocation.Amounts {
		if !amt.Equal(second.Allocation.Amounts[id]) {
			t.Errorf("amount %s differs: %s vs %s", id, amt, second.Allocation.Amounts[id])
		}
	}
}

// TestRunBounds verifies every region's share lies within [floor, cap]
func TestRunBounds(t *testing.T) {
	in := testInput()
	result, err := Run(in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, line := range result.Lines {
		if line.Share < in.Constraints.FloorFraction-1e-6 {
			t.Errorf("region %s share %v below floor", line.RegionID, line.Share)
		}
		if line.Share > in.Constraints.CapFraction+1e-6 {
			t.Errorf("region %s share %v above cap", line.RegionID, line.Share)
		}
	}
}

// TestRunNeedOrdering verifies the neediest region outranks the least
// needy one under need-heavy weights
func TestRunNeedOrdering(t *testing.T) {
	result, err := Run(testInput())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	byID := make(map[string]ResultLine)
	for _, line := range result.Lines {
		byID[line.RegionID] = line
	}

	// South has the highest poverty and lowest income; East the
	// lowest poverty and highest income.
	if !byID["south"].Amount.GreaterThan(byID["east"].Amount) {
		t.Errorf("south (%s) should receive more than east (%s)",
			byID["south"].Amount, byID["east"].Amount)
	}
}

// TestRunRanks verifies ranks are a permutation of 1..n ordered by
// descending amount
func TestRunRanks(t *testing.T) {
	result, err := Run(testInput())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	seen := make(map[int]string)
	for _, line := range result.Lines {
		if prev, dup := seen[line.Rank]; dup {
			t.Errorf("rank %d assigned to both %s and %s", line.Rank, prev, line.RegionID)
		}
		seen[line.Rank] = line.RegionID
	}
	for r := 1; r <= len(result.Lines); r++ {
		if _, ok := seen[r]; !ok {
			t.Errorf("rank %d missing", r)
		}
	}
}

// TestRunDegenerateCriterion verifies a constant criterion is flagged
// in the metadata rather than failing the run
func TestRunDegenerateCriterion(t *testing.T) {
	in := testInput()
	for i := range in.Regions {
		in.Regions[i].Criteria[types.CriterionPovertyRate] = 0.2
	}

	result, err := Run(in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Metadata.DegenerateCriteria) != 1 ||
		result.Metadata.DegenerateCriteria[0] != types.CriterionPovertyRate {
		t.Errorf("degenerate criteria = %v, want [poverty_rate]", result.Metadata.DegenerateCriteria)
	}
}

// TestRunUniformComposite verifies identical regions yield equal shares
// and the uniform flag
func TestRunUniformComposite(t *testing.T) {
	in := testInput()
	for i := range in.Regions {
		in.Regions[i].Criteria = map[types.CriterionName]float64{
			types.CriterionPovertyRate:     0.2,
			types.CriterionMedianIncome:    40000,
			types.CriterionComplianceScore: 0.9,
		}
	}

	result, err := Run(in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Metadata.UniformComposite {
		t.Error("UniformComposite = false for identical regions")
	}

	equal := 1.0 / float64(len(in.Regions))
	for _, line := range result.Lines {
		if math.Abs(line.Share-equal) > 1e-6 {
			t.Errorf("region %s share %v, want %v", line.RegionID, line.Share, equal)
		}
	}
}

// TestRunInvalidWeights verifies configuration validation runs before
// the pipeline
func TestRunInvalidWeights(t *testing.T) {
	in := testInput()
	in.Weights.Criteria[0].Weight = 0.9 // weights no longer sum to 1

	_, err := Run(in)
	if err == nil {
		t.Fatal("expected error for invalid weight sum")
	}
	if !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("error type = %v, want CONFIG_ERROR", err)
	}
}

// TestRunInfeasibleConstraints verifies floor*n > 1 fails the run
func TestRunInfeasibleConstraints(t *testing.T) {
	in := testInput()
	in.Constraints.FloorFraction = 0.3 // 4 regions, 0.3*4 = 1.2

	_, err := Run(in)
	if err == nil {
		t.Fatal("expected error for infeasible floor")
	}
	if !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("error type = %v, want CONFIG_ERROR", err)
	}
}

// TestRunDoesNotMutateInput verifies the engine leaves its input alone
func TestRunDoesNotMutateInput(t *testing.T) {
	in := testInput()
	before := in.Clone()

	if _, err := Run(in); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i, r := range in.Regions {
		for name, v := range before.Regions[i].Criteria {
			if r.Criteria[name] != v {
				t.Errorf("region %s criterion %s mutated: %v -> %v",
					r.ID, name, v, r.Criteria[name])
			}
		}
	}
	if in.Weights.Criteria[0].Weight != before.Weights.Criteria[0].Weight {
		t.Error("weight configuration mutated")
	}
}

// TestRunSkewedPanelConverges runs a wide panel where one region's
// need dwarfs the rest, pinning every region at a boundary on the
// first constraint pass; the run must still produce a conserving,
// in-bounds allocation
func TestRunSkewedPanelConverges(t *testing.T) {
	regions := []types.Region{
		{ID: "r01", Name: "R01", Population: 50000, Criteria: map[types.CriterionName]float64{
			types.CriterionPovertyRate: 0.90,
		}},
	}
	for i := 2; i <= 12; i++ {
		regions = append(regions, types.Region{
			ID:         fmt.Sprintf("r%02d", i),
			Name:       fmt.Sprintf("R%02d", i),
			Population: 50000,
			Criteria: map[types.CriterionName]float64{
				types.CriterionPovertyRate: 0.05,
			},
		})
	}

	in := Input{
		Regions: regions,
		Weights: types.WeightConfig{
			NeedShare: 1.0,
			Criteria: []types.CriterionSpec{
				{Name: types.CriterionPovertyRate, Polarity: types.PolarityDirect, Class: types.ClassNeed, Weight: 1.0},
			},
		},
		Constraints: types.Constraints{
			TotalAppropriation: decimal.RequireFromString("1000000.00"),
			FloorFraction:      0.04,
			CapFraction:        0.22,
		},
	}

	result, err := Run(in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Allocation.Total().Equal(in.Constraints.TotalAppropriation) {
		t.Errorf("allocated total = %s, want %s", result.Allocation.Total(), in.Constraints.TotalAppropriation)
	}

	floorAmt := 1000000.00 * 0.04
	capAmt := 1000000.00 * 0.22
	for id, amount := range result.Allocation.Amounts {
		v, _ := amount.Float64()
		if v < floorAmt-0.01 || v > capAmt+0.01 {
			t.Errorf("amount %s = %v outside [%v, %v]", id, v, floorAmt, capAmt)
		}
	}
}
