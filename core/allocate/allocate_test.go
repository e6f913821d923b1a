// Package allocate - Proportional split and constraint satisfaction tests
package allocate

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"fundalloc/internal/errors"
)

const tol = 1e-9

// TestProportionalSharesBasic verifies shares follow positive scores
func TestProportionalSharesBasic(t *testing.T) {
	scores := map[string]float64{"a": 3, "b": 1}
	shares := ProportionalShares(scores, []string{"a", "b"})

	if math.Abs(shares["a"]-0.75) > tol {
		t.Errorf("share a = %v, want 0.75", shares["a"])
	}
	if math.Abs(shares["b"]-0.25) > tol {
		t.Errorf("share b = %v, want 0.25", shares["b"])
	}
}

// TestProportionalSharesNegativeScores verifies the shift keeps every
// region strictly positive and the shares summing to 1
func TestProportionalSharesNegativeScores(t *testing.T) {
	scores := map[string]float64{"a": -2, "b": 0, "c": 2}
	shares := ProportionalShares(scores, []string{"a", "b", "c"})

	var sum float64
	for id, s := range shares {
		if s <= 0 {
			t.Errorf("share %s = %v, want > 0", id, s)
		}
		sum += s
	}
	if math.Abs(sum-1.0) > tol {
		t.Errorf("shares sum to %v, want 1.0", sum)
	}
	if !(shares["c"] > shares["b"] && shares["b"] > shares["a"]) {
		t.Errorf("share ordering broken: %v", shares)
	}
}

// TestProportionalSharesMonotonic verifies raising one region's score
// never decreases its share
func TestProportionalSharesMonotonic(t *testing.T) {
	cases := []struct {
		name   string
		scores map[string]float64
		raised float64
	}{
		{"positive scores", map[string]float64{"a": 1.0, "b": 2.0, "c": 3.0}, 1.5},
		{"raised past a sibling", map[string]float64{"a": 1.0, "b": 2.0, "c": 3.0}, 2.5},
		{"negative sibling", map[string]float64{"a": 1.0, "b": -1.0, "c": 2.0}, 2.0},
	}
	ids := []string{"a", "b", "c"}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := ProportionalShares(tc.scores, ids)["a"]

			raised := make(map[string]float64, len(tc.scores))
			for id, s := range tc.scores {
				raised[id] = s
			}
			raised["a"] = tc.raised

			after := ProportionalShares(raised, ids)["a"]
			if after < before-tol {
				t.Errorf("share a fell from %v to %v after score rose %v -> %v",
					before, after, tc.scores["a"], tc.raised)
			}
		})
	}
}

// TestProportionalSharesAllZero verifies the equal-shares fallback
func TestProportionalSharesAllZero(t *testing.T) {
	scores := map[string]float64{"a": 0, "b": 0, "c": 0, "d": 0}
	shares := ProportionalShares(scores, []string{"a", "b", "c", "d"})

	for id, s := range shares {
		if math.Abs(s-0.25) > tol {
			t.Errorf("share %s = %v, want 0.25", id, s)
		}
	}
}

// TestSatisfySharesWorkedExample reproduces the canonical clamp case:
// raw shares 600/900, 250/900, 50/900 under floor 0.1 and cap 0.6
// settle at 0.6, 0.3, 0.1
func TestSatisfySharesWorkedExample(t *testing.T) {
	initial := map[string]float64{
		"a": 600.0 / 900.0,
		"b": 250.0 / 900.0,
		"c": 50.0 / 900.0,
	}

	final, iterations, err := SatisfyShares(initial, 0.1, 0.6, 100)
	if err != nil {
		t.Fatalf("SatisfyShares failed: %v", err)
	}
	if iterations < 1 {
		t.Errorf("iterations = %d, want >= 1", iterations)
	}

	want := map[string]float64{"a": 0.6, "b": 0.3, "c": 0.1}
	for id, w := range want {
		if math.Abs(final[id]-w) > 1e-6 {
			t.Errorf("final[%s] = %v, want %v", id, final[id], w)
		}
	}
}

// TestSatisfySharesConservation verifies the adjusted shares always sum
// to 1 and stay within bounds
func TestSatisfySharesConservation(t *testing.T) {
	cases := []struct {
		name       string
		initial    map[string]float64
		floor, cap float64
	}{
		{"no clamping needed", map[string]float64{"a": 0.5, "b": 0.3, "c": 0.2}, 0.05, 0.9},
		{"floor binds", map[string]float64{"a": 0.9, "b": 0.08, "c": 0.02}, 0.05, 0.85},
		{"cap binds", map[string]float64{"a": 0.75, "b": 0.15, "c": 0.1}, 0.02, 0.5},
		{"both bind", map[string]float64{"a": 0.8, "b": 0.17, "c": 0.03}, 0.1, 0.55},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			final, _, err := SatisfyShares(tc.initial, tc.floor, tc.cap, 100)
			if err != nil {
				t.Fatalf("SatisfyShares failed: %v", err)
			}

			var sum float64
			for id, s := range final {
				if s < tc.floor-1e-6 || s > tc.cap+1e-6 {
					t.Errorf("final[%s] = %v outside [%v, %v]", id, s, tc.floor, tc.cap)
				}
				sum += s
			}
			if math.Abs(sum-1.0) > 1e-6 {
				t.Errorf("final shares sum to %v, want 1.0", sum)
			}
		})
	}
}

// TestSatisfySharesInfeasibleFloor verifies floor*n > 1 is rejected as
// a configuration error before any redistribution
func TestSatisfySharesInfeasibleFloor(t *testing.T) {
	initial := map[string]float64{"a": 0.4, "b": 0.3, "c": 0.3}

	_, _, err := SatisfyShares(initial, 0.5, 0.9, 100)
	if err == nil {
		t.Fatal("expected error for floor*3 = 1.5 > 1")
	}
	if !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("error type = %v, want CONFIG_ERROR", err)
	}
}

// TestSatisfySharesInfeasibleCap verifies cap*n < 1 is rejected
func TestSatisfySharesInfeasibleCap(t *testing.T) {
	initial := map[string]float64{"a": 0.5, "b": 0.5}

	_, _, err := SatisfyShares(initial, 0.0, 0.3, 100)
	if err == nil {
		t.Fatal("expected error for cap*2 = 0.6 < 1")
	}
	if !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("error type = %v, want CONFIG_ERROR", err)
	}
}

// TestSatisfySharesNoInterior verifies floor-pinned regions lift off
// to absorb a surplus when every region sits on a boundary
func TestSatisfySharesNoInterior(t *testing.T) {
	// Feasible bounds (0.6 <= 1 <= 1.2) but the initial skew pins all
	// three regions: one at the cap, two at the floor, summing to 0.8.
	// The 0.2 surplus splits between b and c off their floors.
	initial := map[string]float64{"a": 0.9, "b": 0.05, "c": 0.05}

	result, _, err := SatisfyShares(initial, 0.2, 0.4, 100)
	if err != nil {
		t.Fatalf("SatisfyShares: %v", err)
	}

	want := map[string]float64{"a": 0.4, "b": 0.3, "c": 0.3}
	for id, w := range want {
		if math.Abs(result[id]-w) > 1e-9 {
			t.Errorf("share %s = %v, want %v", id, result[id], w)
		}
	}
}

// TestSatisfySharesAllPinnedSkewed exercises a wide panel where one
// dominant region pins at the cap and every other region pins at the
// floor on the first pass
func TestSatisfySharesAllPinnedSkewed(t *testing.T) {
	initial := map[string]float64{"r01": 0.89}
	ids := []string{"r02", "r03", "r04", "r05", "r06", "r07", "r08", "r09", "r10", "r11", "r12"}
	for _, id := range ids {
		initial[id] = 0.01
	}

	// Feasible: 0.04*12 = 0.48 <= 1 <= 0.22*12 = 2.64.
	result, _, err := SatisfyShares(initial, 0.04, 0.22, 100)
	if err != nil {
		t.Fatalf("SatisfyShares: %v", err)
	}

	var sum float64
	for id, s := range result {
		sum += s
		if s < 0.04-1e-9 || s > 0.22+1e-9 {
			t.Errorf("share %s = %v outside [0.04, 0.22]", id, s)
		}
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("shares sum to %v, want 1.0", sum)
	}
	if math.Abs(result["r01"]-0.22) > 1e-9 {
		t.Errorf("dominant share = %v, want cap 0.22", result["r01"])
	}

	// The 0.34 surplus splits evenly across the eleven equal regions.
	want := 0.04 + 0.34/11
	for _, id := range ids {
		if math.Abs(result[id]-want) > 1e-9 {
			t.Errorf("share %s = %v, want %v", id, result[id], want)
		}
	}
}

// TestSatisfySharesAllPinnedDeficit verifies cap-pinned regions drop
// to absorb a negative residual
func TestSatisfySharesAllPinnedDeficit(t *testing.T) {
	// Clamping yields {0.4, 0.4, 0.3}, a 0.1 deficit; a and b come
	// down off the cap while c stays on its floor.
	initial := map[string]float64{"a": 0.5, "b": 0.45, "c": 0.05}

	result, _, err := SatisfyShares(initial, 0.3, 0.4, 100)
	if err != nil {
		t.Fatalf("SatisfyShares: %v", err)
	}

	var sum float64
	for id, s := range result {
		sum += s
		if s < 0.3-1e-9 || s > 0.4+1e-9 {
			t.Errorf("share %s = %v outside [0.3, 0.4]", id, s)
		}
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("shares sum to %v, want 1.0", sum)
	}
	if math.Abs(result["c"]-0.3) > 1e-9 {
		t.Errorf("share c = %v, want floor 0.3", result["c"])
	}
}

// TestRoundToCentsExact verifies largest-remainder rounding conserves
// the distributable amount to the cent
func TestRoundToCentsExact(t *testing.T) {
	shares := map[string]float64{"a": 1.0 / 3.0, "b": 1.0 / 3.0, "c": 1.0 / 3.0}
	distributable := decimal.RequireFromString("100.00")

	alloc := RoundToCents(shares, distributable)

	if !alloc.Total().Equal(distributable) {
		t.Errorf("total = %s, want %s", alloc.Total(), distributable)
	}
	// Remainders tie; the extra cent goes to the lowest region ID.
	if got := alloc.Amounts["a"].StringFixed(2); got != "33.34" {
		t.Errorf("amount a = %s, want 33.34", got)
	}
	if got := alloc.Amounts["b"].StringFixed(2); got != "33.33" {
		t.Errorf("amount b = %s, want 33.33", got)
	}
	if got := alloc.Amounts["c"].StringFixed(2); got != "33.33" {
		t.Errorf("amount c = %s, want 33.33", got)
	}
}

// TestRoundToCentsWorkedExample checks the cent amounts of the clamp
// example against a 900.00 pool
func TestRoundToCentsWorkedExample(t *testing.T) {
	shares := map[string]float64{"a": 0.6, "b": 0.3, "c": 0.1}
	alloc := RoundToCents(shares, decimal.RequireFromString("900.00"))

	want := map[string]string{"a": "540.00", "b": "270.00", "c": "90.00"}
	for id, w := range want {
		if got := alloc.Amounts[id].StringFixed(2); got != w {
			t.Errorf("amount %s = %s, want %s", id, got, w)
		}
	}
}
