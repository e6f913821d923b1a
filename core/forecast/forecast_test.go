// Package forecast - Demand projection tests
package forecast

import (
	"math"
	"testing"

	"fundalloc/internal/errors"
)

func linearHistory() []HistoryPoint {
	return []HistoryPoint{
		{Year: 2021, Households: 100, Amount: 50000},
		{Year: 2022, Households: 110, Amount: 55000},
		{Year: 2023, Households: 120, Amount: 60000},
	}
}

// TestDemandLinearExactFit verifies an exactly linear series projects
// along its own line
func TestDemandLinearExactFit(t *testing.T) {
	points, err := Demand(linearHistory(), 2, MethodLinear)
	if err != nil {
		t.Fatalf("Demand failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}

	if points[0].Year != 2024 || points[1].Year != 2025 {
		t.Errorf("years = %d, %d, want 2024, 2025", points[0].Year, points[1].Year)
	}
	if math.Abs(points[0].Households-130) > 1e-6 {
		t.Errorf("2024 households = %v, want 130", points[0].Households)
	}
	if math.Abs(points[1].Households-140) > 1e-6 {
		t.Errorf("2025 households = %v, want 140", points[1].Households)
	}
	if math.Abs(points[0].Amount-65000) > 1e-6 {
		t.Errorf("2024 amount = %v, want 65000", points[0].Amount)
	}
}

// TestDemandConfidenceBand verifies the band brackets the projection
// symmetrically
func TestDemandConfidenceBand(t *testing.T) {
	points, err := Demand(linearHistory(), 1, MethodLinear)
	if err != nil {
		t.Fatalf("Demand failed: %v", err)
	}

	p := points[0]
	if math.Abs(p.Lower-p.Households*0.85) > 1e-6 {
		t.Errorf("lower band = %v, want %v", p.Lower, p.Households*0.85)
	}
	if math.Abs(p.Upper-p.Households*1.15) > 1e-6 {
		t.Errorf("upper band = %v, want %v", p.Upper, p.Households*1.15)
	}
}

// TestDemandAvgBenefit verifies the per-household benefit division
func TestDemandAvgBenefit(t *testing.T) {
	points, err := Demand(linearHistory(), 1, MethodLinear)
	if err != nil {
		t.Fatalf("Demand failed: %v", err)
	}

	p := points[0]
	if math.Abs(p.AvgBenefit-p.Amount/p.Households) > 1e-9 {
		t.Errorf("avg benefit = %v, want %v", p.AvgBenefit, p.Amount/p.Households)
	}
}

// TestDemandSmoothingDeclines verifies a declining series keeps
// declining under exponential smoothing
func TestDemandSmoothingDeclines(t *testing.T) {
	history := []HistoryPoint{
		{Year: 2020, Households: 200, Amount: 100000},
		{Year: 2021, Households: 180, Amount: 90000},
		{Year: 2022, Households: 160, Amount: 80000},
		{Year: 2023, Households: 140, Amount: 70000},
	}

	points, err := Demand(history, 2, MethodExponentialSmoothing)
	if err != nil {
		t.Fatalf("Demand failed: %v", err)
	}
	if points[1].Households >= points[0].Households {
		t.Errorf("declining series projected upward: %v then %v",
			points[0].Households, points[1].Households)
	}
}

// TestDemandClampsAtZero verifies projections never go negative
func TestDemandClampsAtZero(t *testing.T) {
	history := []HistoryPoint{
		{Year: 2021, Households: 30, Amount: 15000},
		{Year: 2022, Households: 15, Amount: 7500},
		{Year: 2023, Households: 5, Amount: 2500},
	}

	points, err := Demand(history, 5, MethodLinear)
	if err != nil {
		t.Fatalf("Demand failed: %v", err)
	}
	for _, p := range points {
		if p.Households < 0 || p.Amount < 0 {
			t.Errorf("year %d projected negative: households %v, amount %v",
				p.Year, p.Households, p.Amount)
		}
	}
}

// TestDemandShortHistory verifies fewer than three points is rejected
func TestDemandShortHistory(t *testing.T) {
	history := linearHistory()[:2]

	_, err := Demand(history, 1, MethodLinear)
	if err == nil {
		t.Fatal("expected error for two-point history")
	}
	if !errors.IsType(err, errors.TypeInput) {
		t.Errorf("error type = %v, want INPUT_ERROR", err)
	}
}

// TestDemandUnknownMethod verifies an unknown method name is rejected
func TestDemandUnknownMethod(t *testing.T) {
	if _, err := Demand(linearHistory(), 1, Method("arima")); err == nil {
		t.Fatal("expected error for unknown method")
	}
}
