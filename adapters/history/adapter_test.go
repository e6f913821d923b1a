// Package history - History table loading tests
package history

import (
	"strings"
	"testing"
)

// TestReadValidHistory verifies a well-formed series loads in file
// order
func TestReadValidHistory(t *testing.T) {
	csv := `year,households_served,allocation_amount
2021,1200,600000
2022,1350,680000
2023,1400,720000
`
	points, err := Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	if points[1].Year != 2022 || points[1].Households != 1350 || points[1].Amount != 680000 {
		t.Errorf("point = %+v, want {2022 1350 680000}", points[1])
	}
}

// TestReadDuplicateYear verifies a repeated year is rejected
func TestReadDuplicateYear(t *testing.T) {
	csv := `year,households_served,allocation_amount
2021,1200,600000
2021,1300,650000
`
	if _, err := Read(strings.NewReader(csv)); err == nil {
		t.Fatal("expected error for duplicate year")
	}
}

// TestReadMissingColumn verifies a missing required column is rejected
func TestReadMissingColumn(t *testing.T) {
	csv := `year,households_served
2021,1200
`
	if _, err := Read(strings.NewReader(csv)); err == nil {
		t.Fatal("expected error for missing allocation_amount column")
	}
}

// TestReadNegativeValue verifies negative households are rejected
func TestReadNegativeValue(t *testing.T) {
	csv := `year,households_served,allocation_amount
2021,-10,600000
`
	if _, err := Read(strings.NewReader(csv)); err == nil {
		t.Fatal("expected error for negative households_served")
	}
}
