// Package allocate converts composite scores into a funding split and
// enforces per-region floor/cap constraints on it.
package allocate

import (
	"math"
)

// shiftEpsilon keeps shifted score vectors strictly positive.
const shiftEpsilon = 1e-9

// ProportionalShares converts composite scores into fractions of the
// distributable amount, one per region, summing to 1. A score vector
// containing negatives is shifted by the most negative value plus a
// small epsilon so every region keeps a strictly positive weight. A
// vector with no score mass at all falls back to equal shares.
// Shares stay in full float64 precision; rounding to currency happens
// after constraint satisfaction.
func ProportionalShares(scores map[string]float64, ids []string) map[string]float64 {
	shares := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return shares
	}

	min := math.Inf(1)
	for _, id := range ids {
		if scores[id] < min {
			min = scores[id]
		}
	}

	shift := 0.0
	if min < 0 {
		shift = -min + shiftEpsilon
	}

	var total float64
	for _, id := range ids {
		total += scores[id] + shift
	}

	if total <= 0 {
		equal := 1.0 / float64(len(ids))
		for _, id := range ids {
			shares[id] = equal
		}
		return shares
	}

	for _, id := range ids {
		shares[id] = (scores[id] + shift) / total
	}
	return shares
}
