// Package allocate - Final currency rounding
package allocate

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"fundalloc/core/types"
)

// RoundToCents converts final shares into currency amounts via
// largest-remainder rounding, so the amounts sum exactly to the
// distributable amount. Remainder ties break on ascending region ID.
func RoundToCents(shares map[string]float64, distributable decimal.Decimal) types.Allocation {
	ids := make([]string, 0, len(shares))
	for id := range shares {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	totalCents := distributable.Shift(2).IntPart()

	type entry struct {
		id        string
		cents     int64
		remainder float64
	}
	entries := make([]entry, len(ids))

	var assigned int64
	for i, id := range ids {
		raw := shares[id] * float64(totalCents)
		base := math.Floor(raw)
		entries[i] = entry{id: id, cents: int64(base), remainder: raw - base}
		assigned += int64(base)
	}

	leftover := totalCents - assigned
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].remainder != entries[j].remainder {
			return entries[i].remainder > entries[j].remainder
		}
		return entries[i].id < entries[j].id
	})
	for i := range entries {
		if leftover <= 0 {
			break
		}
		entries[i].cents++
		leftover--
	}

	amounts := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		amounts[e.id] = decimal.New(e.cents, -2)
	}

	return types.Allocation{
		Amounts:       amounts,
		Distributable: distributable,
	}
}
