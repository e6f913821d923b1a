// Package allocate - Iterative water-filling constraint satisfaction
package allocate

import (
	"math"
	"sort"

	"fundalloc/internal/errors"
)

// convergenceTolerance is the residual share below which the
// redistribution loop is considered converged.
const convergenceTolerance = 1e-9

// SatisfyShares adjusts proportional shares so every region lies within
// [floor, cap], conserving the total. Water-filling: clamp, then
// redistribute the net clamping difference among regions not at a
// boundary, weighted by their original pre-clamp shares, until a fixed
// point or the iteration cap. When every region sits on a boundary the
// residual goes instead to the regions able to move in its direction:
// floor-pinned regions may lift off to absorb a positive residual,
// cap-pinned regions may drop to absorb a negative one. Regions are
// always visited in ascending ID order so cent-level results are
// reproducible.
//
// Returns the adjusted shares and the iteration count. Fails closed
// with a CONVERGENCE_ERROR when the iteration budget is exhausted; a
// constraint-violating result is never returned.
func SatisfyShares(initial map[string]float64, floor, cap float64, maxIter int) (map[string]float64, int, error) {
	ids := make([]string, 0, len(initial))
	for id := range initial {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	n := float64(len(ids))
	if floor*n > 1.0+convergenceTolerance || cap*n < 1.0-convergenceTolerance {
		return nil, 0, errors.Configf("infeasible constraints: floor*%d=%.4f, cap*%d=%.4f must bracket 1.0",
			len(ids), floor*n, len(ids), cap*n)
	}

	cur := make(map[string]float64, len(ids))
	for _, id := range ids {
		cur[id] = initial[id]
	}

	for iter := 1; iter <= maxIter; iter++ {
		for _, id := range ids {
			if cur[id] < floor {
				cur[id] = floor
			} else if cur[id] > cap {
				cur[id] = cap
			}
		}

		var sum float64
		for _, id := range ids {
			sum += cur[id]
		}
		net := 1.0 - sum
		if math.Abs(net) <= convergenceTolerance {
			return cur, iter, nil
		}

		// Interior regions absorb the residual, weighted by their
		// original relative shares. With every region on a boundary,
		// fall back to the regions with headroom in the residual's
		// direction: off the floor for a surplus, off the cap for a
		// deficit. Feasible bounds leave that set non-empty whenever
		// residual remains.
		var movable []string
		var weight float64
		for _, id := range ids {
			if cur[id] > floor+convergenceTolerance && cur[id] < cap-convergenceTolerance {
				movable = append(movable, id)
				weight += initial[id]
			}
		}
		if len(movable) == 0 {
			for _, id := range ids {
				if (net > 0 && cur[id] < cap-convergenceTolerance) ||
					(net < 0 && cur[id] > floor+convergenceTolerance) {
					movable = append(movable, id)
					weight += initial[id]
				}
			}
		}
		if len(movable) == 0 {
			return nil, iter, errors.Convergence("no region can absorb the remaining residual").
				WithContext("residual", net)
		}

		if weight <= 0 {
			equal := net / float64(len(movable))
			for _, id := range movable {
				cur[id] += equal
			}
		} else {
			for _, id := range movable {
				cur[id] += net * initial[id] / weight
			}
		}
		// The next pass re-clamps anything pushed across a boundary;
		// convergence is the pass where nothing crosses.
	}

	return nil, maxIter, errors.Convergence("constraint redistribution did not converge within the iteration budget").
		WithContext("max_iterations", maxIter)
}
