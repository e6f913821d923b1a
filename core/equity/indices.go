// Package equity - Additional inequality indices
package equity

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// logFloor keeps the Atkinson geometric mean defined for zero entries.
const logFloor = 1e-10

// Theil computes the Theil inequality index: the mean of
// (x/mean) * ln(x/mean). Zero entries contribute nothing.
func Theil(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := stat.Mean(values, nil)
	if mean <= 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		if v <= 0 {
			continue
		}
		rel := v / mean
		sum += rel * math.Log(rel)
	}
	return sum / float64(len(values))
}

// Atkinson computes the Atkinson index with inequality-aversion
// parameter epsilon: 1 - (geometric mean / mean)^epsilon, clamped to
// be non-negative.
func Atkinson(values []float64, epsilon float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := stat.Mean(values, nil)
	if mean <= 0 {
		return 0
	}

	var logSum float64
	for _, v := range values {
		logSum += math.Log(v + logFloor)
	}
	geoMean := math.Exp(logSum / float64(len(values)))

	atkinson := 1 - math.Pow(geoMean/mean, epsilon)
	return math.Max(0, atkinson)
}

// Hoover computes the Hoover (Robin Hood) index: half the total
// absolute deviation between equal population shares and allocation
// shares. It is the fraction of the total that would need to move to
// reach perfect equality.
func Hoover(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	if total <= 0 {
		return 0
	}

	equal := 1.0 / float64(n)
	var sum float64
	for _, v := range values {
		sum += math.Abs(equal - v/total)
	}
	return 0.5 * sum
}
