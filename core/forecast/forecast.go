// Package forecast projects future assistance demand from historical
// yearly allocation series.
package forecast

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"fundalloc/internal/errors"
)

// Method selects the forecasting model.
type Method string

const (
	// MethodLinear fits an ordinary least squares trend
	MethodLinear Method = "linear"

	// MethodExponentialSmoothing extrapolates a smoothed trend
	MethodExponentialSmoothing Method = "exponential_smoothing"
)

// smoothingAlpha is the exponential smoothing parameter.
const smoothingAlpha = 0.3

// bandFraction sets the width of the naive confidence band.
const bandFraction = 0.15

// HistoryPoint is one observed program year.
type HistoryPoint struct {
	Year       int     `json:"year"`
	Households float64 `json:"households_served"`
	Amount     float64 `json:"allocation_amount"`
}

// Point is one forecasted program year with a confidence band on the
// household projection.
type Point struct {
	Year       int     `json:"year"`
	Households float64 `json:"forecasted_households"`
	Amount     float64 `json:"forecasted_allocation"`
	AvgBenefit float64 `json:"forecasted_avg_benefit"`
	Lower      float64 `json:"confidence_interval_lower"`
	Upper      float64 `json:"confidence_interval_upper"`
}

// Demand forecasts the requested number of future years from the
// historical series. History is sorted by year internally; the input
// slice is not modified.
func Demand(history []HistoryPoint, periods int, method Method) ([]Point, error) {
	if len(history) < 3 {
		return nil, errors.Inputf("forecast needs at least 3 history points, got %d", len(history))
	}
	if periods <= 0 {
		return nil, errors.Inputf("forecast periods must be positive, got %d", periods)
	}

	sorted := append([]HistoryPoint(nil), history...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })
	lastYear := sorted[len(sorted)-1].Year

	var project func(year int) (households, amount float64)
	switch method {
	case MethodLinear, "":
		years := make([]float64, len(sorted))
		households := make([]float64, len(sorted))
		amounts := make([]float64, len(sorted))
		for i, h := range sorted {
			years[i] = float64(h.Year)
			households[i] = h.Households
			amounts[i] = h.Amount
		}
		hAlpha, hBeta := stat.LinearRegression(years, households, nil, false)
		aAlpha, aBeta := stat.LinearRegression(years, amounts, nil, false)
		project = func(year int) (float64, float64) {
			y := float64(year)
			return hAlpha + hBeta*y, aAlpha + aBeta*y
		}

	case MethodExponentialSmoothing:
		hs := sorted[0].Households
		as := sorted[0].Amount
		hPrev2, aPrev2 := hs, as
		hPrev1, aPrev1 := hs, as
		for i := 1; i < len(sorted); i++ {
			hPrev2, aPrev2 = hPrev1, aPrev1
			hPrev1, aPrev1 = hs, as
			hs = smoothingAlpha*sorted[i].Households + (1-smoothingAlpha)*hs
			as = smoothingAlpha*sorted[i].Amount + (1-smoothingAlpha)*as
		}
		hTrend := (hs - hPrev2) / 2
		aTrend := (as - aPrev2) / 2
		project = func(year int) (float64, float64) {
			steps := float64(year - lastYear)
			return hs + hTrend*steps, as + aTrend*steps
		}

	default:
		return nil, errors.Inputf("unknown forecast method %q", method)
	}

	points := make([]Point, 0, periods)
	for year := lastYear + 1; year <= lastYear+periods; year++ {
		households, amount := project(year)
		households = math.Max(0, households)
		amount = math.Max(0, amount)

		p := Point{
			Year:       year,
			Households: households,
			Amount:     amount,
			Lower:      households * (1 - bandFraction),
			Upper:      households * (1 + bandFraction),
		}
		if households > 0 {
			p.AvgBenefit = amount / households
		}
		points = append(points, p)
	}
	return points, nil
}
