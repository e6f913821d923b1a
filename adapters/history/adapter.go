// Package history loads program-year history tables from CSV files
// for demand forecasting.
package history

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"fundalloc/core/forecast"
	"fundalloc/internal/errors"
	"fundalloc/internal/logging"
)

// Expected column names.
const (
	columnYear       = "year"
	columnHouseholds = "households_served"
	columnAmount     = "allocation_amount"
)

// LoadCSV reads a history table from a CSV file. The header must carry
// year, households_served and allocation_amount.
func LoadCSV(path string) ([]forecast.HistoryPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, "failed to open history table", err)
	}
	defer f.Close()

	points, err := Read(f)
	if err != nil {
		return nil, err
	}

	logging.Info("loaded history table",
		zap.String("path", path),
		zap.Int("years", len(points)))
	return points, nil
}

// Read parses a history table from a reader.
func Read(r io.Reader) ([]forecast.HistoryPoint, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, "failed to read history table header", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, col := range []string{columnYear, columnHouseholds, columnAmount} {
		if _, ok := cols[col]; !ok {
			return nil, errors.Inputf("history table missing required column %q", col)
		}
	}

	var points []forecast.HistoryPoint
	seen := make(map[int]bool)
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(errors.TypeInput, err, "failed to read history table line %d", line+1)
		}
		line++

		year, err := strconv.Atoi(strings.TrimSpace(record[cols[columnYear]]))
		if err != nil {
			return nil, errors.Inputf("line %d: invalid year %q", line, record[cols[columnYear]])
		}
		if seen[year] {
			return nil, errors.Inputf("line %d: duplicate year %d", line, year)
		}
		seen[year] = true

		households, err := strconv.ParseFloat(strings.TrimSpace(record[cols[columnHouseholds]]), 64)
		if err != nil || households < 0 {
			return nil, errors.Inputf("line %d: invalid households_served %q", line, record[cols[columnHouseholds]])
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(record[cols[columnAmount]]), 64)
		if err != nil || amount < 0 {
			return nil, errors.Inputf("line %d: invalid allocation_amount %q", line, record[cols[columnAmount]])
		}

		points = append(points, forecast.HistoryPoint{
			Year:       year,
			Households: households,
			Amount:     amount,
		})
	}

	if len(points) == 0 {
		return nil, errors.Input("history table contains no years")
	}
	return points, nil
}
