// Package regions loads region tables from CSV files and maps them to
// typed Region records. Missing or non-numeric values for required
// criteria are rejected here, at the loading boundary, before they can
// reach the scoring algorithm.
package regions

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"fundalloc/core/types"
	"fundalloc/internal/errors"
	"fundalloc/internal/logging"

	"go.uber.org/zap"
)

// Reserved column names recognized beyond criteria.
const (
	columnID         = "region_id"
	columnName       = "region_name"
	columnPopulation = "total_population"
	columnGroup      = "group"
)

// LoadCSV reads a region table from a CSV file. The header must carry
// region_id, region_name, total_population and one column per required
// criterion; an optional group column labels sub-groups for equity
// analysis. Any other numeric columns are loaded as extra criteria.
func LoadCSV(path string, required []types.CriterionSpec) ([]types.Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, "failed to open region table", err)
	}
	defer f.Close()

	regions, err := Read(f, required)
	if err != nil {
		return nil, err
	}

	logging.Info("loaded region table",
		zap.String("path", path),
		zap.Int("regions", len(regions)))
	return regions, nil
}

// Read parses a region table from a reader.
func Read(r io.Reader, required []types.CriterionSpec) ([]types.Region, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, "failed to read region table header", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}

	for _, col := range []string{columnID, columnName, columnPopulation} {
		if _, ok := cols[col]; !ok {
			return nil, errors.Inputf("region table missing required column %q", col)
		}
	}
	for _, spec := range required {
		if _, ok := cols[string(spec.Name)]; !ok {
			return nil, errors.Inputf("region table missing criterion column %q", spec.Name)
		}
	}

	var regions []types.Region
	seen := make(map[string]bool)
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(errors.TypeInput, err, "failed to read region table line %d", line+1)
		}
		line++

		region := types.Region{
			ID:       strings.TrimSpace(record[cols[columnID]]),
			Name:     strings.TrimSpace(record[cols[columnName]]),
			Criteria: make(map[types.CriterionName]float64),
		}
		if region.ID == "" {
			return nil, errors.Inputf("line %d: empty region_id", line)
		}
		if seen[region.ID] {
			return nil, errors.Inputf("line %d: duplicate region_id %q", line, region.ID)
		}
		seen[region.ID] = true

		pop, err := strconv.ParseInt(strings.TrimSpace(record[cols[columnPopulation]]), 10, 64)
		if err != nil || pop < 0 {
			return nil, errors.Inputf("line %d: region %s has invalid total_population %q",
				line, region.ID, record[cols[columnPopulation]])
		}
		region.Population = pop

		if idx, ok := cols[columnGroup]; ok && idx < len(record) {
			region.Group = strings.TrimSpace(record[idx])
		}

		for name, idx := range cols {
			switch name {
			case columnID, columnName, columnPopulation, columnGroup:
				continue
			}
			if idx >= len(record) {
				continue
			}
			raw := strings.TrimSpace(record[idx])
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				if isRequired(required, name) {
					return nil, errors.Inputf("line %d: region %s has non-numeric value %q for criterion %q",
						line, region.ID, raw, name)
				}
				continue
			}
			region.Criteria[types.CriterionName(name)] = v
		}

		regions = append(regions, region)
	}

	if len(regions) == 0 {
		return nil, errors.Input("region table contains no regions")
	}
	return regions, nil
}

func isRequired(required []types.CriterionSpec, name string) bool {
	for _, spec := range required {
		if string(spec.Name) == name {
			return true
		}
	}
	return false
}
