// Package cmd - sensitivity command
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fundalloc/core/scenario"
	"fundalloc/core/types"
)

var (
	sweepCriterion string
	sweepFunding   bool
	sweepValues    string
)

// sensitivityCmd represents the sensitivity command
var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity",
	Short: "Sweep one parameter and summarize the allocation response",
	Long: `Vary a single criterion (or the funding level) by a list of
multipliers and print summary statistics of the resulting allocation at
each sweep point.

Examples:
  fundalloc sensitivity --regions regions.csv --program program.hcl --criterion poverty_rate --values 0.8,0.9,1.0,1.1,1.2
  fundalloc sensitivity --regions regions.csv --program program.hcl --funding --values 0.75,1.0,1.25`,
	RunE: runSensitivity,
}

func init() {
	sensitivityCmd.Flags().StringVarP(&regionsFile, "regions", "r", "", "region table CSV file")
	sensitivityCmd.Flags().StringVarP(&programFile, "program", "p", "", "allocation program HCL file")
	sensitivityCmd.Flags().StringVarP(&sweepCriterion, "criterion", "c", "", "criterion to sweep")
	sensitivityCmd.Flags().BoolVar(&sweepFunding, "funding", false, "sweep the funding level instead of a criterion")
	sensitivityCmd.Flags().StringVar(&sweepValues, "values", "0.8,0.9,1.0,1.1,1.2", "comma-separated sweep multipliers")
}

func runSensitivity(cmd *cobra.Command, args []string) error {
	if !sweepFunding && sweepCriterion == "" {
		return fmt.Errorf("either --criterion or --funding is required")
	}

	in, _, err := loadInput(programFile, regionsFile)
	if err != nil {
		return err
	}

	values, err := parseSweepValues(sweepValues)
	if err != nil {
		return err
	}

	param := scenario.Parameter{
		Criterion: types.CriterionName(sweepCriterion),
		Funding:   sweepFunding,
	}
	points, err := scenario.Sensitivity(in, param, values)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tTOTAL\tMEAN\tSTDDEV\tCV\tMIN\tMAX")
	for _, p := range points {
		fmt.Fprintf(w, "%.3f\t$%.2f\t$%.2f\t$%.2f\t%.4f\t$%.2f\t$%.2f\n",
			p.Value, p.Summary.Total, p.Summary.Mean, p.Summary.StdDev,
			p.Summary.CoefficientOfVariation, p.Summary.Min, p.Summary.Max)
	}
	return w.Flush()
}

func parseSweepValues(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid sweep value %q: %w", part, err)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no sweep values given")
	}
	return values, nil
}
