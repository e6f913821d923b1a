// Package cmd - scenarios command
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fundalloc/core/determinism"
	"fundalloc/core/engine"
	"fundalloc/core/scenario"
	"fundalloc/internal/logging"
)

var useCatalog bool

// scenariosCmd represents the scenarios command
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Compare allocation scenarios against the base run",
	Long: `Run every scenario declared in the program file against the same
region table and print total and per-region deltas relative to the
unmodified base allocation.

With --catalog the built-in policy scenario catalog (optimistic,
pessimistic, equity-focused, performance-driven and funding-level
variants) is run in addition to the configured scenarios.

Examples:
  fundalloc scenarios --regions regions.csv --program program.hcl
  fundalloc scenarios --regions regions.csv --program program.hcl --catalog`,
	RunE: runScenarios,
}

func init() {
	scenariosCmd.Flags().StringVarP(&regionsFile, "regions", "r", "", "region table CSV file")
	scenariosCmd.Flags().StringVarP(&programFile, "program", "p", "", "allocation program HCL file")
	scenariosCmd.Flags().BoolVar(&useCatalog, "catalog", false, "include the built-in scenario catalog")
}

func runScenarios(cmd *cobra.Command, args []string) error {
	in, program, err := loadInput(programFile, regionsFile)
	if err != nil {
		return err
	}

	scenarios := program.Scenarios
	if useCatalog || len(scenarios) == 0 {
		scenarios = append(scenarios, scenario.Catalog()...)
	}

	logging.Info("running scenario comparison")

	base, err := engine.Run(in)
	if err != nil {
		return err
	}

	results, err := scenario.RunAll(in, scenarios)
	if err != nil {
		return err
	}

	printScenarioTable(base, results)
	return nil
}

func printScenarioTable(base *engine.Result, results map[string]*engine.Result) {
	baseTotal := base.Allocation.Total()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tTOTAL\tDELTA\tMAX SHARE SHIFT")
	fmt.Fprintf(w, "(base)\t$%s\t-\t-\n", baseTotal.StringFixed(2))

	determinism.RangeMapSorted(results, func(name string, res *engine.Result) bool {
		total := res.Allocation.Total()
		delta := total.Sub(baseTotal)
		sign := "+"
		if delta.IsNegative() {
			sign = "-"
			delta = delta.Neg()
		}
		fmt.Fprintf(w, "%s\t$%s\t%s$%s\t%.4f\n",
			name, total.StringFixed(2), sign, delta.StringFixed(2),
			maxShareShift(base, res))
		return true
	})
	w.Flush()
}

// maxShareShift is the largest absolute per-region share change
// between the base run and a scenario run.
func maxShareShift(base, res *engine.Result) float64 {
	baseShare := make(map[string]float64, len(base.Lines))
	for _, line := range base.Lines {
		baseShare[line.RegionID] = line.Share
	}

	var max float64
	for _, line := range res.Lines {
		shift := line.Share - baseShare[line.RegionID]
		if shift < 0 {
			shift = -shift
		}
		if shift > max {
			max = shift
		}
	}
	return max
}
