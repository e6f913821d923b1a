// Package cmd - equity command
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"fundalloc/core/determinism"
	"fundalloc/core/engine"
	"fundalloc/core/equity"
	"fundalloc/core/types"
)

var perCapita bool

// equityCmd represents the equity command
var equityCmd = &cobra.Command{
	Use:   "equity",
	Short: "Analyze the equity of an allocation",
	Long: `Run the allocation and report distribution inequality metrics:
Gini coefficient, coefficient of variation, Theil, Atkinson and Hoover
indices, population correlation and configured group ratios.

Examples:
  fundalloc equity --regions regions.csv --program program.hcl
  fundalloc equity --regions regions.csv --program program.hcl --per-capita`,
	RunE: runEquity,
}

func init() {
	equityCmd.Flags().StringVarP(&regionsFile, "regions", "r", "", "region table CSV file")
	equityCmd.Flags().StringVarP(&programFile, "program", "p", "", "allocation program HCL file")
	equityCmd.Flags().BoolVar(&perCapita, "per-capita", false, "analyze per-capita amounts")
}

func runEquity(cmd *cobra.Command, args []string) error {
	in, program, err := loadInput(programFile, regionsFile)
	if err != nil {
		return err
	}

	result, err := engine.Run(in)
	if err != nil {
		return err
	}

	opts := program.Equity
	if perCapita {
		opts.PerCapita = true
	}
	report := equity.Analyze(result.Allocation, in.Regions, opts)

	basis := "absolute amounts"
	if report.PerCapita {
		basis = "per-capita amounts"
	}
	fmt.Printf("Equity analysis (%s)\n", basis)
	fmt.Printf("  Gini coefficient:         %.4f\n", report.Gini)
	fmt.Printf("  Coefficient of variation: %.4f\n", report.CoefficientOfVariation)
	fmt.Printf("  Theil index:              %.4f\n", report.Theil)
	fmt.Printf("  Atkinson index:           %.4f\n", report.Atkinson)
	fmt.Printf("  Hoover index:             %.4f\n", report.Hoover)
	fmt.Printf("  Population correlation:   %.4f\n", report.PopulationCorrelation)
	determinism.RangeMapSorted(report.GroupRatios, func(pair string, ratio float64) bool {
		fmt.Printf("  Group ratio %s: %.4f\n", pair, ratio)
		return true
	})
	determinism.RangeMapSorted(report.GroupAssessments, func(pair string, a types.GroupAssessment) bool {
		status := "met"
		if !a.Met {
			status = "not met"
		}
		fmt.Printf("  Target %s: %.4f (observed %.4f, gap %+.4f) %s\n",
			pair, a.Target, a.Ratio, a.Gap, status)
		return true
	})
	return nil
}
