// Package cmd - allocate command
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"fundalloc/core/engine"
	"fundalloc/core/equity"
	"fundalloc/core/output"
	"fundalloc/internal/config"
	"fundalloc/internal/logging"
)

var (
	regionsFile  string
	programFile  string
	outputFormat string
	withEquity   bool
)

// allocateCmd represents the allocate command
var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Run one allocation over a region table",
	Long: `Score regions, distribute the appropriation and print the result.

The region table is a CSV file with region_id, region_name,
total_population, an optional group column and one column per criterion.
The program file is HCL and declares the funding pool, the criterion
weights, scenarios and the uncertainty model.

Examples:
  fundalloc allocate --regions regions.csv --program program.hcl
  fundalloc allocate --regions regions.csv --program program.hcl --format json
  fundalloc allocate --regions regions.csv --program program.hcl --equity`,
	RunE: runAllocate,
}

func init() {
	allocateCmd.Flags().StringVarP(&regionsFile, "regions", "r", "", "region table CSV file")
	allocateCmd.Flags().StringVarP(&programFile, "program", "p", "", "allocation program HCL file")
	allocateCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json)")
	allocateCmd.Flags().BoolVarP(&withEquity, "equity", "e", false, "include the equity analysis")
}

func runAllocate(cmd *cobra.Command, args []string) error {
	in, program, err := loadInput(programFile, regionsFile)
	if err != nil {
		return err
	}

	logging.Info("starting allocation run")

	result, err := engine.Run(in)
	if err != nil {
		return err
	}

	report := &output.Report{Result: result}
	if withEquity {
		report.Equity = equity.Analyze(result.Allocation, in.Regions, program.Equity)
	}

	return render(report)
}

// render writes a report in the requested (or configured) format.
func render(report *output.Report) error {
	cfg := config.Get()
	format := outputFormat
	if format == "" {
		format = cfg.Output.DefaultFormat
	}

	formatter, err := output.New(output.Format(format), cfg.Output.ShowScores)
	if err != nil {
		return err
	}
	return formatter.Render(os.Stdout, report)
}
