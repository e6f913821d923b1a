// Package cmd - uncertainty command
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"fundalloc/core/engine"
	"fundalloc/core/output"
	"fundalloc/core/uncertainty"
	"fundalloc/internal/logging"
)

var (
	noiseFile     string
	mcIterations  int
	mcConfidence  float64
	mcSeed        uint64
	mcWorkers     int
)

// uncertaintyCmd represents the uncertainty command
var uncertaintyCmd = &cobra.Command{
	Use:   "uncertainty",
	Short: "Estimate allocation confidence intervals by Monte Carlo",
	Long: `Repeat the allocation against independently perturbed copies of
the region table and report the empirical mean and confidence interval
of each region's amount.

The noise model comes from the program file's uncertainty block, or
from a YAML file given with --noise. Results are reproducible for a
fixed seed regardless of worker count.

Examples:
  fundalloc uncertainty --regions regions.csv --program program.hcl
  fundalloc uncertainty --regions regions.csv --program program.hcl --iterations 5000 --confidence 0.95
  fundalloc uncertainty --regions regions.csv --program program.hcl --noise noise.yml --seed 42`,
	RunE: runUncertainty,
}

func init() {
	uncertaintyCmd.Flags().StringVarP(&regionsFile, "regions", "r", "", "region table CSV file")
	uncertaintyCmd.Flags().StringVarP(&programFile, "program", "p", "", "allocation program HCL file")
	uncertaintyCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json)")
	uncertaintyCmd.Flags().StringVarP(&noiseFile, "noise", "n", "", "noise model YAML file (overrides the program file)")
	uncertaintyCmd.Flags().IntVarP(&mcIterations, "iterations", "i", 0, "Monte Carlo iterations (default from program file)")
	uncertaintyCmd.Flags().Float64VarP(&mcConfidence, "confidence", "c", 0, "confidence level in (0,1) (default from program file)")
	uncertaintyCmd.Flags().Uint64Var(&mcSeed, "seed", 0, "noise seed override")
	uncertaintyCmd.Flags().IntVarP(&mcWorkers, "workers", "w", 0, "parallel workers (default GOMAXPROCS)")
}

func runUncertainty(cmd *cobra.Command, args []string) error {
	in, program, err := loadInput(programFile, regionsFile)
	if err != nil {
		return err
	}

	noise := program.Uncertainty.Noise
	if noiseFile != "" {
		noise, err = uncertainty.LoadNoiseModel(noiseFile)
		if err != nil {
			return err
		}
	}
	if mcSeed != 0 {
		noise.Seed = mcSeed
	}

	estimator := uncertainty.Estimator{
		Iterations: program.Uncertainty.Iterations,
		Confidence: program.Uncertainty.Confidence,
		Workers:    mcWorkers,
	}
	if mcIterations > 0 {
		estimator.Iterations = mcIterations
	}
	if mcConfidence > 0 && mcConfidence < 1 {
		estimator.Confidence = mcConfidence
	}

	logging.Info("starting Monte Carlo estimation")

	result, err := engine.Run(in)
	if err != nil {
		return err
	}

	unc, err := estimator.Estimate(context.Background(), in, noise)
	if err != nil {
		return err
	}

	return render(&output.Report{Result: result, Uncertainty: unc})
}
