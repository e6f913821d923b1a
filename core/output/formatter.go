// Package output renders allocation results for the CLI and other
// consumers. It produces human and machine-readable views only; it
// never performs allocation logic.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"fundalloc/core/determinism"
	"fundalloc/core/engine"
	"fundalloc/core/types"
	"fundalloc/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Report bundles everything one render call may show.
type Report struct {
	// Result is the allocation run output
	Result *engine.Result `json:"result"`

	// Equity is the optional equity analysis
	Equity *types.EquityReport `json:"equity,omitempty"`

	// Uncertainty is the optional Monte Carlo summary
	Uncertainty *types.UncertaintyResult `json:"uncertainty,omitempty"`
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes the report
	Render(w io.Writer, report *Report) error
}

// New returns the formatter for the named format.
func New(format Format, showScores bool) (Formatter, error) {
	switch format {
	case FormatCLI, "":
		return &cliFormatter{showScores: showScores}, nil
	case FormatJSON:
		return &jsonFormatter{}, nil
	default:
		return nil, errors.Inputf("unknown output format %q", format)
	}
}

type jsonFormatter struct{}

func (f *jsonFormatter) Format() Format { return FormatJSON }

func (f *jsonFormatter) Render(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

type cliFormatter struct {
	showScores bool
}

func (f *cliFormatter) Format() Format { return FormatCLI }

func (f *cliFormatter) Render(w io.Writer, report *Report) error {
	result := report.Result
	if result == nil {
		return errors.Input("nothing to render")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if f.showScores {
		fmt.Fprintln(tw, "RANK\tREGION\tALLOCATION\tSHARE\tPER CAPITA\tCOMPOSITE")
	} else {
		fmt.Fprintln(tw, "RANK\tREGION\tALLOCATION\tSHARE\tPER CAPITA")
	}

	for _, line := range result.Lines {
		if f.showScores {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f%%\t%s\t%.4f\n",
				line.Rank, line.Name, line.Amount.StringFixed(2),
				line.Share*100, line.PerCapita.StringFixed(2), line.CompositeScore)
		} else {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f%%\t%s\n",
				line.Rank, line.Name, line.Amount.StringFixed(2),
				line.Share*100, line.PerCapita.StringFixed(2))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nDistributable: %s (after %d redistribution iterations)\n",
		result.Allocation.Distributable.StringFixed(2), result.Metadata.Iterations)
	if result.Metadata.Degenerate() {
		fmt.Fprintf(w, "Warning: degenerate input flagged (criteria: %v, uniform composite: %v)\n",
			result.Metadata.DegenerateCriteria, result.Metadata.UniformComposite)
	}

	if report.Equity != nil {
		renderEquity(w, report.Equity)
	}
	if report.Uncertainty != nil {
		renderUncertainty(w, report.Uncertainty, result)
	}
	return nil
}

func renderEquity(w io.Writer, eq *types.EquityReport) {
	basis := "amounts"
	if eq.PerCapita {
		basis = "per-capita amounts"
	}
	fmt.Fprintf(w, "\nEquity (over %s):\n", basis)
	fmt.Fprintf(w, "  Gini coefficient:          %.4f\n", eq.Gini)
	fmt.Fprintf(w, "  Coefficient of variation:  %.4f\n", eq.CoefficientOfVariation)
	fmt.Fprintf(w, "  Theil index:               %.4f\n", eq.Theil)
	fmt.Fprintf(w, "  Atkinson index:            %.4f\n", eq.Atkinson)
	fmt.Fprintf(w, "  Hoover index:              %.4f\n", eq.Hoover)
	fmt.Fprintf(w, "  Population correlation:    %.4f\n", eq.PopulationCorrelation)
	determinism.RangeMapSorted(eq.GroupRatios, func(pair string, ratio float64) bool {
		fmt.Fprintf(w, "  Group ratio %s:  %.4f\n", pair, ratio)
		return true
	})
}

func renderUncertainty(w io.Writer, unc *types.UncertaintyResult, result *engine.Result) {
	fmt.Fprintf(w, "\nUncertainty (%d iterations, %.0f%% confidence):\n", unc.Iterations, unc.Confidence*100)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REGION\tMEAN\tLOWER\tUPPER")
	for _, line := range result.Lines {
		iv, ok := unc.Intervals[line.RegionID]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\n", line.Name, iv.Mean, iv.Lower, iv.Upper)
	}
	tw.Flush()
}
