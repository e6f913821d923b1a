// Package cmd provides the CLI commands for fundalloc.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fundalloc/internal/config"
	"fundalloc/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fundalloc",
	Short: "Allocate program funding across regions",
	Long: `fundalloc is a multi-criteria funding allocation engine.

It scores regions on weighted need and performance criteria, distributes
an appropriation proportionally under floor and cap constraints, and
reports equity metrics, scenario deltas and Monte Carlo confidence
intervals for the result.

Examples:
  fundalloc allocate --regions regions.csv --program program.hcl
  fundalloc allocate --regions regions.csv --program program.hcl --format json
  fundalloc scenarios --regions regions.csv --program program.hcl
  fundalloc uncertainty --regions regions.csv --program program.hcl --iterations 2000`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fundalloc.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(allocateCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(sensitivityCmd)
	rootCmd.AddCommand(equityCmd)
	rootCmd.AddCommand(uncertaintyCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	// Initialize logging
	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("fundalloc version 0.1.0")
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}
