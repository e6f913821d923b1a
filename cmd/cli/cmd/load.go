// Package cmd - shared input loading for commands
package cmd

import (
	"fmt"
	"os"

	"fundalloc/adapters/regions"
	"fundalloc/core/engine"
	"fundalloc/internal/config"
)

// loadInput reads the program file and the region table and assembles
// the engine input every command starts from.
func loadInput(programPath, regionsPath string) (engine.Input, *config.Program, error) {
	if programPath == "" {
		return engine.Input{}, nil, fmt.Errorf("--program is required")
	}
	if regionsPath == "" {
		return engine.Input{}, nil, fmt.Errorf("--regions is required")
	}
	if _, err := os.Stat(regionsPath); os.IsNotExist(err) {
		return engine.Input{}, nil, fmt.Errorf("regions file does not exist: %s", regionsPath)
	}

	program, err := config.LoadProgram(programPath)
	if err != nil {
		return engine.Input{}, nil, err
	}

	table, err := regions.LoadCSV(regionsPath, program.Weights.Criteria)
	if err != nil {
		return engine.Input{}, nil, err
	}

	in := engine.Input{
		Regions:     table,
		Weights:     program.Weights,
		Constraints: program.Constraints,
	}
	return in, program, nil
}
