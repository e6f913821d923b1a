// Package main is the entry point for the fundalloc CLI.
package main

import (
	"os"

	"fundalloc/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
