// Package main is the entry point for the furi CLI.
package main

import (
	"os"

	"github.com/f3rmion/furi/cmd/furi/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
