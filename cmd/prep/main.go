package main

import (
	"os"

	"github.com/milestoneml/equityprep/cmd/prep/commands"
)

// main is the entry point for the prep CLI: go run ./cmd/prep [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
