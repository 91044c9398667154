// Package main is the entry point for the travel-mate CLI.
package main

import (
	"os"

	"travel-mate/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
