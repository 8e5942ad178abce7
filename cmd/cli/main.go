// Package main is the entry point for the runboard CLI.
// The CLI is the terminal companion to the dashboard API.
package main

import (
	"os"

	"runboard/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
