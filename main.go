// Package main is the entry point for the Grove CLI.
// It queries Druid-compatible analytics engines and can cancel a query that
// is already running on the engine.
package main

import (
	"grove/cli/cmd"
)

// main initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
