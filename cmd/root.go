// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for Grove.
// It implements subcommands for running and cancelling analytic queries,
// inspecting datasource schemas, and managing the engine connection, using
// the Cobra CLI framework with a rich terminal UI.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "grove",
	Short:         "Grove CLI for querying Druid-compatible analytics engines",
	Long:          `Grove is a command-line client for Druid-compatible analytics engines. It submits native JSON queries over HTTP and supports cancelling a query that is already running on the engine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("grove %s\n", Version)

			rt, err := newRuntime()
			if err != nil || rt.conn.Endpoint == "" {
				fmt.Println("engine unknown (no endpoint configured)")
				return nil
			}
			ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			engineVersion := "unknown"
			if st, err := rt.client.Status(ctx, rt.conn); err == nil && st.Version != "" {
				engineVersion = st.Version
			}
			fmt.Printf("engine %s\n", engineVersion)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI and engine version information")
}
