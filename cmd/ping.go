// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// pingCmd probes the engine status endpoint and reports version and latency.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the configured engine is reachable",

	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		if rt.conn.Endpoint == "" {
			pterm.Println("⚠️  No engine endpoint configured.")
			pterm.Println("   Please run 'grove connect' or set GROVE_ENDPOINT.")
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		start := time.Now()
		status, err := rt.client.Status(ctx, rt.conn)
		if err != nil {
			return explainTransport(err, "reaching the engine")
		}

		pterm.Success.Printf("Engine %s at %s answered in %s\n",
			status.Version, rt.conn.Endpoint, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
