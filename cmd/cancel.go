// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// cancelCmd asks the engine to abort a running query by id.
var cancelCmd = &cobra.Command{
	Use:   "cancel <query-id>",
	Short: "Cancel a running query on the engine",
	Long: `The cancel command sends a cancellation request for the given query id.
The engine aborts the query cooperatively; a query that already finished is
reported as unknown by the engine.`,

	Args: cobra.ExactArgs(1),
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

		if err := rt.client.CancelQuery(ctx, rt.conn, args[0]); err != nil {
			return explainTransport(err, "cancelling the query")
		}

		pterm.Success.Printf("Cancellation requested for query %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
