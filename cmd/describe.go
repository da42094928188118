// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"grove/cli/internal/druid"
	groveerr "grove/cli/internal/errors"
	"grove/cli/internal/httperrors"
	"grove/cli/internal/schema"
)

// describeCmd lists datasources, or shows the merged column schema of one.
var describeCmd = &cobra.Command{
	Use:   "describe [datasource]",
	Short: "List datasources or show the schema of one",
	Long: `Without an argument, describe lists the datasources the engine serves.
With a datasource name, it runs a segment metadata query and prints the merged
column schema.`,

	Args: cobra.MaximumNArgs(1),
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

		if len(args) == 0 {
			return listDatasources(cmd, rt)
		}
		return describeDatasource(cmd, rt, args[0])
	},
}

func listDatasources(cmd *cobra.Command, rt *runtime) error {
	names, err := rt.client.Datasources(cmd.Context(), rt.conn)
	if err != nil {
		return explainTransport(err, "listing datasources")
	}
	if len(names) == 0 {
		pterm.Println("The engine serves no datasources.")
		return nil
	}
	for _, name := range names {
		pterm.Println("  " + name)
	}
	return nil
}

func describeDatasource(cmd *cobra.Command, rt *runtime, name string) error {
	payload := &druid.QueryPayload{
		QueryType:  "segmentMetadata",
		DataSource: name,
		Extra:      map[string]any{"merge": true},
	}
	payload.SetQueryID(uuid.NewString())

	rows, err := rt.client.RunCancellable(cmd.Context(), rt.conn, payload, nil)
	if err != nil {
		return explainTransport(err, "describing the datasource")
	}

	generic := make([]map[string]any, len(rows))
	for i, r := range rows {
		generic[i] = r
	}
	analyses, err := schema.FromRows(generic)
	if err != nil {
		return fmt.Errorf("unexpected segment metadata shape: %w", err)
	}
	table := schema.BuildTable(name, analyses)
	if len(table.Columns) == 0 {
		pterm.Printf("Datasource %s has no columns (unknown or empty datasource).\n", name)
		return nil
	}

	data := pterm.TableData{{"COLUMN", "KIND", "NATIVE TYPE"}}
	for _, col := range table.Columns {
		data = append(data, []string{col.Name, col.Kind.String(), col.NativeType})
	}
	pterm.Printf("Datasource %s (%s column(s)):\n", name, strconv.Itoa(len(table.Columns)))
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// explainTransport adds a human hint for transport failures and passes the
// error through for the exit code.
func explainTransport(err error, doing string) error {
	var ee *groveerr.E
	if errors.As(err, &ee) && ee.Kind == groveerr.Transport && ee.Err != nil {
		httperrors.Explain(ee.Err, doing+" at "+httperrors.ExtractHostFromURL(ee.URL))
	}
	return err
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
