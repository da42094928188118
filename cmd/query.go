// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"atomicgo.dev/cursor"
	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"grove/cli/internal/druid"
	groveerr "grove/cli/internal/errors"
)

var (
	queryFile    string
	queryID      string
	queryTimeout int64
	queryRawJSON bool
)

// queryCmd represents the query command for executing a native JSON query.
// It submits the query to the engine and waits for the result; pressing
// Ctrl-C while the query is running cancels it locally and asks the engine
// to abort it server-side before the command exits.
var queryCmd = &cobra.Command{
	Use:   "query [native query JSON]",
	Short: "Run a native JSON query against the engine",
	Long: `The query command submits a native JSON query to the configured engine and
prints the result. The query document is taken from the argument, from a file
via --file, or from stdin when the argument is "-".

A query id is assigned automatically when the document does not carry one, so
that an in-flight query can always be cancelled. Press Ctrl-C to cancel: the
local wait is interrupted and the engine is asked (best effort) to abort the
query before the command returns.`,

	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readQueryDocument(args)
		if err != nil {
			return err
		}

		payload, err := druid.ParsePayload(doc)
		if err != nil {
			pterm.Println("❌ The query document is not valid JSON.")
			return err
		}

		if queryID != "" {
			payload.SetQueryID(queryID)
		}
		if payload.QueryID() == "" {
			// Assign an id so cancellation is always addressable remotely.
			payload.SetQueryID(uuid.NewString())
		}
		if queryTimeout > 0 {
			payload.Context.TimeoutMillis = queryTimeout
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		if rt.conn.Endpoint == "" {
			pterm.Println("⚠️  No engine endpoint configured.")
			pterm.Println("   Please run 'grove connect' or set GROVE_ENDPOINT.")
			return nil
		}

		// Ctrl-C closes the one-shot cancellation channel; a second Ctrl-C
		// is absorbed by the already-closed signal path.
		cancelCh := make(chan struct{})
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			if _, ok := <-sigCh; ok {
				close(cancelCh)
			}
		}()

		cursor.Hide()
		defer cursor.Show()
		stopSpinner := startInlineSpinner(os.Stderr,
			fmt.Sprintf("running query %s (Ctrl-C cancels)", payload.QueryID()),
			spinnerFrames, 100*time.Millisecond)

		start := time.Now()
		rows, err := rt.client.RunCancellable(cmd.Context(), rt.conn, payload, cancelCh)
		stopSpinner()

		if err != nil {
			return presentQueryError(err, payload.QueryID())
		}

		pterm.Success.Printf("Query %s returned %d row(s) in %s\n", payload.QueryID(), len(rows), time.Since(start).Round(time.Millisecond))
		renderRows(rows)
		return nil
	},
}

// readQueryDocument picks the query source: --file, stdin ("-"), or the
// positional argument.
func readQueryDocument(args []string) ([]byte, error) {
	if queryFile != "" {
		return os.ReadFile(queryFile)
	}
	if len(args) == 0 {
		return nil, errors.New("provide a query as argument, via --file, or as \"-\" for stdin")
	}
	if args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return []byte(args[0]), nil
}

// presentQueryError renders a failed query for the user and returns the error
// for the exit code.
func presentQueryError(err error, queryID string) error {
	switch groveerr.KindOf(err) {
	case groveerr.Interrupted:
		pterm.Warning.Printf("Query %s cancelled\n", queryID)
		return err
	case groveerr.RemoteRequest:
		var ee *groveerr.E
		errors.As(err, &ee)
		pterm.Error.Printf("Engine rejected the query: %s (status %d)\n", ee.Message, ee.Status)
		return err
	case groveerr.ResponseDecode:
		pterm.Error.Println("Engine answered with a body that is not valid JSON.")
		return err
	case groveerr.Transport:
		return explainTransport(err, "running the query")
	}
	return err
}

// renderRows prints flat result rows as a table and falls back to indented
// JSON for nested or irregular shapes (or when --json is set).
func renderRows(rows druid.QueryResponse) {
	if len(rows) == 0 {
		return
	}
	if !queryRawJSON {
		if table, ok := tabulate(rows); ok {
			_ = pterm.DefaultTable.WithHasHeader().WithData(table).Render()
			return
		}
	}
	out, err := druid.MarshalIndent(rows)
	if err != nil {
		pterm.Error.Printf("cannot render result: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

// tabulate flattens rows into pterm table data. Returns false when any value
// is nested, in which case JSON output reads better.
func tabulate(rows druid.QueryResponse) (pterm.TableData, bool) {
	colSet := map[string]struct{}{}
	for _, row := range rows {
		for k, v := range row {
			switch v.(type) {
			case map[string]any, []any:
				return nil, false
			}
			colSet[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(colSet))
	for k := range colSet {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	data := pterm.TableData{cols}
	for _, row := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			if v, ok := row[c]; ok {
				line[i] = fmt.Sprintf("%v", v)
			}
		}
		data = append(data, line)
	}
	return data, true
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryFile, "file", "f", "", "Read the query document from a file")
	queryCmd.Flags().StringVar(&queryID, "id", "", "Override the query id used for cancellation")
	queryCmd.Flags().Int64Var(&queryTimeout, "timeout", 0, "Engine-side timeout in milliseconds")
	queryCmd.Flags().BoolVar(&queryRawJSON, "json", false, "Always print results as JSON")
}
