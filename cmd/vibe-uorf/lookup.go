package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-uorf/internal/duckdb"
	"github.com/inodb/vibe-uorf/internal/output"
)

func newLookupCmd() *cobra.Command {
	var dbPath, runID, format string

	cmd := &cobra.Command{
		Use:   "lookup <transcript-id>",
		Short: "Show stored uORFs for a transcript",
		Long:  "Print the uORFs of one transcript from a DuckDB database written by scan --duckdb.",
		Example: `  vibe-uorf lookup ENST00000311936 --db results.duckdb
  vibe-uorf lookup ENST00000311936 --db results.duckdb --run 2f1c... -f jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return usagef("--db is required")
			}
			return runLookup(cmd.OutOrStdout(), dbPath, runID, args[0], format)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database written by scan --duckdb")
	cmd.Flags().StringVar(&runID, "run", "", "Run ID (default: latest run)")
	cmd.Flags().StringVarP(&format, "format", "f", "tab", "Output format: tab, jsonl")

	return cmd
}

func runLookup(out io.Writer, dbPath, runID, transcriptID, format string) error {
	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.LookupTranscript(runID, transcriptID)
	if errors.Is(err, duckdb.ErrNoRuns) {
		return fmt.Errorf("%s holds no runs yet; write one with: vibe-uorf scan --duckdb %s", dbPath, dbPath)
	}
	if err != nil {
		return err
	}

	var w output.ResultWriter
	switch format {
	case "jsonl":
		w = output.NewJSONLWriter(out)
	case "tab":
		w = output.NewTabWriter(out)
	default:
		return usagef("unknown format %q", format)
	}

	if err := w.WriteHeader(); err != nil {
		return err
	}
	for i := range results {
		if err := w.Write(&results[i].Result); err != nil {
			return err
		}
	}
	return w.Flush()
}
