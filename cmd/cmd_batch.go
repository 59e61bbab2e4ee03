// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/misekit/placefinder/batch"
	"github.com/misekit/placefinder/resolver"
	"github.com/spf13/cobra"
)

type BatchOptions struct {
	In       string
	DbPath   string
	MaxProcs int
}

var batchOptions = BatchOptions{}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Resolve JSON lines of {id, name, address} into a DuckDB table",
	Long: `Reads one JSON object per line and stores one row per input in the
resolutions table. Running again with the same ids replaces earlier results.

$ placefinder batch --in shops.jsonl --db shops.duckdb
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rows, err := readBatchInput(batchOptions.In)
		if err != nil {
			return err
		}

		log.Printf("📥 Read %d rows", len(rows))

		repo, closeDB, err := openRepository(batchOptions.DbPath)
		if err != nil {
			return err
		}
		defer closeDB()

		r, err := rootOptions.newResolver(cmd.Context(), nil)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		summary, err := batch.NewRunner(r, repo, batch.Options{MaxProcs: batchOptions.MaxProcs}).Run(ctx, rows)
		if err != nil {
			return err
		}

		return printSummary(summary, repo)
	},
}

type ReportOptions struct {
	DbPath string
	ID     string
	Source string
	Limit  int
}

var reportOptions = ReportOptions{}

var batchReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print stored resolutions as JSON lines",
	Long: `Reads the resolutions table written by batch.

$ placefinder batch report --db shops.duckdb --source geocode --limit 20
$ placefinder batch report --db shops.duckdb --id s1
`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		q := batch.ReportQuery{ID: reportOptions.ID, Limit: reportOptions.Limit}

		if reportOptions.Source != "" {
			source, err := parseSource(reportOptions.Source)
			if err != nil {
				return err
			}

			q.Source = &source
		}

		repo, closeDB, err := openRepository(reportOptions.DbPath)
		if err != nil {
			return err
		}
		defer closeDB()

		return batch.WriteReport(os.Stdout, repo, q)
	},
}

func parseSource(s string) (resolver.Source, error) {
	source := resolver.Source(s)

	switch source {
	case resolver.SourceGeocode, resolver.SourceNearbySearch, resolver.SourceTextSearch:
		return source, nil
	default:
		return "", fmt.Errorf("unknown source %q", s)
	}
}

func openRepository(path string) (batch.ResolutionRepository, func(), error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := batch.NewResolutionRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating resolutions schema: %w", err)
	}

	return repo, func() { db.Close() }, nil
}

func readBatchInput(path string) ([]batch.Row, error) {
	var in io.Reader = os.Stdin

	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()

		in = f
	}

	return batch.ReadRows(in)
}

// printSummary reports this run, then the table as a whole, which also
// holds rows from earlier runs.
func printSummary(s *batch.Summary, repo batch.ResolutionRepository) error {
	log.Printf("✅ Resolved %d of %d rows: %d with coordinates, %d verified, %d failed",
		s.Total-s.Failed, s.Total, s.Found, s.Verified, s.Failed)

	return batch.WriteSourceCounts(os.Stdout, repo)
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVar(&batchOptions.In, "in", "-", "JSON lines input, - for stdin")
	batchCmd.Flags().StringVar(&batchOptions.DbPath, "db", "placefinder.duckdb", "DuckDB database file")
	batchCmd.Flags().IntVar(&batchOptions.MaxProcs, "workers", 4, "concurrent resolutions, <= 0 for one per CPU")

	batchCmd.AddCommand(batchReportCmd)
	batchReportCmd.Flags().StringVar(&reportOptions.DbPath, "db", "placefinder.duckdb", "DuckDB database file")
	batchReportCmd.Flags().StringVar(&reportOptions.ID, "id", "", "print a single input id")
	batchReportCmd.Flags().StringVar(&reportOptions.Source, "source", "", "only geocode, nearby_search or text_search")
	batchReportCmd.Flags().IntVar(&reportOptions.Limit, "limit", 0, "maximum records, 0 for all")
}
