// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/eventide/internal/config"
	"github.com/tomtom215/eventide/internal/importer"
	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/store"
)

// Exit codes follow shell conventions: 130 is 128+SIGINT.
const (
	exitFailure   = 1
	exitInterrupt = 130
)

const schemaTimeout = 30 * time.Second

// exitError carries a process exit code out of a command's RunE.
type exitError struct {
	code    int
	message string
	err     error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *exitError) Unwrap() error {
	return e.err
}

// exitCode maps an error to the process exit code. Cancellation wins
// over everything else so an interrupted run always exits 130.
func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return exitInterrupt
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFailure
}

type importOptions struct {
	batchSize int
	rate      float64
}

func newImportCommand() *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "eventide-import <events.csv>",
		Short: "Bulk import events from a CSV file",
		Long: `Bulk import events from a CSV file directly into PostgreSQL.

The file needs a header row with event_id, occurred_at, user_id and
event_type columns; a properties_json column is optional. Rows that
fail to parse are skipped and counted, and events already stored are
counted as duplicates, so re-running a partial import is safe.

The database connection is configured the same way as the server,
via DATABASE_URL or a config file.

Example:
  eventide-import ./events.csv
  eventide-import --batch-size 500 --rate 1000 ./backfill.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.batchSize, "batch-size", importer.DefaultBatchSize, "events per insert batch")
	cmd.Flags().Float64Var(&opts.rate, "rate", 0, "max events per second (0 = unthrottled)")

	return cmd
}

func runImport(ctx context.Context, opts *importOptions, path string) error {
	cfg, err := config.Load()
	if err != nil {
		return &exitError{code: exitFailure, message: "failed to load configuration", err: err}
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	fmt.Println("Event Import Tool")
	fmt.Printf("Database: %s\n", redactDSN(cfg.Database.URL))
	fmt.Println()

	st, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return &exitError{code: exitFailure, message: "failed to connect to PostgreSQL", err: err}
	}
	defer st.Close()

	schemaCtx, schemaCancel := context.WithTimeout(ctx, schemaTimeout)
	err = st.CreateSchema(schemaCtx)
	schemaCancel()
	if err != nil {
		return &exitError{code: exitFailure, message: "failed to apply database schema", err: err}
	}

	imp := importer.New(st, opts.batchSize, opts.rate)

	summary, err := imp.ImportFile(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return &exitError{code: exitInterrupt, message: "import cancelled by user", err: err}
		}
		return &exitError{code: exitFailure, message: "import failed", err: err}
	}

	fmt.Println("Import complete")
	fmt.Printf("  Imported:   %d\n", summary.Imported)
	fmt.Printf("  Duplicates: %d\n", summary.Duplicates)
	fmt.Printf("  Failed:     %d\n", summary.Failed)
	fmt.Printf("  Total:      %d\n", summary.Total)

	if summary.Failed > 0 {
		return &exitError{
			code:    exitFailure,
			message: fmt.Sprintf("%d events failed to import, check logs", summary.Failed),
		}
	}
	return nil
}

// redactDSN strips credentials from a connection string for display.
func redactDSN(dsn string) string {
	if i := strings.LastIndex(dsn, "@"); i >= 0 {
		return dsn[i+1:]
	}
	return dsn
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newImportCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
