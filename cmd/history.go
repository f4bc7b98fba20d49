package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/history"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historySetup loads the minimal configuration needed for history operations.
// It skips repository and author validation.
func historySetup(_ *cobra.Command, _ []string) error {
	if err := loadInput(); err != nil {
		return err
	}

	backend, err := contract.ParseHistoryBackend(input.HistoryBackend)
	if err != nil {
		return err
	}
	if err := contract.ValidateDatabaseConnectionString(backend, input.HistoryDBConnect); err != nil {
		return err
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	cfg.OutputFile = input.OutputFile
	cfg.Verbose = input.Verbose
	cfg.UseColors, _ = contract.ParseBoolString(input.Color)
	applyPresentation(cfg)
	return nil
}

// openHistory opens the configured store. History must be enabled.
func openHistory() (*history.Store, error) {
	if cfg.HistoryBackend == schema.NoneBackend {
		return nil, errors.New("history is disabled; set --history-backend (or CODEMOD_HISTORY_BACKEND)")
	}
	return history.NewStore(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// withHistory opens the store, runs fn and closes the store.
func withHistory(fn func(store *history.Store) error) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}

// historyCmd focuses on run history management.
//
// Note: history subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup used by analyses. This avoids repository and author
// validation for simple bookkeeping operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded analysis runs",
	Long: `Manage the history of analysis runs.

When --history-backend is set, every successful analysis stores:
- Run metadata (timestamps, duration, repository, branch)
- The request (author pattern, date window, file filters)
- Totals and per-file insertions and deletions

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  list    - Show recent runs
  status  - Show history statistics
  export  - Export runs to Parquet or JSON
  clear   - Remove recorded runs
  migrate - Run database schema migrations

Examples:
  # Record runs in ~/.codemod_history.db
  export CODEMOD_HISTORY_BACKEND=sqlite
  codemod -a alice

  # Export for analysis in pandas/DuckDB
  codemod history export runs`,
}

// historyListCmd lists recent runs.
var historyListCmd = &cobra.Command{
	Use:     "list",
	Short:   "Show the most recent analysis runs",
	Long:    `List recorded runs, newest first. --limit bounds the number of rows.`,
	PreRunE: historySetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withHistory(func(store *history.Store) error {
			runs, err := store.ListRuns(viper.GetInt("limit"))
			if err != nil {
				return err
			}
			return history.PrintRuns(os.Stdout, runs)
		})
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show the backend, connection status, number of runs, commits counted across
runs, the last and oldest run, and table sizes.`,
	PreRunE: historySetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := history.NewStore(cfg.HistoryBackend, cfg.HistoryDBConnect)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get history status: %w", err)
		}
		history.PrintStatus(os.Stdout, status)
		return nil
	},
}

// historyExportCmd exports history to Parquet or JSON.
var historyExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export recorded runs to Parquet or JSON",
	Long: `Export every recorded run and its per-file stats.

A path ending in .json produces one JSON document. Any other path is used as a
prefix for two Parquet files: <path>.analysis_runs.parquet and <path>.run_files.parquet.

Examples:
  codemod history export runs
  codemod history export runs.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: historySetup,
	RunE: func(_ *cobra.Command, args []string) error {
		outputFile := cfg.OutputFile
		if len(args) == 1 {
			outputFile = args[0]
		}
		return withHistory(func(store *history.Store) error {
			return history.Export(store, outputFile, os.Stdout)
		})
	},
}

// historyClearCmd removes recorded runs.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove recorded analysis runs",
	Long: `Delete recorded runs and their per-file stats.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Keep the last 90 days
  codemod history clear --older-than 90

  # Remove everything
  codemod history clear`,
	PreRunE: historySetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		days, err := cmd.Flags().GetInt("older-than")
		if err != nil {
			return err
		}
		if days < 0 {
			return fmt.Errorf("--older-than must not be negative (received %d)", days)
		}
		var cutoff time.Time
		if days > 0 {
			cutoff = time.Now().AddDate(0, 0, -days)
		}
		return withHistory(func(store *history.Store) error {
			n, err := store.Clear(cutoff)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(os.Stdout, "Removed %d analysis runs.\n", n)
			return err
		})
	},
}

// historyMigrateCmd runs schema migrations.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations for run history",
	Long: `Move the history schema to a specific version.

Opening a store always migrates it to the latest version, so this is mainly used
to roll back before downgrading codemod.

Examples:
  codemod history migrate
  codemod history migrate --to 0`,
	PreRunE: historySetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		target, err := cmd.Flags().GetInt("to")
		if err != nil {
			return err
		}
		return history.Migrate(cfg.HistoryBackend, cfg.HistoryDBConnect, target, os.Stdout)
	},
}
