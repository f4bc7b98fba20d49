// Package cmd defines the command-line interface for codemod.
package cmd

import (
	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/watch"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("repo", "r", "", "Path or URL of the Git repository (default \".\")")
	rootCmd.PersistentFlags().StringP("author", "a", "", "Author name pattern (case-insensitive regular expression)")
	rootCmd.PersistentFlags().StringP("branch", "b", schema.DefaultBranch, "Branch to analyze")
	rootCmd.PersistentFlags().StringP("start-date", "s", "", "Start date (YYYY-MM-DD), inclusive")
	rootCmd.PersistentFlags().StringP("end-date", "e", "", "End date (YYYY-MM-DD), inclusive")
	rootCmd.PersistentFlags().StringP("files", "f", "", "Comma-separated list of file paths or * wildcards to analyze")
	rootCmd.PersistentFlags().BoolP("interactive", "i", false, "Prompt for the analysis parameters")
	rootCmd.PersistentFlags().String("token", "", "Access token for cloning a remote repository")
	rootCmd.PersistentFlags().String("username", "", "Username for cloning a remote repository")
	rootCmd.PersistentFlags().String("password", "", "Password for cloning a remote repository")
	rootCmd.PersistentFlags().String("token-secret", "", "AWS Secrets Manager secret holding the clone token")
	rootCmd.PersistentFlags().String("engine", string(schema.GoGitEngine), "Git engine: gogit or git")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or json or yaml or csv or parquet or html")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of files to display")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Bool("progress", false, "Show a progress bar while traversing commits")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Emit debug logs on stderr")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write Prometheus metrics in textfile format to this path")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// watch and schedule flags are read from the command, not from Viper
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period after a ref change before re-analyzing")
	scheduleCmd.Flags().String("cron", "@daily", "Cron schedule (five fields or a descriptor such as @hourly)")
	scheduleCmd.Flags().Bool("run-now", false, "Run once immediately before waiting for the schedule")

	historyClearCmd.Flags().Int("older-than", 0, "Only remove runs older than this many days (0 removes everything)")
	historyMigrateCmd.Flags().Int("to", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
}
