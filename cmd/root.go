package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/logger"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ErrAnalysisFailed is returned once a failed analysis has already been rendered
// through the output writer. Callers only need to set the exit status.
var ErrAnalysisFailed = errors.New("analysis failed")

// rootCtx is the root context for all operations. Execute replaces it with one
// that is cancelled on SIGINT or SIGTERM.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// isTerminal reports whether stdin is an interactive terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// rootCmd is the command-line entrypoint for all other commands.
// Without a subcommand it runs one analysis.
var rootCmd = &cobra.Command{
	Use:   "codemod [repo]",
	Short: "Summarize an author's code changes from Git history.",
	Long: `Codemod walks the history of one branch and reports how many commits an author made
and how many lines they added and deleted, overall and per file.

The author is a case-insensitive regular expression searched anywhere in the commit
author name. The repository may be a local path or a remote URL; remotes are cloned
into a temporary directory that is always removed afterwards.

Examples:
  # Analyze the current repository
  codemod --author "alice"

  # Restrict to a date window and to Python files
  codemod -a "alice|bob" -s 2024-01-01 -e 2024-06-30 -f "*.py"

  # Prompt for everything
  codemod -i`,
	Args:               cobra.MaximumNArgs(1),
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// No arguments on a terminal means interactive mode.
		if cmd.Flags().NFlag() == 0 && len(args) == 0 && viper.GetString("author") == "" && isTerminal() {
			viper.Set("interactive", true)
		}
		return sharedSetup(cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		if cfg.Interactive {
			if err := promptConfig(os.Stdin, os.Stderr, cfg); err != nil {
				return err
			}
		}
		return runOnce(rootCtx, cfg)
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".codemod") // Name of config file (without extension)
		viper.SetConfigType("yaml")     // We'll use YAML format
		viper.AddConfigPath(".")        // Look in the current directory
		viper.AddConfigPath("$HOME")    // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("CODEMOD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("branch", schema.DefaultBranch)
	viper.SetDefault("engine", schema.GoGitEngine)
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("history-backend", schema.NoneBackend)
	viper.SetDefault("history-db-connect", "")
}

// loadInput reads the config file and unmarshals every source into input.
func loadInput() error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return nil
}

// sharedSetup unmarshals config and runs validation for commands that analyze.
func sharedSetup(_ *cobra.Command, args []string) error {
	if err := loadInput(); err != nil {
		return err
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	if len(args) == 1 {
		input.Repo = args[0]
	}

	// 4. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	applyPresentation(cfg)
	return nil
}

// applyPresentation configures logging and colors from the validated config.
func applyPresentation(c *contract.Config) {
	logger.Configure(c.Verbose)
	if !c.UseColors {
		color.NoColor = true
	}
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rootCtx = ctx
	return rootCmd.Execute()
}
