package cmd

import (
	"errors"
	"fmt"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/remote"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/watch"
	"github.com/spf13/cobra"
)

// watchCmd re-runs the analysis whenever the repository's refs move.
var watchCmd = &cobra.Command{
	Use:   "watch [repo]",
	Short: "Re-analyze a local repository whenever its history changes",
	Long: `Run the analysis once, then watch HEAD, packed-refs and the refs of the local
repository and run it again after every commit, fetch, reset or branch switch.

Bursts of ref updates are collapsed: the analysis starts once no further change has
been seen for the debounce interval.

Examples:
  # Keep an up-to-date summary of alice's work in this repository
  codemod watch --author alice

  # Refresh a JSON report after every change
  codemod watch ~/src/app -a alice --output json --output-file alice.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if remote.IsRemote(cfg.Source) {
			return errors.New("watch needs a local repository")
		}
		debounce, err := cmd.Flags().GetDuration("debounce")
		if err != nil {
			return err
		}

		a, err := newAnalyzer(rootCtx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				contract.LogWarn("Failed to close history store", err)
			}
		}()

		w, err := watch.New(cfg.Source, debounce)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", cfg.Source, err)
		}
		defer func() { _ = w.Close() }()

		if err := a.run(rootCtx); err != nil && !errors.Is(err, ErrAnalysisFailed) {
			return err
		}
		return w.Run(rootCtx, a.run)
	},
}
