package cmd

import (
	"errors"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/schedule"
	"github.com/spf13/cobra"
)

// scheduleCmd re-runs the analysis on a cron schedule.
var scheduleCmd = &cobra.Command{
	Use:   "schedule [repo]",
	Short: "Re-run the analysis on a cron schedule",
	Long: `Run the analysis periodically until interrupted. Remote repositories are cloned
afresh for every run. Combine with --history-backend to build a time series of runs,
or with --metrics-file to feed a node_exporter textfile collector.

The schedule is a standard five-field cron expression or a descriptor such as
@hourly, @daily or "@every 30m". A run still in progress when the next one is due
causes that tick to be skipped.

Examples:
  # Record alice's numbers every night
  codemod schedule -a alice --cron "0 2 * * *" --history-backend sqlite

  # Refresh metrics every 15 minutes, starting now
  codemod schedule -a alice --cron "@every 15m" --run-now --metrics-file /var/lib/node_exporter/codemod.prom`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		spec, err := cmd.Flags().GetString("cron")
		if err != nil {
			return err
		}
		runNow, err := cmd.Flags().GetBool("run-now")
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

		s, err := schedule.New(spec, a.run)
		if err != nil {
			return err
		}
		if runNow {
			if err := a.run(rootCtx); err != nil && !errors.Is(err, ErrAnalysisFailed) {
				return err
			}
		}
		cmd.PrintErrf("Analysis scheduled with %q. Press Ctrl+C to stop.\n", spec)
		return s.Run(rootCtx)
	},
}
