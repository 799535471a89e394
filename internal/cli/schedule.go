package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aristath/miniplan/internal/batch"
	"github.com/aristath/miniplan/internal/logging"
	"github.com/aristath/miniplan/internal/report"
	"github.com/aristath/miniplan/internal/session"
)

func newScheduleCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "schedule",
		Aliases: []string{"run"},
		Short:   "Compute the CPM schedule",
		Long: `Run the Critical Path Method over the project, save the computed dates
and record the run in the history.

Exits with an error when the network references an unknown predecessor or
contains a circular dependency.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			sum, err := e.session.Run(cmd.Context())
			if errors.Is(err, session.ErrEmptyProject) {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No activities to schedule.")
				return nil
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := report.WriteTable(out, sum.Activities); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintln(out, report.StatusLine(len(sum.Activities), sum, e.cfg.TimeUnit))
			return nil
		},
	}
}

func newHistoryCommand(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scheduling runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			runs, err := e.session.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				_, _ = fmt.Fprintln(out, "No scheduling runs yet.")
				return nil
			}
			return report.WriteHistory(out, runs, e.cfg.TimeUnit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show (0 for all)")
	return cmd
}

func newCheckCommand(opts *options) *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Schedule project files without saving",
		Long: `Schedule one or more project files (.json, .yaml, .toml, .hcl, .csv)
concurrently. Each file is scheduled on its own; nothing is written to the
database.

Exits with an error if any file fails to read or schedule.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}
			if jobs <= 0 {
				jobs = cfg.Batch.Concurrency
			}

			ctx := logging.WithLogger(cmd.Context(), logger)
			results, err := batch.ScheduleFiles(ctx, args, jobs)
			if err != nil {
				return err
			}

			failed := writeCheckResults(cmd.OutOrStdout(), results, cfg.TimeUnit)
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "files scheduled in parallel (default batch.concurrency)")
	return cmd
}

// writeCheckResults prints one line per file and returns the failure count.
func writeCheckResults(w io.Writer, results []batch.FileResult, unit string) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			_, _ = fmt.Fprintf(w, "%s %s: %v\n", report.Failure("FAIL"), r.Path, r.Err)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s   %s: %d activities, %d %s, critical %s\n",
			report.Success("ok"), r.Path, len(r.Activities), r.Result.Duration, unit,
			report.FormatCriticalPath(r.Result.CriticalPath))
	}
	return failed
}
