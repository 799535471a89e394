package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aristath/miniplan/internal/report"
	"github.com/aristath/miniplan/internal/scheduler"
)

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List activities",
		Long: `Display the activities sorted by ID, with the dates saved by the last
scheduling run.

Output columns:
  ID, Activity Name, Dur, Predecessors, ES, EF, LS, LF, Float, Critical`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			acts := e.session.Activities()
			out := cmd.OutOrStdout()
			if len(acts) == 0 {
				_, _ = fmt.Fprintln(out, "No activities.")
				return nil
			}
			return report.WriteTable(out, acts)
		},
	}
}

func newAddCommand(opts *options) *cobra.Command {
	var flags struct {
		preds       []string
		resource    string
		description string
	}

	cmd := &cobra.Command{
		Use:   "add ID NAME DURATION",
		Short: "Add an activity",
		Long: `Add an activity to the project. Every predecessor must already exist.

Examples:
  miniplan add A "Site survey" 2
  miniplan add B Foundation 4 --pred A
  miniplan add E Finish 2 --pred C,D --resource crew`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			duration, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("duration must be a whole number, got %q", args[2])
			}
			a, err := scheduler.NewActivity(args[0], args[1], duration, flags.preds...)
			if err != nil {
				return err
			}
			a.Resource = strings.TrimSpace(flags.resource)
			a.Description = strings.TrimSpace(flags.description)

			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.session.Add(cmd.Context(), a); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added activity %s.\n", a.ID)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&flags.preds, "pred", "p", nil, "predecessor IDs (repeat or comma-separate)")
	cmd.Flags().StringVarP(&flags.resource, "resource", "r", "", "resource assigned to the activity")
	cmd.Flags().StringVarP(&flags.description, "description", "d", "", "free-form description")
	return cmd
}

func newRemoveCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Remove an activity",
		Long: `Remove an activity. Activities that list it as a predecessor keep the
reference; the next scheduling run reports it until they are edited.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			dependents, err := e.session.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Removed activity %s.\n", args[0])
			if len(dependents) > 0 {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: still referenced by %s\n", strings.Join(dependents, ", "))
			}
			return nil
		},
	}
}

func newSampleCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Replace the project with the sample network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.session.LoadSample(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Loaded sample project (%d activities).\n", e.session.Len())
			return nil
		},
	}
}

func newClearCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.session.Clear(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cleared all activities.")
			return nil
		},
	}
}
