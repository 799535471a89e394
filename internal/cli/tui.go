package cli

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aristath/miniplan/internal/tui"
)

// newTUICommand creates the tui command for launching the interactive editor.
// It is the same as running miniplan without arguments.
func newTUICommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive editor",
		Long:  `Launch the terminal editor: activity table, Gantt chart and status bar.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launchTUIFunc(cmd, opts)
		},
	}
}

// launchTUI runs the editor until the user quits or the command context is
// cancelled.
func launchTUI(cmd *cobra.Command, opts *options) error {
	e, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	model := tui.New(ctx, e.session, e.bus, e.cfg, e.globalPath, e.projectPath)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		// Interrupted by a signal; shut down quietly.
		return nil
	}
	return err
}
