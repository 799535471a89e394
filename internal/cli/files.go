package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aristath/miniplan/internal/projectfile"
	"github.com/aristath/miniplan/internal/scheduler"
)

func newImportCommand(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the project with activities from a file",
		Long: `Read activities from a project file and replace the stored project.
The format follows the file extension (.json, .yaml, .yml, .toml, .hcl, .csv)
unless --format is given. Use "-" to read standard input.

Computed dates in the file are kept until the next scheduling run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acts, err := readActivities(cmd, args[0], format)
			if err != nil {
				return err
			}

			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.session.Import(cmd.Context(), acts); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d activities from %s.\n", len(acts), args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "file format: json, yaml, toml, hcl, csv")
	return cmd
}

func newExportCommand(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the project to a file",
		Long: `Write every activity, including the dates of the last scheduling run, to
a project file. The format follows the file extension unless --format is
given. Use "-" with --format to write to standard output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			acts := e.session.Activities()
			path := args[0]
			if path == "-" {
				f, err := projectfile.ParseFormat(format)
				if err != nil {
					return fmt.Errorf("writing to stdout needs --format: %w", err)
				}
				return projectfile.Encode(cmd.OutOrStdout(), f, acts)
			}

			if err := writeActivities(path, format, acts); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d activities to %s.\n", len(acts), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "file format: json, yaml, toml, hcl, csv")
	return cmd
}

// readActivities reads path, or stdin for "-", in the given or inferred format.
func readActivities(cmd *cobra.Command, path, format string) ([]*scheduler.Activity, error) {
	if path == "-" {
		f, err := projectfile.ParseFormat(format)
		if err != nil {
			return nil, fmt.Errorf("reading stdin needs --format: %w", err)
		}
		return projectfile.Decode(cmd.InOrStdin(), f)
	}
	if format == "" {
		return projectfile.ReadFile(path)
	}

	f, err := projectfile.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	acts, err := projectfile.Decode(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return acts, nil
}

func writeActivities(path, format string, acts []*scheduler.Activity) error {
	if format == "" {
		return projectfile.WriteFile(path, acts)
	}

	f, err := projectfile.ParseFormat(format)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := projectfile.Encode(file, f, acts); err != nil {
		_ = file.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return file.Close()
}
