// Package report formats schedules for terminals: the activity table, the
// status line and the run history.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/aristath/miniplan/internal/persistence"
	"github.com/aristath/miniplan/internal/project"
	"github.com/aristath/miniplan/internal/scheduler"
)

// Styles for the critical marker and errors.
var (
	Critical = color.New(color.Bold, color.FgRed).SprintFunc()
	Dim      = color.New(color.Faint).SprintFunc()
	Success  = color.New(color.FgGreen).SprintFunc()
	Failure  = color.New(color.Bold, color.FgRed).SprintFunc()
)

// CriticalMarker is shown in the Critical column of critical activities.
const CriticalMarker = "★ YES"

// Columns are the activity table headers, shared by the CLI and the TUI.
var Columns = []string{"ID", "Activity Name", "Dur", "Predecessors", "ES", "EF", "LS", "LF", "Float", "Critical"}

// Row returns the plain cells of a for the activity table.
func Row(a *scheduler.Activity) []string {
	marker := ""
	if a.IsCritical {
		marker = CriticalMarker
	}
	return []string{
		a.ID,
		a.Name,
		strconv.Itoa(a.Duration),
		scheduler.FormatPredecessors(a.Predecessors),
		strconv.Itoa(a.ES),
		strconv.Itoa(a.EF),
		strconv.Itoa(a.LS),
		strconv.Itoa(a.LF),
		strconv.Itoa(a.TotalFloat),
		marker,
	}
}

// FormatCriticalPath joins IDs with arrows, or returns "none".
func FormatCriticalPath(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, " → ")
}

// StatusLine summarises the project for a status bar. sum is the last
// successful run and may be nil.
func StatusLine(count int, sum *project.Summary, unit string) string {
	if count == 0 || sum == nil {
		return fmt.Sprintf("Activities: %d | Project Duration: — | Critical Path: —", count)
	}
	return fmt.Sprintf("Activities: %d | Project Duration: %d %s | Critical: %s",
		count, sum.Duration, unit, FormatCriticalPath(sum.CriticalPath))
}

// WriteTable writes acts as an aligned table. The critical marker is the last
// column so its color codes cannot disturb the alignment.
func WriteTable(w io.Writer, acts []*scheduler.Activity) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(Columns, "\t"))
	for _, a := range acts {
		cells := Row(a)
		if a.IsCritical {
			cells[len(cells)-1] = Critical(CriticalMarker)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// WriteHistory writes scheduling runs, newest first, as a table.
func WriteHistory(w io.Writer, runs []persistence.Run, unit string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "RUN\tWHEN\tELAPSED\tACTIVITIES\tDURATION\tRESULT")
	for _, r := range runs {
		result := Success("ok") + " " + FormatCriticalPath(r.CriticalPath)
		duration := fmt.Sprintf("%d %s", r.Duration, unit)
		if !r.Succeeded() {
			result = Failure("failed") + " " + r.Error
			duration = "—"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.RanAt.Local().Format(time.DateTime), r.Elapsed, r.ActivityCount, duration, result)
	}
	return tw.Flush()
}
