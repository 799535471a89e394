package tui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/miniplan/internal/report"
	"github.com/aristath/miniplan/internal/scheduler"
)

// columnWidths line up with report.Columns.
var columnWidths = []int{6, 20, 5, 12, 4, 4, 4, 4, 6, 8}

// TablePaneModel lists the activities with their computed dates.
type TablePaneModel struct {
	table   table.Model
	width   int
	height  int
	focused bool
}

// NewTablePaneModel creates an empty activity table.
func NewTablePaneModel() TablePaneModel {
	cols := make([]table.Column, len(report.Columns))
	for i, title := range report.Columns {
		cols[i] = table.Column{Title: title, Width: columnWidths[i]}
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))

	t := table.New(table.WithColumns(cols))
	t.SetStyles(styles)
	return TablePaneModel{table: t}
}

// SetActivities replaces the rows, keeping the cursor in range.
func (m *TablePaneModel) SetActivities(acts []*scheduler.Activity) {
	rows := make([]table.Row, len(acts))
	for i, a := range acts {
		rows[i] = table.Row(report.Row(a))
	}
	m.table.SetRows(rows)
	// SetRows leaves the cursor at -1 after an empty table
	if c := m.table.Cursor(); len(rows) > 0 && (c < 0 || c >= len(rows)) {
		m.table.SetCursor(min(max(c, 0), len(rows)-1))
	}
}

// SelectedID returns the ID of the highlighted activity, or "".
func (m TablePaneModel) SelectedID() string {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

// Update handles messages for the table pane.
func (m TablePaneModel) Update(msg tea.Msg) (TablePaneModel, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table pane.
func (m TablePaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	title := StyleTitle.Render("Activities")
	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, m.table.View()))
}

// SetSize updates the pane dimensions.
func (m *TablePaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	// Border (2) and title (1).
	m.table.SetWidth(max(w-2, 0))
	m.table.SetHeight(max(h-3, 1))
}

// SetFocused updates the focus state.
func (m *TablePaneModel) SetFocused(focused bool) {
	m.focused = focused
	if focused {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}
