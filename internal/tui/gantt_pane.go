package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/miniplan/internal/config"
	"github.com/aristath/miniplan/internal/scheduler"
)

// GanttPaneModel shows the chart for the current schedule.
type GanttPaneModel struct {
	acts    []*scheduler.Activity
	opts    GanttOptions
	width   int
	height  int
	focused bool
}

// NewGanttPaneModel creates a chart pane using the configured scale.
func NewGanttPaneModel(cfg config.GanttConfig) GanttPaneModel {
	return GanttPaneModel{
		opts: GanttOptions{DayWidth: cfg.DayWidth, MinDays: cfg.MinDays},
	}
}

// SetScale applies new chart settings.
func (m *GanttPaneModel) SetScale(cfg config.GanttConfig) {
	m.opts.DayWidth = cfg.DayWidth
	m.opts.MinDays = cfg.MinDays
}

// SetActivities replaces the charted rows, in display order.
func (m *GanttPaneModel) SetActivities(acts []*scheduler.Activity) {
	m.acts = acts
}

// Update handles messages for the Gantt pane.
func (m GanttPaneModel) Update(msg tea.Msg) (GanttPaneModel, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case KeyLeft:
			m.opts.Offset = max(m.opts.Offset-gridEvery, 0)
		case KeyRight:
			span := GanttSpan(m.acts, m.opts.withDefaults().MinDays)
			m.opts.Offset = min(m.opts.Offset+gridEvery, max(span-1, 0))
		}
	}
	return m, nil
}

// View renders the Gantt pane.
func (m GanttPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	opts := m.opts
	opts.Width = m.width - 2
	header := StyleTitle.Render("Gantt Chart") + "  " + GanttLegend()
	body := lipgloss.NewStyle().MaxHeight(max(m.height-3, 0)).Render(RenderGantt(m.acts, opts))

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

// SetSize updates the pane dimensions.
func (m *GanttPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused updates the focus state.
func (m *GanttPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
