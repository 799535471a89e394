package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Border styles
var (
	StyleFocusedBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62"))

	StyleUnfocusedBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))
)

// Status bar styles
var (
	StyleStatus = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	StyleStatusOK = lipgloss.NewStyle().
			Foreground(lipgloss.Color("green"))

	StyleStatusError = lipgloss.NewStyle().
				Foreground(lipgloss.Color("red")).
				Bold(true)
)

// Gantt chart styles. Bars only set colors so the glyphs stay readable
// on terminals without color support.
var (
	StyleGanttHeader   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4a6a8a"))
	StyleGanttLabel    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8aa0b8"))
	StyleGanttCritical = lipgloss.NewStyle().Foreground(lipgloss.Color("#e04050")).Background(lipgloss.Color("#9e2a30"))
	StyleGanttNormal   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4a90d0")).Background(lipgloss.Color("#2a6090"))
	StyleGanttFloat    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3a5070")).Background(lipgloss.Color("#253040"))
	StyleGanttGrid     = lipgloss.NewStyle().Foreground(lipgloss.Color("#2a3a4a"))
	StyleGanttEmpty    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3a5070"))
)

// UI element styles
var (
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	StyleHelp = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)
