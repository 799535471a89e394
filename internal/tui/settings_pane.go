package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/miniplan/internal/config"
)

// settingsSavedMsg is sent after the settings were written to disk.
type settingsSavedMsg struct {
	path string
}

// SettingsPaneModel manages the settings form overlay.
type SettingsPaneModel struct {
	form        *huh.Form
	config      *config.Config
	globalPath  string
	projectPath string
	width       int
	height      int
	visible     bool
	err         error

	// Shared across model copies so huh's value pointers stay valid.
	values *settingsValues
}

// settingsValues are the form field bindings (strings for Huh).
type settingsValues struct {
	saveTarget string
	timeUnit   string
	dayWidth   string
	minDays    string
}

// NewSettingsPaneModel creates a new settings pane.
func NewSettingsPaneModel(cfg *config.Config, globalPath, projectPath string) SettingsPaneModel {
	return SettingsPaneModel{
		config:      cfg,
		globalPath:  globalPath,
		projectPath: projectPath,
		values:      &settingsValues{},
	}
}

// buildForm constructs the Huh form with all settings fields.
func (m *SettingsPaneModel) buildForm() {
	v := m.values
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("saveTarget").
				Title("Save To").
				Options(
					huh.NewOption(fmt.Sprintf("Global (%s)", m.globalPath), "global"),
					huh.NewOption(fmt.Sprintf("Project (%s)", m.projectPath), "project"),
				).
				Value(&v.saveTarget),
		).Title("Save Target"),

		huh.NewGroup(
			huh.NewInput().
				Key("timeUnit").
				Title("Time Unit").
				Placeholder("days").
				Value(&v.timeUnit).
				Validate(requireText("time unit")),

			huh.NewInput().
				Key("dayWidth").
				Title("Cells per Time Unit").
				Value(&v.dayWidth).
				Validate(positiveInt("cells per time unit")),

			huh.NewInput().
				Key("minDays").
				Title("Minimum Timeline Length").
				Value(&v.minDays).
				Validate(positiveInt("minimum timeline length")),
		).Title("Gantt Chart"),
	)
}

func positiveInt(field string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive whole number", field)
		}
		return nil
	}
}

// Init initializes the settings pane.
func (m SettingsPaneModel) Init() tea.Cmd {
	if m.form == nil {
		return nil
	}
	return m.form.Init()
}

// Update handles messages for the settings pane.
func (m SettingsPaneModel) Update(msg tea.Msg) (SettingsPaneModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == KeyEsc {
		// Cancel without saving
		m.visible = false
		return m, nil
	}

	// Delegate to form
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.visible = false
	case huh.StateCompleted:
		m.applyFormToConfig()

		targetPath := m.globalPath
		if m.values.saveTarget == "project" {
			targetPath = m.projectPath
		}

		if err := config.Save(m.config, targetPath); err != nil {
			m.err = err
			m.buildForm()
			return m, m.form.Init()
		}
		m.visible = false
		return m, tea.Batch(cmd, func() tea.Msg { return settingsSavedMsg{path: targetPath} })
	}

	return m, cmd
}

// applyFormToConfig copies form field values back to the config struct.
// The values were validated by the form.
func (m *SettingsPaneModel) applyFormToConfig() {
	v := m.values
	m.config.TimeUnit = strings.TrimSpace(v.timeUnit)
	if n, err := strconv.Atoi(strings.TrimSpace(v.dayWidth)); err == nil {
		m.config.Gantt.DayWidth = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.minDays)); err == nil {
		m.config.Gantt.MinDays = n
	}
}

// View renders the settings pane.
func (m SettingsPaneModel) View() string {
	if !m.visible {
		return ""
	}

	content := m.form.View()
	if m.err != nil {
		content = StyleStatusError.Render(fmt.Sprintf("✗ Error saving: %v", m.err)) + "\n\n" + content
	}

	// Wrap in styled border
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0))

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("62")).
		Render("⚙ Settings")

	return lipgloss.JoinVertical(lipgloss.Left, title, style.Render(content))
}

// SetSize updates the dimensions of the settings pane.
func (m *SettingsPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if m.form != nil && w > 8 && h > 8 {
		m.form.WithWidth(w - 8).WithHeight(h - 8)
	}
}

// SetVisible shows or hides the settings pane. Showing it rebuilds the form
// from the current config.
func (m *SettingsPaneModel) SetVisible(visible bool) {
	m.visible = visible
	m.err = nil
	if !visible {
		return
	}

	*m.values = settingsValues{
		saveTarget: "global",
		timeUnit:   m.config.TimeUnit,
		dayWidth:   strconv.Itoa(m.config.Gantt.DayWidth),
		minDays:    strconv.Itoa(m.config.Gantt.MinDays),
	}
	m.buildForm()
	m.SetSize(m.width, m.height)
}

// IsVisible returns whether the settings pane is currently visible.
func (m SettingsPaneModel) IsVisible() bool {
	return m.visible
}
