package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/miniplan/internal/scheduler"
)

// activitySubmittedMsg carries a validated activity out of the form.
type activitySubmittedMsg struct {
	activity *scheduler.Activity
	edit     bool
}

// FormPaneModel manages the add/edit activity form overlay.
type FormPaneModel struct {
	form    *huh.Form
	edit    bool // Editing keeps the ID fixed
	width   int
	height  int
	visible bool
	err     error

	// Shared across model copies so huh's value pointers stay valid.
	values *formValues
}

// formValues are the form field bindings (strings for Huh).
type formValues struct {
	id           string
	name         string
	duration     string
	predecessors string
	resource     string
	description  string
}

// NewFormPaneModel creates a hidden form pane.
func NewFormPaneModel() FormPaneModel {
	return FormPaneModel{values: &formValues{}}
}

// OpenAdd shows an empty form for a new activity.
func (m *FormPaneModel) OpenAdd() tea.Cmd {
	m.edit = false
	*m.values = formValues{duration: "1"}
	return m.open()
}

// OpenEdit shows the form filled in from a.
func (m *FormPaneModel) OpenEdit(a *scheduler.Activity) tea.Cmd {
	m.edit = true
	*m.values = formValues{
		id:           a.ID,
		name:         a.Name,
		duration:     strconv.Itoa(a.Duration),
		predecessors: scheduler.FormatPredecessors(a.Predecessors),
		resource:     a.Resource,
		description:  a.Description,
	}
	return m.open()
}

func (m *FormPaneModel) open() tea.Cmd {
	m.visible = true
	m.err = nil
	m.buildForm()
	m.SetSize(m.width, m.height)
	return m.form.Init()
}

// buildForm constructs the Huh form for the current bindings.
func (m *FormPaneModel) buildForm() {
	v := m.values
	var fields []huh.Field
	if !m.edit {
		fields = append(fields, huh.NewInput().
			Key("id").
			Title("ID").
			Placeholder("A").
			Value(&v.id).
			Validate(requireText("id")))
	}
	fields = append(fields,
		huh.NewInput().
			Key("name").
			Title("Activity Name").
			Value(&v.name).
			Validate(requireText("name")),

		huh.NewInput().
			Key("duration").
			Title("Duration").
			Value(&v.duration).
			Validate(validateDuration),

		huh.NewInput().
			Key("predecessors").
			Title("Predecessors").
			Description("Comma-separated IDs, e.g. A, B").
			Value(&v.predecessors),

		huh.NewInput().
			Key("resource").
			Title("Resource").
			Value(&v.resource),

		huh.NewText().
			Key("description").
			Title("Description").
			Lines(3).
			Value(&v.description),
	)

	title := "Add Activity"
	if m.edit {
		title = fmt.Sprintf("Edit Activity %s", v.id)
	}
	m.form = huh.NewForm(huh.NewGroup(fields...).Title(title))
}

func requireText(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateDuration(s string) error {
	_, err := parseDuration(s)
	return err
}

func parseDuration(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("duration must be a whole number")
	}
	if n < 0 {
		return 0, errors.New("duration must be non-negative")
	}
	return n, nil
}

// activity builds the activity from the form bindings.
func (m *FormPaneModel) activity() (*scheduler.Activity, error) {
	v := m.values
	dur, err := parseDuration(v.duration)
	if err != nil {
		return nil, err
	}
	a, err := scheduler.NewActivity(v.id, v.name, dur, scheduler.ParsePredecessors(v.predecessors)...)
	if err != nil {
		return nil, err
	}
	a.Resource = strings.TrimSpace(v.resource)
	a.Description = strings.TrimSpace(v.description)
	return a, nil
}

// Update handles messages for the form pane.
func (m FormPaneModel) Update(msg tea.Msg) (FormPaneModel, tea.Cmd) {
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
		a, err := m.activity()
		if err != nil {
			// Keep the form open on the rejected values.
			m.err = err
			m.buildForm()
			return m, m.form.Init()
		}
		m.visible = false
		edit := m.edit
		return m, tea.Batch(cmd, func() tea.Msg {
			return activitySubmittedMsg{activity: a, edit: edit}
		})
	}

	return m, cmd
}

// View renders the form pane.
func (m FormPaneModel) View() string {
	if !m.visible {
		return ""
	}

	content := m.form.View()
	if m.err != nil {
		content = StyleStatusError.Render(fmt.Sprintf("✗ %v", m.err)) + "\n\n" + content
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0))

	return style.Render(content)
}

// SetSize updates the dimensions of the form pane.
func (m *FormPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if m.form != nil && w > 8 && h > 8 {
		m.form.WithWidth(w - 8).WithHeight(h - 8)
	}
}

// ShowError reports a rejected submission and reopens the form with the
// same values, e.g. after a duplicate ID.
func (m *FormPaneModel) ShowError(err error) tea.Cmd {
	m.visible = true
	m.err = err
	m.buildForm()
	m.SetSize(m.width, m.height)
	return m.form.Init()
}

// IsVisible returns whether the form pane is currently visible.
func (m FormPaneModel) IsVisible() bool {
	return m.visible
}
