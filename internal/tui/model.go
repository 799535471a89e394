package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/miniplan/internal/config"
	"github.com/aristath/miniplan/internal/events"
	"github.com/aristath/miniplan/internal/project"
	"github.com/aristath/miniplan/internal/report"
	"github.com/aristath/miniplan/internal/scheduler"
	"github.com/aristath/miniplan/internal/session"
)

// PaneID identifies which pane is focused.
type PaneID int

const (
	PaneTable PaneID = iota
	PaneGantt
	paneCount
)

// opDoneMsg reports the outcome of a session edit run as a command.
type opDoneMsg struct {
	err      error
	fromForm bool // A rejected form submission reopens the form
}

// scheduleDoneMsg reports the outcome of a scheduling run.
type scheduleDoneMsg struct {
	sum *project.Summary
	err error
}

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	ctx          context.Context
	session      *session.Session
	config       *config.Config
	tablePane    TablePaneModel
	ganttPane    GanttPaneModel
	formPane     FormPaneModel
	settingsPane SettingsPaneModel
	focusedPane  PaneID
	eventSub     <-chan events.Event
	status       string
	statusErr    bool
	width        int
	height       int
	quitting     bool
	showForm     bool
	showSettings bool
}

// New creates a new TUI model over sess, which should already be loaded.
// It subscribes to all events from the event bus using SubscribeAll; bus may
// be nil. The settings form saves to globalPath or projectPath.
func New(ctx context.Context, sess *session.Session, bus *events.EventBus, cfg *config.Config, globalPath, projectPath string) Model {
	m := Model{
		ctx:          ctx,
		session:      sess,
		config:       cfg,
		tablePane:    NewTablePaneModel(),
		ganttPane:    NewGanttPaneModel(cfg.Gantt),
		formPane:     NewFormPaneModel(),
		settingsPane: NewSettingsPaneModel(cfg, globalPath, projectPath),
		focusedPane:  PaneTable,
		status:       "Ready. Press a to add an activity or l to load the sample project.",
	}
	if bus != nil {
		m.eventSub = bus.SubscribeAll(256)
	}
	m.refresh()
	m.updateFocusStates()
	return m
}

// Init initializes the model and returns the initial command.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.eventSub)
}

// waitForEvent returns a command that waits for the next event from the event bus.
func waitForEvent(sub <-chan events.Event) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-sub
		if !ok {
			return nil // bus closed
		}
		return event
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}

		// Forms are modal while open.
		if m.showForm {
			var cmd tea.Cmd
			m.formPane, cmd = m.formPane.Update(msg)
			m.showForm = m.formPane.IsVisible()
			return m, cmd
		}
		if m.showSettings {
			var cmd tea.Cmd
			m.settingsPane, cmd = m.settingsPane.Update(msg)
			m.showSettings = m.settingsPane.IsVisible()
			return m, cmd
		}

		switch msg.String() {
		case KeyQuit:
			m.quitting = true
			return m, tea.Quit

		case KeyTab:
			m.focusedPane = (m.focusedPane + 1) % paneCount
			m.updateFocusStates()

		case KeyShiftTab:
			m.focusedPane = (m.focusedPane + paneCount - 1) % paneCount
			m.updateFocusStates()

		case KeySettings:
			m.showSettings = true
			m.settingsPane.SetVisible(true)
			cmds = append(cmds, m.settingsPane.Init())

		case KeyAdd:
			m.showForm = true
			cmds = append(cmds, m.formPane.OpenAdd())

		case KeyEdit:
			a, ok := m.session.Get(m.tablePane.SelectedID())
			if !ok {
				m.setStatus("Select an activity to edit.", true)
				break
			}
			m.showForm = true
			cmds = append(cmds, m.formPane.OpenEdit(a))

		case KeyDelete:
			id := m.tablePane.SelectedID()
			if id == "" {
				m.setStatus("Select an activity to delete.", true)
				break
			}
			cmds = append(cmds, m.removeCmd(id))

		case KeyRun:
			cmds = append(cmds, m.runCmd())

		case KeySample:
			cmds = append(cmds, m.sampleCmd())

		case KeyClear:
			cmds = append(cmds, m.clearCmd())

		default:
			// Delegate to focused pane
			switch m.focusedPane {
			case PaneTable:
				var cmd tea.Cmd
				m.tablePane, cmd = m.tablePane.Update(msg)
				cmds = append(cmds, cmd)
			case PaneGantt:
				var cmd tea.Cmd
				m.ganttPane, cmd = m.ganttPane.Update(msg)
				cmds = append(cmds, cmd)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.computeLayout()

	case settingsSavedMsg:
		m.showSettings = false
		m.ganttPane.SetScale(m.config.Gantt)
		m.setStatus(fmt.Sprintf("Settings saved to %s.", msg.path), false)

	case activitySubmittedMsg:
		m.showForm = false
		cmds = append(cmds, m.saveCmd(msg.activity, msg.edit))

	case opDoneMsg:
		m.refresh()
		if msg.err != nil {
			if msg.fromForm {
				m.showForm = true
				cmds = append(cmds, m.formPane.ShowError(msg.err))
			}
			m.setStatus(describeError(msg.err), true)
		}

	case scheduleDoneMsg:
		m.refresh()
		if msg.err != nil {
			m.setStatus(describeError(msg.err), true)
		} else {
			m.setStatus(fmt.Sprintf("Scheduled %d activities.", len(msg.sum.Activities)), false)
		}

	case events.ActivityAddedEvent:
		m.refresh()
		m.setStatus(fmt.Sprintf("Activity '%s' added. Press r to update the schedule.", msg.ID), false)
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.ActivityUpdatedEvent:
		m.refresh()
		m.setStatus(fmt.Sprintf("Activity '%s' updated. Press r to update the schedule.", msg.ID), false)
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.ActivityRemovedEvent:
		m.refresh()
		if len(msg.Dependents) > 0 {
			m.setStatus(fmt.Sprintf("Activity '%s' deleted; still referenced by %s.",
				msg.ID, strings.Join(msg.Dependents, ", ")), true)
		} else {
			m.setStatus(fmt.Sprintf("Activity '%s' deleted. Press r to update the schedule.", msg.ID), false)
		}
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.ProjectLoadedEvent:
		m.refresh()
		if msg.Source == "clear" {
			m.setStatus("Project cleared.", false)
		} else {
			m.setStatus(fmt.Sprintf("Loaded %d activities (%s).", msg.Count, msg.Source), false)
		}
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.ScheduleComputedEvent:
		m.refresh()
		m.setStatus(fmt.Sprintf("Scheduled %d activities in %s.", msg.Activities, msg.Elapsed), false)
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.ScheduleFailedEvent:
		m.setStatus(describeError(msg.Err), true)
		cmds = append(cmds, waitForEvent(m.eventSub))

	default:
		// Form internals (cursor blink, validation) while one is open.
		var cmd tea.Cmd
		switch {
		case m.showForm:
			m.formPane, cmd = m.formPane.Update(msg)
		case m.showSettings:
			m.settingsPane, cmd = m.settingsPane.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) saveCmd(a *scheduler.Activity, edit bool) tea.Cmd {
	sess, ctx := m.session, m.ctx
	return func() tea.Msg {
		var err error
		if edit {
			err = sess.Update(ctx, a)
		} else {
			err = sess.Add(ctx, a)
		}
		return opDoneMsg{err: err, fromForm: true}
	}
}

func (m Model) removeCmd(id string) tea.Cmd {
	sess, ctx := m.session, m.ctx
	return func() tea.Msg {
		_, err := sess.Remove(ctx, id)
		return opDoneMsg{err: err}
	}
}

func (m Model) sampleCmd() tea.Cmd {
	sess, ctx := m.session, m.ctx
	return func() tea.Msg {
		return opDoneMsg{err: sess.LoadSample(ctx)}
	}
}

func (m Model) clearCmd() tea.Cmd {
	sess, ctx := m.session, m.ctx
	return func() tea.Msg {
		return opDoneMsg{err: sess.Clear(ctx)}
	}
}

func (m Model) runCmd() tea.Cmd {
	sess, ctx := m.session, m.ctx
	return func() tea.Msg {
		sum, err := sess.Run(ctx)
		return scheduleDoneMsg{sum: sum, err: err}
	}
}

// describeError turns session and engine errors into status bar text.
func describeError(err error) string {
	var cycleErr *scheduler.CycleError
	var refErr *scheduler.ReferenceError
	switch {
	case errors.Is(err, session.ErrEmptyProject):
		return "No activities to schedule."
	case errors.As(err, &cycleErr) && len(cycleErr.Cycle) > 0:
		return "Circular dependency detected: " + report.FormatCriticalPath(cycleErr.Cycle)
	case errors.As(err, &cycleErr):
		return "Circular dependency detected in the activity network."
	case errors.As(err, &refErr):
		return fmt.Sprintf("Activity '%s' references unknown predecessor '%s'.", refErr.ActivityID, refErr.PredecessorID)
	default:
		return "Error: " + err.Error()
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// refresh reloads both panes from the session.
func (m *Model) refresh() {
	acts := m.session.Activities()
	m.tablePane.SetActivities(acts)
	m.ganttPane.SetActivities(ganttOrder(acts))
}

// ganttOrder sorts rows by early start so the chart reads as a staircase.
func ganttOrder(acts []*scheduler.Activity) []*scheduler.Activity {
	out := make([]*scheduler.Activity, len(acts))
	copy(out, acts)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ES != out[j].ES {
			return out[i].ES < out[j].ES
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.showForm {
		return m.formPane.View()
	}
	if m.showSettings {
		return m.settingsPane.View()
	}

	mainContent := lipgloss.JoinVertical(lipgloss.Left, m.tablePane.View(), m.ganttPane.View())
	return lipgloss.JoinVertical(lipgloss.Left, mainContent, m.statusView(), HelpView())
}

// statusView renders the status bar: project summary, then the last message.
func (m Model) statusView() string {
	summary := report.StatusLine(m.session.Len(), m.session.Summary(), m.config.TimeUnit)
	msgStyle := StyleStatusOK
	if m.statusErr {
		msgStyle = StyleStatusError
	}
	line := StyleStatus.Render(summary) + "  " + msgStyle.Render(m.status)
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

// computeLayout calculates pane dimensions and updates all child models.
func (m *Model) computeLayout() {
	availableHeight := m.height - 2 // status and help bars
	tableHeight := (availableHeight * 45) / 100
	ganttHeight := availableHeight - tableHeight

	m.tablePane.SetSize(m.width, tableHeight)
	m.ganttPane.SetSize(m.width, ganttHeight)
	m.formPane.SetSize(m.width, availableHeight)
	m.settingsPane.SetSize(m.width, availableHeight)

	m.updateFocusStates()
}

// updateFocusStates updates the focus state of all panes.
func (m *Model) updateFocusStates() {
	m.tablePane.SetFocused(m.focusedPane == PaneTable)
	m.ganttPane.SetFocused(m.focusedPane == PaneGantt)
}
