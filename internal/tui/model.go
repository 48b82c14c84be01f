package tui

import (
	"context"
	"errors"
	"fmt"

	"ezswitch/config/models"
	"ezswitch/config/validation"
	"ezswitch/internal/engine"
	"ezswitch/internal/envstore"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewState represents the current view state
type ViewState int

const (
	ViewMain ViewState = iota // Profile form
	ViewHelp                  // Help panel
)

const restartReminder = "Close and reopen VS Code or your terminal for the change to take effect."

// Model is the core state model for TUI
type Model struct {
	engine *engine.Engine
	runner *engine.Runner
	envs   envstore.Store
	events chan tea.Msg
	keys   KeyMap

	viewState ViewState

	// Form related
	inputs []textinput.Model
	focus  int // index into the visible fields, -1 for the profile row
	reveal bool

	// Background work
	busy    bool
	spinner spinner.Model

	// Status panel
	status    *engine.Status
	statusErr string

	// Messages and errors
	message  string
	warning  string
	errorMsg string

	// Window size
	width  int
	height int
}

// NewModel creates a new TUI model. Runner events are delivered through the
// model's own channel.
func NewModel(eng *engine.Engine, envs envstore.Store) Model {
	events := make(chan tea.Msg, 16)
	runner := engine.NewRunner(eng, envs, engine.Events{
		StatusChanged: func(s engine.Status) { events <- StatusChangedMsg{Status: s} },
		ApplyResult:   func(r engine.ApplyResult) { events <- ApplyResultMsg{Result: r} },
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		engine:    eng,
		runner:    runner,
		envs:      envs,
		events:    events,
		keys:      DefaultKeyMap(),
		viewState: ViewMain,
		inputs:    FormInputs(eng.Edits()),
		focus:     -1,
		busy:      true,
		spinner:   sp,
		width:     80,
		height:    24,
	}
}

// Init reads the environment, prefills empty fields and starts listening
// for runner events
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		startup(m.engine, m.envs),
		waitForEvent(m.events),
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StartupMsg:
		m.busy = false
		if msg.Err != nil {
			m.statusErr = msg.Err.Error()
		} else {
			status := msg.Status
			m.status = &status
			m.statusErr = ""
		}
		if msg.Prefilled {
			SetFormData(m.inputs, m.engine.Edits())
			m.message = "Filled empty fields from the current environment"
		}
		return m, nil

	case StatusChangedMsg:
		status := msg.Status
		m.status = &status
		m.statusErr = ""
		return m, waitForEvent(m.events)

	case ApplyResultMsg:
		m.applyResult(msg.Result)
		return m, waitForEvent(m.events)

	case OperationDoneMsg:
		m.busy = false
		if msg.Result.StatusErr != nil {
			m.statusErr = msg.Result.StatusErr.Error()
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) applyResult(result engine.ApplyResult) {
	m.message, m.warning, m.errorMsg = "", "", ""

	if result.Err != nil {
		var ve *validation.ValidationError
		switch {
		case errors.As(result.Err, &ve):
			m.errorMsg = fmt.Sprintf("Please enter the %s", FieldLabel(ve.Field))
		case envstore.IsTimeout(result.Err):
			m.errorMsg = "Timed out while updating the environment: " + result.Err.Error()
		default:
			m.errorMsg = "Failed to update the environment: " + result.Err.Error()
		}
		return
	}

	m.message = fmt.Sprintf("%s configuration applied. %s", profileLabel(result.Profile), restartReminder)
	if result.SaveErr != nil {
		m.warning = "Settings were not saved: " + result.SaveErr.Error()
	}
}

// handleKeyMsg dispatches keys by view
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.viewState {
	case ViewHelp:
		return m.handleHelpViewKeys(msg)
	default:
		return m.handleMainViewKeys(msg)
	}
}

func (m Model) handleHelpViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Back):
		m.viewState = ViewMain
	}
	return m, nil
}

// handleMainViewKeys handles the profile form. Letter shortcuts only work
// on the profile row so that they can be typed into fields.
func (m Model) handleMainViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visibleFields()

	switch {
	case key.Matches(msg, m.keys.Apply):
		return m.startApply()

	case key.Matches(msg, m.keys.Reveal):
		m.reveal = !m.reveal
		SetReveal(m.inputs, m.reveal)
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		m.focus = NextFocus(m.focus, len(visible))
		FocusField(m.inputs, visible, m.focus)
		return m, nil

	case key.Matches(msg, m.keys.PrevField):
		m.focus = PrevFocus(m.focus, len(visible))
		FocusField(m.inputs, visible, m.focus)
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.focus = -1
		FocusField(m.inputs, visible, m.focus)
		return m, nil

	case msg.String() == "f5":
		return m.startRefresh()
	}

	if m.focus >= 0 && m.focus < len(visible) {
		return m.updateField(msg, visible[m.focus])
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.viewState = ViewHelp
	case key.Matches(msg, m.keys.Refresh):
		return m.startRefresh()
	case key.Matches(msg, m.keys.Zai):
		m.selectProfile(models.ProfileZai)
	case key.Matches(msg, m.keys.Claude):
		m.selectProfile(models.ProfileClaude)
	case key.Matches(msg, m.keys.Custom):
		m.selectProfile(models.ProfileCustom)
	case key.Matches(msg, m.keys.NextProfile):
		m.selectProfile(shiftProfile(m.engine.Edits().Selected, 1))
	case key.Matches(msg, m.keys.PrevProfile):
		m.selectProfile(shiftProfile(m.engine.Edits().Selected, -1))
	case key.Matches(msg, m.keys.Mode):
		m.toggleClaudeMode()
	}
	return m, nil
}

// updateField passes the key to the focused input and writes the new value
// through to the engine
func (m Model) updateField(msg tea.KeyMsg, index int) (tea.Model, tea.Cmd) {
	before := m.inputs[index].Value()
	var cmd tea.Cmd
	m.inputs[index], cmd = m.inputs[index].Update(msg)

	if after := m.inputs[index].Value(); after != before {
		if err := m.engine.SetField(formFields[index], after); err != nil {
			m.warning = "Settings not saved: " + err.Error()
		} else {
			m.warning = ""
		}
	}
	return m, cmd
}

func (m *Model) selectProfile(kind models.ProfileKind) {
	if err := m.engine.Select(kind); err != nil {
		m.errorMsg = err.Error()
		return
	}
	m.errorMsg = ""
	m.focus = -1
	FocusField(m.inputs, m.visibleFields(), m.focus)
}

func (m *Model) toggleClaudeMode() {
	edits := m.engine.Edits()
	if edits.Selected != models.ProfileClaude {
		return
	}
	next := models.ClaudeAPIKey
	if edits.ClaudeMode == models.ClaudeAPIKey {
		next = models.ClaudeSubscription
	}
	if err := m.engine.SetClaudeMode(next); err != nil {
		m.errorMsg = err.Error()
		return
	}
	m.errorMsg = ""
}

func (m Model) startApply() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	pending, err := m.runner.Apply()
	if err != nil {
		m.errorMsg = err.Error()
		return m, nil
	}
	m.busy = true
	m.message, m.warning, m.errorMsg = "", "", ""
	return m, tea.Batch(waitForPending(pending, false), m.spinner.Tick)
}

func (m Model) startRefresh() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	pending, err := m.runner.Refresh()
	if err != nil {
		m.errorMsg = err.Error()
		return m, nil
	}
	m.busy = true
	return m, tea.Batch(waitForPending(pending, true), m.spinner.Tick)
}

func (m Model) visibleFields() []int {
	edits := m.engine.Edits()
	return VisibleFields(edits.Selected, edits.ClaudeMode)
}

// View renders the current view
func (m Model) View() string {
	switch m.viewState {
	case ViewHelp:
		return m.RenderHelpView()
	default:
		return m.RenderMainView()
	}
}

// startup reads the environment once, prefills empty fields and classifies
func startup(eng *engine.Engine, envs envstore.Store) tea.Cmd {
	return func() tea.Msg {
		snap, err := envstore.ReadSnapshot(context.Background(), envs)
		if err != nil {
			return StartupMsg{Err: err}
		}
		return StartupMsg{
			Snapshot:  snap,
			Status:    engine.ClassifyStatus(snap),
			Prefilled: eng.Prefill(snap),
		}
	}
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func waitForPending(p *engine.Pending, refresh bool) tea.Cmd {
	return func() tea.Msg {
		result, _ := p.Wait(context.Background())
		return OperationDoneMsg{Refresh: refresh, Result: result}
	}
}

func shiftProfile(current models.ProfileKind, delta int) models.ProfileKind {
	kinds := models.ProfileKinds()
	idx := 0
	for i, k := range kinds {
		if k == current {
			idx = i
		}
	}
	idx = (idx + delta + len(kinds)) % len(kinds)
	return kinds[idx]
}
