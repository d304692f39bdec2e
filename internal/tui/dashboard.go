package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/watchout/internal/engine"
	"github.com/manav03panchal/watchout/internal/model"
)

// tickMsg is sent when the timer ticks.
type tickMsg time.Time

// dataMsg carries a fresh snapshot from the controller.
type dataMsg struct {
	reminders []model.Reminder
	timers    []engine.Timer
	library   int
	err       error
}

// DashboardModel is the main bubbletea model for the dashboard.
type DashboardModel struct {
	ctrl   engine.Controller
	remote bool
	now    func() time.Time

	// Data
	reminders []model.Reminder
	timers    []engine.Timer
	library   int
	loadedAt  time.Time

	// UI state
	cursor     int
	width      int
	height     int
	err        error
	message    string
	messageExp time.Time

	// Configuration
	tickInterval    time.Duration
	refreshInterval time.Duration
	callTimeout     time.Duration
}

// DashboardConfig holds configuration for the dashboard.
type DashboardConfig struct {
	Controller engine.Controller
	// Remote marks a controller backed by the daemon.
	Remote bool

	// TickInterval redraws countdowns. Default: 1s
	TickInterval time.Duration
	// RefreshInterval reloads reminders and timers. Default: 5s
	RefreshInterval time.Duration
	Now             func() time.Time
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(config DashboardConfig) *DashboardModel {
	if config.TickInterval == 0 {
		config.TickInterval = time.Second
	}
	if config.RefreshInterval == 0 {
		config.RefreshInterval = 5 * time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &DashboardModel{
		ctrl:            config.Controller,
		remote:          config.Remote,
		now:             config.Now,
		tickInterval:    config.TickInterval,
		refreshInterval: config.RefreshInterval,
		callTimeout:     5 * time.Second,
	}
}

// Init initializes the model.
func (m *DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		m.loadCmd(),
	)
}

// Update handles messages and updates the model.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		now := m.now()
		if !m.messageExp.IsZero() && now.After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		cmds := []tea.Cmd{m.tickCmd()}
		if m.due(now) {
			cmds = append(cmds, m.loadCmd())
		}
		return m, tea.Batch(cmds...)

	case dataMsg:
		m.apply(msg)
		return m, nil
	}

	return m, nil
}

// due reports whether the snapshot is stale or a timer has just fired.
func (m *DashboardModel) due(now time.Time) bool {
	if now.Sub(m.loadedAt) >= m.refreshInterval {
		return true
	}
	for _, t := range m.timers {
		if !now.Before(t.NextFire) {
			return true
		}
	}
	return false
}

// handleKeyPress handles keyboard input.
func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.reminders)-1 {
			m.cursor++
		}
		return m, nil

	case "d":
		r, ok := m.selected()
		if !ok {
			m.setMessage("Nothing to delete", 2*time.Second)
			return m, nil
		}
		if err := m.call(func(ctx context.Context) error { return m.ctrl.Remove(ctx, r.ID) }); err != nil {
			m.err = err
			return m, nil
		}
		m.setMessage(fmt.Sprintf("Deleted %q", r.Title), 2*time.Second)
		return m, m.loadCmd()

	case "s":
		r, ok := m.selected()
		if !ok {
			m.setMessage("Nothing to save", 2*time.Second)
			return m, nil
		}
		err := m.call(func(ctx context.Context) error {
			_, err := m.ctrl.SaveToLibrary(ctx, r.ID)
			return err
		})
		if err != nil {
			m.err = err
			return m, nil
		}
		m.setMessage(fmt.Sprintf("Saved %q to the library", r.Title), 2*time.Second)
		return m, m.loadCmd()

	case "r":
		m.setMessage("Refreshed", time.Second)
		return m, m.loadCmd()
	}

	return m, nil
}

// View renders the dashboard.
func (m *DashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	now := m.now()
	sections := []string{
		m.renderHeader(now),
		SummaryLine(len(m.reminders), len(m.timers), m.library, m.remote),
	}

	if m.err != nil {
		sections = append(sections, StyleError.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.message != "" {
		sections = append(sections, StyleWarning.Render(m.message))
	}

	sections = append(sections, "", NewListComponent(m.reminders, m.timers, m.cursor, m.width, now).View())
	sections = append(sections, HelpBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *DashboardModel) renderHeader(now time.Time) string {
	title := StyleTitle.Render("WatchOut")
	timeStr := StyleSubtitle.Render(now.Format("Mon Jan 2, 15:04:05"))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", timeStr)
}

// fetch reads reminders, timers and the library size from the controller.
func (m *DashboardModel) fetch() dataMsg {
	ctx, cancel := context.WithTimeout(context.Background(), m.callTimeout)
	defer cancel()

	reminders, err := m.ctrl.List(ctx)
	if err != nil {
		return dataMsg{err: err}
	}
	timers, err := m.ctrl.Timers(ctx)
	if err != nil {
		return dataMsg{err: err}
	}
	library, err := m.ctrl.ListLibrary(ctx)
	if err != nil {
		return dataMsg{err: err}
	}
	return dataMsg{reminders: reminders, timers: timers, library: len(library)}
}

func (m *DashboardModel) apply(msg dataMsg) {
	m.loadedAt = m.now()
	if msg.err != nil {
		m.err = msg.err
		return
	}
	m.reminders = msg.reminders
	m.timers = msg.timers
	m.library = msg.library
	m.err = nil

	if m.cursor >= len(m.reminders) {
		m.cursor = len(m.reminders) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *DashboardModel) selected() (model.Reminder, bool) {
	if m.cursor < 0 || m.cursor >= len(m.reminders) {
		return model.Reminder{}, false
	}
	return m.reminders[m.cursor], true
}

func (m *DashboardModel) call(fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.callTimeout)
	defer cancel()
	return fn(ctx)
}

// setMessage sets a temporary message.
func (m *DashboardModel) setMessage(msg string, duration time.Duration) {
	m.message = msg
	m.messageExp = m.now().Add(duration)
}

// tickCmd returns a command that sends a tick message.
func (m *DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadCmd returns a command that reloads the snapshot off the UI loop.
func (m *DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return m.fetch()
	}
}

// Run starts the dashboard TUI.
func Run(config DashboardConfig) error {
	p := tea.NewProgram(NewDashboardModel(config), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
