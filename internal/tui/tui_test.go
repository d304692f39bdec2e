package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/watchout/internal/engine"
	"github.com/manav03panchal/watchout/internal/model"
	"github.com/manav03panchal/watchout/internal/storage"
)

func setupDashboard(t *testing.T) (*DashboardModel, *engine.Engine, *clock.Mock) {
	t.Helper()
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)

	mock := clock.NewMock()
	mock.Set(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))

	e := engine.New(storage.NewReminderStore(db, storage.StoreOptions{Clock: mock}), engine.Options{Arm: true, Clock: mock})
	t.Cleanup(func() { e.Close() })

	m := NewDashboardModel(DashboardConfig{Controller: e, Now: mock.Now})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, e, mock
}

func add(t *testing.T, e *engine.Engine, title string, i model.Interval) model.Reminder {
	t.Helper()
	r, err := e.Add(context.Background(), title, title+" description", model.Recurring(i))
	require.NoError(t, err)
	return r
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func reload(m *DashboardModel) {
	m.Update(m.fetch())
}

// =============================================================================
// ProgressBar Tests
// =============================================================================

func TestProgressBar(t *testing.T) {
	for _, pct := range []float64{-10, 0, 50, 100, 150} {
		assert.NotEmpty(t, ProgressBar(pct, 10))
	}
	assert.Greater(t, len(ProgressBar(50, 20)), len(ProgressBar(50, 10)))
}

// =============================================================================
// Component Tests
// =============================================================================

func TestListComponentEmpty(t *testing.T) {
	view := NewListComponent(nil, nil, 0, 80, time.Now()).View()
	assert.Contains(t, view, "No active reminders")
}

func TestListComponentCountdownAndPaused(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	reminders := []model.Reminder{
		{ID: "a", Title: "Stretch", Frequency: model.Recurring(model.Interval60s)},
		{ID: "b", Title: "Water", Frequency: model.Recurring(model.Interval1h)},
	}
	timers := []engine.Timer{{ID: "a", NextFire: now.Add(45 * time.Second)}}

	view := NewListComponent(reminders, timers, 1, 80, now).View()
	assert.Contains(t, view, "Stretch")
	assert.Contains(t, view, "00:45")
	assert.Contains(t, view, "Every 60 seconds")
	assert.Contains(t, view, "paused")
	assert.Contains(t, view, "›")
}

func TestSummaryLine(t *testing.T) {
	assert.Contains(t, SummaryLine(2, 1, 3, true), "2 active")
	assert.Contains(t, SummaryLine(2, 1, 3, true), "3 in library")
	assert.Contains(t, SummaryLine(0, 0, 0, false), "offline")
}

func TestHelpBar(t *testing.T) {
	help := HelpBar()
	for _, k := range []string{"select", "delete", "save", "refresh", "quit"} {
		assert.Contains(t, help, k)
	}
}

// =============================================================================
// Dashboard Tests
// =============================================================================

func TestDashboardLoading(t *testing.T) {
	m := NewDashboardModel(DashboardConfig{})
	assert.Equal(t, "Loading...", m.View())
	assert.Equal(t, time.Second, m.tickInterval)
	assert.Equal(t, 5*time.Second, m.refreshInterval)
}

func TestDashboardShowsReminders(t *testing.T) {
	m, e, _ := setupDashboard(t)
	r := add(t, e, "Stretch", model.Interval30s)
	_, err := e.SaveToLibrary(context.Background(), r.ID)
	require.NoError(t, err)

	reload(m)
	view := m.View()
	assert.Contains(t, view, "WatchOut")
	assert.Contains(t, view, "Stretch")
	assert.Contains(t, view, "00:30")
	assert.Contains(t, view, "1 in library")
}

func TestDashboardNavigation(t *testing.T) {
	m, e, _ := setupDashboard(t)
	add(t, e, "One", model.Interval30s)
	add(t, e, "Two", model.Interval60s)
	reload(m)

	m.Update(key("up"))
	assert.Equal(t, 0, m.cursor)
	m.Update(key("down"))
	assert.Equal(t, 1, m.cursor)
	m.Update(key("down"))
	assert.Equal(t, 1, m.cursor)
	m.Update(key("k"))
	assert.Equal(t, 0, m.cursor)
}

func TestDashboardDelete(t *testing.T) {
	m, e, _ := setupDashboard(t)
	add(t, e, "One", model.Interval30s)
	two := add(t, e, "Two", model.Interval60s)
	reload(m)

	m.Update(key("down"))
	_, cmd := m.Update(key("d"))
	require.NotNil(t, cmd)
	assert.Contains(t, m.message, "Two")

	m.Update(cmd())
	require.Len(t, m.reminders, 1)
	assert.Equal(t, 0, m.cursor)

	ids, err := e.ActiveIDs(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, ids, two.ID)
}

func TestDashboardSave(t *testing.T) {
	m, e, _ := setupDashboard(t)
	add(t, e, "One", model.Interval30s)
	reload(m)

	_, cmd := m.Update(key("s"))
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Equal(t, 1, m.library)
	assert.Len(t, m.reminders, 1)
}

func TestDashboardEmptyActions(t *testing.T) {
	m, _, _ := setupDashboard(t)
	reload(m)

	_, cmd := m.Update(key("d"))
	assert.Nil(t, cmd)
	assert.Equal(t, "Nothing to delete", m.message)

	_, cmd = m.Update(key("s"))
	assert.Nil(t, cmd)
	assert.Equal(t, "Nothing to save", m.message)
}

func TestDashboardTickRefreshesWhenDue(t *testing.T) {
	m, e, mock := setupDashboard(t)
	add(t, e, "One", model.Interval30s)
	reload(m)
	assert.False(t, m.due(mock.Now()))

	m.setMessage("hello", time.Second)
	mock.Add(2 * time.Second)
	m.Update(tickMsg(mock.Now()))
	assert.Empty(t, m.message)

	mock.Add(28 * time.Second)
	assert.True(t, m.due(mock.Now()))
}

func TestDashboardError(t *testing.T) {
	m, _, _ := setupDashboard(t)
	m.Update(dataMsg{err: assert.AnError})
	assert.Contains(t, m.View(), "Error:")
}

func TestDashboardQuit(t *testing.T) {
	m, _, _ := setupDashboard(t)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestDashboardViewHelp(t *testing.T) {
	m, _, _ := setupDashboard(t)
	reload(m)
	assert.True(t, strings.Contains(m.View(), "refresh"))
}
