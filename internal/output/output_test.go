package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/watchout/internal/engine"
	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/model"
)

var now = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func sampleReminders() []model.Reminder {
	return []model.Reminder{
		{ID: "a1b2c3d4-0000-0000-0000-000000000001", Title: "Stretch", Description: "Stand up", Frequency: model.Recurring(model.Interval30s), CreatedAt: now},
		{ID: "e5f6a7b8-0000-0000-0000-000000000002", Title: "Water", Description: "Drink", Frequency: model.Recurring(model.Interval1h), CreatedAt: now},
	}
}

func newBuffered(format Format) (*Formatter, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Formatter{Writer: &buf, Format: format, ColorMode: ColorNever}, &buf
}

// =============================================================================
// Formatter Tests
// =============================================================================

func TestNewFormatter(t *testing.T) {
	f := NewFormatter()
	assert.NotNil(t, f)
	assert.Equal(t, FormatCLI, f.Format)
	assert.Equal(t, ColorAuto, f.ColorMode)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatCLI, "cli": FormatCLI, "json": FormatJSON, "plain": FormatPlain} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("yaml")
	assert.Error(t, err)
}

func TestParseColorMode(t *testing.T) {
	got, err := ParseColorMode("never")
	require.NoError(t, err)
	assert.Equal(t, ColorNever, got)

	got, err = ParseColorMode("")
	require.NoError(t, err)
	assert.Equal(t, ColorAuto, got)

	_, err = ParseColorMode("sometimes")
	assert.Error(t, err)
}

func TestFormatterIsColorEnabled(t *testing.T) {
	t.Run("color_always", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorAlways}
		assert.True(t, f.IsColorEnabled())
	})

	t.Run("color_never", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorNever}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("plain_overrides_always", func(t *testing.T) {
		f := &Formatter{Format: FormatPlain, ColorMode: ColorAlways}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("color_auto_non_terminal", func(t *testing.T) {
		var buf bytes.Buffer
		f := &Formatter{Writer: &buf, ColorMode: ColorAuto}
		// Buffer is not a terminal
		assert.False(t, f.IsColorEnabled())
	})
}

func TestFormatterPrint(t *testing.T) {
	f, buf := newBuffered(FormatCLI)

	f.Print("hello")
	f.Println(" world")
	f.Printf("%d items\n", 3)
	assert.Equal(t, "hello world\n3 items\n", buf.String())
}

func TestFormatterJSON(t *testing.T) {
	f, buf := newBuffered(FormatJSON)
	assert.True(t, f.IsJSON())

	require.NoError(t, f.JSON(map[string]string{"key": "value"}))
	assert.Contains(t, buf.String(), `"key": "value"`)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{5*time.Minute + 30*time.Second, "5m 30s"},
		{2 * time.Hour, "2h"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d))
	}
}

func TestFormatTime(t *testing.T) {
	local := time.Date(2026, 1, 15, 14, 30, 45, 0, time.Local)
	assert.Equal(t, "2026-01-15 14:30:45", FormatTime(local))
	assert.Equal(t, "2026-01-15 14:30", FormatTimeShort(local))
}

// =============================================================================
// CLI Formatter Tests
// =============================================================================

func TestCLIFormatterMessages(t *testing.T) {
	f, buf := newBuffered(FormatCLI)
	c := NewCLIFormatter(f)

	c.Title("Reminders")
	c.Success("Added")
	c.Warning("Careful")
	c.Error("Failed")
	c.Muted("quiet")

	out := buf.String()
	assert.Contains(t, out, "Reminders\n")
	assert.Contains(t, out, "✓ Added")
	assert.Contains(t, out, "⚠ Careful")
	assert.Contains(t, out, "✗ Failed")
	assert.Contains(t, out, "quiet")
}

func TestCLIFormatterPrintReminders(t *testing.T) {
	f, buf := newBuffered(FormatCLI)
	c := NewCLIFormatter(f)
	list := sampleReminders()

	c.PrintReminders(list, []engine.Timer{{ID: list[0].ID, NextFire: now.Add(25 * time.Second)}}, now)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[0], "NEXT")
	assert.Contains(t, lines[2], "a1b2c3d4")
	assert.Contains(t, lines[2], "in 25 seconds")
	assert.Contains(t, lines[3], "Water")
	assert.Contains(t, lines[3], "paused")
}

func TestCLIFormatterPrintRemindersEmpty(t *testing.T) {
	f, buf := newBuffered(FormatCLI)
	NewCLIFormatter(f).PrintReminders(nil, nil, now)
	assert.Contains(t, buf.String(), "No active reminders.")
}

func TestCLIFormatterPrintLibrary(t *testing.T) {
	f, buf := newBuffered(FormatCLI)
	c := NewCLIFormatter(f)

	c.PrintLibrary(nil)
	assert.Contains(t, buf.String(), "The library is empty.")

	buf.Reset()
	c.PrintLibrary(sampleReminders())
	assert.Contains(t, buf.String(), "DESCRIPTION")
	assert.Contains(t, buf.String(), "Drink")
}

func TestCLIFormatterPrintReminder(t *testing.T) {
	f, buf := newBuffered(FormatCLI)
	c := NewCLIFormatter(f)
	r := sampleReminders()[0]
	next := now.Add(30 * time.Second)

	c.PrintReminder(r, &next, now)
	out := buf.String()
	assert.Contains(t, out, "a1b2c3d4  Stretch")
	assert.Contains(t, out, "Frequency: Every 30 seconds")
	assert.Contains(t, out, "in 30 seconds")

	buf.Reset()
	c.PrintReminder(r, nil, now)
	assert.NotContains(t, buf.String(), "Next:")
}

func TestCLIFormatterPrintTablePlain(t *testing.T) {
	f, buf := newBuffered(FormatPlain)
	c := NewCLIFormatter(f)

	c.PrintTable([]string{"A", "B"}, []TableRow{{Columns: []string{"1", "2"}}, {Columns: []string{"3", "4"}}})
	assert.Equal(t, "1\t2\n3\t4\n", buf.String())

	buf.Reset()
	c.PrintTable([]string{"A"}, nil)
	assert.Empty(t, buf.String())
}

// =============================================================================
// JSON Formatter Tests
// =============================================================================

func TestNewReminderOutput(t *testing.T) {
	r := sampleReminders()[0]

	out := NewReminderOutput(r, nil)
	assert.False(t, out.Scheduled)
	assert.Empty(t, out.NextFire)

	next := now.Add(time.Minute)
	out = NewReminderOutput(r, &next)
	assert.True(t, out.Scheduled)
	assert.Equal(t, "2026-10-19T09:01:00Z", out.NextFire)
}

func TestJSONFormatterPrintReminders(t *testing.T) {
	f, buf := newBuffered(FormatJSON)
	list := sampleReminders()

	require.NoError(t, NewJSONFormatter(f).PrintReminders(list, []engine.Timer{{ID: list[1].ID, NextFire: now}}))

	var resp RemindersResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalCount)
	assert.Equal(t, 1, resp.Scheduled)
	assert.False(t, resp.Reminders[0].Scheduled)
	assert.True(t, resp.Reminders[1].Scheduled)
	assert.Equal(t, "Water", resp.Reminders[1].Title)
}

func TestJSONFormatterEmptyLists(t *testing.T) {
	f, buf := newBuffered(FormatJSON)
	j := NewJSONFormatter(f)

	require.NoError(t, j.PrintReminders(nil, nil))
	assert.Contains(t, buf.String(), `"reminders": []`)

	buf.Reset()
	require.NoError(t, j.PrintLibrary(nil))
	assert.Contains(t, buf.String(), `"library": []`)
}

func TestJSONFormatterPrintAction(t *testing.T) {
	f, buf := newBuffered(FormatJSON)
	j := NewJSONFormatter(f)
	r := sampleReminders()[0]

	require.NoError(t, j.PrintAction("added", &r, nil))
	var resp ActionResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "added", resp.Status)
	require.NotNil(t, resp.Reminder)
	assert.Equal(t, r.ID, resp.Reminder.ID)

	buf.Reset()
	require.NoError(t, j.PrintActionID("removed", r.ID))
	assert.Contains(t, buf.String(), `"id": "`+r.ID+`"`)
	assert.NotContains(t, buf.String(), `"reminder"`)
}

func TestJSONFormatterPrintError(t *testing.T) {
	f, buf := newBuffered(FormatJSON)
	j := NewJSONFormatter(f)

	require.NoError(t, j.PrintError(errors.NewValidationError("title", "title is required", "Pass a title.")))
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "title is required", resp.Error)
	assert.Equal(t, "title", resp.Field)
	assert.Equal(t, "Pass a title.", resp.Suggestion)

	buf.Reset()
	require.NoError(t, j.PrintError(errors.ErrDaemonNotRunning))
	resp = ErrorResponse{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Empty(t, resp.Field)
	assert.Contains(t, resp.Suggestion, "daemon start")
}
