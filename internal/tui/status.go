package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/watchout/internal/engine"
	"github.com/manav03panchal/watchout/internal/model"
	"github.com/manav03panchal/watchout/internal/parser"
)

// ListComponent renders the active reminders with their countdowns.
type ListComponent struct {
	Reminders []model.Reminder
	Next      map[string]time.Time
	Cursor    int
	Width     int
	Now       time.Time
}

// NewListComponent creates a list component.
func NewListComponent(reminders []model.Reminder, timers []engine.Timer, cursor, width int, now time.Time) *ListComponent {
	next := make(map[string]time.Time, len(timers))
	for _, t := range timers {
		next[t.ID] = t.NextFire
	}
	return &ListComponent{
		Reminders: reminders,
		Next:      next,
		Cursor:    cursor,
		Width:     width,
		Now:       now,
	}
}

// View renders the list component.
func (lc *ListComponent) View() string {
	var content strings.Builder

	content.WriteString(StyleTitle.Render("Active Reminders"))
	content.WriteString("\n")

	if len(lc.Reminders) == 0 {
		content.WriteString(StyleMuted.Render("No active reminders"))
	} else {
		for i, r := range lc.Reminders {
			if i > 0 {
				content.WriteString("\n\n")
			}
			content.WriteString(lc.renderReminder(r, i == lc.Cursor))
		}
	}

	width := lc.Width - 4
	if width < 20 {
		width = 20
	}
	return StyleListBox.Width(width).Render(content.String())
}

func (lc *ListComponent) renderReminder(r model.Reminder, selected bool) string {
	var sb strings.Builder

	marker := "  "
	title := StyleReminder.Render(r.Title)
	if selected {
		marker = StyleSelected.Render("› ")
		title = StyleSelected.Render(r.Title)
	}
	sb.WriteString(marker)
	sb.WriteString(title)
	sb.WriteString("  ")
	sb.WriteString(StyleSubtitle.Render(r.Frequency.String()))

	sb.WriteString("\n  ")
	at, ok := lc.Next[r.ID]
	if !ok {
		sb.WriteString(StylePaused.Render("paused"))
		return sb.String()
	}

	sb.WriteString(StyleCountdown.Render(parser.FormatCountdown(at, lc.Now)))
	if !r.IsOneTime() {
		if period := r.Frequency.Interval().Duration(); period > 0 {
			elapsed := 100 * (1 - float64(at.Sub(lc.Now))/float64(period))
			sb.WriteString("  ")
			sb.WriteString(ProgressBar(elapsed, lc.barWidth()))
		}
	} else {
		sb.WriteString("  ")
		sb.WriteString(StyleSubtitle.Render(parser.FormatFireAt(at, lc.Now)))
	}
	return sb.String()
}

func (lc *ListComponent) barWidth() int {
	w := lc.Width - 30
	if w < 10 {
		return 10
	}
	if w > 40 {
		return 40
	}
	return w
}

// SummaryLine renders the counts shown under the header.
func SummaryLine(active, scheduled, library int, remote bool) string {
	source := "offline: timers run when the daemon starts"
	if remote {
		source = "daemon"
	}
	return StyleSubtitle.Render(fmt.Sprintf("%d active • %d scheduled • %d in library • %s",
		active, scheduled, library, source))
}

// HelpBar renders the help bar at the bottom.
func HelpBar() string {
	keys := []struct {
		key  string
		desc string
	}{
		{"↑/↓", "select"},
		{"d", "delete"},
		{"s", "save"},
		{"r", "refresh"},
		{"q", "quit"},
	}

	var parts []string
	for _, k := range keys {
		part := StyleHelpKey.Render(k.key) + " " + StyleHelpDesc.Render(k.desc)
		parts = append(parts, part)
	}

	return StyleHelp.Render(strings.Join(parts, "  •  "))
}
