package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/watchout/internal/engine"
	"github.com/manav03panchal/watchout/internal/model"
	"github.com/manav03panchal/watchout/internal/parser"
	"github.com/manav03panchal/watchout/internal/validate"
)

// descriptionWidth caps the description column of the library table.
const descriptionWidth = 48

// Styles for CLI output.
var (
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#10B981") // Green
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorWarning   = lipgloss.Color("#F59E0B") // Yellow
	colorError     = lipgloss.Color("#EF4444") // Red

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSecondary)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleID = lipgloss.NewStyle().
		Foreground(colorPrimary)

	styleCountdown = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) render(style lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return style.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.render(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.render(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.render(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.render(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.render(styleMuted, text))
}

// PrintReminder prints one reminder with its pending fire time, if any.
func (c *CLIFormatter) PrintReminder(r model.Reminder, next *time.Time, now time.Time) {
	c.Printf("%s  %s\n", c.render(styleID, r.ShortID()), c.render(styleBold, r.Title))
	c.Printf("  %s\n", r.Description)
	c.Printf("  Frequency: %s\n", r.Frequency.String())
	if next != nil {
		c.Printf("  Next: %s (%s)\n",
			parser.FormatFireAt(*next, now),
			c.render(styleCountdown, parser.FormatTimeUntil(*next, now)))
	}
}

// PrintReminders prints the active reminders as a table. Reminders without a
// timer show as paused.
func (c *CLIFormatter) PrintReminders(list []model.Reminder, timers []engine.Timer, now time.Time) {
	if len(list) == 0 {
		c.Muted("No active reminders.")
		c.Muted("Use 'watchout add TITLE DESCRIPTION --every 30m' to create one.")
		return
	}

	next := timerIndex(timers)
	rows := make([]TableRow, len(list))
	for i, r := range list {
		status := "paused"
		if at, ok := next[r.ID]; ok {
			status = parser.FormatTimeUntil(at, now)
		}
		rows[i] = TableRow{Columns: []string{r.ShortID(), r.Title, r.Frequency.String(), status}}
	}
	c.PrintTable([]string{"ID", "TITLE", "FREQUENCY", "NEXT"}, rows)
}

// PrintLibrary prints the saved reminders.
func (c *CLIFormatter) PrintLibrary(list []model.Reminder) {
	if len(list) == 0 {
		c.Muted("The library is empty.")
		c.Muted("Use 'watchout library save ID' to keep a reminder for later.")
		return
	}

	rows := make([]TableRow, len(list))
	for i, r := range list {
		rows[i] = TableRow{Columns: []string{r.ShortID(), r.Title, r.Frequency.String(), validate.Truncate(r.Description, descriptionWidth)}}
	}
	c.PrintTable([]string{"ID", "TITLE", "FREQUENCY", "DESCRIPTION"}, rows)
}

func timerIndex(timers []engine.Timer) map[string]time.Time {
	next := make(map[string]time.Time, len(timers))
	for _, t := range timers {
		next[t.ID] = t.NextFire
	}
	return next
}

// TableRow is one row of PrintTable.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple table. Plain format prints tab-separated rows
// without a header.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	if c.Format == FormatPlain {
		for _, row := range rows {
			c.Println(strings.Join(row.Columns, "\t"))
		}
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && lipgloss.Width(col) > widths[i] {
				widths[i] = lipgloss.Width(col)
			}
		}
	}

	var headerLine strings.Builder
	for i, h := range headers {
		headerLine.WriteString(fmt.Sprintf("%-*s  ", widths[i], h))
	}
	c.Println(c.render(styleBold, strings.TrimRight(headerLine.String(), " ")))

	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var rowLine strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				rowLine.WriteString(fmt.Sprintf("%-*s  ", widths[i], col))
			}
		}
		c.Println(strings.TrimRight(rowLine.String(), " "))
	}
}
