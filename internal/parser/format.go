package parser

import (
	"fmt"
	"time"
)

// FormatTimeUntil formats the time left until t as seen from now.
func FormatTimeUntil(t, now time.Time) string {
	diff := t.Sub(now)
	if diff < 0 {
		return "overdue"
	}

	if diff < time.Minute {
		secs := int(diff.Seconds())
		if secs <= 1 {
			return "in 1 second"
		}
		return fmt.Sprintf("in %d seconds", secs)
	}
	if diff < time.Hour {
		mins := int(diff.Minutes())
		if mins == 1 {
			return "in 1 minute"
		}
		return fmt.Sprintf("in %d minutes", mins)
	}
	if diff < 24*time.Hour {
		hours := int(diff.Hours())
		mins := int(diff.Minutes()) % 60
		unit := "hours"
		if hours == 1 {
			unit = "hour"
		}
		if mins > 0 {
			return fmt.Sprintf("in %d %s %d minutes", hours, unit, mins)
		}
		return fmt.Sprintf("in %d %s", hours, unit)
	}

	days := int(diff.Hours() / 24)
	if days == 1 {
		return "in 1 day"
	}
	return fmt.Sprintf("in %d days", days)
}

// FormatCountdown renders the time left as a compact clock, e.g. "04:59"
// or "1:02:03".
func FormatCountdown(t, now time.Time) string {
	diff := t.Sub(now).Round(time.Second)
	if diff < 0 {
		diff = 0
	}
	h := int(diff.Hours())
	m := int(diff.Minutes()) % 60
	s := int(diff.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatFireAt formats an absolute fire time for display.
func FormatFireAt(t, now time.Time) string {
	t = t.In(now.Location())

	var datePart string
	switch {
	case isSameDay(t, now):
		datePart = "Today"
	case isSameDay(t, now.AddDate(0, 0, 1)):
		datePart = "Tomorrow"
	case t.Sub(now) < 7*24*time.Hour && t.After(now):
		datePart = t.Format("Monday")
	default:
		datePart = t.Format("Mon, Jan 2")
	}

	return fmt.Sprintf("%s at %s", datePart, t.Format("3:04 PM"))
}
