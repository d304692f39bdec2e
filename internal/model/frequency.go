package model

import (
	"fmt"
	"time"
)

// FrequencyType discriminates the two Frequency variants.
type FrequencyType string

// Frequency types. The string values match the persisted document format.
const (
	FrequencyRecurring FrequencyType = "recurring"
	FrequencyOneTime   FrequencyType = "oneTime"
)

// Interval is one of the fixed recurring interval tags.
type Interval string

// Recurring interval tags.
const (
	Interval30s   Interval = "30s"
	Interval60s   Interval = "60s"
	Interval30min Interval = "30min"
	Interval1h    Interval = "1h"
	Interval12h   Interval = "12h"
	Interval24h   Interval = "24h"
)

// DefaultInterval is used for unknown or missing interval tags.
const DefaultInterval = Interval30s

var intervalDurations = map[Interval]time.Duration{
	Interval30s:   30 * time.Second,
	Interval60s:   60 * time.Second,
	Interval30min: 30 * time.Minute,
	Interval1h:    time.Hour,
	Interval12h:   12 * time.Hour,
	Interval24h:   24 * time.Hour,
}

var intervalLabels = map[Interval]string{
	Interval30s:   "Every 30 seconds",
	Interval60s:   "Every 60 seconds",
	Interval30min: "Every 30 minutes",
	Interval1h:    "Every hour",
	Interval12h:   "Every 12 hours",
	Interval24h:   "Daily",
}

// Intervals returns the interval tags in ascending duration order.
func Intervals() []Interval {
	return []Interval{Interval30s, Interval60s, Interval30min, Interval1h, Interval12h, Interval24h}
}

// IsValid reports whether the tag is part of the closed interval table.
func (i Interval) IsValid() bool {
	_, ok := intervalDurations[i]
	return ok
}

// Duration returns the fixed duration for the tag.
// Unknown tags fall back to the shortest interval.
func (i Interval) Duration() time.Duration {
	if d, ok := intervalDurations[i]; ok {
		return d
	}
	return intervalDurations[DefaultInterval]
}

// Label returns the human readable form of the tag.
func (i Interval) Label() string {
	if l, ok := intervalLabels[i]; ok {
		return l
	}
	return fmt.Sprintf("Every %s", i)
}

// Frequency says when a reminder fires. For recurring reminders Value holds
// the interval tag; for one-time reminders it holds an RFC 3339 timestamp.
type Frequency struct {
	Type  FrequencyType `json:"type"`
	Value string        `json:"value"`
	Label string        `json:"label"`
}

// Recurring builds a recurring frequency for the given interval.
func Recurring(i Interval) Frequency {
	return Frequency{
		Type:  FrequencyRecurring,
		Value: string(i),
		Label: i.Label(),
	}
}

// OneTime builds a one-time frequency firing at t.
func OneTime(t time.Time) Frequency {
	return Frequency{
		Type:  FrequencyOneTime,
		Value: t.UTC().Format(time.RFC3339Nano),
		Label: t.Local().Format("Mon, Jan 2 at 3:04 PM"),
	}
}

// IsOneTime reports whether the frequency fires once.
// Any type other than oneTime is treated as recurring.
func (f Frequency) IsOneTime() bool {
	return f.Type == FrequencyOneTime
}

// Interval returns the recurring interval tag.
func (f Frequency) Interval() Interval {
	return Interval(f.Value)
}

// FireAt parses the one-time timestamp.
func (f Frequency) FireAt() (time.Time, error) {
	if !f.IsOneTime() {
		return time.Time{}, fmt.Errorf("frequency %q is not one-time", f.Type)
	}
	t, err := time.Parse(time.RFC3339Nano, f.Value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid fire time %q: %w", f.Value, err)
	}
	return t, nil
}

// String returns the label, or a description derived from the value.
func (f Frequency) String() string {
	if f.Label != "" {
		return f.Label
	}
	if f.IsOneTime() {
		return "Once at " + f.Value
	}
	return f.Interval().Label()
}
