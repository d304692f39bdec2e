// Package parser turns command-line and API input into reminder frequencies.
// Parsing is strict: anything outside the fixed interval table is rejected
// here, even though the scheduler tolerates unknown tags.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/model"
)

// IntervalExamples lists the accepted spellings shown in error messages.
var IntervalExamples = []string{"30s", "60s", "1m", "30m", "30min", "1h", "hourly", "12h", "24h", "daily"}

var intervalAliases = map[string]model.Interval{
	"hourly": model.Interval1h,
	"daily":  model.Interval24h,
}

// durationPattern matches "30s", "30 min", "12 hours" and similar.
var durationPattern = regexp.MustCompile(`(?i)^(\d+)\s*(s|sec|secs|second|seconds|m|min|mins|minute|minutes|h|hr|hrs|hour|hours|d|day|days)$`)

// ParseInterval maps user input onto one of the fixed interval tags.
func ParseInterval(input string) (model.Interval, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", invalidInterval(input)
	}

	if i := model.Interval(input); i.IsValid() {
		return i, nil
	}
	if i, ok := intervalAliases[input]; ok {
		return i, nil
	}

	d, ok := parseDuration(input)
	if !ok {
		return "", invalidInterval(input)
	}
	for _, i := range model.Intervals() {
		if i.Duration() == d {
			return i, nil
		}
	}
	return "", invalidInterval(input)
}

func parseDuration(input string) (time.Duration, bool) {
	if d, err := time.ParseDuration(input); err == nil {
		return d, d > 0
	}

	m := durationPattern.FindStringSubmatch(input)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}

	var unit time.Duration
	switch strings.ToLower(m[2]) {
	case "s", "sec", "secs", "second", "seconds":
		unit = time.Second
	case "m", "min", "mins", "minute", "minutes":
		unit = time.Minute
	case "h", "hr", "hrs", "hour", "hours":
		unit = time.Hour
	default:
		unit = 24 * time.Hour
	}
	return time.Duration(n) * unit, true
}

func invalidInterval(input string) error {
	return errors.NewValidationError("frequency",
		"unsupported interval "+strconv.Quote(input),
		errors.GetSuggestion(errors.ErrInvalidFrequency))
}
