package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"

	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/model"
)

// relativeRegex matches relative time expressions like "+5m", "+1h", "+2d".
var relativeRegex = regexp.MustCompile(`^\+(\d+)([smhdw])$`)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// ParseFireAt parses the fire time of a one-time reminder relative to now.
// Supports formats like:
//   - "+5m", "+1h", "+2d" (relative)
//   - "tomorrow 9am", "friday 5pm" (natural language)
//   - "2026-01-15 14:00" or RFC 3339
//
// The result must lie after now. A clock time earlier today is moved to
// tomorrow.
func ParseFireAt(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, errors.NewValidationError("at", "fire time is required",
			errors.GetSuggestion(errors.ErrInvalidTimestamp))
	}

	if match := relativeRegex.FindStringSubmatch(input); match != nil {
		return parseRelative(match[1], match[2], now)
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, input, now.Location()); err == nil {
			return ensureFuture(t, now, false)
		}
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil {
		return time.Time{}, errors.NewValidationError("at",
			fmt.Sprintf("could not parse fire time %q", input),
			errors.GetSuggestion(errors.ErrInvalidTimestamp))
	}
	return ensureFuture(result.Time, now, true)
}

func parseRelative(numStr, unit string, now time.Time) (time.Time, error) {
	num, _ := strconv.Atoi(numStr)
	if num <= 0 {
		return time.Time{}, errors.NewValidationError("at", "relative offset must be positive",
			errors.GetSuggestion(errors.ErrInvalidTimestamp))
	}

	var d time.Duration
	switch unit {
	case "s":
		d = time.Second
	case "m":
		d = time.Minute
	case "h":
		d = time.Hour
	case "d":
		d = 24 * time.Hour
	case "w":
		d = 7 * 24 * time.Hour
	}
	return now.Add(time.Duration(num) * d), nil
}

func ensureFuture(t, now time.Time, rollToday bool) (time.Time, error) {
	if t.After(now) {
		return t, nil
	}
	if rollToday && isSameDay(t, now) {
		return t.AddDate(0, 0, 1), nil
	}
	return time.Time{}, errors.NewValidationError("at",
		errors.ErrFireTimeInPast.Error(),
		errors.GetSuggestion(errors.ErrFireTimeInPast))
}

func isSameDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.Date()
	y2, m2, d2 := t2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// NormalizeFrequency validates a frequency received over the API and
// rewrites its value and label into canonical form.
func NormalizeFrequency(f model.Frequency, now time.Time) (model.Frequency, error) {
	switch f.Type {
	case model.FrequencyRecurring, "":
		i, err := ParseInterval(f.Value)
		if err != nil {
			return model.Frequency{}, err
		}
		return model.Recurring(i), nil
	case model.FrequencyOneTime:
		t, err := time.Parse(time.RFC3339Nano, f.Value)
		if err != nil {
			return model.Frequency{}, errors.NewValidationError("frequency.value",
				fmt.Sprintf("invalid timestamp %q", f.Value),
				"Use an RFC 3339 timestamp such as 2026-01-15T14:00:00Z.")
		}
		if !t.After(now) {
			return model.Frequency{}, errors.NewValidationError("frequency.value",
				errors.ErrFireTimeInPast.Error(),
				errors.GetSuggestion(errors.ErrFireTimeInPast))
		}
		return model.OneTime(t), nil
	default:
		return model.Frequency{}, errors.NewValidationError("frequency.type",
			fmt.Sprintf("unknown frequency type %q", f.Type),
			"Use 'recurring' or 'oneTime'.")
	}
}
