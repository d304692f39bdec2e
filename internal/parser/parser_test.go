package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/model"
)

// =============================================================================
// Interval Tests
// =============================================================================

func TestParseInterval(t *testing.T) {
	tests := []struct {
		input    string
		expected model.Interval
	}{
		{"30s", model.Interval30s},
		{"30 seconds", model.Interval30s},
		{"60s", model.Interval60s},
		{"1m", model.Interval60s},
		{"30m", model.Interval30min},
		{"30min", model.Interval30min},
		{"30 minutes", model.Interval30min},
		{"1h", model.Interval1h},
		{"60m", model.Interval1h},
		{"hourly", model.Interval1h},
		{"HOURLY", model.Interval1h},
		{"12h", model.Interval12h},
		{"12 hours", model.Interval12h},
		{"24h", model.Interval24h},
		{"1d", model.Interval24h},
		{"daily", model.Interval24h},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInterval(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseIntervalRejectsUnsupported(t *testing.T) {
	for _, input := range []string{"", "  ", "45s", "2h", "weekly", "-30s", "0s", "abc"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseInterval(input)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.NotEmpty(t, errors.GetSuggestion(err))
		})
	}
}

// =============================================================================
// Fire Time Tests
// =============================================================================

func TestParseFireAtRelative(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		add   time.Duration
	}{
		{"+30s", 30 * time.Second},
		{"+5m", 5 * time.Minute},
		{"+1h", time.Hour},
		{"+2d", 48 * time.Hour},
		{"+1w", 7 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFireAt(tt.input, now)
			require.NoError(t, err)
			assert.Equal(t, now.Add(tt.add), got)
		})
	}
}

func TestParseFireAtISO(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	got, err := ParseFireAt("2026-03-11 09:30", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC), got)

	got, err = ParseFireAt("2026-03-10T13:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), got)
}

func TestParseFireAtNaturalLanguage(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	got, err := ParseFireAt("tomorrow", now)
	require.NoError(t, err)
	assert.True(t, got.After(now))
	assert.Equal(t, 11, got.Day())
}

func TestParseFireAtErrors(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("empty", func(t *testing.T) {
		_, err := ParseFireAt("", now)
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("zero offset", func(t *testing.T) {
		_, err := ParseFireAt("+0m", now)
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("past ISO timestamp", func(t *testing.T) {
		_, err := ParseFireAt("2026-03-09 08:00", now)
		require.Error(t, err)
		ve, ok := errors.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "at", ve.Field)
	})

	t.Run("gibberish", func(t *testing.T) {
		_, err := ParseFireAt("qwzx plorb", now)
		assert.Error(t, err)
	})
}

// =============================================================================
// Frequency Tests
// =============================================================================

func TestNormalizeFrequency(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("recurring alias", func(t *testing.T) {
		f, err := NormalizeFrequency(model.Frequency{Type: model.FrequencyRecurring, Value: "hourly"}, now)
		require.NoError(t, err)
		assert.Equal(t, model.Recurring(model.Interval1h), f)
	})

	t.Run("missing type means recurring", func(t *testing.T) {
		f, err := NormalizeFrequency(model.Frequency{Value: "30s"}, now)
		require.NoError(t, err)
		assert.Equal(t, model.FrequencyRecurring, f.Type)
	})

	t.Run("one-time in the future", func(t *testing.T) {
		at := now.Add(time.Hour)
		f, err := NormalizeFrequency(model.Frequency{Type: model.FrequencyOneTime, Value: at.Format(time.RFC3339)}, now)
		require.NoError(t, err)
		got, err := f.FireAt()
		require.NoError(t, err)
		assert.True(t, at.Equal(got))
		assert.NotEmpty(t, f.Label)
	})

	t.Run("one-time in the past", func(t *testing.T) {
		at := now.Add(-time.Second)
		_, err := NormalizeFrequency(model.Frequency{Type: model.FrequencyOneTime, Value: at.Format(time.RFC3339)}, now)
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NormalizeFrequency(model.Frequency{Type: "weekly", Value: "1"}, now)
		ve, ok := errors.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "frequency.type", ve.Field)
	})
}

// =============================================================================
// Format Tests
// =============================================================================

func TestFormatTimeUntil(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		add      time.Duration
		expected string
	}{
		{-time.Minute, "overdue"},
		{time.Second, "in 1 second"},
		{30 * time.Second, "in 30 seconds"},
		{time.Minute, "in 1 minute"},
		{30 * time.Minute, "in 30 minutes"},
		{time.Hour, "in 1 hour"},
		{90 * time.Minute, "in 1 hour 30 minutes"},
		{12 * time.Hour, "in 12 hours"},
		{24 * time.Hour, "in 1 day"},
		{72 * time.Hour, "in 3 days"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTimeUntil(now.Add(tt.add), now))
		})
	}
}

func TestFormatCountdown(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "00:30", FormatCountdown(now.Add(30*time.Second), now))
	assert.Equal(t, "29:59", FormatCountdown(now.Add(29*time.Minute+59*time.Second), now))
	assert.Equal(t, "1:02:03", FormatCountdown(now.Add(time.Hour+2*time.Minute+3*time.Second), now))
	assert.Equal(t, "00:00", FormatCountdown(now.Add(-time.Minute), now))
}

func TestFormatFireAt(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Today at 3:00 PM", FormatFireAt(now.Add(3*time.Hour), now))
	assert.Equal(t, "Tomorrow at 9:00 AM", FormatFireAt(time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Mon, Apr 20 at 9:00 AM", FormatFireAt(time.Date(2026, 4, 20, 9, 0, 0, 0, time.UTC), now))
}
