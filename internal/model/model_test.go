package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Frequency Tests
// =============================================================================

func TestIntervalDuration(t *testing.T) {
	tests := []struct {
		interval Interval
		expected time.Duration
	}{
		{Interval30s, 30 * time.Second},
		{Interval60s, 60 * time.Second},
		{Interval30min, 30 * time.Minute},
		{Interval1h, time.Hour},
		{Interval12h, 12 * time.Hour},
		{Interval24h, 24 * time.Hour},
		{"", 30 * time.Second},
		{"fortnightly", 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(string(tt.interval), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.interval.Duration())
		})
	}
}

func TestIntervalsAscending(t *testing.T) {
	intervals := Intervals()
	require.Len(t, intervals, 6)
	assert.Equal(t, DefaultInterval, intervals[0])
	for i := 1; i < len(intervals); i++ {
		assert.Greater(t, intervals[i].Duration(), intervals[i-1].Duration())
		assert.True(t, intervals[i].IsValid())
	}
	assert.False(t, Interval("7d").IsValid())
}

func TestRecurringFrequency(t *testing.T) {
	f := Recurring(Interval1h)
	assert.Equal(t, FrequencyRecurring, f.Type)
	assert.Equal(t, "1h", f.Value)
	assert.Equal(t, "Every hour", f.Label)
	assert.False(t, f.IsOneTime())
	assert.Equal(t, Interval1h, f.Interval())

	_, err := f.FireAt()
	assert.Error(t, err)
}

func TestOneTimeFrequency(t *testing.T) {
	at := time.Date(2026, 10, 20, 9, 30, 0, 0, time.UTC)
	f := OneTime(at)
	assert.True(t, f.IsOneTime())
	assert.NotEmpty(t, f.Label)

	got, err := f.FireAt()
	require.NoError(t, err)
	assert.True(t, at.Equal(got))

	t.Run("invalid timestamp", func(t *testing.T) {
		bad := Frequency{Type: FrequencyOneTime, Value: "next tuesday"}
		_, err := bad.FireAt()
		assert.Error(t, err)
	})
}

func TestFrequencyUnknownTypeIsRecurring(t *testing.T) {
	f := Frequency{Type: "weekly", Value: "30min"}
	assert.False(t, f.IsOneTime())
	assert.Equal(t, "Every 30 minutes", f.String())
}

func TestFrequencyWireFormat(t *testing.T) {
	doc := `{"id":"1","title":"Take a Break","description":"Step away","frequency":{"type":"recurring","value":"30s","label":"Every 30 seconds"},"createdAt":"2024-03-20T10:00:00.000Z"}`

	var r Reminder
	require.NoError(t, json.Unmarshal([]byte(doc), &r))
	assert.Equal(t, "1", r.ID)
	assert.Equal(t, Interval30s, r.Frequency.Interval())
	assert.Equal(t, 2024, r.CreatedAt.Year())

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"createdAt"`)
	assert.Contains(t, string(out), `"type":"recurring"`)
}

// =============================================================================
// Reminder Tests
// =============================================================================

func TestReminderShortID(t *testing.T) {
	r := Reminder{ID: "0f8b1c2a-5b34-4e51-9d0c-7c5d2a1f3b4e"}
	assert.Equal(t, "0f8b1c2a", r.ShortID())

	short := Reminder{ID: "1"}
	assert.Equal(t, "1", short.ShortID())
}

func TestFindReminder(t *testing.T) {
	list := []Reminder{{ID: "a"}, {ID: "b"}}
	assert.Equal(t, 1, FindReminder(list, "b"))
	assert.Equal(t, -1, FindReminder(list, "c"))
	assert.Equal(t, -1, FindReminder(nil, "a"))
}

func TestNotificationForReminder(t *testing.T) {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := Reminder{ID: "x", Title: "Stretch", Description: "Stand up", Frequency: Recurring(Interval30s)}

	n := NotificationForReminder(r, at)
	assert.Equal(t, NotifyReminder, n.Type)
	assert.Equal(t, "Stretch", n.Title)
	assert.Equal(t, "Stand up", n.Message)
	assert.Equal(t, at, n.Timestamp)
	assert.Equal(t, "Every 30 seconds", n.Fields["Frequency"])
	assert.Equal(t, ColorWarning, n.Color)
}

// =============================================================================
// Webhook Tests
// =============================================================================

func TestDetectWebhookType(t *testing.T) {
	assert.Equal(t, WebhookTypeDiscord, DetectWebhookType("https://discord.com/api/webhooks/1/abc"))
	assert.Equal(t, WebhookTypeSlack, DetectWebhookType("https://hooks.slack.com/services/T/B/X"))
	assert.Equal(t, WebhookTypeTeams, DetectWebhookType("https://acme.webhook.office.com/x"))
	assert.Equal(t, WebhookTypeGeneric, DetectWebhookType("https://example.com/hook"))
}

func TestWebhookValidation(t *testing.T) {
	assert.True(t, IsValidWebhookType("slack"))
	assert.False(t, IsValidWebhookType("pager"))
	assert.True(t, IsValidWebhookName("team-alerts_1"))
	assert.False(t, IsValidWebhookName("-bad"))
	assert.False(t, IsValidWebhookName(""))
}
