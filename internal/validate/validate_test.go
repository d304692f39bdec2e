package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/watchout/internal/errors"
)

func TestTitle(t *testing.T) {
	assert.NoError(t, Title("Stretch"))
	assert.NoError(t, Title(strings.Repeat("é", MaxTitleLength)))

	err := Title("")
	ve, ok := errors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "title", ve.Field)
	assert.NotEmpty(t, ve.Suggestion)

	err = Title(strings.Repeat("x", MaxTitleLength+1))
	ve, ok = errors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Message, "longer than")
}

func TestDescription(t *testing.T) {
	assert.NoError(t, Description("Stand up and stretch"))

	ve, ok := errors.AsValidation(Description(""))
	require.True(t, ok)
	assert.Equal(t, "description", ve.Field)

	assert.True(t, errors.IsValidation(Description(strings.Repeat("x", MaxDescriptionLength+1))))
}

func TestWebhookURL(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		valid bool
	}{
		{"https", "https://hooks.slack.com/services/T/B/X", true},
		{"https with port", "https://example.com:8443/hook", true},
		{"http localhost", "http://localhost:8080/hook", true},
		{"http loopback ip", "http://127.0.0.1:9000/hook", true},
		{"http ipv6 loopback", "http://[::1]:9000/hook", true},
		{"empty", "", false},
		{"no scheme", "example.com/hook", false},
		{"ftp", "ftp://example.com/hook", false},
		{"no host", "https:///hook", false},
		{"http external", "http://example.com/hook", false},
		{"private ip", "https://192.168.1.10/hook", false},
		{"metadata ip", "https://169.254.169.254/latest", false},
		{"too long", "https://example.com/" + strings.Repeat("a", MaxURLLength), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WebhookURL("notify.webhooks[0].url", tt.url)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			ve, ok := errors.AsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, "notify.webhooks[0].url", ve.Field)
		})
	}
}

// =============================================================================
// Sanitize Tests
// =============================================================================

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Stretch  ", "Stretch"},
		{"line one\r\nline two", "line one\nline two"},
		{"old\rmac", "old\nmac"},
		{"null\x00byte", "nullbyte"},
		{"bell\a and escape\x1b[31m", "bell and escape[31m"},
		{"tab\tkept", "tab\tkept"},
		{"\x00\x01", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Text(tt.in), "%q", tt.in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exactly10!", Truncate("exactly10!", 10))
	assert.Equal(t, "a long ...", Truncate("a long description", 10))
	assert.Equal(t, "ééé...", Truncate("éééééééé", 6))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}
