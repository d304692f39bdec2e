package errors

import "errors"

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	ErrReminderNotFound: "Use 'watchout list' to see active reminders.",
	ErrAmbiguousID:      "Type more characters of the ID to make it unique.",
	ErrPermissionDenied: "Enable desktop notifications for your session, or set notify.desktop in the config.",
	ErrDaemonNotRunning: "Start it with 'watchout daemon start'.",
	ErrInvalidFrequency: "Use one of: 30s, 60s, 30min, 1h, 12h, 24h.",
	ErrInvalidTimestamp: "Try formats like '+10m', 'tomorrow 9am' or '2026-01-15 14:00'.",
	ErrFireTimeInPast:   "One-time reminders must fire in the future.",
	ErrUnknownBackend:   "Set storage.backend to 'badger' or 'sqlite'.",
	ErrInvalidWebhook:   "Webhooks need a name, a valid type (discord, slack, teams, generic) and a URL.",
	ErrStoreLocked:      "Another watchout process is using the store. Run 'watchout daemon status' to check.",
	ErrStoreCorrupted:   "Move the data directory aside and start again; 'watchout config' shows its location.",
}

// GetSuggestion returns a suggestion for an error, if available.
// It walks the error chain to find matching suggestions.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	if ve, ok := AsValidation(err); ok && ve.Suggestion != "" {
		return ve.Suggestion
	}

	return ""
}
