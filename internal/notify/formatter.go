// Package notify delivers fired reminders to the user: as native desktop
// notifications and, optionally, to chat webhooks.
package notify

import (
	"fmt"
	"sort"

	"github.com/manav03panchal/watchout/internal/model"
)

// Formatter formats notifications for a specific webhook type.
type Formatter interface {
	// Format converts a notification into the webhook-specific payload.
	Format(n *model.Notification) ([]byte, error)

	// ContentType returns the HTTP Content-Type for the payload.
	ContentType() string
}

// GetFormatter returns the appropriate formatter for a webhook type.
func GetFormatter(webhookType string) Formatter {
	switch webhookType {
	case model.WebhookTypeDiscord:
		return &DiscordFormatter{}
	case model.WebhookTypeSlack:
		return &SlackFormatter{}
	case model.WebhookTypeTeams:
		return &TeamsFormatter{}
	default:
		return &GenericFormatter{}
	}
}

// FormatterFor returns the formatter for a configured webhook, honoring a
// custom template on generic webhooks.
func FormatterFor(w model.Webhook) Formatter {
	if w.Type == model.WebhookTypeGeneric && w.Template != "" {
		return NewGenericFormatter(w.Template)
	}
	return GetFormatter(w.Type)
}

type field struct {
	Name, Value string
}

// sortedFields returns the notification fields ordered by name so payloads
// are stable.
func sortedFields(n *model.Notification) []field {
	out := make([]field, 0, len(n.Fields))
	for k, v := range n.Fields {
		out = append(out, field{k, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func colorOf(n *model.Notification) int {
	if n.Color != 0 {
		return n.Color
	}
	return model.DefaultColorForType(n.Type)
}

// footer is the attribution line shown under chat messages.
func footer(n *model.Notification) string {
	return fmt.Sprintf("WatchOut | %s", n.Timestamp.Local().Format("Jan 2, 3:04 PM"))
}

const isoTimestamp = "2006-01-02T15:04:05Z07:00"
