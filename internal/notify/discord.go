package notify

import (
	"encoding/json"

	"github.com/manav03panchal/watchout/internal/model"
)

// DiscordFormatter formats notifications as a Discord embed.
type DiscordFormatter struct{}

type discordPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      *discordEmbedFooter `json:"footer,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordEmbedFooter struct {
	Text string `json:"text"`
}

// Format converts a notification to Discord webhook format.
func (f *DiscordFormatter) Format(n *model.Notification) ([]byte, error) {
	embed := discordEmbed{
		Title:       n.Title,
		Description: n.Message,
		Color:       colorOf(n),
		Footer:      &discordEmbedFooter{Text: "WatchOut"},
	}
	if !n.Timestamp.IsZero() {
		embed.Timestamp = n.Timestamp.UTC().Format(isoTimestamp)
	}

	for _, fld := range sortedFields(n) {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:   fld.Name,
			Value:  fld.Value,
			Inline: true,
		})
	}

	return json.Marshal(discordPayload{
		Username: "WatchOut",
		Embeds:   []discordEmbed{embed},
	})
}

// ContentType returns the content type for Discord webhooks.
func (f *DiscordFormatter) ContentType() string {
	return "application/json"
}
