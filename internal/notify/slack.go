package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/manav03panchal/watchout/internal/model"
)

// SlackFormatter formats notifications with Slack Block Kit.
type SlackFormatter struct{}

type slackPayload struct {
	Text        string        `json:"text,omitempty"`
	Blocks      []slackBlock  `json:"blocks,omitempty"`
	Attachments []slackAttach `json:"attachments,omitempty"`
}

type slackBlock struct {
	Type     string           `json:"type"`
	Text     *slackBlockText  `json:"text,omitempty"`
	Fields   []slackBlockText `json:"fields,omitempty"`
	Elements []slackBlockText `json:"elements,omitempty"`
}

type slackBlockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// slackAttach carries the color bar.
type slackAttach struct {
	Color    string `json:"color,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

// Format converts a notification to Slack webhook format.
func (f *SlackFormatter) Format(n *model.Notification) ([]byte, error) {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackBlockText{Type: "plain_text", Text: n.Title},
		},
		{
			Type: "section",
			Text: &slackBlockText{Type: "mrkdwn", Text: slackEscape(n.Message)},
		},
	}

	if fields := sortedFields(n); len(fields) > 0 {
		var texts []slackBlockText
		for _, fld := range fields {
			texts = append(texts, slackBlockText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*%s*\n%s", slackEscape(fld.Name), slackEscape(fld.Value)),
			})
		}
		blocks = append(blocks, slackBlock{Type: "section", Fields: texts})
	}

	blocks = append(blocks, slackBlock{
		Type:     "context",
		Elements: []slackBlockText{{Type: "mrkdwn", Text: footer(n)}},
	})

	return json.Marshal(slackPayload{
		Text:   fmt.Sprintf("%s: %s", n.Title, n.Message),
		Blocks: blocks,
		Attachments: []slackAttach{
			{Color: colorToHex(colorOf(n)), Fallback: n.Title},
		},
	})
}

// ContentType returns the content type for Slack webhooks.
func (f *SlackFormatter) ContentType() string {
	return "application/json"
}

// colorToHex converts an integer color to hex string.
func colorToHex(color int) string {
	return fmt.Sprintf("#%06X", color)
}

// slackEscape escapes the characters Slack mrkdwn treats as control.
func slackEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
