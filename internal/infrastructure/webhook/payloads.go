package webhook

import (
	"encoding/json"
	"fmt"
	"time"
)

// Slack incoming-webhook schema.
type slackPayload struct {
	Text        string            `json:"text"`
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji"`
	Attachments []slackAttachment `json:"attachments,omitempty"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text"`
	Fields []slackField `json:"fields,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// Teams MessageCard schema.
type teamsPayload struct {
	Type       string         `json:"@type"`
	ThemeColor string         `json:"themeColor"`
	Summary    string         `json:"summary"`
	Sections   []teamsSection `json:"sections"`
}

type teamsSection struct {
	ActivityTitle    string      `json:"activityTitle"`
	ActivitySubtitle string      `json:"activitySubtitle"`
	Facts            []teamsFact `json:"facts,omitempty"`
}

type teamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Discord webhook schema.
type discordPayload struct {
	Username  string         `json:"username"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Embeds    []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

const senderName = "Church Admin"

func slackColor(severity string) string {
	switch severity {
	case "error":
		return "danger"
	case "warning":
		return "warning"
	default:
		return "good"
	}
}

func hexColor(severity string) string {
	switch severity {
	case "error":
		return "D32F2F"
	case "warning":
		return "FFA000"
	default:
		return "388E3C"
	}
}

func discordColor(severity string) int {
	switch severity {
	case "error":
		return 0xD32F2F
	case "warning":
		return 0xFFA000
	default:
		return 0x388E3C
	}
}

// BuildPayload constructs the provider-family payload for one message.
func BuildPayload(service, message, title, severity string, at time.Time) ([]byte, error) {
	switch service {
	case "slack":
		return json.Marshal(slackPayload{
			Text:      title,
			Username:  senderName,
			IconEmoji: ":church:",
			Attachments: []slackAttachment{{
				Color: slackColor(severity),
				Title: title,
				Text:  message,
				Fields: []slackField{
					{Title: "Severity", Value: severity, Short: true},
				},
			}},
		})
	case "teams":
		return json.Marshal(teamsPayload{
			Type:       "MessageCard",
			ThemeColor: hexColor(severity),
			Summary:    title,
			Sections: []teamsSection{{
				ActivityTitle:    title,
				ActivitySubtitle: senderName,
				Facts: []teamsFact{
					{Name: "Severity", Value: severity},
					{Name: "Message", Value: message},
				},
			}},
		})
	case "discord":
		return json.Marshal(discordPayload{
			Username: senderName,
			Embeds: []discordEmbed{{
				Title:       title,
				Description: message,
				Color:       discordColor(severity),
				Fields: []discordField{
					{Name: "Severity", Value: severity, Inline: true},
				},
				Timestamp: at.UTC().Format(time.RFC3339),
			}},
		})
	default:
		return nil, fmt.Errorf("no payload builder for service %q", service)
	}
}

// BuildProbe is a minimal connectivity-check payload.
func BuildProbe(service string, at time.Time) ([]byte, error) {
	return BuildPayload(service, "Connection test from Church Admin", "Connection test", "info", at)
}
