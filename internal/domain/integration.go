package domain

import (
	"fmt"
	"time"
)

// IntegrationStatus is the lifecycle status of a named external service.
type IntegrationStatus int32

const (
	IntegrationDisconnected IntegrationStatus = iota
	IntegrationConnecting
	IntegrationConnected
	IntegrationError
)

func (s IntegrationStatus) String() string {
	switch s {
	case IntegrationDisconnected:
		return "disconnected"
	case IntegrationConnecting:
		return "connecting"
	case IntegrationConnected:
		return "connected"
	case IntegrationError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", s)
	}
}

// integrationTransitions defines allowed lifecycle transitions.
var integrationTransitions = map[IntegrationStatus][]IntegrationStatus{
	IntegrationDisconnected: {IntegrationConnecting},
	IntegrationConnecting:   {IntegrationConnected, IntegrationError},
	IntegrationConnected:    {IntegrationDisconnected},
	IntegrationError:        {IntegrationDisconnected, IntegrationConnecting},
}

// CanTransitionIntegration reports whether from -> to is a valid
// lifecycle transition.
func CanTransitionIntegration(from, to IntegrationStatus) bool {
	for _, s := range integrationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IntegrationConfig is the connection-scoped data a Connected state
// carries. Dropped entirely on disconnect.
type IntegrationConfig struct {
	WebhookURL  string
	AccessToken string
	Account     string
}

type IntegrationState struct {
	Service      string
	Status       IntegrationStatus
	Config       IntegrationConfig
	SessionID    string
	ConnectedAt  time.Time
	LastSync     time.Time
	LastUsed     time.Time
	MessagesSent int64
	LastError    string
}

type ProviderKind string

const (
	ProviderWebhook ProviderKind = "webhook"
	ProviderAuth    ProviderKind = "auth"
)

// Provider describes a supported external service.
type Provider struct {
	Name string
	Kind ProviderKind

	// AllowedHosts are the host suffixes a webhook URL must match.
	AllowedHosts []string

	// Notification marks providers that can receive broadcast messages.
	Notification bool
}

// Providers is the catalogue of supported integrations.
func Providers() map[string]Provider {
	return map[string]Provider{
		"slack": {
			Name:         "slack",
			Kind:         ProviderWebhook,
			AllowedHosts: []string{"hooks.slack.com"},
			Notification: true,
		},
		"teams": {
			Name:         "teams",
			Kind:         ProviderWebhook,
			AllowedHosts: []string{"office.com", "office365.com"},
			Notification: true,
		},
		"discord": {
			Name:         "discord",
			Kind:         ProviderWebhook,
			AllowedHosts: []string{"discord.com", "discordapp.com"},
			Notification: true,
		},
		"googleDrive": {
			Name: "googleDrive",
			Kind: ProviderAuth,
		},
		"mailchimp": {
			Name: "mailchimp",
			Kind: ProviderAuth,
		},
	}
}
