package domain

import "context"

// TranslationSource loads a whole translation table for one language.
type TranslationSource interface {
	Load(ctx context.Context, language string) (map[string]string, error)
}

// SettingsRepository is the persisted key-value settings surface.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
}

// Setting keys persisted across restarts.
const (
	SettingLanguage     = "language"
	SettingBaseCurrency = "base_currency"
	SettingTheme        = "theme"
)

// EventPublisher forwards committed state events to an external sink.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event Event) error
	Close() error
}

// WebhookGateway validates, builds and delivers provider-specific
// payloads for webhook providers.
type WebhookGateway interface {
	// ValidateURL rejects a webhook URL whose host does not match the
	// provider's known domains. Never performs I/O.
	ValidateURL(service, rawURL string) error

	// Send builds the provider payload for the message and posts it.
	Send(ctx context.Context, service, url, message, title, severity string) error

	// Probe posts a lightweight connectivity check.
	Probe(ctx context.Context, service, url string) error
}

// AuthToken is the outcome of a completed auth handshake.
type AuthToken struct {
	AccessToken string
	Account     string
}

// AuthProvider abstracts the begin/complete handshake of auth-style
// integrations. Production implementations drive a real OAuth flow;
// test implementations return canned results.
type AuthProvider interface {
	Begin(ctx context.Context, service string) (sessionID string, err error)
	Complete(ctx context.Context, service, sessionID string) (AuthToken, error)
	Verify(ctx context.Context, service, accessToken string) error
}
