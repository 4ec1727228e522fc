// Package webhook delivers outbound JSON payloads to chat-webhook
// providers (slack, teams, discord).
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
)

type Gateway struct {
	client *http.Client
}

func NewGateway(timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Gateway{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ValidateURL checks the webhook URL host against the provider's known
// domains. It never performs I/O; a mismatch is a ValidationError.
func (g *Gateway) ValidateURL(service, rawURL string) error {
	provider, ok := domain.Providers()[service]
	if !ok {
		return domain.ErrUnknownService
	}
	if provider.Kind != domain.ProviderWebhook {
		return &domain.ValidationError{Field: "service", Reason: fmt.Sprintf("%s is not a webhook provider", service)}
	}
	if rawURL == "" {
		return &domain.ValidationError{Field: "webhook_url", Reason: "url is required"}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return &domain.ValidationError{Field: "webhook_url", Reason: "malformed url"}
	}
	if parsed.Scheme != "https" {
		return &domain.ValidationError{Field: "webhook_url", Reason: "https is required"}
	}

	host := strings.ToLower(parsed.Hostname())
	for _, allowed := range provider.AllowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}
	return &domain.ValidationError{
		Field:  "webhook_url",
		Reason: fmt.Sprintf("host %q does not match %s domains", host, service),
	}
}

func (g *Gateway) Send(ctx context.Context, service, rawURL, message, title, severity string) error {
	payload, err := BuildPayload(service, message, title, severity, time.Now())
	if err != nil {
		return err
	}
	return g.post(ctx, rawURL, payload)
}

func (g *Gateway) Probe(ctx context.Context, service, rawURL string) error {
	payload, err := BuildProbe(service, time.Now())
	if err != nil {
		return err
	}
	return g.post(ctx, rawURL, payload)
}

func (g *Gateway) post(ctx context.Context, rawURL string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return &domain.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.FetchError{URL: rawURL, Status: resp.StatusCode}
	}
	return nil
}
