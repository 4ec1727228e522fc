package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
)

func TestValidateURL(t *testing.T) {
	g := NewGateway(0)

	assert.NoError(t, g.ValidateURL("slack", "https://hooks.slack.com/services/T/B/X"))
	assert.NoError(t, g.ValidateURL("discord", "https://discord.com/api/webhooks/1/a"))
	assert.NoError(t, g.ValidateURL("discord", "https://canary.discord.com/api/webhooks/1/a"))
	assert.NoError(t, g.ValidateURL("teams", "https://example.office.com/webhook"))
}

func TestValidateURLRejectsWrongHost(t *testing.T) {
	g := NewGateway(0)

	err := g.ValidateURL("slack", "https://hooks.slack.com.evil.io/services/T/B/X")
	assert.True(t, domain.IsValidationError(err))

	err = g.ValidateURL("slack", "https://discord.com/api/webhooks/1/a")
	assert.True(t, domain.IsValidationError(err))
}

func TestValidateURLRequiresHTTPS(t *testing.T) {
	g := NewGateway(0)

	err := g.ValidateURL("slack", "http://hooks.slack.com/services/T/B/X")
	assert.True(t, domain.IsValidationError(err))
}

func TestValidateURLRejectsEmptyAndMalformed(t *testing.T) {
	g := NewGateway(0)

	assert.True(t, domain.IsValidationError(g.ValidateURL("slack", "")))
	assert.True(t, domain.IsValidationError(g.ValidateURL("slack", "not a url")))
}

func TestValidateURLUnknownService(t *testing.T) {
	g := NewGateway(0)

	assert.ErrorIs(t, g.ValidateURL("fax", "https://hooks.slack.com/x"), domain.ErrUnknownService)
	// Auth-style providers carry no webhook URL.
	assert.True(t, domain.IsValidationError(g.ValidateURL("googleDrive", "https://hooks.slack.com/x")))
}

func TestSendPostsSlackPayload(t *testing.T) {
	var received slackPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
	}))
	defer server.Close()

	g := NewGateway(time.Second)
	err := g.Send(context.Background(), "slack", server.URL, "the roof leaks", "Maintenance", "error")
	require.NoError(t, err)

	assert.Equal(t, "Maintenance", received.Text)
	require.Len(t, received.Attachments, 1)
	assert.Equal(t, "danger", received.Attachments[0].Color)
	assert.Equal(t, "the roof leaks", received.Attachments[0].Text)
}

func TestSendNon2xxIsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	g := NewGateway(time.Second)
	err := g.Send(context.Background(), "slack", server.URL, "msg", "title", "info")
	assert.True(t, domain.IsFetchError(err))
}

func TestProbePostsPayload(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	g := NewGateway(time.Second)
	require.NoError(t, g.Probe(context.Background(), "discord", server.URL))
	assert.Equal(t, 1, hits)
}

func TestBuildPayloadTeams(t *testing.T) {
	raw, err := BuildPayload("teams", "offering counted", "Finance", "info", time.Now())
	require.NoError(t, err)

	var payload teamsPayload
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "MessageCard", payload.Type)
	assert.Equal(t, "Finance", payload.Summary)
	require.Len(t, payload.Sections, 1)
}

func TestBuildPayloadDiscord(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	raw, err := BuildPayload("discord", "body", "Title", "warning", at)
	require.NoError(t, err)

	var payload discordPayload
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.Len(t, payload.Embeds, 1)
	assert.Equal(t, 0xFFA000, payload.Embeds[0].Color)
	assert.Equal(t, "2025-06-01T10:30:00Z", payload.Embeds[0].Timestamp)
}

func TestBuildPayloadUnknownService(t *testing.T) {
	_, err := BuildPayload("fax", "m", "t", "info", time.Now())
	assert.Error(t, err)
}
