// Package oauth carries the pluggable auth-handshake implementations
// for auth-style integrations (googleDrive, mailchimp). Real OAuth is
// out of scope; StaticProvider returns configured results and is the
// default wiring as well as the test double.
package oauth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
)

// StaticProvider completes every handshake with a canned token.
type StaticProvider struct {
	// Accounts maps service name to the account label reported after
	// a completed handshake.
	Accounts map[string]string

	// Fail lists services whose handshake should fail.
	Fail map[string]error
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		Accounts: map[string]string{},
		Fail:     map[string]error{},
	}
}

func (p *StaticProvider) Begin(ctx context.Context, service string) (string, error) {
	if err := p.Fail[service]; err != nil {
		return "", err
	}
	return uuid.New().String(), nil
}

func (p *StaticProvider) Complete(ctx context.Context, service, sessionID string) (domain.AuthToken, error) {
	if err := p.Fail[service]; err != nil {
		return domain.AuthToken{}, err
	}
	account := p.Accounts[service]
	if account == "" {
		account = fmt.Sprintf("%s-account", service)
	}
	return domain.AuthToken{
		AccessToken: uuid.New().String(),
		Account:     account,
	}, nil
}

func (p *StaticProvider) Verify(ctx context.Context, service, accessToken string) error {
	if err := p.Fail[service]; err != nil {
		return err
	}
	if accessToken == "" {
		return domain.ErrNotConnected
	}
	return nil
}
