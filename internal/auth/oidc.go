// Package auth provides OIDC bearer-token authentication for the HTTP API.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Provider verifies bearer tokens against an OIDC issuer.
type Provider struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

// Config holds OIDC provider configuration.
type Config struct {
	// Issuer is the OIDC provider URL (e.g. https://auth.example.com).
	Issuer string

	// ClientID is the OAuth2 client id tokens must be issued for.
	ClientID string
}

// NewProvider fetches the issuer's discovery document and builds a
// token verifier.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("issuer is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client_id is required")
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("create oidc provider: %w", err)
	}

	return &Provider{
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// Claims are the token claims the API cares about. Expiry is filled
// from the verified token, not the raw payload: the exp claim is a
// Unix timestamp and does not decode into a time.Time.
type Claims struct {
	Subject string    `json:"sub"`
	Email   string    `json:"email,omitempty"`
	Expiry  time.Time `json:"-"`
}

// Expired reports whether the token is past its expiry.
func (c *Claims) Expired() bool {
	return !c.Expiry.IsZero() && time.Now().After(c.Expiry)
}

// VerifyToken verifies an ID token. Opaque access tokens fall back to
// the issuer's userinfo endpoint.
func (p *Provider) VerifyToken(ctx context.Context, rawToken string) (*Claims, error) {
	rawToken = strings.TrimPrefix(rawToken, "Bearer ")

	idToken, err := p.verifier.Verify(ctx, rawToken)
	if err != nil {
		return p.verifyViaUserInfo(ctx, rawToken)
	}

	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}
	claims.Expiry = idToken.Expiry
	return &claims, nil
}

func (p *Provider) verifyViaUserInfo(ctx context.Context, accessToken string) (*Claims, error) {
	userInfo, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
	}))
	if err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}
	return &Claims{Subject: userInfo.Subject, Email: userInfo.Email}, nil
}
