package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// CredentialsConfig identifies a machine-to-machine application at the
// identity provider
type CredentialsConfig struct {
	// Domain is the tenant host, for example shop.eu.auth0.com
	Domain       string
	Audience     string
	ClientID     string
	ClientSecret string
	// TokenURL overrides https://<domain>/oauth/token
	TokenURL string
}

// tokenURL returns the configured token endpoint
func (c CredentialsConfig) tokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	domain := strings.TrimSuffix(strings.TrimPrefix(c.Domain, "https://"), "/")
	return "https://" + domain + "/oauth/token"
}

// TokenClient returns an HTTP client that obtains and refreshes access
// tokens with the client credentials grant
func TokenClient(ctx context.Context, cfg CredentialsConfig) *http.Client {
	cc := &clientcredentials.Config{
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		TokenURL:       cfg.tokenURL(),
		EndpointParams: url.Values{"audience": {cfg.Audience}},
		AuthStyle:      oauth2.AuthStyleInParams,
	}
	return cc.Client(ctx)
}

// StaticTokenClient returns an HTTP client that sends a fixed bearer token
func StaticTokenClient(ctx context.Context, token string) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
}
