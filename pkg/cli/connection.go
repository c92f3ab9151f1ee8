package cli

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/platinummonkey/coffeeshop/pkg/client"
)

const defaultServer = "http://localhost:8080"

// connectionFlags are shared by every subcommand
type connectionFlags struct {
	server       *string
	token        *string
	domain       *string
	audience     *string
	clientID     *string
	clientSecret *string
	tokenURL     *string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func addConnectionFlags(fs *flag.FlagSet) *connectionFlags {
	return &connectionFlags{
		server:       fs.String("server", envOr("DRINKS_SERVER", defaultServer), "Drinks API URL"),
		token:        fs.String("token", os.Getenv("DRINKS_TOKEN"), "Bearer token"),
		domain:       fs.String("domain", os.Getenv("AUTH0_DOMAIN"), "Identity provider domain"),
		audience:     fs.String("audience", os.Getenv("API_AUDIENCE"), "API audience"),
		clientID:     fs.String("client-id", os.Getenv("AUTH0_CLIENT_ID"), "Machine client ID"),
		clientSecret: fs.String("client-secret", os.Getenv("AUTH0_CLIENT_SECRET"), "Machine client secret"),
		tokenURL:     fs.String("token-url", os.Getenv("AUTH0_TOKEN_URL"), "Token endpoint override"),
	}
}

// anonymous returns a client without credentials
func (f *connectionFlags) anonymous() *client.Client {
	return client.New(*f.server, nil)
}

// authenticated returns a client carrying a bearer token
func (f *connectionFlags) authenticated(ctx context.Context) (*client.Client, error) {
	httpClient, err := f.httpClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.New(*f.server, httpClient), nil
}

func (f *connectionFlags) httpClient(ctx context.Context) (*http.Client, error) {
	if *f.token != "" {
		return client.StaticTokenClient(ctx, *f.token), nil
	}
	if *f.clientID == "" || *f.clientSecret == "" {
		return nil, fmt.Errorf("a token or client credentials are required")
	}
	if *f.domain == "" && *f.tokenURL == "" {
		return nil, fmt.Errorf("domain or token-url is required with client credentials")
	}
	return client.TokenClient(ctx, client.CredentialsConfig{
		Domain:       *f.domain,
		Audience:     *f.audience,
		ClientID:     *f.clientID,
		ClientSecret: *f.clientSecret,
		TokenURL:     *f.tokenURL,
	}), nil
}
