package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// DiscoverJWKSURL reads jwks_uri from the issuer's OpenID discovery document.
// issuer must match the document's issuer exactly, trailing slash included.
func DiscoverJWKSURL(ctx context.Context, issuer string) (string, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return "", fmt.Errorf("failed to discover OIDC provider %s: %w", issuer, err)
	}

	var metadata struct {
		JWKSURL string `json:"jwks_uri"`
	}
	if err := provider.Claims(&metadata); err != nil {
		return "", fmt.Errorf("failed to read discovery document: %w", err)
	}
	if metadata.JWKSURL == "" {
		return "", fmt.Errorf("discovery document for %s has no jwks_uri", issuer)
	}
	return metadata.JWKSURL, nil
}
