package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ValidatorConfig holds the expectations a token must meet
type ValidatorConfig struct {
	Issuer     string
	Audience   string
	Algorithms []string
	// Leeway tolerates clock skew on exp, nbf and iat
	Leeway time.Duration
}

// Validator verifies bearer tokens against keys from a KeyProvider
type Validator struct {
	keys       KeyProvider
	cfg        ValidatorConfig
	algorithms map[string]bool
	parser     *jwt.Parser
}

// NewValidator creates a token validator
func NewValidator(keys KeyProvider, cfg ValidatorConfig) *Validator {
	algorithms := make(map[string]bool, len(cfg.Algorithms))
	for _, alg := range cfg.Algorithms {
		algorithms[alg] = true
	}

	return &Validator{
		keys:       keys,
		cfg:        cfg,
		algorithms: algorithms,
		parser: jwt.NewParser(
			jwt.WithValidMethods(cfg.Algorithms),
			jwt.WithAudience(cfg.Audience),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(cfg.Leeway),
		),
	}
}

// Validate extracts the bearer token from r and validates it
func (v *Validator) Validate(r *http.Request) (*Claims, error) {
	raw, err := ExtractBearerToken(r)
	if err != nil {
		return nil, err
	}
	return v.ValidateToken(r.Context(), raw)
}

// ValidateToken verifies signature, expiry, audience and issuer. Failures
// are *AuthError except when the key set cannot be fetched, which is
// returned as a plain error.
func (v *Validator) ValidateToken(ctx context.Context, raw string) (*Claims, error) {
	// Read the header first to pick the key
	unverified, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, errInvalidHeader("Authorization malformed.").wrap(err)
	}

	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return nil, errInvalidHeader("Authorization malformed.")
	}
	alg, _ := unverified.Header["alg"].(string)
	if !v.algorithms[alg] {
		return nil, errInvalidHeader("Authorization malformed.").wrap(fmt.Errorf("algorithm %q not allowed", alg))
	}

	key, err := v.keys.Key(ctx, kid)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, NewAuthError(http.StatusBadRequest, CodeInvalidHeader, "Unable to find the appropriate key.").wrap(err)
		}
		return nil, fmt.Errorf("failed to resolve signing key: %w", err)
	}

	mapClaims := jwt.MapClaims{}
	_, err = v.parser.ParseWithClaims(raw, mapClaims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, NewAuthError(http.StatusUnauthorized, CodeTokenExpired, "Token expired.").wrap(err)
		case errors.Is(err, jwt.ErrTokenInvalidAudience), errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, NewAuthError(http.StatusUnauthorized, CodeInvalidClaims,
				"Incorrect claims. Please, check the audience and issuer.").wrap(err)
		default:
			return nil, NewAuthError(http.StatusBadRequest, CodeInvalidHeader,
				"Unable to parse authentication token.").wrap(err)
		}
	}

	return claimsFromMap(mapClaims), nil
}

func claimsFromMap(m jwt.MapClaims) *Claims {
	claims := &Claims{Raw: map[string]interface{}(m)}
	claims.Subject, _ = m.GetSubject()
	claims.Issuer, _ = m.GetIssuer()
	if aud, err := m.GetAudience(); err == nil {
		claims.Audience = []string(aud)
	}
	if exp, err := m.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	claims.Permissions = permissionsFromClaim(m["permissions"])
	return claims
}
