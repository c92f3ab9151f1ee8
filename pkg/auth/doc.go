// Package auth validates bearer tokens issued by an OpenID Connect (Auth0
// style) identity provider.
//
// # Overview
//
// A request's Authorization header must be "Bearer <jwt>". The token is
// verified against the issuer's published JSON Web Key Set, then checked for
// expiry, audience and issuer. The resulting Claims carry the token's
// "permissions" claim, which pkg/middleware checks per route.
//
// # Key Components
//
// KeySet: fetches the JWKS document and caches keys by kid in an expiring
// LRU. An unknown kid triggers one refetch so rotated keys are picked up.
// Entries are decoded with go-jose; malformed, symmetric, private and
// encryption keys are skipped.
//
//	keys := auth.NewKeySet(auth.KeySetConfig{
//		URL:  "https://tenant.auth0.com/.well-known/jwks.json",
//		TTL:  10 * time.Minute,
//		Size: 16,
//	}, logrusLogger)
//
// DiscoverJWKSURL: reads jwks_uri from the issuer's discovery document.
//
// Validator: verifies tokens.
//
//	validator := auth.NewValidator(keys, auth.ValidatorConfig{
//		Issuer:     "https://tenant.auth0.com/",
//		Audience:   "drinks",
//		Algorithms: []string{"RS256"},
//	})
//	claims, err := validator.Validate(r)
//
// # Errors
//
// Failures are *AuthError values with the status and description sent to
// the client:
//
//	401 missing_header  Authorization header is expected.
//	401 invalid_header  malformed header, missing kid, disallowed algorithm
//	400 invalid_header  Unable to find the appropriate key.
//	401 token_expired   Token expired.
//	401 invalid_claims  Incorrect claims. Please, check the audience and issuer.
//	400 invalid_header  Unable to parse authentication token.
//	400 invalid_claims  Permissions not included in JWT.
//	403 unauthorized    Permission not found.
//
// A JWKS endpoint that cannot be reached is not the caller's fault and is
// returned as a plain error (500).
package auth
