// Package middleware provides the authorization gate for permission-scoped
// routes and optional per-caller rate limiting.
//
// # Gate
//
// Gate validates the bearer token with a TokenValidator (normally
// *auth.Validator) and checks the token's permissions claim:
//
//	gate := middleware.NewGate(validator, logger, metrics)
//	router.Handle("/drinks", gate.RequirePermission(auth.PermissionPostDrinks)(createHandler)).
//		Methods(http.MethodPost)
//
// Rejections are written through httputil.WriteAPIError:
//
//	token errors               status from the validator (401/400)
//	no permissions claim       400 "Permissions not included in JWT."
//	permission not granted     403 "Permission not found."
//	key set unreachable        500
//
// Handlers read the validated claims with ClaimsFromContext.
//
// # Rate limiting
//
// RateLimit wraps a handler with a Limiter. RateLimiter keeps token buckets
// in process; RedisRateLimiter shares fixed windows across replicas through
// Redis. Callers are keyed by token subject once a gate has run, otherwise by
// client IP. Over-budget requests get 429 "rate limit exceeded" with a
// Retry-After header. Limiter errors let the request through.
package middleware
