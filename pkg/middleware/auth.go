package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/platinummonkey/coffeeshop/pkg/auth"
	"github.com/platinummonkey/coffeeshop/pkg/contextkeys"
	"github.com/platinummonkey/coffeeshop/pkg/httputil"
	"github.com/platinummonkey/coffeeshop/pkg/observability"
)

// TokenValidator validates the bearer token on a request
type TokenValidator interface {
	Validate(r *http.Request) (*auth.Claims, error)
}

// Gate guards routes behind a token permission
type Gate struct {
	validator TokenValidator
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// NewGate creates a new authorization gate
func NewGate(validator TokenValidator, logger *observability.Logger, metrics *observability.Metrics) *Gate {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Gate{
		validator: validator,
		logger:    logger,
		metrics:   metrics,
	}
}

// RequirePermission creates middleware that validates the bearer token and
// checks that its permissions claim grants perm
func (g *Gate) RequirePermission(perm auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := g.validator.Validate(r)
			if err != nil {
				g.reject(w, r, perm, err)
				return
			}

			if !claims.HasPermissionsClaim() {
				g.reject(w, r, perm, auth.ErrPermissionsMissing())
				return
			}
			if !claims.HasPermission(perm) {
				g.reject(w, r, perm, auth.ErrPermissionNotFound())
				return
			}

			ctx := contextkeys.WithClaims(r.Context(), claims)
			ctx = contextkeys.WithSubject(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, perm auth.Permission, err error) {
	logger := g.logger
	if _, ok := r.Context().Value(contextkeys.LoggerKey).(*observability.Logger); ok {
		logger = observability.FromContext(r.Context())
	}
	logger = logger.WithField("permission", string(perm))

	status := httputil.StatusOf(err)
	var authErr *auth.AuthError
	if errors.As(err, &authErr) {
		g.metrics.ObserveAuthFailure(authErr.Code, status)
		logger.WithError(err).Warn("Request rejected by authorization gate")
	} else {
		g.metrics.ObserveAuthFailure("internal", status)
		logger.WithError(err).Error("Token validation failed")
	}
	httputil.WriteAPIError(w, err)
}

// ClaimsFromContext returns the claims stored by RequirePermission
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(contextkeys.ClaimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}
