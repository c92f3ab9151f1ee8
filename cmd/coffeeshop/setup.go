package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/coffeeshop/pkg/auth"
	"github.com/platinummonkey/coffeeshop/pkg/config"
	"github.com/platinummonkey/coffeeshop/pkg/middleware"
	"github.com/platinummonkey/coffeeshop/pkg/observability"
	"github.com/platinummonkey/coffeeshop/pkg/storage"
)

// prepareSchema creates the drinks table, or drops and recreates it when
// reset is set
func prepareSchema(ctx context.Context, schema storage.SchemaManager, reset bool, logger *observability.Logger) error {
	if reset {
		logger.Warn("COFFEESHOP_DB_RESET is set: dropping and recreating the drinks table (development only)")
		if err := schema.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
		return nil
	}
	if err := schema.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// resolveJWKSURL picks the key set location: explicit override, then OIDC
// discovery, then the Auth0 convention
func resolveJWKSURL(ctx context.Context, cfg config.AuthConfig, logger *observability.Logger) (string, error) {
	if cfg.JWKSURL != "" {
		logger.WithField("jwks_url", cfg.JWKSURL).Info("Using configured JWKS URL")
		return cfg.JWKSURL, nil
	}

	if cfg.OIDCDiscovery {
		discoverCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		url, err := auth.DiscoverJWKSURL(discoverCtx, cfg.Issuer())
		if err != nil {
			return "", fmt.Errorf("OIDC discovery failed: %w", err)
		}
		logger.WithField("jwks_url", url).Info("Discovered JWKS URL")
		return url, nil
	}

	return cfg.DefaultJWKSURL(), nil
}

// newKeySetLogger builds the logrus logger used for key set fetches
func newKeySetLogger(level observability.LogLevel) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level.String())
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

// recordDBStats copies pool statistics into the metrics until ctx is done
func recordDBStats(ctx context.Context, stats func() sql.DBStats, metrics *observability.Metrics) {
	ticker := time.NewTicker(dbStatsInterval)
	defer ticker.Stop()

	for {
		metrics.UpdateDBStats(stats())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// newLimiter builds the configured rate limiter. It returns a nil limiter
// when rate limiting is disabled. The returned close func is always non-nil.
func newLimiter(ctx context.Context, cfg config.RateLimitConfig, logger *observability.Logger) (middleware.Limiter, func() error, error) {
	noop := func() error { return nil }
	if !cfg.Enabled {
		return nil, noop, nil
	}

	limits := &middleware.RateLimitConfig{
		RequestsPerWindow: cfg.Requests,
		WindowDuration:    cfg.Window,
		BurstSize:         cfg.Burst,
	}

	if cfg.RedisURL == "" {
		logger.Info("Rate limiting enabled with in-process buckets")
		return middleware.NewRateLimiter(limits), noop, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, noop, fmt.Errorf("invalid COFFEESHOP_REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, noop, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.WithField("redis_addr", opts.Addr).Info("Rate limiting enabled with shared Redis windows")
	return middleware.NewRedisRateLimiter(client, limits, ""), client.Close, nil
}

// warmSigningKeys loads the key set before the first request. An
// unreachable JWKS endpoint is logged and retried on the first lookup.
func warmSigningKeys(ctx context.Context, keys *auth.KeySet, logger *observability.Logger) bool {
	ctx, cancel := context.WithTimeout(ctx, jwksWarmTimeout)
	defer cancel()
	if err := keys.Refresh(ctx); err != nil {
		logger.WithError(err).WithField("jwks_url", keys.URL()).Warn("Signing keys unavailable at startup")
		return false
	}
	return true
}
