package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/coffeeshop/pkg/api"
	"github.com/platinummonkey/coffeeshop/pkg/auth"
	"github.com/platinummonkey/coffeeshop/pkg/config"
	"github.com/platinummonkey/coffeeshop/pkg/middleware"
	"github.com/platinummonkey/coffeeshop/pkg/observability"
	"github.com/platinummonkey/coffeeshop/pkg/storage"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	dbConnectTimeout    = 10 * time.Second
	dbStatsInterval     = 15 * time.Second
	jwksWarmTimeout     = 10 * time.Second
	healthHeaderTimeout = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "coffeeshop: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.WithField("version", version).Info("Starting coffeeshop drinks API")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	otelMetrics, err := observability.NewOTelMetrics(nil)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry instruments: %w", err)
	}

	db, err := storage.Open(ctx, storage.Config{
		Driver:   cfg.Database.Driver,
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		Timeout:  dbConnectTimeout,
	})
	if err != nil {
		return err
	}
	logger.WithField("driver", cfg.Database.Driver).Info("Database connection established")

	repo := storage.NewInstrumentedRepository(
		storage.NewSQLStore(db, cfg.Database.Driver),
		cfg.Database.Driver, metrics, otelMetrics,
	)
	if err := prepareSchema(ctx, repo, cfg.Database.Reset, logger); err != nil {
		db.Close()
		return err
	}

	jwksURL, err := resolveJWKSURL(ctx, cfg.Auth, logger)
	if err != nil {
		db.Close()
		return err
	}

	keys := auth.NewKeySet(auth.KeySetConfig{
		URL:                jwksURL,
		TTL:                cfg.Auth.JWKSCacheTTL,
		Size:               cfg.Auth.JWKSCacheSize,
		MinRefreshInterval: config.JWKSMinRefreshInterval,
	}, newKeySetLogger(cfg.Observability.LogLevel)).WithMetrics(metrics, otelMetrics)
	warmSigningKeys(ctx, keys, logger)

	validator := auth.NewValidator(keys, auth.ValidatorConfig{
		Issuer:     cfg.Auth.Issuer(),
		Audience:   cfg.Auth.Audience,
		Algorithms: cfg.Auth.Algorithms,
	})
	gate := middleware.NewGate(validator, logger, metrics)

	server := api.NewServer(repo, gate, logger).
		WithMetrics(metrics).
		WithTracing(cfg.Observability.OTelEnabled).
		WithCORSOrigins(cfg.Server.CORSOrigins)

	limiter, closeLimiter, err := newLimiter(ctx, cfg.RateLimit, logger)
	if err != nil {
		db.Close()
		return err
	}
	if limiter != nil {
		server.WithRateLimit(middleware.RateLimit(limiter, logger))
	}

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	checker := observability.NewHealthChecker(db, keys.Ping).
		WithMetrics(metrics).
		WithVersion(version)
	observability.RegisterHealthRoutes(healthMux, checker)
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler:           healthMux,
		ReadHeaderTimeout: healthHeaderTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, httpServer, healthServer)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers, logger)
	})
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		return db.Close()
	})
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		return closeLimiter()
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("API server listening on %s", httpServer.Addr)
		return serve(httpServer)
	})
	g.Go(func() error {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		return serve(healthServer)
	})
	g.Go(func() error {
		return shutdown.WaitForShutdown(gctx)
	})
	g.Go(func() error {
		recordDBStats(gctx, db.Stats, metrics)
		return nil
	})
	if local, ok := limiter.(*middleware.RateLimiter); ok {
		g.Go(func() error {
			local.RunCleanup(gctx)
			return nil
		})
	}

	return g.Wait()
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server on %s failed: %w", srv.Addr, err)
	}
	return nil
}
