// Package observability provides structured logging, Prometheus metrics,
// OpenTelemetry tracing, health checks, and graceful shutdown for the
// coffee shop API.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("drink_id", id).Info("Drink created")
//
// Request-scoped loggers travel in the context:
//
//	ctx = observability.WithLogger(ctx, logger)
//	observability.FromContext(ctx).Warn("Permission denied")
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//	observability.RegisterMetricsEndpoint(adminMux, registry)
//
// Requests are labelled with the matched gorilla/mux route template so that
// /drinks/1 and /drinks/2 share one series.
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(db, keySet.Ping).WithMetrics(metrics)
//	observability.RegisterHealthRoutes(adminMux, checker)
//
// A failing database makes the service unhealthy (503 on /health/ready). A
// failing identity provider only degrades it, since public routes still work.
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, cfg, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//	router.Use(observability.TraceMiddleware("coffeeshop"))
//
// # Graceful Shutdown
//
//	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
//	sm := observability.NewShutdownManager(logger, 30*time.Second, apiServer, adminServer)
//	sm.RegisterShutdownFunc(func(ctx context.Context) error { return db.Close() })
//	err := sm.WaitForShutdown(ctx)
package observability
