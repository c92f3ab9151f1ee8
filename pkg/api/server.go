package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/coffeeshop/pkg/auth"
	"github.com/platinummonkey/coffeeshop/pkg/httputil"
	"github.com/platinummonkey/coffeeshop/pkg/middleware"
	"github.com/platinummonkey/coffeeshop/pkg/observability"
	"github.com/platinummonkey/coffeeshop/pkg/storage"
)

// DefaultMaxBodyBytes caps request bodies on mutating routes
const DefaultMaxBodyBytes = 1 << 20

// Server represents our API server
type Server struct {
	repo         storage.DrinkRepository
	gate         *middleware.Gate
	router       *mux.Router
	logger       *observability.Logger
	metrics      *observability.Metrics
	tracing      bool
	corsOrigins  []string
	maxBodyBytes int64
	rateLimit    func(http.Handler) http.Handler
	once         sync.Once
}

// NewServer creates a new API server. Call Handler once options are set.
func NewServer(repo storage.DrinkRepository, gate *middleware.Gate, logger *observability.Logger) *Server {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Server{
		repo:         repo,
		gate:         gate,
		router:       mux.NewRouter(),
		logger:       logger,
		corsOrigins:  []string{"*"},
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// WithMetrics records per-route Prometheus metrics
func (s *Server) WithMetrics(metrics *observability.Metrics) *Server {
	s.metrics = metrics
	return s
}

// WithTracing wraps matched routes in OpenTelemetry spans
func (s *Server) WithTracing(enabled bool) *Server {
	s.tracing = enabled
	return s
}

// WithCORSOrigins sets the allowed CORS origins
func (s *Server) WithCORSOrigins(origins []string) *Server {
	if len(origins) > 0 {
		s.corsOrigins = origins
	}
	return s
}

// WithRateLimit applies limit to every drink route. Protected routes are
// limited after authorization so callers are keyed by token subject.
func (s *Server) WithRateLimit(limit func(http.Handler) http.Handler) *Server {
	s.rateLimit = limit
	return s
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Handler builds the router and returns it wrapped in the request pipeline:
// request id, logging, panic recovery, CORS and body size limit.
func (s *Server) Handler() http.Handler {
	s.once.Do(s.setupRoutes)
	return httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.logger),
		httputil.RecoveryMiddleware(s.logger),
		httputil.CORSMiddleware(s.corsOrigins),
		httputil.MaxBytesMiddleware(s.maxBodyBytes),
	)(s.router)
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.NotFoundHandler = httputil.NotFoundHandler()
	s.router.MethodNotAllowedHandler = httputil.MethodNotAllowedHandler()

	if s.tracing {
		s.router.Use(observability.TraceMiddleware("coffeeshop"))
	}
	if s.metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))
	}

	s.router.Handle("/drinks", s.limit(http.HandlerFunc(s.listDrinks))).Methods(http.MethodGet)
	s.router.Handle("/drinks-detail", s.protect(auth.PermissionGetDrinksDetail, s.listDrinksDetail)).Methods(http.MethodGet)
	s.router.Handle("/drinks", s.protect(auth.PermissionPostDrinks, s.createDrink)).Methods(http.MethodPost)
	s.router.Handle("/drinks/{id:[0-9]+}", s.protect(auth.PermissionPatchDrinks, s.updateDrink)).Methods(http.MethodPatch)
	s.router.Handle("/drinks/{id:[0-9]+}", s.protect(auth.PermissionDeleteDrinks, s.deleteDrink)).Methods(http.MethodDelete)
}

func (s *Server) protect(perm auth.Permission, fn http.HandlerFunc) http.Handler {
	return s.gate.RequirePermission(perm)(s.limit(fn))
}

func (s *Server) limit(h http.Handler) http.Handler {
	if s.rateLimit == nil {
		return h
	}
	return s.rateLimit(h)
}
