package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/platinummonkey/coffeeshop/pkg/observability"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// JWKSMinRefreshInterval is the shortest gap between JWKS refetches
// triggered by unknown key ids
const JWKSMinRefreshInterval = 5 * time.Second

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Identity provider configuration
	Auth AuthConfig

	// Observability configuration
	Observability ObservabilityConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds the drink store connection settings
type DatabaseConfig struct {
	Driver   string
	URL      string
	MaxConns int

	// Reset drops and recreates the drinks table at startup. Development only.
	Reset bool
}

// AuthConfig holds the token issuer settings
type AuthConfig struct {
	Domain        string
	Audience      string
	Algorithms    []string
	JWKSURL       string
	OIDCDiscovery bool
	// JWKSCacheTTL may not be shorter than JWKSMinRefreshInterval
	JWKSCacheTTL  time.Duration
	JWKSCacheSize int
}

// Issuer returns the expected iss claim, https://<domain>/
func (a AuthConfig) Issuer() string {
	return "https://" + strings.TrimSuffix(a.Domain, "/") + "/"
}

// DefaultJWKSURL returns the conventional key set location for the domain
func (a AuthConfig) DefaultJWKSURL() string {
	return a.Issuer() + ".well-known/jwks.json"
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// RateLimitConfig holds per-caller request limits. A RedisURL shares the
// limits across replicas; otherwise they are kept in process.
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
	Burst    int
	RedisURL string
}

var supportedAlgorithms = map[string]bool{
	"RS256": true, "RS384": true, "RS512": true,
	"PS256": true, "PS384": true, "PS512": true,
	"ES256": true, "ES384": true, "ES512": true,
}

// LoadConfig loads configuration from environment variables, after seeding
// the environment from an optional dotenv file
func LoadConfig() (*Config, error) {
	if err := loadDotEnv(getEnv("COFFEESHOP_ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server:        loadServerConfig(),
		Database:      loadDatabaseConfig(),
		Auth:          loadAuthConfig(),
		Observability: loadObservabilityConfig(),
		RateLimit:     loadRateLimitConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv reads KEY=VALUE pairs from path without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("COFFEESHOP_HOST", "0.0.0.0"),
		Port:            getEnv("COFFEESHOP_PORT", "8080"),
		ReadTimeout:     getEnvDuration("COFFEESHOP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("COFFEESHOP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("COFFEESHOP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("COFFEESHOP_SHUTDOWN_TIMEOUT", 30*time.Second),
		CORSOrigins:     getEnvList("COFFEESHOP_CORS_ORIGINS", []string{"*"}),
		HealthPort:      getEnv("COFFEESHOP_HEALTH_PORT", "9090"),
	}
}

// loadDatabaseConfig loads database configuration from environment
func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:   strings.ToLower(getEnv("COFFEESHOP_DB_DRIVER", DriverSQLite)),
		URL:      getEnv("COFFEESHOP_DB_URL", "file:database.db?_foreign_keys=on"),
		MaxConns: getEnvInt("COFFEESHOP_DB_MAX_CONNS", 10),
		Reset:    getEnvBool("COFFEESHOP_DB_RESET", false),
	}
}

// loadAuthConfig loads identity provider configuration from environment.
// The unprefixed names match the variables Auth0 quickstarts export.
func loadAuthConfig() AuthConfig {
	algorithms := getEnvList("ALGORITHMS", []string{"RS256"})
	for i, alg := range algorithms {
		algorithms[i] = strings.ToUpper(alg)
	}

	return AuthConfig{
		Domain:        strings.TrimSuffix(strings.TrimPrefix(getEnv("AUTH0_DOMAIN", ""), "https://"), "/"),
		Audience:      getEnv("API_AUDIENCE", ""),
		Algorithms:    algorithms,
		JWKSURL:       getEnv("COFFEESHOP_JWKS_URL", ""),
		OIDCDiscovery: getEnvBool("COFFEESHOP_OIDC_DISCOVERY", false),
		JWKSCacheTTL:  getEnvDuration("COFFEESHOP_JWKS_CACHE_TTL", 10*time.Minute),
		JWKSCacheSize: getEnvInt("COFFEESHOP_JWKS_CACHE_SIZE", 16),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(getEnv("COFFEESHOP_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("COFFEESHOP_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("COFFEESHOP_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("COFFEESHOP_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("COFFEESHOP_OTEL_SERVICE_NAME", "coffeeshop"),
		OTelServiceVersion: getEnv("COFFEESHOP_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("COFFEESHOP_OTEL_INSECURE", true),
	}
}

// loadRateLimitConfig loads rate limiting configuration from environment
func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:  getEnvBool("COFFEESHOP_RATE_LIMIT_ENABLED", false),
		Requests: getEnvInt("COFFEESHOP_RATE_LIMIT_REQUESTS", 60),
		Window:   getEnvDuration("COFFEESHOP_RATE_LIMIT_WINDOW", time.Minute),
		Burst:    getEnvInt("COFFEESHOP_RATE_LIMIT_BURST", 10),
		RedisURL: getEnv("COFFEESHOP_REDIS_URL", ""),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	// Validate database config
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("invalid database driver: %s (must be postgres or sqlite3)", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database URL is required")
	}
	if c.Database.MaxConns < 0 {
		return fmt.Errorf("database max connections must not be negative")
	}

	// Validate identity provider config
	if c.Auth.Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}
	if c.Auth.Audience == "" {
		return fmt.Errorf("API_AUDIENCE is required")
	}
	if len(c.Auth.Algorithms) == 0 {
		return fmt.Errorf("at least one signing algorithm is required")
	}
	for _, alg := range c.Auth.Algorithms {
		if !supportedAlgorithms[alg] {
			return fmt.Errorf("unsupported signing algorithm: %s", alg)
		}
	}
	if c.Auth.JWKSCacheSize <= 0 {
		return fmt.Errorf("JWKS cache size must be positive")
	}
	if c.Auth.JWKSCacheTTL < JWKSMinRefreshInterval {
		return fmt.Errorf("JWKS cache TTL must be at least %s", JWKSMinRefreshInterval)
	}

	// Validate rate limit config
	if c.RateLimit.Enabled {
		if c.RateLimit.Requests <= 0 {
			return fmt.Errorf("rate limit requests must be positive")
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("rate limit window must be positive")
		}
		if c.RateLimit.Burst < 0 {
			return fmt.Errorf("rate limit burst must not be negative")
		}
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList returns a comma separated environment variable or a default
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
