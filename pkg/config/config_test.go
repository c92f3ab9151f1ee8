package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/coffeeshop/pkg/observability"
)

// setRequiredAuth sets the variables LoadConfig cannot default
func setRequiredAuth(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH0_DOMAIN", "coffee.example.auth0.com")
	t.Setenv("API_AUDIENCE", "drinks")
}

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns env value when set",
			key:          "COFFEESHOP_TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "COFFEESHOP_TEST_VAR_NOT_SET",
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			if got := getEnv(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvBool tests the getEnvBool helper function
func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		defaultValue bool
		envValue     string
		want         bool
	}{
		{name: "returns true for 'true'", envValue: "true", want: true},
		{name: "returns true for '1'", envValue: "1", want: true},
		{name: "returns true for 'TRUE'", envValue: "TRUE", want: true},
		{name: "returns false for 'false'", defaultValue: true, envValue: "false", want: false},
		{name: "returns false for garbage", defaultValue: true, envValue: "yes please", want: false},
		{name: "returns default when unset", defaultValue: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("COFFEESHOP_TEST_BOOL", tt.envValue)
			}

			if got := getEnvBool("COFFEESHOP_TEST_BOOL", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvIntAndDuration(t *testing.T) {
	t.Setenv("COFFEESHOP_TEST_INT", "42")
	t.Setenv("COFFEESHOP_TEST_BAD_INT", "forty-two")
	t.Setenv("COFFEESHOP_TEST_DURATION", "90s")
	t.Setenv("COFFEESHOP_TEST_BAD_DURATION", "soon")

	assert.Equal(t, 42, getEnvInt("COFFEESHOP_TEST_INT", 1))
	assert.Equal(t, 1, getEnvInt("COFFEESHOP_TEST_BAD_INT", 1))
	assert.Equal(t, 90*time.Second, getEnvDuration("COFFEESHOP_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, getEnvDuration("COFFEESHOP_TEST_BAD_DURATION", time.Second))
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("COFFEESHOP_TEST_LIST", " RS256, ES256 ,,")

	assert.Equal(t, []string{"RS256", "ES256"}, getEnvList("COFFEESHOP_TEST_LIST", nil))
	assert.Equal(t, []string{"*"}, getEnvList("COFFEESHOP_TEST_LIST_UNSET", []string{"*"}))
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredAuth(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.NotEmpty(t, cfg.Database.URL)
	assert.False(t, cfg.Database.Reset)

	assert.Equal(t, []string{"RS256"}, cfg.Auth.Algorithms)
	assert.Equal(t, "https://coffee.example.auth0.com/", cfg.Auth.Issuer())
	assert.Equal(t, "https://coffee.example.auth0.com/.well-known/jwks.json", cfg.Auth.DefaultJWKSURL())
	assert.Equal(t, 10*time.Minute, cfg.Auth.JWKSCacheTTL)

	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.False(t, cfg.Observability.OTelEnabled)

	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 60, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Empty(t, cfg.RateLimit.RedisURL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("AUTH0_DOMAIN", "https://tenant.auth0.com/")
	t.Setenv("API_AUDIENCE", "coffee")
	t.Setenv("ALGORITHMS", "rs256,es256")
	t.Setenv("COFFEESHOP_DB_DRIVER", "POSTGRES")
	t.Setenv("COFFEESHOP_DB_URL", "postgres://localhost/coffee?sslmode=disable")
	t.Setenv("COFFEESHOP_DB_RESET", "true")
	t.Setenv("COFFEESHOP_LOG_LEVEL", "debug")
	t.Setenv("COFFEESHOP_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "tenant.auth0.com", cfg.Auth.Domain)
	assert.Equal(t, "https://tenant.auth0.com/", cfg.Auth.Issuer())
	assert.Equal(t, []string{"RS256", "ES256"}, cfg.Auth.Algorithms)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.True(t, cfg.Database.Reset)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "AUTH0_DOMAIN=dotenv.auth0.com\nAPI_AUDIENCE=from-file\nCOFFEESHOP_DOTENV_ONLY=loaded\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("COFFEESHOP_ENV_FILE", path)
	// process environment wins over the file
	t.Setenv("API_AUDIENCE", "from-process")
	t.Setenv("AUTH0_DOMAIN", "")
	os.Unsetenv("AUTH0_DOMAIN")
	t.Cleanup(func() { os.Unsetenv("COFFEESHOP_DOTENV_ONLY") })

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "dotenv.auth0.com", cfg.Auth.Domain)
	assert.Equal(t, "from-process", cfg.Auth.Audience)
	assert.Equal(t, "loaded", os.Getenv("COFFEESHOP_DOTENV_ONLY"))
}

func TestLoadConfig_MissingEnvFileIsIgnored(t *testing.T) {
	setRequiredAuth(t)
	t.Setenv("COFFEESHOP_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	_, err := LoadConfig()
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: "8080", HealthPort: "9090"},
			Database: DatabaseConfig{
				Driver: DriverSQLite,
				URL:    "file::memory:",
			},
			Auth: AuthConfig{
				Domain:        "tenant.auth0.com",
				Audience:      "drinks",
				Algorithms:    []string{"RS256"},
				JWKSCacheTTL:  time.Minute,
				JWKSCacheSize: 4,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "server port is required"},
		{name: "missing health port", mutate: func(c *Config) { c.Server.HealthPort = "" }, wantErr: "health port is required"},
		{name: "same ports", mutate: func(c *Config) { c.Server.HealthPort = "8080" }, wantErr: "must be different"},
		{name: "bad driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "invalid database driver"},
		{name: "missing db url", mutate: func(c *Config) { c.Database.URL = "" }, wantErr: "database URL is required"},
		{name: "missing domain", mutate: func(c *Config) { c.Auth.Domain = "" }, wantErr: "AUTH0_DOMAIN"},
		{name: "missing audience", mutate: func(c *Config) { c.Auth.Audience = "" }, wantErr: "API_AUDIENCE"},
		{name: "no algorithms", mutate: func(c *Config) { c.Auth.Algorithms = nil }, wantErr: "at least one signing algorithm"},
		{name: "symmetric algorithm", mutate: func(c *Config) { c.Auth.Algorithms = []string{"HS256"} }, wantErr: "unsupported signing algorithm: HS256"},
		{name: "zero cache size", mutate: func(c *Config) { c.Auth.JWKSCacheSize = 0 }, wantErr: "JWKS cache size"},
		{name: "cache TTL below refresh interval", mutate: func(c *Config) { c.Auth.JWKSCacheTTL = time.Second }, wantErr: "JWKS cache TTL must be at least 5s"},
		{name: "cache TTL at refresh interval", mutate: func(c *Config) { c.Auth.JWKSCacheTTL = JWKSMinRefreshInterval }},
		{
			name: "rate limit without requests",
			mutate: func(c *Config) {
				c.RateLimit = RateLimitConfig{Enabled: true, Window: time.Minute}
			},
			wantErr: "rate limit requests must be positive",
		},
		{
			name:   "disabled rate limit is not validated",
			mutate: func(c *Config) { c.RateLimit = RateLimitConfig{Requests: -1} },
		},
		{
			name: "otel without endpoint",
			mutate: func(c *Config) {
				c.Observability.OTelEnabled = true
				c.Observability.OTelServiceName = "coffeeshop"
			},
			wantErr: "OpenTelemetry endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
