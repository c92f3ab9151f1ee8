// Package config provides application configuration management from environment variables.
//
// # Overview
//
// Configuration is read from the process environment. A dotenv file (default
// .env, override with COFFEESHOP_ENV_FILE) is loaded first when present; it
// never overrides variables that are already set.
//
// # Configuration Structure
//
// Server settings:
//
//	COFFEESHOP_HOST="0.0.0.0"
//	COFFEESHOP_PORT="8080"
//	COFFEESHOP_HEALTH_PORT="9090"
//	COFFEESHOP_READ_TIMEOUT="15s"
//	COFFEESHOP_CORS_ORIGINS="https://shop.example.com"
//
// Database settings:
//
//	COFFEESHOP_DB_DRIVER="postgres"  # postgres, sqlite3
//	COFFEESHOP_DB_URL="postgres://localhost/coffeeshop?sslmode=disable"
//	COFFEESHOP_DB_MAX_CONNS="10"
//	COFFEESHOP_DB_RESET="false"      # drop and recreate drinks at startup
//
// Identity provider settings:
//
//	AUTH0_DOMAIN="tenant.auth0.com"
//	API_AUDIENCE="drinks"
//	ALGORITHMS="RS256"
//	COFFEESHOP_JWKS_URL=""           # overrides discovery and the Auth0 default
//	COFFEESHOP_OIDC_DISCOVERY="false"
//	COFFEESHOP_JWKS_CACHE_TTL="10m"
//
// Observability settings:
//
//	COFFEESHOP_LOG_LEVEL="info"  # debug, info, warn, error
//	COFFEESHOP_METRICS_ENABLED="true"
//	COFFEESHOP_OTEL_ENABLED="true"
//	COFFEESHOP_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
package config
