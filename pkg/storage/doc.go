// Package storage persists the drink catalog.
//
// A single SQLStore serves both supported databases through database/sql:
// PostgreSQL via lib/pq for deployments and SQLite via mattn/go-sqlite3 for
// local development and tests. Queries use $N placeholders, which both
// drivers accept.
//
// Each drink is one row in the drinks table:
//
//	id      integer primary key, assigned by the database, never reused
//	title   text, unique, not null
//	recipe  text, JSON encoded list of ingredients, not null
//
// Writes run in a transaction and are rolled back on any failure. Unique
// constraint violations surface as ErrConflict and missing rows as
// ErrNotFound so callers can map them to HTTP status codes with errors.Is.
//
// InstrumentedRepository decorates any DrinkRepository with Prometheus and
// OpenTelemetry metrics:
//
//	repo := storage.NewInstrumentedRepository(
//		storage.NewSQLStore(db, storage.DriverPostgres),
//		storage.DriverPostgres, metrics, otelMetrics,
//	)
package storage
