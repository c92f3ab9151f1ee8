package storage

import (
	"context"
	"fmt"
)

var createTable = map[string]string{
	DriverPostgres: `
		CREATE TABLE IF NOT EXISTS drinks (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL UNIQUE,
			recipe TEXT NOT NULL
		)`,
	DriverSQLite: `
		CREATE TABLE IF NOT EXISTS drinks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL UNIQUE,
			recipe TEXT NOT NULL
		)`,
}

const dropTable = `DROP TABLE IF EXISTS drinks`

// Migrate creates the drinks table if it does not exist
func (s *SQLStore) Migrate(ctx context.Context) error {
	stmt, ok := createTable[s.driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", s.driver)
	}
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create drinks table: %w", err)
	}
	return nil
}

// Reset drops all drink data and recreates an empty table
func (s *SQLStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, dropTable); err != nil {
		return fmt.Errorf("failed to drop drinks table: %w", err)
	}
	return s.Migrate(ctx)
}
