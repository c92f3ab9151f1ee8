package storage

import (
	"context"
	"errors"
	"time"

	"github.com/platinummonkey/coffeeshop/pkg/drinks"
)

var (
	// ErrNotFound is returned when no drink has the requested id
	ErrNotFound = errors.New("drink not found")

	// ErrConflict is returned when a write would duplicate an existing title
	ErrConflict = errors.New("drink title already exists")
)

// DrinkReader provides read access to the drink catalog
type DrinkReader interface {
	// ListAll returns every drink ordered by id
	ListAll(ctx context.Context) ([]drinks.Drink, error)

	// FindByID returns ErrNotFound when the id does not exist
	FindByID(ctx context.Context, id int64) (*drinks.Drink, error)

	// FindByTitle returns ErrNotFound when no drink carries the title
	FindByTitle(ctx context.Context, title string) (*drinks.Drink, error)
}

// DrinkWriter provides write access to the drink catalog. Every write runs
// in its own transaction and is rolled back on failure.
type DrinkWriter interface {
	// Insert stores a new drink and sets its assigned id
	Insert(ctx context.Context, drink *drinks.Drink) error

	// Update replaces title and recipe of an existing drink
	Update(ctx context.Context, drink *drinks.Drink) error

	// Delete removes the drink with the given id
	Delete(ctx context.Context, id int64) error
}

// SchemaManager creates and resets the drinks table
type SchemaManager interface {
	Migrate(ctx context.Context) error
	Reset(ctx context.Context) error
}

// DrinkRepository is the full persistence surface used by the API
type DrinkRepository interface {
	DrinkReader
	DrinkWriter
	SchemaManager
}

// Config holds database connection configuration
type Config struct {
	Driver      string
	URL         string
	MaxConns    int
	MinConns    int
	Timeout     time.Duration
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}
