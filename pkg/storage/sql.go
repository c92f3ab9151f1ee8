package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/platinummonkey/coffeeshop/pkg/drinks"
)

// SQLStore implements DrinkRepository on database/sql. The same queries run
// on PostgreSQL and SQLite.
type SQLStore struct {
	db     *sql.DB
	driver string
}

var _ DrinkRepository = (*SQLStore)(nil)

// NewSQLStore wraps an open database handle
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// DB returns the underlying handle
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Driver returns the database driver name
func (s *SQLStore) Driver() string {
	return s.driver
}

// ListAll returns every drink ordered by id
func (s *SQLStore) ListAll(ctx context.Context) ([]drinks.Drink, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, recipe FROM drinks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drinks: %w", err)
	}
	defer rows.Close()

	result := make([]drinks.Drink, 0)
	for rows.Next() {
		d, err := scanDrink(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate drinks: %w", err)
	}
	return result, nil
}

// FindByID returns the drink with the given id
func (s *SQLStore) FindByID(ctx context.Context, id int64) (*drinks.Drink, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, recipe FROM drinks WHERE id = $1`, id)
	d, err := scanDrink(row)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// FindByTitle returns the drink with the given title
func (s *SQLStore) FindByTitle(ctx context.Context, title string) (*drinks.Drink, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, recipe FROM drinks WHERE title = $1`, title)
	d, err := scanDrink(row)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Insert stores a new drink and sets drink.ID
func (s *SQLStore) Insert(ctx context.Context, drink *drinks.Drink) error {
	recipe, err := drinks.EncodeRecipe(drink.Recipe)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO drinks (title, recipe) VALUES ($1, $2) RETURNING id`,
			drink.Title, recipe,
		).Scan(&id)
		if err != nil {
			return classify("insert drink", err)
		}
		drink.ID = id
		return nil
	})
}

// Update replaces title and recipe of the drink identified by drink.ID
func (s *SQLStore) Update(ctx context.Context, drink *drinks.Drink) error {
	recipe, err := drinks.EncodeRecipe(drink.Recipe)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE drinks SET title = $1, recipe = $2 WHERE id = $3`,
			drink.Title, recipe, drink.ID,
		)
		if err != nil {
			return classify("update drink", err)
		}
		return requireRow(res)
	})
}

// Delete removes the drink with the given id
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM drinks WHERE id = $1`, id)
		if err != nil {
			return classify("delete drink", err)
		}
		return requireRow(res)
	})
}

// Ping verifies the database is reachable
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("commit", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDrink(row scanner) (*drinks.Drink, error) {
	var (
		d      drinks.Drink
		recipe string
	)
	if err := row.Scan(&d.ID, &d.Title, &recipe); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan drink: %w", err)
	}

	ingredients, err := drinks.DecodeRecipe(recipe)
	if err != nil {
		return nil, fmt.Errorf("drink %d: %w", d.ID, err)
	}
	d.Recipe = ingredients
	return &d, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// classify maps unique constraint violations to ErrConflict
func classify(op string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
