package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/coffeeshop/pkg/drinks"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := Open(context.Background(), Config{Driver: DriverSQLite, URL: "file::memory:?_foreign_keys=on"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewSQLStore(db, DriverSQLite)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func water() []drinks.Ingredient {
	return []drinks.Ingredient{{Color: "blue", Name: "water", Parts: 1}}
}

func TestSQLStore_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	d := &drinks.Drink{Title: "Water", Recipe: water()}
	require.NoError(t, store.Insert(ctx, d))
	assert.Equal(t, int64(1), d.ID)

	got, err := store.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Water", got.Title)
	assert.Equal(t, water(), got.Recipe)

	byTitle, err := store.FindByTitle(ctx, "Water")
	require.NoError(t, err)
	assert.Equal(t, d.ID, byTitle.ID)

	_, err = store.FindByTitle(ctx, "water")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.FindByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_ListAllOrdersByID(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	for _, title := range []string{"Latte", "Espresso", "Mocha"} {
		require.NoError(t, store.Insert(ctx, &drinks.Drink{Title: title, Recipe: water()}))
	}

	all, err = store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Latte", all[0].Title)
	assert.Equal(t, "Espresso", all[1].Title)
	assert.Equal(t, "Mocha", all[2].Title)
	assert.Less(t, all[0].ID, all[1].ID)
}

func TestSQLStore_DuplicateTitleConflicts(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	require.NoError(t, store.Insert(ctx, &drinks.Drink{Title: "Water", Recipe: water()}))
	err := store.Insert(ctx, &drinks.Drink{Title: "Water", Recipe: water()})
	assert.ErrorIs(t, err, ErrConflict)

	other := &drinks.Drink{Title: "Tea", Recipe: water()}
	require.NoError(t, store.Insert(ctx, other))
	other.Title = "Water"
	assert.ErrorIs(t, store.Update(ctx, other), ErrConflict)

	got, err := store.FindByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tea", got.Title)
}

func TestSQLStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	d := &drinks.Drink{Title: "Water", Recipe: water()}
	require.NoError(t, store.Insert(ctx, d))

	d.Title = "Sparkling Water"
	d.Recipe = append(d.Recipe, drinks.Ingredient{Color: "white", Name: "bubbles", Parts: 2})
	require.NoError(t, store.Update(ctx, d))

	got, err := store.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sparkling Water", got.Title)
	assert.Len(t, got.Recipe, 2)

	require.NoError(t, store.Delete(ctx, d.ID))
	_, err = store.FindByID(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, d.ID), ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, &drinks.Drink{ID: 42, Title: "Ghost"}), ErrNotFound)
}

func TestSQLStore_IDsNotReused(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	first := &drinks.Drink{Title: "One", Recipe: water()}
	require.NoError(t, store.Insert(ctx, first))
	require.NoError(t, store.Delete(ctx, first.ID))

	second := &drinks.Drink{Title: "Two", Recipe: water()}
	require.NoError(t, store.Insert(ctx, second))
	assert.Greater(t, second.ID, first.ID)
}

func TestSQLStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	require.NoError(t, store.Insert(ctx, &drinks.Drink{Title: "Water", Recipe: water()}))
	require.NoError(t, store.Reset(ctx))

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLStore_NilRecipeStoredAsEmptyList(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	d := &drinks.Drink{Title: "Nothing"}
	require.NoError(t, store.Insert(ctx, d))

	got, err := store.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Recipe)
	assert.Empty(t, got.Recipe)
}

func TestSQLStore_InsertRollsBackOnUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO drinks (title, recipe) VALUES ($1, $2) RETURNING id`)).
		WithArgs("Water", `[{"color":"blue","name":"water","parts":1}]`).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	store := NewSQLStore(db, DriverPostgres)
	err = store.Insert(context.Background(), &drinks.Drink{Title: "Water", Recipe: water()})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_DeleteRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM drinks WHERE id = $1`)).
		WithArgs(int64(7)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	store := NewSQLStore(db, DriverPostgres)
	err = store.Delete(context.Background(), 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_UpdateCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE drinks SET title = $1, recipe = $2 WHERE id = $3`)).
		WithArgs("Tea", "[]", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewSQLStore(db, DriverPostgres)
	require.NoError(t, store.Update(context.Background(), &drinks.Drink{ID: 3, Title: "Tea"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_CorruptRecipe(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, recipe FROM drinks WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "recipe"}).AddRow(int64(1), "Broken", "not json"))

	store := NewSQLStore(db, DriverPostgres)
	_, err = store.FindByID(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_MigrateUnknownDriver(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewSQLStore(db, "mysql")
	assert.Error(t, store.Migrate(context.Background()))
}

func TestOpen(t *testing.T) {
	t.Run("unsupported driver", func(t *testing.T) {
		_, err := Open(context.Background(), Config{Driver: "mysql", URL: "x"})
		assert.Error(t, err)
	})

	t.Run("sqlite pool is single connection", func(t *testing.T) {
		db, err := Open(context.Background(), Config{Driver: DriverSQLite, URL: ":memory:"})
		require.NoError(t, err)
		defer db.Close()
		assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(sql.ErrNoRows))
}
