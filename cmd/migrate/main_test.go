package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMigrationPart(t *testing.T) {
	content := `
-- +migrate Up
CREATE TABLE coupons (code text);
ALTER TABLE coupons ADD COLUMN is_active boolean;

-- +migrate Down
DROP TABLE coupons;
`
	t.Run("Extract Up", func(t *testing.T) {
		up := extractMigrationPart(content, "Up")
		assert.Contains(t, up, "CREATE TABLE coupons")
		assert.Contains(t, up, "ALTER TABLE coupons")
		assert.NotContains(t, up, "DROP TABLE coupons")
		assert.NotContains(t, up, "-- +migrate Up")
	})

	t.Run("Extract Down", func(t *testing.T) {
		down := extractMigrationPart(content, "Down")
		assert.Contains(t, down, "DROP TABLE coupons")
		assert.NotContains(t, down, "CREATE TABLE coupons")
	})

	t.Run("Missing section", func(t *testing.T) {
		assert.Empty(t, extractMigrationPart("-- +migrate Up\nSELECT 1;", "Down"))
	})
}

func writeMigration(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMigrateUp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	first := writeMigration(t, dir, "0001_catalog.sql", "-- +migrate Up\nCREATE TABLE products (id uuid);\n-- +migrate Down\nDROP TABLE products;")
	second := writeMigration(t, dir, "0002_orders.sql", "-- +migrate Up\nCREATE TABLE orders (id uuid);\n-- +migrate Down\nDROP TABLE orders;")

	mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
		WithArgs("0001_catalog.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
		WithArgs("0002_orders.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE orders").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs("0002_orders.sql").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, migrateUp(context.Background(), db, []string{first, second}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_FailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	file := writeMigration(t, t.TempDir(), "0001_bad.sql", "-- +migrate Up\nCREATE TABLE broken (;")

	mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE broken").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = migrateUp(context.Background(), db, []string{file})
	assert.ErrorContains(t, err, "migration failed (0001_bad.sql)")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateDown(t *testing.T) {
	t.Run("Rolls back latest", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		file := writeMigration(t, t.TempDir(), "0002_orders.sql", "-- +migrate Up\nCREATE TABLE orders (id uuid);\n-- +migrate Down\nDROP TABLE orders;")

		mock.ExpectQuery("SELECT version FROM schema_migrations ORDER BY").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0002_orders.sql"))
		mock.ExpectBegin()
		mock.ExpectExec("DROP TABLE orders").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM schema_migrations").
			WithArgs("0002_orders.sql").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, migrateDown(context.Background(), db, []string{file}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nothing applied", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT version FROM schema_migrations ORDER BY").
			WillReturnRows(sqlmock.NewRows([]string{"version"}))

		assert.NoError(t, migrateDown(context.Background(), db, nil))
	})

	t.Run("Missing file", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT version FROM schema_migrations ORDER BY").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0009_gone.sql"))

		assert.ErrorContains(t, migrateDown(context.Background(), db, nil), "migration file not found")
	})
}

func TestRun_UnknownMode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))

	err = run(context.Background(), db, "sideways", t.TempDir())
	assert.ErrorContains(t, err, "unknown mode: sideways")
}

func TestPendingFirst(t *testing.T) {
	files := []string{"m/0001_a.sql", "m/0002_b.sql", "m/0003_c.sql"}
	applied := map[string]bool{"0001_a.sql": true, "0003_c.sql": true}

	assert.Equal(t, []string{"m/0002_b.sql", "m/0001_a.sql", "m/0003_c.sql"}, pendingFirst(files, applied))
}

func TestRepositoryMigrations(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		content, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.NotEmpty(t, extractMigrationPart(string(content), "Up"), f)
		assert.NotEmpty(t, extractMigrationPart(string(content), "Down"), f)
	}
}
