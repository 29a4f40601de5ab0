package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db3"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		given    string
		expected Dialect
		wantErr  bool
	}{
		{given: "", expected: SQLite},
		{given: "sqlite", expected: SQLite},
		{given: "SQLite3", expected: SQLite},
		{given: "pgx", expected: Postgres},
		{given: "postgres", expected: Postgres},
		{given: "mysql", wantErr: true},
	}

	for _, test := range tests {
		d, err := DialectFor(test.given)
		if test.wantErr {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, test.expected, d)
	}
}

func TestDialect_Rebind(t *testing.T) {
	q := "SELECT a FROM t WHERE b = ? AND c > ?"
	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c > $2", Postgres.Rebind(q))
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("CREATE TABLE a (x INTEGER);\n\n CREATE INDEX i ON a (x);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INTEGER)", "CREATE INDEX i ON a (x)"}, stmts)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	m := NewMigrationManager(db, zerolog.Nop())

	n, err := m.RunMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = m.RunMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	for _, table := range []string{"cars", "car_state", "trips"} {
		var count int
		err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, table)
	}
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	_, err := NewMigrationManager(db, zerolog.Nop()).RunMigrations(ctx)
	require.NoError(t, err)

	err = db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO cars (plate, vin, vinPrefix) VALUES ('A', 'WME4513341K000001', 'WME451334')"); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cars").Scan(&count))
	assert.Equal(t, 0, count)

	assert.NoError(t, db.Vacuum(ctx))
}
