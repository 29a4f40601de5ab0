package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/carsharing-backend-go/internal/database"
)

const (
	freeAtX = `{"placemarks": [{"name": "S-GO 1", "vin": "WME4513341K000001", "address": "X",
		"coordinates": [9.1829, 48.7758, 0], "fuel": 80, "engineType": "CE", "smartPhoneRequired": false,
		"interior": "GOOD", "exterior": "GOOD"}]}`
	freeAtY = `{"placemarks": [{"name": "S-GO 1", "vin": "WME4513341K000001", "address": "Y",
		"coordinates": [9.1810, 48.7840, 0], "fuel": 72, "engineType": "CE", "smartPhoneRequired": false,
		"interior": "GOOD", "exterior": "GOOD"}]}`
	empty = `{"placemarks": []}`
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestCommands_ImportAndRebuild(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_LEVEL", "error")

	dir := t.TempDir()
	for name, doc := range map[string]string{
		"car2go_2018-01-01_000000.json": freeAtX,
		"car2go_2018-01-01_000200.json": empty,
		"car2go_2018-01-01_001000.json": freeAtY,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644))
	}
	dsn := filepath.Join(t.TempDir(), "car2go.db3")
	metricsFile := filepath.Join(t.TempDir(), "tracker.prom")

	require.NoError(t, run(t, "migrate", "--db-dsn", dsn))
	require.NoError(t, run(t, "import", "--db-dsn", dsn, "--dir", dir, "--stamp-offset", "+00:00",
		"--rebuild-trips", "--metrics-file", metricsFile))

	db, err := database.Open(context.Background(), database.Config{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	defer db.Close()

	var rows, trips int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM car_state").Scan(&rows))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM trips").Scan(&trips))
	assert.Equal(t, 3, rows)
	assert.Equal(t, 1, trips)

	var departure int64
	require.NoError(t, db.QueryRow("SELECT stamp_departure FROM trips").Scan(&departure))
	assert.Equal(t, int64(1514764920), departure)

	assert.FileExists(t, metricsFile)
}

func TestCommands_InvalidConfig(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DRIVER", "mysql")

	err := run(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestCommands_BadSnapshotName(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latest.json"), []byte(empty), 0o644))

	err := run(t, "import", "--db-dsn", filepath.Join(t.TempDir(), "db.db3"), "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latest.json")
}

// chdir mirrors testing.T.Chdir (Go 1.24+): it changes the working
// directory and restores it when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
