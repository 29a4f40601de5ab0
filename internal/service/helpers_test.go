package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/carsharing-backend-go/internal/database"
	"github.com/jengzang/carsharing-backend-go/internal/publisher"
	"github.com/jengzang/carsharing-backend-go/internal/snapshot"
)

var t0 = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "car2go.db3"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = database.NewMigrationManager(db, zerolog.Nop()).RunMigrations(ctx)
	require.NoError(t, err)
	return db
}

type vehicle struct {
	plate   string
	vin     string
	address string
	lat     float64
	lon     float64
	fuel    int
	alt     float64
}

func (v vehicle) json() string {
	return fmt.Sprintf(`{"name": %q, "vin": %q, "address": %q, "coordinates": [%g, %g, %g],
		"fuel": %d, "engineType": "CE", "smartPhoneRequired": false,
		"interior": "GOOD", "exterior": "GOOD"}`,
		v.plate, v.vin, v.address, v.lon, v.lat, v.alt, v.fuel)
}

func document(vehicles ...vehicle) string {
	parts := make([]string, len(vehicles))
	for i, v := range vehicles {
		parts[i] = v.json()
	}
	return `{"placemarks": [` + strings.Join(parts, ",") + `]}`
}

// memSource is an in-memory snapshot source keyed by document name
type memSource struct {
	docs map[string]string
}

func newMemSource() *memSource {
	return &memSource{docs: map[string]string{}}
}

func (m *memSource) add(offset time.Duration, doc string) {
	m.docs[t0.Add(offset).Format(snapshot.StampLayout)+".json"] = doc
}

func (m *memSource) List(ctx context.Context) ([]snapshot.Entry, error) {
	var entries []snapshot.Entry
	for name := range m.docs {
		stamp, err := snapshot.ParseStamp(name, time.UTC)
		if err != nil {
			return nil, err
		}
		entries = append(entries, snapshot.Entry{Name: name, Stamp: stamp})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Stamp.Before(entries[j].Stamp) })
	return entries, nil
}

func (m *memSource) Open(ctx context.Context, e snapshot.Entry) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader([]byte(m.docs[e.Name]))), nil
}

// recordingSink keeps every published event
type recordingSink struct {
	events []publisher.StateEvent
	calls  int
}

func (r *recordingSink) Publish(_ context.Context, events []publisher.StateEvent) error {
	r.calls++
	r.events = append(r.events, events...)
	return nil
}

func (r *recordingSink) Close() {}

func countRows(t *testing.T, db *database.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
