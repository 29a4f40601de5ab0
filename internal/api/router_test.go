package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/carsharing-backend-go/internal/analysis"
	"github.com/jengzang/carsharing-backend-go/internal/database"
	"github.com/jengzang/carsharing-backend-go/internal/metrics"
	"github.com/jengzang/carsharing-backend-go/internal/models"
	"github.com/jengzang/carsharing-backend-go/internal/pricing"
	"github.com/jengzang/carsharing-backend-go/internal/repository"
	"github.com/jengzang/carsharing-backend-go/internal/service"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "api.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = database.NewMigrationManager(db, zerolog.Nop()).RunMigrations(ctx)
	require.NoError(t, err)

	car := models.Car{Plate: "S-GO 1", VIN: "WME4513341K000001", VINPrefix: "WME451334", EngineType: "CE"}
	require.NoError(t, repository.NewCarRepository(db).Create(ctx, &car))

	states := repository.NewCarStateRepository(db)
	for _, st := range []models.CarState{
		{Stamp: 1000, CarID: car.ID, Address: "X", Latitude: 48.77, Longitude: 9.18, Fuel: 80},
		{Stamp: 1120, CarID: car.ID, Occupied: true, Address: "X", Latitude: 48.77, Longitude: 9.18, Fuel: 80},
		{Stamp: 1600, CarID: car.ID, Address: "Y", Latitude: 48.78, Longitude: 9.18, Fuel: 72},
	} {
		require.NoError(t, states.Append(ctx, st))
	}

	resolver := pricing.NewResolver(nil)
	trips := service.NewTripService(db, resolver, analysis.NewTripBuilder(0), zerolog.Nop())
	_, err = trips.Rebuild(ctx)
	require.NoError(t, err)

	return SetupRouter("test", zerolog.Nop(), Services{
		Cars:    service.NewCarService(db, resolver),
		Trips:   trips,
		Stats:   service.NewStatsService(db),
		Metrics: metrics.NewCollector(),
	})
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body envelope
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	h := setupRouter(t)
	rec, _ := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	h := setupRouter(t)
	rec, _ := get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tracker_snapshots_processed_total")
}

func TestListCars(t *testing.T) {
	h := setupRouter(t)
	rec, body := get(t, h, "/api/v1/cars")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, body.Code)

	var cars []models.Car
	require.NoError(t, json.Unmarshal(body.Data, &cars))
	require.Len(t, cars, 1)
	assert.Equal(t, "S-GO 1", cars[0].Plate)
	assert.NotEmpty(t, cars[0].TypeName)
	assert.Equal(t, 0.29, cars[0].PricePerMinute)
}

func TestCarStates(t *testing.T) {
	h := setupRouter(t)

	rec, body := get(t, h, "/api/v1/cars/1/states")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Car    models.Car        `json:"car"`
		States []models.CarState `json:"states"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &payload))
	require.Len(t, payload.States, 3)
	assert.Equal(t, int64(1000), payload.States[0].Stamp)
	assert.True(t, payload.States[1].Occupied)

	rec, _ = get(t, h, "/api/v1/cars/42/states")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = get(t, h, "/api/v1/cars/abc/states")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrips(t *testing.T) {
	h := setupRouter(t)

	rec, body := get(t, h, "/api/v1/trips?carId=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var page models.TripsResponse
	require.NoError(t, json.Unmarshal(body.Data, &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Data, 1)
	assert.InDelta(t, 8.0, page.Data[0].DurationMinutes, 1e-9)

	rec, body = get(t, h, "/api/v1/trips?minDuration=30")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(body.Data, &page))
	assert.Equal(t, int64(0), page.Total)

	rec, _ = get(t, h, "/api/v1/trips?carId=x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTripByID(t *testing.T) {
	h := setupRouter(t)

	rec, body := get(t, h, "/api/v1/trips/1")
	require.Equal(t, http.StatusOK, rec.Code)
	var trip models.Trip
	require.NoError(t, json.Unmarshal(body.Data, &trip))
	assert.Equal(t, 8, trip.FuelSpent)

	rec, body = get(t, h, "/api/v1/trips/99")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Trip not found", body.Message)
}

func TestStats(t *testing.T) {
	h := setupRouter(t)

	rec, body := get(t, h, "/api/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.FleetStats
	require.NoError(t, json.Unmarshal(body.Data, &stats))
	assert.Equal(t, int64(1), stats.Cars)
	assert.Equal(t, int64(3), stats.StateRows)
	assert.Equal(t, int64(1), stats.Trips)
	assert.InDelta(t, 8*0.29, stats.Revenue, 1e-9)
	assert.Equal(t, int64(0), stats.OccupiedNow)
	assert.Equal(t, int64(1600), stats.LatestStamp)
}

func TestStatsDistributions(t *testing.T) {
	h := setupRouter(t)

	_, body := get(t, h, "/api/v1/stats")
	var stats models.FleetStats
	require.NoError(t, json.Unmarshal(body.Data, &stats))

	assert.Equal(t, 1, stats.DurationMinutes.Count)
	assert.InDelta(t, 8.0, stats.DurationMinutes.P50, 1e-9)
	assert.InDelta(t, 8*0.29, stats.Price.Max, 1e-9)
}
