package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/carsharing-backend-go/internal/models"
	"github.com/jengzang/carsharing-backend-go/internal/spatial"
)

const rate = 0.29

func row(stamp int64, occupied bool, lat, lon float64, fuel int) models.CarState {
	return models.CarState{Stamp: stamp, CarID: 1, Occupied: occupied, Latitude: lat, Longitude: lon, Fuel: fuel}
}

func TestBuild_SingleTrip(t *testing.T) {
	b := NewTripBuilder(DefaultGlitchSeconds)
	states := []models.CarState{
		row(1000, true, 48.15, 11.58, 80),
		row(1300, false, 48.13, 11.57, 77),
	}

	trips, stats := b.Build(1, states, rate)
	require.Len(t, trips, 1)
	assert.Equal(t, TripStats{Trips: 1}, stats)

	trip := trips[0]
	assert.Equal(t, int64(1), trip.CarID)
	assert.Equal(t, int64(1000), trip.StampDeparture)
	assert.Equal(t, int64(1300), trip.StampArrival)
	assert.Equal(t, 5.0, trip.DurationMinutes)
	assert.Equal(t, math.Ceil(5.0)*rate, trip.Price)
	assert.Equal(t, 3, trip.FuelSpent)
	assert.Equal(t, spatial.DistanceKm(48.15, 11.58, 48.13, 11.57), trip.DistanceKm)
}

func TestBuild_PriceRoundsUpPartialMinutes(t *testing.T) {
	trips, _ := NewTripBuilder(0).Build(1, []models.CarState{
		row(0, true, 0, 0, 50),
		row(61*5, false, 0, 0, 52),
	}, rate)
	require.Len(t, trips, 1)
	assert.InDelta(t, 5.0833, trips[0].DurationMinutes, 1e-3)
	assert.InDelta(t, 6*rate, trips[0].Price, 1e-9)
	assert.Equal(t, -2, trips[0].FuelSpent, "refueled during the rental")
}

func TestBuild_GlitchFiltering(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int64
		trips    int
		glitches int
	}{
		{"65 seconds is a glitch", 65, 0, 1},
		{"70 seconds is a glitch", 70, 0, 1},
		{"71 seconds is a trip", 71, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trips, stats := NewTripBuilder(DefaultGlitchSeconds).Build(1, []models.CarState{
				row(0, true, 0, 0, 50),
				row(tt.seconds, false, 0, 0, 50),
			}, rate)
			assert.Len(t, trips, tt.trips)
			assert.Equal(t, tt.glitches, stats.Glitches)
		})
	}
}

func TestBuild_GlitchClosesInterval(t *testing.T) {
	// the FREE row after the glitch has no open interval to close
	trips, stats := NewTripBuilder(DefaultGlitchSeconds).Build(1, []models.CarState{
		row(0, true, 0, 0, 50),
		row(60, false, 0, 0, 50),
		row(600, false, 1, 1, 40),
	}, rate)
	assert.Empty(t, trips)
	assert.Equal(t, TripStats{Glitches: 1}, stats)
}

func TestBuild_UnterminatedInterval(t *testing.T) {
	trips, stats := NewTripBuilder(DefaultGlitchSeconds).Build(1, []models.CarState{
		row(0, false, 0, 0, 50),
		row(100, true, 0, 0, 50),
	}, rate)
	assert.Empty(t, trips)
	assert.Equal(t, TripStats{Unterminated: 1}, stats)
}

func TestBuild_RepeatedOccupiedKeepsAnchor(t *testing.T) {
	trips, _ := NewTripBuilder(DefaultGlitchSeconds).Build(1, []models.CarState{
		row(0, true, 0, 0, 50),
		row(200, true, 0, 0, 50),
		row(600, false, 0, 0, 45),
	}, rate)
	require.Len(t, trips, 1)
	assert.Equal(t, int64(0), trips[0].StampDeparture)
	assert.Equal(t, 10.0, trips[0].DurationMinutes)
}

func TestBuild_FieldOnlyChangesAndMultipleTrips(t *testing.T) {
	trips, stats := NewTripBuilder(DefaultGlitchSeconds).Build(1, []models.CarState{
		row(0, false, 0, 0, 80),
		row(50, false, 0, 0, 80), // interior changed while free
		row(120, true, 0, 0, 80),
		row(600, false, 0.01, 0.01, 72),
		row(900, true, 0.01, 0.01, 72),
		row(4500, false, 0, 0, 60),
	}, rate)
	require.Len(t, trips, 2)
	assert.Equal(t, TripStats{Trips: 2}, stats)
	assert.Equal(t, 8.0, trips[0].DurationMinutes)
	assert.Equal(t, 60.0, trips[1].DurationMinutes)
	assert.InDelta(t, 60*rate, trips[1].Price, 1e-9)
}

func TestBuild_Deterministic(t *testing.T) {
	states := []models.CarState{
		row(0, true, 48.1, 11.5, 80),
		row(500, false, 48.2, 11.6, 70),
	}
	b := NewTripBuilder(DefaultGlitchSeconds)
	first, _ := b.Build(1, states, rate)
	second, _ := b.Build(1, states, rate)
	assert.Equal(t, first, second)
}

func TestTripStats_Add(t *testing.T) {
	s := TripStats{Trips: 1, Glitches: 2}
	s.Add(TripStats{Trips: 3, Unterminated: 1})
	assert.Equal(t, TripStats{Trips: 4, Glitches: 2, Unterminated: 1}, s)
}
