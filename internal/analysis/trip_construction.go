package analysis

import (
	"math"

	"github.com/jengzang/carsharing-backend-go/internal/models"
	"github.com/jengzang/carsharing-backend-go/internal/spatial"
)

// DefaultGlitchSeconds is the longest occupied interval treated as sensor noise
const DefaultGlitchSeconds = 70

// TripStats counts the outcome of reconstructing one or more cars
type TripStats struct {
	Trips        int
	Glitches     int // occupied intervals too short to be a rental
	Unterminated int // occupied intervals without a following FREE row
}

// Add accumulates other into s
func (s *TripStats) Add(other TripStats) {
	s.Trips += other.Trips
	s.Glitches += other.Glitches
	s.Unterminated += other.Unterminated
}

// TripBuilder pairs each OCCUPIED row of a car with its next FREE row
type TripBuilder struct {
	// GlitchSeconds: intervals of at most this many seconds produce no trip.
	GlitchSeconds int64
}

// NewTripBuilder creates a builder with the given glitch threshold in seconds
func NewTripBuilder(glitchSeconds int64) TripBuilder {
	if glitchSeconds <= 0 {
		glitchSeconds = DefaultGlitchSeconds
	}
	return TripBuilder{GlitchSeconds: glitchSeconds}
}

// Build scans the state rows of one car, ascending by stamp, and returns its trips.
//
// An OCCUPIED row opens an interval unless one is already open, in which case it
// is ignored. The next FREE row closes the interval. Short intervals are
// discarded as glitches but still close the interval.
func (b TripBuilder) Build(carID int64, states []models.CarState, ratePerMinute float64) ([]models.Trip, TripStats) {
	var (
		trips     []models.Trip
		stats     TripStats
		departure *models.CarState
	)

	for i := range states {
		row := &states[i]
		if row.Occupied {
			if departure == nil {
				departure = row
			}
			continue
		}
		if departure == nil {
			continue
		}

		seconds := row.Stamp - departure.Stamp
		if seconds <= b.GlitchSeconds {
			stats.Glitches++
			departure = nil
			continue
		}

		trips = append(trips, newTrip(carID, *departure, *row, ratePerMinute))
		stats.Trips++
		departure = nil
	}

	if departure != nil {
		stats.Unterminated++
	}
	return trips, stats
}

func newTrip(carID int64, departure, arrival models.CarState, ratePerMinute float64) models.Trip {
	minutes := float64(arrival.Stamp-departure.Stamp) / 60
	return models.Trip{
		CarID:           carID,
		StampDeparture:  departure.Stamp,
		StampArrival:    arrival.Stamp,
		DurationMinutes: minutes,
		DistanceKm: spatial.DistanceKm(
			departure.Latitude, departure.Longitude,
			arrival.Latitude, arrival.Longitude,
		),
		FuelSpent: departure.Fuel - arrival.Fuel,
		Price:     math.Ceil(minutes) * ratePerMinute,
	}
}
