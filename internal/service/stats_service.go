package service

import (
	"context"
	"fmt"

	"github.com/jengzang/carsharing-backend-go/internal/database"
	"github.com/jengzang/carsharing-backend-go/internal/models"
	"github.com/jengzang/carsharing-backend-go/internal/repository"
	analytics "github.com/jengzang/carsharing-backend-go/internal/stats"
)

// StatsService handles business logic for statistics
type StatsService struct {
	cars   *repository.CarRepository
	states *repository.CarStateRepository
	trips  *repository.TripRepository
}

// NewStatsService creates a new stats service
func NewStatsService(db *database.DB) *StatsService {
	return &StatsService{
		cars:   repository.NewCarRepository(db),
		states: repository.NewCarStateRepository(db),
		trips:  repository.NewTripRepository(db),
	}
}

// GetFleetStats counts cars, state rows and trips, sums the revenue and
// describes how trip durations, distances and prices are distributed
func (s *StatsService) GetFleetStats(ctx context.Context) (*models.FleetStats, error) {
	stats := &models.FleetStats{}
	var err error

	if stats.Cars, err = s.cars.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to get fleet statistics: %w", err)
	}
	if stats.StateRows, err = s.states.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to get fleet statistics: %w", err)
	}
	if stats.Trips, stats.Revenue, err = s.trips.Totals(ctx); err != nil {
		return nil, fmt.Errorf("failed to get fleet statistics: %w", err)
	}
	if stats.LatestStamp, _, err = s.states.LatestStamp(ctx); err != nil {
		return nil, fmt.Errorf("failed to get fleet statistics: %w", err)
	}

	latest, err := s.states.LatestPerCar(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get fleet statistics: %w", err)
	}
	for _, st := range latest {
		if st.Occupied {
			stats.OccupiedNow++
		}
	}

	trips, err := s.trips.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get fleet statistics: %w", err)
	}
	durations := make([]float64, len(trips))
	distances := make([]float64, len(trips))
	prices := make([]float64, len(trips))
	for i, t := range trips {
		durations[i] = t.DurationMinutes
		distances[i] = t.DistanceKm
		prices[i] = t.Price
	}
	stats.DurationMinutes = analytics.Describe(durations)
	stats.DistanceKm = analytics.Describe(distances)
	stats.Price = analytics.Describe(prices)

	return stats, nil
}
