package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jengzang/carsharing-backend-go/internal/analysis"
	"github.com/jengzang/carsharing-backend-go/internal/database"
	"github.com/jengzang/carsharing-backend-go/internal/metrics"
	"github.com/jengzang/carsharing-backend-go/internal/models"
	"github.com/jengzang/carsharing-backend-go/internal/pricing"
	"github.com/jengzang/carsharing-backend-go/internal/repository"
)

// RebuildSummary reports the outcome of one trip reconstruction
type RebuildSummary struct {
	RunID   string
	Cars    int
	Removed int64
	analysis.TripStats
}

// TripService handles business logic for trips
type TripService struct {
	db       *database.DB
	repo     *repository.TripRepository
	cars     *repository.CarRepository
	states   *repository.CarStateRepository
	resolver *pricing.Resolver
	builder  analysis.TripBuilder
	metrics  *metrics.Collector
	logger   zerolog.Logger
}

// NewTripService creates a new trip service
func NewTripService(db *database.DB, resolver *pricing.Resolver, builder analysis.TripBuilder, logger zerolog.Logger) *TripService {
	return &TripService{
		db:       db,
		repo:     repository.NewTripRepository(db),
		cars:     repository.NewCarRepository(db),
		states:   repository.NewCarStateRepository(db),
		resolver: resolver,
		builder:  builder,
		logger:   logger,
	}
}

// WithMetrics records rebuild outcomes on m
func (s *TripService) WithMetrics(m *metrics.Collector) *TripService {
	s.metrics = m
	return s
}

// Rebuild clears the trips table and derives it again from every car's state
// rows. Everything happens in one transaction: a car whose type has no known
// rate aborts the rebuild and leaves the previous trips in place.
func (s *TripService) Rebuild(ctx context.Context) (*RebuildSummary, error) {
	began := time.Now()
	summary := &RebuildSummary{RunID: uuid.NewString()}
	log := s.logger.With().Str("run_id", summary.RunID).Logger()

	if s.metrics != nil {
		s.metrics.RebuildRuns.Inc()
	}

	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		trips := s.repo.WithTx(tx)

		removed, err := trips.Clear(ctx)
		if err != nil {
			return err
		}
		summary.Removed = removed

		cars, err := s.cars.WithTx(tx).List(ctx)
		if err != nil {
			return err
		}

		states := s.states.WithTx(tx)
		for _, car := range cars {
			rate, err := s.resolver.RateFor(car)
			if err != nil {
				return err
			}

			rows, err := states.ListByCar(ctx, car.ID)
			if err != nil {
				return err
			}

			built, stats := s.builder.Build(car.ID, rows, rate)
			if err := trips.BulkInsert(ctx, built); err != nil {
				return err
			}

			summary.Cars++
			summary.TripStats.Add(stats)
			log.Debug().
				Str("plate", car.Plate).
				Int("rows", len(rows)).
				Int("trips", stats.Trips).
				Msg("car analysed")
		}
		return nil
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.RebuildFailure.Inc()
		}
		log.Error().Err(err).Msg("trip rebuild rolled back")
		return nil, err
	}

	if err := s.db.Vacuum(ctx); err != nil {
		return summary, err
	}

	if s.metrics != nil {
		s.metrics.ObserveRebuild(time.Since(began))
		s.metrics.TripsBuilt.Set(float64(summary.Trips))
		s.metrics.TripGlitches.Set(float64(summary.Glitches))
		s.metrics.Unterminated.Set(float64(summary.Unterminated))
	}

	log.Info().
		Int("cars", summary.Cars).
		Int("trips", summary.Trips).
		Int("glitches", summary.Glitches).
		Int("unterminated", summary.Unterminated).
		Dur("elapsed", time.Since(began)).
		Msg("trip rebuild finished")

	return summary, nil
}

// GetTrips retrieves trips with filtering and pagination
func (s *TripService) GetTrips(ctx context.Context, filter models.TripFilter) (*models.TripsResponse, error) {
	filter.Normalize()
	trips, total, err := s.repo.GetTrips(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	return &models.TripsResponse{
		Data:       trips,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetTripByID retrieves a single trip by ID
func (s *TripService) GetTripByID(ctx context.Context, id int64) (*models.Trip, error) {
	return s.repo.GetTripByID(ctx, id)
}

// ListTrips returns every trip ordered by car and departure
func (s *TripService) ListTrips(ctx context.Context) ([]models.Trip, error) {
	return s.repo.ListAll(ctx)
}
