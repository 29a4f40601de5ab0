package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/carsharing-backend-go/internal/database"
	"github.com/jengzang/carsharing-backend-go/internal/models"
)

// TripRepository handles database operations for trips
type TripRepository struct {
	base
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *database.DB) *TripRepository {
	return &TripRepository{base: newBase(db)}
}

// WithTx returns a copy of the repository bound to tx
func (r *TripRepository) WithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{base: r.withTx(tx)}
}

const tripColumns = `tripId, carId, stamp_departure, stamp_arrival,
	duration_minutes, distance_km, fuel_spent, price`

func scanTrip(s scanner) (models.Trip, error) {
	var t models.Trip
	err := s.Scan(&t.ID, &t.CarID, &t.StampDeparture, &t.StampArrival,
		&t.DurationMinutes, &t.DistanceKm, &t.FuelSpent, &t.Price)
	return t, err
}

// Clear deletes every derived trip
func (r *TripRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.exec(ctx, `DELETE FROM trips`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear trips: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// BulkInsert stores trips with a single prepared statement
func (r *TripRepository) BulkInsert(ctx context.Context, trips []models.Trip) error {
	if len(trips) == 0 {
		return nil
	}
	stmt, err := r.prepare(ctx, `INSERT INTO trips (carId, stamp_departure, stamp_arrival,
		duration_minutes, distance_km, fuel_spent, price) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare trip insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range trips {
		if _, err := stmt.ExecContext(ctx, t.CarID, t.StampDeparture, t.StampArrival,
			t.DurationMinutes, t.DistanceKm, t.FuelSpent, t.Price); err != nil {
			return fmt.Errorf("failed to insert trip of car %d at %d: %w", t.CarID, t.StampDeparture, err)
		}
	}
	return nil
}

// GetTrips retrieves trips with filtering and pagination
func (r *TripRepository) GetTrips(ctx context.Context, filter models.TripFilter) ([]models.Trip, int64, error) {
	var conditions []string
	var args []any

	if filter.CarID > 0 {
		conditions = append(conditions, "carId = ?")
		args = append(args, filter.CarID)
	}
	if filter.StartTime > 0 {
		conditions = append(conditions, "stamp_departure >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime > 0 {
		conditions = append(conditions, "stamp_arrival <= ?")
		args = append(args, filter.EndTime)
	}
	if filter.MinDuration > 0 {
		conditions = append(conditions, "duration_minutes >= ?")
		args = append(args, filter.MinDuration)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.queryRow(ctx, "SELECT COUNT(*) FROM trips"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	filter.Normalize()
	offset := (filter.Page - 1) * filter.PageSize
	query := "SELECT " + tripColumns + " FROM trips" + where +
		" ORDER BY stamp_departure, carId LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, offset)

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	trips := []models.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, total, rows.Err()
}

// GetTripByID retrieves a single trip, or nil when it does not exist
func (r *TripRepository) GetTripByID(ctx context.Context, id int64) (*models.Trip, error) {
	t, err := scanTrip(r.queryRow(ctx, "SELECT "+tripColumns+" FROM trips WHERE tripId = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return &t, nil
}

// ListAll returns every trip ordered by car and departure
func (r *TripRepository) ListAll(ctx context.Context) ([]models.Trip, error) {
	rows, err := r.query(ctx, "SELECT "+tripColumns+" FROM trips ORDER BY carId, stamp_departure")
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// Totals returns the number of trips and their summed price
func (r *TripRepository) Totals(ctx context.Context) (int64, float64, error) {
	var n int64
	var revenue sql.NullFloat64
	if err := r.queryRow(ctx, "SELECT COUNT(*), SUM(price) FROM trips").Scan(&n, &revenue); err != nil {
		return 0, 0, fmt.Errorf("failed to total trips: %w", err)
	}
	return n, revenue.Float64, nil
}
