package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/carsharing-backend-go/internal/database"
	"github.com/jengzang/carsharing-backend-go/internal/models"
)

// CarStateRepository handles the append-only car_state time series
type CarStateRepository struct {
	base
}

// NewCarStateRepository creates a new car state repository
func NewCarStateRepository(db *database.DB) *CarStateRepository {
	return &CarStateRepository{base: newBase(db)}
}

// WithTx returns a copy of the repository bound to tx
func (r *CarStateRepository) WithTx(tx *sql.Tx) *CarStateRepository {
	return &CarStateRepository{base: r.withTx(tx)}
}

const carStateColumns = `cs.stamp, cs.carId, cs.occupied, cs.address, cs.latitude, cs.longitude,
	cs.fuel, cs.charging, cs.interior_bad, cs.exterior_bad`

type scanner interface{ Scan(...any) error }

func scanCarState(s scanner, extra ...any) (models.CarState, error) {
	var (
		st       models.CarState
		charging sql.NullBool
		interior sql.NullString
		exterior sql.NullString
	)
	dest := []any{
		&st.Stamp, &st.CarID, &st.Occupied, &st.Address, &st.Latitude, &st.Longitude,
		&st.Fuel, &charging, &interior, &exterior,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return st, err
	}
	st.Charging = boolPtr(charging)
	st.InteriorBad = stringPtr(interior)
	st.ExteriorBad = stringPtr(exterior)
	return st, nil
}

// LatestStamp returns the watermark: the newest stamp already ingested
func (r *CarStateRepository) LatestStamp(ctx context.Context) (int64, bool, error) {
	var stamp sql.NullInt64
	if err := r.queryRow(ctx, `SELECT MAX(stamp) FROM car_state`).Scan(&stamp); err != nil {
		return 0, false, fmt.Errorf("failed to read latest stamp: %w", err)
	}
	return stamp.Int64, stamp.Valid, nil
}

// Append stores one state-change row
func (r *CarStateRepository) Append(ctx context.Context, st models.CarState) error {
	query := `INSERT INTO car_state (stamp, carId, occupied, address, latitude, longitude,
		fuel, charging, interior_bad, exterior_bad) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.exec(ctx, query,
		st.Stamp, st.CarID, st.Occupied, st.Address, st.Latitude, st.Longitude,
		st.Fuel, nullBool(st.Charging), nullString(st.InteriorBad), nullString(st.ExteriorBad),
	)
	if err != nil {
		return fmt.Errorf("failed to append state of car %d at %d: %w", st.CarID, st.Stamp, err)
	}
	return nil
}

// ListByCar returns the rows of one car ascending by stamp
func (r *CarStateRepository) ListByCar(ctx context.Context, carID int64) ([]models.CarState, error) {
	rows, err := r.query(ctx, `SELECT `+carStateColumns+` FROM car_state cs
		WHERE cs.carId = ? ORDER BY cs.stamp ASC`, carID)
	if err != nil {
		return nil, fmt.Errorf("failed to query car states: %w", err)
	}
	defer rows.Close()

	var states []models.CarState
	for rows.Next() {
		st, err := scanCarState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car state: %w", err)
		}
		states = append(states, st)
	}
	return states, rows.Err()
}

// LatestPerCar returns the newest row of every car joined with its identity
func (r *CarStateRepository) LatestPerCar(ctx context.Context) ([]models.CarStateWithIdentity, error) {
	query := `SELECT ` + carStateColumns + `, c.plate, c.vin, c.engineType, c.smartPhoneRequired
		FROM car_state cs
		JOIN cars c ON c.carId = cs.carId
		JOIN (SELECT carId, MAX(stamp) AS stamp FROM car_state GROUP BY carId) latest
			ON latest.carId = cs.carId AND latest.stamp = cs.stamp
		ORDER BY cs.carId`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest car states: %w", err)
	}
	defer rows.Close()

	var states []models.CarStateWithIdentity
	for rows.Next() {
		var s models.CarStateWithIdentity
		st, err := scanCarState(rows, &s.Plate, &s.VIN, &s.EngineType, &s.SmartPhoneRequired)
		if err != nil {
			return nil, fmt.Errorf("failed to scan latest car state: %w", err)
		}
		s.CarState = st
		states = append(states, s)
	}
	return states, rows.Err()
}

// Count returns the number of state rows
func (r *CarStateRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM car_state`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count car states: %w", err)
	}
	return n, nil
}
