package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/carsharing-backend-go/internal/database"
	"github.com/jengzang/carsharing-backend-go/internal/models"
)

// CarRepository handles database operations for cars
type CarRepository struct {
	base
}

// NewCarRepository creates a new car repository
func NewCarRepository(db *database.DB) *CarRepository {
	return &CarRepository{base: newBase(db)}
}

// WithTx returns a copy of the repository bound to tx
func (r *CarRepository) WithTx(tx *sql.Tx) *CarRepository {
	return &CarRepository{base: r.withTx(tx)}
}

const carColumns = `carId, plate, vin, vinPrefix, smartPhoneRequired, engineType`

func scanCar(s interface{ Scan(...any) error }) (models.Car, error) {
	var c models.Car
	err := s.Scan(&c.ID, &c.Plate, &c.VIN, &c.VINPrefix, &c.SmartPhoneRequired, &c.EngineType)
	return c, err
}

// Create registers a car and sets its generated ID
func (r *CarRepository) Create(ctx context.Context, car *models.Car) error {
	query := `INSERT INTO cars (plate, vin, vinPrefix, smartPhoneRequired, engineType)
		VALUES (?, ?, ?, ?, ?) RETURNING carId`
	err := r.queryRow(ctx, query,
		car.Plate, car.VIN, car.VINPrefix, car.SmartPhoneRequired, car.EngineType,
	).Scan(&car.ID)
	if err != nil {
		return fmt.Errorf("failed to insert car %s: %w", car.Plate, err)
	}
	return nil
}

// List returns all cars ordered by ID
func (r *CarRepository) List(ctx context.Context) ([]models.Car, error) {
	rows, err := r.query(ctx, `SELECT `+carColumns+` FROM cars ORDER BY carId`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cars: %w", err)
	}
	defer rows.Close()

	var cars []models.Car
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

// GetByID retrieves a single car, or nil when it does not exist
func (r *CarRepository) GetByID(ctx context.Context, id int64) (*models.Car, error) {
	c, err := scanCar(r.queryRow(ctx, `SELECT `+carColumns+` FROM cars WHERE carId = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get car: %w", err)
	}
	return &c, nil
}

// Count returns the number of registered cars
func (r *CarRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM cars`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cars: %w", err)
	}
	return n, nil
}
