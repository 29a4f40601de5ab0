package service

import (
	"context"

	"github.com/jengzang/carsharing-backend-go/internal/database"
	"github.com/jengzang/carsharing-backend-go/internal/models"
	"github.com/jengzang/carsharing-backend-go/internal/pricing"
	"github.com/jengzang/carsharing-backend-go/internal/repository"
)

// CarService handles business logic for cars and their state history
type CarService struct {
	cars     *repository.CarRepository
	states   *repository.CarStateRepository
	resolver *pricing.Resolver
}

// NewCarService creates a new car service
func NewCarService(db *database.DB, resolver *pricing.Resolver) *CarService {
	return &CarService{
		cars:     repository.NewCarRepository(db),
		states:   repository.NewCarStateRepository(db),
		resolver: resolver,
	}
}

// ListCars returns all cars with their resolved type. Unknown types are left empty.
func (s *CarService) ListCars(ctx context.Context) ([]models.Car, error) {
	cars, err := s.cars.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cars {
		s.describe(&cars[i])
	}
	return cars, nil
}

// GetCar retrieves a single car by ID
func (s *CarService) GetCar(ctx context.Context, id int64) (*models.Car, error) {
	car, err := s.cars.GetByID(ctx, id)
	if err != nil || car == nil {
		return car, err
	}
	s.describe(car)
	return car, nil
}

// GetStates returns the state rows of a car in ascending time
func (s *CarService) GetStates(ctx context.Context, carID int64) ([]models.CarState, error) {
	return s.states.ListByCar(ctx, carID)
}

func (s *CarService) describe(car *models.Car) {
	prefix := car.VINPrefix
	if prefix == "" {
		prefix = models.VINPrefix(car.VIN)
	}
	if rule, err := s.resolver.Rule(prefix); err == nil {
		car.TypeName = rule.Name
		car.PricePerMinute = rule.PricePerMinute
	}
}
