package models

// Trip is a rental reconstructed from an OCCUPIED row and the next FREE row of a car
type Trip struct {
	ID int64 `json:"id" db:"tripId"`

	CarID          int64 `json:"car_id" db:"carId"`
	StampDeparture int64 `json:"stamp_departure" db:"stamp_departure"` // Unix timestamp
	StampArrival   int64 `json:"stamp_arrival" db:"stamp_arrival"`     // Unix timestamp

	DurationMinutes float64 `json:"duration_minutes" db:"duration_minutes"` // fractional, seconds/60
	DistanceKm      float64 `json:"distance_km" db:"distance_km"`
	FuelSpent       int     `json:"fuel_spent" db:"fuel_spent"` // negative when refueled
	Price           float64 `json:"price" db:"price"`
}

// TripsResponse represents a paginated response of trips
type TripsResponse struct {
	Data       []Trip `json:"data"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
}

// TripFilter is defined in filters.go
