package models

import "github.com/jengzang/carsharing-backend-go/internal/stats"

// FleetStats summarises the persisted data set
type FleetStats struct {
	Cars        int64   `json:"cars"`
	StateRows   int64   `json:"state_rows"`
	Trips       int64   `json:"trips"`
	Revenue     float64 `json:"revenue"`
	OccupiedNow int64   `json:"occupied_now"`
	LatestStamp int64   `json:"latest_stamp,omitempty"`

	DurationMinutes stats.Distribution `json:"duration_minutes"`
	DistanceKm      stats.Distribution `json:"distance_km"`
	Price           stats.Distribution `json:"price"`
}
