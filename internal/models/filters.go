package models

// TripFilter represents filter parameters for querying trips
type TripFilter struct {
	CarID       int64   `form:"carId"`
	StartTime   int64   `form:"startTime"`   // Unix timestamp, departure >=
	EndTime     int64   `form:"endTime"`     // Unix timestamp, arrival <=
	MinDuration float64 `form:"minDuration"` // Minutes
	Page        int     `form:"page"`
	PageSize    int     `form:"pageSize"`
}

// Normalize clamps pagination to sane bounds
func (f *TripFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 100
	}
	if f.PageSize > 1000 {
		f.PageSize = 1000
	}
}
