package models

// CarState is one state-change row: the record of a car at the moment it changed
type CarState struct {
	Stamp       int64   `json:"stamp" db:"stamp"` // Unix timestamp
	CarID       int64   `json:"car_id" db:"carId"`
	Occupied    bool    `json:"occupied" db:"occupied"`
	Address     string  `json:"address" db:"address"`
	Latitude    float64 `json:"latitude" db:"latitude"`
	Longitude   float64 `json:"longitude" db:"longitude"`
	Fuel        int     `json:"fuel" db:"fuel"`
	Charging    *bool   `json:"charging,omitempty" db:"charging"`
	InteriorBad *string `json:"interior_bad,omitempty" db:"interior_bad"`
	ExteriorBad *string `json:"exterior_bad,omitempty" db:"exterior_bad"`
}

// CarStateWithIdentity is a state row joined with the identity of its car
type CarStateWithIdentity struct {
	CarState
	Plate              string
	VIN                string
	EngineType         string
	SmartPhoneRequired bool
}
