package models

// VINPrefixLength is the number of leading VIN characters identifying a vehicle type
const VINPrefixLength = 9

// Car is a vehicle of the fleet, registered on its first observation
type Car struct {
	ID                 int64  `json:"id" db:"carId"`
	Plate              string `json:"plate" db:"plate"`
	VIN                string `json:"vin" db:"vin"`
	VINPrefix          string `json:"vin_prefix" db:"vinPrefix"`
	SmartPhoneRequired bool   `json:"smart_phone_required" db:"smartPhoneRequired"`
	EngineType         string `json:"engine_type" db:"engineType"`

	// Resolved from the pricing table, not persisted
	TypeName       string  `json:"type_name,omitempty" db:"-"`
	PricePerMinute float64 `json:"price_per_minute,omitempty" db:"-"`
}

// VINPrefix returns the vehicle-type prefix of a VIN
func VINPrefix(vin string) string {
	if len(vin) < VINPrefixLength {
		return vin
	}
	return vin[:VINPrefixLength]
}
