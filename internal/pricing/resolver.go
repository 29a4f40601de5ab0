// Package pricing maps vehicles to their per-minute rate via the VIN type prefix.
package pricing

import (
	"errors"
	"fmt"

	"github.com/jengzang/carsharing-backend-go/internal/models"
)

// ErrUnknownVehicleType is returned for a VIN prefix missing from the table
var ErrUnknownVehicleType = errors.New("unknown vehicle type")

// Rule is the display name and per-minute rate of one vehicle type
type Rule struct {
	Name           string
	PricePerMinute float64
}

// Table maps a 9-character VIN prefix to its pricing rule
type Table map[string]Rule

// DefaultTable lists the vehicle types of the fleet
var DefaultTable = Table{
	"WME451334": {Name: "smart fortwo coupé (451)", PricePerMinute: 0.29},
	"WME451390": {Name: "smart fortwo electric drive (451)", PricePerMinute: 0.29},
	"WME453342": {Name: "smart fortwo (453)", PricePerMinute: 0.29},
	"WME453391": {Name: "smart EQ fortwo (453)", PricePerMinute: 0.29},
	"WDD176012": {Name: "Mercedes-Benz A-Klasse", PricePerMinute: 0.34},
	"WDD242890": {Name: "Mercedes-Benz B-Klasse Electric Drive", PricePerMinute: 0.34},
	"WDD117342": {Name: "Mercedes-Benz CLA", PricePerMinute: 0.34},
	"WDC156943": {Name: "Mercedes-Benz GLA", PricePerMinute: 0.34},
}

// Resolver looks up vehicle rates in a static table
type Resolver struct {
	table Table
}

// NewResolver creates a resolver backed by table, or DefaultTable when nil
func NewResolver(table Table) *Resolver {
	if table == nil {
		table = DefaultTable
	}
	return &Resolver{table: table}
}

// Rule returns the pricing rule for a VIN prefix
func (r *Resolver) Rule(vinPrefix string) (Rule, error) {
	rule, ok := r.table[vinPrefix]
	if !ok {
		return Rule{}, fmt.Errorf("%w: vin prefix %q", ErrUnknownVehicleType, vinPrefix)
	}
	return rule, nil
}

// RateFor returns the per-minute rate of a car
func (r *Resolver) RateFor(car models.Car) (float64, error) {
	prefix := car.VINPrefix
	if prefix == "" {
		prefix = models.VINPrefix(car.VIN)
	}
	rule, err := r.Rule(prefix)
	if err != nil {
		return 0, fmt.Errorf("car %s: %w", car.Plate, err)
	}
	return rule.PricePerMinute, nil
}
