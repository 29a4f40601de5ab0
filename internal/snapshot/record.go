// Package snapshot decodes fleet snapshot documents and lists them from their source.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jengzang/carsharing-backend-go/internal/models"
)

// ConditionGood marks an interior or exterior without defects
const ConditionGood = "GOOD"

// ErrMalformedDocument is returned for documents missing required structure
var ErrMalformedDocument = errors.New("malformed snapshot document")

// Record is the observed state of one vehicle in one snapshot
type Record struct {
	Plate              string
	VIN                string
	Address            string
	Longitude          float64
	Latitude           float64
	Altitude           float64
	Fuel               int
	EngineType         string
	SmartPhoneRequired bool
	Interior           string
	Exterior           string
	Charging           *bool // absent for vehicles that cannot charge
	Occupied           bool
}

// InteriorBad returns the interior defect code, or nil when GOOD
func (r Record) InteriorBad() *string { return defect(r.Interior) }

// ExteriorBad returns the exterior defect code, or nil when GOOD
func (r Record) ExteriorBad() *string { return defect(r.Exterior) }

func defect(condition string) *string {
	if condition == ConditionGood {
		return nil
	}
	c := condition
	return &c
}

// StateAt converts the record into a state-change row for carID at stamp
func (r Record) StateAt(carID, stamp int64) models.CarState {
	return models.CarState{
		Stamp:       stamp,
		CarID:       carID,
		Occupied:    r.Occupied,
		Address:     r.Address,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Fuel:        r.Fuel,
		Charging:    r.Charging,
		InteriorBad: r.InteriorBad(),
		ExteriorBad: r.ExteriorBad(),
	}
}

// RecordFromState restores the last known record of a car from its persisted row
func RecordFromState(s models.CarStateWithIdentity) Record {
	interior, exterior := ConditionGood, ConditionGood
	if s.InteriorBad != nil {
		interior = *s.InteriorBad
	}
	if s.ExteriorBad != nil {
		exterior = *s.ExteriorBad
	}
	return Record{
		Plate:              s.Plate,
		VIN:                s.VIN,
		Address:            s.Address,
		Longitude:          s.Longitude,
		Latitude:           s.Latitude,
		Fuel:               s.Fuel,
		EngineType:         s.EngineType,
		SmartPhoneRequired: s.SmartPhoneRequired,
		Interior:           interior,
		Exterior:           exterior,
		Charging:           s.Charging,
		Occupied:           s.Occupied,
	}
}

type document struct {
	Placemarks *[]placemark `json:"placemarks"`
}

type placemark struct {
	Name               *string   `json:"name"`
	VIN                *string   `json:"vin"`
	Address            *string   `json:"address"`
	Coordinates        []float64 `json:"coordinates"`
	Fuel               *int      `json:"fuel"`
	EngineType         *string   `json:"engineType"`
	SmartPhoneRequired *bool     `json:"smartPhoneRequired"`
	Interior           *string   `json:"interior"`
	Exterior           *string   `json:"exterior"`
	Charging           *bool     `json:"charging"`
}

func (p placemark) record() (Record, error) {
	switch {
	case p.Name == nil || *p.Name == "":
		return Record{}, errors.New("missing name")
	case p.VIN == nil || len(*p.VIN) < models.VINPrefixLength:
		return Record{}, errors.New("missing or short vin")
	case p.Address == nil:
		return Record{}, errors.New("missing address")
	case len(p.Coordinates) < 2:
		return Record{}, errors.New("missing coordinates")
	case p.Fuel == nil:
		return Record{}, errors.New("missing fuel")
	case p.EngineType == nil:
		return Record{}, errors.New("missing engineType")
	case p.SmartPhoneRequired == nil:
		return Record{}, errors.New("missing smartPhoneRequired")
	case p.Interior == nil || p.Exterior == nil:
		return Record{}, errors.New("missing interior/exterior condition")
	}

	r := Record{
		Plate:              *p.Name,
		VIN:                *p.VIN,
		Address:            *p.Address,
		Longitude:          p.Coordinates[0],
		Latitude:           p.Coordinates[1],
		Fuel:               *p.Fuel,
		EngineType:         *p.EngineType,
		SmartPhoneRequired: *p.SmartPhoneRequired,
		Interior:           *p.Interior,
		Exterior:           *p.Exterior,
		Charging:           p.Charging,
	}
	if len(p.Coordinates) > 2 {
		r.Altitude = p.Coordinates[2]
	}
	return r, nil
}

// Decode reads a snapshot document and returns its available-vehicle records
func Decode(r io.Reader) ([]Record, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc.Placemarks == nil {
		return nil, fmt.Errorf("%w: missing placemarks", ErrMalformedDocument)
	}

	records := make([]Record, 0, len(*doc.Placemarks))
	for i, p := range *doc.Placemarks {
		rec, err := p.record()
		if err != nil {
			return nil, fmt.Errorf("%w: placemark %d: %v", ErrMalformedDocument, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
