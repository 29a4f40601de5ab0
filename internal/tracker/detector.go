package tracker

import "github.com/jengzang/carsharing-backend-go/internal/snapshot"

// Changed reports whether cur differs from prev in any tracked field.
// A missing previous record always counts as a change. Comparison is exact:
// any coordinate or fuel jitter is a change. Altitude is not stored, so it
// is not tracked either.
func Changed(prev *snapshot.Record, cur snapshot.Record) bool {
	if prev == nil {
		return true
	}
	return prev.Plate != cur.Plate ||
		prev.VIN != cur.VIN ||
		prev.Address != cur.Address ||
		prev.Longitude != cur.Longitude ||
		prev.Latitude != cur.Latitude ||
		prev.Fuel != cur.Fuel ||
		prev.EngineType != cur.EngineType ||
		prev.SmartPhoneRequired != cur.SmartPhoneRequired ||
		prev.Interior != cur.Interior ||
		prev.Exterior != cur.Exterior ||
		prev.Occupied != cur.Occupied ||
		!sameFlag(prev.Charging, cur.Charging)
}

func sameFlag(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
