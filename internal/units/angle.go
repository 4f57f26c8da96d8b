// Package units provides shared constants and conversion for angle units
// used by human-facing thresholds.
package units

import "math"

// Unit constants
const (
	Radians = "rad"
	Degrees = "deg"
)

// ValidUnits contains all valid angle unit values
var ValidUnits = []string{Radians, Degrees}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "rad, deg"
}

// ToRadians converts an angle in the given unit to radians. The distance
// metrics work in radians internally; tools and the API accept degrees for
// readability. Unknown units pass the value through unchanged.
func ToRadians(value float64, unit string) float64 {
	switch unit {
	case Degrees:
		return value * math.Pi / 180.0
	case Radians:
		return value
	default:
		return value
	}
}

// FromRadians converts an angle in radians to the target unit. Unknown units
// pass the value through unchanged.
func FromRadians(value float64, targetUnit string) float64 {
	switch targetUnit {
	case Degrees:
		return value * 180.0 / math.Pi
	case Radians:
		return value
	default:
		return value
	}
}
