// Package units provides shared constants and conversion for length units
// used by sea-level rise series and elevation thresholds.
package units

import "strings"

// Unit constants
const (
	MM   = "mm"
	CM   = "cm"
	M    = "m"
	IN   = "in"
	FT   = "ft"
	Feet = "feet"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MM, CM, M, IN, FT, Feet}

// metersPer maps each unit to its length in meters.
var metersPer = map[string]float64{
	MM:   0.001,
	CM:   0.01,
	M:    1,
	IN:   0.0254,
	FT:   0.3048,
	Feet: 0.3048,
}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	_, ok := metersPer[unit]
	return ok
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// MillimetersToMeters converts a rise series value (mm) to meters.
func MillimetersToMeters(mm float64) float64 {
	return mm * metersPer[MM]
}

// ToMeters converts a length in the given unit to meters.
// Unknown units are treated as millimeters, the unit rise series are published in.
func ToMeters(v float64, unit string) float64 {
	if f, ok := metersPer[unit]; ok {
		return v * f
	}
	return v * metersPer[MM]
}

// ToMillimeters converts a length in the given unit to millimeters.
func ToMillimeters(v float64, unit string) float64 {
	return ToMeters(v, unit) / metersPer[MM]
}
