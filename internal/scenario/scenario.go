// Package scenario holds the named rise series and island presets the model
// was first run with.
package scenario

import (
	"sort"
	"strings"

	"github.com/banshee-data/sealevel.report/internal/elevation"
)

// Preset series names.
const (
	RCP26         = "RCP2.6"
	RCP45         = "RCP4.5"
	RCP85         = "RCP8.5"
	StabilityLow  = "StabilityLow"
	StabilityHigh = "StabilityHigh"
)

// DefaultDangerThresholdMeters is the storm-surge band used for every preset island.
const DefaultDangerThresholdMeters = 0.3

// DefaultStartYear is the baseline year of the preset series.
const DefaultStartYear = 2020

var presets = map[string][]float64{
	RCP26:         seriesRCP26,
	RCP45:         seriesRCP45,
	RCP85:         seriesRCP85,
	StabilityLow:  seriesStabilityLow,
	StabilityHigh: seriesStabilityHigh,
}

// normalize folds case and drops separators so "rcp45", "RCP 4.5" and
// "RCP4.5" resolve to the same preset.
func normalize(name string) string {
	r := strings.NewReplacer(".", "", " ", "", "_", "", "-", "")
	return strings.ToLower(r.Replace(name))
}

// Series returns a copy of the named preset rise series in millimeters.
func Series(name string) ([]float64, bool) {
	key := normalize(name)
	for k, v := range presets {
		if normalize(k) == key {
			return append([]float64(nil), v...), true
		}
	}
	return nil, false
}

// Names returns the preset series names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for k := range presets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// RCPNames returns the three emission scenarios in ascending order.
func RCPNames() []string {
	return []string{RCP26, RCP45, RCP85}
}

// Island describes one island's heightmap calibration and risk limits.
type Island struct {
	Name        string
	Calibration elevation.Calibration
	// DangerThresholdMeters bounds the at-risk elevation band.
	DangerThresholdMeters float64
	// CutoffMeters is the rise at which critical infrastructure (the airport)
	// is lost and the run stops.
	CutoffMeters float64
}

// Islands returns the preset islands. Calibration constants differ per island
// because each heightmap was exported with a different intensity range.
func Islands() []Island {
	return []Island{
		{Name: "Maldives", Calibration: elevation.Calibration{Scale: 0.0008, Offset: -2}, DangerThresholdMeters: DefaultDangerThresholdMeters, CutoffMeters: 2},
		{Name: "Tuvalu", Calibration: elevation.Calibration{Scale: 0.0008, Offset: -2}, DangerThresholdMeters: DefaultDangerThresholdMeters, CutoffMeters: 3},
		{Name: "Kiribati", Calibration: elevation.Calibration{Scale: 0.0001, Offset: -0.2}, DangerThresholdMeters: DefaultDangerThresholdMeters, CutoffMeters: 2},
		{Name: "MarshallIslands", Calibration: elevation.Calibration{Scale: 0.00035, Offset: -0.8}, DangerThresholdMeters: DefaultDangerThresholdMeters, CutoffMeters: 2},
	}
}

// LookupIsland finds a preset island by case-insensitive name.
func LookupIsland(name string) (Island, bool) {
	key := normalize(name)
	for _, is := range Islands() {
		if normalize(is.Name) == key {
			return is, true
		}
	}
	return Island{}, false
}
