package simulation

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidScenario is returned when a scenario or its grid cannot be run.
var ErrInvalidScenario = errors.New("simulation: invalid scenario")

const (
	// DefaultSnapshotEpoch is the reference year config uses when none is given.
	DefaultSnapshotEpoch = 2000
	// DefaultSnapshotEvery is the snapshot interval in years.
	DefaultSnapshotEvery = 10
)

// Scenario is the immutable input of a single run.
type Scenario struct {
	// Label names the rise series, e.g. "RCP4.5".
	Label string
	// RiseMM holds the cumulative rise from the baseline for each simulated
	// year, in millimeters. Values are expected to be non-decreasing.
	RiseMM []float64
	// DangerThresholdMeters bounds the at-risk band 0 < h <= threshold.
	DangerThresholdMeters float64
	// CutoffMeters halts the run once cumulative rise reaches it.
	CutoffMeters float64
	// StartYear is the baseline year; the first step reports StartYear+1.
	StartYear int

	// SnapshotEpoch and SnapshotEvery select snapshot years:
	// (year-SnapshotEpoch) % SnapshotEvery == 0. Any epoch is used as given,
	// including 0. A zero SnapshotEvery uses the default interval; a
	// negative one disables snapshots.
	SnapshotEpoch int
	SnapshotEvery int
}

// Validate reports configuration errors. Monotonicity of RiseMM is not
// checked here; see Monotonic.
func (s Scenario) Validate() error {
	if math.IsNaN(s.DangerThresholdMeters) || s.DangerThresholdMeters < 0 {
		return fmt.Errorf("danger threshold %v m: %w", s.DangerThresholdMeters, ErrInvalidScenario)
	}
	if math.IsNaN(s.CutoffMeters) || s.CutoffMeters <= 0 {
		return fmt.Errorf("cutoff %v m: %w", s.CutoffMeters, ErrInvalidScenario)
	}
	for i, v := range s.RiseMM {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("rise step %d = %v: %w", i, v, ErrInvalidScenario)
		}
	}
	return nil
}

// Monotonic reports whether RiseMM never decreases.
func (s Scenario) Monotonic() bool {
	for i := 1; i < len(s.RiseMM); i++ {
		if s.RiseMM[i] < s.RiseMM[i-1] {
			return false
		}
	}
	return true
}

// withDefaults fills a zero snapshot interval.
func (s Scenario) withDefaults() Scenario {
	if s.SnapshotEvery == 0 {
		s.SnapshotEvery = DefaultSnapshotEvery
	}
	return s
}

// snapshotYear reports whether year falls on a snapshot boundary.
func (s Scenario) snapshotYear(year int) bool {
	if s.SnapshotEvery < 0 {
		return false
	}
	return (year-s.SnapshotEpoch)%s.SnapshotEvery == 0
}
