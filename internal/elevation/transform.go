package elevation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Calibration maps raw heightmap intensity to meters: raw*Scale + Offset.
// Each heightmap source needs its own pair.
type Calibration struct {
	Scale  float64 `json:"scale"`
	Offset float64 `json:"offset"`
}

// Validate rejects constants that cannot produce meaningful heights.
func (c Calibration) Validate() error {
	if math.IsNaN(c.Scale) || math.IsInf(c.Scale, 0) || c.Scale == 0 {
		return fmt.Errorf("scale %v: %w", c.Scale, ErrBadCalibration)
	}
	if math.IsNaN(c.Offset) || math.IsInf(c.Offset, 0) {
		return fmt.Errorf("offset %v: %w", c.Offset, ErrBadCalibration)
	}
	return nil
}

// Calibrate converts a raw intensity grid to meters. Cells that map below
// zero are clamped to 0.
func Calibrate(raw *Grid, cal Calibration) *Grid {
	return mapCells(raw, func(v float64) float64 {
		return math.Max(v*cal.Scale+cal.Offset, 0)
	})
}

// ApplyRise returns a new grid with every cell lowered by riseMeters and
// floored at 0. The input grid is not modified.
func ApplyRise(g *Grid, riseMeters float64) *Grid {
	return mapCells(g, func(v float64) float64 {
		return math.Max(v-riseMeters, 0)
	})
}

func mapCells(g *Grid, fn func(v float64) float64) *Grid {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return fn(v) }, g.m)
	return &Grid{m: &out}
}
