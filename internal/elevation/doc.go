// Package elevation holds the calibrated island elevation grid and the pure
// transforms and reducers the submersion model is built from.
//
// A Grid is a fixed rows x cols field of heights in meters. Grids are never
// modified after construction: Calibrate and ApplyRise return new grids, so a
// grid retained for rendering can never be changed by a later simulation step.
//
// Cell value 0 is the submerged sentinel. Every grid produced by Calibrate or
// ApplyRise has all cells >= 0.
package elevation
