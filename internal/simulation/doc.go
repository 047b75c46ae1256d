// Package simulation runs a sea-level rise scenario over a calibrated island
// grid and yields one Result per simulated year.
//
// A Simulator captures the original grid and its land-cell count once. Each
// step of a scenario applies the step's cumulative rise to that original grid
// (never to the previous year's grid), counts land and danger-zone cells and
// compares them with the baseline. A run ends in one of three terminal
// states:
//
//	HaltedByCutoff      cumulative rise reached the scenario cutoff
//	HaltedBySubmersion  no land cells remain
//	CompletedSeries     every step of the series was simulated
//
// The cutoff check happens before the submersion check, so a step that both
// reaches the cutoff and drowns the island reports HaltedByCutoff.
//
// Runs are pure: nothing is written or rendered here. Results carry the
// derived grid and a Snapshot flag so callers can decide what to persist.
package simulation
