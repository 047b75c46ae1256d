package simulation

import (
	"fmt"
	"iter"
	"math"

	"github.com/banshee-data/sealevel.report/internal/elevation"
	"github.com/banshee-data/sealevel.report/internal/units"
)

// Result is the outcome of one simulated year. Results are never modified
// after a Run yields them.
type Result struct {
	Year       int
	RiseMeters float64

	LandCells   int
	DangerCells int

	// PercentOfOriginal is 100*LandCells/initial land. It is NaN when the
	// original grid had no land.
	PercentOfOriginal float64
	// PercentInDanger is 100*DangerCells/LandCells, or NaN when no land remains.
	PercentInDanger float64

	// Snapshot marks a year on the snapshot boundary.
	Snapshot bool
	// Final marks the last result of the run; State then holds the reason.
	Final bool
	State State

	// Grid is the derived elevation grid for this year. It is immutable and
	// safe to retain.
	Grid *elevation.Grid
}

// DangerDefined reports whether PercentInDanger holds a real percentage.
func (r Result) DangerDefined() bool {
	return !math.IsNaN(r.PercentInDanger)
}

// Simulator holds the baseline of a scenario run.
type Simulator struct {
	original    *elevation.Grid
	scenario    Scenario
	initialLand int
}

// New validates the scenario and captures the baseline land count of grid.
func New(grid *elevation.Grid, sc Scenario) (*Simulator, error) {
	if grid == nil {
		return nil, fmt.Errorf("nil grid: %w", ErrInvalidScenario)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	sc.RiseMM = append([]float64(nil), sc.RiseMM...)
	return &Simulator{
		original:    grid,
		scenario:    sc.withDefaults(),
		initialLand: elevation.CountLand(grid),
	}, nil
}

// InitialLand returns the land-cell count of the original grid.
func (s *Simulator) InitialLand() int { return s.initialLand }

// Original returns the baseline grid.
func (s *Simulator) Original() *elevation.Grid { return s.original }

// Scenario returns the scenario with defaults applied.
func (s *Simulator) Scenario() Scenario { return s.scenario }

// Evaluate computes the metrics for a cumulative rise (meters) without
// advancing any run. Year, Snapshot, Final and State are left zero.
func (s *Simulator) Evaluate(riseMeters float64) Result {
	g := elevation.ApplyRise(s.original, riseMeters)
	land := elevation.CountLand(g)
	danger := elevation.CountDangerZone(g, s.scenario.DangerThresholdMeters)

	r := Result{
		RiseMeters:        riseMeters,
		LandCells:         land,
		DangerCells:       danger,
		PercentOfOriginal: math.NaN(),
		PercentInDanger:   math.NaN(),
		Grid:              g,
	}
	if s.initialLand > 0 {
		r.PercentOfOriginal = 100 * float64(land) / float64(s.initialLand)
	}
	if land > 0 {
		r.PercentInDanger = 100 * float64(danger) / float64(land)
	}
	return r
}

// Run starts a new pass over the scenario series. Each Run is independent;
// a single Run cannot be restarted.
func (s *Simulator) Run() *Run {
	return &Run{sim: s, year: s.scenario.StartYear, state: Running}
}

// Run is a lazy cursor over the yearly results of one scenario pass.
//
//	run := sim.Run()
//	for run.Next() {
//		r := run.Result()
//		...
//	}
//	switch run.State() { ... }
type Run struct {
	sim   *Simulator
	step  int
	year  int
	state State
	cur   Result
}

// Next computes the next year. It returns false once the run has reached a
// terminal state; an empty series completes without producing a result.
func (r *Run) Next() bool {
	if r.state.Terminal() {
		return false
	}
	series := r.sim.scenario.RiseMM
	if r.step >= len(series) {
		r.state = CompletedSeries
		return false
	}

	rise := units.MillimetersToMeters(series[r.step])
	res := r.sim.Evaluate(rise)
	r.step++
	r.year++
	res.Year = r.year
	res.Snapshot = r.sim.scenario.snapshotYear(r.year)

	switch {
	case rise >= r.sim.scenario.CutoffMeters:
		r.state = HaltedByCutoff
	case res.LandCells == 0:
		r.state = HaltedBySubmersion
	case r.step == len(series):
		r.state = CompletedSeries
	}
	res.State = r.state
	res.Final = r.state.Terminal()

	r.cur = res
	return true
}

// Result returns the result produced by the last successful Next.
func (r *Run) Result() Result { return r.cur }

// State returns the current state. After Next returns false it is terminal.
func (r *Run) State() State { return r.state }

// Year returns the year of the last produced result, or the start year.
func (r *Run) Year() int { return r.year }

// All yields the remaining results of the run.
func (r *Run) All() iter.Seq[Result] {
	return func(yield func(Result) bool) {
		for r.Next() {
			if !yield(r.cur) {
				return
			}
		}
	}
}
