package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/sealevel.report/internal/report"
	"github.com/banshee-data/sealevel.report/internal/simulation"
)

// ErrRunNotFound is returned by Run for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// RunStore records runs and their yearly results. It implements
// report.MetricsSink.
type RunStore struct {
	db *DB
}

var _ report.MetricsSink = (*RunStore)(nil)

func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// StoredRun is a row of simulation_runs.
type StoredRun struct {
	ID                    string
	Island                string
	Scenario              string
	StartYear             int
	DangerThresholdMeters float64
	CutoffMeters          float64
	Steps                 int
	Cells                 int
	InitialLand           int
	StartedAt             time.Time
	// FinishedAt is zero while the run is in progress.
	FinishedAt time.Time
	State      simulation.State
	Years      int
	// FinalYear is zero until the run has produced a year.
	FinalYear int
	Aborted   bool
}

// StoredYear is a row of simulation_years. Undefined percentages are NaN.
type StoredYear struct {
	Year              int
	RiseMeters        float64
	LandCells         int
	DangerCells       int
	PercentOfOriginal float64
	PercentInDanger   float64
	Snapshot          bool
}

// Begin implements report.MetricsSink.
func (s *RunStore) Begin(ctx context.Context, run report.RunInfo) error {
	return retryOnBusy(func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO simulation_runs (
				run_id, island, scenario, start_year, danger_threshold_m, cutoff_m,
				steps, cells, initial_land, started_at_ns, state
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.Island, run.Scenario, run.StartYear, run.DangerThresholdMeters, run.CutoffMeters,
			run.Steps, run.Cells, run.InitialLand, run.StartedAt.UnixNano(), simulation.Running.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
		}
		return nil
	})
}

// WriteYear implements report.MetricsSink.
func (s *RunStore) WriteYear(ctx context.Context, run report.RunInfo, res simulation.Result) error {
	return retryOnBusy(func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO simulation_years (
				run_id, year, rise_m, land_cells, danger_cells,
				percent_of_original, percent_in_danger, snapshot
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, res.Year, res.RiseMeters, res.LandCells, res.DangerCells,
			nullFloat(res.PercentOfOriginal), nullFloat(res.PercentInDanger), res.Snapshot,
		)
		if err != nil {
			return fmt.Errorf("failed to insert year %d of run %s: %w", res.Year, run.ID, err)
		}
		return nil
	})
}

// End implements report.MetricsSink.
func (s *RunStore) End(ctx context.Context, sum report.Summary) error {
	var finalYear sql.NullInt64
	if sum.Years > 0 {
		finalYear = sql.NullInt64{Int64: int64(sum.FinalYear), Valid: true}
	}
	return retryOnBusy(func() error {
		res, err := s.db.ExecContext(ctx, `
			UPDATE simulation_runs
			   SET finished_at_ns = ?, state = ?, years = ?, final_year = ?, aborted = ?
			 WHERE run_id = ?`,
			sum.FinishedAt.UnixNano(), sum.State.String(), sum.Years, finalYear, sum.Aborted, sum.Run.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to finish run %s: %w", sum.Run.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("finish run %s: %w", sum.Run.ID, ErrRunNotFound)
		}
		return nil
	})
}

const runColumns = `run_id, island, scenario, start_year, danger_threshold_m, cutoff_m,
	steps, cells, initial_land, started_at_ns, finished_at_ns, state, years, final_year, aborted`

// Runs lists every stored run, newest first.
func (s *RunStore) Runs(ctx context.Context) ([]StoredRun, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM simulation_runs ORDER BY started_at_ns DESC, island, scenario`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []StoredRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// Run returns a single run by ID.
func (s *RunStore) Run(ctx context.Context, id string) (StoredRun, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM simulation_runs WHERE run_id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredRun{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return r, err
}

// Years returns the yearly results of a run in year order.
func (s *RunStore) Years(ctx context.Context, id string) ([]StoredYear, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT year, rise_m, land_cells, danger_cells, percent_of_original, percent_in_danger, snapshot
		  FROM simulation_years
		 WHERE run_id = ?
		 ORDER BY year`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query years of run %s: %w", id, err)
	}
	defer rows.Close()

	var years []StoredYear
	for rows.Next() {
		var (
			y            StoredYear
			orig, danger sql.NullFloat64
		)
		if err := rows.Scan(&y.Year, &y.RiseMeters, &y.LandCells, &y.DangerCells, &orig, &danger, &y.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to scan year: %w", err)
		}
		y.PercentOfOriginal = floatOrNaN(orig)
		y.PercentInDanger = floatOrNaN(danger)
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate years: %w", err)
	}
	return years, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (StoredRun, error) {
	var (
		r          StoredRun
		startedNs  int64
		finishedNs sql.NullInt64
		finalYear  sql.NullInt64
		state      string
	)
	err := row.Scan(&r.ID, &r.Island, &r.Scenario, &r.StartYear, &r.DangerThresholdMeters, &r.CutoffMeters,
		&r.Steps, &r.Cells, &r.InitialLand, &startedNs, &finishedNs, &state, &r.Years, &finalYear, &r.Aborted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("failed to scan run: %w", err)
	}
	r.StartedAt = time.Unix(0, startedNs).UTC()
	if finishedNs.Valid {
		r.FinishedAt = time.Unix(0, finishedNs.Int64).UTC()
	}
	if finalYear.Valid {
		r.FinalYear = int(finalYear.Int64)
	}
	st, ok := simulation.ParseState(state)
	if !ok {
		return r, fmt.Errorf("run %s has unknown state %q", r.ID, state)
	}
	r.State = st
	return r, nil
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
