package db

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sealevel.report/internal/report"
	"github.com/banshee-data/sealevel.report/internal/simulation"
	"github.com/banshee-data/sealevel.report/internal/testutil"
	"github.com/banshee-data/sealevel.report/internal/timeutil"
)

func exampleJob(t *testing.T, rise ...float64) report.Job {
	t.Helper()
	return report.Job{
		Island: "Example",
		Grid:   testutil.MustGrid(t, testutil.ExampleRows),
		Scenario: simulation.Scenario{
			Label:                 "Test",
			RiseMM:                rise,
			DangerThresholdMeters: 1,
			CutoffMeters:          10,
			StartYear:             2019,
		},
	}
}

func TestRunStore_RoundTrip(t *testing.T) {
	store := NewRunStore(newTestDB(t))
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	d := report.NewDriver(store, nil)
	d.Clock = timeutil.NewSteppingClock(start, time.Minute)
	sum, err := d.RunScenario(ctx, exampleJob(t, 0, 1000, 2000))
	require.NoError(t, err)

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, sum.Run.ID, got.ID)
	assert.Equal(t, "Example", got.Island)
	assert.Equal(t, "Test", got.Scenario)
	assert.Equal(t, 2019, got.StartYear)
	assert.Equal(t, 3, got.Steps)
	assert.Equal(t, 9, got.Cells)
	assert.Equal(t, 5, got.InitialLand)
	assert.Equal(t, simulation.CompletedSeries, got.State)
	assert.Equal(t, 3, got.Years)
	assert.Equal(t, 2022, got.FinalYear)
	assert.False(t, got.Aborted)
	assert.True(t, got.StartedAt.Equal(start))
	assert.True(t, got.FinishedAt.Equal(start.Add(time.Minute)))

	years, err := store.Years(ctx, got.ID)
	require.NoError(t, err)
	require.Len(t, years, 3)
	assert.Equal(t, 2020, years[0].Year)
	assert.True(t, years[0].Snapshot)
	assert.False(t, years[1].Snapshot)
	assert.InDelta(t, 1.0, years[1].RiseMeters, testutil.Tolerance)
	assert.InDelta(t, 60.0, years[1].PercentOfOriginal, testutil.Tolerance)
	assert.InDelta(t, 50.0, years[2].PercentInDanger, testutil.Tolerance)

	byID, err := store.Run(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, got, byID)
}

func TestRunStore_UndefinedPercentagesAreNULL(t *testing.T) {
	db := newTestDB(t)
	store := NewRunStore(db)
	ctx := context.Background()

	sum, err := report.NewDriver(store, nil).RunScenario(ctx, exampleJob(t, 6000))
	require.NoError(t, err)
	assert.Equal(t, simulation.HaltedBySubmersion, sum.State)

	var nulls int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM simulation_years WHERE run_id = ? AND percent_in_danger IS NULL`, sum.Run.ID,
	).Scan(&nulls))
	assert.Equal(t, 1, nulls)

	years, err := store.Years(ctx, sum.Run.ID)
	require.NoError(t, err)
	require.Len(t, years, 1)
	assert.Zero(t, years[0].LandCells)
	assert.Zero(t, years[0].PercentOfOriginal)
	assert.True(t, math.IsNaN(years[0].PercentInDanger))

	var state string
	var pct float64
	require.NoError(t, db.QueryRow(
		`SELECT state, percent_of_original FROM simulation_outcomes WHERE run_id = ?`, sum.Run.ID,
	).Scan(&state, &pct))
	assert.Equal(t, "halted_by_submersion", state)
	assert.Zero(t, pct)
}

func TestRunStore_EmptySeries(t *testing.T) {
	store := NewRunStore(newTestDB(t))
	ctx := context.Background()

	sum, err := report.NewDriver(store, nil).RunScenario(ctx, exampleJob(t))
	require.NoError(t, err)

	run, err := store.Run(ctx, sum.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, simulation.CompletedSeries, run.State)
	assert.Zero(t, run.Years)
	assert.Zero(t, run.FinalYear)
}

func TestRunStore_Errors(t *testing.T) {
	store := NewRunStore(newTestDB(t))
	ctx := context.Background()

	_, err := store.Run(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	err = store.End(ctx, report.Summary{Run: report.RunInfo{ID: "missing"}, FinishedAt: time.Now()})
	assert.ErrorIs(t, err, ErrRunNotFound)

	// Years of an unknown run violate the foreign key.
	err = store.WriteYear(ctx, report.RunInfo{ID: "missing"}, simulation.Result{Year: 2020})
	assert.Error(t, err)

	info := report.RunInfo{ID: "dup", Island: "A", Scenario: "B", StartedAt: time.Now()}
	require.NoError(t, store.Begin(ctx, info))
	assert.Error(t, store.Begin(ctx, info))
}
