package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/sealevel.report/internal/elevation"
	"github.com/banshee-data/sealevel.report/internal/monitoring"
	"github.com/banshee-data/sealevel.report/internal/render"
	"github.com/banshee-data/sealevel.report/internal/simulation"
	"github.com/banshee-data/sealevel.report/internal/timeutil"
)

// Job is one island under one scenario. Grid must already be calibrated.
type Job struct {
	Island   string
	Grid     *elevation.Grid
	Scenario simulation.Scenario

	// RenderBaseline emits the un-risen island before the first year.
	RenderBaseline bool
}

// Driver runs jobs and routes their results to a sink and a visualiser.
type Driver struct {
	Sink       MetricsSink
	Visualizer render.Visualizer
	Clock      timeutil.Clock

	// Parallel bounds how many jobs RunAll runs at once.
	Parallel int
}

// NewDriver returns a driver running one job at a time. Nil arguments
// disable the corresponding output.
func NewDriver(sink MetricsSink, vis render.Visualizer) *Driver {
	if sink == nil {
		sink = MultiSink{}
	}
	if vis == nil {
		vis = render.Nop{}
	}
	return &Driver{Sink: sink, Visualizer: vis, Clock: timeutil.RealClock{}, Parallel: 1}
}

func (d *Driver) clock() timeutil.Clock {
	if d.Clock == nil {
		return timeutil.RealClock{}
	}
	return d.Clock
}

// RunScenario simulates one job to completion. Every result is written to
// the sink before the next year is computed; snapshot years are also
// rendered. A sink or render failure stops the run, is returned wrapped with
// the island and scenario, and is reflected in Summary.Aborted. End is always
// called once Begin succeeded.
func (d *Driver) RunScenario(ctx context.Context, job Job) (Summary, error) {
	sim, err := simulation.New(job.Grid, job.Scenario)
	if err != nil {
		return Summary{}, fmt.Errorf("%s %s: %w", job.Island, job.Scenario.Label, err)
	}
	sc := sim.Scenario()
	logf := monitoring.Prefixed(job.Island + " " + sc.Label)

	info := RunInfo{
		ID:                    uuid.NewString(),
		Island:                job.Island,
		Scenario:              sc.Label,
		StartYear:             sc.StartYear,
		DangerThresholdMeters: sc.DangerThresholdMeters,
		CutoffMeters:          sc.CutoffMeters,
		Steps:                 len(sc.RiseMM),
		Cells:                 sim.Original().Cells(),
		InitialLand:           sim.InitialLand(),
		StartedAt:             d.clock().Now(),
	}
	wrap := func(err error) error {
		return fmt.Errorf("%s %s: %w", info.Island, info.Scenario, err)
	}

	logf("run %s: %d steps from %d, %d of %d cells are land", info.ID, info.Steps, info.StartYear, info.InitialLand, info.Cells)
	if !sc.Monotonic() {
		logf("warning: rise series decreases; each step is still applied to the original grid")
	}

	// A job cancelled before it starts leaves no trace in any sink.
	if err := ctx.Err(); err != nil {
		logf("cancelled before start: %v", err)
		return Summary{Run: info, Aborted: true}, wrap(err)
	}

	if job.RenderBaseline {
		label := fmt.Sprintf("%s%d", info.Island, info.StartYear)
		title := fmt.Sprintf("%s %d", info.Island, info.StartYear)
		if err := d.Visualizer.Render(ctx, sim.Original(), label, title); err != nil {
			return Summary{Run: info, Aborted: true}, wrap(fmt.Errorf("render baseline: %w", err))
		}
	}

	if err := d.Sink.Begin(ctx, info); err != nil {
		return Summary{Run: info, Aborted: true}, wrap(err)
	}

	sum := Summary{Run: info, State: simulation.Running}
	run := sim.Run()
	var runErr error
	for !run.State().Terminal() {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if !run.Next() {
			break
		}
		res := run.Result()
		sum.Years++
		sum.FinalYear = res.Year
		sum.PercentOfOriginal = res.PercentOfOriginal
		sum.PercentInDanger = res.PercentInDanger

		logf("Year: %d  land: %.4f%%  danger: %.4f%%", res.Year, res.PercentOfOriginal, res.PercentInDanger)

		if err := d.Sink.WriteYear(ctx, info, res); err != nil {
			runErr = err
			break
		}
		if res.Snapshot {
			label := fmt.Sprintf("%s%s%d", info.Island, info.Scenario, res.Year)
			title := fmt.Sprintf("%s %s %d", info.Island, info.Scenario, res.Year)
			if err := d.Visualizer.Render(ctx, res.Grid, label, title); err != nil {
				runErr = fmt.Errorf("render %s: %w", label, err)
				break
			}
		}
	}
	sum.State = run.State()
	sum.Aborted = runErr != nil
	sum.FinishedAt = d.clock().Now()

	switch {
	case sum.Aborted:
		logf("aborted after %d years: %v", sum.Years, runErr)
	case sum.State == simulation.HaltedByCutoff:
		logf("cutoff reached by %d", sum.FinalYear)
	case sum.State == simulation.HaltedBySubmersion:
		logf("island submerged by %d", sum.FinalYear)
	default:
		logf("series completed after %d years", sum.Years)
	}

	// Sinks must close their outputs even when ctx is already cancelled.
	endErr := d.Sink.End(context.WithoutCancel(ctx), sum)
	if err := errors.Join(runErr, endErr); err != nil {
		return sum, wrap(err)
	}
	return sum, nil
}

// RunAll runs jobs with at most Parallel in flight and returns their
// summaries in job order. The first island of each name also renders its
// baseline. The first failure cancels jobs that have not finished.
func (d *Driver) RunAll(ctx context.Context, jobs []Job) ([]Summary, error) {
	limit := d.Parallel
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	summaries := make([]Summary, len(jobs))
	baseline := make(map[string]bool)
	for i, job := range jobs {
		if !baseline[job.Island] {
			baseline[job.Island] = true
			job.RenderBaseline = true
		}
		g.Go(func() error {
			sum, err := d.RunScenario(gctx, job)
			summaries[i] = sum
			return err
		})
	}
	err := g.Wait()
	return summaries, err
}
