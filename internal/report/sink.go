// Package report drives scenario runs and fans their yearly results out to
// metric sinks and snapshot visualisers.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/banshee-data/sealevel.report/internal/simulation"
)

// RunInfo identifies one island/scenario run. Sinks receive it with every
// call, so a single sink may serve concurrent runs.
type RunInfo struct {
	ID       string
	Island   string
	Scenario string

	StartYear             int
	DangerThresholdMeters float64
	CutoffMeters          float64
	Steps                 int

	Cells       int
	InitialLand int
	StartedAt   time.Time
}

// FileLabel is the base name used for the run's output files.
func (ri RunInfo) FileLabel() string {
	return ri.Island + ri.Scenario
}

// Summary describes how a run ended.
type Summary struct {
	Run RunInfo

	State     simulation.State
	Years     int
	FinalYear int

	PercentOfOriginal float64
	PercentInDanger   float64

	// Aborted is set when a sink, visualiser or cancellation stopped the run
	// before the simulation reached its own terminal state.
	Aborted    bool
	FinishedAt time.Time
}

// MetricsSink receives the yearly results of runs.
type MetricsSink interface {
	Begin(ctx context.Context, run RunInfo) error
	WriteYear(ctx context.Context, run RunInfo, res simulation.Result) error
	End(ctx context.Context, sum Summary) error
}

// MultiSink forwards every call to each sink and joins their errors.
type MultiSink []MetricsSink

// Begin implements MetricsSink. If any sink fails, the sinks that did begin
// are ended with an aborted summary, since the driver will not call End for
// a run that never started.
func (m MultiSink) Begin(ctx context.Context, run RunInfo) error {
	var (
		errs  []error
		begun []MetricsSink
	)
	for _, s := range m {
		if err := s.Begin(ctx, run); err != nil {
			errs = append(errs, err)
			continue
		}
		begun = append(begun, s)
	}
	if len(errs) == 0 {
		return nil
	}
	abort := Summary{Run: run, State: simulation.Running, Aborted: true, FinishedAt: run.StartedAt}
	for _, s := range begun {
		errs = append(errs, s.End(context.WithoutCancel(ctx), abort))
	}
	return errors.Join(errs...)
}

// WriteYear implements MetricsSink.
func (m MultiSink) WriteYear(ctx context.Context, run RunInfo, res simulation.Result) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.WriteYear(ctx, run, res))
	}
	return errors.Join(errs...)
}

// End implements MetricsSink.
func (m MultiSink) End(ctx context.Context, sum Summary) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.End(ctx, sum))
	}
	return errors.Join(errs...)
}
