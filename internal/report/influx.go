package report

import (
	"context"
	"fmt"
	"math"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/banshee-data/sealevel.report/internal/simulation"
)

// Influx measurement names.
const (
	MeasurementYear    = "island_submersion"
	MeasurementOutcome = "island_submersion_outcome"
)

// InfluxSink writes one point per simulated year, timestamped at 1 January of
// that year and tagged by island and scenario. NaN percentages are omitted
// because line protocol cannot carry them.
type InfluxSink struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
}

// NewInfluxSink connects to an InfluxDB 2 server. The connection is lazy;
// errors surface on the first write.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	client := influxdb2.NewClient(url, token)
	return &InfluxSink{client: client, write: client.WriteAPIBlocking(org, bucket)}
}

// Close releases the client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func runTags(run RunInfo) map[string]string {
	return map[string]string{"island": run.Island, "scenario": run.Scenario}
}

func yearTime(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// Begin implements MetricsSink.
func (s *InfluxSink) Begin(context.Context, RunInfo) error { return nil }

// WriteYear implements MetricsSink.
func (s *InfluxSink) WriteYear(ctx context.Context, run RunInfo, res simulation.Result) error {
	fields := map[string]interface{}{
		"rise_m":       res.RiseMeters,
		"land_cells":   int64(res.LandCells),
		"danger_cells": int64(res.DangerCells),
	}
	if !math.IsNaN(res.PercentOfOriginal) {
		fields["percent_of_original"] = res.PercentOfOriginal
	}
	if res.DangerDefined() {
		fields["percent_in_danger"] = res.PercentInDanger
	}

	p := influxdb2.NewPoint(MeasurementYear, runTags(run), fields, yearTime(res.Year))
	if err := s.write.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("influx sink: write %s year %d: %w", run.FileLabel(), res.Year, err)
	}
	return nil
}

// End implements MetricsSink.
func (s *InfluxSink) End(ctx context.Context, sum Summary) error {
	if sum.Years == 0 {
		return nil
	}
	fields := map[string]interface{}{
		"state":   sum.State.String(),
		"years":   int64(sum.Years),
		"aborted": sum.Aborted,
	}
	p := influxdb2.NewPoint(MeasurementOutcome, runTags(sum.Run), fields, yearTime(sum.FinalYear))
	if err := s.write.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("influx sink: write outcome %s: %w", sum.Run.FileLabel(), err)
	}
	return nil
}
