package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/sealevel.report/internal/config"
	"github.com/banshee-data/sealevel.report/internal/db"
	"github.com/banshee-data/sealevel.report/internal/fsutil"
	"github.com/banshee-data/sealevel.report/internal/monitoring"
	"github.com/banshee-data/sealevel.report/internal/render"
	"github.com/banshee-data/sealevel.report/internal/report"
	"github.com/banshee-data/sealevel.report/internal/scenario"
)

func runCommand(ctx context.Context, args []string, stderr io.Writer) error {
	fs := newFlagSet("run", stderr)
	configPath := fs.String("config", "", "Path to a JSON config (default: built-in four-island study)")
	outDir := fs.String("out", "", "Override the output directory")
	dbPath := fs.String("db", "", "Override the sqlite database path; \"-\" disables persistence")
	parallel := fs.Int("parallel", 0, "Override how many runs execute at once")
	noRender := fs.Bool("no-render", false, "Skip heatmap and surface snapshots")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	if *outDir != "" {
		cfg.OutputDir = outDir
	}
	switch *dbPath {
	case "":
	case "-":
		cfg.DBPath = nil
	default:
		cfg.DBPath = dbPath
	}
	if *parallel != 0 {
		cfg.Parallel = parallel
	}
	if cfg.Influx.Enabled() && cfg.Influx.Token == "" {
		cfg.Influx.Token = os.Getenv("INFLUX_TOKEN")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fsys := fsutil.OSFileSystem{}
	out := cfg.GetOutputDir()

	sinks := report.MultiSink{
		report.NewCSVSink(fsys, out),
		report.NewChartSink(render.NewSeriesChart(fsys, out)),
	}
	if path := cfg.GetDBPath(); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		database, err := db.Open(path)
		if err != nil {
			return err
		}
		defer database.Close()
		sinks = append(sinks, db.NewRunStore(database))
	}
	if ic := cfg.Influx; ic.Enabled() {
		influx := report.NewInfluxSink(ic.URL, ic.Token, ic.Org, ic.Bucket)
		defer influx.Close()
		sinks = append(sinks, influx)
	}

	var vis render.Visualizer = render.Nop{}
	if !*noRender {
		vis = render.Multi{
			render.NewHeatmapPlotter(fsys, out, contourThreshold(cfg)),
			render.NewSurfaceRenderer(fsys, out),
		}
	}

	jobs, err := report.BuildJobs(cfg, fsys)
	if err != nil {
		return err
	}

	driver := report.NewDriver(sinks, vis)
	driver.Parallel = cfg.GetParallel()
	monitoring.Logf("running %d jobs, %d at a time, writing to %s", len(jobs), driver.Parallel, out)

	sums, err := driver.RunAll(ctx, jobs)
	for _, s := range sums {
		if s.Run.ID == "" {
			continue
		}
		monitoring.Logf("%-16s %-14s %-22s final year %d  land %.2f%%",
			s.Run.Island, s.Run.Scenario, s.State, s.FinalYear, s.PercentOfOriginal)
	}
	return err
}

// contourThreshold picks the danger band drawn on heatmaps. Every preset
// island shares one threshold; with mixed thresholds the widest is drawn.
func contourThreshold(cfg *config.Config) float64 {
	t := math.Inf(-1)
	for _, ic := range cfg.Islands {
		is, err := ic.Resolve()
		if err != nil {
			continue
		}
		t = math.Max(t, is.DangerThresholdMeters)
	}
	if math.IsInf(t, -1) {
		return scenario.DefaultDangerThresholdMeters
	}
	return t
}
