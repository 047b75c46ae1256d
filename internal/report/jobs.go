package report

import (
	"fmt"

	"github.com/banshee-data/sealevel.report/internal/config"
	"github.com/banshee-data/sealevel.report/internal/elevation"
	"github.com/banshee-data/sealevel.report/internal/fsutil"
	"github.com/banshee-data/sealevel.report/internal/heightmap"
	"github.com/banshee-data/sealevel.report/internal/monitoring"
)

// BuildJobs loads and calibrates every island heightmap once and pairs it
// with every scenario, islands outermost.
func BuildJobs(cfg *config.Config, fsys fsutil.FileSystem) ([]Job, error) {
	var jobs []Job
	for _, ic := range cfg.Islands {
		is, err := ic.Resolve()
		if err != nil {
			return nil, err
		}
		raw, err := heightmap.Load(fsys, ic.Heightmap)
		if err != nil {
			return nil, fmt.Errorf("island %s: %w", is.Name, err)
		}
		grid := elevation.Calibrate(raw, is.Calibration)

		s := grid.Summary()
		monitoring.Logf("%s: %dx%d grid, %d land cells, max %.3f m, median %.3f m",
			is.Name, s.Rows, s.Cols, s.LandCells, s.MaxMeters, s.MedianMeters)

		for _, scfg := range cfg.Scenarios {
			sc, err := cfg.Scenario(is, scfg)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, Job{Island: is.Name, Grid: grid, Scenario: sc})
		}
	}
	return jobs, nil
}
