package render

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/sealevel.report/internal/fsutil"
)

// SeriesPoint is one year of a finished run.
type SeriesPoint struct {
	Year              int
	PercentOfOriginal float64
	PercentInDanger   float64 // NaN when no land remained
}

// SeriesChart plots land remaining and land at risk over a run as a PNG.
type SeriesChart struct {
	FS  fsutil.FileSystem
	Dir string

	Width, Height vg.Length
}

// NewSeriesChart returns a chart writer producing 10x5 inch PNGs in dir.
func NewSeriesChart(fsys fsutil.FileSystem, dir string) *SeriesChart {
	return &SeriesChart{FS: fsys, Dir: dir, Width: 10 * vg.Inch, Height: 5 * vg.Inch}
}

// Plot writes <fileLabel>.png. Years without a danger percentage are left
// out of the danger line.
func (sc *SeriesChart) Plot(ctx context.Context, fileLabel, title string, pts []SeriesPoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(pts) == 0 {
		return fmt.Errorf("series %s: no points", fileLabel)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Percent"
	p.Y.Min, p.Y.Max = 0, 100
	p.Add(plotter.NewGrid())

	land := make(plotter.XYs, 0, len(pts))
	danger := make(plotter.XYs, 0, len(pts))
	for _, pt := range pts {
		if !math.IsNaN(pt.PercentOfOriginal) {
			land = append(land, plotter.XY{X: float64(pt.Year), Y: pt.PercentOfOriginal})
		}
		if !math.IsNaN(pt.PercentInDanger) {
			danger = append(danger, plotter.XY{X: float64(pt.Year), Y: pt.PercentInDanger})
		}
	}

	colors := generateColors(2)
	for i, s := range []struct {
		name string
		xys  plotter.XYs
	}{
		{"land remaining", land},
		{"land in danger zone", danger},
	} {
		if len(s.xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(s.xys)
		if err != nil {
			return fmt.Errorf("series %s: %w", fileLabel, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(sc.Width, sc.Height, "png")
	if err != nil {
		return fmt.Errorf("series %s: %w", fileLabel, err)
	}
	return writeOutput(sc.FS, sc.Dir, fileLabel+".png", wt)
}
