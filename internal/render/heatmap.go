package render

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/sealevel.report/internal/elevation"
	"github.com/banshee-data/sealevel.report/internal/fsutil"
)

// DefaultZMaxMeters fixes the colour scale so snapshots of one island are
// comparable across years.
const DefaultZMaxMeters = 10.0

// coastLevel traces the boundary between submerged (0) and land cells.
const coastLevel = 1e-6

// gridXYZ adapts an elevation grid to plotter.GridXYZ. Row 0 of the grid is
// the top of the heightmap, so rows are flipped onto the y axis.
type gridXYZ struct {
	g          *elevation.Grid
	rows, cols int
}

func newGridXYZ(g *elevation.Grid) gridXYZ {
	r, c := g.Dims()
	return gridXYZ{g: g, rows: r, cols: c}
}

func (x gridXYZ) Dims() (c, r int)   { return x.cols, x.rows }
func (x gridXYZ) Z(c, r int) float64 { return x.g.At(x.rows-1-r, c) }
func (x gridXYZ) X(c int) float64    { return float64(c) }
func (x gridXYZ) Y(r int) float64    { return float64(r) }

// cellRange returns the lowest and highest cell of g.
func cellRange(g *elevation.Grid) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range g.Values() {
		for _, v := range row {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}

// HeatmapPlotter writes a PNG heat map of each snapshot with contour lines
// at the coastline and at the danger threshold.
type HeatmapPlotter struct {
	FS  fsutil.FileSystem
	Dir string

	// ZMaxMeters is the top of the colour scale; taller cells saturate.
	ZMaxMeters float64
	// DangerThresholdMeters adds a contour at that height when positive.
	DangerThresholdMeters float64

	Width, Height vg.Length
}

// NewHeatmapPlotter returns a plotter writing 8x8 inch PNGs into dir.
func NewHeatmapPlotter(fsys fsutil.FileSystem, dir string, dangerThreshold float64) *HeatmapPlotter {
	return &HeatmapPlotter{
		FS:                    fsys,
		Dir:                   dir,
		ZMaxMeters:            DefaultZMaxMeters,
		DangerThresholdMeters: dangerThreshold,
		Width:                 8 * vg.Inch,
		Height:                8 * vg.Inch,
	}
}

// Render implements Visualizer.
func (hp *HeatmapPlotter) Render(ctx context.Context, g *elevation.Grid, fileLabel, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	grid := newGridXYZ(g)
	zMax := hp.ZMaxMeters
	if zMax <= 0 {
		zMax = DefaultZMaxMeters
	}

	cm := moreland.ExtendedBlackBody()
	cm.SetMin(0)
	cm.SetMax(zMax)
	pal := cm.Palette(255)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Column"
	p.Y.Label.Text = "Row"

	heat := plotter.NewHeatMap(grid, pal)
	heat.Min = 0
	heat.Max = zMax
	heat.Overflow = pal.Colors()[len(pal.Colors())-1]
	p.Add(heat)

	// Contours need relief; a flat grid has none.
	if lo, hi := cellRange(g); hi > lo {
		levels := []float64{coastLevel}
		if hp.DangerThresholdMeters > 0 {
			levels = append(levels, hp.DangerThresholdMeters)
		}
		contour := plotter.NewContour(grid, levels, palette.Heat(len(levels), 1))
		contour.LineStyles[0].Width = vg.Points(1)
		p.Add(contour)
	}

	p.X.Min, p.X.Max = -0.5, float64(grid.cols)-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(grid.rows)-0.5

	wt, err := p.WriterTo(hp.Width, hp.Height, "png")
	if err != nil {
		return fmt.Errorf("heatmap %s: %w", fileLabel, err)
	}
	return writeOutput(hp.FS, hp.Dir, fileLabel+".png", wt)
}
