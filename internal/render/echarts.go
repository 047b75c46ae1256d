package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/sealevel.report/internal/elevation"
	"github.com/banshee-data/sealevel.report/internal/fsutil"
)

// DefaultMaxSide caps the points per axis of a surface; larger grids are
// sampled by stride.
const DefaultMaxSide = 150

var elevationColors = []string{"#08306b", "#2171b5", "#6baed6", "#c7e9c0", "#74c476", "#238b45", "#a1d99b", "#fee391", "#fe9929", "#993404"}

// SurfaceRenderer writes an interactive 3D surface HTML page per snapshot.
type SurfaceRenderer struct {
	FS  fsutil.FileSystem
	Dir string

	ZMaxMeters float64
	MaxSide    int
}

// NewSurfaceRenderer returns a renderer writing HTML pages into dir.
func NewSurfaceRenderer(fsys fsutil.FileSystem, dir string) *SurfaceRenderer {
	return &SurfaceRenderer{FS: fsys, Dir: dir, ZMaxMeters: DefaultZMaxMeters, MaxSide: DefaultMaxSide}
}

// Render implements Visualizer.
func (sr *SurfaceRenderer) Render(ctx context.Context, g *elevation.Grid, fileLabel, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows, cols := g.Dims()
	maxSide := sr.MaxSide
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	stride := 1
	if side := max(rows, cols); side > maxSide {
		stride = int(math.Ceil(float64(side) / float64(maxSide)))
	}
	zMax := sr.ZMaxMeters
	if zMax <= 0 {
		zMax = DefaultZMaxMeters
	}

	data := make([]opts.Chart3DData, 0, (rows/stride+1)*(cols/stride+1))
	for i := 0; i < rows; i += stride {
		for j := 0; j < cols; j += stride {
			data = append(data, opts.Chart3DData{Value: []interface{}{j, rows - 1 - i, g.At(i, j)}})
		}
	}

	surface := charts.NewSurface3D()
	surface.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "750px", Height: "750px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%dx%d cells, stride=%d", rows, cols, stride)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "column", Min: 0, Max: cols}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "row", Min: 0, Max: rows}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "m", Min: 0, Max: zMax}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(zMax),
			InRange:    &opts.VisualMapInRange{Color: elevationColors},
		}),
	)
	surface.AddSeries("elevation", data)

	var buf bytes.Buffer
	if err := surface.Render(&buf); err != nil {
		return fmt.Errorf("surface %s: %w", fileLabel, err)
	}
	return writeOutput(sr.FS, sr.Dir, fileLabel+".html", &buf)
}

// WriteSeriesPage renders an HTML line chart of a run to w.
func WriteSeriesPage(w io.Writer, title, subtitle string, pts []SeriesPoint) error {
	years := make([]string, len(pts))
	land := make([]opts.LineData, len(pts))
	danger := make([]opts.LineData, len(pts))
	for i, pt := range pts {
		years[i] = strconv.Itoa(pt.Year)
		land[i] = lineValue(pt.PercentOfOriginal)
		danger[i] = lineValue(pt.PercentInDanger)
	}

	colors := generateColors(2)
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "640px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%", Min: 0, Max: 100}),
	)
	line.SetXAxis(years).
		AddSeries("land remaining", land, charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(colors[0])})).
		AddSeries("land in danger zone", danger, charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(colors[1])}))

	return line.Render(w)
}

// lineValue maps NaN to echarts' missing-value marker.
func lineValue(v float64) opts.LineData {
	if math.IsNaN(v) {
		return opts.LineData{Value: "-"}
	}
	return opts.LineData{Value: v}
}
