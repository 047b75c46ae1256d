package report

import (
	"context"
	"sync"

	"github.com/banshee-data/sealevel.report/internal/render"
	"github.com/banshee-data/sealevel.report/internal/simulation"
)

// ChartSink collects a run's yearly percentages and plots them when the run ends.
type ChartSink struct {
	Chart *render.SeriesChart

	mu     sync.Mutex
	points map[string][]render.SeriesPoint
}

// NewChartSink wraps chart.
func NewChartSink(chart *render.SeriesChart) *ChartSink {
	return &ChartSink{Chart: chart, points: make(map[string][]render.SeriesPoint)}
}

// Begin implements MetricsSink.
func (s *ChartSink) Begin(_ context.Context, run RunInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.points == nil {
		s.points = make(map[string][]render.SeriesPoint)
	}
	s.points[run.ID] = nil
	return nil
}

// WriteYear implements MetricsSink.
func (s *ChartSink) WriteYear(_ context.Context, run RunInfo, res simulation.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points[run.ID] = append(s.points[run.ID], render.SeriesPoint{
		Year:              res.Year,
		PercentOfOriginal: res.PercentOfOriginal,
		PercentInDanger:   res.PercentInDanger,
	})
	return nil
}

// End implements MetricsSink. Runs that produced no years are not plotted.
func (s *ChartSink) End(ctx context.Context, sum Summary) error {
	s.mu.Lock()
	pts := s.points[sum.Run.ID]
	delete(s.points, sum.Run.ID)
	s.mu.Unlock()

	if len(pts) == 0 {
		return nil
	}
	return s.Chart.Plot(ctx, sum.Run.FileLabel()+"_series", sum.Run.Island+" "+sum.Run.Scenario, pts)
}
