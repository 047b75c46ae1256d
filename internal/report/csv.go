package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/banshee-data/sealevel.report/internal/fsutil"
	"github.com/banshee-data/sealevel.report/internal/simulation"
)

// CSVHeader is the first row of every run file.
var CSVHeader = []string{"year", "percent_of_original", "percent_in_danger"}

// CSVSink writes one <island><scenario>.csv per run into Dir. Undefined
// percentages are written as NaN.
type CSVSink struct {
	FS  fsutil.FileSystem
	Dir string
	// NoHeader omits CSVHeader.
	NoHeader bool

	mu   sync.Mutex
	open map[string]*csvRun
}

type csvRun struct {
	f  io.WriteCloser
	cw *csv.Writer
}

// NewCSVSink returns a sink writing into dir.
func NewCSVSink(fsys fsutil.FileSystem, dir string) *CSVSink {
	return &CSVSink{FS: fsys, Dir: dir, open: make(map[string]*csvRun)}
}

// Begin implements MetricsSink.
func (s *CSVSink) Begin(_ context.Context, run RunInfo) error {
	f, path, err := fsutil.CreateIn(s.FS, s.Dir, run.FileLabel()+".csv")
	if err != nil {
		return fmt.Errorf("csv sink: %w", err)
	}
	cr := &csvRun{f: f, cw: csv.NewWriter(f)}
	if !s.NoHeader {
		if err := cr.cw.Write(CSVHeader); err != nil {
			f.Close()
			return fmt.Errorf("csv sink: write header to %s: %w", path, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == nil {
		s.open = make(map[string]*csvRun)
	}
	s.open[run.ID] = cr
	return nil
}

// WriteYear implements MetricsSink.
func (s *CSVSink) WriteYear(_ context.Context, run RunInfo, res simulation.Result) error {
	cr, err := s.lookup(run.ID)
	if err != nil {
		return err
	}
	row := []string{
		strconv.Itoa(res.Year),
		formatPercent(res.PercentOfOriginal),
		formatPercent(res.PercentInDanger),
	}
	if err := cr.cw.Write(row); err != nil {
		return fmt.Errorf("csv sink: write %s year %d: %w", run.FileLabel(), res.Year, err)
	}
	cr.cw.Flush()
	return cr.cw.Error()
}

// End implements MetricsSink. The run file is flushed and closed.
func (s *CSVSink) End(_ context.Context, sum Summary) error {
	cr, err := s.lookup(sum.Run.ID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.open, sum.Run.ID)
	s.mu.Unlock()

	cr.cw.Flush()
	if err := cr.cw.Error(); err != nil {
		cr.f.Close()
		return fmt.Errorf("csv sink: flush %s: %w", sum.Run.FileLabel(), err)
	}
	return cr.f.Close()
}

func (s *CSVSink) lookup(id string) (*csvRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cr, ok := s.open[id]
	if !ok {
		return nil, fmt.Errorf("csv sink: run %s was not begun", id)
	}
	return cr, nil
}

// formatPercent uses the shortest representation; NaN becomes "NaN".
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
