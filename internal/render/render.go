// Package render draws elevation grids and submersion time series.
//
// Visualisers write through fsutil.FileSystem so they can be exercised in
// memory. Nothing here feeds back into a simulation: a failed render is an
// error for the caller to report.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/banshee-data/sealevel.report/internal/elevation"
	"github.com/banshee-data/sealevel.report/internal/fsutil"
)

// Visualizer renders one snapshot of an island. fileLabel names the output
// (without extension) and title is the human readable caption.
type Visualizer interface {
	Render(ctx context.Context, g *elevation.Grid, fileLabel, title string) error
}

// Multi renders with every visualiser in turn and joins their errors.
type Multi []Visualizer

// Render implements Visualizer.
func (m Multi) Render(ctx context.Context, g *elevation.Grid, fileLabel, title string) error {
	var errs []error
	for _, v := range m {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := v.Render(ctx, g, fileLabel, title); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards every snapshot.
type Nop struct{}

// Render implements Visualizer.
func (Nop) Render(context.Context, *elevation.Grid, string, string) error { return nil }

// writeOutput creates dir/name on fsys and streams wt into it.
func writeOutput(fsys fsutil.FileSystem, dir, name string, wt io.WriterTo) (err error) {
	w, path, err := fsutil.CreateIn(fsys, dir, name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
