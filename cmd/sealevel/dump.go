package main

import (
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/sealevel.report/internal/elevation"
	"github.com/banshee-data/sealevel.report/internal/fsutil"
	"github.com/banshee-data/sealevel.report/internal/heightmap"
	"github.com/banshee-data/sealevel.report/internal/scenario"
)

// dumpCommand writes a heightmap as CSV, calibrated either with an island
// preset, explicit -scale/-offset, or not at all.
func dumpCommand(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("dump", stderr)
	island := fs.String("island", "", "Calibrate with this preset island")
	scale := fs.Float64("scale", 0, "Meters per raw unit (overrides -island)")
	offset := fs.Float64("offset", 0, "Meters added after scaling (with -scale)")
	outPath := fs.String("o", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: sealevel dump [-island name | -scale s -offset o] [-o out.csv] <heightmap>")
	}

	grid, err := heightmap.Load(fsutil.OSFileSystem{}, fs.Arg(0))
	if err != nil {
		return err
	}

	var cal *elevation.Calibration
	switch {
	case *scale != 0:
		cal = &elevation.Calibration{Scale: *scale, Offset: *offset}
	case *island != "":
		is, ok := scenario.LookupIsland(*island)
		if !ok {
			return fmt.Errorf("unknown island %q", *island)
		}
		cal = &is.Calibration
	}
	if cal != nil {
		if err := cal.Validate(); err != nil {
			return err
		}
		grid = elevation.Calibrate(grid, *cal)
	}

	if *outPath == "" {
		return heightmap.WriteCSV(stdout, grid)
	}
	f, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", *outPath, err)
	}
	if err := heightmap.WriteCSV(f, grid); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
