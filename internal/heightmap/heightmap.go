// Package heightmap turns grayscale heightmap files into raw elevation
// grids. Values are raw intensities; callers calibrate them to meters with
// elevation.Calibrate.
package heightmap

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png" // register PNG decoder
	"io"
	"path/filepath"
	"strconv"
	"strings"

	_ "golang.org/x/image/tiff" // register TIFF decoder

	"github.com/banshee-data/sealevel.report/internal/elevation"
	"github.com/banshee-data/sealevel.report/internal/fsutil"
)

// ErrUnsupportedFormat is returned for files that are neither a decodable
// image nor a CSV grid.
var ErrUnsupportedFormat = errors.New("heightmap: unsupported format")

// Decode reads a PNG or TIFF image. 8-bit gray images yield 0..255 and
// 16-bit gray images 0..65535; colour images are reduced to 16-bit luminance.
func Decode(r io.Reader) (*elevation.Grid, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%v: %w", err, ErrUnsupportedFormat)
		}
		return nil, fmt.Errorf("failed to decode heightmap: %w", err)
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty %s image: %w", format, elevation.ErrBadShape)
	}

	rows := make([][]float64, b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := make([]float64, b.Dx())
		for x := b.Min.X; x < b.Max.X; x++ {
			row[x-b.Min.X] = intensity(img, x, y)
		}
		rows[y-b.Min.Y] = row
	}
	return elevation.New(rows)
}

func intensity(img image.Image, x, y int) float64 {
	switch m := img.(type) {
	case *image.Gray:
		return float64(m.GrayAt(x, y).Y)
	case *image.Gray16:
		return float64(m.Gray16At(x, y).Y)
	default:
		return float64(color.Gray16Model.Convert(img.At(x, y)).(color.Gray16).Y)
	}
}

// ReadCSV parses a comma separated grid, one row per line. Lines starting
// with '#' are ignored.
func ReadCSV(r io.Reader) (*elevation.Grid, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.Comment = '#'
	cr.FieldsPerRecord = -1 // ragged rows are reported by elevation.New
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var rows [][]float64
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv grid: %w", err)
		}
		row := make([]float64, len(rec))
		for i, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", line, i+1, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return elevation.New(rows)
}

// WriteCSV writes the grid in the format ReadCSV accepts.
func WriteCSV(w io.Writer, g *elevation.Grid) error {
	cw := csv.NewWriter(w)
	rows, cols := g.Dims()
	rec := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			rec[j] = strconv.FormatFloat(g.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Load opens path on fsys and decodes it according to its extension.
func Load(fsys fsutil.FileSystem, path string) (*elevation.Grid, error) {
	var decode func(io.Reader) (*elevation.Grid, error)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png", ".tif", ".tiff":
		decode = Decode
	case ".csv", ".txt":
		decode = ReadCSV
	default:
		return nil, fmt.Errorf("%s: extension %q: %w", path, ext, ErrUnsupportedFormat)
	}

	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open heightmap: %w", err)
	}
	defer f.Close()

	g, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
