package elevation

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Grid is an immutable rows x cols field of elevations in meters.
// The zero value is not usable; construct grids with New or FromDense.
type Grid struct {
	m *mat.Dense
}

// New builds a grid from row-major data. Every row must have the same,
// non-zero length and every value must be finite.
func New(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("new grid %dx?: %w", len(rows), ErrBadShape)
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), c, ErrRagged)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("cell (%d,%d) = %v: %w", i, j, v, ErrNonFinite)
			}
		}
		data = append(data, row...)
	}
	return &Grid{m: mat.NewDense(len(rows), c, data)}, nil
}

// FromDense copies m into a new grid.
func FromDense(m mat.Matrix) (*Grid, error) {
	if m == nil {
		return nil, fmt.Errorf("nil matrix: %w", ErrBadShape)
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("new grid %dx%d: %w", r, c, ErrBadShape)
	}
	return &Grid{m: mat.DenseCopyOf(m)}, nil
}

// Dims returns the number of rows and columns.
func (g *Grid) Dims() (rows, cols int) { return g.m.Dims() }

// Cells returns rows*cols.
func (g *Grid) Cells() int {
	r, c := g.m.Dims()
	return r * c
}

// At returns the elevation of cell (i, j). It panics if the cell is out of range.
func (g *Grid) At(i, j int) float64 { return g.m.At(i, j) }

// Row returns a copy of row i.
func (g *Grid) Row(i int) []float64 {
	_, c := g.m.Dims()
	return mat.Row(make([]float64, c), i, g.m)
}

// Values returns a copy of the grid as row-major slices.
func (g *Grid) Values() [][]float64 {
	r, _ := g.m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = g.Row(i)
	}
	return out
}

// Equal reports whether g and o have the same shape and cell values.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	return mat.Equal(g.m, o.m)
}

// each visits every cell in row-major order.
func (g *Grid) each(fn func(v float64)) {
	raw := g.m.RawMatrix()
	for i := 0; i < raw.Rows; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		for _, v := range row {
			fn(v)
		}
	}
}

// Summary describes the elevation distribution of the land cells of a grid.
type Summary struct {
	Rows, Cols int
	LandCells  int
	MinMeters  float64
	MaxMeters  float64
	MeanMeters float64
	// MedianMeters is the empirical 0.5 quantile of land elevations.
	MedianMeters float64
}

// Summary reports land-cell elevation statistics. All height fields are zero
// when the grid has no land.
func (g *Grid) Summary() Summary {
	r, c := g.Dims()
	s := Summary{Rows: r, Cols: c}

	land := make([]float64, 0, g.Cells())
	g.each(func(v float64) {
		if v > 0 {
			land = append(land, v)
		}
	})
	s.LandCells = len(land)
	if len(land) == 0 {
		return s
	}

	sort.Float64s(land)
	s.MinMeters = floats.Min(land)
	s.MaxMeters = floats.Max(land)
	s.MeanMeters = stat.Mean(land, nil)
	s.MedianMeters = stat.Quantile(0.5, stat.Empirical, land, nil)
	return s
}
