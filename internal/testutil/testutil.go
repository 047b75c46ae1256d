// Package testutil provides shared test utilities and fixtures.
//
// This package centralises grid fixtures and comparison helpers so the
// elevation, simulation and report tests agree on tolerances.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/banshee-data/sealevel.report/internal/elevation"
)

// Tolerance is the absolute difference below which two heights or
// percentages are considered equal.
const Tolerance = 1e-9

// ApproxOpts compares floats within Tolerance and treats NaN as equal to NaN.
var ApproxOpts = cmp.Options{
	cmpopts.EquateApprox(0, Tolerance),
	cmpopts.EquateNaNs(),
}

// ExampleRows is the 3x3 worked example grid: five land cells, two of them
// at exactly 1 m.
var ExampleRows = [][]float64{
	{1, 0, 2},
	{3, 0, 0},
	{0, 5, 1},
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// MustGrid builds a grid from rows or fails the test.
func MustGrid(t testing.TB, rows [][]float64) *elevation.Grid {
	t.Helper()
	g, err := elevation.New(rows)
	if err != nil {
		t.Fatalf("elevation.New: %v", err)
	}
	return g
}

// UniformGrid builds a rows x cols grid with every cell set to v.
func UniformGrid(t testing.TB, rows, cols int, v float64) *elevation.Grid {
	t.Helper()
	data := make([][]float64, rows)
	for i := range data {
		data[i] = make([]float64, cols)
		for j := range data[i] {
			data[i][j] = v
		}
	}
	return MustGrid(t, data)
}

// RampGrid builds a 1 x n grid with heights step, 2*step, ..., n*step.
func RampGrid(t testing.TB, n int, step float64) *elevation.Grid {
	t.Helper()
	row := make([]float64, n)
	for i := range row {
		row[i] = float64(i+1) * step
	}
	return MustGrid(t, [][]float64{row})
}

// AssertGrid fails the test when g differs from want beyond Tolerance.
func AssertGrid(t testing.TB, g *elevation.Grid, want [][]float64) {
	t.Helper()
	if diff := cmp.Diff(want, g.Values(), ApproxOpts); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}
