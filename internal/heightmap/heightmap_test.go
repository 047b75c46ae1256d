package heightmap

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/banshee-data/sealevel.report/internal/elevation"
	"github.com/banshee-data/sealevel.report/internal/fsutil"
	"github.com/banshee-data/sealevel.report/internal/testutil"
)

func gray16Image(rows [][]uint16) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, len(rows[0]), len(rows)))
	for y, row := range rows {
		for x, v := range row {
			img.SetGray16(x, y, color.Gray16{Y: v})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecode_Gray16PNG(t *testing.T) {
	data := encodePNG(t, gray16Image([][]uint16{
		{0, 2500, 65535},
		{3000, 2600, 10},
	}))

	g, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	testutil.AssertGrid(t, g, [][]float64{
		{0, 2500, 65535},
		{3000, 2600, 10},
	})
}

func TestDecode_Gray8PNG(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(0, 0, color.Gray{Y: 7})
	img.SetGray(1, 0, color.Gray{Y: 255})

	g, err := Decode(bytes.NewReader(encodePNG(t, img)))
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 255}, g.Row(0))
}

func TestDecode_ColourPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.White)

	g, err := Decode(bytes.NewReader(encodePNG(t, img)))
	require.NoError(t, err)
	assert.Equal(t, 65535.0, g.At(0, 0))
}

func TestDecode_TIFF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, gray16Image([][]uint16{{1, 2}, {3, 4}}), nil))

	g, err := Decode(&buf)
	require.NoError(t, err)
	testutil.AssertGrid(t, g, [][]float64{{1, 2}, {3, 4}})
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, err := Decode(strings.NewReader("definitely not an image"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat), "got %v", err)
}

func TestReadCSV(t *testing.T) {
	in := "# exported heightmap\n" +
		"0.000000000000000000e+00,2.500000000000000000e+03\n" +
		" 3000, 2600\n"

	g, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	testutil.AssertGrid(t, g, [][]float64{{0, 2500}, {3000, 2600}})
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"empty", "", elevation.ErrBadShape},
		{"ragged", "1,2\n3\n", elevation.ErrRagged},
		{"non-finite", "1,NaN\n", elevation.ErrNonFinite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}

	_, err := ReadCSV(strings.NewReader("1,abc\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1 column 2")
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	want := testutil.MustGrid(t, testutil.ExampleRows)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, want))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	testutil.AssertGrid(t, got, testutil.ExampleRows)
}

func TestLoad(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.Put("/maps/isle.png", encodePNG(t, gray16Image([][]uint16{{5, 6}})))
	mfs.Put("/maps/isle.csv", []byte("5,6\n"))
	mfs.Put("/maps/isle.jpg", []byte("x"))

	for _, path := range []string{"/maps/isle.png", "/maps/isle.csv"} {
		g, err := Load(mfs, path)
		require.NoError(t, err, path)
		assert.Equal(t, []float64{5, 6}, g.Row(0), path)
	}

	_, err := Load(mfs, "/maps/isle.jpg")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Load(mfs, "/maps/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}
