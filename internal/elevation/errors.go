package elevation

import "errors"

var (
	// ErrBadShape is returned when a grid would have zero rows or columns.
	ErrBadShape = errors.New("elevation: invalid grid shape")

	// ErrRagged is returned when input rows differ in length.
	ErrRagged = errors.New("elevation: rows have different lengths")

	// ErrNonFinite is returned when a grid cell is NaN or Inf.
	ErrNonFinite = errors.New("elevation: non-finite cell value")

	// ErrBadCalibration is returned for a calibration that cannot map raw
	// intensities to heights (zero scale, NaN or Inf constants).
	ErrBadCalibration = errors.New("elevation: invalid calibration")
)
