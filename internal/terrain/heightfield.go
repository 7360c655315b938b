// Package terrain provides the height field, tile sampling and tile mesh building.
package terrain

import (
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/heightview/pkg/formats"
)

// ErrInvalidDimensions is returned when a field's size does not match its samples.
var ErrInvalidDimensions = errors.New("invalid height field dimensions")

// HeightField is an immutable rows x cols grid of elevation samples.
// It is safe for concurrent reads.
type HeightField struct {
	rows   int
	cols   int
	values []float32 // row-major
}

// NewHeightField creates a field from row-major values.
// The values slice is owned by the field afterwards.
func NewHeightField(rows, cols int, values []float32) (*HeightField, error) {
	if rows < 0 || cols < 0 || len(values) != rows*cols {
		return nil, fmt.Errorf("%w: %dx%d with %d values", ErrInvalidDimensions, rows, cols, len(values))
	}
	return &HeightField{rows: rows, cols: cols, values: values}, nil
}

// FromGrid creates a field from a nested row-major array.
func FromGrid(grid [][]float32) (*HeightField, error) {
	hd, err := formats.HeightDataFromGrid(grid)
	if err != nil {
		return nil, err
	}
	return fromHeightData(hd), nil
}

// EmptyField returns a 0x0 field; every sample is 0.
func EmptyField() *HeightField {
	return &HeightField{}
}

// LoadHeightField decodes the binary height data format.
// Malformed input yields a *formats.FormatError.
func LoadHeightField(data []byte) (*HeightField, error) {
	hd, err := formats.ParseHeightData(data)
	if err != nil {
		return nil, err
	}
	return fromHeightData(hd), nil
}

func fromHeightData(hd *formats.HeightData) *HeightField {
	return &HeightField{
		rows:   int(hd.Rows),
		cols:   int(hd.Cols),
		values: hd.Values,
	}
}

// Rows returns the number of rows (the x extent).
func (f *HeightField) Rows() int {
	if f == nil {
		return 0
	}
	return f.rows
}

// Cols returns the number of columns (the y extent).
func (f *HeightField) Cols() int {
	if f == nil {
		return 0
	}
	return f.cols
}

// At returns the sample at integer lattice coordinates, or 0 when out of range.
func (f *HeightField) At(row, col int) float32 {
	if f == nil || row < 0 || col < 0 || row >= f.rows || col >= f.cols {
		return 0
	}
	return f.values[row*f.cols+col]
}

// Sample returns the elevation at (x, y), truncating both coordinates to the
// lattice. Coordinates outside [0,rows) x [0,cols), NaN and infinities sample as 0.
func (f *HeightField) Sample(x, y float64) float32 {
	if f == nil {
		return 0
	}
	fx := math.Floor(x)
	fy := math.Floor(y)
	// Range check in float space: NaN fails every comparison
	if !(fx >= 0 && fx < float64(f.rows)) || !(fy >= 0 && fy < float64(f.cols)) {
		return 0
	}
	return f.values[int(fx)*f.cols+int(fy)]
}

// Range returns the minimum and maximum sample.
func (f *HeightField) Range() (min, max float32) {
	if f == nil {
		return 0, 0
	}
	hd := formats.HeightData{Rows: uint32(f.rows), Cols: uint32(f.cols), Values: f.values}
	return hd.Range()
}

// Encode serializes the field into the binary height data format.
func (f *HeightField) Encode() []byte {
	hd := formats.HeightData{Rows: uint32(f.Rows()), Cols: uint32(f.Cols())}
	if f != nil {
		hd.Values = f.values
	}
	return hd.Encode()
}
