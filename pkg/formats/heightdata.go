// Package formats provides the binary codec for height-field data files.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// HeaderSize is the size of the rows/cols header in bytes.
const HeaderSize = 8

// Height data errors.
var (
	ErrTruncatedHeightData = errors.New("truncated height data")
	ErrRaggedGrid          = errors.New("grid rows have different lengths")
)

// FormatError reports a malformed height data buffer.
type FormatError struct {
	Rows     uint32
	Cols     uint32
	Expected uint64 // bytes required by the header (or HeaderSize when the header itself is short)
	Actual   int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %dx%d needs %d bytes, got %d",
		ErrTruncatedHeightData, e.Rows, e.Cols, e.Expected, e.Actual)
}

// Is lets errors.Is match ErrTruncatedHeightData.
func (e *FormatError) Is(target error) bool {
	return target == ErrTruncatedHeightData
}

// HeightData is a decoded height-field file.
//
// Layout (little endian):
//
//	offset 0: uint32 rows
//	offset 4: uint32 cols
//	offset 8: rows*cols float32, row-major
type HeightData struct {
	Rows   uint32
	Cols   uint32
	Values []float32
}

// At returns the value at (row, col). Out-of-range coordinates return 0.
func (h *HeightData) At(row, col int) float32 {
	if row < 0 || col < 0 || row >= int(h.Rows) || col >= int(h.Cols) {
		return 0
	}
	return h.Values[row*int(h.Cols)+col]
}

// Size returns the encoded size in bytes.
func (h *HeightData) Size() int {
	return HeaderSize + len(h.Values)*4
}

// ParseHeightData decodes a height data buffer.
// Trailing bytes after the declared samples are ignored.
func ParseHeightData(data []byte) (*HeightData, error) {
	if len(data) < HeaderSize {
		return nil, &FormatError{Expected: HeaderSize, Actual: len(data)}
	}

	rows := binary.LittleEndian.Uint32(data[0:4])
	cols := binary.LittleEndian.Uint32(data[4:8])

	expected := uint64(HeaderSize) + uint64(rows)*uint64(cols)*4
	if uint64(len(data)) < expected {
		return nil, &FormatError{Rows: rows, Cols: cols, Expected: expected, Actual: len(data)}
	}

	count := int(rows) * int(cols)
	hd := &HeightData{
		Rows:   rows,
		Cols:   cols,
		Values: make([]float32, count),
	}

	// Decode bits directly so NaN payloads survive the round trip
	body := data[HeaderSize:]
	for i := range count {
		hd.Values[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[i*4:]))
	}

	return hd, nil
}

// ParseHeightDataFile decodes a height data file from disk.
func ParseHeightDataFile(path string) (*HeightData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading height data file: %w", err)
	}
	return ParseHeightData(data)
}

// Encode serializes the height data into the binary layout.
func (h *HeightData) Encode() []byte {
	buf := make([]byte, h.Size())
	binary.LittleEndian.PutUint32(buf[0:4], h.Rows)
	binary.LittleEndian.PutUint32(buf[4:8], h.Cols)
	for i, v := range h.Values {
		binary.LittleEndian.PutUint32(buf[HeaderSize+i*4:], math.Float32bits(v))
	}
	return buf
}

// WriteTo writes the encoded height data to w.
func (h *HeightData) WriteTo(w io.Writer) (int64, error) {
	n, err := io.Copy(w, bytes.NewReader(h.Encode()))
	if err != nil {
		return n, fmt.Errorf("writing height data: %w", err)
	}
	return n, nil
}

// WriteFile encodes the height data to a file.
func (h *HeightData) WriteFile(path string) error {
	if err := os.WriteFile(path, h.Encode(), 0644); err != nil {
		return fmt.Errorf("writing height data file: %w", err)
	}
	return nil
}

// Grid returns the values as a nested row-major array.
func (h *HeightData) Grid() [][]float32 {
	grid := make([][]float32, h.Rows)
	cols := int(h.Cols)
	for i := range grid {
		row := make([]float32, cols)
		copy(row, h.Values[i*cols:(i+1)*cols])
		grid[i] = row
	}
	return grid
}

// HeightDataFromGrid builds height data from a nested row-major array.
// The column count is taken from the first row.
func HeightDataFromGrid(grid [][]float32) (*HeightData, error) {
	if len(grid) == 0 {
		return &HeightData{}, nil
	}

	cols := len(grid[0])
	hd := &HeightData{
		Rows:   uint32(len(grid)),
		Cols:   uint32(cols),
		Values: make([]float32, 0, len(grid)*cols),
	}
	for i, row := range grid {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrRaggedGrid, i, len(row), cols)
		}
		hd.Values = append(hd.Values, row...)
	}

	return hd, nil
}

// Range returns the minimum and maximum value, ignoring NaNs.
func (h *HeightData) Range() (min, max float32) {
	first := true
	for _, v := range h.Values {
		if v != v {
			continue
		}
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
