package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"
)

// createTestHeightData builds a raw buffer with the given header and values.
func createTestHeightData(rows, cols uint32, values []float32) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, rows)
	binary.Write(buf, binary.LittleEndian, cols)
	for _, v := range values {
		binary.Write(buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func TestParseHeightData_ValidFile(t *testing.T) {
	data := createTestHeightData(2, 3, []float32{0, 1, 2, 10, 11, 12})

	hd, err := ParseHeightData(data)
	if err != nil {
		t.Fatalf("ParseHeightData failed: %v", err)
	}

	if hd.Rows != 2 || hd.Cols != 3 {
		t.Errorf("expected 2x3, got %dx%d", hd.Rows, hd.Cols)
	}
	if len(hd.Values) != 6 {
		t.Fatalf("expected 6 values, got %d", len(hd.Values))
	}

	// row i, col j lives at offset 8 + (i*cols+j)*4
	if got := hd.At(1, 2); got != 12 {
		t.Errorf("At(1, 2) = %v, expected 12", got)
	}
	if got := hd.At(0, 1); got != 1 {
		t.Errorf("At(0, 1) = %v, expected 1", got)
	}
	if got := hd.At(2, 0); got != 0 {
		t.Errorf("At(2, 0) out of range = %v, expected 0", got)
	}
}

func TestParseHeightData_TruncatedHeader(t *testing.T) {
	_, err := ParseHeightData([]byte{1, 0, 0})
	if err == nil {
		t.Fatal("expected error for truncated header")
	}
	if !errors.Is(err, ErrTruncatedHeightData) {
		t.Errorf("expected ErrTruncatedHeightData, got %v", err)
	}
}

func TestParseHeightData_TruncatedBody(t *testing.T) {
	data := createTestHeightData(4, 4, []float32{1, 2, 3})

	_, err := ParseHeightData(data)
	if err == nil {
		t.Fatal("expected error for truncated body")
	}

	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError, got %T", err)
	}
	if fe.Expected != 8+4*4*4 {
		t.Errorf("expected %d required bytes, got %d", 8+4*4*4, fe.Expected)
	}
	if fe.Actual != len(data) {
		t.Errorf("expected actual %d, got %d", len(data), fe.Actual)
	}
	if !errors.Is(err, ErrTruncatedHeightData) {
		t.Error("FormatError should match ErrTruncatedHeightData")
	}
}

func TestParseHeightData_HugeHeader(t *testing.T) {
	// Declared size overflows 32 bits; must be reported, not allocated
	data := createTestHeightData(0xFFFFFFFF, 0xFFFFFFFF, nil)
	if _, err := ParseHeightData(data); !errors.Is(err, ErrTruncatedHeightData) {
		t.Errorf("expected ErrTruncatedHeightData, got %v", err)
	}
}

func TestParseHeightData_Empty(t *testing.T) {
	hd, err := ParseHeightData(createTestHeightData(0, 0, nil))
	if err != nil {
		t.Fatalf("ParseHeightData failed: %v", err)
	}
	if hd.Rows != 0 || hd.Cols != 0 || len(hd.Values) != 0 {
		t.Errorf("expected empty data, got %+v", hd)
	}
}

func TestHeightData_RoundTripBitExact(t *testing.T) {
	nan := math.Float32frombits(0x7fc00123)
	values := []float32{
		0, -0.0, 1.5, -273.15,
		math.MaxFloat32, math.SmallestNonzeroFloat32,
		float32(math.Inf(1)), float32(math.Inf(-1)), nan,
	}
	hd := &HeightData{Rows: 3, Cols: 3, Values: values}

	decoded, err := ParseHeightData(hd.Encode())
	if err != nil {
		t.Fatalf("ParseHeightData failed: %v", err)
	}

	for i := range values {
		want := math.Float32bits(values[i])
		got := math.Float32bits(decoded.Values[i])
		if got != want {
			t.Errorf("value %d: bits %#x, expected %#x", i, got, want)
		}
	}
}

func TestHeightData_EncodeLayout(t *testing.T) {
	hd := &HeightData{Rows: 1, Cols: 2, Values: []float32{1, 2}}
	got := hd.Encode()
	want := createTestHeightData(1, 2, []float32{1, 2})
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = %v, expected %v", got, want)
	}
	if hd.Size() != 16 {
		t.Errorf("Size() = %d, expected 16", hd.Size())
	}
}

func TestHeightDataFromGrid(t *testing.T) {
	grid := [][]float32{{1, 2, 3}, {4, 5, 6}}

	hd, err := HeightDataFromGrid(grid)
	if err != nil {
		t.Fatalf("HeightDataFromGrid failed: %v", err)
	}
	if hd.Rows != 2 || hd.Cols != 3 {
		t.Errorf("expected 2x3, got %dx%d", hd.Rows, hd.Cols)
	}

	back := hd.Grid()
	for i := range grid {
		for j := range grid[i] {
			if back[i][j] != grid[i][j] {
				t.Errorf("Grid()[%d][%d] = %v, expected %v", i, j, back[i][j], grid[i][j])
			}
		}
	}
}

func TestHeightDataFromGrid_Ragged(t *testing.T) {
	_, err := HeightDataFromGrid([][]float32{{1, 2}, {3}})
	if !errors.Is(err, ErrRaggedGrid) {
		t.Errorf("expected ErrRaggedGrid, got %v", err)
	}
}

func TestHeightData_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "height.bin")
	hd := &HeightData{Rows: 2, Cols: 2, Values: []float32{1, 2, 3, 4}}

	if err := hd.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	loaded, err := ParseHeightDataFile(path)
	if err != nil {
		t.Fatalf("ParseHeightDataFile failed: %v", err)
	}
	if loaded.At(1, 1) != 4 {
		t.Errorf("At(1, 1) = %v, expected 4", loaded.At(1, 1))
	}
}

func TestParseHeightDataFile_Missing(t *testing.T) {
	if _, err := ParseHeightDataFile("/nonexistent/height.bin"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHeightData_Range(t *testing.T) {
	hd := &HeightData{Rows: 1, Cols: 4, Values: []float32{float32(math.NaN()), 3, -2, 7}}
	min, max := hd.Range()
	if min != -2 || max != 7 {
		t.Errorf("Range() = (%v, %v), expected (-2, 7)", min, max)
	}
}
