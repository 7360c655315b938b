package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Faultbox/heightview/pkg/formats"
)

func TestReadJSON(t *testing.T) {
	hd, err := readJSON(strings.NewReader(`[[1, 2.5, null], [-4, 5, 6]]`))
	if err != nil {
		t.Fatalf("readJSON() error = %v", err)
	}
	if hd.Rows != 2 || hd.Cols != 3 {
		t.Fatalf("dims = %dx%d, want 2x3", hd.Rows, hd.Cols)
	}
	want := []float32{1, 2.5, 0, -4, 5, 6}
	for i, v := range want {
		if hd.Values[i] != v {
			t.Errorf("Values[%d] = %v, want %v", i, hd.Values[i], v)
		}
	}
}

func TestReadJSONRagged(t *testing.T) {
	_, err := readJSON(strings.NewReader(`[[1, 2], [3]]`))
	if !errors.Is(err, formats.ErrRaggedGrid) {
		t.Errorf("readJSON() error = %v, want ErrRaggedGrid", err)
	}
}

func TestReadJSONMalformed(t *testing.T) {
	if _, err := readJSON(strings.NewReader(`{"rows": 2}`)); err == nil {
		t.Error("readJSON() error = nil for an object")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := &formats.HeightData{Rows: 2, Cols: 2, Values: []float32{0.5, 1, -2, 3}}

	var buf bytes.Buffer
	if err := writeJSON(&buf, in); err != nil {
		t.Fatalf("writeJSON() error = %v", err)
	}
	out, err := readJSON(&buf)
	if err != nil {
		t.Fatalf("readJSON() error = %v", err)
	}
	if !bytes.Equal(out.Encode(), in.Encode()) {
		t.Errorf("round trip mismatch: got %v, want %v", out.Values, in.Values)
	}
}

func TestGenerate(t *testing.T) {
	o := defaultNoiseOptions()
	o.Rows, o.Cols = 40, 30
	o.Amplitude = 2

	hd, err := generate(o)
	if err != nil {
		t.Fatalf("generate() error = %v", err)
	}
	if hd.Rows != 40 || hd.Cols != 30 || len(hd.Values) != 1200 {
		t.Fatalf("dims = %dx%d (%d values)", hd.Rows, hd.Cols, len(hd.Values))
	}
	lo, hi := hd.Range()
	if lo < 0 || hi > 2 {
		t.Errorf("Range() = %v..%v, want within [0, 2]", lo, hi)
	}

	again, _ := generate(o)
	if !bytes.Equal(hd.Encode(), again.Encode()) {
		t.Error("same seed produced different terrain")
	}
}

func TestGenerateRejectsBadOptions(t *testing.T) {
	o := defaultNoiseOptions()
	o.Rows = 0
	if _, err := generate(o); !errors.Is(err, errBadNoiseOptions) {
		t.Errorf("generate() error = %v, want errBadNoiseOptions", err)
	}
}
