package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/Faultbox/heightview/pkg/formats"
)

// readJSON decodes a nested row-major array of numbers. null entries become 0.
func readJSON(r io.Reader) (*formats.HeightData, error) {
	var raw [][]*float64
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding JSON grid: %w", err)
	}

	grid := make([][]float32, len(raw))
	for i, row := range raw {
		grid[i] = make([]float32, len(row))
		for j, v := range row {
			if v != nil {
				grid[i][j] = float32(*v)
			}
		}
	}
	return formats.HeightDataFromGrid(grid)
}

// writeJSON encodes the data as a nested row-major array, one row per line.
func writeJSON(w io.Writer, hd *formats.HeightData) error {
	if _, err := io.WriteString(w, "[\n"); err != nil {
		return err
	}
	for i, row := range hd.Grid() {
		// JSON has no NaN or infinities
		vals := make([]any, len(row))
		for j, v := range row {
			if isFinite(float64(v)) {
				vals[j] = v
			}
		}
		line, err := json.Marshal(vals)
		if err != nil {
			return err
		}
		if i < int(hd.Rows)-1 {
			line = append(line, ',')
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]\n")
	return err
}

type noiseOptions struct {
	Rows, Cols  int
	Seed        int64
	Octaves     int
	Frequency   float64
	Persistence float64
	Amplitude   float64
}

func defaultNoiseOptions() noiseOptions {
	return noiseOptions{
		Rows:        1000,
		Cols:        1000,
		Seed:        1,
		Octaves:     5,
		Frequency:   0.005,
		Persistence: 0.5,
		Amplitude:   1,
	}
}

var errBadNoiseOptions = errors.New("invalid noise options")

// generate fills a rows x cols field with fractal simplex noise in [0, Amplitude].
func generate(o noiseOptions) (*formats.HeightData, error) {
	if o.Rows <= 0 || o.Cols <= 0 || o.Octaves <= 0 || o.Frequency <= 0 {
		return nil, fmt.Errorf("%w: %+v", errBadNoiseOptions, o)
	}

	noise := opensimplex.NewNormalized(o.Seed)
	hd := &formats.HeightData{
		Rows:   uint32(o.Rows),
		Cols:   uint32(o.Cols),
		Values: make([]float32, o.Rows*o.Cols),
	}
	for r := 0; r < o.Rows; r++ {
		for c := 0; c < o.Cols; c++ {
			v := octaveNoise(noise, float64(r), float64(c), o.Octaves, o.Frequency, o.Persistence)
			hd.Values[r*o.Cols+c] = float32(v * o.Amplitude)
		}
	}
	return hd, nil
}

// octaveNoise layers octaves of doubling frequency. A normalized source
// keeps the weighted average in [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
