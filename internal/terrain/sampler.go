package terrain

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelThreshold is the tile resolution from which rows are sampled concurrently.
const ParallelThreshold = 256

// Rect is the origin of a tile's window into the height field.
type Rect struct {
	X, Y float64
}

// SampleTile samples a resolution x resolution window of the field starting
// at rect and returns the heights row-major, multiplied by heightScale.
// Cell (row, col) reads field.Sample(floor(rect.X+row), floor(rect.Y+col)).
func SampleTile(field *HeightField, rect Rect, resolution int, heightScale float32) []float32 {
	if resolution <= 0 {
		return []float32{}
	}

	out := make([]float32, resolution*resolution)

	if resolution < ParallelThreshold {
		sampleRows(field, rect, resolution, heightScale, out, 0, resolution)
		return out
	}

	// Each band writes a disjoint slice of out
	workers := runtime.GOMAXPROCS(0)
	band := (resolution + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < resolution; start += band {
		end := min(start+band, resolution)
		g.Go(func() error {
			sampleRows(field, rect, resolution, heightScale, out, start, end)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func sampleRows(field *HeightField, rect Rect, resolution int, heightScale float32, out []float32, from, to int) {
	for row := from; row < to; row++ {
		x := math.Floor(rect.X + float64(row))
		base := row * resolution
		for col := 0; col < resolution; col++ {
			y := math.Floor(rect.Y + float64(col))
			out[base+col] = field.Sample(x, y) * heightScale
		}
	}
}
