package grid

import (
	"errors"
	"fmt"

	"github.com/Faultbox/heightview/internal/terrain"
)

// Tile construction errors.
var (
	ErrInvalidOffset     = errors.New("grid offset outside the 3x3 neighborhood")
	ErrInvalidResolution = errors.New("tile resolution must be positive")
)

// Builder creates tiles for a viewport snapshot.
type Builder interface {
	Build(vp Viewport, gx, gy int, opacity float32) (*Tile, error)
}

// Factory builds tiles by sampling a height field.
type Factory struct {
	Field       *terrain.HeightField
	PlaneScale  float32 // render units per tile edge
	HeightScale float32
}

// Build samples the tile at offset (gx, gy) from the viewport anchor.
// The tile footprint in field units equals the current resolution.
func (f *Factory) Build(vp Viewport, gx, gy int, opacity float32) (*Tile, error) {
	if gx < -1 || gx > 1 || gy < -1 || gy > 1 {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrInvalidOffset, gx, gy)
	}

	res := vp.Resolution()
	if res <= 0 {
		return nil, fmt.Errorf("%w: %d at LOD %d", ErrInvalidResolution, res, vp.LOD)
	}

	rect := terrain.Rect{
		X: vp.Anchor.X + float64(gx*res),
		Y: vp.Anchor.Y + float64(gy*res),
	}

	id := RelID(gx, gy)
	return &Tile{
		ID:         id,
		Resolution: res,
		Heights:    terrain.SampleTile(f.Field, rect, res, f.HeightScale),
		Position:   SlotPosition(id, f.PlaneScale),
		Opacity:    opacity,
	}, nil
}
