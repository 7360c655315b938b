package grid

import (
	"slices"

	"github.com/Faultbox/heightview/internal/anim"
	"github.com/Faultbox/heightview/pkg/math"
)

// CenterID is the relative id of the tile under the viewpoint.
const CenterID = 11

var (
	// NeighborhoodIDs are the relative ids of a 3x3 neighborhood.
	NeighborhoodIDs = []int{0, 1, 2, 10, 11, 12, 20, 21, 22}

	// SingleIDs is the id set in single-chunk mode.
	SingleIDs = []int{CenterID}
)

// RelID encodes a grid offset (gx, gy in {-1,0,1}) as a relative id.
func RelID(gx, gy int) int {
	return (gy+1)*10 + (gx + 1)
}

// Offset decodes a relative id. ok is false for ids outside the 3x3 set.
func Offset(id int) (gx, gy int, ok bool) {
	if id < 0 || id > 22 {
		return 0, 0, false
	}
	col, row := id%10, id/10
	if col > 2 {
		return 0, 0, false
	}
	return col - 1, row - 1, true
}

// SlotPosition is the settled render-space position of a tile id.
func SlotPosition(id int, planeScale float32) math.Vec3 {
	gx, gy, _ := Offset(id)
	return math.Vec3{X: float32(gy) * planeScale, Y: 0, Z: float32(gx) * planeScale}
}

// Tile is one terrain patch of the neighborhood.
type Tile struct {
	ID         int
	Resolution int
	Heights    []float32 // Resolution x Resolution, row-major, scaled; owned by the tile
	Position   math.Vec3
	Opacity    float32

	released bool
}

// Property implements anim.Target.
func (t *Tile) Property(p anim.Property) float32 {
	switch p {
	case anim.Opacity:
		return t.Opacity
	case anim.PositionX:
		return t.Position.X
	case anim.PositionY:
		return t.Position.Y
	case anim.PositionZ:
		return t.Position.Z
	}
	return 0
}

// SetProperty implements anim.Target.
func (t *Tile) SetProperty(p anim.Property, v float32) {
	switch p {
	case anim.Opacity:
		t.Opacity = v
	case anim.PositionX:
		t.Position.X = v
	case anim.PositionY:
		t.Position.Y = v
	case anim.PositionZ:
		t.Position.Z = v
	}
}

// Released reports whether the tile's render handle has been removed.
func (t *Tile) Released() bool {
	return t.released
}

func validID(ids []int, id int) bool {
	return slices.Contains(ids, id)
}
