// Package grid implements the streaming tile neighborhood around a movable
// viewpoint: viewport state, tile construction and the tile cache.
package grid

import "fmt"

// Anchor is the viewpoint position in height-field coordinates.
type Anchor struct {
	X, Y float64
}

// String formats the anchor the way the location display shows it.
func (a Anchor) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", a.X, a.Y)
}

// Viewport is the anchor, current level of detail and field bounds.
// It is a value type: every mutation returns a new, clamped Viewport,
// so a copy is a consistent snapshot for tile building.
type Viewport struct {
	Anchor      Anchor
	LOD         int
	Resolutions []int   // samples per tile edge per LOD, ascending; shared, never mutated
	Width       float64 // field rows
	Height      float64 // field cols
}

// NewViewport creates a clamped viewport. resolutions must not be empty.
func NewViewport(resolutions []int, lod int, anchor Anchor, width, height float64) Viewport {
	v := Viewport{Resolutions: append([]int(nil), resolutions...)}
	return v.WithLOD(lod).WithBounds(width, height).WithAnchor(anchor)
}

// Resolution returns the tile resolution at the current LOD.
// It also equals the tile footprint in field units.
func (v Viewport) Resolution() int {
	if len(v.Resolutions) == 0 {
		return 0
	}
	return v.Resolutions[v.LOD]
}

// WithAnchor returns v with the anchor set and clamped to the field bounds.
func (v Viewport) WithAnchor(a Anchor) Viewport {
	v.Anchor = Anchor{
		X: clamp(a.X, 0, v.Width),
		Y: clamp(a.Y, 0, v.Height),
	}
	return v
}

// WithLOD returns v with the LOD index clamped to the resolution list.
func (v Viewport) WithLOD(lod int) Viewport {
	v.LOD = clampInt(lod, 0, len(v.Resolutions)-1)
	return v
}

// WithBounds returns v with new field bounds, re-clamping the anchor.
func (v Viewport) WithBounds(width, height float64) Viewport {
	v.Width = max(width, 0)
	v.Height = max(height, 0)
	return v.WithAnchor(v.Anchor)
}

// Panned moves the anchor by one tile footprint per unit of (dx, dy).
func (v Viewport) Panned(dx, dy int) Viewport {
	step := float64(v.Resolution())
	return v.WithAnchor(Anchor{
		X: v.Anchor.X + float64(dx)*step,
		Y: v.Anchor.Y + float64(dy)*step,
	})
}

// Zoomed steps the LOD by direction and recenters the anchor so the same
// field point stays in the middle of the neighborhood. The bool reports
// whether the LOD changed.
func (v Viewport) Zoomed(direction int) (Viewport, bool) {
	oldRes := v.Resolution()
	next := v.WithLOD(v.LOD + direction)
	shift := float64(oldRes-next.Resolution()) / 2
	next = next.WithAnchor(Anchor{X: v.Anchor.X + shift, Y: v.Anchor.Y + shift})
	return next, next.LOD != v.LOD
}

func clamp(x, lo, hi float64) float64 {
	// NaN collapses to the lower bound
	if !(x >= lo) {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clampInt(x, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(x, lo), hi)
}
