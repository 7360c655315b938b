package grid

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/heightview/internal/anim"
)

// RenderSurface owns scene membership of tile drawables.
// The cache calls Remove exactly once for every tile it Added.
type RenderSurface interface {
	Add(t *Tile)
	Remove(t *Tile)
}

// AnimationGateway accepts declarative tweens. Animate must return
// immediately and fire OnComplete exactly once, later.
type AnimationGateway interface {
	Animate(tw anim.Tween)
}

// LocationSink receives the anchor after every pan, zoom and reset.
type LocationSink interface {
	Display(x, y float64)
}

// ErrMissingCollaborator is returned by NewCache when a required dependency is nil.
var ErrMissingCollaborator = errors.New("missing cache collaborator")

// Options configures a Cache.
type Options struct {
	Viewport Viewport
	Builder  Builder
	Surface  RenderSurface
	Animator AnimationGateway
	Sink     LocationSink // optional

	DefaultAnchor Anchor // target of Reset
	DefaultLOD    int

	PlaneScale    float32
	CenterOpacity float32
	OtherOpacity  float32
	AwayDepth     float32 // how far below the plane tiles fade in from and out to
	Duration      time.Duration
	Ease          anim.Easing
	SingleChunk   bool // keep only the center tile

	Log *zap.Logger
}

// Cache owns the live tile neighborhood. Pans recycle tiles by re-tagging
// their relative ids; zoom and reset rebuild the neighborhood.
//
// A Cache is not safe for concurrent use. All operations, and the animation
// callbacks it registers, must run on one goroutine.
type Cache struct {
	opts Options
	log  *zap.Logger
	ids  []int

	vp       Viewport
	active   []*Tile
	evicting map[*Tile]struct{}
}

// NewCache creates an empty cache. Call Build to populate it.
func NewCache(opts Options) (*Cache, error) {
	switch {
	case opts.Builder == nil:
		return nil, fmt.Errorf("%w: builder", ErrMissingCollaborator)
	case opts.Surface == nil:
		return nil, fmt.Errorf("%w: render surface", ErrMissingCollaborator)
	case opts.Animator == nil:
		return nil, fmt.Errorf("%w: animation gateway", ErrMissingCollaborator)
	case len(opts.Viewport.Resolutions) == 0:
		return nil, fmt.Errorf("%w: tile resolutions", ErrMissingCollaborator)
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	ids := NeighborhoodIDs
	if opts.SingleChunk {
		ids = SingleIDs
	}

	return &Cache{
		opts:     opts,
		log:      opts.Log,
		ids:      ids,
		vp:       opts.Viewport,
		evicting: make(map[*Tile]struct{}),
	}, nil
}

// Build replaces the neighborhood with freshly sampled tiles at the current viewport.
func (c *Cache) Build() error {
	return c.rebuild(c.vp, "build")
}

// Pan shifts the viewpoint one tile footprint along (dx, dy). Components are
// clamped to [-1, 1]. Surviving tiles are re-tagged and slide to their new
// slot; tiles that leave the neighborhood fade out; the exposed row or
// column is built and fades in. If any new tile fails to build, nothing
// changes and the error is returned.
func (c *Cache) Pan(dx, dy int) error {
	dx, dy = clampInt(dx, -1, 1), clampInt(dy, -1, 1)
	if dx == 0 && dy == 0 {
		c.display()
		return nil
	}

	next := c.vp.Panned(dx, dy)

	type retag struct {
		tile         *Tile
		oldID, newID int
	}
	var keep, leave []retag
	taken := make(map[int]bool, len(c.ids))
	for _, t := range c.active {
		r := retag{tile: t, oldID: t.ID, newID: t.ID - dx - dy*10}
		if validID(c.ids, r.newID) && !taken[r.newID] {
			taken[r.newID] = true
			keep = append(keep, r)
		} else {
			leave = append(leave, r)
		}
	}

	var exposed []int
	for _, id := range c.ids {
		if !taken[id] {
			exposed = append(exposed, id)
		}
	}

	created, err := c.buildTiles(next, exposed)
	if err != nil {
		return fmt.Errorf("pan (%d, %d): %w", dx, dy, err)
	}

	// Commit
	c.vp = next

	c.active = c.active[:0]
	for _, r := range keep {
		t := r.tile
		t.ID = r.newID
		if r.oldID == CenterID {
			c.animate(t, anim.Opacity, c.opts.OtherOpacity, nil)
		}
		if r.newID == CenterID {
			c.animate(t, anim.Opacity, c.opts.CenterOpacity, nil)
		}
		// The slot of the new id is the old slot shifted by (-dy, 0, -dx) * planeScale
		slot := SlotPosition(t.ID, c.opts.PlaneScale)
		c.animate(t, anim.PositionX, slot.X, nil)
		c.animate(t, anim.PositionZ, slot.Z, nil)
		c.active = append(c.active, t)
	}

	evicted := make([]int, 0, len(leave))
	for _, r := range leave {
		r.tile.ID = r.newID
		evicted = append(evicted, r.oldID)
		c.evict(r.tile)
	}

	c.insert(created)

	c.log.Debug("pan",
		zap.Int("dx", dx),
		zap.Int("dy", dy),
		zap.Stringer("anchor", c.vp.Anchor),
		zap.Ints("evicted", evicted),
		zap.Ints("created", exposed),
	)

	c.display()
	return nil
}

// Zoom steps the level of detail by direction (clamped to [-1, 1]),
// recenters the anchor and rebuilds the neighborhood. At either end of the
// resolution list the zoom changes nothing.
func (c *Cache) Zoom(direction int) error {
	direction = clampInt(direction, -1, 1)
	next, changed := c.vp.Zoomed(direction)
	if !changed {
		c.log.Debug("zoom at limit", zap.Int("lod", c.vp.LOD), zap.Int("direction", direction))
		c.display()
		return nil
	}
	return c.rebuild(next, "zoom")
}

// Reset returns to the configured default anchor and LOD and rebuilds.
func (c *Cache) Reset() error {
	return c.ResetTo(c.opts.DefaultAnchor, c.opts.DefaultLOD)
}

// ResetTo moves to anchor at the given LOD (both clamped) and rebuilds.
func (c *Cache) ResetTo(anchor Anchor, lod int) error {
	return c.rebuild(c.vp.WithLOD(lod).WithAnchor(anchor), "reset")
}

// Close removes every tile, active or fading, from the render surface.
func (c *Cache) Close() {
	for _, t := range c.active {
		c.release(t)
	}
	c.active = nil
	for t := range c.evicting {
		c.release(t)
	}
}

// Viewport returns the current viewport snapshot.
func (c *Cache) Viewport() Viewport {
	return c.vp
}

// Tiles returns the active tiles ordered by id.
func (c *Cache) Tiles() []*Tile {
	tiles := slices.Clone(c.active)
	slices.SortFunc(tiles, func(a, b *Tile) int { return a.ID - b.ID })
	return tiles
}

// IDs returns the active relative ids in ascending order.
func (c *Cache) IDs() []int {
	ids := make([]int, len(c.active))
	for i, t := range c.active {
		ids[i] = t.ID
	}
	slices.Sort(ids)
	return ids
}

// Evicting returns the number of tiles still fading out.
func (c *Cache) Evicting() int {
	return len(c.evicting)
}

func (c *Cache) rebuild(next Viewport, reason string) error {
	created, err := c.buildTiles(next, c.ids)
	if err != nil {
		return fmt.Errorf("%s: %w", reason, err)
	}

	c.vp = next
	for _, t := range c.active {
		c.evict(t)
	}
	c.active = c.active[:0]
	c.insert(created)

	c.log.Debug(reason,
		zap.Stringer("anchor", c.vp.Anchor),
		zap.Int("lod", c.vp.LOD),
		zap.Int("resolution", c.vp.Resolution()),
		zap.Int("tiles", len(created)),
	)

	c.display()
	return nil
}

// buildTiles builds every id against one viewport snapshot. It has no side
// effects on the cache, so a failure leaves the neighborhood untouched.
func (c *Cache) buildTiles(vp Viewport, ids []int) ([]*Tile, error) {
	tiles := make([]*Tile, 0, len(ids))
	for _, id := range ids {
		gx, gy, ok := Offset(id)
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrInvalidOffset, id)
		}
		t, err := c.opts.Builder.Build(vp, gx, gy, 0)
		if err != nil {
			return nil, fmt.Errorf("building tile %d: %w", id, err)
		}
		if t.ID != id {
			return nil, fmt.Errorf("building tile %d: builder returned id %d", id, t.ID)
		}
		tiles = append(tiles, t)
	}
	return tiles, nil
}

// insert adds new tiles below their slot at opacity 0 and fades them in.
func (c *Cache) insert(tiles []*Tile) {
	for _, t := range tiles {
		slot := SlotPosition(t.ID, c.opts.PlaneScale)
		t.Position = slot
		t.Position.Y = -c.opts.AwayDepth
		t.Opacity = 0

		c.opts.Surface.Add(t)
		c.active = append(c.active, t)

		target := c.opts.OtherOpacity
		if t.ID == CenterID {
			target = c.opts.CenterOpacity
		}
		c.animate(t, anim.PositionY, slot.Y, nil)
		c.animate(t, anim.Opacity, target, nil)
	}
}

// evict sinks and fades a tile; its render handle is released when the fade completes.
func (c *Cache) evict(t *Tile) {
	c.evicting[t] = struct{}{}
	c.animate(t, anim.PositionY, -c.opts.AwayDepth, nil)
	c.animate(t, anim.Opacity, 0, func() { c.release(t) })
}

func (c *Cache) release(t *Tile) {
	if t.released {
		return
	}
	t.released = true
	delete(c.evicting, t)
	c.opts.Surface.Remove(t)
}

func (c *Cache) animate(t *Tile, p anim.Property, to float32, done func()) {
	c.opts.Animator.Animate(anim.Tween{
		Target:     t,
		Property:   p,
		To:         to,
		Duration:   c.opts.Duration,
		Ease:       c.opts.Ease,
		OnComplete: done,
	})
}

func (c *Cache) display() {
	if c.opts.Sink != nil {
		c.opts.Sink.Display(c.vp.Anchor.X, c.vp.Anchor.Y)
	}
}
