package viewer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/heightview/internal/anim"
	"github.com/Faultbox/heightview/internal/config"
	"github.com/Faultbox/heightview/internal/grid"
	"github.com/Faultbox/heightview/internal/terrain"
)

// NewCache builds a tile cache over field from the terrain settings and
// populates the initial neighborhood.
func NewCache(cfg config.TerrainConfig, field *terrain.HeightField, surface grid.RenderSurface,
	animator grid.AnimationGateway, sink grid.LocationSink, log *zap.Logger) (*grid.Cache, error) {
	ease, err := anim.EasingByName(cfg.Easing)
	if err != nil {
		return nil, err
	}

	anchor := grid.Anchor{X: cfg.DefaultAnchor.X, Y: cfg.DefaultAnchor.Y}
	vp := grid.NewViewport(cfg.TileResolutions, cfg.DefaultLODIndex, anchor,
		float64(field.Rows()), float64(field.Cols()))

	cache, err := grid.NewCache(grid.Options{
		Viewport: vp,
		Builder: &grid.Factory{
			Field:       field,
			PlaneScale:  cfg.PlaneScale,
			HeightScale: cfg.HeightScale,
		},
		Surface:       surface,
		Animator:      animator,
		Sink:          sink,
		DefaultAnchor: anchor,
		DefaultLOD:    cfg.DefaultLODIndex,
		PlaneScale:    cfg.PlaneScale,
		CenterOpacity: cfg.Opacity.Center,
		OtherOpacity:  cfg.Opacity.Other,
		AwayDepth:     cfg.AwayDepth,
		Duration:      cfg.AnimationDuration,
		Ease:          ease,
		SingleChunk:   cfg.SingleChunk,
		Log:           log,
	})
	if err != nil {
		return nil, err
	}
	if err := cache.Build(); err != nil {
		return nil, fmt.Errorf("initial build: %w", err)
	}
	return cache, nil
}
