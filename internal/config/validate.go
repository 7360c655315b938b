package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/heightview/internal/anim"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate reports every setting that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
	}

	t := c.Terrain
	if len(t.TileResolutions) == 0 {
		fail("terrain.tile_resolutions is empty")
	}
	for i, r := range t.TileResolutions {
		if r <= 0 {
			fail("terrain.tile_resolutions[%d] = %d, must be positive", i, r)
		}
		if i > 0 && r <= t.TileResolutions[i-1] {
			fail("terrain.tile_resolutions must be ascending at index %d", i)
		}
	}
	if t.DefaultLODIndex < 0 || t.DefaultLODIndex >= len(t.TileResolutions) {
		fail("terrain.default_lod_index %d out of range", t.DefaultLODIndex)
	}
	if t.PlaneScale <= 0 {
		fail("terrain.plane_scale must be positive")
	}
	for name, v := range map[string]float32{"center": t.Opacity.Center, "other": t.Opacity.Other} {
		if v < 0 || v > 1 {
			fail("terrain.opacity.%s = %v, must be in [0, 1]", name, v)
		}
	}
	if t.AnimationDuration < 0 {
		fail("terrain.animation_duration is negative")
	}
	if _, err := anim.EasingByName(t.Easing); err != nil {
		fail("terrain.easing: %v", err)
	}

	if c.Data.FetchRetries < 0 {
		fail("data.fetch_retries is negative")
	}
	if c.Data.FetchTimeout < 0 || c.Data.FetchBackoff < 0 {
		fail("data fetch durations must not be negative")
	}
	if c.Input.Cooldown < 0 {
		fail("input.cooldown is negative")
	}
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		fail("graphics size %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	if c.Graphics.MSAASamples < 0 {
		fail("graphics.msaa_samples is negative")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		fail("logging.format %q", c.Logging.Format)
	}

	return errors.Join(errs...)
}
