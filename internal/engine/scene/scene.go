// Package scene draws the terrain tile neighborhood with OpenGL.
package scene

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/heightview/internal/engine/camera"
	"github.com/Faultbox/heightview/pkg/math"
)

// Config contains scene configuration options.
type Config struct {
	Width      int32
	Height     int32
	PlaneScale float32
	ClearColor [3]float32
	Light      Light
}

// DefaultConfig returns a gray surface under a white light from (0, 1, 1).
func DefaultConfig() Config {
	return Config{
		Width:      1280,
		Height:     720,
		PlaneScale: 10,
		ClearColor: [3]float32{0, 0, 0},
		Light: Light{
			Direction: [3]float32{0, 1, 1},
			Color:     [3]float32{0.5, 0.5, 0.5},
			Ambient:   [3]float32{0.15, 0.15, 0.15},
		},
	}
}

// Scene owns GL state and the tile renderer.
type Scene struct {
	config Config
	log    *zap.Logger

	Tiles *TileRenderer
}

// New initializes OpenGL and creates the scene. Call after the GL context exists.
func New(cfg Config, log *zap.Logger) (*Scene, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.MULTISAMPLE)
	gl.Disable(gl.CULL_FACE)
	gl.ClearColor(cfg.ClearColor[0], cfg.ClearColor[1], cfg.ClearColor[2], 1)

	tiles, err := NewTileRenderer(cfg.PlaneScale, log.Named("tiles"))
	if err != nil {
		return nil, err
	}

	s := &Scene{config: cfg, log: log, Tiles: tiles}
	s.Resize(cfg.Width, cfg.Height)
	return s, nil
}

// Resize handles window resize.
func (s *Scene) Resize(width, height int32) {
	s.config.Width = width
	s.config.Height = height
	gl.Viewport(0, 0, width, height)
	s.log.Debug("scene resized", zap.Int32("width", width), zap.Int32("height", height))
}

// Aspect returns the viewport aspect ratio.
func (s *Scene) Aspect() float32 {
	if s.config.Height == 0 {
		return 1
	}
	return float32(s.config.Width) / float32(s.config.Height)
}

// Render clears the frame and draws all tiles from the camera.
func (s *Scene) Render(cam *camera.OrbitCamera) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	s.RenderWithView(cam.ViewProjection(s.Aspect()), cam.Position())
}

// RenderWithView draws all tiles with an explicit view-projection.
func (s *Scene) RenderWithView(viewProj math.Mat4, eye math.Vec3) {
	s.Tiles.Render(viewProj, eye, s.config.Light)
}

// Destroy releases GL resources.
func (s *Scene) Destroy() {
	s.log.Info("destroying scene")
	s.Tiles.Destroy()
}
