package viewer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/heightview/internal/anim"
	"github.com/Faultbox/heightview/internal/config"
	"github.com/Faultbox/heightview/internal/engine/camera"
	"github.com/Faultbox/heightview/internal/engine/input"
	"github.com/Faultbox/heightview/internal/engine/scene"
	"github.com/Faultbox/heightview/internal/engine/window"
	"github.com/Faultbox/heightview/internal/grid"
	"github.com/Faultbox/heightview/internal/heightsource"
	"github.com/Faultbox/heightview/internal/presence"
	"github.com/Faultbox/heightview/pkg/math"
)

// App is the viewer instance.
type App struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	scene    *scene.Scene
	camera   *camera.OrbitCamera
	input    *input.Input
	animator *anim.Engine
	bindings Bindings

	loader   *heightsource.Loader
	pending  <-chan heightsource.Result
	cancel   context.CancelFunc
	reporter *presence.Reporter

	cache      *grid.Cache
	controller *Controller
	running    bool
}

// New creates the window and renderer and starts loading height data.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	bindings, err := NewBindings(cfg.Input.Bindings)
	if err != nil {
		return nil, fmt.Errorf("key bindings: %w", err)
	}

	a := &App{
		cfg:      cfg,
		log:      log,
		bindings: bindings,
		input:    input.New(),
		animator: anim.NewEngine(log.Named("anim")),
	}

	// Window first, the GL context must exist before the scene
	a.window, err = window.New(window.Config{
		Title:       LoadingTitle,
		Width:       cfg.Graphics.Width,
		Height:      cfg.Graphics.Height,
		Fullscreen:  cfg.Graphics.Fullscreen,
		VSync:       cfg.Graphics.VSync,
		MSAASamples: cfg.Graphics.MSAASamples,
	}, log.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	sceneCfg := scene.DefaultConfig()
	w, h := a.window.Size()
	sceneCfg.Width, sceneCfg.Height = int32(w), int32(h)
	sceneCfg.PlaneScale = cfg.Terrain.PlaneScale
	a.scene, err = scene.New(sceneCfg, log.Named("scene"))
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}

	p := cfg.Camera.Position
	a.camera = camera.NewOrbitCamera(math.Vec3{X: p.X, Y: p.Y, Z: p.Z}, cfg.Camera.FOV)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if url := cfg.Server.PresenceURL; url != "" {
		dialCtx, dialCancel := context.WithTimeout(ctx, 5*time.Second)
		a.reporter, err = presence.Dial(dialCtx, url, log.Named("presence"))
		dialCancel()
		if err != nil {
			log.Warn("presence disabled", zap.String("url", url), zap.Error(err))
			a.reporter = nil
		}
	}

	a.loader = heightsource.NewLoader(cfg.Data.FetchRetries, cfg.Data.FetchTimeout,
		cfg.Data.FetchBackoff, log.Named("heightsource"))
	a.pending = a.loader.LoadAsync(ctx, cfg.Data.HeightPath)

	log.Info("viewer initialized", zap.String("data", cfg.Data.HeightPath))
	return a, nil
}

// Run starts the main loop and returns when the window closes.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	var frameTime time.Duration
	if a.cfg.Graphics.FPSLimit > 0 {
		frameTime = time.Second / time.Duration(a.cfg.Graphics.FPSLimit)
	}

	a.log.Info("starting main loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		if a.input.Update() {
			a.running = false
			break
		}
		a.handleEvents()

		if err := a.poll(); err != nil {
			return err
		}

		a.animator.Update(dt)
		a.scene.Render(a.camera)
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount), zap.Int("tiles", a.scene.Tiles.Len()))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameTime > 0 {
			if elapsed := time.Since(now); elapsed < frameTime {
				time.Sleep(frameTime - elapsed)
			}
		}
	}

	return nil
}

func (a *App) handleEvents() {
	for _, ev := range a.input.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			// The event carries window points; the viewport needs pixels
			w, h := a.window.Size()
			a.scene.Resize(int32(w), int32(h))
		case input.EventKeyDown:
			if ev.Key == "escape" {
				a.running = false
				continue
			}
			// Nothing to navigate while loading
			if a.controller == nil {
				continue
			}
			_, _ = a.controller.Handle(a.bindings.Lookup(ev.Key))
		case input.EventMouseDrag:
			a.camera.HandleDrag(ev.DeltaX, ev.DeltaY)
		case input.EventMouseWheel:
			a.camera.HandleZoom(ev.Scroll)
		}
	}
}

// poll checks for finished height data without blocking.
func (a *App) poll() error {
	if a.pending == nil {
		return nil
	}
	var res heightsource.Result
	select {
	case res = <-a.pending:
		a.pending = nil
	default:
		return nil
	}

	if res.Err != nil {
		a.log.Error("height data unavailable, showing flat terrain",
			zap.String("data", a.cfg.Data.HeightPath), zap.Error(res.Err))
	}

	sink := MultiSink{TitleSink{Window: a.window}}
	if a.reporter != nil {
		sink = append(sink, a.reporter)
	}

	cache, err := NewCache(a.cfg.Terrain, res.Field, a.scene.Tiles, a.animator, sink, a.log.Named("cache"))
	if err != nil {
		return fmt.Errorf("tile cache: %w", err)
	}
	a.cache = cache
	a.controller = NewController(cache, a.cfg.Input.Cooldown, a.log.Named("controller"))
	return nil
}

// Close releases all viewer resources.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.cancel != nil {
		a.cancel()
	}
	if a.cache != nil {
		a.cache.Close()
	}
	if a.reporter != nil {
		if err := a.reporter.Close(); err != nil {
			a.log.Debug("presence close", zap.Error(err))
		}
	}
	if a.loader != nil {
		a.loader.Close()
	}
	if a.scene != nil {
		a.scene.Destroy()
	}
	if a.window != nil {
		a.window.Close()
	}
}
