// Package window owns the SDL2 window and its OpenGL 4.1 core context.
package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// DefaultTitle is used when Config.Title is empty.
const DefaultTitle = "HeightView"

// Config holds window configuration.
type Config struct {
	Title       string
	Width       int
	Height      int
	Fullscreen  bool
	VSync       bool
	MSAASamples int // 0 disables multisampling
}

// DefaultConfig returns a 1280x720 vsynced window with 4x MSAA.
func DefaultConfig() Config {
	return Config{
		Title:       DefaultTitle,
		Width:       1280,
		Height:      720,
		VSync:       true,
		MSAASamples: 4,
	}
}

type glAttr struct {
	attr  sdl.GLattr
	value int
}

// glAttributes lists the context attributes requested before the window is
// created. 4.1 core is the newest profile macOS offers.
func glAttributes(msaa int) []glAttr {
	attrs := []glAttr{
		{sdl.GL_CONTEXT_MAJOR_VERSION, 4},
		{sdl.GL_CONTEXT_MINOR_VERSION, 1},
		{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE},
		{sdl.GL_DOUBLEBUFFER, 1},
		{sdl.GL_DEPTH_SIZE, 24},
	}
	if msaa > 0 {
		attrs = append(attrs,
			glAttr{sdl.GL_MULTISAMPLEBUFFERS, 1},
			glAttr{sdl.GL_MULTISAMPLESAMPLES, msaa},
		)
	}
	return attrs
}

// normalize fills in the title and rejects sizes SDL cannot create.
func (c Config) normalize() (Config, error) {
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.Width <= 0 || c.Height <= 0 {
		return c, fmt.Errorf("window size %dx%d", c.Width, c.Height)
	}
	if c.MSAASamples < 0 {
		c.MSAASamples = 0
	}
	return c, nil
}

// Window wraps the SDL2 window and OpenGL context.
type Window struct {
	config    Config
	log       *zap.Logger
	sdlWindow *sdl.Window
	glContext sdl.GLContext
}

// New initializes SDL video, creates the window and makes its GL context
// current on the calling thread.
func New(cfg Config, log *zap.Logger) (*Window, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	w := &Window{config: cfg, log: log}

	log.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	var attrErrs []error
	for _, a := range glAttributes(cfg.MSAASamples) {
		if err := sdl.GLSetAttribute(a.attr, a.value); err != nil {
			attrErrs = append(attrErrs, err)
		}
	}
	if err := errors.Join(attrErrs...); err != nil {
		log.Warn("GL attributes rejected", zap.Error(err))
	}

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		log.Warn("swap interval not applied", zap.Int("interval", interval), zap.Error(err))
	}

	width, height := w.Size()
	log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
		zap.Int("msaa", cfg.MSAASamples),
	)
	return w, nil
}

// Close destroys the context and window, then shuts SDL down.
func (w *Window) Close() {
	w.log.Info("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}
	sdl.Quit()
}

func (w *Window) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// Size returns the drawable size in pixels, which differs from the window
// size on high-DPI displays.
func (w *Window) Size() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}

// Aspect returns width / height of the drawable area.
func (w *Window) Aspect() float32 {
	return aspect(w.Size())
}

func aspect(width, height int) float32 {
	if height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}
