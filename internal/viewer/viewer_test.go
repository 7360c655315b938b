package viewer

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Faultbox/heightview/internal/anim"
	"github.com/Faultbox/heightview/internal/config"
	"github.com/Faultbox/heightview/internal/grid"
	"github.com/Faultbox/heightview/internal/terrain"
)

func TestDefaultBindingsParse(t *testing.T) {
	b, err := NewBindings(config.DefaultBindings())
	if err != nil {
		t.Fatalf("NewBindings() error = %v", err)
	}

	tests := []struct {
		key  string
		want Action
	}{
		{"up", ActionPanUp},
		{"w", ActionPanUp},
		{"down", ActionPanDown},
		{"s", ActionPanDown},
		{"left", ActionPanLeft},
		{"a", ActionPanLeft},
		{"right", ActionPanRight},
		{"d", ActionPanRight},
		{"z", ActionZoomIn},
		{"x", ActionZoomOut},
		{"r", ActionReset},
		{"R", ActionReset},
		{"q", ActionNone},
	}
	for _, tt := range tests {
		if got := b.Lookup(tt.key); got != tt.want {
			t.Errorf("Lookup(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestNewBindingsRejectsUnknownActions(t *testing.T) {
	_, err := NewBindings(map[string]string{
		"up": "pan_up",
		"j":  "jump",
		"k":  "fly",
	})
	if !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("NewBindings() error = %v, want ErrUnknownAction", err)
	}
}

func TestPanDelta(t *testing.T) {
	tests := []struct {
		action Action
		dx, dy int
		ok     bool
	}{
		{ActionPanUp, 0, 1, true},
		{ActionPanDown, 0, -1, true},
		{ActionPanLeft, -1, 0, true},
		{ActionPanRight, 1, 0, true},
		{ActionZoomIn, 0, 0, false},
		{ActionReset, 0, 0, false},
	}
	for _, tt := range tests {
		dx, dy, ok := tt.action.PanDelta()
		if dx != tt.dx || dy != tt.dy || ok != tt.ok {
			t.Errorf("%v.PanDelta() = (%d, %d, %v), want (%d, %d, %v)",
				tt.action, dx, dy, ok, tt.dx, tt.dy, tt.ok)
		}
	}
}

func TestActionString(t *testing.T) {
	if got := ActionZoomOut.String(); got != "zoom_out" {
		t.Errorf("String() = %q, want zoom_out", got)
	}
	if got := ActionNone.String(); got != "none" {
		t.Errorf("String() = %q, want none", got)
	}
}

type recordingNavigator struct {
	calls []string
	err   error
}

func (n *recordingNavigator) Pan(dx, dy int) error {
	n.calls = append(n.calls, "pan"+string(rune('1'+dx))+string(rune('1'+dy)))
	return n.err
}

func (n *recordingNavigator) Zoom(direction int) error {
	if direction < 0 {
		n.calls = append(n.calls, "zoom-in")
	} else {
		n.calls = append(n.calls, "zoom-out")
	}
	return n.err
}

func (n *recordingNavigator) Reset() error {
	n.calls = append(n.calls, "reset")
	return n.err
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestController(t *testing.T, nav Navigator) (*Controller, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := NewController(nav, 300*time.Millisecond, zaptest.NewLogger(t))
	c.now = clock.now
	return c, clock
}

func TestControllerDispatch(t *testing.T) {
	nav := &recordingNavigator{}
	c, clock := newTestController(t, nav)

	for _, a := range []Action{ActionPanUp, ActionPanLeft, ActionZoomIn, ActionZoomOut, ActionReset} {
		handled, err := c.Handle(a)
		if err != nil || !handled {
			t.Fatalf("Handle(%v) = (%v, %v), want (true, nil)", a, handled, err)
		}
		clock.advance(time.Second)
	}

	want := []string{"pan12", "pan01", "zoom-in", "zoom-out", "reset"}
	if len(nav.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", nav.calls, want)
	}
	for i := range want {
		if nav.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, nav.calls[i], want[i])
		}
	}
}

func TestControllerCooldown(t *testing.T) {
	nav := &recordingNavigator{}
	c, clock := newTestController(t, nav)

	if handled, _ := c.Handle(ActionPanRight); !handled {
		t.Fatal("first command was ignored")
	}
	if !c.CoolingDown() {
		t.Error("CoolingDown() = false right after a command")
	}

	clock.advance(299 * time.Millisecond)
	if handled, _ := c.Handle(ActionPanRight); handled {
		t.Error("command during cooldown was handled")
	}

	clock.advance(time.Millisecond)
	if handled, _ := c.Handle(ActionPanRight); !handled {
		t.Error("command after cooldown was ignored")
	}

	if len(nav.calls) != 2 {
		t.Errorf("navigator saw %d calls, want 2", len(nav.calls))
	}
}

func TestControllerIgnoresNone(t *testing.T) {
	nav := &recordingNavigator{}
	c, _ := newTestController(t, nav)

	if handled, _ := c.Handle(ActionNone); handled {
		t.Error("ActionNone was handled")
	}
	if c.CoolingDown() {
		t.Error("ActionNone started the cooldown")
	}
}

func TestControllerFailureStartsCooldown(t *testing.T) {
	nav := &recordingNavigator{err: errors.New("boom")}
	c, _ := newTestController(t, nav)

	handled, err := c.Handle(ActionZoomIn)
	if !handled || err == nil {
		t.Fatalf("Handle() = (%v, %v), want (true, error)", handled, err)
	}
	if !c.CoolingDown() {
		t.Error("failed command did not start the cooldown")
	}
}

type titleRecorder struct{ title string }

func (r *titleRecorder) SetTitle(title string) { r.title = title }

type locationRecorder struct{ x, y float64 }

func (r *locationRecorder) Display(x, y float64) { r.x, r.y = x, y }

func TestSinks(t *testing.T) {
	if got := ChunkTitle(200, 12.345); got != "Chunk: (200.00, 12.35)" {
		t.Errorf("ChunkTitle() = %q", got)
	}

	w := &titleRecorder{}
	loc := &locationRecorder{}
	sink := MultiSink{TitleSink{Window: w}, nil, loc}
	sink.Display(1.5, 2)

	if w.title != "Chunk: (1.50, 2.00)" {
		t.Errorf("title = %q", w.title)
	}
	if loc.x != 1.5 || loc.y != 2 {
		t.Errorf("location = (%v, %v), want (1.5, 2)", loc.x, loc.y)
	}
}

type countingSurface struct{ live map[*grid.Tile]bool }

func (s *countingSurface) Add(t *grid.Tile)    { s.live[t] = true }
func (s *countingSurface) Remove(t *grid.Tile) { delete(s.live, t) }

func TestNewCacheFromConfig(t *testing.T) {
	field, err := terrain.NewHeightField(600, 600, make([]float32, 600*600))
	if err != nil {
		t.Fatalf("NewHeightField() error = %v", err)
	}

	cfg := config.Default().Terrain
	cfg.TileResolutions = []int{10, 20, 50, 100}
	cfg.DefaultLODIndex = 1

	surface := &countingSurface{live: make(map[*grid.Tile]bool)}
	w := &titleRecorder{}
	engine := anim.NewEngine(zaptest.NewLogger(t))

	cache, err := NewCache(cfg, field, surface, engine, TitleSink{Window: w}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	if len(surface.live) != 9 {
		t.Errorf("live tiles = %d, want 9", len(surface.live))
	}
	if w.title != "Chunk: (200.00, 200.00)" {
		t.Errorf("title = %q", w.title)
	}
	if got := cache.Viewport().Resolution(); got != 20 {
		t.Errorf("Resolution() = %d, want 20", got)
	}

	cache.Close()
	engine.Finish()
	if len(surface.live) != 0 {
		t.Errorf("live tiles after Close = %d, want 0", len(surface.live))
	}
}

func TestNewCacheRejectsUnknownEasing(t *testing.T) {
	cfg := config.Default().Terrain
	cfg.Easing = "bounce"
	surface := &countingSurface{live: make(map[*grid.Tile]bool)}

	_, err := NewCache(cfg, terrain.EmptyField(), surface, anim.NewEngine(nil), nil, nil)
	if err == nil {
		t.Fatal("NewCache() error = nil, want easing error")
	}
}
