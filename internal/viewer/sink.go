package viewer

import (
	"fmt"

	"github.com/Faultbox/heightview/internal/grid"
)

// LoadingTitle is shown until the height data arrives.
const LoadingTitle = "Loading…"

// ChunkTitle formats the anchor for display.
func ChunkTitle(x, y float64) string {
	return fmt.Sprintf("Chunk: (%.2f, %.2f)", x, y)
}

// TitleSetter is implemented by the window.
type TitleSetter interface {
	SetTitle(title string)
}

// TitleSink shows the anchor in the window title.
type TitleSink struct {
	Window TitleSetter
}

// Display implements grid.LocationSink.
func (s TitleSink) Display(x, y float64) {
	s.Window.SetTitle(ChunkTitle(x, y))
}

// MultiSink fans a location out to several sinks.
type MultiSink []grid.LocationSink

// Display implements grid.LocationSink.
func (m MultiSink) Display(x, y float64) {
	for _, s := range m {
		if s != nil {
			s.Display(x, y)
		}
	}
}
