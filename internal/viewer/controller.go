package viewer

import (
	"time"

	"go.uber.org/zap"
)

// Navigator is the part of the tile cache driven by keyboard actions.
type Navigator interface {
	Pan(dx, dy int) error
	Zoom(direction int) error
	Reset() error
}

// Controller dispatches actions to a Navigator. After each command further
// commands are ignored until the cooldown has elapsed.
type Controller struct {
	nav      Navigator
	cooldown time.Duration
	log      *zap.Logger

	now   func() time.Time
	until time.Time
}

// NewController creates a controller.
func NewController(nav Navigator, cooldown time.Duration, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		nav:      nav,
		cooldown: cooldown,
		log:      log,
		now:      time.Now,
	}
}

// CoolingDown reports whether commands are currently ignored.
func (c *Controller) CoolingDown() bool {
	return c.now().Before(c.until)
}

// Handle runs action. It returns false when the action was ignored, either
// because it is ActionNone or because the cooldown is active.
func (c *Controller) Handle(action Action) (bool, error) {
	if action == ActionNone {
		return false, nil
	}
	if c.CoolingDown() {
		c.log.Debug("command ignored during cooldown", zap.Stringer("action", action))
		return false, nil
	}

	var err error
	if dx, dy, ok := action.PanDelta(); ok {
		err = c.nav.Pan(dx, dy)
	} else {
		switch action {
		case ActionZoomIn:
			err = c.nav.Zoom(-1)
		case ActionZoomOut:
			err = c.nav.Zoom(1)
		case ActionReset:
			err = c.nav.Reset()
		}
	}

	c.until = c.now().Add(c.cooldown)
	if err != nil {
		c.log.Warn("command failed", zap.Stringer("action", action), zap.Error(err))
		return true, err
	}
	c.log.Debug("command", zap.Stringer("action", action))
	return true, nil
}
