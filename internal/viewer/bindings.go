// Package viewer ties input, the tile cache and the renderer together.
package viewer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Action is a viewer command triggered by a key.
type Action int

const (
	ActionNone Action = iota
	ActionPanUp
	ActionPanDown
	ActionPanLeft
	ActionPanRight
	ActionZoomIn
	ActionZoomOut
	ActionReset
)

var actionNames = map[string]Action{
	"pan_up":    ActionPanUp,
	"pan_down":  ActionPanDown,
	"pan_left":  ActionPanLeft,
	"pan_right": ActionPanRight,
	"zoom_in":   ActionZoomIn,
	"zoom_out":  ActionZoomOut,
	"reset":     ActionReset,
}

// String returns the config name of the action.
func (a Action) String() string {
	for name, v := range actionNames {
		if v == a {
			return name
		}
	}
	return "none"
}

// PanDelta returns the (dx, dy) step of a pan action.
func (a Action) PanDelta() (dx, dy int, ok bool) {
	switch a {
	case ActionPanUp:
		return 0, 1, true
	case ActionPanDown:
		return 0, -1, true
	case ActionPanLeft:
		return -1, 0, true
	case ActionPanRight:
		return 1, 0, true
	}
	return 0, 0, false
}

// ErrUnknownAction is returned for a binding that names no action.
var ErrUnknownAction = errors.New("unknown action")

// ParseAction looks up an action by its config name.
func ParseAction(name string) (Action, error) {
	a, ok := actionNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ActionNone, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return a, nil
}

// Bindings maps lowercase key names to actions.
type Bindings map[string]Action

// NewBindings parses a key -> action name table. All bad entries are reported.
func NewBindings(table map[string]string) (Bindings, error) {
	b := make(Bindings, len(table))
	var errs []error

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		a, err := ParseAction(table[key])
		if err != nil {
			errs = append(errs, fmt.Errorf("key %q: %w", key, err))
			continue
		}
		b[strings.ToLower(key)] = a
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return b, nil
}

// Lookup returns the action bound to key.
func (b Bindings) Lookup(key string) Action {
	return b[strings.ToLower(key)]
}
