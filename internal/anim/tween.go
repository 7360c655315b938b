// Package anim provides declarative property tweens and the engine that runs them.
package anim

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Property identifies an animatable value on a Target.
type Property int

// Animatable properties.
const (
	Opacity Property = iota
	PositionX
	PositionY
	PositionZ
)

// String returns the property name.
func (p Property) String() string {
	switch p {
	case Opacity:
		return "opacity"
	case PositionX:
		return "position.x"
	case PositionY:
		return "position.y"
	case PositionZ:
		return "position.z"
	default:
		return fmt.Sprintf("Property(%d)", int(p))
	}
}

// Target is anything whose properties can be read and written by a tween.
type Target interface {
	Property(p Property) float32
	SetProperty(p Property, v float32)
}

// Tween is a request to move one property of a target to a value.
type Tween struct {
	Target     Target
	Property   Property
	To         float32
	Duration   time.Duration
	Ease       Easing // nil means Linear
	OnComplete func() // optional; fires exactly once
}

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// Power2Out decelerates quadratically.
func Power2Out(t float64) float64 { return 1 - math.Pow(1-t, 2) }

// Power4Out decelerates quartically.
func Power4Out(t float64) float64 { return 1 - math.Pow(1-t, 4) }

// Power2InOut accelerates then decelerates.
func Power2InOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

var easings = map[string]Easing{
	"linear":        Linear,
	"none":          Linear,
	"power2.out":    Power2Out,
	"power4.out":    Power4Out,
	"power2.inout":  Power2InOut,
	"power2.in-out": Power2InOut,
}

// EasingByName resolves an easing from its config name (e.g. "power4.out").
func EasingByName(name string) (Easing, error) {
	ease, ok := easings[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return ease, nil
}
