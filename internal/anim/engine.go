package anim

import (
	"time"

	"go.uber.org/zap"
)

type key struct {
	target   Target
	property Property
}

type running struct {
	tween   Tween
	from    float32
	elapsed time.Duration
}

// Engine runs tweens. Animate returns immediately; values advance and
// completions fire only from Update, so callers never re-enter themselves.
//
// A tween on a (target, property) pair that is already animating replaces
// the running one and continues from the current value. The replaced
// tween's OnComplete still fires, once, on the next Update.
//
// Targets are map keys and must be comparable, typically pointers.
// Engine is not safe for concurrent use; drive it from the render loop.
type Engine struct {
	log      *zap.Logger
	active   []*running
	index    map[key]int
	deferred []func()
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		log:   log,
		index: make(map[key]int),
	}
}

// Animate schedules a tween.
func (e *Engine) Animate(tw Tween) {
	if tw.Target == nil {
		if tw.OnComplete != nil {
			e.deferred = append(e.deferred, tw.OnComplete)
		}
		return
	}
	if tw.Ease == nil {
		tw.Ease = Linear
	}

	r := &running{
		tween: tw,
		from:  tw.Target.Property(tw.Property),
	}

	k := key{tw.Target, tw.Property}
	if i, ok := e.index[k]; ok {
		old := e.active[i]
		if old.tween.OnComplete != nil {
			e.deferred = append(e.deferred, old.tween.OnComplete)
		}
		e.active[i] = r
		e.log.Debug("tween retargeted",
			zap.Stringer("property", tw.Property),
			zap.Float32("to", tw.To),
		)
		return
	}

	e.index[k] = len(e.active)
	e.active = append(e.active, r)
}

// Update advances every tween by dt and fires completions.
func (e *Engine) Update(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}

	completions := e.deferred
	e.deferred = nil

	kept := e.active[:0]
	for _, r := range e.active {
		r.elapsed += dt
		if r.elapsed >= r.tween.Duration {
			r.tween.Target.SetProperty(r.tween.Property, r.tween.To)
			if r.tween.OnComplete != nil {
				completions = append(completions, r.tween.OnComplete)
			}
			continue
		}

		progress := float64(r.elapsed) / float64(r.tween.Duration)
		eased := float32(r.tween.Ease(progress))
		r.tween.Target.SetProperty(r.tween.Property, r.from+(r.tween.To-r.from)*eased)
		kept = append(kept, r)
	}
	clear(e.active[len(kept):])
	e.active = kept
	e.reindex()

	// Callbacks may call Animate; they see a consistent engine
	for _, fn := range completions {
		fn()
	}
}

// Finish jumps every tween to its end value and fires all completions.
// Completions that schedule new tweens are finished too.
func (e *Engine) Finish() {
	for e.Busy() {
		for _, r := range e.active {
			r.elapsed = r.tween.Duration
		}
		e.Update(0)
	}
}

// Pending returns the number of running tweens.
func (e *Engine) Pending() int {
	return len(e.active)
}

// Busy reports whether any tween is running or any completion is queued.
func (e *Engine) Busy() bool {
	return len(e.active) > 0 || len(e.deferred) > 0
}

func (e *Engine) reindex() {
	clear(e.index)
	for i, r := range e.active {
		e.index[key{r.tween.Target, r.tween.Property}] = i
	}
}
