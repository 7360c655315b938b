package anim

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type box struct {
	values [4]float32
}

func (b *box) Property(p Property) float32       { return b.values[p] }
func (b *box) SetProperty(p Property, v float32) { b.values[p] = v }

func TestEngine_LinearProgress(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t))
	b := &box{}

	e.Animate(Tween{Target: b, Property: Opacity, To: 1, Duration: time.Second})

	e.Update(250 * time.Millisecond)
	if got := b.values[Opacity]; got != 0.25 {
		t.Errorf("after 250ms opacity = %v, want 0.25", got)
	}

	e.Update(time.Second)
	if got := b.values[Opacity]; got != 1 {
		t.Errorf("after completion opacity = %v, want 1", got)
	}
	if e.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", e.Pending())
	}
}

func TestEngine_CompletionFiresOnce(t *testing.T) {
	e := NewEngine(nil)
	b := &box{}
	calls := 0

	e.Animate(Tween{
		Target: b, Property: PositionY, To: -10, Duration: 100 * time.Millisecond,
		OnComplete: func() { calls++ },
	})

	e.Update(50 * time.Millisecond)
	if calls != 0 {
		t.Fatalf("completion fired early")
	}
	e.Update(50 * time.Millisecond)
	e.Update(50 * time.Millisecond)
	e.Update(time.Second)

	if calls != 1 {
		t.Errorf("completion fired %d times, want 1", calls)
	}
}

func TestEngine_AnimateNeverCompletesSynchronously(t *testing.T) {
	e := NewEngine(nil)
	b := &box{}
	fired := false

	e.Animate(Tween{Target: b, Property: Opacity, To: 1, OnComplete: func() { fired = true }})
	if fired {
		t.Fatal("zero-duration completion fired inside Animate")
	}

	e.Update(0)
	if !fired {
		t.Error("zero-duration completion should fire on the next Update")
	}
	if b.values[Opacity] != 1 {
		t.Errorf("opacity = %v, want 1", b.values[Opacity])
	}
}

func TestEngine_RetargetSupersedes(t *testing.T) {
	e := NewEngine(nil)
	b := &box{}
	firstDone, secondDone := 0, 0

	e.Animate(Tween{
		Target: b, Property: Opacity, To: 1, Duration: time.Second,
		OnComplete: func() { firstDone++ },
	})
	e.Update(500 * time.Millisecond)

	e.Animate(Tween{
		Target: b, Property: Opacity, To: 0, Duration: time.Second,
		OnComplete: func() { secondDone++ },
	})
	if e.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1 after retarget", e.Pending())
	}

	// Continues from 0.5 toward 0
	e.Update(500 * time.Millisecond)
	if got := b.values[Opacity]; got != 0.25 {
		t.Errorf("opacity = %v, want 0.25", got)
	}
	if firstDone != 1 {
		t.Errorf("superseded completion fired %d times, want 1", firstDone)
	}

	e.Update(time.Second)
	if secondDone != 1 || firstDone != 1 {
		t.Errorf("completions = (%d, %d), want (1, 1)", firstDone, secondDone)
	}
	if b.values[Opacity] != 0 {
		t.Errorf("final opacity = %v, want 0", b.values[Opacity])
	}
}

func TestEngine_IndependentProperties(t *testing.T) {
	e := NewEngine(nil)
	b := &box{}

	e.Animate(Tween{Target: b, Property: PositionX, To: 10, Duration: time.Second})
	e.Animate(Tween{Target: b, Property: PositionZ, To: -10, Duration: time.Second})
	if e.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", e.Pending())
	}

	e.Finish()
	if b.values[PositionX] != 10 || b.values[PositionZ] != -10 {
		t.Errorf("values = %v, want x=10 z=-10", b.values)
	}
	if e.Busy() {
		t.Error("engine should be idle after Finish")
	}
}

func TestEngine_CallbackMayAnimate(t *testing.T) {
	e := NewEngine(nil)
	b := &box{}

	e.Animate(Tween{
		Target: b, Property: Opacity, To: 1, Duration: 10 * time.Millisecond,
		OnComplete: func() {
			e.Animate(Tween{Target: b, Property: PositionY, To: 5, Duration: 10 * time.Millisecond})
		},
	})

	e.Finish()
	if b.values[Opacity] != 1 || b.values[PositionY] != 5 {
		t.Errorf("values = %v, want opacity 1 and y 5", b.values)
	}
}

func TestEngine_NilTarget(t *testing.T) {
	e := NewEngine(nil)
	fired := 0
	e.Animate(Tween{OnComplete: func() { fired++ }})
	e.Update(0)
	if fired != 1 {
		t.Errorf("nil-target completion fired %d times, want 1", fired)
	}
}

func TestEasings(t *testing.T) {
	for name, ease := range easings {
		if got := ease(0); got != 0 {
			t.Errorf("%s(0) = %v, want 0", name, got)
		}
		if got := ease(1); got != 1 {
			t.Errorf("%s(1) = %v, want 1", name, got)
		}
	}
	if Power4Out(0.5) <= 0.5 {
		t.Errorf("Power4Out(0.5) = %v, should be ahead of linear", Power4Out(0.5))
	}
}

func TestEasingByName(t *testing.T) {
	if _, err := EasingByName("Power4.Out"); err != nil {
		t.Errorf("EasingByName(Power4.Out) failed: %v", err)
	}
	if _, err := EasingByName("bounce"); err == nil {
		t.Error("expected error for unknown easing")
	}
}

func TestProperty_String(t *testing.T) {
	if Opacity.String() != "opacity" || PositionZ.String() != "position.z" {
		t.Errorf("unexpected names %q %q", Opacity, PositionZ)
	}
	if Property(9).String() != "Property(9)" {
		t.Errorf("unexpected name %q", Property(9))
	}
}
