package client

import (
	"sync"
	"time"
)

// DefaultThrottleWindow is the minimum interval between successive
// emits of the same event type during a continuous interaction.
const DefaultThrottleWindow = 30 * time.Millisecond

// Throttle coalesces a burst of updates into at most one emit per
// window. The first update of a burst goes out immediately so
// receivers start seeing changes right away; later updates within the
// window replace each other and the survivor goes out when the window
// elapses. Call Flush when the interaction ends (mouse released) so
// the final state is never lost to suppression.
type Throttle struct {
	window time.Duration
	emit   func(v any)

	mu         sync.Mutex
	lastEmit   time.Time
	pending    any
	hasPending bool
	timer      *time.Timer
}

// NewThrottle creates a throttle around emit. A non-positive window
// falls back to DefaultThrottleWindow.
func NewThrottle(window time.Duration, emit func(v any)) *Throttle {
	if window <= 0 {
		window = DefaultThrottleWindow
	}
	return &Throttle{window: window, emit: emit}
}

// Send offers an update. It either emits immediately, or replaces the
// pending update to be emitted when the current window elapses.
func (t *Throttle) Send(v any) {
	t.mu.Lock()
	now := time.Now()
	if now.Sub(t.lastEmit) >= t.window {
		t.lastEmit = now
		t.pending = nil
		t.hasPending = false
		t.mu.Unlock()
		t.emit(v)
		return
	}

	t.pending = v
	t.hasPending = true
	if t.timer == nil {
		delay := t.window - now.Sub(t.lastEmit)
		t.timer = time.AfterFunc(delay, t.windowElapsed)
	}
	t.mu.Unlock()
}

func (t *Throttle) windowElapsed() {
	t.mu.Lock()
	t.timer = nil
	if !t.hasPending {
		t.mu.Unlock()
		return
	}
	v := t.pending
	t.pending = nil
	t.hasPending = false
	t.lastEmit = time.Now()
	t.mu.Unlock()
	t.emit(v)
}

// Flush emits the pending update immediately, if any. Safe to call
// with nothing pending.
func (t *Throttle) Flush() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if !t.hasPending {
		t.mu.Unlock()
		return
	}
	v := t.pending
	t.pending = nil
	t.hasPending = false
	t.lastEmit = time.Now()
	t.mu.Unlock()
	t.emit(v)
}
