package client

import "sync"

// Position is a cursor position in viewport percentages.
type Position struct {
	X float64
	Y float64
}

// CursorTracker keeps, per remote user, the latest relayed target
// position and a smoothed rendered position that chases it. The server
// relays only raw samples; interpolation is entirely a receiver
// concern.
type CursorTracker struct {
	mu        sync.Mutex
	cursors   map[string]*cursorState
	smoothing float64
}

type cursorState struct {
	target   Position
	rendered Position
}

// NewCursorTracker creates a tracker. smoothing is the fraction of the
// remaining distance covered per Step, clamped to (0, 1]; values
// outside that range fall back to 0.35.
func NewCursorTracker(smoothing float64) *CursorTracker {
	if smoothing <= 0 || smoothing > 1 {
		smoothing = 0.35
	}
	return &CursorTracker{
		cursors:   make(map[string]*cursorState),
		smoothing: smoothing,
	}
}

// Observe records a relayed sample for a user. The first sample for a
// user snaps the rendered position so new cursors do not fly in from
// the origin.
func (t *CursorTracker) Observe(userID string, x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.cursors[userID]
	if !ok {
		t.cursors[userID] = &cursorState{
			target:   Position{X: x, Y: y},
			rendered: Position{X: x, Y: y},
		}
		return
	}
	c.target = Position{X: x, Y: y}
}

// Step advances every rendered position toward its target and returns
// the rendered snapshot. Call once per animation frame.
func (t *CursorTracker) Step() map[string]Position {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]Position, len(t.cursors))
	for userID, c := range t.cursors {
		c.rendered.X += (c.target.X - c.rendered.X) * t.smoothing
		c.rendered.Y += (c.target.Y - c.rendered.Y) * t.smoothing
		out[userID] = c.rendered
	}
	return out
}

// Forget drops a user's cursor, typically on user-left.
func (t *CursorTracker) Forget(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.cursors, userID)
}
