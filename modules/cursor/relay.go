package cursor

import (
	"log/slog"
	"sync/atomic"

	board "github.com/samadou-101/echo-board-sub000/domain/board"
)

// Broadcaster is the hub surface the relay needs.
type Broadcaster interface {
	FirstRoom(connID string) string
	BroadcastToRoom(roomID, event string, payload any, excludeID string)
}

// Relay validates and rebroadcasts pointer-position samples. The
// server keeps no cursor state at all; each sample simply replaces the
// previous one at every receiver.
type Relay struct {
	hub    Broadcaster
	logger *slog.Logger

	relayed atomic.Int64
	dropped atomic.Int64
}

// NewRelay creates a cursor relay over the given hub.
func NewRelay(hub Broadcaster) *Relay {
	return &Relay{
		hub:    hub,
		logger: slog.Default().With("component", "cursor"),
	}
}

// HandleMove relays one cursor sample to the other members of the
// sender's room. Samples with a missing userId or coordinates outside
// [0, 100] are dropped with a warning; cursor traffic has no
// negative-acknowledgment channel, so the sender is never told.
//
// The target room is the first room the sender joined. A sender in
// several rooms only relays into that one; the others see nothing.
func (r *Relay) HandleMove(senderID string, sample board.CursorSample) {
	if sample.UserID == "" {
		r.dropped.Add(1)
		r.logger.Warn("cursor sample without userId", "connId", senderID)
		return
	}
	if sample.X < 0 || sample.X > 100 || sample.Y < 0 || sample.Y > 100 {
		r.dropped.Add(1)
		r.logger.Warn("cursor sample out of range",
			"connId", senderID, "x", sample.X, "y", sample.Y)
		return
	}

	roomID := r.hub.FirstRoom(senderID)
	if roomID == "" {
		r.dropped.Add(1)
		r.logger.Debug("cursor sample from connection with no room", "connId", senderID)
		return
	}

	r.hub.BroadcastToRoom(roomID, "cursor-move", sample, senderID)
	r.relayed.Add(1)
}

// Stats returns how many samples were relayed and dropped.
func (r *Relay) Stats() (relayed, dropped int64) {
	return r.relayed.Load(), r.dropped.Load()
}
