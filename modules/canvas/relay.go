package canvas

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
)

// Drawing event names carried over the socket.
const (
	EventDrawStart    = "draw-start"
	EventDrawMove     = "draw-move"
	EventDrawEnd      = "draw-end"
	EventDrawShape    = "draw-shape"
	EventClearCanvas  = "clear-canvas"
	EventCanvasUpdate = "canvas:update"
	EventCanvasClear  = "canvas:clear"
)

// Broadcaster is the hub surface the relay needs.
type Broadcaster interface {
	BroadcastToRoom(roomID, event string, payload any, excludeID string)
}

// Relay is a stateless pass-through for drawing lifecycle events and
// full-document snapshots. It never parses drawingData or the snapshot
// json: those blobs belong to the rendering layer, and keeping the
// server format-agnostic lets the client's snapshot schema evolve
// freely. The server holds no copy of anything it relays; receivers
// apply whatever arrives last.
type Relay struct {
	hub    Broadcaster
	logger *slog.Logger

	relayed atomic.Int64
	dropped atomic.Int64
}

// NewRelay creates a drawing relay over the given hub.
func NewRelay(hub Broadcaster) *Relay {
	return &Relay{
		hub:    hub,
		logger: slog.Default().With("component", "canvas"),
	}
}

type drawStartPayload struct {
	RoomID      string          `json:"roomId"`
	DrawingData json.RawMessage `json:"drawingData"`
}

type drawMovePayload struct {
	RoomID    string          `json:"roomId"`
	Point     json.RawMessage `json:"point"`
	UserID    string          `json:"userId"`
	Color     json.RawMessage `json:"color,omitempty"`
	LineWidth json.RawMessage `json:"lineWidth,omitempty"`
}

type drawMoveBroadcast struct {
	Point     json.RawMessage `json:"point"`
	UserID    string          `json:"userId"`
	Color     json.RawMessage `json:"color,omitempty"`
	LineWidth json.RawMessage `json:"lineWidth,omitempty"`
}

type drawEndPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type drawEndBroadcast struct {
	UserID string `json:"userId"`
}

type clearCanvasPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type canvasUpdatePayload struct {
	RoomID string          `json:"roomId"`
	JSON   json.RawMessage `json:"json"`
}

type canvasClearPayload struct {
	RoomID string `json:"roomId"`
}

// Handle validates one drawing event and rebroadcasts it to the other
// members of the event's named room. Events missing a required field
// are dropped silently; drawing traffic is fire-and-forget and has no
// error channel back to the sender.
func (r *Relay) Handle(senderID, event string, data json.RawMessage) {
	switch event {
	case EventDrawStart, EventDrawShape:
		var p drawStartPayload
		if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" || !present(p.DrawingData) {
			r.drop(senderID, event)
			return
		}
		r.hub.BroadcastToRoom(p.RoomID, event, p.DrawingData, senderID)

	case EventDrawMove:
		var p drawMovePayload
		if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" || p.UserID == "" || !present(p.Point) {
			r.drop(senderID, event)
			return
		}
		r.hub.BroadcastToRoom(p.RoomID, event, drawMoveBroadcast{
			Point:     p.Point,
			UserID:    p.UserID,
			Color:     p.Color,
			LineWidth: p.LineWidth,
		}, senderID)

	case EventDrawEnd:
		var p drawEndPayload
		if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" || p.UserID == "" {
			r.drop(senderID, event)
			return
		}
		r.hub.BroadcastToRoom(p.RoomID, event, drawEndBroadcast{UserID: p.UserID}, senderID)

	case EventClearCanvas:
		var p clearCanvasPayload
		if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" || p.UserID == "" {
			r.drop(senderID, event)
			return
		}
		r.hub.BroadcastToRoom(p.RoomID, event, nil, senderID)

	case EventCanvasUpdate:
		var p canvasUpdatePayload
		if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" || !present(p.JSON) {
			r.drop(senderID, event)
			return
		}
		r.hub.BroadcastToRoom(p.RoomID, event, p.JSON, senderID)

	case EventCanvasClear:
		var p canvasClearPayload
		if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
			r.drop(senderID, event)
			return
		}
		r.hub.BroadcastToRoom(p.RoomID, event, canvasClearPayload{RoomID: p.RoomID}, senderID)

	default:
		r.drop(senderID, event)
		return
	}

	r.relayed.Add(1)
}

func (r *Relay) drop(senderID, event string) {
	r.dropped.Add(1)
	r.logger.Debug("dropping malformed drawing event", "connId", senderID, "event", event)
}

// Stats returns how many events were relayed and dropped.
func (r *Relay) Stats() (relayed, dropped int64) {
	return r.relayed.Load(), r.dropped.Load()
}

// present reports whether a raw JSON field was provided with a
// non-null value.
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
