package board

import "encoding/json"

// ChatMessage is one chat line. The timestamp is client-supplied
// milliseconds; the server never rewrites it.
type ChatMessage struct {
	UserID    string `json:"userId"`
	Body      string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// CursorSample is one pointer-position sample. X and Y are percentages
// of the sender's viewport in [0, 100], so receivers with different
// screen sizes need no pixel reconciliation. Screen dimensions are an
// optional pass-through for receiver-side reference.
type CursorSample struct {
	UserID       string   `json:"userId"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	ScreenWidth  *float64 `json:"screenWidth,omitempty"`
	ScreenHeight *float64 `json:"screenHeight,omitempty"`
}

// Envelope is the wire format for every WebSocket message, in both
// directions. Data stays raw until the handler for Event decodes it.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomAck is the acknowledgment for create-room and join-room.
type RoomAck struct {
	Success bool   `json:"success"`
	RoomID  string `json:"roomId,omitempty"`
	Error   string `json:"error,omitempty"`
}
