package gateway

import (
	"context"
	"encoding/json"
	"log/slog"

	board "github.com/samadou-101/echo-board-sub000/domain/board"
	"github.com/samadou-101/echo-board-sub000/modules/canvas"
	"github.com/samadou-101/echo-board-sub000/modules/rooms"
)

// sender delivers envelopes back to the session's own connection.
// *broadcast.Client satisfies it.
type sender interface {
	Send(event string, payload any) error
}

// chatRelay is the chat module surface the session needs.
type chatRelay interface {
	HandleMessage(senderID, roomID string, msg board.ChatMessage)
	HandleTyping(senderID, roomID, userID string, isTyping bool)
	Messages(roomID string) []board.ChatMessage
	Cleanup(roomID string)
}

// cursorRelay is the cursor relay surface the session needs.
type cursorRelay interface {
	HandleMove(senderID string, sample board.CursorSample)
}

// canvasRelay is the drawing relay surface the session needs.
type canvasRelay interface {
	Handle(senderID, event string, data json.RawMessage)
}

// session dispatches one connection's incoming envelopes to the
// relays. A malformed or unknown event is logged and dropped; nothing
// a client sends may disturb another session or the process.
type session struct {
	id     string
	rooms  rooms.Port
	chat   chatRelay
	cursor cursorRelay
	canvas canvasRelay
	out    sender
	logger *slog.Logger
}

func newSession(id string, port rooms.Port, chat chatRelay, cursor cursorRelay, canvas canvasRelay, out sender) *session {
	return &session{
		id:     id,
		rooms:  port,
		chat:   chat,
		cursor: cursor,
		canvas: canvas,
		out:    out,
		logger: slog.Default().With("component", "session", "connId", id),
	}
}

type chatMessagePayload struct {
	RoomID  string            `json:"roomId"`
	Message board.ChatMessage `json:"message"`
}

type typingPayload struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

func (s *session) dispatch(ctx context.Context, env board.Envelope) {
	switch env.Event {
	case "create-room":
		s.handleCreateRoom(ctx, env.Data)
	case "join-room":
		s.handleJoinRoom(ctx, env.Data)
	case "request-users-in-room":
		s.handleRequestUsers(ctx, env.Data)
	case "get-messages":
		s.handleGetMessages(env.Data)
	case "chat-message":
		s.handleChatMessage(env.Data)
	case "typing":
		s.handleTyping(env.Data)
	case "cursor-move":
		s.handleCursorMove(env.Data)
	case canvas.EventDrawStart, canvas.EventDrawMove, canvas.EventDrawEnd,
		canvas.EventDrawShape, canvas.EventClearCanvas,
		canvas.EventCanvasUpdate, canvas.EventCanvasClear:
		s.canvas.Handle(s.id, env.Event, env.Data)
	default:
		s.logger.Debug("unknown event", "event", env.Event)
	}
}

func (s *session) handleCreateRoom(ctx context.Context, data json.RawMessage) {
	roomID := decodeRoomID(data)
	resp, err := s.rooms.CreateRoom(ctx, roomID, s.id)
	if err != nil {
		s.logger.Error("create-room failed", "error", err)
		resp = rooms.RoomAckResponse{Success: false, Error: "internal error"}
	}
	s.ack("create-room:ack", resp)
}

func (s *session) handleJoinRoom(ctx context.Context, data json.RawMessage) {
	roomID := decodeRoomID(data)
	resp, err := s.rooms.JoinRoom(ctx, roomID, s.id)
	if err != nil {
		s.logger.Error("join-room failed", "error", err)
		resp = rooms.RoomAckResponse{Success: false, Error: "internal error"}
	}
	s.ack("join-room:ack", resp)
}

func (s *session) ack(event string, resp rooms.RoomAckResponse) {
	if err := s.out.Send(event, board.RoomAck{
		Success: resp.Success,
		RoomID:  resp.RoomID,
		Error:   resp.Error,
	}); err != nil {
		s.logger.Warn("ack send failed", "event", event, "error", err)
	}
}

func (s *session) handleRequestUsers(ctx context.Context, data json.RawMessage) {
	roomID := decodeRoomID(data)
	users, err := s.rooms.UsersInRoom(ctx, roomID)
	if err != nil {
		s.logger.Error("room-users lookup failed", "roomId", roomID, "error", err)
		return
	}
	if users == nil {
		users = []string{}
	}
	if err := s.out.Send("room-users", users); err != nil {
		s.logger.Warn("room-users send failed", "error", err)
	}
}

func (s *session) handleGetMessages(data json.RawMessage) {
	roomID := decodeRoomID(data)
	if err := s.out.Send("get-messages:ack", s.chat.Messages(roomID)); err != nil {
		s.logger.Warn("get-messages ack send failed", "error", err)
	}
}

func (s *session) handleChatMessage(data json.RawMessage) {
	var p chatMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Debug("malformed chat-message payload", "error", err)
		return
	}
	s.chat.HandleMessage(s.id, p.RoomID, p.Message)
}

func (s *session) handleTyping(data json.RawMessage) {
	var p typingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Debug("malformed typing payload", "error", err)
		return
	}
	s.chat.HandleTyping(s.id, p.RoomID, p.UserID, p.IsTyping)
}

func (s *session) handleCursorMove(data json.RawMessage) {
	var sample board.CursorSample
	if err := json.Unmarshal(data, &sample); err != nil {
		s.logger.Debug("malformed cursor-move payload", "error", err)
		return
	}
	s.cursor.HandleMove(s.id, sample)
}

// decodeRoomID accepts the two shapes clients send for room-scoped
// requests: a bare JSON string, or an object with a roomId field.
// Returns "" when neither decodes, which downstream validation treats
// as an invalid room id.
func decodeRoomID(data json.RawMessage) string {
	var roomID string
	if err := json.Unmarshal(data, &roomID); err == nil {
		return roomID
	}
	var p struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err == nil {
		return p.RoomID
	}
	return ""
}
