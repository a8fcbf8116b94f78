package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"

	board "github.com/samadou-101/echo-board-sub000/domain/board"
)

// RoomCreatedEvent is emitted when a connection creates a room.
type RoomCreatedEvent struct {
	RoomID    string    `json:"room_id"`
	ConnID    string    `json:"conn_id"`
	Members   []string  `json:"members"`
	Timestamp time.Time `json:"timestamp"`
}

// UserJoinedEvent is emitted when a connection joins an existing room.
// Members is the refreshed membership list including the joiner, so
// consumers never have to query the membership manager back.
type UserJoinedEvent struct {
	RoomID    string    `json:"room_id"`
	ConnID    string    `json:"conn_id"`
	Members   []string  `json:"members"`
	Timestamp time.Time `json:"timestamp"`
}

// UserLeftEvent is emitted for each room a disconnecting connection
// belonged to. Members is the remaining membership.
type UserLeftEvent struct {
	RoomID    string    `json:"room_id"`
	ConnID    string    `json:"conn_id"`
	Members   []string  `json:"members"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatMessageEvent is emitted when a chat message has been accepted
// into a room's history. SenderID is the sender's connection id; the
// broadcast module uses it to suppress the echo back to the sender.
type ChatMessageEvent struct {
	RoomID    string            `json:"room_id"`
	SenderID  string            `json:"sender_id"`
	Message   board.ChatMessage `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
}

// TypingEvent is emitted on a typing-indicator change. Never stored.
type TypingEvent struct {
	RoomID   string `json:"room_id"`
	SenderID string `json:"sender_id"`
	UserID   string `json:"user_id"`
	IsTyping bool   `json:"is_typing"`
}

// Event definitions for the realtime board domain.
var (
	RoomCreatedV1 = helper.EventDefinition[RoomCreatedEvent](
		"rooms",
		"RoomCreated",
		"v1",
	)

	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"rooms",
		"UserJoined",
		"v1",
	)

	UserLeftV1 = helper.EventDefinition[UserLeftEvent](
		"rooms",
		"UserLeft",
		"v1",
	)

	ChatMessageV1 = helper.EventDefinition[ChatMessageEvent](
		"chat",
		"ChatMessage",
		"v1",
	)

	TypingV1 = helper.EventDefinition[TypingEvent](
		"chat",
		"Typing",
		"v1",
	)
)
