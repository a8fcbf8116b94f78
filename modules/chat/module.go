package chat

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/go-monolith/mono"

	board "github.com/samadou-101/echo-board-sub000/domain/board"
	"github.com/samadou-101/echo-board-sub000/events"
)

// ChatModule relays chat messages and typing indicators and keeps the
// bounded per-room history for late joiners. Fan-out to room members
// happens in the broadcast module, which consumes the events published
// here; history is appended synchronously before publishing so a
// get-messages issued right after a chat-message always sees it.
type ChatModule struct {
	store    *HistoryStore
	eventBus mono.EventBus
	logger   *slog.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*ChatModule)(nil)
	_ mono.EventBusAwareModule   = (*ChatModule)(nil)
	_ mono.EventEmitterModule    = (*ChatModule)(nil)
	_ mono.HealthCheckableModule = (*ChatModule)(nil)
)

// NewModule creates a new ChatModule.
func NewModule() *ChatModule {
	return &ChatModule{
		store:  NewHistoryStore(maxHistorySize),
		logger: slog.Default().With("component", "chat"),
	}
}

// Name returns the module name.
func (m *ChatModule) Name() string {
	return "chat"
}

// SetEventBus receives the EventBus from the framework.
func (m *ChatModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *ChatModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.ChatMessageV1.ToBase(),
		events.TypingV1.ToBase(),
	}
}

// Start initializes the module.
func (m *ChatModule) Start(_ context.Context) error {
	log.Println("[chat] Module started")
	return nil
}

// Stop shuts down the module. In-memory history is deliberately lost.
func (m *ChatModule) Stop(_ context.Context) error {
	log.Println("[chat] Module stopped")
	return nil
}

// Health returns the health status.
func (m *ChatModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"rooms_with_history": m.store.RoomCount(),
		},
	}
}

// HandleMessage accepts a chat message from senderID for roomID.
// Dropped without a reply when the room is missing or the message was
// never supplied at all; an empty body with other fields set still
// relays. Chat is fire-and-forget.
func (m *ChatModule) HandleMessage(senderID, roomID string, msg board.ChatMessage) {
	if roomID == "" || msg == (board.ChatMessage{}) {
		m.logger.Debug("dropping malformed chat message", "connId", senderID, "roomId", roomID)
		return
	}

	m.store.Append(roomID, msg)

	event := events.ChatMessageEvent{
		RoomID:    roomID,
		SenderID:  senderID,
		Message:   msg,
		Timestamp: time.Now(),
	}
	if err := events.ChatMessageV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Error("failed to publish ChatMessage event", "error", err)
	}
}

// HandleTyping relays a typing-indicator change. Dropped when roomID
// or userID is missing; nothing is ever stored.
func (m *ChatModule) HandleTyping(senderID, roomID, userID string, isTyping bool) {
	if roomID == "" || userID == "" {
		m.logger.Debug("dropping malformed typing event", "connId", senderID, "roomId", roomID)
		return
	}

	event := events.TypingEvent{
		RoomID:   roomID,
		SenderID: senderID,
		UserID:   userID,
		IsTyping: isTyping,
	}
	if err := events.TypingV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Error("failed to publish Typing event", "error", err)
	}
}

// Messages returns the room's history snapshot for a get-messages ack.
func (m *ChatModule) Messages(roomID string) []board.ChatMessage {
	return m.store.History(roomID)
}

// Cleanup purges a room's history. Invoked by the REST surface when a
// governing process tears the room down; idempotent.
func (m *ChatModule) Cleanup(roomID string) {
	m.store.Cleanup(roomID)
	m.logger.Info("chat history purged", "roomId", roomID)
}
