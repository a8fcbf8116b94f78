package broadcast

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/samadou-101/echo-board-sub000/events"
)

// BroadcastModule owns the WebSocket hub and turns internal bus events
// into frames for the affected room's clients.
type BroadcastModule struct {
	hub *Hub
}

// Compile-time interface checks.
var _ mono.Module = (*BroadcastModule)(nil)
var _ mono.EventConsumerModule = (*BroadcastModule)(nil)
var _ mono.HealthCheckableModule = (*BroadcastModule)(nil)

// NewModule creates a new BroadcastModule.
func NewModule() *BroadcastModule {
	return &BroadcastModule{
		hub: NewHub(),
	}
}

// Name returns the module name.
func (m *BroadcastModule) Name() string {
	return "broadcast"
}

// Start initializes the module.
func (m *BroadcastModule) Start(_ context.Context) error {
	log.Println("[broadcast] Module started - WebSocket hub ready")
	return nil
}

// Stop closes all client connections.
func (m *BroadcastModule) Stop(_ context.Context) error {
	clientCount := m.hub.ClientCount()
	m.hub.CloseAll()
	log.Printf("[broadcast] Module stopped - %d clients were connected", clientCount)
	return nil
}

// Health returns the health status.
func (m *BroadcastModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
			"active_rooms":      m.hub.RoomCount(),
		},
	}
}

// RegisterEventConsumers registers event handlers.
func (m *BroadcastModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomCreatedV1, m.handleRoomCreated, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomCreated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserJoinedV1, m.handleUserJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register UserJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserLeftV1, m.handleUserLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register UserLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.ChatMessageV1, m.handleChatMessage, m,
	); err != nil {
		return fmt.Errorf("failed to register ChatMessage consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TypingV1, m.handleTyping, m,
	); err != nil {
		return fmt.Errorf("failed to register Typing consumer: %w", err)
	}

	log.Println("[broadcast] Registered event consumers: RoomCreated, UserJoined, UserLeft, ChatMessage, Typing")
	return nil
}

// Event handlers

func (m *BroadcastModule) handleRoomCreated(_ context.Context, event events.RoomCreatedEvent, _ *mono.Msg) error {
	m.hub.BroadcastToRoom(event.RoomID, "room-users", event.Members, "")
	return nil
}

func (m *BroadcastModule) handleUserJoined(_ context.Context, event events.UserJoinedEvent, _ *mono.Msg) error {
	// Existing members get the notice, everyone gets the new list.
	m.hub.BroadcastToRoom(event.RoomID, "user-joined",
		fmt.Sprintf("%s joined the room", event.ConnID), event.ConnID)
	m.hub.BroadcastToRoom(event.RoomID, "room-users", event.Members, "")
	return nil
}

func (m *BroadcastModule) handleUserLeft(_ context.Context, event events.UserLeftEvent, _ *mono.Msg) error {
	m.hub.BroadcastToRoom(event.RoomID, "user-left",
		fmt.Sprintf("%s left the room", event.ConnID), event.ConnID)
	m.hub.BroadcastToRoom(event.RoomID, "room-users", event.Members, "")
	return nil
}

func (m *BroadcastModule) handleChatMessage(_ context.Context, event events.ChatMessageEvent, _ *mono.Msg) error {
	// The sender renders its own echo locally; never send it back.
	m.hub.BroadcastToRoom(event.RoomID, "chat-message", event.Message, event.SenderID)
	return nil
}

func (m *BroadcastModule) handleTyping(_ context.Context, event events.TypingEvent, _ *mono.Msg) error {
	m.hub.BroadcastToRoom(event.RoomID, "typing", typingPayload{
		UserID:   event.UserID,
		IsTyping: event.IsTyping,
	}, event.SenderID)
	return nil
}

// typingPayload is the frame sent to room members on a typing change.
type typingPayload struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// GetHub returns the WebSocket hub for the gateway module to use.
func (m *BroadcastModule) GetHub() *Hub {
	return m.hub
}
