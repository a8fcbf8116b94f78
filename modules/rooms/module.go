package rooms

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/samadou-101/echo-board-sub000/events"
)

// RoomsModule exposes room membership as request-reply services and
// publishes membership-change events for the broadcast module.
type RoomsModule struct {
	service  *Service
	eventBus mono.EventBus
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*RoomsModule)(nil)
	_ mono.ServiceProviderModule = (*RoomsModule)(nil)
	_ mono.EventBusAwareModule   = (*RoomsModule)(nil)
	_ mono.EventEmitterModule    = (*RoomsModule)(nil)
)

// NewModule creates a new RoomsModule.
func NewModule() *RoomsModule {
	return &RoomsModule{}
}

// Name returns the module name.
func (m *RoomsModule) Name() string {
	return "rooms"
}

// SetMemberships injects the transport grouping primitive (the
// broadcast hub). Called from main.go before the application starts.
func (m *RoomsModule) SetMemberships(members Memberships) {
	m.service = NewService(members)
}

// SetEventBus receives the EventBus from the framework.
func (m *RoomsModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *RoomsModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.RoomCreatedV1.ToBase(),
		events.UserJoinedV1.ToBase(),
		events.UserLeftV1.ToBase(),
	}
}

// Start validates wiring.
func (m *RoomsModule) Start(_ context.Context) error {
	if m.service == nil {
		return fmt.Errorf("rooms: memberships not set")
	}
	log.Println("[rooms] Module started")
	return nil
}

// Stop shuts down the module.
func (m *RoomsModule) Stop(_ context.Context) error {
	log.Println("[rooms] Module stopped")
	return nil
}

// RegisterServices registers request-reply services in the service container.
func (m *RoomsModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceCreateRoom,
		json.Unmarshal,
		json.Marshal,
		m.handleCreateRoom,
	); err != nil {
		return fmt.Errorf("failed to register create-room service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceJoinRoom,
		json.Unmarshal,
		json.Marshal,
		m.handleJoinRoom,
	); err != nil {
		return fmt.Errorf("failed to register join-room service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceRoomUsers,
		json.Unmarshal,
		json.Marshal,
		m.handleRoomUsers,
	); err != nil {
		return fmt.Errorf("failed to register room-users service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceDisconnect,
		json.Unmarshal,
		json.Marshal,
		m.handleDisconnect,
	); err != nil {
		return fmt.Errorf("failed to register disconnect service: %w", err)
	}

	return nil
}

func (m *RoomsModule) handleCreateRoom(_ context.Context, req CreateRoomRequest, _ *mono.Msg) (RoomAckResponse, error) {
	members, err := m.service.CreateRoom(req.RoomID, req.ConnID)
	if err != nil {
		return RoomAckResponse{Success: false, Error: err.Error()}, nil
	}

	event := events.RoomCreatedEvent{
		RoomID:    req.RoomID,
		ConnID:    req.ConnID,
		Members:   members,
		Timestamp: time.Now(),
	}
	if err := events.RoomCreatedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[rooms] Failed to publish RoomCreated event: %v", err)
	}

	log.Printf("[rooms] Room %s created by %s", req.RoomID, req.ConnID)
	return RoomAckResponse{Success: true, RoomID: req.RoomID}, nil
}

func (m *RoomsModule) handleJoinRoom(_ context.Context, req JoinRoomRequest, _ *mono.Msg) (RoomAckResponse, error) {
	members, err := m.service.JoinRoom(req.RoomID, req.ConnID)
	if err != nil {
		return RoomAckResponse{Success: false, Error: err.Error()}, nil
	}

	event := events.UserJoinedEvent{
		RoomID:    req.RoomID,
		ConnID:    req.ConnID,
		Members:   members,
		Timestamp: time.Now(),
	}
	if err := events.UserJoinedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[rooms] Failed to publish UserJoined event: %v", err)
	}

	log.Printf("[rooms] %s joined room %s", req.ConnID, req.RoomID)
	return RoomAckResponse{Success: true, RoomID: req.RoomID}, nil
}

func (m *RoomsModule) handleRoomUsers(_ context.Context, req RoomUsersRequest, _ *mono.Msg) (RoomUsersResponse, error) {
	return RoomUsersResponse{
		RoomID: req.RoomID,
		Users:  m.service.UsersInRoom(req.RoomID),
	}, nil
}

// handleDisconnect notifies each room the connection belonged to. The
// hub has already dropped the connection from every membership set, so
// recomputing membership here yields the post-disconnect view. Safe to
// call with an empty room list.
func (m *RoomsModule) handleDisconnect(_ context.Context, req DisconnectRequest, _ *mono.Msg) (DisconnectResponse, error) {
	for _, roomID := range req.Rooms {
		event := events.UserLeftEvent{
			RoomID:    roomID,
			ConnID:    req.ConnID,
			Members:   m.service.UsersInRoom(roomID),
			Timestamp: time.Now(),
		}
		if err := events.UserLeftV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[rooms] Failed to publish UserLeft event: %v", err)
		}
	}
	if len(req.Rooms) > 0 {
		log.Printf("[rooms] %s disconnected from %d room(s)", req.ConnID, len(req.Rooms))
	}
	return DisconnectResponse{Rooms: len(req.Rooms)}, nil
}
