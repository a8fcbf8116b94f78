package rooms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Port defines the membership operations the gateway needs.
type Port interface {
	CreateRoom(ctx context.Context, roomID, connID string) (RoomAckResponse, error)
	JoinRoom(ctx context.Context, roomID, connID string) (RoomAckResponse, error)
	UsersInRoom(ctx context.Context, roomID string) ([]string, error)
	Disconnect(ctx context.Context, connID string, rooms []string) error
}

// Adapter implements Port over the service container.
type Adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates a new Adapter.
func NewAdapter(container mono.ServiceContainer) Port {
	if container == nil {
		panic("rooms: ServiceContainer is nil")
	}
	return &Adapter{container: container}
}

// CreateRoom creates a room and joins the requester to it.
func (a *Adapter) CreateRoom(ctx context.Context, roomID, connID string) (RoomAckResponse, error) {
	req := CreateRoomRequest{RoomID: roomID, ConnID: connID}
	var resp RoomAckResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceCreateRoom,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return RoomAckResponse{}, fmt.Errorf("failed to create room: %w", err)
	}
	return resp, nil
}

// JoinRoom joins the requester to an existing room.
func (a *Adapter) JoinRoom(ctx context.Context, roomID, connID string) (RoomAckResponse, error) {
	req := JoinRoomRequest{RoomID: roomID, ConnID: connID}
	var resp RoomAckResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceJoinRoom,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return RoomAckResponse{}, fmt.Errorf("failed to join room: %w", err)
	}
	return resp, nil
}

// UsersInRoom returns the room's current membership.
func (a *Adapter) UsersInRoom(ctx context.Context, roomID string) ([]string, error) {
	req := RoomUsersRequest{RoomID: roomID}
	var resp RoomUsersResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceRoomUsers,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to get room users: %w", err)
	}
	return resp.Users, nil
}

// Disconnect reports a closed connection and its former rooms.
func (a *Adapter) Disconnect(ctx context.Context, connID string, rooms []string) error {
	req := DisconnectRequest{ConnID: connID, Rooms: rooms}
	var resp DisconnectResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceDisconnect,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("failed to report disconnect: %w", err)
	}
	return nil
}
