package rooms

import "errors"

// Service names registered in the service container.
const (
	ServiceCreateRoom = "create-room"
	ServiceJoinRoom   = "join-room"
	ServiceRoomUsers  = "room-users"
	ServiceDisconnect = "disconnect"
)

// Validation errors. The messages travel verbatim inside acks to the
// browser client, so they stay user-facing English.
var (
	ErrInvalidRoomID     = errors.New("Room ID is required")
	ErrRoomNotFound      = errors.New("Room does not exist")
	ErrUnknownConnection = errors.New("connection not registered")
)

// CreateRoomRequest asks the membership manager to create a room and
// join the requesting connection to it.
type CreateRoomRequest struct {
	RoomID string `json:"room_id"`
	ConnID string `json:"conn_id"`
}

// JoinRoomRequest asks the membership manager to add a connection to
// an existing room.
type JoinRoomRequest struct {
	RoomID string `json:"room_id"`
	ConnID string `json:"conn_id"`
}

// RoomAckResponse is the in-band result of create-room and join-room.
// Validation failures ride in Error rather than a transport error so
// the gateway can forward them to the client unchanged.
type RoomAckResponse struct {
	Success bool   `json:"success"`
	RoomID  string `json:"room_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RoomUsersRequest asks for a room's current membership.
type RoomUsersRequest struct {
	RoomID string `json:"room_id"`
}

// RoomUsersResponse carries a membership snapshot in join order.
type RoomUsersResponse struct {
	RoomID string   `json:"room_id"`
	Users  []string `json:"users"`
}

// DisconnectRequest reports that a connection has gone away, along
// with the rooms it belonged to before the hub cleared it.
type DisconnectRequest struct {
	ConnID string   `json:"conn_id"`
	Rooms  []string `json:"rooms"`
}

// DisconnectResponse acknowledges disconnect processing.
type DisconnectResponse struct {
	Rooms int `json:"rooms"`
}
