package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the subset of the WebSocket connection the hub writes to.
// *websocket.Conn satisfies it; tests substitute a recorder.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one live connection known to the hub.
type Client struct {
	ID string

	conn    Conn
	writeMu sync.Mutex

	// rooms the client has joined, in join order. The first entry is
	// always the private self-room named by the connection id.
	// Guarded by the hub mutex.
	rooms []string
}

// NewClient wraps a connection for hub registration.
func NewClient(id string, conn Conn) *Client {
	return &Client{ID: id, conn: conn}
}

// Send marshals an envelope and writes it to the connection. Writes
// are serialized per client so the hub fan-out and direct acks from
// the session goroutine cannot interleave frames.
func (c *Client) Send(event string, payload any) error {
	data, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		return err
	}
	return c.write(data)
}

func (c *Client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// envelope is the outgoing wire frame. The incoming counterpart with
// raw data lives in domain/board.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub tracks live connections and their room memberships and fans
// messages out to room members. Membership is the only room state the
// server holds: a room exists exactly while its member list is
// non-empty, and it vanishes when the list empties.
type Hub struct {
	clients map[string]*Client  // connID -> client
	rooms   map[string][]string // roomID -> member connIDs, join order
	mu      sync.RWMutex

	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string][]string),
		logger:  slog.Default().With("component", "hub"),
	}
}

// Register adds a client and auto-joins it to its self-room, matching
// the transport-grouping behavior the browser clients rely on.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.ID] = c
	h.joinLocked(c, c.ID)
	h.logger.Debug("client registered", "connId", c.ID)
}

// Unregister removes a client and clears it from every room it had
// joined, deleting rooms that empty out. It returns the rooms the
// client belonged to, excluding the self-room, so the caller can
// notify the remaining members.
func (h *Hub) Unregister(connID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return nil
	}

	var former []string
	for _, roomID := range c.rooms {
		h.rooms[roomID] = remove(h.rooms[roomID], connID)
		if len(h.rooms[roomID]) == 0 {
			delete(h.rooms, roomID)
		}
		if roomID != connID {
			former = append(former, roomID)
		}
	}
	delete(h.clients, connID)
	h.logger.Debug("client unregistered", "connId", connID, "rooms", len(former))
	return former
}

// JoinRoom adds a connection to a room, creating the room as a side
// effect of its first member arriving. Joining twice is a no-op.
// Returns false when the connection is not registered.
func (h *Hub) JoinRoom(connID, roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return false
	}
	h.joinLocked(c, roomID)
	return true
}

func (h *Hub) joinLocked(c *Client, roomID string) {
	if contains(h.rooms[roomID], c.ID) {
		return
	}
	h.rooms[roomID] = append(h.rooms[roomID], c.ID)
	c.rooms = append(c.rooms, roomID)
}

// RoomMembers returns the room's membership snapshot in join order.
func (h *Hub) RoomMembers(roomID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make([]string, len(h.rooms[roomID]))
	copy(members, h.rooms[roomID])
	return members
}

// RoomExists reports whether the room has at least one member.
func (h *Hub) RoomExists(roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID]) > 0
}

// ConnRooms returns the rooms a connection has joined, excluding its
// self-room, in join order.
func (h *Hub) ConnRooms(connID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[connID]
	if !ok {
		return nil
	}
	var rooms []string
	for _, roomID := range c.rooms {
		if roomID != connID {
			rooms = append(rooms, roomID)
		}
	}
	return rooms
}

// FirstRoom returns the first room the connection joined after its
// self-room, or "" when it has joined none. A connection in several
// rooms is only ever relayed into this one.
func (h *Hub) FirstRoom(connID string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[connID]
	if !ok {
		return ""
	}
	for _, roomID := range c.rooms {
		if roomID != connID {
			return roomID
		}
	}
	return ""
}

// BroadcastToRoom sends an envelope to every member of a room except
// excludeID. Pass excludeID "" to reach everyone. Send failures are
// logged and skipped; a stuck receiver never blocks the rest.
func (h *Hub) BroadcastToRoom(roomID, event string, payload any, excludeID string) {
	data, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		h.logger.Error("marshal broadcast", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[roomID]))
	for _, connID := range h.rooms[roomID] {
		if connID == excludeID {
			continue
		}
		if c, ok := h.clients[connID]; ok {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.write(data); err != nil {
			h.logger.Warn("send failed", "connId", c.ID, "event", event, "error", err)
		}
	}
}

// SendTo sends an envelope to a single connection.
func (h *Hub) SendTo(connID, event string, payload any) error {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return c.Send(event, payload)
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomCount returns the number of non-empty rooms, self-rooms included.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// CloseAll closes every connection and resets the hub. Called on
// shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		_ = c.conn.Close()
	}
	h.clients = make(map[string]*Client)
	h.rooms = make(map[string][]string)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
