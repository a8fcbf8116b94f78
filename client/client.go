// Package client is a Go client for the echo-board relay server. It
// mirrors the browser client's realtime behaviors: acknowledged
// operations awaited with a timeout, coalesced update bursts, and
// smoothed remote-cursor rendering.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	board "github.com/samadou-101/echo-board-sub000/domain/board"
)

// DefaultAckTimeout bounds the wait for an acknowledged operation.
const DefaultAckTimeout = 5 * time.Second

var (
	// ErrClosed is returned when the connection has gone away.
	ErrClosed = errors.New("client: connection closed")
	// ErrAckTimeout is returned when the server does not acknowledge
	// in time. The operation may still have happened server-side;
	// retrying is the caller's call.
	ErrAckTimeout = errors.New("client: ack timeout")
	// ErrInFlight is returned when an acknowledged operation of the
	// same kind is already awaiting its reply. The connection is the
	// correlation scope, so only one may be outstanding at a time.
	ErrInFlight = errors.New("client: request already in flight")
)

// Handler receives a server-pushed event.
type Handler func(data json.RawMessage)

// Client is one WebSocket session with the relay server.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu       sync.Mutex
	pending  map[string]chan json.RawMessage // ack event -> waiter
	handlers map[string]Handler

	ackTimeout time.Duration
	done       chan struct{}
	closeOnce  sync.Once
}

// Dial connects to the relay server's /ws endpoint and starts the
// read loop.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", url, err)
	}

	c := &Client{
		conn:       conn,
		pending:    make(map[string]chan json.RawMessage),
		handlers:   make(map[string]Handler),
		ackTimeout: DefaultAckTimeout,
		done:       make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// On registers a handler for a server-pushed event (room-users,
// user-joined, chat-message, cursor-move, ...). Must be called before
// the event can arrive; handlers run on the read loop goroutine.
func (c *Client) On(event string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = h
}

// Emit sends a fire-and-forget event.
func (c *Client) Emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("client: marshal %s payload: %w", event, err)
	}
	return c.write(board.Envelope{Event: event, Data: data})
}

func (c *Client) write(env board.Envelope) error {
	frame, err := json.Marshal(env)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

// CreateRoom creates (or idempotently joins) a room and waits for the
// server's ack.
func (c *Client) CreateRoom(ctx context.Context, roomID string) (board.RoomAck, error) {
	return c.roomRequest(ctx, "create-room", roomID)
}

// JoinRoom joins an existing room and waits for the server's ack.
func (c *Client) JoinRoom(ctx context.Context, roomID string) (board.RoomAck, error) {
	return c.roomRequest(ctx, "join-room", roomID)
}

func (c *Client) roomRequest(ctx context.Context, event, roomID string) (board.RoomAck, error) {
	data, err := c.request(ctx, event, roomID)
	if err != nil {
		return board.RoomAck{}, err
	}
	var ack board.RoomAck
	if err := json.Unmarshal(data, &ack); err != nil {
		return board.RoomAck{}, fmt.Errorf("client: decode %s ack: %w", event, err)
	}
	return ack, nil
}

// Messages fetches the room's chat history.
func (c *Client) Messages(ctx context.Context, roomID string) ([]board.ChatMessage, error) {
	data, err := c.request(ctx, "get-messages", roomID)
	if err != nil {
		return nil, err
	}
	var msgs []board.ChatMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("client: decode get-messages ack: %w", err)
	}
	return msgs, nil
}

// SendChat submits a chat line to a room. The server never echoes it
// back; render locally before calling.
func (c *Client) SendChat(roomID string, msg board.ChatMessage) error {
	return c.Emit("chat-message", struct {
		RoomID  string            `json:"roomId"`
		Message board.ChatMessage `json:"message"`
	}{RoomID: roomID, Message: msg})
}

// SendTyping reports a typing-indicator change.
func (c *Client) SendTyping(roomID, userID string, isTyping bool) error {
	return c.Emit("typing", struct {
		RoomID   string `json:"roomId"`
		UserID   string `json:"userId"`
		IsTyping bool   `json:"isTyping"`
	}{RoomID: roomID, UserID: userID, IsTyping: isTyping})
}

// SendCursor sends one cursor sample. Wrap calls in a Throttle to
// keep the rate down.
func (c *Client) SendCursor(sample board.CursorSample) error {
	return c.Emit("cursor-move", sample)
}

// request sends an acknowledged operation and waits for its
// <event>:ack reply.
func (c *Client) request(ctx context.Context, event string, payload any) (json.RawMessage, error) {
	ackEvent := event + ":ack"

	c.mu.Lock()
	if _, exists := c.pending[ackEvent]; exists {
		c.mu.Unlock()
		return nil, ErrInFlight
	}
	waiter := make(chan json.RawMessage, 1)
	c.pending[ackEvent] = waiter
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, ackEvent)
		c.mu.Unlock()
	}()

	if err := c.Emit(event, payload); err != nil {
		return nil, err
	}

	timer := time.NewTimer(c.ackTimeout)
	defer timer.Stop()

	select {
	case data := <-waiter:
		return data, nil
	case <-timer.C:
		return nil, ErrAckTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	}
}

func (c *Client) readLoop() {
	defer c.closeOnce.Do(func() { close(c.done) })

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var env board.Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			continue
		}

		c.mu.Lock()
		waiter := c.pending[env.Event]
		handler := c.handlers[env.Event]
		c.mu.Unlock()

		if waiter != nil {
			waiter <- env.Data
			continue
		}
		if handler != nil {
			handler(env.Data)
		}
	}
}

// Close tears down the connection.
func (c *Client) Close() error {
	err := c.conn.Close()
	c.closeOnce.Do(func() { close(c.done) })
	return err
}
