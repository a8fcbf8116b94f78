package gateway

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	board "github.com/samadou-101/echo-board-sub000/domain/board"
	"github.com/samadou-101/echo-board-sub000/modules/broadcast"
	"github.com/samadou-101/echo-board-sub000/modules/rooms"
)

// Handlers contains the WebSocket session handler and the small REST
// surface.
type Handlers struct {
	hub    *broadcast.Hub
	rooms  rooms.Port
	chat   chatRelay
	cursor cursorRelay
	canvas canvasRelay
	logger *slog.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(hub *broadcast.Hub, port rooms.Port, chat chatRelay, cursor cursorRelay, canvas canvasRelay) *Handlers {
	return &Handlers{
		hub:    hub,
		rooms:  port,
		chat:   chat,
		cursor: cursor,
		canvas: canvas,
		logger: slog.Default().With("component", "gateway"),
	}
}

// HandleWebSocket runs one client session: register with the hub, read
// envelopes until the socket closes, then clean up membership in every
// room the connection had joined. Cleanup runs exactly once per
// disconnect and covers all rooms at once.
func (h *Handlers) HandleWebSocket(c *websocket.Conn) {
	connID := uuid.New().String()
	client := broadcast.NewClient(connID, c)
	h.hub.Register(client)

	sess := newSession(connID, h.rooms, h.chat, h.cursor, h.canvas, client)
	ctx := context.Background()

	defer func() {
		former := h.hub.Unregister(connID)
		if err := h.rooms.Disconnect(ctx, connID, former); err != nil {
			h.logger.Error("disconnect cleanup failed", "connId", connID, "error", err)
		}
		_ = c.Close()
		h.logger.Info("client disconnected", "connId", connID)
	}()

	h.logger.Info("client connected", "connId", connID)

	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("read error", "connId", connID, "error", err)
			}
			break
		}

		var env board.Envelope
		if err := json.Unmarshal(msgBytes, &env); err != nil {
			h.logger.Debug("malformed envelope", "connId", connID, "error", err)
			continue
		}

		sess.dispatch(ctx, env)
	}
}

// REST Handlers

// GetRoomUsers handles GET /api/v1/rooms/:id/users.
func (h *Handlers) GetRoomUsers(c *fiber.Ctx) error {
	roomID := c.Params("id")
	users, err := h.rooms.UsersInRoom(c.UserContext(), roomID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to query room")
	}
	if users == nil {
		users = []string{}
	}
	return c.JSON(fiber.Map{
		"roomId": roomID,
		"users":  users,
		"total":  len(users),
	})
}

// GetRoomMessages handles GET /api/v1/rooms/:id/messages.
func (h *Handlers) GetRoomMessages(c *fiber.Ctx) error {
	roomID := c.Params("id")
	messages := h.chat.Messages(roomID)
	return c.JSON(fiber.Map{
		"roomId":   roomID,
		"messages": messages,
		"total":    len(messages),
	})
}

// DeleteRoomMessages handles DELETE /api/v1/rooms/:id/messages. This
// is the external cleanup call that purges a torn-down room's chat
// history; repeating it is harmless.
func (h *Handlers) DeleteRoomMessages(c *fiber.Ctx) error {
	h.chat.Cleanup(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "echo-board",
		"clients": h.hub.ClientCount(),
	})
}
