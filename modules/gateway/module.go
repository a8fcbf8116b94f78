package gateway

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samadou-101/echo-board-sub000/modules/broadcast"
	"github.com/samadou-101/echo-board-sub000/modules/rooms"
)

// GatewayModule is the session coordinator: it owns the Fiber server,
// upgrades WebSocket connections, and binds connection lifecycle to
// the relays.
type GatewayModule struct {
	app      *fiber.App
	handlers *Handlers
	port     string

	hub       *broadcast.Hub
	roomsPort rooms.Port
	chat      chatRelay
	cursor    cursorRelay
	canvas    canvasRelay
}

// Compile-time interface checks.
var _ mono.Module = (*GatewayModule)(nil)
var _ mono.DependentModule = (*GatewayModule)(nil)
var _ mono.HealthCheckableModule = (*GatewayModule)(nil)

// NewModule creates a new GatewayModule.
func NewModule() *GatewayModule {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	return &GatewayModule{
		port: port,
	}
}

// Name returns the module name.
func (m *GatewayModule) Name() string {
	return "gateway"
}

// Dependencies returns the list of module dependencies.
func (m *GatewayModule) Dependencies() []string {
	return []string{"rooms"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *GatewayModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "rooms":
		m.roomsPort = rooms.NewAdapter(container)
	}
}

// SetHub sets the broadcast hub (called from main.go).
func (m *GatewayModule) SetHub(hub *broadcast.Hub) {
	m.hub = hub
}

// SetChat sets the chat relay (called from main.go).
func (m *GatewayModule) SetChat(chat chatRelay) {
	m.chat = chat
}

// SetCursor sets the cursor relay (called from main.go).
func (m *GatewayModule) SetCursor(cursor cursorRelay) {
	m.cursor = cursor
}

// SetCanvas sets the drawing relay (called from main.go).
func (m *GatewayModule) SetCanvas(canvas canvasRelay) {
	m.canvas = canvas
}

// Start initializes and starts the HTTP/WebSocket server.
func (m *GatewayModule) Start(_ context.Context) error {
	if m.hub == nil {
		return fmt.Errorf("gateway: broadcast hub not set")
	}
	if m.roomsPort == nil {
		return fmt.Errorf("gateway: rooms dependency not set")
	}
	if m.chat == nil || m.cursor == nil || m.canvas == nil {
		return fmt.Errorf("gateway: relay dependencies not set")
	}

	m.app = fiber.New(fiber.Config{
		AppName:               "echo-board",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		ReadTimeout:           30 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	m.app.Use(recover.New())
	m.app.Use(loggerMiddleware())

	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:5173"
	}
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	m.handlers = NewHandlers(m.hub, m.roomsPort, m.chat, m.cursor, m.canvas)
	m.registerRoutes()

	// Start server in goroutine with startup error detection
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("gateway server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		// Server started successfully
	}

	log.Printf("[gateway] Server started on :%s", m.port)
	return nil
}

// Stop gracefully shuts down the server.
func (m *GatewayModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	log.Println("[gateway] Server stopped")
	return nil
}

// Health returns the health status.
func (m *GatewayModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":              m.port,
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

// registerRoutes sets up all HTTP and WebSocket routes.
func (m *GatewayModule) registerRoutes() {
	m.app.Get("/health", m.handlers.HealthCheck)

	// WebSocket upgrade middleware
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handlers.HandleWebSocket))

	api := m.app.Group("/api/v1")
	api.Get("/rooms/:id/users", m.handlers.GetRoomUsers)
	api.Get("/rooms/:id/messages", m.handlers.GetRoomMessages)
	api.Delete("/rooms/:id/messages", m.handlers.DeleteRoomMessages)
}

// errorHandler handles Fiber errors globally.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}

// loggerMiddleware returns a Fiber middleware for request logging.
func loggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Skip logging for WebSocket upgrade requests
		if c.Get("Upgrade") == "websocket" {
			return c.Next()
		}
		err := c.Next()
		log.Printf("[gateway] %s %s %d", c.Method(), c.Path(), c.Response().StatusCode())
		return err
	}
}
