package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/samadou-101/echo-board-sub000/modules/broadcast"
	"github.com/samadou-101/echo-board-sub000/modules/canvas"
	"github.com/samadou-101/echo-board-sub000/modules/chat"
	"github.com/samadou-101/echo-board-sub000/modules/cursor"
	"github.com/samadou-101/echo-board-sub000/modules/gateway"
	"github.com/samadou-101/echo-board-sub000/modules/rooms"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== echo-board realtime relay ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	broadcastModule := broadcast.NewModule()
	roomsModule := rooms.NewModule()
	chatModule := chat.NewModule()
	cursorModule := cursor.NewModule()
	canvasModule := canvas.NewModule()
	gatewayModule := gateway.NewModule()

	// Manual wiring for what the ServiceContainer does not carry: the
	// hub is the transport grouping primitive every relay fans out
	// through, so it is injected directly.
	hub := broadcastModule.GetHub()
	roomsModule.SetMemberships(hub)
	cursorModule.SetBroadcaster(hub)
	canvasModule.SetBroadcaster(hub)
	gatewayModule.SetHub(hub)
	gatewayModule.SetChat(chatModule)
	gatewayModule.SetCursor(cursorModule.Relay())
	gatewayModule.SetCanvas(canvasModule.Relay())

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	app.Register(roomsModule)     // Membership services + event emitter
	app.Register(chatModule)      // History + chat event emitter
	app.Register(broadcastModule) // WebSocket hub + event consumer
	app.Register(cursorModule)    // Cursor relay
	app.Register(canvasModule)    // Drawing relay
	app.Register(gatewayModule)   // HTTP/WebSocket server (depends on rooms)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Println("  - Event Bus: NATS (internal pubsub)")
	log.Printf("  - NATS URL: %s", natsURL)
	log.Println("")
	log.Printf("WebSocket endpoint: ws://localhost:%s/ws", port)
	log.Println("  Acknowledged events: create-room, join-room, get-messages")
	log.Println("  Relay events: cursor-move, draw-start/move/end/shape,")
	log.Println("                clear-canvas, canvas:update, canvas:clear,")
	log.Println("                chat-message, typing")
	log.Println("")
	log.Printf("REST endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health")
	log.Println("  GET    /api/v1/rooms/:id/users")
	log.Println("  GET    /api/v1/rooms/:id/messages")
	log.Println("  DELETE /api/v1/rooms/:id/messages")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
