package canvas

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
)

// Module wraps the drawing relay in the application lifecycle.
type Module struct {
	relay *Relay
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new canvas module.
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "canvas"
}

// SetBroadcaster injects the hub. Called from main.go before start.
func (m *Module) SetBroadcaster(hub Broadcaster) {
	m.relay = NewRelay(hub)
}

// Relay returns the relay for the gateway to dispatch into.
func (m *Module) Relay() *Relay {
	return m.relay
}

// Start validates wiring.
func (m *Module) Start(_ context.Context) error {
	if m.relay == nil {
		return fmt.Errorf("canvas: broadcaster not set")
	}
	log.Println("[canvas] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[canvas] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	relayed, dropped := m.relay.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"events_relayed": relayed,
			"events_dropped": dropped,
		},
	}
}
