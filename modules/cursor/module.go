package cursor

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
)

// Module wraps the cursor relay in the application lifecycle.
type Module struct {
	relay *Relay
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new cursor module.
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "cursor"
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
		return fmt.Errorf("cursor: broadcaster not set")
	}
	log.Println("[cursor] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[cursor] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	relayed, dropped := m.relay.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"samples_relayed": relayed,
			"samples_dropped": dropped,
		},
	}
}
