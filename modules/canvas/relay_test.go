package canvas

import (
	"encoding/json"
	"testing"
)

type broadcastCall struct {
	roomID    string
	event     string
	payload   any
	excludeID string
}

type fakeBroadcaster struct {
	calls []broadcastCall
}

func (f *fakeBroadcaster) BroadcastToRoom(roomID, event string, payload any, excludeID string) {
	f.calls = append(f.calls, broadcastCall{roomID, event, payload, excludeID})
}

func TestRelay_Handle(t *testing.T) {
	tests := []struct {
		name        string
		event       string
		data        string
		wantRelay   bool
		wantRoom    string
		wantPayload string // expected JSON of the rebroadcast payload
	}{
		{
			name:        "draw-start passes blob through",
			event:       EventDrawStart,
			data:        `{"roomId":"room_1","drawingData":{"tool":"pen","points":[[1,2]]}}`,
			wantRelay:   true,
			wantRoom:    "room_1",
			wantPayload: `{"tool":"pen","points":[[1,2]]}`,
		},
		{
			name:      "draw-start without room",
			event:     EventDrawStart,
			data:      `{"drawingData":{"tool":"pen"}}`,
			wantRelay: false,
		},
		{
			name:      "draw-start without drawing data",
			event:     EventDrawStart,
			data:      `{"roomId":"room_1"}`,
			wantRelay: false,
		},
		{
			name:      "draw-start with null drawing data",
			event:     EventDrawStart,
			data:      `{"roomId":"room_1","drawingData":null}`,
			wantRelay: false,
		},
		{
			name:        "draw-shape passes blob through",
			event:       EventDrawShape,
			data:        `{"roomId":"room_1","drawingData":{"shape":"rect"}}`,
			wantRelay:   true,
			wantRoom:    "room_1",
			wantPayload: `{"shape":"rect"}`,
		},
		{
			name:        "draw-move strips room id",
			event:       EventDrawMove,
			data:        `{"roomId":"room_1","point":{"x":5,"y":6},"userId":"c1","color":"#ff0000","lineWidth":3}`,
			wantRelay:   true,
			wantRoom:    "room_1",
			wantPayload: `{"point":{"x":5,"y":6},"userId":"c1","color":"#ff0000","lineWidth":3}`,
		},
		{
			name:        "draw-move without optional fields",
			event:       EventDrawMove,
			data:        `{"roomId":"room_1","point":{"x":5,"y":6},"userId":"c1"}`,
			wantRelay:   true,
			wantRoom:    "room_1",
			wantPayload: `{"point":{"x":5,"y":6},"userId":"c1"}`,
		},
		{
			name:      "draw-move without point",
			event:     EventDrawMove,
			data:      `{"roomId":"room_1","userId":"c1"}`,
			wantRelay: false,
		},
		{
			name:      "draw-move without user",
			event:     EventDrawMove,
			data:      `{"roomId":"room_1","point":{"x":1,"y":2}}`,
			wantRelay: false,
		},
		{
			name:        "draw-end keeps only user id",
			event:       EventDrawEnd,
			data:        `{"roomId":"room_1","userId":"c1"}`,
			wantRelay:   true,
			wantRoom:    "room_1",
			wantPayload: `{"userId":"c1"}`,
		},
		{
			name:        "clear-canvas has no payload",
			event:       EventClearCanvas,
			data:        `{"roomId":"room_1","userId":"c1"}`,
			wantRelay:   true,
			wantRoom:    "room_1",
			wantPayload: `null`,
		},
		{
			name:      "clear-canvas without user",
			event:     EventClearCanvas,
			data:      `{"roomId":"room_1"}`,
			wantRelay: false,
		},
		{
			name:        "canvas update passes snapshot through",
			event:       EventCanvasUpdate,
			data:        `{"roomId":"room_1","json":{"objects":[],"version":"5.3"}}`,
			wantRelay:   true,
			wantRoom:    "room_1",
			wantPayload: `{"objects":[],"version":"5.3"}`,
		},
		{
			name:      "canvas update without snapshot",
			event:     EventCanvasUpdate,
			data:      `{"roomId":"room_1"}`,
			wantRelay: false,
		},
		{
			name:        "canvas clear echoes room id",
			event:       EventCanvasClear,
			data:        `{"roomId":"room_1"}`,
			wantRelay:   true,
			wantRoom:    "room_1",
			wantPayload: `{"roomId":"room_1"}`,
		},
		{
			name:      "canvas clear without room",
			event:     EventCanvasClear,
			data:      `{}`,
			wantRelay: false,
		},
		{
			name:      "unknown event",
			event:     "draw-unknown",
			data:      `{"roomId":"room_1"}`,
			wantRelay: false,
		},
		{
			name:      "malformed json",
			event:     EventDrawStart,
			data:      `{not json`,
			wantRelay: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := &fakeBroadcaster{}
			relay := NewRelay(hub)

			relay.Handle("sender", tt.event, json.RawMessage(tt.data))

			if !tt.wantRelay {
				if len(hub.calls) != 0 {
					t.Fatalf("got %d broadcasts, want 0", len(hub.calls))
				}
				if relayed, dropped := relay.Stats(); relayed != 0 || dropped != 1 {
					t.Errorf("Stats() = (%d, %d), want (0, 1)", relayed, dropped)
				}
				return
			}

			if len(hub.calls) != 1 {
				t.Fatalf("got %d broadcasts, want 1", len(hub.calls))
			}
			call := hub.calls[0]
			if call.roomID != tt.wantRoom {
				t.Errorf("room = %q, want %q", call.roomID, tt.wantRoom)
			}
			if call.event != tt.event {
				t.Errorf("event = %q, want %q", call.event, tt.event)
			}
			if call.excludeID != "sender" {
				t.Errorf("excludeID = %q, want sender", call.excludeID)
			}

			got, err := json.Marshal(call.payload)
			if err != nil {
				t.Fatalf("marshal payload: %v", err)
			}
			if string(got) != tt.wantPayload {
				t.Errorf("payload = %s, want %s", got, tt.wantPayload)
			}
		})
	}
}
