package chat

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/go-monolith/mono"

	board "github.com/samadou-101/echo-board-sub000/domain/board"
	"github.com/samadou-101/echo-board-sub000/events"
)

// fakeEventBus records published messages; everything else is a stub.
type fakeEventBus struct {
	mu   sync.Mutex
	msgs []*mono.Msg
}

var _ mono.EventBus = (*fakeEventBus)(nil)

func (b *fakeEventBus) Publish(_ string, _ []byte) error { return nil }

func (b *fakeEventBus) PublishMsg(msg *mono.Msg) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
	return nil
}

func (b *fakeEventBus) Request(_ string, _ []byte, _ time.Duration) (*mono.Msg, error) {
	return nil, nil
}

func (b *fakeEventBus) RequestWithContext(_ context.Context, _ string, _ []byte) (*mono.Msg, error) {
	return nil, nil
}

func (b *fakeEventBus) RequestMsgWithContext(_ context.Context, _ *mono.Msg) (*mono.Msg, error) {
	return nil, nil
}

func (b *fakeEventBus) Subscribe(_ string, _ mono.MsgHandler) (mono.Subscription, error) {
	return nil, nil
}

func (b *fakeEventBus) SubscribeSync(_ string) (mono.Subscription, error) { return nil, nil }

func (b *fakeEventBus) QueueSubscribe(_, _ string, _ mono.MsgHandler) (mono.Subscription, error) {
	return nil, nil
}

func (b *fakeEventBus) QueueSubscribeSync(_, _ string) (mono.Subscription, error) {
	return nil, nil
}

func (b *fakeEventBus) ChanSubscribe(_ string, _ chan *mono.Msg) (mono.Subscription, error) {
	return nil, nil
}

func (b *fakeEventBus) EventStream() (mono.EventStream, error) { return nil, nil }

func (b *fakeEventBus) SetRuntimeContext(_ context.Context) {}

func (b *fakeEventBus) published() []*mono.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*mono.Msg, len(b.msgs))
	copy(out, b.msgs)
	return out
}

func newTestModule() (*ChatModule, *fakeEventBus) {
	m := NewModule()
	bus := &fakeEventBus{}
	m.SetEventBus(bus)
	return m, bus
}

func TestChatModule_HandleMessage(t *testing.T) {
	tests := []struct {
		name      string
		roomID    string
		msg       board.ChatMessage
		wantStore bool
	}{
		{
			name:      "normal message",
			roomID:    "room_1",
			msg:       board.ChatMessage{UserID: "c1", Body: "hello", Timestamp: 1},
			wantStore: true,
		},
		{
			name:      "empty body still relays",
			roomID:    "room_1",
			msg:       board.ChatMessage{UserID: "c1", Timestamp: 1},
			wantStore: true,
		},
		{
			name:      "missing room",
			roomID:    "",
			msg:       board.ChatMessage{UserID: "c1", Body: "hello"},
			wantStore: false,
		},
		{
			name:      "absent message",
			roomID:    "room_1",
			msg:       board.ChatMessage{},
			wantStore: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, bus := newTestModule()

			m.HandleMessage("c1", tt.roomID, tt.msg)

			stored := m.Messages(tt.roomID)
			msgs := bus.published()
			if !tt.wantStore {
				if len(stored) != 0 {
					t.Errorf("history = %+v, want empty", stored)
				}
				if len(msgs) != 0 {
					t.Errorf("published %d events, want 0", len(msgs))
				}
				return
			}

			if len(stored) != 1 || stored[0] != tt.msg {
				t.Errorf("history = %+v, want [%+v]", stored, tt.msg)
			}
			if len(msgs) != 1 {
				t.Fatalf("published %d events, want 1", len(msgs))
			}
			if msgs[0].Subject != events.ChatMessageV1.Subject {
				t.Errorf("subject = %q, want %q", msgs[0].Subject, events.ChatMessageV1.Subject)
			}
			var event events.ChatMessageEvent
			if err := json.Unmarshal(msgs[0].Data, &event); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if event.RoomID != tt.roomID || event.SenderID != "c1" || event.Message != tt.msg {
				t.Errorf("event = %+v, want the accepted message for %s", event, tt.roomID)
			}
		})
	}
}

func TestChatModule_HandleTyping(t *testing.T) {
	tests := []struct {
		name        string
		roomID      string
		userID      string
		wantPublish bool
	}{
		{name: "valid", roomID: "room_1", userID: "alice", wantPublish: true},
		{name: "missing room", roomID: "", userID: "alice", wantPublish: false},
		{name: "missing user", roomID: "room_1", userID: "", wantPublish: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, bus := newTestModule()

			m.HandleTyping("c1", tt.roomID, tt.userID, true)

			msgs := bus.published()
			if !tt.wantPublish {
				if len(msgs) != 0 {
					t.Errorf("published %d events, want 0", len(msgs))
				}
				return
			}
			if len(msgs) != 1 {
				t.Fatalf("published %d events, want 1", len(msgs))
			}
			if msgs[0].Subject != events.TypingV1.Subject {
				t.Errorf("subject = %q, want %q", msgs[0].Subject, events.TypingV1.Subject)
			}
			var event events.TypingEvent
			if err := json.Unmarshal(msgs[0].Data, &event); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if event.UserID != tt.userID || !event.IsTyping || event.SenderID != "c1" {
				t.Errorf("event = %+v, want typing by %s", event, tt.userID)
			}
		})
	}
}
