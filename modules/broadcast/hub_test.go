package broadcast

import (
	"encoding/json"
	"sync"
	"testing"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	frame := make([]byte, len(data))
	copy(frame, data)
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// events returns the event names of every frame written so far.
func (f *fakeConn) events(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	var names []string
	for _, frame := range f.frames {
		var env struct {
			Event string `json:"event"`
		}
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("invalid frame %q: %v", frame, err)
		}
		names = append(names, env.Event)
	}
	return names
}

func register(h *Hub, id string) *fakeConn {
	conn := &fakeConn{}
	h.Register(NewClient(id, conn))
	return conn
}

func TestHub_RegisterJoinsSelfRoom(t *testing.T) {
	h := NewHub()
	register(h, "c1")

	if !h.RoomExists("c1") {
		t.Error("expected self-room c1 to exist after register")
	}
	if got := h.FirstRoom("c1"); got != "" {
		t.Errorf("FirstRoom() = %q, want empty before joining any room", got)
	}
}

func TestHub_JoinRoomMembershipOrder(t *testing.T) {
	h := NewHub()
	register(h, "c1")
	register(h, "c2")
	register(h, "c3")

	for _, id := range []string{"c1", "c2", "c3"} {
		if !h.JoinRoom(id, "room_1") {
			t.Fatalf("JoinRoom(%q) = false, want true", id)
		}
	}
	// Joining twice must not duplicate the member.
	h.JoinRoom("c2", "room_1")

	got := h.RoomMembers("room_1")
	want := []string{"c1", "c2", "c3"}
	if len(got) != len(want) {
		t.Fatalf("RoomMembers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RoomMembers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHub_JoinRoomUnknownConnection(t *testing.T) {
	h := NewHub()
	if h.JoinRoom("ghost", "room_1") {
		t.Error("JoinRoom() with unregistered connection should return false")
	}
	if h.RoomExists("room_1") {
		t.Error("failed join must not create the room")
	}
}

func TestHub_BroadcastExcludesSender(t *testing.T) {
	h := NewHub()
	sender := register(h, "sender")
	recv1 := register(h, "recv1")
	recv2 := register(h, "recv2")
	other := register(h, "other")

	h.JoinRoom("sender", "room_1")
	h.JoinRoom("recv1", "room_1")
	h.JoinRoom("recv2", "room_1")
	h.JoinRoom("other", "room_2")

	h.BroadcastToRoom("room_1", "cursor-move", map[string]any{"x": 1.0}, "sender")

	if got := len(sender.events(t)); got != 0 {
		t.Errorf("sender received %d frames, want 0", got)
	}
	for _, conn := range []*fakeConn{recv1, recv2} {
		events := conn.events(t)
		if len(events) != 1 || events[0] != "cursor-move" {
			t.Errorf("receiver events = %v, want [cursor-move]", events)
		}
	}
	if got := len(other.events(t)); got != 0 {
		t.Errorf("cross-room connection received %d frames, want 0", got)
	}
}

func TestHub_BroadcastWithoutExclusionReachesAll(t *testing.T) {
	h := NewHub()
	c1 := register(h, "c1")
	c2 := register(h, "c2")
	h.JoinRoom("c1", "room_1")
	h.JoinRoom("c2", "room_1")

	h.BroadcastToRoom("room_1", "room-users", []string{"c1", "c2"}, "")

	for _, conn := range []*fakeConn{c1, c2} {
		if got := len(conn.events(t)); got != 1 {
			t.Errorf("connection received %d frames, want 1", got)
		}
	}
}

func TestHub_UnregisterClearsMemberships(t *testing.T) {
	h := NewHub()
	register(h, "c1")
	register(h, "c2")
	h.JoinRoom("c1", "room_1")
	h.JoinRoom("c1", "room_2")
	h.JoinRoom("c2", "room_1")

	former := h.Unregister("c1")

	if len(former) != 2 || former[0] != "room_1" || former[1] != "room_2" {
		t.Errorf("Unregister() former rooms = %v, want [room_1 room_2]", former)
	}
	if got := h.RoomMembers("room_1"); len(got) != 1 || got[0] != "c2" {
		t.Errorf("room_1 members = %v, want [c2]", got)
	}
	// room_2 lost its last member and must cease to exist.
	if h.RoomExists("room_2") {
		t.Error("room_2 should not exist after its only member left")
	}
	if h.RoomExists("c1") {
		t.Error("self-room should be gone after unregister")
	}
	if h.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", h.ClientCount())
	}
}

func TestHub_UnregisterUnknownConnection(t *testing.T) {
	h := NewHub()
	if former := h.Unregister("ghost"); former != nil {
		t.Errorf("Unregister(ghost) = %v, want nil", former)
	}
}

func TestHub_FirstRoomSkipsSelfRoom(t *testing.T) {
	h := NewHub()
	register(h, "c1")
	h.JoinRoom("c1", "room_a")
	h.JoinRoom("c1", "room_b")

	if got := h.FirstRoom("c1"); got != "room_a" {
		t.Errorf("FirstRoom() = %q, want room_a", got)
	}

	rooms := h.ConnRooms("c1")
	if len(rooms) != 2 || rooms[0] != "room_a" || rooms[1] != "room_b" {
		t.Errorf("ConnRooms() = %v, want [room_a room_b]", rooms)
	}
}

func TestHub_SendTo(t *testing.T) {
	h := NewHub()
	c1 := register(h, "c1")

	if err := h.SendTo("c1", "room-users", []string{"c1"}); err != nil {
		t.Fatalf("SendTo() unexpected error: %v", err)
	}
	if err := h.SendTo("ghost", "room-users", nil); err != nil {
		t.Fatalf("SendTo() to unknown connection should be a no-op, got %v", err)
	}

	events := c1.events(t)
	if len(events) != 1 || events[0] != "room-users" {
		t.Errorf("events = %v, want [room-users]", events)
	}
}

func TestHub_CloseAll(t *testing.T) {
	h := NewHub()
	c1 := register(h, "c1")
	c2 := register(h, "c2")

	h.CloseAll()

	if !c1.closed || !c2.closed {
		t.Error("CloseAll() should close every connection")
	}
	if h.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", h.ClientCount())
	}
}
