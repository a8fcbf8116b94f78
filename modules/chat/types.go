package chat

import (
	"sync"

	board "github.com/samadou-101/echo-board-sub000/domain/board"
)

// maxHistorySize is the maximum number of messages kept per room.
const maxHistorySize = 100

// HistoryStore provides thread-safe, bounded per-room chat history.
// History is the only room-scoped state that outlives membership, so
// it is purged by an explicit Cleanup rather than by rooms emptying.
type HistoryStore struct {
	mu         sync.RWMutex
	histories  map[string][]board.ChatMessage
	maxHistory int
}

// NewHistoryStore creates a history store with the given cap.
func NewHistoryStore(maxHistory int) *HistoryStore {
	if maxHistory <= 0 {
		maxHistory = maxHistorySize
	}
	return &HistoryStore{
		histories:  make(map[string][]board.ChatMessage),
		maxHistory: maxHistory,
	}
}

// Append adds a message to the room's history, creating the buffer on
// first use and dropping the oldest entries past the cap. Insertion
// order is preserved; stored messages are never mutated.
func (s *HistoryStore) Append(roomID string, msg board.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.histories[roomID], msg)
	if len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}
	s.histories[roomID] = history
}

// History returns a copy of the room's messages in insertion order,
// empty when the room has none.
func (s *HistoryStore) History(roomID string) []board.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.histories[roomID]
	result := make([]board.ChatMessage, len(history))
	copy(result, history)
	return result
}

// Cleanup deletes the room's history entirely. No-op for rooms with no
// history, so it is safe to call any number of times.
func (s *HistoryStore) Cleanup(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.histories, roomID)
}

// RoomCount returns how many rooms currently hold history.
func (s *HistoryStore) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.histories)
}
