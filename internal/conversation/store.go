package conversation

import (
	"context"
	"sync"
)

// maxHistoryEntries is how many turns are kept per sender.
const maxHistoryEntries = 10

// SessionStore keeps sessions between turns. Get returns NewSession() for
// unknown senders.
type SessionStore interface {
	Get(ctx context.Context, senderID string) (Session, error)
	Save(ctx context.Context, senderID string, s Session) error
	Delete(ctx context.Context, senderID string) error
}

// HistoryStore keeps the most recent chat turns per sender.
type HistoryStore interface {
	Get(ctx context.Context, senderID string) ([]Turn, error)
	Append(ctx context.Context, senderID string, turns ...Turn) error
	Clear(ctx context.Context, senderID string) error
}

// MemoryStore implements both stores in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	history  map[string][]Turn
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		history:  make(map[string][]Turn),
	}
}

// Sessions exposes the session half of the store.
func (m *MemoryStore) Sessions() SessionStore { return memorySessions{m} }

// History exposes the history half of the store.
func (m *MemoryStore) History() HistoryStore { return memoryHistory{m} }

// Count returns the number of active sessions.
func (m *MemoryStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type memorySessions struct{ m *MemoryStore }

func (s memorySessions) Get(_ context.Context, senderID string) (Session, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sess, ok := s.m.sessions[senderID]
	if !ok {
		return NewSession(), nil
	}
	sess.Results = append([]string(nil), sess.Results...)
	return sess, nil
}

func (s memorySessions) Save(_ context.Context, senderID string, sess Session) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sess.Results = append([]string(nil), sess.Results...)
	s.m.sessions[senderID] = sess
	return nil
}

func (s memorySessions) Delete(_ context.Context, senderID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.sessions, senderID)
	return nil
}

type memoryHistory struct{ m *MemoryStore }

func (h memoryHistory) Get(_ context.Context, senderID string) ([]Turn, error) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	return append([]Turn(nil), h.m.history[senderID]...), nil
}

func (h memoryHistory) Append(_ context.Context, senderID string, turns ...Turn) error {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	all := append(h.m.history[senderID], turns...)
	if len(all) > maxHistoryEntries {
		all = append([]Turn(nil), all[len(all)-maxHistoryEntries:]...)
	}
	h.m.history[senderID] = all
	return nil
}

func (h memoryHistory) Clear(_ context.Context, senderID string) error {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	delete(h.m.history, senderID)
	return nil
}
