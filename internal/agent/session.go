package agent

import (
	"context"
	"sync"
	"time"

	"github.com/mateolafalce/padelpro/internal/entity"
)

// SessionStore persists agent sessions per identity.
type SessionStore interface {
	Load(ctx context.Context, identity string) (*entity.AgentSession, error)
	Save(ctx context.Context, identity string, session *entity.AgentSession) error
	Clear(ctx context.Context, identity string) error
}

type memoryEntry struct {
	session entity.AgentSession
	expires time.Time
}

// MemorySessionStore is used when Redis is not configured. Sessions expire
// after ttl without activity.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (m *MemorySessionStore) Load(_ context.Context, identity string) (*entity.AgentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[identity]
	if !ok || (m.ttl > 0 && m.now().After(entry.expires)) {
		delete(m.sessions, identity)
		return &entity.AgentSession{}, nil
	}
	session := entry.session
	session.Verified = append([]entity.VerifiedSlot(nil), entry.session.Verified...)
	return &session, nil
}

func (m *MemorySessionStore) Save(_ context.Context, identity string, session *entity.AgentSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *session
	stored.Verified = append([]entity.VerifiedSlot(nil), session.Verified...)
	m.sessions[identity] = memoryEntry{session: stored, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemorySessionStore) Clear(_ context.Context, identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, identity)
	return nil
}
