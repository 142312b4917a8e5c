package session

import (
	"context"
	"sync"
	"time"

	"dispatchly/models"
)

// InMemoryStore backs development setups and tests. Entries expire lazily on
// read, mirroring the Redis TTL behavior.
type InMemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	locks    *keyedLocks
}

type memoryEntry struct {
	session   models.CallSession
	expiresAt time.Time
}

func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		locks:    newKeyedLocks(),
	}
}

func (s *InMemoryStore) Get(_ context.Context, sessionID string) (*models.CallSession, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil, nil
	}
	session := entry.session
	return &session, nil
}

func (s *InMemoryStore) Save(_ context.Context, session *models.CallSession) error {
	session.UpdatedAt = time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = memoryEntry{
		session:   *session,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *InMemoryStore) Lock(sessionID string) func() {
	return s.locks.Lock(sessionID)
}
