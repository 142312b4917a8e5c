package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"dispatchly/models"
)

// DefaultTTL bounds how long an idle call session survives. Sessions are
// short-lived by design; an hour outlives any realistic phone call.
const DefaultTTL = time.Hour

const sessionKeyPrefix = "call_session:"

// Store owns call session persistence. Sessions expire on their own; Delete
// exists for explicit cleanup after terminal turns.
type Store interface {
	// Get returns nil when the session is unknown or expired.
	Get(ctx context.Context, sessionID string) (*models.CallSession, error)
	Save(ctx context.Context, session *models.CallSession) error
	Delete(ctx context.Context, sessionID string) error
	// Lock serializes turns for one session and returns the unlock func.
	// Locks are per-session so concurrent calls never block each other.
	Lock(sessionID string) func()
}

// keyedLocks hands out one mutex per session ID. Entries are refcounted and
// removed when the last holder unlocks, so the map is bounded by the number
// of in-flight turns rather than the number of sessions ever seen.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sessionLock)}
}

func (k *keyedLocks) Lock(sessionID string) func() {
	k.mu.Lock()
	entry, ok := k.locks[sessionID]
	if !ok {
		entry = &sessionLock{}
		k.locks[sessionID] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, sessionID)
		}
		k.mu.Unlock()
	}
}

// held reports how many session IDs currently have a lock entry.
func (k *keyedLocks) held() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// RedisStore keeps sessions as JSON blobs with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	locks  *keyedLocks
}

// NewRedisStore builds a store on the given client. A non-positive ttl falls
// back to DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, locks: newKeyedLocks()}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.CallSession, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching session %s: %w", sessionID, err)
	}

	var session models.CallSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("error unmarshalling session %s: %w", sessionID, err)
	}
	return &session, nil
}

func (s *RedisStore) Save(ctx context.Context, session *models.CallSession) error {
	session.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error marshalling session %s: %w", session.ID, err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("error saving session %s: %w", session.ID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("error deleting session %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisStore) Lock(sessionID string) func() {
	return s.locks.Lock(sessionID)
}
