package store

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore tracks live sessions by ID. Deleting an entry revokes the
// matching token regardless of its JWT expiry.
type SessionStore interface {
	Save(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (uint, error)
	Delete(ctx context.Context, sessionID string) error
}

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Save(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error {
	return s.client.Set(ctx, "session:"+sessionID, strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (uint, error) {
	val, err := s.client.Get(ctx, "session:"+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}

	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrSessionNotFound
	}
	return uint(userID), nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, "session:"+sessionID).Err()
}

type memorySession struct {
	userID    uint
	expiresAt time.Time
}

// MemorySessionStore is the in-process implementation used by tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession)}
}

func (s *MemorySessionStore) Save(_ context.Context, sessionID string, userID uint, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = memorySession{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (uint, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok || time.Now().After(session.expiresAt) {
		return 0, ErrSessionNotFound
	}
	return session.userID, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
