package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Keys held per user. Values are JSON documents.
const (
	KeyLastReport     = "last_report_v1"
	KeyPracticePlan   = "practice_plan_v1"
	KeyLastFeedback   = "last_ai_feedback_v1"
	KeyLocalAttempts  = "interview_attempts_v1"
	SessionStoreTTL   = 30 * 24 * time.Hour
	sessionStoreScope = "user:%s:%s"
)

// ErrNotStored is returned by Get when nothing is stored under the key
var ErrNotStored = errors.New("nothing stored")

// SessionStore is a per-user key/value store for the latest interview
// artifacts. It is a cache, not the system of record.
type SessionStore interface {
	Get(ctx context.Context, userID, key string) ([]byte, error)
	Set(ctx context.Context, userID, key string, value []byte) error
	Clear(ctx context.Context, userID, key string) error
}

func scopedKey(userID, key string) string {
	return fmt.Sprintf(sessionStoreScope, userID, key)
}

// SaveJSON marshals value into the store
func SaveJSON(ctx context.Context, store SessionStore, userID, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return store.Set(ctx, userID, key, data)
}

// LoadJSON decodes the stored value. Missing keys, read errors and malformed
// JSON all report false.
func LoadJSON[T any](ctx context.Context, store SessionStore, userID, key string) (*T, bool) {
	data, err := store.Get(ctx, userID, key)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return &out, true
}

// ===== REDIS =====

type redisSessionStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisSessionStore(client redis.UniversalClient, logger *slog.Logger) SessionStore {
	return &redisSessionStore{client: client, ttl: SessionStoreTTL, logger: logger}
}

func (s *redisSessionStore) Get(ctx context.Context, userID, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, scopedKey(userID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotStored
	}
	if err != nil {
		s.logger.Error("Session store read failed", "user_id", userID, "key", key, "error", err)
		return nil, err
	}
	return data, nil
}

func (s *redisSessionStore) Set(ctx context.Context, userID, key string, value []byte) error {
	return s.client.Set(ctx, scopedKey(userID, key), value, s.ttl).Err()
}

func (s *redisSessionStore) Clear(ctx context.Context, userID, key string) error {
	return s.client.Del(ctx, scopedKey(userID, key)).Err()
}

// ===== MEMORY =====

type MemorySessionStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{values: map[string][]byte{}}
}

func (s *MemorySessionStore) Get(ctx context.Context, userID, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.values[scopedKey(userID, key)]
	if !ok {
		return nil, ErrNotStored
	}
	return append([]byte(nil), data...), nil
}

func (s *MemorySessionStore) Set(ctx context.Context, userID, key string, value []byte) error {
	s.mu.Lock()
	s.values[scopedKey(userID, key)] = append([]byte(nil), value...)
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Clear(ctx context.Context, userID, key string) error {
	s.mu.Lock()
	delete(s.values, scopedKey(userID, key))
	s.mu.Unlock()
	return nil
}
