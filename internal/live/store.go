package live

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
)

// ============================================================
// State Store
// ============================================================

// StateStore хранит последнее значение каждого поля (last-write-wins per field).
type StateStore interface {
	Apply(ctx context.Context, u Update) error
	Get(ctx context.Context, key string) (map[string]any, error)
}

// ============================================================
// In-memory
// ============================================================

type MemoryStore struct {
	mu    sync.RWMutex
	state map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: make(map[string]map[string]any)}
}

func (s *MemoryStore) Apply(_ context.Context, u Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields, ok := s.state[u.Key]
	if !ok {
		fields = make(map[string]any, len(u.Fields))
		s.state[u.Key] = fields
	}
	for k, v := range u.Fields {
		fields[k] = v
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.state[key]))
	for k, v := range s.state[key] {
		out[k] = v
	}
	return out, nil
}

// ============================================================
// Redis
// ============================================================

// RedisStore кладет каждую сущность в hash "<prefix><key>", значение поля в JSON.
// HSET сам по себе дает last-write-wins по полю, поэтому несколько инстансов
// editor-сервиса видят одно и то же состояние.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Apply(ctx context.Context, u Update) error {
	if len(u.Fields) == 0 {
		return nil
	}

	values := make(map[string]interface{}, len(u.Fields))
	for k, v := range u.Fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode field %s: %w", k, err)
		}
		values[k] = string(raw)
	}

	return s.client.HSet(ctx, s.prefix+u.Key, values).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (map[string]any, error) {
	raw, err := s.client.HGetAll(ctx, s.prefix+key).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(raw))
	for k, v := range raw {
		var val any
		if err := json.Unmarshal([]byte(v), &val); err != nil {
			// значение записано не нами, отдаем как есть
			out[k] = v
			continue
		}
		out[k] = val
	}
	return out, nil
}
