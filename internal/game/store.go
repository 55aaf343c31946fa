package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps games by session id.
type Store interface {
	Get(ctx context.Context, id string) (*Game, error)
	Put(ctx context.Context, id string, g *Game) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is a process local Store. Games are copied in and out so
// callers never share a record.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]*Game
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]*Game)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g.Clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, id string, g *Game) error {
	m.mu.Lock()
	m.games[id] = g.Clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.games, id)
	m.mu.Unlock()
	return nil
}

const redisKeyPrefix = "chess:game:"

// RedisStore keeps games as JSON values that expire ttl after the last write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Game, error) {
	v, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var g Game
	if err := json.Unmarshal(v, &g); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &g, nil
}

func (r *RedisStore) Put(ctx context.Context, id string, g *Game) error {
	v, err := json.Marshal(g)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, redisKeyPrefix+id, v, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, redisKeyPrefix+id).Err()
}
