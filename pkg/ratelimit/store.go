package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoState is returned by a Store that has not recorded any quota yet.
var ErrNoState = errors.New("no quota state recorded")

// Store persists the latest QuotaState.
type Store interface {
	Load(ctx context.Context) (*QuotaState, error)
	Save(ctx context.Context, state *QuotaState) error
}

// MemoryStore keeps quota state for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	state *QuotaState
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored state, or ErrNoState.
func (m *MemoryStore) Load(_ context.Context) (*QuotaState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return nil, ErrNoState
	}
	s := *m.state
	return &s, nil
}

// Save replaces the stored state.
func (m *MemoryStore) Save(_ context.Context, state *QuotaState) error {
	s := *state
	m.mu.Lock()
	m.state = &s
	m.mu.Unlock()
	return nil
}

// RedisStore shares quota state through Redis.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a store backed by redisClient.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{redis: redisClient}
}

// Load reads the quota state from Redis.
// Returns ErrNoState if nothing has been stored yet.
func (r *RedisStore) Load(ctx context.Context) (*QuotaState, error) {
	values, err := r.redis.MGet(ctx, RedisKeyDailyLimit, RedisKeyRemaining, RedisKeyResetAt, RedisKeyLastUpdate).Result()
	if err != nil {
		return nil, fmt.Errorf("get quota state: %w", err)
	}
	if values[1] == nil {
		return nil, ErrNoState
	}

	ints := make([]int64, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected redis value type %T", v)
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse quota field %d: %w", i, err)
		}
		ints[i] = n
	}

	return &QuotaState{
		DailyLimit: int(ints[0]),
		Remaining:  int(ints[1]),
		ResetAt:    time.Unix(ints[2], 0),
		LastUpdate: time.Unix(ints[3], 0),
	}, nil
}

// Save writes the quota state atomically. Keys expire once the quota resets.
func (r *RedisStore) Save(ctx context.Context, state *QuotaState) error {
	ttl := state.TimeUntilReset()
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	pipe := r.redis.TxPipeline()
	pipe.Set(ctx, RedisKeyDailyLimit, state.DailyLimit, ttl)
	pipe.Set(ctx, RedisKeyRemaining, state.Remaining, ttl)
	pipe.Set(ctx, RedisKeyResetAt, state.ResetAt.Unix(), ttl)
	pipe.Set(ctx, RedisKeyLastUpdate, state.LastUpdate.Unix(), ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store quota state in redis: %w", err)
	}
	return nil
}
