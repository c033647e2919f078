package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStorageKey is where the key lives in shared storage.
const DefaultStorageKey = "apilens_api_key"

var ErrNoKey = errors.New("no stored api key")

// Store persists a single API key.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, apiKey string) error
	Remove(ctx context.Context) error
}

// MemoryStore keeps the key for the process lifetime.
type MemoryStore struct {
	mu  sync.RWMutex
	key string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == "" {
		return "", ErrNoKey
	}
	return s.key, nil
}

func (s *MemoryStore) Save(_ context.Context, apiKey string) error {
	s.mu.Lock()
	s.key = apiKey
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Remove(_ context.Context) error {
	s.mu.Lock()
	s.key = ""
	s.mu.Unlock()
	return nil
}

// RedisStore shares the key between instances.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultStorageKey
	}
	return &RedisStore{client: client, key: key}
}

// DialRedis parses url and pings the server.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	key, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoKey
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return key, nil
}

func (s *RedisStore) Save(ctx context.Context, apiKey string) error {
	if err := s.client.Set(ctx, s.key, apiKey, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key, err)
	}
	return nil
}
