package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
)

// ErrCacheMiss is returned by DetailsStore.Get when nothing is stored.
var ErrCacheMiss = errors.New("cache miss")

// DetailsStore is a shared second-level store for game details.
type DetailsStore interface {
	Get(ctx context.Context, id string) (*bgg.GameDetails, error)
	Set(ctx context.Context, d bgg.GameDetails) error
	Clear(ctx context.Context) error
}

// DetailsKeyPrefix is the Redis key prefix for cached game details.
const DetailsKeyPrefix = "secondturn:bgg:details:"

// RedisConfig holds configuration for the Redis details store.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	TTL       time.Duration
	KeyPrefix string
}

// RedisDetailsStore keeps GameDetails JSON in Redis with a fixed TTL.
type RedisDetailsStore struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// NewRedisDetailsStore connects to Redis and verifies the connection.
func NewRedisDetailsStore(ctx context.Context, cfg RedisConfig) (*RedisDetailsStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisDetailsStoreFromClient(client, cfg.TTL, cfg.KeyPrefix), nil
}

// NewRedisDetailsStoreFromClient wraps an existing client.
func NewRedisDetailsStoreFromClient(client *redis.Client, ttl time.Duration, keyPrefix string) *RedisDetailsStore {
	if ttl <= 0 {
		ttl = DefaultDetailsTTL
	}
	if keyPrefix == "" {
		keyPrefix = DetailsKeyPrefix
	}
	return &RedisDetailsStore{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisDetailsStore) key(id string) string {
	return s.keyPrefix + id
}

// Get loads details for id, returning ErrCacheMiss when absent.
func (s *RedisDetailsStore) Get(ctx context.Context, id string) (*bgg.GameDetails, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get details: %w", err)
	}

	var d bgg.GameDetails
	if err := json.Unmarshal(data, &d); err != nil {
		s.client.Del(ctx, s.key(id))
		return nil, fmt.Errorf("failed to parse details: %w", err)
	}
	return &d, nil
}

// Set stores details under their id.
func (s *RedisDetailsStore) Set(ctx context.Context, d bgg.GameDetails) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to serialize details: %w", err)
	}
	if err := s.client.Set(ctx, s.key(d.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store details: %w", err)
	}
	return nil
}

// Clear deletes every details key under the store's prefix.
func (s *RedisDetailsStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan details keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Close closes the underlying client.
func (s *RedisDetailsStore) Close() error {
	return s.client.Close()
}
