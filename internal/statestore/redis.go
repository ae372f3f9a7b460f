package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Eugenepoly/market-agent/pkg/types"
)

// RedisConfig holds connection settings for the Redis backend.
type RedisConfig struct {
	// URL is a redis:// connection string.
	URL      string
	Password string
	DB       int

	// Prefix namespaces all keys (default "workflow").
	Prefix string

	// TTL expires documents after the given duration (0 = no expiry).
	TTL time.Duration
}

// RedisStore persists workflow contexts in Redis. Each context is a JSON
// document under <prefix>:ctx:<id>; a sorted set scored by creation time
// provides newest-first listing.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects and verifies the connection with a ping.
func NewRedisStore(cfg *RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "workflow"
	}

	return &RedisStore{client: client, prefix: prefix, ttl: cfg.TTL}, nil
}

func (s *RedisStore) ctxKey(id string) string { return s.prefix + ":ctx:" + id }
func (s *RedisStore) indexKey() string        { return s.prefix + ":index" }

func (s *RedisStore) Put(ctx context.Context, wc *types.WorkflowContext) error {
	if !validID(wc.ID) {
		return fmt.Errorf("invalid workflow id %q", wc.ID)
	}

	data, err := json.Marshal(wc)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.ctxKey(wc.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), redis.Z{
		Score:  float64(wc.CreatedAt.UnixNano()),
		Member: wc.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*types.WorkflowContext, error) {
	data, err := s.client.Get(ctx, s.ctxKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var wc types.WorkflowContext
	if err := json.Unmarshal(data, &wc); err != nil {
		return nil, fmt.Errorf("decode context %s: %w", id, err)
	}
	return &wc, nil
}

func (s *RedisStore) List(ctx context.Context) ([]*types.WorkflowContext, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}

	out := make([]*types.WorkflowContext, 0, len(ids))
	for _, id := range ids {
		wc, err := s.Get(ctx, id)
		if err != nil {
			// Expired documents linger in the index; drop them lazily.
			if errors.Is(err, ErrNotFound) {
				s.client.ZRem(ctx, s.indexKey(), id)
				continue
			}
			return nil, err
		}
		out = append(out, wc)
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, s.ctxKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	s.client.ZRem(ctx, s.indexKey(), id)
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
