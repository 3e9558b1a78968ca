package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "lessonflow:learner:"

// RedisBackend keeps each learner document as a JSON string under
// lessonflow:learner:<id>.
type RedisBackend struct {
	rdb *goredis.Client
}

// OpenRedis connects to addr and verifies the server answers.
func OpenRedis(ctx context.Context, addr string) (*RedisBackend, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisBackend{rdb: rdb}, nil
}

func redisKey(learnerID string) string {
	return redisKeyPrefix + learnerID
}

func (b *RedisBackend) Fetch(ctx context.Context, learnerID string) ([]byte, error) {
	raw, err := b.rdb.Get(ctx, redisKey(learnerID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return raw, nil
}

func (b *RedisBackend) Put(ctx context.Context, learnerID string, doc []byte) error {
	if err := b.rdb.Set(ctx, redisKey(learnerID), doc, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, learnerID string) error {
	if err := b.rdb.Del(ctx, redisKey(learnerID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (b *RedisBackend) Close() error {
	return b.rdb.Close()
}
