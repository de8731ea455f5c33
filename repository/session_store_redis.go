package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "solar:session:"

type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(addr string, ttl time.Duration) *RedisSessionStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisSessionStore{
		client: rdb,
		ttl:    ttl,
	}
}

// Ping checks that the server is reachable.
func (r *RedisSessionStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisSessionStore) Close() error {
	return r.client.Close()
}

func (r *RedisSessionStore) Get(ctx context.Context, sessionID string) (string, bool, error) {
	val, err := r.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisSessionStore) Set(ctx context.Context, sessionID string, applicationNumber string) error {
	return r.client.Set(ctx, sessionKeyPrefix+sessionID, applicationNumber, r.ttl).Err()
}
