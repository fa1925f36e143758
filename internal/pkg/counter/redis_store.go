package counter

import (
	"Atheneum/internal/pkg/redis"
	"context"
)

// RedisStore 基于全局 Redis 客户端的 Store 实现
type RedisStore struct{}

func NewRedisStore() *RedisStore {
	return &RedisStore{}
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return redis.Incr(ctx, key)
}

func (s *RedisStore) IncrBy(ctx context.Context, key string, n int64) (int64, error) {
	return redis.IncrBy(ctx, key, n)
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, error) {
	return redis.GetInt64(ctx, key)
}

func (s *RedisStore) GetDel(ctx context.Context, key string) (int64, error) {
	return redis.GetDel(ctx, key)
}

func (s *RedisStore) SAdd(ctx context.Context, key string, members ...string) error {
	return redis.SAdd(ctx, key, members...)
}

func (s *RedisStore) SRem(ctx context.Context, key string, members ...string) error {
	return redis.SRem(ctx, key, members...)
}

func (s *RedisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	return redis.SMembers(ctx, key)
}

func (s *RedisStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	return redis.HSet(ctx, key, fields)
}

func (s *RedisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return redis.HGetAll(ctx, key)
}
