package counter

import (
	"context"
)

// Store 低延迟计数存储抽象。
// 落库管道的正确性只依赖两点：GetDel 的原子性，以及落库侧的加法 upsert。
type Store interface {
	// Incr 原子自增，key 不存在时从 0 初始化，返回自增后的值
	Incr(ctx context.Context, key string) (int64, error)
	// IncrBy 原子增加 n
	IncrBy(ctx context.Context, key string, n int64) (int64, error)
	// Get 读取计数，不存在返回 0
	Get(ctx context.Context, key string) (int64, error)
	// GetDel 单次操作内读取并删除计数，不存在返回 0
	GetDel(ctx context.Context, key string) (int64, error)

	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)

	// HSet / HGetAll 遥测字段读写
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}
