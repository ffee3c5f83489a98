// Package cache 提供了缓存抽象和基于本地内存的实现，用于在线预测结果复用。
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss 表示键不存在于缓存中。
var ErrCacheMiss = errors.New("cache miss")

// Cache 接口定义了缓存的通用行为。
// value 参数必须是指针，命中时数据反序列化到其中。
type Cache interface {
	Get(ctx context.Context, key string, value any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
