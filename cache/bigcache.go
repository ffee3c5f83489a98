package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/allegro/bigcache/v3" // 高性能本地缓存库
)

// BigCache 实现了 `Cache` 接口，使用 `allegro/bigcache` 作为底层存储。
// 支持并发访问的纯内存缓存，适合缓存在线分类的预测结果。
type BigCache struct {
	cache *bigcache.BigCache
}

// NewBigCache 创建并返回一个新的 BigCache 实例。
// ttl: 缓存项的全局过期时间。BigCache 对所有项统一设置过期时间。
// maxMB: 缓存的最大容量（单位 MB），用于控制内存使用。
func NewBigCache(ttl time.Duration, maxMB int) (*BigCache, error) {
	config := bigcache.DefaultConfig(ttl)
	config.HardMaxCacheSize = maxMB
	config.CleanWindow = 5 * time.Minute // 过期项清理周期。

	cache, err := bigcache.New(context.Background(), config)
	if err != nil {
		return nil, err
	}

	return &BigCache{cache: cache}, nil
}

// Get 从缓存中获取指定键的值，未命中返回 ErrCacheMiss。
func (c *BigCache) Get(ctx context.Context, key string, value any) error {
	data, err := c.cache.Get(key)
	if err != nil {
		if err == bigcache.ErrEntryNotFound {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, value)
}

// Set 将一个键值对写入缓存，值以 JSON 序列化后存储。
// BigCache 不支持按键设置过期时间，expiration 参数被忽略，统一使用全局 TTL。
func (c *BigCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(key, data)
}

// Delete 从缓存中删除一个或多个键；键不存在不视为错误。
func (c *BigCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := c.cache.Delete(key); err != nil && err != bigcache.ErrEntryNotFound {
			return err
		}
	}
	return nil
}

// Close 关闭缓存实例，释放其占用的资源。
func (c *BigCache) Close() error {
	return c.cache.Close()
}
