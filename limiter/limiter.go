// Package limiter 提供了限流器的通用接口与本地实现。
package limiter

import (
	"context"

	"golang.org/x/time/rate" // 基于令牌桶算法的限流库。
)

// Limiter 接口定义了限流器的通用行为。
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error) // 检查是否允许请求通过。
}

// LocalLimiter 是一个基于令牌桶算法的本地限流器。
// 适用于单实例部署；key 参数未被使用，限流对整个实例全局生效。
type LocalLimiter struct {
	limiter *rate.Limiter
}

// NewLocalLimiter 创建并返回一个新的 LocalLimiter 实例。
// r: 每秒生成的令牌数，代表允许的平均请求速率。
// b: 令牌桶的容量，代表允许的瞬时突发请求数。
func NewLocalLimiter(r rate.Limit, b int) *LocalLimiter {
	return &LocalLimiter{
		limiter: rate.NewLimiter(r, b),
	}
}

// Allow 检查一个请求是否被允许通过。
func (l *LocalLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.limiter.Allow(), nil
}

// SetRate 在运行时调整速率与突发容量，供配置热更新回调使用。
// rate.Limiter 内部加锁，调整与正在进行的 Allow 并发安全。
func (l *LocalLimiter) SetRate(r rate.Limit, b int) {
	l.limiter.SetLimit(r)
	l.limiter.SetBurst(b)
}
