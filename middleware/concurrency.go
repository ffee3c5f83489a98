package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/toxfilter/limiter"
	"github.com/wyfcoding/toxfilter/response"
)

// ConcurrencyLimitOptions 定义并发控制的配置项。
type ConcurrencyLimitOptions struct {
	WaitTimeout time.Duration
}

// ConcurrencyLimitWithLimiter 返回一个使用指定并发限流器的 Gin 中间件。
// 超出并发上限的请求在 WaitTimeout 内阻塞等待，超时后统一返回 503。
func ConcurrencyLimitWithLimiter(l limiter.ConcurrencyLimiter, opts ...ConcurrencyLimitOptions) gin.HandlerFunc {
	opt := ConcurrencyLimitOptions{}
	if len(opts) > 0 {
		opt = opts[0]
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		acquireCtx := ctx
		var cancel context.CancelFunc
		if opt.WaitTimeout > 0 {
			acquireCtx, cancel = context.WithTimeout(ctx, opt.WaitTimeout)
			defer cancel()
		}

		if err := l.Acquire(acquireCtx); err != nil {
			slog.WarnContext(ctx, "http concurrency limit exceeded", "error", err)
			response.ErrorWithStatus(c, http.StatusServiceUnavailable, "Service Busy", "concurrency limit exceeded")
			c.Abort()
			return
		}

		defer l.Release()
		c.Next()
	}
}

// NewConcurrencyLimitMiddleware 创建一个 Gin 并发限流中间件。
func NewConcurrencyLimitMiddleware(max int, waitTimeout time.Duration) gin.HandlerFunc {
	return ConcurrencyLimitWithLimiter(limiter.NewSemaphoreLimiter(max), ConcurrencyLimitOptions{WaitTimeout: waitTimeout})
}
