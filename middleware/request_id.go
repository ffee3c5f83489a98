package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/toxfilter/contextx"
	"github.com/wyfcoding/toxfilter/idgen"
)

const (
	HeaderXRequestID = "X-Request-ID"

	requestIDLength = 32
)

// RequestID 返回一个用于生成或传递请求 ID 的 Gin 中间件。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderXRequestID)
		if requestID == "" {
			if generated, err := idgen.GenerateRandomID(requestIDLength); err == nil {
				requestID = generated
			}
		}

		// 注入到 Context 中供访问日志和下游使用
		c.Request = c.Request.WithContext(contextx.WithRequestID(c.Request.Context(), requestID))

		// 设置到 Response Header 中，方便客户端追踪
		c.Header(HeaderXRequestID, requestID)

		c.Next()
	}
}
