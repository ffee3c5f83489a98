package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders 返回 HTTP 安全响应头中间件。
// 分类 API 是纯 JSON 接口，直接采用保守默认值即可。
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-XSS-Protection", "0")
		c.Header("Referrer-Policy", "no-referrer")

		c.Next()
	}
}
