// Package contextx 提供了在 context.Context 中注入与提取请求级元数据
// （请求 ID、客户端 IP、User-Agent）的工具函数。
// 使用私有类型作为 Key，防止跨包的 Key 冲突。
package contextx

import (
	"context"
)

type contextKey int

const (
	RequestIDKey contextKey = iota // 请求唯一标识 Key。
	IPKey                          // 客户端 IP Key。
	UAKey                          // 用户代理 Key。
)

// KeyNames 映射 Key 到日志字段名。
var KeyNames = map[contextKey]string{
	RequestIDKey: "request_id",
	IPKey:        "client_ip",
	UAKey:        "user_agent",
}

// WithRequestID 将请求 ID 注入到 Context 中。
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID 从 Context 中提取请求 ID。
func GetRequestID(ctx context.Context) string {
	if val, ok := ctx.Value(RequestIDKey).(string); ok {
		return val
	}
	return ""
}

// WithIP 将客户端 IP 地址注入到 Context 中。
func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, IPKey, ip)
}

// GetIP 从 Context 中尝试提取客户端 IP，若不存在则返回默认回环地址。
func GetIP(ctx context.Context) string {
	if val, ok := ctx.Value(IPKey).(string); ok {
		return val
	}
	return "0.0.0.0"
}

// WithUserAgent 将 User-Agent 信息注入到 Context 中。
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, UAKey, ua)
}

// GetUserAgent 从 Context 中尝试提取 User-Agent，若不存在则返回 "Unknown"。
func GetUserAgent(ctx context.Context) string {
	if val, ok := ctx.Value(UAKey).(string); ok {
		return val
	}
	return "Unknown"
}
