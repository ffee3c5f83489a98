// Package server 提供了 HTTP 服务器的启动、管理和分类 API 的注册。
package server

import "context"

// Server 接口定义了一个通用的服务器行为契约。
// 任何实现了 Start 和 Stop 方法的类型都可以被视为一个 Server，
// 从而实现服务器生命周期的统一管理。
type Server interface {
	// Start 启动服务器。阻塞调用，直到服务器退出或上下文被取消。
	Start(ctx context.Context) error
	// Stop 优雅地停止服务器，等待正在处理的请求完成并释放资源。
	Stop(ctx context.Context) error
}
