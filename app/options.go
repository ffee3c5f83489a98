package app

import "github.com/wyfcoding/toxfilter/server"

// Option 是一个函数类型，用于配置应用程序选项。
type Option func(*options)

// options 是应用程序的内部配置结构体。
type options struct {
	servers  []server.Server // 应用程序管理的服务器列表。
	cleanups []func()        // 应用程序关闭时需要执行的清理函数列表。
}

// WithServer 向应用程序添加一个或多个 `server.Server` 实例。
// 这些服务器将在应用程序启动时被启动，并在应用程序关闭时被优雅地关闭。
func WithServer(servers ...server.Server) Option {
	return func(o *options) {
		o.servers = append(o.servers, servers...)
	}
}

// WithCleanup 向应用程序添加一个清理函数，在应用程序正常关闭时执行。
func WithCleanup(cleanup func()) Option {
	return func(o *options) {
		o.cleanups = append(o.cleanups, cleanup)
	}
}
