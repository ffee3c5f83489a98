// Package logging 提供了统一的结构化日志（slog）封装，支持日志切割和OpenTelemetry追踪上下文注入。
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"go.opentelemetry.io/otel/trace" // OpenTelemetry追踪
)

var (
	// defaultLogger 是全局默认的Logger实例，采用单例模式。
	defaultLogger *Logger
	// once 用于确保InitLogger函数只被执行一次，保证defaultLogger的单例性。
	once sync.Once
	// levelVar 是全局日志级别，支持配置热更新时动态调整。
	levelVar slog.LevelVar
)

// parseLevel 将字符串日志级别解析为 slog.Level，无法识别时回退为 Info。
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel 动态调整全局日志级别，供配置热更新回调使用。
func SetLevel(level string) {
	levelVar.Set(parseLevel(level))
}

// Config 定义日志配置
type Config struct {
	Service    string
	Module     string
	Level      string
	File       string // 日志文件路径，为空则只输出到 stdout
	MaxSize    int    // 每个日志文件最大尺寸 (MB)
	MaxBackups int    // 保留旧日志文件的最大个数
	MaxAge     int    // 保留旧日志文件的最大天数
	Compress   bool   // 是否压缩旧日志
}

// Logger 结构体封装了原生的 `*slog.Logger`，并添加了服务名和模块名，方便在日志中区分来源。
type Logger struct {
	*slog.Logger
	Service string // 服务名称
	Module  string // 模块名称
}

// TraceHandler 是一个自定义的 `slog.Handler` 装饰器，用于从 `context.Context` 中提取并注入 `trace_id` 和 `span_id` 到日志记录中。
type TraceHandler struct {
	slog.Handler
}

// Handle 方法实现了 `slog.Handler` 接口，在处理日志记录之前，
// 会尝试从上下文获取OpenTelemetry的SpanContext，如果有效，则将trace_id和span_id添加到日志属性中。
func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

// NewFromConfig 创建一个新的Logger实例。
// 配置了文件路径时，日志会同时写入 stdout 和切割文件（通过 multiHandler 复用）。
func NewFromConfig(cfg Config) *Logger {
	levelVar.Set(parseLevel(cfg.Level))

	replaceAttr := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			a.Key = "timestamp"
		}
		return a
	}

	opts := &slog.HandlerOptions{
		Level:       &levelVar,
		ReplaceAttr: replaceAttr,
	}

	handler := slog.Handler(slog.NewJSONHandler(os.Stdout, opts))

	// 如果配置了文件路径，则使用 lumberjack 进行日志切割，并与 stdout 双写
	if cfg.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize, // MB
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge, // days
			Compress:   cfg.Compress,
		}
		handler = newMultiHandler(handler, slog.NewJSONHandler(fileWriter, opts))
	}

	// 使用TraceHandler装饰
	traceHandler := &TraceHandler{Handler: handler}

	logger := slog.New(traceHandler).With(
		slog.String("service", cfg.Service),
		slog.String("module", cfg.Module),
	)

	return &Logger{
		Logger:  logger,
		Service: cfg.Service,
		Module:  cfg.Module,
	}
}

// NewLogger 是创建一个带有简单参数的 logger 的兼容别名。
func NewLogger(service, module string, level ...string) *Logger {
	lvl := "info"
	if len(level) > 0 {
		lvl = level[0]
	}
	return NewFromConfig(Config{
		Service: service,
		Module:  module,
		Level:   lvl,
	})
}

// InitLogger 初始化全局默认日志记录器
func InitLogger(service, module string, level ...string) {
	once.Do(func() {
		lvl := "info"
		if len(level) > 0 {
			lvl = level[0]
		}
		defaultLogger = NewFromConfig(Config{
			Service: service,
			Module:  module,
			Level:   lvl,
		})
		slog.SetDefault(defaultLogger.Logger)
	})
}

// EnsureDefaultLogger 确保默认日志记录器已初始化
func EnsureDefaultLogger() {
	if defaultLogger == nil {
		InitLogger("toxfilter", "default", "info")
	}
}

// Default 返回默认日志记录器实例
func Default() *Logger {
	EnsureDefaultLogger()
	return defaultLogger
}

// Info 记录 Info 级别日志
func Info(ctx context.Context, msg string, args ...any) {
	EnsureDefaultLogger()
	defaultLogger.InfoContext(ctx, msg, args...)
}

// Warn 记录 Warn 级别日志
func Warn(ctx context.Context, msg string, args ...any) {
	EnsureDefaultLogger()
	defaultLogger.WarnContext(ctx, msg, args...)
}

// Error 记录 Error 级别日志
func Error(ctx context.Context, msg string, args ...any) {
	EnsureDefaultLogger()
	defaultLogger.ErrorContext(ctx, msg, args...)
}

// Debug 记录 Debug 级别日志
func Debug(ctx context.Context, msg string, args ...any) {
	EnsureDefaultLogger()
	defaultLogger.DebugContext(ctx, msg, args...)
}

// LogDuration 记录操作耗时
func LogDuration(ctx context.Context, operation string, args ...any) func() {
	start := time.Now()
	return func() {
		logArgs := append(args, "duration", time.Since(start))
		Info(ctx, fmt.Sprintf("%s finished", operation), logArgs...)
	}
}
