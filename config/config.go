// Package config 提供了统一的配置加载与管理能力.
// 支持 TOML 文件 + 环境变量覆盖、结构体校验和 fsnotify 热更新。
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wyfcoding/toxfilter/logging"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config 全局顶级配置结构.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    toml:"server"`
	Log       LogConfig       `mapstructure:"log"       toml:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   toml:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"   toml:"tracing"`
	Data      DataConfig      `mapstructure:"data"      toml:"data"`
	Split     SplitConfig     `mapstructure:"split"     toml:"split"`
	Model     ModelConfig     `mapstructure:"model"     toml:"model"`
	Cache     CacheConfig     `mapstructure:"cache"     toml:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" toml:"ratelimit"`
}

// ServerConfig 定义服务器运行时的基础网络与环境参数.
type ServerConfig struct {
	Name        string `mapstructure:"name"        toml:"name"        validate:"required"`
	Environment string `mapstructure:"environment" toml:"environment" validate:"oneof=dev test prod"`
	HTTP        struct {
		Addr         string        `mapstructure:"addr"          toml:"addr"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"  toml:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout" toml:"write_timeout"`
		IdleTimeout  time.Duration `mapstructure:"idle_timeout"  toml:"idle_timeout"`
		Port         int           `mapstructure:"port"          toml:"port"          validate:"required,min=1,max=65535"`
	} `mapstructure:"http" toml:"http"`
}

// LogConfig 定义日志输出与切割策略.
type LogConfig struct {
	Level      string `mapstructure:"level"       toml:"level"       validate:"omitempty,oneof=debug info warn error"`
	File       string `mapstructure:"file"        toml:"file"`
	MaxSize    int    `mapstructure:"max_size"    toml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"     toml:"max_age"`
	Compress   bool   `mapstructure:"compress"    toml:"compress"`
}

// MetricsConfig 定义指标暴露参数.
type MetricsConfig struct {
	Port    string `mapstructure:"port"    toml:"port"`
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
}

// TracingConfig 定义分布式追踪参数.
type TracingConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" toml:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio"  toml:"sample_ratio"  validate:"min=0,max=1"`
	Enabled      bool    `mapstructure:"enabled"       toml:"enabled"`
}

// DataConfig 定义训练语料的数据源位置.
// 评论与人工评分按文档 ID 连接，格式为 TSV。
type DataConfig struct {
	CommentsPath string `mapstructure:"comments_path" toml:"comments_path" validate:"required"`
	RatingsPath  string `mapstructure:"ratings_path"  toml:"ratings_path"  validate:"required"`
}

// SplitConfig 定义训练/测试集划分参数.
// Seed 为显式注入的随机种子，保证划分可复现。
type SplitConfig struct {
	Ratio float64 `mapstructure:"ratio" toml:"ratio" validate:"gt=0,lt=1"`
	Seed  uint64  `mapstructure:"seed"  toml:"seed"`
}

// ModelConfig 定义分类模型的训练参数.
type ModelConfig struct {
	MinTokenFreq   int `mapstructure:"min_token_freq"  toml:"min_token_freq"  validate:"min=0"`
	LabelThreshold int `mapstructure:"label_threshold" toml:"label_threshold"`
	Workers        int `mapstructure:"workers"         toml:"workers"         validate:"min=0"`
}

// CacheConfig 定义在线分类结果的本地缓存参数.
type CacheConfig struct {
	TTL     time.Duration `mapstructure:"ttl"     toml:"ttl"`
	MaxMB   int           `mapstructure:"max_mb"  toml:"max_mb"`
	Enabled bool          `mapstructure:"enabled" toml:"enabled"`
}

// RateLimitConfig 定义在线接口的本地令牌桶限流与并发控制参数.
type RateLimitConfig struct {
	RPS           int  `mapstructure:"rps"            toml:"rps"`
	Burst         int  `mapstructure:"burst"          toml:"burst"`
	MaxConcurrent int  `mapstructure:"max_concurrent" toml:"max_concurrent"` // 0 表示不限制并发
	Enabled       bool `mapstructure:"enabled"        toml:"enabled"`
}

var (
	vInstance = viper.New()
	onReload  []func(*Config)
)

// RegisterReloadHook 注册配置热更新回调。
func RegisterReloadHook(hook func(*Config)) {
	if hook == nil {
		return
	}
	onReload = append(onReload, hook)
}

// setDefaults 注入各配置段的默认值，使最小配置文件即可运行。
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "toxfilter")
	v.SetDefault("server.environment", "dev")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.port", "9090")
	v.SetDefault("tracing.otlp_endpoint", "localhost:4317")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("split.ratio", 0.8)
	v.SetDefault("split.seed", 1)
	v.SetDefault("model.min_token_freq", 5)
	v.SetDefault("model.label_threshold", 0)
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.max_mb", 64)
	v.SetDefault("ratelimit.rps", 100)
	v.SetDefault("ratelimit.burst", 200)
}

// Load 加载并校验配置，同时开启配置文件热更新监听.
func Load(path string, conf *Config) error {
	vInstance.SetConfigFile(path)
	vInstance.SetConfigType("toml")

	vInstance.SetEnvPrefix("TOXFILTER")
	vInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vInstance.AutomaticEnv()

	setDefaults(vInstance)

	if err := vInstance.ReadInConfig(); err != nil {
		return fmt.Errorf("read config error: %w", err)
	}

	if err := vInstance.Unmarshal(conf); err != nil {
		return fmt.Errorf("unmarshal config error: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(conf); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	vInstance.WatchConfig()
	vInstance.OnConfigChange(func(event fsnotify.Event) {
		slog.Info("detecting config change", "file", event.Name)
		const debounceTimeout = 500 * time.Millisecond
		time.Sleep(debounceTimeout)

		if unmarshalErr := vInstance.Unmarshal(conf); unmarshalErr != nil {
			slog.Error("reload config unmarshal failed", "error", unmarshalErr)

			return
		}

		// 配置热更新时同步调整全局日志级别。
		logging.SetLevel(conf.Log.Level)

		if validateErr := validate.Struct(conf); validateErr != nil {
			slog.Error("reload config validation failed", "error", validateErr)
		} else {
			slog.Info("config hot-reloaded and validated successfully")
		}

		for _, hook := range onReload {
			hook(conf)
		}
	})

	return nil
}
