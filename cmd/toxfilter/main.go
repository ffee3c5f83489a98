// toxfilter 训练一个基于朴素贝叶斯的评论毒性分类模型，并可选地
// 以 HTTP 服务的形式提供在线分类。
//
// 用法:
//
//	toxfilter -config configs/config.toml -mode train   # 训练并输出评估报告
//	toxfilter -config configs/config.toml -mode serve   # 训练后启动在线服务
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/wyfcoding/toxfilter/app"
	"github.com/wyfcoding/toxfilter/bayes"
	"github.com/wyfcoding/toxfilter/cache"
	"github.com/wyfcoding/toxfilter/config"
	"github.com/wyfcoding/toxfilter/dataset"
	"github.com/wyfcoding/toxfilter/limiter"
	"github.com/wyfcoding/toxfilter/logging"
	"github.com/wyfcoding/toxfilter/metrics"
	"github.com/wyfcoding/toxfilter/middleware"
	"github.com/wyfcoding/toxfilter/pipeline"
	"github.com/wyfcoding/toxfilter/server"
	"github.com/wyfcoding/toxfilter/tokenize"
	"github.com/wyfcoding/toxfilter/tracing"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "configs/config.toml", "配置文件路径")
	mode := flag.String("mode", "train", "运行模式: train 或 serve")
	flag.Parse()

	if err := run(*configPath, *mode); err != nil {
		slog.Error("toxfilter exited with error", "error", err)
		os.Exit(1)
	}
}

func run(configPath, mode string) error {
	var cfg config.Config
	if err := config.Load(configPath, &cfg); err != nil {
		return err
	}

	logger := logging.NewFromConfig(logging.Config{
		Service:    cfg.Server.Name,
		Module:     "main",
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	slog.SetDefault(logger.Logger)

	m := metrics.NewMetrics(cfg.Server.Name)
	m.RegisterBuildInfo(cfg.Server.Name, version)

	ctx := context.Background()
	tok := tokenize.New(tokenize.WithMinTokenLen(2))

	logger.InfoContext(ctx, "loading corpus",
		"comments", cfg.Data.CommentsPath, "ratings", cfg.Data.RatingsPath)
	c, err := dataset.LoadCorpus(cfg.Data.CommentsPath, cfg.Data.RatingsPath, tok, cfg.Model.LabelThreshold)
	if err != nil {
		return err
	}

	pipe := pipeline.New(logger,
		pipeline.WithSplitRatio(cfg.Split.Ratio),
		pipeline.WithSeed(cfg.Split.Seed),
		pipeline.WithMinTokenFreq(cfg.Model.MinTokenFreq),
		pipeline.WithWorkers(cfg.Model.Workers),
		pipeline.WithMetrics(m),
	)

	model, split, err := pipe.Train(ctx, c)
	if err != nil {
		return err
	}

	report, err := pipe.Evaluate(ctx, model, split.Test)
	if err != nil {
		return err
	}
	fmt.Println(report.Matrix.String())
	fmt.Printf("accuracy: %.4f (%d/%d)\n", report.Accuracy, report.Matrix.Correct(), report.Matrix.Total())
	printRankings(model)

	if mode != "serve" {
		return nil
	}

	return serve(&cfg, logger, m, tok, model)
}

// printRankings 输出最具毒性/无毒指示性的词元，纯诊断用途。
func printRankings(model *pipeline.Model) {
	const topN = 10
	ranks := model.Rankings()
	fmt.Println("most toxic-indicative tokens:")
	for _, r := range bayes.MostToxic(ranks, topN) {
		fmt.Printf("  %-20s %.4f\n", r.Token, r.Ratio)
	}
	fmt.Println("most non-toxic-indicative tokens:")
	for _, r := range bayes.MostNonToxic(ranks, topN) {
		fmt.Printf("  %-20s %.4f\n", r.Token, r.Ratio)
	}
}

func serve(cfg *config.Config, logger *logging.Logger, m *metrics.Metrics, tok *tokenize.Tokenizer, model *pipeline.Model) error {
	if cfg.Server.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	var predictionCache cache.Cache
	var cleanups []func()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(tracing.Config{
			ServiceName:  cfg.Server.Name,
			OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
			SampleRatio:  cfg.Tracing.SampleRatio,
		})
		if err != nil {
			return err
		}
		cleanups = append(cleanups, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Error("failed to shutdown tracer provider", "error", err)
			}
		})
	}
	if cfg.Cache.Enabled {
		bc, err := cache.NewBigCache(cfg.Cache.TTL, cfg.Cache.MaxMB)
		if err != nil {
			return err
		}
		predictionCache = bc
		cleanups = append(cleanups, func() {
			if err := bc.Close(); err != nil {
				logger.Error("failed to close prediction cache", "error", err)
			}
		})
	}

	handler := server.NewHandler(logger, m, predictionCache, tok)
	if err := handler.SetModel(model); err != nil {
		return err
	}

	middlewares := []gin.HandlerFunc{
		middleware.Recovery(logger.Logger),
		middleware.RequestID(),
		middleware.Logger(logger.Logger),
		otelgin.Middleware(cfg.Server.Name),
		middleware.SecurityHeaders(),
		middleware.CORS(),
		middleware.MaxBodyBytes(1 << 20),
		middleware.TimeoutMiddleware(cfg.Server.HTTP.WriteTimeout),
		middleware.HTTPMetricsMiddlewareWithOptions(m, middleware.MetricsOptions{
			SkipPaths: []string{"/healthz"},
		}),
	}
	if cfg.RateLimit.Enabled {
		rateLimiter := limiter.NewLocalLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
		middlewares = append(middlewares, middleware.RateLimitMiddleware(rateLimiter))
		// 限流参数随配置热更新调整，无需重启服务。
		config.RegisterReloadHook(func(c *config.Config) {
			rateLimiter.SetRate(rate.Limit(c.RateLimit.RPS), c.RateLimit.Burst)
			logger.Info("rate limiter reconfigured", "rps", c.RateLimit.RPS, "burst", c.RateLimit.Burst)
		})
		if cfg.RateLimit.MaxConcurrent > 0 {
			middlewares = append(middlewares, middleware.NewConcurrencyLimitMiddleware(cfg.RateLimit.MaxConcurrent, time.Second))
		}
	}

	engine := server.NewDefaultGinEngine(middlewares...)
	handler.RegisterRoutes(engine)

	if cfg.Metrics.Enabled {
		cleanups = append(cleanups, m.ExposeHttp(cfg.Metrics.Port))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Addr, cfg.Server.HTTP.Port)
	ginServer := server.NewGinServer(engine, addr, logger.Logger)

	opts := []app.Option{app.WithServer(ginServer)}
	for _, cleanup := range cleanups {
		opts = append(opts, app.WithCleanup(cleanup))
	}

	return app.New(cfg.Server.Name, logger.Logger, opts...).Run()
}
