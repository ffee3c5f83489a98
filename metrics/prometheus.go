// Package metrics 封装了基于 Prometheus 的指标采集注册表及分类服务的预定义监控指标。
package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 封装了内部独立的 Prometheus 注册中心和各标准指标。
type Metrics struct {
	registry *prometheus.Registry // 内部独立的 Prometheus 注册中心

	// HTTP 服务指标 (维度: method, path, status)
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        *prometheus.GaugeVec

	// 分类核心指标
	ClassificationsTotal *prometheus.CounterVec // 按预测标签计数
	ClassificationErrors prometheus.Counter     // 单文档分类失败计数（如空文档）
	ClassificationScore  prometheus.Histogram   // 对数似然比得分分布
	TrainingDuration     prometheus.Histogram   // 一次训练运行的耗时
	VocabularySize       *prometheus.GaugeVec   // 每个类别概率表的词汇量
	TrainingDocuments    *prometheus.GaugeVec   // 每个类别训练/测试分区的文档数

	// 在线预测缓存指标
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// 构建信息
	BuildInfo *prometheus.GaugeVec
}

// NewMetrics 初始化并返回一个新的指标采集器。
// 它会自动注册 Go 运行时指标和进程指标。
func NewMetrics(serviceName string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name: "http_server_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	m.HTTPRequestDuration = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_server_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	m.HTTPInFlight = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_server_in_flight_requests",
		Help: "Number of HTTP requests currently being served",
	}, []string{"method", "path"})

	m.ClassificationsTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name: "classifier_predictions_total",
		Help: "Total number of classified documents by predicted label",
	}, []string{"label"})

	m.ClassificationErrors = m.NewCounter(prometheus.CounterOpts{
		Name: "classifier_prediction_errors_total",
		Help: "Total number of documents that failed to classify",
	})

	m.ClassificationScore = m.NewHistogram(prometheus.HistogramOpts{
		Name:    "classifier_score",
		Help:    "Distribution of signed log-likelihood-ratio scores",
		Buckets: prometheus.LinearBuckets(-50, 5, 21),
	})

	m.TrainingDuration = m.NewHistogram(prometheus.HistogramOpts{
		Name:    "classifier_training_duration_seconds",
		Help:    "Duration of a full training run",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	m.VocabularySize = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "classifier_vocabulary_size",
		Help: "Number of distinct tokens in each class probability table",
	}, []string{"class"})

	m.TrainingDocuments = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "classifier_training_documents",
		Help: "Number of documents per class and partition in the last training run",
	}, []string{"class", "partition"})

	m.CacheHitsTotal = m.NewCounter(prometheus.CounterOpts{
		Name: "classifier_cache_hits_total",
		Help: "Total number of prediction cache hits",
	})

	m.CacheMissesTotal = m.NewCounter(prometheus.CounterOpts{
		Name: "classifier_cache_misses_total",
		Help: "Total number of prediction cache misses",
	})

	slog.Info("unified metrics registry initialized", "service", serviceName)
	return m
}

// NewCounter 创建并注册一个新的计数器指标。
func (m *Metrics) NewCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	m.registry.MustRegister(c)
	return c
}

// NewCounterVec 创建并注册一个新的计数器指标向量。
func (m *Metrics) NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(opts, labelNames)
	m.registry.MustRegister(cv)
	return cv
}

// NewGaugeVec 创建并注册一个新的仪表盘指标向量。
func (m *Metrics) NewGaugeVec(opts prometheus.GaugeOpts, labelNames []string) *prometheus.GaugeVec {
	gv := prometheus.NewGaugeVec(opts, labelNames)
	m.registry.MustRegister(gv)
	return gv
}

// NewHistogram 创建并注册一个新的直方图指标。
func (m *Metrics) NewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	m.registry.MustRegister(h)
	return h
}

// NewHistogramVec 创建并注册一个新的直方图指标向量。
func (m *Metrics) NewHistogramVec(opts prometheus.HistogramOpts, labelNames []string) *prometheus.HistogramVec {
	hv := prometheus.NewHistogramVec(opts, labelNames)
	m.registry.MustRegister(hv)
	return hv
}

// Handler 返回用于暴露指标的 HTTP 处理器。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ExposeHttp 在指定端口启动一个独立的 HTTP 服务器用于暴露指标数据。
// 返回一个清理函数用于优雅关闭该服务器。
func (m *Metrics) ExposeHttp(port string) func() {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: m.Handler(),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown metrics server", "error", err)
		}
	}
}
