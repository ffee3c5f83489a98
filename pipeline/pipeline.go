// Package pipeline 把语料库、词频/概率表构建、分类和评估串成一次显式的
// 批处理流水线：不可变的表和文档在纯函数之间传递，没有共享的全局状态。
package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/toxfilter/bayes"
	"github.com/wyfcoding/toxfilter/corpus"
	"github.com/wyfcoding/toxfilter/evaluate"
	"github.com/wyfcoding/toxfilter/logging"
	"github.com/wyfcoding/toxfilter/metrics"
	"github.com/wyfcoding/toxfilter/tracing"
	"github.com/wyfcoding/toxfilter/xerrors"
)

// Model 是一次训练运行产出的不可变模型：两张词频表、两张概率表和类别先验。
// 训练完成后只读，可被任意多个 goroutine 并发用于评分。
type Model struct {
	TrainedAt  time.Time
	FreqToxic  bayes.FrequencyTable
	FreqGood   bayes.FrequencyTable
	ProbToxic  bayes.ProbabilityTable
	ProbGood   bayes.ProbabilityTable
	PriorToxic float64
	PriorGood  float64
}

// NewClassifier 从模型构建分类器。
func (m *Model) NewClassifier() (*bayes.Classifier, error) {
	return bayes.NewClassifier(m.ProbToxic, m.ProbGood, m.PriorToxic, m.PriorGood)
}

// Rankings 返回模型的词元诊断排名。
func (m *Model) Rankings() []bayes.TokenRank {
	return bayes.RankTokens(m.ProbToxic, m.ProbGood, m.FreqToxic, m.FreqGood)
}

// Split 记录一次训练运行的训练/测试划分结果。
// 测试集合并保留标签，供评估阶段对照。
type Split struct {
	TrainToxic []corpus.Document
	TrainGood  []corpus.Document
	Test       []corpus.Document
}

// Pipeline 封装一次训练运行的全部参数。
type Pipeline struct {
	logger       *logging.Logger
	metrics      *metrics.Metrics
	splitRatio   float64
	seed         uint64
	minTokenFreq int
	workers      int
}

// Option 定义配置选项。
type Option func(*Pipeline)

// WithSplitRatio 设置训练集占比（默认 0.8）。
func WithSplitRatio(ratio float64) Option {
	return func(p *Pipeline) {
		p.splitRatio = ratio
	}
}

// WithSeed 设置划分随机种子，保证划分可复现。
func WithSeed(seed uint64) Option {
	return func(p *Pipeline) {
		p.seed = seed
	}
}

// WithMinTokenFreq 设置全语料最小词频（默认 5），低于该频次的词元在组装阶段被丢弃。
func WithMinTokenFreq(minFreq int) Option {
	return func(p *Pipeline) {
		p.minTokenFreq = minFreq
	}
}

// WithWorkers 设置批量分类的并发数，0 表示不限制。
func WithWorkers(workers int) Option {
	return func(p *Pipeline) {
		p.workers = workers
	}
}

// WithMetrics 注入指标采集器，训练与评估过程会上报核心指标。
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// New 创建流水线实例。
func New(logger *logging.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:       logger,
		splitRatio:   0.8,
		seed:         1,
		minTokenFreq: 5,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Train 执行一次完整的训练运行。
// 流程：稀有词过滤 → 按类别划分训练/测试集（同一种子下可复现）→
// 两个类别的词频/概率表并行构建（互不相关的折叠）→ 先验估计。
// 任何表构建错误对整次训练都是致命的；训练可从头重跑，无部分重试语义。
func (p *Pipeline) Train(ctx context.Context, c *corpus.Corpus) (*Model, *Split, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Train")
	defer span.End()
	defer logging.LogDuration(ctx, "training run")()
	start := time.Now()

	tracing.AddTag(ctx, "corpus_documents", c.Len())

	pruned := c.PruneRareTokens(p.minTokenFreq)
	toxicDocs, goodDocs := pruned.Partition()
	if len(toxicDocs) == 0 || len(goodDocs) == 0 {
		err := xerrors.ErrDegenerateClass.
			WithContext("toxic_docs", len(toxicDocs)).
			WithContext("good_docs", len(goodDocs))
		tracing.SetError(ctx, err)
		return nil, nil, err
	}

	splitter, err := corpus.NewSplitter(p.splitRatio, p.seed)
	if err != nil {
		return nil, nil, err
	}
	// 两个类别独立划分；顺序固定（先 toxic 后 good），种子相同则结果相同。
	trainToxic, testToxic := splitter.Split(toxicDocs)
	trainGood, testGood := splitter.Split(goodDocs)

	split := &Split{
		TrainToxic: trainToxic,
		TrainGood:  trainGood,
		Test:       append(append([]corpus.Document{}, testToxic...), testGood...),
	}

	model := &Model{TrainedAt: start}

	// 两个类别的表构建互相独立，可并行折叠。
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		model.FreqToxic = bayes.BuildFrequencyTable(trainToxic)
		var deriveErr error
		model.ProbToxic, deriveErr = bayes.DeriveProbabilities(model.FreqToxic)
		return deriveErr
	})
	g.Go(func() error {
		model.FreqGood = bayes.BuildFrequencyTable(trainGood)
		var deriveErr error
		model.ProbGood, deriveErr = bayes.DeriveProbabilities(model.FreqGood)
		return deriveErr
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	model.PriorToxic, model.PriorGood, err = bayes.EstimatePriors(len(trainToxic), len(trainGood))
	if err != nil {
		return nil, nil, err
	}

	if p.metrics != nil {
		p.metrics.TrainingDuration.Observe(time.Since(start).Seconds())
		p.metrics.VocabularySize.WithLabelValues(string(corpus.Toxic)).Set(float64(len(model.ProbToxic)))
		p.metrics.VocabularySize.WithLabelValues(string(corpus.NonToxic)).Set(float64(len(model.ProbGood)))
		p.metrics.TrainingDocuments.WithLabelValues(string(corpus.Toxic), "train").Set(float64(len(trainToxic)))
		p.metrics.TrainingDocuments.WithLabelValues(string(corpus.NonToxic), "train").Set(float64(len(trainGood)))
		p.metrics.TrainingDocuments.WithLabelValues(string(corpus.Toxic), "test").Set(float64(len(testToxic)))
		p.metrics.TrainingDocuments.WithLabelValues(string(corpus.NonToxic), "test").Set(float64(len(testGood)))
	}

	p.logger.InfoContext(ctx, "model trained",
		"train_toxic", len(trainToxic),
		"train_good", len(trainGood),
		"test_docs", len(split.Test),
		"vocab_toxic", len(model.ProbToxic),
		"vocab_good", len(model.ProbGood),
		"prior_toxic", model.PriorToxic,
		"prior_good", model.PriorGood,
	)

	return model, split, nil
}

// Report 是一次评估运行的产出。
type Report struct {
	Matrix      *evaluate.ConfusionMatrix
	Predictions []bayes.Prediction
	Failures    []bayes.Result
	Accuracy    float64
}

// Evaluate 用模型对测试集批量评分并汇总混淆矩阵。
// 单文档失败（如过滤后为空的文档）按文档粒度隔离，不影响批次其余文档；
// 失败的文档收集在 Report.Failures 中供上层上报。
func (p *Pipeline) Evaluate(ctx context.Context, model *Model, testDocs []corpus.Document) (*Report, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Evaluate")
	defer span.End()

	classifier, err := model.NewClassifier()
	if err != nil {
		tracing.SetError(ctx, err)
		return nil, err
	}

	results := classifier.ClassifyBatch(ctx, testDocs, p.workers)

	report := &Report{Matrix: &evaluate.ConfusionMatrix{}}
	for i, res := range results {
		if res.Err != nil {
			report.Failures = append(report.Failures, res)
			if p.metrics != nil {
				p.metrics.ClassificationErrors.Inc()
			}
			p.logger.WarnContext(ctx, "document skipped during evaluation",
				"document_id", testDocs[i].ID, "error", res.Err)
			continue
		}
		report.Predictions = append(report.Predictions, res.Prediction)
		if testDocs[i].Labeled() {
			report.Matrix.Add(testDocs[i].Label, res.Prediction.Label)
		}
		if p.metrics != nil {
			p.metrics.ClassificationsTotal.WithLabelValues(string(res.Prediction.Label)).Inc()
			p.metrics.ClassificationScore.Observe(res.Prediction.Score)
		}
	}
	report.Accuracy = report.Matrix.Accuracy()

	p.logger.InfoContext(ctx, "evaluation finished",
		"scored", len(report.Predictions),
		"failed", len(report.Failures),
		"accuracy", report.Accuracy,
	)

	return report, nil
}
