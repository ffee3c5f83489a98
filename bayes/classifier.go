package bayes

import (
	"context"
	"math"

	"github.com/sourcegraph/conc/pool"

	"github.com/wyfcoding/toxfilter/corpus"
	"github.com/wyfcoding/toxfilter/xerrors"
)

// Prediction 是一次分类的结果：文档 ID、预测标签和带符号的决策得分。
// 得分为对数似然比，保留原值供诊断和置信度排序使用。
type Prediction struct {
	DocumentID string
	Label      corpus.Label
	Score      float64
}

// Classifier 组合两张只读概率表和两个类别先验，对文档计算对数似然比得分。
// 构造后不持有任何可变状态，同一实例可被任意多个 goroutine 并发评分。
type Classifier struct {
	toxic         ProbabilityTable
	good          ProbabilityTable
	logPriorToxic float64
	logPriorGood  float64
}

// priorTolerance 两类先验之和允许的浮点误差。
const priorTolerance = 1e-9

// NewClassifier 创建分类器。
// priorToxic 和 priorGood 必须均为正数且和为 1（允许浮点误差）。
func NewClassifier(tableToxic, tableGood ProbabilityTable, priorToxic, priorGood float64) (*Classifier, error) {
	if priorToxic <= 0 || priorGood <= 0 || math.Abs(priorToxic+priorGood-1) > priorTolerance {
		return nil, xerrors.ErrInvalidPrior.
			WithContext("prior_toxic", priorToxic).
			WithContext("prior_good", priorGood)
	}

	return &Classifier{
		toxic:         tableToxic,
		good:          tableGood,
		logPriorToxic: math.Log(priorToxic),
		logPriorGood:  math.Log(priorGood),
	}, nil
}

// EstimatePriors 以训练集各类文档数估计类别先验。
func EstimatePriors(toxicDocs, goodDocs int) (priorToxic, priorGood float64, err error) {
	total := toxicDocs + goodDocs
	if toxicDocs <= 0 || goodDocs <= 0 {
		return 0, 0, xerrors.ErrDegenerateClass.
			WithContext("toxic_docs", toxicDocs).
			WithContext("good_docs", goodDocs)
	}
	return float64(toxicDocs) / float64(total), float64(goodDocs) / float64(total), nil
}

// Classify 计算文档的对数似然比得分并给出标签。
//
// 得分 = ln(P(toxic)) + Σ toxic[词元] − ln(P(good)) − Σ good[词元]。
//
// 缺词策略（已固定并被测试覆盖）：文档中的词元在某张表中缺失时，
// 只在该表的求和中贡献零，在另一张表中若存在则照常累加。
// 这是无平滑最大似然模型在生成式公式下隐含的行为。
//
// 得分 > 0 判为有毒；得分 ≤ 0（含平局）判为无毒，与上游标签约定一致。
//
// 零词元文档返回 ErrEmptyDocument：此时得分退化为先验对数比，
// 本实现选择将其视为错误而非退化预测，调用方按单文档粒度隔离失败。
func (c *Classifier) Classify(doc corpus.Document) (Prediction, error) {
	if len(doc.Tokens) == 0 {
		return Prediction{}, xerrors.ErrEmptyDocument.WithContext("document_id", doc.ID)
	}

	score := c.logPriorToxic - c.logPriorGood
	for _, token := range doc.Tokens {
		if logProb, ok := c.toxic[token]; ok {
			score += logProb
		}
		if logProb, ok := c.good[token]; ok {
			score -= logProb
		}
	}

	label := corpus.NonToxic
	if score > 0 {
		label = corpus.Toxic
	}

	return Prediction{DocumentID: doc.ID, Label: label, Score: score}, nil
}

// Result 是批量分类中单个文档的结果，失败与成功按文档粒度隔离。
type Result struct {
	Err        error
	Prediction Prediction
}

// ClassifyBatch 并发地对一批文档评分。
// 所有文档读取同一组不可变概率表和先验，无需加锁；
// workers ≤ 0 时不限制并发数。单文档失败（如空文档）记录在对应
// Result.Err 中，不影响批次内其余文档。结果顺序与输入一致。
// 上下文取消后剩余未开始的文档以 ctx.Err() 标记。
func (c *Classifier) ClassifyBatch(ctx context.Context, docs []corpus.Document, workers int) []Result {
	results := make([]Result, len(docs))

	p := pool.New()
	if workers > 0 {
		p = p.WithMaxGoroutines(workers)
	}

	for i := range docs {
		p.Go(func() {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Err: err}
				return
			}
			pred, err := c.Classify(docs[i])
			results[i] = Result{Prediction: pred, Err: err}
		})
	}
	p.Wait()

	return results
}
