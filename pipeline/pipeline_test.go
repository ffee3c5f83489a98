package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/wyfcoding/toxfilter/corpus"
	"github.com/wyfcoding/toxfilter/logging"
	"github.com/wyfcoding/toxfilter/xerrors"
)

// 构造词汇完全可分的语料：有毒文档只含毒性词，无毒文档只含中性词。
func buildTestCorpus(t *testing.T, perClass int) *corpus.Corpus {
	t.Helper()

	docs := make([]corpus.Document, 0, 2*perClass)
	for i := 0; i < perClass; i++ {
		docs = append(docs, corpus.NewLabeledDocument(
			fmt.Sprintf("toxic-%03d", i), []string{"ugly", "hate", "stupid"}, corpus.Toxic))
		docs = append(docs, corpus.NewLabeledDocument(
			fmt.Sprintf("good-%03d", i), []string{"great", "thanks", "nice"}, corpus.NonToxic))
	}

	c, err := corpus.New(docs)
	if err != nil {
		t.Fatalf("corpus.New() error = %v", err)
	}
	return c
}

func newTestPipeline(opts ...Option) *Pipeline {
	base := []Option{
		WithSplitRatio(0.8),
		WithSeed(1),
		WithMinTokenFreq(1),
		WithWorkers(2),
	}
	return New(logging.NewLogger("toxfilter-test", "pipeline"), append(base, opts...)...)
}

func TestTrainAndEvaluate(t *testing.T) {
	ctx := context.Background()
	c := buildTestCorpus(t, 10)
	p := newTestPipeline()

	model, split, err := p.Train(ctx, c)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	if len(split.TrainToxic) != 8 || len(split.TrainGood) != 8 {
		t.Errorf("train partitions = (%d, %d), want (8, 8)", len(split.TrainToxic), len(split.TrainGood))
	}
	if len(split.Test) != 4 {
		t.Errorf("test set size = %d, want 4", len(split.Test))
	}

	// 均衡语料的先验各为 0.5。
	if model.PriorToxic != 0.5 || model.PriorGood != 0.5 {
		t.Errorf("priors = (%v, %v), want (0.5, 0.5)", model.PriorToxic, model.PriorGood)
	}
	if len(model.ProbToxic) != 3 || len(model.ProbGood) != 3 {
		t.Errorf("vocabulary sizes = (%d, %d), want (3, 3)", len(model.ProbToxic), len(model.ProbGood))
	}

	report, err := p.Evaluate(ctx, model, split.Test)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	// 矩阵单元格总数 + 失败数 = 测试集大小。
	if report.Matrix.Total()+len(report.Failures) != len(split.Test) {
		t.Errorf("matrix total %d + failures %d != test size %d",
			report.Matrix.Total(), len(report.Failures), len(split.Test))
	}

	// 词汇完全可分，全部预测应当正确。
	if report.Accuracy != 1.0 {
		t.Errorf("accuracy = %v, want 1.0\n%s", report.Accuracy, report.Matrix)
	}
}

func TestTrainDeterministic(t *testing.T) {
	ctx := context.Background()
	c := buildTestCorpus(t, 10)

	model1, split1, err := newTestPipeline(WithSeed(42)).Train(ctx, c)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	model2, split2, err := newTestPipeline(WithSeed(42)).Train(ctx, c)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	if !reflect.DeepEqual(split1.Test, split2.Test) {
		t.Errorf("identical seeds must yield identical test partitions")
	}
	if !reflect.DeepEqual(model1.FreqToxic, model2.FreqToxic) ||
		!reflect.DeepEqual(model1.FreqGood, model2.FreqGood) {
		t.Errorf("identical seeds must yield identical frequency tables")
	}
}

func TestTrainDegenerateClass(t *testing.T) {
	docs := []corpus.Document{
		corpus.NewLabeledDocument("d1", []string{"great"}, corpus.NonToxic),
		corpus.NewLabeledDocument("d2", []string{"nice"}, corpus.NonToxic),
	}
	c, err := corpus.New(docs)
	if err != nil {
		t.Fatalf("corpus.New() error = %v", err)
	}

	_, _, err = newTestPipeline().Train(context.Background(), c)
	if !errors.Is(err, xerrors.ErrDegenerateClass) {
		t.Errorf("Train() with one class error = %v, want ErrDegenerateClass", err)
	}
}

func TestEvaluateIsolatesEmptyDocuments(t *testing.T) {
	ctx := context.Background()
	c := buildTestCorpus(t, 10)
	p := newTestPipeline()

	model, _, err := p.Train(ctx, c)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	testDocs := []corpus.Document{
		corpus.NewLabeledDocument("t1", []string{"ugly"}, corpus.Toxic),
		corpus.NewLabeledDocument("t2", nil, corpus.NonToxic), // 空文档按单文档失败隔离
		corpus.NewLabeledDocument("t3", []string{"nice"}, corpus.NonToxic),
	}

	report, err := p.Evaluate(ctx, model, testDocs)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if len(report.Failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(report.Failures))
	}
	if !errors.Is(report.Failures[0].Err, xerrors.ErrEmptyDocument) {
		t.Errorf("failure error = %v, want ErrEmptyDocument", report.Failures[0].Err)
	}
	if len(report.Predictions) != 2 {
		t.Errorf("got %d predictions, want 2", len(report.Predictions))
	}
	if report.Matrix.Total() != 2 {
		t.Errorf("matrix total = %d, want 2", report.Matrix.Total())
	}
}

func TestModelRankings(t *testing.T) {
	ctx := context.Background()
	c := buildTestCorpus(t, 10)

	model, _, err := newTestPipeline().Train(ctx, c)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	// 两类词汇不相交，没有词元同时出现在两张表中。
	if ranks := model.Rankings(); len(ranks) != 0 {
		t.Errorf("disjoint vocabularies should produce no ranked tokens, got %v", ranks)
	}
}
