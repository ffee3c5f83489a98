package bayes

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/wyfcoding/toxfilter/corpus"
	"github.com/wyfcoding/toxfilter/xerrors"
)

const tolerance = 1e-9

func TestBuildFrequencyTable(t *testing.T) {
	docs := []corpus.Document{
		corpus.NewLabeledDocument("d1", []string{"a", "a", "b"}, corpus.NonToxic),
		corpus.NewLabeledDocument("d2", []string{"b", "c"}, corpus.NonToxic),
	}

	table := BuildFrequencyTable(docs)
	want := FrequencyTable{"a": 2, "b": 2, "c": 1}
	for token, count := range want {
		if table[token] != count {
			t.Errorf("freq[%q] = %d, want %d", token, table[token], count)
		}
	}
	if len(table) != len(want) {
		t.Errorf("table has %d entries, want %d", len(table), len(want))
	}

	// 总词数守恒：计数之和等于全部文档词元数之和。
	tokens := 0
	for _, doc := range docs {
		tokens += doc.Len()
	}
	if table.Total() != tokens {
		t.Errorf("Total() = %d, want %d", table.Total(), tokens)
	}
}

func TestBuildFrequencyTablePermutationInvariant(t *testing.T) {
	docs := []corpus.Document{
		corpus.NewLabeledDocument("d1", []string{"a", "a", "b"}, corpus.NonToxic),
		corpus.NewLabeledDocument("d2", []string{"b", "c"}, corpus.NonToxic),
		corpus.NewLabeledDocument("d3", []string{"c", "c", "a", "d"}, corpus.NonToxic),
		corpus.NewLabeledDocument("d4", []string{"d"}, corpus.NonToxic),
	}

	// 频次和概率都是对词元多重集的折叠，训练文档的排列不改变结果。
	shuffled := make([]corpus.Document, len(docs))
	copy(shuffled, docs)
	rng := rand.New(rand.NewPCG(7, 0))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	freq := BuildFrequencyTable(docs)
	freqShuffled := BuildFrequencyTable(shuffled)
	if !reflect.DeepEqual(freq, freqShuffled) {
		t.Fatalf("frequency tables differ across permutations: %v vs %v", freq, freqShuffled)
	}

	prob, err := DeriveProbabilities(freq)
	if err != nil {
		t.Fatalf("DeriveProbabilities() error = %v", err)
	}
	probShuffled, err := DeriveProbabilities(freqShuffled)
	if err != nil {
		t.Fatalf("DeriveProbabilities() shuffled error = %v", err)
	}
	if !reflect.DeepEqual(prob, probShuffled) {
		t.Errorf("probability tables differ across permutations: %v vs %v", prob, probShuffled)
	}
}

func TestBuildFrequencyTableEmpty(t *testing.T) {
	// 零文档产出空表，错误在概率推导阶段才出现。
	table := BuildFrequencyTable(nil)
	if len(table) != 0 || table.Total() != 0 {
		t.Errorf("empty input should yield an empty table, got %v", table)
	}
}

func TestDeriveProbabilities(t *testing.T) {
	freq := FrequencyTable{"a": 2, "b": 1}
	table, err := DeriveProbabilities(freq)
	if err != nil {
		t.Fatalf("DeriveProbabilities() error = %v", err)
	}

	if got, want := table["a"], math.Log(2.0/3.0); math.Abs(got-want) > tolerance {
		t.Errorf("prob[a] = %v, want %v", got, want)
	}
	if got, want := table["b"], math.Log(1.0/3.0); math.Abs(got-want) > tolerance {
		t.Errorf("prob[b] = %v, want %v", got, want)
	}

	// 每个值 <= 0 且 exp(值) 落在 (0, 1]。
	for token, lp := range table {
		if lp > 0 {
			t.Errorf("prob[%q] = %v, log-probability must be <= 0", token, lp)
		}
		if p := math.Exp(lp); p <= 0 || p > 1 {
			t.Errorf("exp(prob[%q]) = %v, must be in (0, 1]", token, p)
		}
	}
}

func TestDeriveProbabilitiesDegenerate(t *testing.T) {
	if _, err := DeriveProbabilities(FrequencyTable{}); !errors.Is(err, xerrors.ErrDegenerateClass) {
		t.Errorf("DeriveProbabilities(empty) error = %v, want ErrDegenerateClass", err)
	}
}

// 训练数据: good = [[a a b]], toxic = [[a c c]]，先验各 0.5。
func buildFixtureClassifier(t *testing.T) *Classifier {
	t.Helper()

	probGood, err := DeriveProbabilities(FrequencyTable{"a": 2, "b": 1})
	if err != nil {
		t.Fatalf("derive good table: %v", err)
	}
	probToxic, err := DeriveProbabilities(FrequencyTable{"a": 1, "c": 2})
	if err != nil {
		t.Fatalf("derive toxic table: %v", err)
	}

	c, err := NewClassifier(probToxic, probGood, 0.5, 0.5)
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}
	return c
}

func TestClassifyKnownScore(t *testing.T) {
	c := buildFixtureClassifier(t)

	pred, err := c.Classify(corpus.NewDocument("d1", []string{"a", "a"}))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	// 得分 = (ln0.5 + 2·ln(1/3)) − (ln0.5 + 2·ln(2/3)) = 2·ln(1/2)。
	want := 2 * math.Log(0.5)
	if math.Abs(pred.Score-want) > tolerance {
		t.Errorf("score = %v, want %v", pred.Score, want)
	}
	if pred.Label != corpus.NonToxic {
		t.Errorf("label = %q, want non-toxic", pred.Label)
	}
	if pred.DocumentID != "d1" {
		t.Errorf("document id = %q, want d1", pred.DocumentID)
	}
}

func TestClassifyMissingTokenPolicy(t *testing.T) {
	c := buildFixtureClassifier(t)

	// "b" 只在 good 表中，"c" 只在 toxic 表中：
	// 缺失一侧贡献为零，存在一侧照常累加。
	pred, err := c.Classify(corpus.NewDocument("d1", []string{"c"}))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	want := math.Log(2.0 / 3.0) // 只有 toxic 表贡献 ln(2/3)
	if math.Abs(pred.Score-want) > tolerance {
		t.Errorf("score for [c] = %v, want %v", pred.Score, want)
	}
	if pred.Label != corpus.NonToxic {
		t.Errorf("label for [c] = %q, want non-toxic (score %v <= 0)", pred.Label, pred.Score)
	}

	// 两张表都没有的词元得分为 0，平局归为无毒。
	pred, err = c.Classify(corpus.NewDocument("d2", []string{"zzz"}))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if math.Abs(pred.Score) > tolerance {
		t.Errorf("score for unknown token = %v, want 0", pred.Score)
	}
	if pred.Label != corpus.NonToxic {
		t.Errorf("tie must resolve to non-toxic, got %q", pred.Label)
	}
}

func TestClassifySymmetry(t *testing.T) {
	probGood, _ := DeriveProbabilities(FrequencyTable{"a": 2, "b": 1})
	probToxic, _ := DeriveProbabilities(FrequencyTable{"a": 1, "c": 2})

	forward, err := NewClassifier(probToxic, probGood, 0.3, 0.7)
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}
	// 交换两张表和两个先验后，得分取反。
	swapped, err := NewClassifier(probGood, probToxic, 0.7, 0.3)
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}

	doc := corpus.NewDocument("d1", []string{"a", "b", "c"})
	p1, _ := forward.Classify(doc)
	p2, _ := swapped.Classify(doc)
	if math.Abs(p1.Score+p2.Score) > tolerance {
		t.Errorf("swapped score = %v, want %v", p2.Score, -p1.Score)
	}
}

func TestClassifyEmptyDocument(t *testing.T) {
	c := buildFixtureClassifier(t)
	if _, err := c.Classify(corpus.NewDocument("d1", nil)); !errors.Is(err, xerrors.ErrEmptyDocument) {
		t.Errorf("Classify(empty) error = %v, want ErrEmptyDocument", err)
	}
}

func TestNewClassifierInvalidPrior(t *testing.T) {
	probGood, _ := DeriveProbabilities(FrequencyTable{"a": 1})
	probToxic, _ := DeriveProbabilities(FrequencyTable{"b": 1})

	cases := []struct{ toxic, good float64 }{
		{0, 1},
		{1, 0},
		{-0.1, 1.1},
		{0.5, 0.6},
	}
	for _, c := range cases {
		if _, err := NewClassifier(probToxic, probGood, c.toxic, c.good); !errors.Is(err, xerrors.ErrInvalidPrior) {
			t.Errorf("NewClassifier(priors %v/%v) error = %v, want ErrInvalidPrior", c.toxic, c.good, err)
		}
	}
}

func TestEstimatePriors(t *testing.T) {
	priorToxic, priorGood, err := EstimatePriors(30, 70)
	if err != nil {
		t.Fatalf("EstimatePriors() error = %v", err)
	}
	if math.Abs(priorToxic-0.3) > tolerance || math.Abs(priorGood-0.7) > tolerance {
		t.Errorf("priors = (%v, %v), want (0.3, 0.7)", priorToxic, priorGood)
	}

	if _, _, err := EstimatePriors(0, 10); !errors.Is(err, xerrors.ErrDegenerateClass) {
		t.Errorf("EstimatePriors(0, 10) error = %v, want ErrDegenerateClass", err)
	}
}

func TestClassifyBatch(t *testing.T) {
	c := buildFixtureClassifier(t)

	docs := []corpus.Document{
		corpus.NewDocument("d1", []string{"a", "a"}),
		corpus.NewDocument("d2", nil), // 单文档失败，不影响其余文档
		corpus.NewDocument("d3", []string{"c", "c"}),
	}

	results := c.ClassifyBatch(context.Background(), docs, 2)
	if len(results) != len(docs) {
		t.Fatalf("got %d results, want %d", len(results), len(docs))
	}

	// 结果顺序与输入一致。
	if results[0].Err != nil || results[0].Prediction.DocumentID != "d1" {
		t.Errorf("result[0] = %+v, want prediction for d1", results[0])
	}
	if !errors.Is(results[1].Err, xerrors.ErrEmptyDocument) {
		t.Errorf("result[1].Err = %v, want ErrEmptyDocument", results[1].Err)
	}
	if results[2].Err != nil || results[2].Prediction.DocumentID != "d3" {
		t.Errorf("result[2] = %+v, want prediction for d3", results[2])
	}

	// 串行与并发结果一致。
	serial := c.ClassifyBatch(context.Background(), docs, 1)
	for i := range results {
		if (results[i].Err == nil) != (serial[i].Err == nil) {
			t.Errorf("result[%d] error mismatch between worker counts", i)
			continue
		}
		if results[i].Err == nil && math.Abs(results[i].Prediction.Score-serial[i].Prediction.Score) > tolerance {
			t.Errorf("result[%d] score mismatch between worker counts", i)
		}
	}
}

func TestClassifyBatchCancelled(t *testing.T) {
	c := buildFixtureClassifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := c.ClassifyBatch(ctx, []corpus.Document{
		corpus.NewDocument("d1", []string{"a"}),
	}, 1)
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("result after cancellation = %v, want context.Canceled", results[0].Err)
	}
}
