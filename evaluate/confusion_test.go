package evaluate

import (
	"math"
	"strings"
	"testing"

	"github.com/wyfcoding/toxfilter/corpus"
)

func TestConfusionMatrix(t *testing.T) {
	var m ConfusionMatrix
	m.Add(corpus.Toxic, corpus.Toxic)
	m.Add(corpus.Toxic, corpus.NonToxic)
	m.Add(corpus.NonToxic, corpus.NonToxic)
	m.Add(corpus.NonToxic, corpus.NonToxic)
	m.Add(corpus.Unlabeled, corpus.Toxic) // 未知标签被忽略

	if got := m.Total(); got != 4 {
		t.Errorf("Total() = %d, want 4", got)
	}
	if got := m.Correct(); got != 3 {
		t.Errorf("Correct() = %d, want 3", got)
	}
	if got := m.Cell(corpus.Toxic, corpus.NonToxic); got != 1 {
		t.Errorf("Cell(toxic, non-toxic) = %d, want 1", got)
	}
	if got := m.Accuracy(); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("Accuracy() = %v, want 0.75", got)
	}

	// 单元格之和等于记录的标签对数量，对角线为正确数。
	sum := m.Cell(corpus.Toxic, corpus.Toxic) +
		m.Cell(corpus.Toxic, corpus.NonToxic) +
		m.Cell(corpus.NonToxic, corpus.Toxic) +
		m.Cell(corpus.NonToxic, corpus.NonToxic)
	if sum != m.Total() {
		t.Errorf("cells sum to %d, Total() = %d", sum, m.Total())
	}
}

func TestConfusionMatrixEmpty(t *testing.T) {
	var m ConfusionMatrix
	if m.Accuracy() != 0 {
		t.Errorf("empty matrix accuracy = %v, want 0", m.Accuracy())
	}
	if m.Total() != 0 || m.Correct() != 0 {
		t.Errorf("empty matrix should have zero counts")
	}
}

func TestConfusionMatrixString(t *testing.T) {
	var m ConfusionMatrix
	m.Add(corpus.Toxic, corpus.Toxic)

	s := m.String()
	if !strings.Contains(s, string(corpus.Toxic)) || !strings.Contains(s, string(corpus.NonToxic)) {
		t.Errorf("String() missing label headers: %q", s)
	}
}
